package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/controllers"
	"github.com/restoweb/pos-api/middleware"
	"github.com/restoweb/pos-api/models"
	"github.com/restoweb/pos-api/realtime"
	"github.com/restoweb/pos-api/services"
)

func main() {
	log.Println("Starting restaurant POS API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Order{},
		&models.OrderItem{},
		&models.Bill{},
		&models.BillItem{},
		&models.Expense{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// S3-backed image storage for the product catalog
	s3Service, err := services.InitS3Service()
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(s3Service)

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with CORS, the realtime hub and all
// API routes.
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}
	if cfg.IsProduction() {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		// During development allow any caller (mobile apps, curl, local
		// frontends on arbitrary ports).
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	// Dashboards subscribe here; the order/bill controllers publish through
	// the same hub, injected at construction.
	hub := realtime.NewHub(controllers.SnapshotOrders)
	billing := services.NewBillingService(config.GetDB())
	orderController := controllers.NewOrderController(hub, billing)
	billController := controllers.NewBillController(hub)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})
	router.GET("/ws", func(c *gin.Context) {
		hub.HandleConnection(c.Writer, c.Request)
	})

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.POST("", orderController.PlaceOrder)
			orders.GET("", middleware.Protect(), middleware.AdminOrKitchen(), orderController.GetOrders)
			orders.POST("/manual", middleware.Protect(), middleware.Admin(), orderController.CreateManualOrder)
			orders.GET("/table/:table", orderController.GetTableOrders)
			orders.GET("/:id", orderController.GetOrderByID)
			orders.PUT("/:id/status", middleware.Protect(), middleware.AdminOrKitchenOrWaiter(), orderController.UpdateOrderStatus)
		}

		bills := api.Group("/bills")
		{
			// public create route, used internally by the order logic
			bills.POST("", billController.CreateBill)
			bills.GET("", middleware.Protect(), middleware.Admin(), billController.GetBills)
		}

		auth := api.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/register", controllers.Register)
			auth.POST("/staff", middleware.Protect(), middleware.Admin(), controllers.CreateStaff)
			auth.GET("/users", middleware.Protect(), middleware.Admin(), controllers.GetUsers)
			auth.PUT("/users/:id", middleware.Protect(), middleware.Admin(), controllers.UpdateUser)
			auth.DELETE("/users/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteUser)
		}

		products := api.Group("/products")
		{
			products.GET("", controllers.GetProducts)
			products.GET("/:id", controllers.GetProductByID)
			products.POST("", middleware.Protect(), middleware.Admin(), controllers.CreateProduct)
			products.PUT("/:id", middleware.Protect(), middleware.Admin(), controllers.UpdateProduct)
			products.DELETE("/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteProduct)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", controllers.GetCategories)
			categories.POST("", middleware.Protect(), middleware.Admin(), controllers.CreateCategory)
			categories.DELETE("/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteCategory)
		}

		expenses := api.Group("/expenses")
		{
			expenses.GET("", middleware.Protect(), middleware.Admin(), controllers.GetExpenses)
			expenses.POST("", middleware.Protect(), middleware.Admin(), controllers.CreateExpense)
			expenses.DELETE("/:id", middleware.Protect(), middleware.Admin(), controllers.DeleteExpense)
		}

		uploads := api.Group("/uploads")
		{
			uploads.POST("/products", middleware.Protect(), middleware.Admin(), controllers.UploadProductImage)
			uploads.GET("/products/*key", middleware.Protect(), controllers.GetProductImageURL)
		}
	}

	return router
}
