package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/middleware"
	"github.com/restoweb/pos-api/models"
	"github.com/restoweb/pos-api/realtime"
	"github.com/restoweb/pos-api/services"
	"gorm.io/gorm"
)

// OrderItemRequest is one requested line. Any client-side item id is
// discarded; the id field is kept only as the catalog product reference.
type OrderItemRequest struct {
	ID    *uint   `json:"id"`
	Name  string  `json:"name" binding:"required"`
	Qty   int     `json:"qty" binding:"required,gt=0"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// PlaceOrderRequest represents the request body for creating or extending an order
type PlaceOrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems" binding:"required,min=1,dive"`
	Table           string             `json:"table"`
	TotalAmount     float64            `json:"totalAmount" binding:"required,gt=0"`
	CustomerName    string             `json:"customerName"`
	CustomerAddress string             `json:"customerAddress"`
	DeliveryTime    string             `json:"deliveryTime"`
	PaymentMethod   string             `json:"paymentMethod"`
	Notes           string             `json:"notes"`
	Status          string             `json:"status"`
	BillDetails     models.BillDetails `json:"billDetails"`
	// ExistingOrderID requests a merge into that order. Merging is only ever
	// by explicit id, never implicitly by table: a table may have had many
	// historical orders and guessing would be ambiguous.
	ExistingOrderID *uint `json:"existingOrderId"`
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// notesSeparator joins old and new kitchen notes on merge.
const notesSeparator = " | "

// mergeRetries bounds the compare-and-swap loop on concurrent merges.
const mergeRetries = 3

// OrderController owns the order ledger endpoints. The broadcaster and the
// billing service are injected at construction; handlers never reach for
// ambient shared state to publish events.
type OrderController struct {
	hub     realtime.Broadcaster
	billing *services.BillingService
}

// NewOrderController wires the order endpoints to their collaborators.
func NewOrderController(hub realtime.Broadcaster, billing *services.BillingService) *OrderController {
	return &OrderController{hub: hub, billing: billing}
}

// PlaceOrder handles POST /api/orders - creates a new order, or appends to an
// existing active one when the request names it. Public: waiter attribution
// from a bearer token is best-effort and never blocks the request.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "No order items",
				"details": err.Error(),
			},
		})
		return
	}

	if req.Status != "" && !models.IsValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown order status: " + req.Status,
			},
		})
		return
	}

	// Orders without a physical table are takeaway/delivery.
	if req.Table == "" {
		req.Table = models.TakeawayTable
	}

	db := config.GetDB()

	if req.ExistingOrderID != nil {
		var existing models.Order
		err := db.Preload("Items", models.ItemsByID).
			Where("id = ? AND status IN ?", *req.ExistingOrderID,
				[]string{models.StatusPending, models.StatusPreparing, models.StatusReady}).
			First(&existing).Error
		if err == nil {
			oc.mergeOrder(c, db, &existing, &req)
			return
		}
		// No active order under that id: fall through and open a fresh one,
		// even if other orders exist for the same table.
	}

	oc.createOrder(c, db, &req)
}

// CreateManualOrder handles POST /api/orders/manual - same order logic behind
// an explicit admin gate, used by the cashier dashboard. Adds no business
// rule of its own.
func (oc *OrderController) CreateManualOrder(c *gin.Context) {
	oc.PlaceOrder(c)
}

// createOrder builds and persists a fresh order, then mirrors the bill and
// notifies subscribers.
func (oc *OrderController) createOrder(c *gin.Context, db *gorm.DB, req *PlaceOrderRequest) {
	status := req.Status
	if status == "" {
		status = models.StatusPending
	}
	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "Cash"
	}

	order := models.Order{
		Table:           req.Table,
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		DeliveryTime:    req.DeliveryTime,
		Items:           mapRequestItems(req.OrderItems),
		TotalAmount:     req.TotalAmount,
		Status:          status,
		PaymentMethod:   paymentMethod,
		Notes:           req.Notes,
		BillDetails:     req.BillDetails,
	}

	// Best-effort waiter attribution: this endpoint is public, so a missing
	// or invalid token is silently ignored.
	if user := middleware.OptionalIdentity(c); user != nil && user.IsWaiter {
		order.WaiterID = &user.ID
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	oc.hub.Emit(realtime.EventOrderCreated, order)

	// Mirror a bill for invoicing/audit. Failure is logged and swallowed:
	// it never fails the order request.
	if bill, _, err := oc.billing.SyncFromOrder(&order, true); err != nil {
		log.Printf("Failed to create bill: %v", err)
	} else {
		oc.hub.Emit(realtime.EventBillCreated, bill)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// mergeOrder appends the requested items to an active order. The write is a
// compare-and-swap on the order's version column, retried a bounded number of
// times, so two concurrent merges cannot silently drop each other's delta.
func (oc *OrderController) mergeOrder(c *gin.Context, db *gorm.DB, existing *models.Order, req *PlaceOrderRequest) {
	newItems := mapRequestItems(req.OrderItems)

	var merged models.Order
	for attempt := 0; ; attempt++ {
		updates := map[string]interface{}{
			// The caller-supplied delta is trusted; totals are not re-summed.
			"total_amount": existing.TotalAmount + req.TotalAmount,
			"version":      existing.Version + 1,
		}
		if req.Notes != "" {
			if existing.Notes != "" {
				updates["notes"] = existing.Notes + notesSeparator + req.Notes
			} else {
				updates["notes"] = req.Notes
			}
		}
		// Customer fields are only overwritten when supplied; an absent
		// field never clears an existing value.
		if req.CustomerName != "" {
			updates["customer_name"] = req.CustomerName
		}
		if req.CustomerAddress != "" {
			updates["customer_address"] = req.CustomerAddress
		}
		if req.DeliveryTime != "" {
			updates["delivery_time"] = req.DeliveryTime
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Order{}).
				Where("id = ? AND version = ?", existing.ID, existing.Version).
				Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound // lost the race, retry outside
			}
			for i := range newItems {
				newItems[i].ID = 0
				newItems[i].OrderID = existing.ID
			}
			return tx.Create(&newItems).Error
		})
		if err == nil {
			break
		}
		if err == gorm.ErrRecordNotFound && attempt < mergeRetries {
			// Another writer won; reload and re-apply our delta on top.
			if reloadErr := db.Preload("Items", models.ItemsByID).First(existing, existing.ID).Error; reloadErr == nil {
				if models.IsMergeableStatus(existing.Status) {
					continue
				}
				// The order was served, paid or cancelled mid-race. Same
				// outcome as finding no active order up front: open a
				// fresh one instead of failing the customer's request.
				oc.createOrder(c, db, req)
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	if err := db.Preload("Items", models.ItemsByID).First(&merged, existing.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	// Keep the bill mirror in step, then tell the dashboards.
	bill, existed, err := oc.billing.SyncFromOrder(&merged, false)
	oc.hub.Emit(realtime.EventOrderUpdated, merged)
	switch {
	case err != nil:
		log.Printf("Failed to sync bill for order %d: %v", merged.ID, err)
	case existed:
		oc.hub.Emit(realtime.EventBillUpdated, bill)
	default:
		// The mirror had gone missing and was recreated.
		oc.hub.Emit(realtime.EventBillCreated, bill)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    merged,
	})
}

// GetOrderByID handles GET /api/orders/:id - public order lookup with
// catalog-resolved product info on each line for display.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Items", models.ItemsByID).First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	resolveProducts(db, order.Items)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrders handles GET /api/orders - all orders, newest first, with an
// optional ?limit= cap. Admin or kitchen only.
func (oc *OrderController) GetOrders(c *gin.Context) {
	db := config.GetDB()

	query := db.Preload("Items", models.ItemsByID).Order("created_at DESC")
	if limitParam := c.Query("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil {
			query = query.Limit(limit)
		}
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetTableOrders handles GET /api/orders/table/:table - every order for a
// table label, newest first, including historical/terminal ones.
func (oc *OrderController) GetTableOrders(c *gin.Context) {
	db := config.GetDB()

	var orders []models.Order
	if err := db.Preload("Items", models.ItemsByID).
		Where("\"table\" = ?", c.Param("table")).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// UpdateOrderStatus handles PUT /api/orders/:id/status - overwrites the
// status of an order. There is deliberately no transition graph: the kitchen
// moves orders freely between the known states. A status outside the closed
// set is rejected; an absent status leaves the order untouched.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	db := config.GetDB()

	var order models.Order
	if err := db.Preload("Items", models.ItemsByID).First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
			},
		})
		return
	}

	if req.Status != "" {
		if !models.IsValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown order status: " + req.Status,
				},
			})
			return
		}
		order.Status = req.Status
		if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update order",
				},
			})
			return
		}
	}

	oc.hub.Emit(realtime.EventOrderUpdated, order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// mapRequestItems converts request lines to order items, discarding any
// client-supplied item id and keeping it only as the product reference.
func mapRequestItems(items []OrderItemRequest) []models.OrderItem {
	mapped := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			Qty:       item.Qty,
			Price:     item.Price,
			Image:     item.Image,
		})
	}
	return mapped
}

// resolveProducts attaches current catalog info to order lines that still
// reference a product. Lines whose product was deleted keep their snapshot.
func resolveProducts(db *gorm.DB, items []models.OrderItem) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID != nil {
			ids = append(ids, *item.ProductID)
		}
	}
	if len(ids) == 0 {
		return
	}

	var products []models.Product
	if err := db.Select("id", "name", "price", "image").Find(&products, ids).Error; err != nil {
		log.Printf("Failed to resolve products for order items: %v", err)
		return
	}

	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range items {
		if items[i].ProductID != nil {
			items[i].Product = byID[*items[i].ProductID]
		}
	}
}

// SnapshotOrders loads the full order list, newest first, for late-joining
// realtime subscribers.
func SnapshotOrders() (interface{}, error) {
	var orders []models.Order
	if err := config.GetDB().Preload("Items", models.ItemsByID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
