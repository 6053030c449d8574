package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/models"
	"github.com/restoweb/pos-api/realtime"
)

// CreateBillRequest represents the request body for a manual bill. The order
// flow creates bills automatically; this endpoint exists for administrative
// corrections and backfills.
type CreateBillRequest struct {
	OrderRef        *uint              `json:"orderRef" binding:"required"`
	Table           string             `json:"table"`
	CustomerName    string             `json:"customerName"`
	CustomerAddress string             `json:"customerAddress"`
	DeliveryTime    string             `json:"deliveryTime"`
	Items           []OrderItemRequest `json:"items" binding:"dive"`
	TotalAmount     float64            `json:"totalAmount"`
	Status          string             `json:"status"`
	PaymentMethod   string             `json:"paymentMethod"`
	Notes           string             `json:"notes"`
	BillDetails     models.BillDetails `json:"billDetails"`
	BilledAt        *time.Time         `json:"billedAt"`
}

// BillController owns the bill endpoints, with the broadcaster injected at
// construction.
type BillController struct {
	hub realtime.Broadcaster
}

// NewBillController wires the bill endpoints to the broadcaster.
func NewBillController(hub realtime.Broadcaster) *BillController {
	return &BillController{hub: hub}
}

// CreateBill handles POST /api/bills - manual bill creation. Requires the
// referenced order id; every other field is taken as supplied.
func (bc *BillController) CreateBill(c *gin.Context) {
	var req CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Missing order reference",
				"details": err.Error(),
			},
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	bill := models.Bill{
		OrderID:         *req.OrderRef,
		Table:           req.Table,
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		DeliveryTime:    req.DeliveryTime,
		TotalAmount:     req.TotalAmount,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		BillDetails:     req.BillDetails,
	}
	if req.BilledAt != nil {
		bill.BilledAt = *req.BilledAt
	}
	for _, item := range req.Items {
		bill.Items = append(bill.Items, models.BillItem{
			ProductID: item.ID,
			Name:      item.Name,
			Qty:       item.Qty,
			Price:     item.Price,
			Image:     item.Image,
		})
	}

	db := config.GetDB()
	if err := db.Create(&bill).Error; err != nil {
		// The unique index on order_id keeps the order/bill relation
		// one-to-one even for manual creation.
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CONFLICT",
					"message": "A bill already exists for this order",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create bill",
			},
		})
		return
	}

	// Seed billedAt after create when the caller didn't supply one: the
	// zero value means "now" for a manual bill.
	if bill.BilledAt.IsZero() {
		bill.BilledAt = bill.CreatedAt
		if err := db.Model(&bill).Update("billed_at", bill.BilledAt).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to create bill",
				},
			})
			return
		}
	}

	bc.hub.Emit(realtime.EventBillCreated, bill)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    bill,
	})
}

// GetBills handles GET /api/bills - all bills, most recently billed first.
// Admin only.
func (bc *BillController) GetBills(c *gin.Context) {
	db := config.GetDB()

	var bills []models.Bill
	if err := db.Preload("Items", models.ItemsByID).Order("billed_at DESC").Find(&bills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch bills",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bills,
	})
}
