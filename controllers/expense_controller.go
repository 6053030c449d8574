package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/restoweb/pos-api/config"
	"github.com/restoweb/pos-api/models"
)

// ExpenseRequest represents the request body for recording an expense
type ExpenseRequest struct {
	Date     time.Time `json:"date" binding:"required"`
	Desc     string    `json:"desc" binding:"required"`
	Amount   float64   `json:"amount" binding:"required,gt=0"`
	Category string    `json:"category" binding:"required"`
}

// CreateExpense handles POST /api/expenses - admin records an expense.
func CreateExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Missing required fields",
				"details": err.Error(),
			},
		})
		return
	}

	if !models.IsValidExpenseCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Unknown expense category: " + req.Category,
			},
		})
		return
	}

	expense := models.Expense{
		Date:     req.Date,
		Desc:     req.Desc,
		Amount:   req.Amount,
		Category: req.Category,
	}
	if err := config.GetDB().Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create expense",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    expense,
	})
}

// GetExpenses handles GET /api/expenses - the ledger, newest first, with an
// optional ?category= filter.
func GetExpenses(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("date DESC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch expenses",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expenses,
	})
}

// DeleteExpense handles DELETE /api/expenses/:id - admin removes an entry.
func DeleteExpense(c *gin.Context) {
	db := config.GetDB()

	var expense models.Expense
	if err := db.First(&expense, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Expense not found",
			},
		})
		return
	}

	if err := db.Delete(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete expense",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "Expense removed"},
	})
}
