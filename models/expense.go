package models

import "time"

// Expense categories (closed set).
const (
	ExpensePurchase = "purchase"
	ExpenseUtility  = "utility"
	ExpenseDirect   = "direct"
	ExpenseIndirect = "indirect"
)

// IsValidExpenseCategory reports whether c is a known expense category.
func IsValidExpenseCategory(c string) bool {
	switch c {
	case ExpensePurchase, ExpenseUtility, ExpenseDirect, ExpenseIndirect:
		return true
	}
	return false
}

// Expense is one entry in the restaurant's expense ledger.
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Desc      string    `gorm:"not null" json:"desc"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Category  string    `gorm:"not null;index" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
