package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. The kitchen moves an order through these, but there is no
// enforced transition graph: any known status may follow any other.
const (
	StatusPending   = "Pending"
	StatusPreparing = "Preparing"
	StatusCooking   = "Cooking"
	StatusReady     = "Ready"
	StatusServed    = "Served"
	StatusPaid      = "Paid"
	StatusCancelled = "Cancelled"
)

// TakeawayTable is the table label used for takeaway and delivery orders,
// which have no physical table.
const TakeawayTable = "Takeaway"

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusCooking, StatusReady,
		StatusServed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// IsMergeableStatus reports whether an order in status s may still receive
// additional items under the same order id. Once an order is served, paid or
// cancelled, a new request for the same table opens a fresh order.
func IsMergeableStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady:
		return true
	}
	return false
}

// BillDetails holds the client-computed tax breakdown (subtotal, cgst, sgst,
// grandTotal). It is stored opaquely and never recomputed server-side.
type BillDetails struct {
	Subtotal   *float64 `json:"subtotal,omitempty"`
	CGST       *float64 `json:"cgst,omitempty"`
	SGST       *float64 `json:"sgst,omitempty"`
	GrandTotal *float64 `json:"grandTotal,omitempty"`
}

// Order represents a dine-in, takeaway or delivery order
type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Table           string      `gorm:"not null;index" json:"table"`
	CustomerName    string      `json:"customerName,omitempty"`
	CustomerAddress string      `json:"customerAddress,omitempty"`
	DeliveryTime    string      `json:"deliveryTime,omitempty"` // estimated delivery time for customers
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     float64     `gorm:"not null" json:"totalAmount"`
	Status          string      `gorm:"not null;default:'Pending';index" json:"status"`
	WaiterID        *uint       `gorm:"index" json:"waiterId,omitempty"` // which waiter took the order (optional)
	Waiter          *User       `gorm:"foreignKey:WaiterID" json:"waiter,omitempty"`
	PaymentMethod   string      `gorm:"not null;default:'Cash'" json:"paymentMethod"`
	Notes           string      `json:"notes,omitempty"` // optional kitchen notes from customer
	BillDetails     BillDetails `gorm:"embedded;embeddedPrefix:bill_" json:"billDetails"`
	// Version guards the merge read-modify-write: merges commit with a
	// compare-and-swap on this column so two concurrent merges cannot
	// silently drop each other's items.
	Version   uint      `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. Name, price and image are captured at
// order time: a later catalog price change must not alter historical orders.
// ProductID is a weak reference, deleting the product does not cascade here.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"not null;index" json:"-"`
	ProductID *uint    `gorm:"index" json:"product,omitempty"`
	Name      string   `gorm:"not null" json:"name"`
	Qty       int      `gorm:"not null" json:"qty"`
	Price     float64  `gorm:"not null" json:"price"`
	Image     string   `json:"image,omitempty"`
	Product   *Product `gorm:"-" json:"productInfo,omitempty"` // catalog-resolved for display, never stored
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// ItemsByID is a preload scope that loads line items in insertion order.
// Without it the row order is unspecified, and bill items in particular get
// deleted and re-inserted on every mirror sync.
func ItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
