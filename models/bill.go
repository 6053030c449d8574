package models

import (
	"time"
)

// Bill is a snapshot of an order kept in a separate table so invoices can be
// printed and audited without depending on the live order data. A bill is
// created automatically when an order is placed and overwritten in full when
// the order is extended; it is never deleted.
type Bill struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	OrderID         uint        `gorm:"not null;uniqueIndex" json:"orderRef"` // exactly one bill per order
	Table           string      `gorm:"not null" json:"table"`
	CustomerName    string      `json:"customerName,omitempty"`
	CustomerAddress string      `json:"customerAddress,omitempty"`
	DeliveryTime    string      `json:"deliveryTime,omitempty"`
	Items           []BillItem  `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount     float64     `gorm:"not null" json:"totalAmount"`
	Status          string      `gorm:"not null" json:"status"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	BillDetails     BillDetails `gorm:"embedded;embeddedPrefix:bill_" json:"billDetails"`
	// BilledAt is seeded from the order's creation time, not this record's:
	// the invoice date matches when the order was placed.
	BilledAt  time.Time `gorm:"not null;index" json:"billedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// BillItem mirrors an order line on its bill.
type BillItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	BillID    uint    `gorm:"not null;index" json:"-"`
	ProductID *uint   `json:"product,omitempty"`
	Name      string  `gorm:"not null" json:"name"`
	Qty       int     `gorm:"not null" json:"qty"`
	Price     float64 `gorm:"not null" json:"price"`
	Image     string  `json:"image,omitempty"`
}

// TableName specifies the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}
