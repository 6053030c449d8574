package services

import (
	"fmt"

	"github.com/restoweb/pos-api/models"
	"gorm.io/gorm"
)

// BillingService keeps the bill mirror in sync with the order ledger. Bills
// are a per-order invoice snapshot: created when an order is placed,
// overwritten in full when the order is extended, never deleted.
type BillingService struct {
	db *gorm.DB
}

// NewBillingService creates a billing service bound to a database handle.
func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// SyncFromOrder creates or refreshes the bill for an order.
//
// For a new order the bill's billedAt is seeded from the order's creation
// time so the invoice date matches order placement. For a merge the existing
// bill is overwritten field-for-field with the updated order. If the bill is
// missing during a merge (earlier best-effort creation failed, or it was
// removed out-of-band) it is recreated rather than left to diverge.
//
// Returns the bill and whether it already existed. Callers treat failures as
// best-effort: a sync error never fails the order request.
func (s *BillingService) SyncFromOrder(order *models.Order, isNewOrder bool) (*models.Bill, bool, error) {
	if !isNewOrder {
		var existing models.Bill
		err := s.db.Where("order_id = ?", order.ID).First(&existing).Error
		switch {
		case err == nil:
			if err := s.overwrite(&existing, order); err != nil {
				return nil, true, err
			}
			return &existing, true, nil
		case err != gorm.ErrRecordNotFound:
			return nil, false, fmt.Errorf("failed to look up bill for order %d: %w", order.ID, err)
		}
		// fall through: bill missing on merge, recreate it
	}

	bill := buildBill(order)
	if err := s.db.Create(bill).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create bill for order %d: %w", order.ID, err)
	}
	return bill, false, nil
}

// FindByOrder returns the bill mirroring the given order id.
func (s *BillingService) FindByOrder(orderID uint) (*models.Bill, error) {
	var bill models.Bill
	if err := s.db.Preload("Items", models.ItemsByID).Where("order_id = ?", orderID).First(&bill).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// overwrite replaces every mirrored field of the bill with the order's
// current state, including the full item list.
func (s *BillingService) overwrite(bill *models.Bill, order *models.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bill_id = ?", bill.ID).Delete(&models.BillItem{}).Error; err != nil {
			return err
		}

		bill.Table = order.Table
		bill.CustomerName = order.CustomerName
		bill.CustomerAddress = order.CustomerAddress
		bill.DeliveryTime = order.DeliveryTime
		bill.TotalAmount = order.TotalAmount
		bill.Status = order.Status
		bill.PaymentMethod = order.PaymentMethod
		bill.Notes = order.Notes
		bill.BillDetails = order.BillDetails
		bill.Items = mirrorItems(bill.ID, order.Items)

		return tx.Save(bill).Error
	})
}

func buildBill(order *models.Order) *models.Bill {
	return &models.Bill{
		OrderID:         order.ID,
		Table:           order.Table,
		CustomerName:    order.CustomerName,
		CustomerAddress: order.CustomerAddress,
		DeliveryTime:    order.DeliveryTime,
		Items:           mirrorItems(0, order.Items),
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		BillDetails:     order.BillDetails,
		BilledAt:        order.CreatedAt,
	}
}

func mirrorItems(billID uint, items []models.OrderItem) []models.BillItem {
	mirrored := make([]models.BillItem, 0, len(items))
	for _, item := range items {
		mirrored = append(mirrored, models.BillItem{
			BillID:    billID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			Price:     item.Price,
			Image:     item.Image,
		})
	}
	return mirrored
}
