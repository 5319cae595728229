package defect

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
)

// Status represents the sale state of a defective item.
type Status string

const (
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
)

// Record is an item flagged defective outside batch admission. Legacy stock
// may have no barcode. A record is sold exactly when it has a selling price
// and a sale time.
type Record struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"productId"`
	Barcode      string           `json:"barcode,omitempty"`
	Description  string           `json:"description,omitempty"`
	Status       Status           `json:"status"`
	SellingPrice *decimal.Decimal `json:"sellingPrice"`
	SoldAt       *time.Time       `json:"soldAt"`
	OrderID      string           `json:"orderId,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Sell marks a pending record as sold to orderID.
func (r *Record) Sell(orderID string, price decimal.Decimal, at time.Time) error {
	if r.Status != StatusPending {
		return apperr.DefectUnavailable(r.ID)
	}

	r.Status = StatusSold
	r.SellingPrice = &price
	r.SoldAt = &at
	r.OrderID = orderID
	r.UpdatedAt = at

	return nil
}

// Revert returns the record to pending if orderID owns the sale. Records sold
// before order ownership was tracked carry no order id and are reverted too.
// It reports whether anything changed.
func (r *Record) Revert(orderID string, at time.Time) bool {
	if r.Status != StatusSold {
		return false
	}

	if r.OrderID != "" && r.OrderID != orderID {
		return false
	}

	r.Status = StatusPending
	r.SellingPrice = nil
	r.SoldAt = nil
	r.OrderID = ""
	r.UpdatedAt = at

	return true
}

// Valid reports whether status, price and sale time agree.
func (r *Record) Valid() bool {
	switch r.Status {
	case StatusPending:
		return r.SellingPrice == nil && r.SoldAt == nil
	case StatusSold:
		return r.SellingPrice != nil && r.SoldAt != nil
	}

	return false
}
