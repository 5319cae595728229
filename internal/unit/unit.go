package unit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the sale state of a physical unit.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Unit is one physical, individually barcoded item. A unit is sold exactly
// when it carries an order id.
type Unit struct {
	Barcode      string          `json:"barcode"`
	ProductID    string          `json:"productId"`
	BatchID      string          `json:"batchId"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Status       Status          `json:"status"`
	OrderID      string          `json:"orderId,omitempty"`
	Location     string          `json:"location"`
	AdmittedAt   time.Time       `json:"admittedAt"`
}

// State is the mutable part of a unit.
type State struct {
	Status  Status
	OrderID string
}

func (u *Unit) State() State {
	return State{Status: u.Status, OrderID: u.OrderID}
}

func (u *Unit) apply(s State) {
	u.Status = s.Status
	u.OrderID = s.OrderID
}

// Sell assigns the unit to an order.
func (u *Unit) Sell(orderID string) {
	u.apply(Sold(orderID))
}

// Release returns the unit to stock.
func (u *Unit) Release() {
	u.apply(Available())
}

func (u *Unit) IsAvailable() bool {
	return u.Status == StatusAvailable && u.OrderID == ""
}

func Available() State {
	return State{Status: StatusAvailable}
}

func Sold(orderID string) State {
	return State{Status: StatusSold, OrderID: orderID}
}

// Valid reports whether the state satisfies the sold-iff-ordered rule.
func (s State) Valid() bool {
	switch s.Status {
	case StatusAvailable:
		return s.OrderID == ""
	case StatusSold:
		return s.OrderID != ""
	}

	return false
}

// Summary counts units per status.
type Summary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Sold      int `json:"sold"`
}
