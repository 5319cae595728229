package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/order"
)

type itemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Qty         int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	IsDefective bool            `json:"isDefective,omitempty"`
	DefectID    string          `json:"defectId,omitempty"`
	Barcodes    []string        `json:"barcodes"`
}

type orderResponse struct {
	ID        string         `json:"id"`
	Kind      order.Kind     `json:"kind"`
	Customer  string         `json:"customer,omitempty"`
	Date      time.Time      `json:"date"`
	Items     []itemResponse `json:"items"`
	Totals    fields.Record  `json:"totals,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

func toResponse(o *order.Order) orderResponse {
	items := make([]itemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Qty:         it.Qty,
			Price:       it.Price,
			IsDefective: it.IsDefective,
			DefectID:    it.DefectID,
			Barcodes:    it.Barcodes,
		}
	}

	return orderResponse{
		ID:        o.ID,
		Kind:      o.Kind,
		Customer:  o.Customer,
		Date:      o.Date,
		Items:     items,
		Totals:    o.Totals,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toResponseList(orders []order.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toResponse(&orders[i])
	}

	return resp
}
