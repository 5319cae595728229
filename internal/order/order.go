package order

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
)

// Kind distinguishes orders from point-of-sale sales. Both allocate stock
// the same way; they live in separate collections and ledger categories.
type Kind string

const (
	KindOrder Kind = "order"
	KindSale  Kind = "sale"
)

func (k Kind) Valid() bool {
	return k == KindOrder || k == KindSale
}

// Owner is the id stamped on the units and defect records held by the order
// or sale with the given id. It carries the kind, so an order and a sale that
// share an id never hold each other's stock.
func (k Kind) Owner(id string) string {
	return ident.Derive(string(k), id)
}

// Item is one line of an order.
type Item struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Qty         int             `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	IsDefective bool            `json:"isDefective,omitempty"`
	DefectID    string          `json:"defectId,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Barcodes    []string        `json:"barcodes"`
	// Fields is the line exactly as submitted.
	Fields fields.Record `json:"fields,omitempty"`
}

// Defective reports whether the line sells a registered defect record
// instead of stock units.
func (it *Item) Defective() bool {
	return it.IsDefective && it.DefectID != ""
}

type lineKey struct {
	productID string
	defectID  string
	defective bool
}

// key identifies what a line sells. Defective lines are keyed by defect
// alone since their product is filled in from the defect record.
func (it *Item) key() lineKey {
	if it.Defective() {
		return lineKey{defectID: it.DefectID, defective: true}
	}

	return lineKey{productID: it.ProductID}
}

// Record is the line as the ledger reads it.
func (it *Item) Record() fields.Record {
	if len(it.Fields) > 0 {
		return it.Fields
	}

	return fields.Record{
		"productId": it.ProductID,
		"qty":       it.Qty,
		"price":     it.Price.String(),
	}
}

// Order is an order or sale with its allocated barcodes.
type Order struct {
	ID       string    `json:"id"`
	Kind     Kind      `json:"kind"`
	Customer string    `json:"customer,omitempty"`
	Date     time.Time `json:"date"`
	Items    []Item    `json:"items"`
	// Totals holds the order-level fields other than the ones above, such as
	// totalAmount.
	Totals    fields.Record `json:"totals,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt,omitempty"`
}

// Barcodes lists every unit barcode held by the order.
func (o *Order) Barcodes() []string {
	var out []string
	for _, it := range o.Items {
		if !it.Defective() {
			out = append(out, it.Barcodes...)
		}
	}

	return out
}

// Source is the ledger's view of the order.
func (o *Order) Source() ledger.Source {
	items := make([]fields.Record, 0, len(o.Items))
	for i := range o.Items {
		items = append(items, o.Items[i].Record())
	}

	date := o.Date
	if date.IsZero() {
		date = o.CreatedAt
	}

	return ledger.Source{
		ID:       o.ID,
		Kind:     ledger.Kind(o.Kind),
		Date:     date,
		Customer: o.Customer,
		Items:    items,
		Record:   o.Totals,
	}
}

func cloneItems(items []Item) []Item {
	out := slices.Clone(items)
	for i := range out {
		out[i].Barcodes = slices.Clone(out[i].Barcodes)
	}

	return out
}
