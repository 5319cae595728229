package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/fields"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
)

// EntryID is the id of the entry derived from a source. It depends only on
// the kind and the source id, so deriving twice targets the same entry.
func EntryID(kind Kind, sourceID string) string {
	return ident.Derive(string(kind), sourceID)
}

// Amount is the sum of price × quantity over the line items. When that sum is
// exactly zero the record-level total is used instead.
func Amount(src Source) decimal.Decimal {
	sum := decimal.Zero

	for _, item := range src.Items {
		price, _ := fields.Price.Value(item)
		sum = sum.Add(price.Mul(fields.Qty(item)))
	}

	if !sum.IsZero() {
		return sum
	}

	return fields.Total.Or(src.Record, decimal.Zero)
}

var categories = map[Kind]string{
	KindOrder: "Order Income",
	KindSale:  "Sales Income",
}

var labels = map[Kind]string{
	KindOrder: "Order",
	KindSale:  "Sale",
}

// Derive builds the income entry for src.
func Derive(src Source) Entry {
	date := src.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	desc := fmt.Sprintf("%s %s", labels[src.Kind], src.ID)
	if src.Customer != "" {
		desc += " - " + src.Customer
	}

	return Entry{
		ID:          EntryID(src.Kind, src.ID),
		Type:        TypeIncome,
		Amount:      Amount(src),
		Category:    categories[src.Kind],
		Date:        date,
		Description: desc,
		Comment:     comment(src.Items),
		SourceKind:  src.Kind,
		SourceID:    src.ID,
	}
}

func comment(items []fields.Record) string {
	lines := make([]string, 0, len(items))

	for _, item := range items {
		product := fields.String(item, "productId", "product_id", "productName", "name")
		if product == "" {
			product = "item"
		}

		lines = append(lines, fmt.Sprintf("%s x%s", product, fields.Qty(item).String()))
	}

	return strings.Join(lines, ", ")
}
