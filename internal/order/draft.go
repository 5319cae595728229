package order

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/fields"
)

// MaxLineQty is the largest quantity a single order line may ask for.
const MaxLineQty = 9999

// Draft is a new order as submitted by a client.
type Draft struct {
	ID       string
	Customer string
	Date     time.Time
	Items    []fields.Record
	Totals   fields.Record
}

// Patch is a partial update. Nil fields are left unchanged; Totals keys are
// merged into the stored totals.
type Patch struct {
	Customer *string
	Date     *time.Time
	Items    []fields.Record
	Totals   fields.Record
}

var reserved = []string{"id", "kind", "customer", "customerName", "date", "items", "createdAt", "updatedAt", "totals"}

// DraftFromRecord reads a draft from a decoded JSON object.
func DraftFromRecord(rec fields.Record) (Draft, error) {
	d := Draft{
		ID:       fields.String(rec, "id"),
		Customer: fields.String(rec, "customer", "customerName"),
		Totals:   totals(rec),
	}

	date, err := dateField(rec)
	if err != nil {
		return Draft{}, err
	}

	if date != nil {
		d.Date = *date
	}

	if d.Items, err = itemRecords(rec["items"]); err != nil {
		return Draft{}, err
	}

	return d, nil
}

// PatchFromRecord reads a patch from a decoded JSON object. Only keys
// present in rec are changed.
func PatchFromRecord(rec fields.Record) (Patch, error) {
	var p Patch

	if _, ok := rec["customer"]; ok {
		p.Customer = new(fields.String(rec, "customer"))
	} else if _, ok := rec["customerName"]; ok {
		p.Customer = new(fields.String(rec, "customerName"))
	}

	date, err := dateField(rec)
	if err != nil {
		return Patch{}, err
	}

	p.Date = date

	if raw, ok := rec["items"]; ok {
		if p.Items, err = itemRecords(raw); err != nil {
			return Patch{}, err
		}

		if p.Items == nil {
			p.Items = []fields.Record{}
		}
	}

	p.Totals = totals(rec)

	return p, nil
}

func totals(rec fields.Record) fields.Record {
	out := fields.Record{}

	if nested, ok := rec["totals"].(map[string]any); ok {
		maps.Copy(out, nested)
	}

	for k, v := range rec {
		if !slices.Contains(reserved, k) {
			out[k] = v
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}

func dateField(rec fields.Record) (*time.Time, error) {
	s := fields.String(rec, "date")
	if s == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return new(t.UTC()), nil
		}
	}

	return nil, apperr.Validation("date %q is not a valid date", s)
}

func itemRecords(raw any) ([]fields.Record, error) {
	if raw == nil {
		return nil, nil
	}

	switch list := raw.(type) {
	case []fields.Record:
		return list, nil
	case []map[string]any:
		out := make([]fields.Record, 0, len(list))
		for _, m := range list {
			out = append(out, m)
		}

		return out, nil
	case []any:
		out := make([]fields.Record, 0, len(list))

		for i, v := range list {
			switch m := v.(type) {
			case map[string]any:
				out = append(out, m)
			case fields.Record:
				out = append(out, m)
			default:
				return nil, apperr.Validation("item %d is not an object", i+1)
			}
		}

		return out, nil
	}

	return nil, apperr.Validation("items must be a list")
}

// ParseItems validates raw line items. At least one line is required.
func ParseItems(records []fields.Record) ([]Item, error) {
	if len(records) == 0 {
		return nil, apperr.Validation("at least one item is required")
	}

	items := make([]Item, 0, len(records))

	for i, r := range records {
		it, err := ParseItem(r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		items = append(items, it)
	}

	return items, nil
}

// ParseItem reads one line item through the price and quantity alias chains.
func ParseItem(r fields.Record) (Item, error) {
	it := Item{
		ID:          fields.String(r, "id", "lineId"),
		ProductID:   fields.String(r, "productId", "product_id", "productID"),
		IsDefective: fields.Bool(r, "isDefective"),
		DefectID:    fields.String(r, "defectId", "defect_id"),
		Barcode:     fields.String(r, "barcode"),
		Price:       fields.Price.Or(r, decimal.Zero),
		Fields:      maps.Clone(r),
	}

	qty := fields.Qty(r)
	if !qty.IsInteger() || qty.LessThan(decimal.NewFromInt(1)) {
		return Item{}, apperr.Validation("quantity %s is not a positive whole number", qty)
	}

	if qty.GreaterThan(decimal.NewFromInt(MaxLineQty)) {
		return Item{}, apperr.Validation("quantity %s exceeds the limit of %d per line", qty, MaxLineQty)
	}

	it.Qty = int(qty.IntPart())

	// A defective line sells exactly one defect record.
	if it.Defective() && it.Qty != 1 {
		return Item{}, apperr.Validation("defective line for defect %s must have quantity 1, got %d", it.DefectID, it.Qty)
	}

	if it.Price.IsNegative() {
		return Item{}, apperr.Validation("price %s is negative", it.Price)
	}

	if it.ProductID == "" && !it.Defective() {
		return Item{}, apperr.Validation("product id is required")
	}

	codes, err := barcodes(r["barcodes"])
	if err != nil {
		return Item{}, err
	}

	it.Barcodes = codes

	return it, nil
}

func barcodes(raw any) ([]string, error) {
	switch list := raw.(type) {
	case nil:
		return nil, nil
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))

		for _, v := range list {
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil, apperr.Validation("barcodes must be non-empty strings")
			}

			out = append(out, strings.TrimSpace(s))
		}

		return out, nil
	}

	return nil, apperr.Validation("barcodes must be a list")
}
