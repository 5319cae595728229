// Package fields reads numbers out of loosely-typed records submitted by
// order-entry clients. Clients disagree on field names and send numbers as
// strings, so every lookup goes through an ordered chain of accessors.
package fields

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one JSON object exactly as it was submitted.
type Record map[string]any

// Accessor extracts a number from a record. ok is false when the field is
// absent, unparsable or zero, which lets the next accessor in a chain run.
type Accessor func(r Record) (v decimal.Decimal, ok bool)

// Field returns an accessor for a single key.
func Field(key string) Accessor {
	return func(r Record) (decimal.Decimal, bool) {
		raw, found := r[key]
		if !found {
			return decimal.Zero, false
		}

		v := Number(raw)

		return v, !v.IsZero()
	}
}

// Chain tries accessors in order and yields the first non-zero value.
type Chain []Accessor

func Keys(keys ...string) Chain {
	c := make(Chain, len(keys))
	for i, k := range keys {
		c[i] = Field(k)
	}

	return c
}

func (c Chain) Value(r Record) (decimal.Decimal, bool) {
	for _, get := range c {
		if v, ok := get(r); ok {
			return v, true
		}
	}

	return decimal.Zero, false
}

// Or is Value with a fallback for when no accessor matched.
func (c Chain) Or(r Record, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := c.Value(r); ok {
		return v
	}

	return fallback
}

// Ingestion contract for line items and record totals. The order of the keys
// is significant.
var (
	Price    = Keys("price", "sellingPrice", "unitPrice", "salePrice", "amount")
	Quantity = Keys("qty", "quantity", "count")
	Total    = Keys("totalAmount", "total", "totalCost", "grandTotal", "amount")
)

// Qty returns the line quantity, defaulting to 1.
func Qty(r Record) decimal.Decimal {
	return Quantity.Or(r, decimal.NewFromInt(1))
}

// String returns the first non-empty string value among keys.
func String(r Record, keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		case float64:
			return decimal.NewFromFloat(v).String()
		}
	}

	return ""
}

// Bool reports whether r[key] is truthy.
func Bool(r Record, key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "true" || s == "1" || s == "yes"
	case float64:
		return v != 0
	case json.Number:
		return v.String() != "0"
	}

	return false
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Number converts a decoded JSON value to a decimal. Strings are read up to
// the first character that cannot be part of a number, so "100 EUR" is 100.
// Anything that is not a number yields zero.
func Number(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case json.Number:
		return parse(n.String())
	case string:
		return parse(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}

		return decimal.NewFromFloat(n)
	case float32:
		return Number(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt(int64(n))
	}

	return decimal.Zero
}

func parse(s string) decimal.Decimal {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return decimal.Zero
	}

	return d
}
