// Package ident derives the identifiers that link records across collections.
package ident

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// Derive builds the id of a record owned by another record, such as the
// ledger entry of an order. The result depends only on its inputs.
func Derive(prefix, sourceID string) string {
	return prefix + "-" + sourceID
}

// Barcode is the n-th (1-based) code of a batch: base code, a dash and the
// sequence number padded to at least two digits.
func Barcode(baseCode string, n int) string {
	return fmt.Sprintf("%s-%02d", baseCode, n)
}

// Barcodes returns the codes 1..quantity of a batch in order.
func Barcodes(baseCode string, quantity int) []string {
	codes := make([]string, 0, max(quantity, 0))
	for i := 1; i <= quantity; i++ {
		codes = append(codes, Barcode(baseCode, i))
	}

	return codes
}

// Sequence extracts the sequence number from a barcode of the given batch.
func Sequence(baseCode, code string) (int, bool) {
	suffix, found := strings.CutPrefix(code, baseCode+"-")
	if !found || len(suffix) < 2 {
		return 0, false
	}

	n, err := strconv.Atoi(suffix)
	if err != nil || n < 1 {
		return 0, false
	}

	return n, Barcode(baseCode, n) == code
}
