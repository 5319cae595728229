package view

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
)

const dbTimeout = 5 * time.Second

// FormatPrice renders a price with two decimals.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatError renders err the way an operator should read it at the scanner:
// the error kind followed by its message.
func FormatError(err error) string {
	return fmt.Sprintf("[%s] %s", apperr.KindOf(err), apperr.Message(err))
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
