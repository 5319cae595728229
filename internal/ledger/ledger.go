package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/fields"
)

// Type is the bucket an entry is booked in.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Kind identifies the collection an entry was derived from.
type Kind string

const (
	KindOrder Kind = "order"
	KindSale  Kind = "sale"
)

func (k Kind) Valid() bool {
	return k == KindOrder || k == KindSale
}

// Entry is one booked amount. Entries derived from orders and sales are
// never edited directly; they are replaced whenever their source changes.
type Entry struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Comment     string          `json:"comment"`
	SourceKind  Kind            `json:"sourceKind,omitempty"`
	SourceID    string          `json:"sourceId,omitempty"`
}

// Book is the ledger split by bucket.
type Book struct {
	Income   []Entry `json:"income"`
	Expenses []Entry `json:"expenses"`
}

// Source is the view of an order or sale the ledger derives an entry from.
// Items and Record hold the fields exactly as the client submitted them.
type Source struct {
	ID       string
	Kind     Kind
	Date     time.Time
	Customer string
	Items    []fields.Record
	Record   fields.Record
}
