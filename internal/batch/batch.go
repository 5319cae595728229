package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/ident"
)

// Admission is the stored completion flag of a batch.
type Admission string

const (
	AdmittedNo  Admission = "no"
	AdmittedYes Admission = "yes"
)

// State is the admission progress of a batch. Only complete is stored; the
// other states follow from the number of units admitted so far.
type State string

const (
	StatePlanned   State = "planned"
	StateAdmitting State = "admitting"
	StateComplete  State = "complete"
)

// Batch is a planned delivery of identical units of one product.
type Batch struct {
	ID           string          `json:"id"`
	BaseCode     string          `json:"baseCode"`
	ProductID    string          `json:"productId"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int             `json:"quantity"`
	Admitted     Admission       `json:"admitted"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ExpectedBarcodes lists the codes printed for the batch, in sequence.
func (b *Batch) ExpectedBarcodes() []string {
	return ident.Barcodes(b.BaseCode, b.Quantity)
}

// Expects reports whether code is one of the batch's barcodes.
func (b *Batch) Expects(code string) bool {
	n, ok := ident.Sequence(b.BaseCode, code)
	return ok && n <= b.Quantity
}

func (b *Batch) IsComplete() bool {
	return b.Admitted == AdmittedYes
}

// StateFor returns the state of b given how many of its units exist.
func (b *Batch) StateFor(admitted int) State {
	switch {
	case b.IsComplete() || admitted >= b.Quantity:
		return StateComplete
	case admitted > 0:
		return StateAdmitting
	}

	return StatePlanned
}

// Progress reports how far admission of a batch has come.
type Progress struct {
	BatchID   string   `json:"batchId"`
	State     State    `json:"state"`
	Admitted  int      `json:"admitted"`
	Quantity  int      `json:"quantity"`
	Remaining []string `json:"remaining"`
}

func (p Progress) Complete() bool {
	return p.State == StateComplete
}
