package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/validate"
)

type plan struct {
	BaseCode string          `json:"baseCode" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"min=1,max=100"`
}

func TestStruct(t *testing.T) {
	type testCase struct {
		name    string
		input   plan
		wantMsg []string
	}

	tests := []testCase{
		{
			name:  "Valid",
			input: plan{BaseCode: "SHOE", Price: decimal.NewFromInt(5), Quantity: 1},
		},
		{
			name:    "MissingBaseCode",
			input:   plan{Quantity: 1},
			wantMsg: []string{"baseCode: is required"},
		},
		{
			name:    "NegativePriceAndZeroQuantity",
			input:   plan{BaseCode: "SHOE", Price: decimal.NewFromInt(-1)},
			wantMsg: []string{"price: must be greater than or equal to 0", "quantity: must be at least 1"},
		},
		{
			name:    "QuantityTooLarge",
			input:   plan{BaseCode: "SHOE", Quantity: 101},
			wantMsg: []string{"quantity: must be at most 100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.input)

			if len(tt.wantMsg) == 0 {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, apperr.ErrValidation)

			for _, msg := range tt.wantMsg {
				assert.Contains(t, apperr.Message(err), msg)
			}
		})
	}
}
