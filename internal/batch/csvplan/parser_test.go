package csvplan_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/stockroom/internal/batch/csvplan"
)

func TestParser_Parse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    []csvplan.Row
		wantErr string
	}

	tests := []testCase{
		{
			name: "CommaSeparated",
			input: `base_code,product_id,cost_price,selling_price,quantity
SHOE,P-1,20.00,50,3
HAT,P-2,4.5,9.99,1
`,
			want: []csvplan.Row{
				{Line: 2, BaseCode: "SHOE", ProductID: "P-1", CostPrice: dec("20"), SellingPrice: dec("50"), Quantity: 3},
				{Line: 3, BaseCode: "HAT", ProductID: "P-2", CostPrice: dec("4.5"), SellingPrice: dec("9.99"), Quantity: 1},
			},
		},
		{
			name: "EuropeanSheetWithPreamble",
			input: `Plano de lotes;Março 2026
Loja;Centro

Código Base ;Produto ;Preço Custo ;Preço Venda ;Quantidade ;
SAPATO ;P-1 ;1.234,50 ;2.000,00 ;12 ;
 ; ; ; ; ;
`,
			want: []csvplan.Row{
				{Line: 5, BaseCode: "SAPATO", ProductID: "P-1", CostPrice: dec("1234.5"), SellingPrice: dec("2000"), Quantity: 12},
			},
		},
		{
			name: "ColumnsInAnyOrder",
			input: `qty;price;Product;Cost;Base Code;Notes
2;10;P-9;5;CAP;ignored
`,
			want: []csvplan.Row{
				{Line: 2, BaseCode: "CAP", ProductID: "P-9", CostPrice: dec("5"), SellingPrice: dec("10"), Quantity: 2},
			},
		},
		{
			name:  "HeaderOnly",
			input: "base_code,product_id,cost_price,selling_price,quantity\n",
		},
		{
			name:    "NoHeader",
			input:   "a,b,c\n1,2,3\n",
			wantErr: "no batch plan header",
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: "no batch plan header",
		},
		{
			name: "ZeroQuantity",
			input: `base_code,product_id,cost_price,selling_price,quantity
SHOE,P-1,1,2,0
`,
			wantErr: "line 2: quantity",
		},
		{
			name: "MissingProduct",
			input: `base_code,product_id,cost_price,selling_price,quantity
SHOE,,1,2,1
`,
			wantErr: "missing product",
		},
		{
			name: "NegativePrice",
			input: `base_code;product_id;cost_price;selling_price;quantity
SHOE;P-1;-1,00;2;1
`,
			wantErr: "cost price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := csvplan.NewParser().Parse(strings.NewReader(tt.input))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			require.Len(t, got, len(tt.want))

			for i := range tt.want {
				assert.Equal(t, tt.want[i].Line, got[i].Line)
				assert.Equal(t, tt.want[i].BaseCode, got[i].BaseCode)
				assert.Equal(t, tt.want[i].ProductID, got[i].ProductID)
				assert.True(t, tt.want[i].CostPrice.Equal(got[i].CostPrice), "cost %s", got[i].CostPrice)
				assert.True(t, tt.want[i].SellingPrice.Equal(got[i].SellingPrice), "price %s", got[i].SellingPrice)
				assert.Equal(t, tt.want[i].Quantity, got[i].Quantity)
			}
		})
	}
}

func TestParser_Latin1Sheet(t *testing.T) {
	sheet := "Código Base;Produto;Preço Custo;Preço Venda;Quantidade\nSAPATO;Sapato Clássico;10,00;25,00;2\n"

	latin1, err := charmap.Windows1252.NewEncoder().String(sheet)
	require.NoError(t, err)

	rows, err := csvplan.NewParser().Parse(strings.NewReader(latin1))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Sapato Clássico", rows[0].ProductID)
}
