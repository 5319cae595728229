package csvplan

// Profile is one accepted header layout of a batch plan sheet.
type Profile struct {
	Name         string
	BaseCode     string
	ProductID    string
	CostPrice    string
	SellingPrice string
	Quantity     string
}

func (p Profile) columns() []string {
	return []string{p.BaseCode, p.ProductID, p.CostPrice, p.SellingPrice, p.Quantity}
}

// profiles are tried in order against every row until one matches. Column
// names are compared case-insensitively after trimming.
var profiles = []Profile{
	{
		Name:         "stockroom",
		BaseCode:     "base_code",
		ProductID:    "product_id",
		CostPrice:    "cost_price",
		SellingPrice: "selling_price",
		Quantity:     "quantity",
	},
	{
		Name:         "spreadsheet",
		BaseCode:     "base code",
		ProductID:    "product",
		CostPrice:    "cost",
		SellingPrice: "price",
		Quantity:     "qty",
	},
	{
		Name:         "planilha",
		BaseCode:     "código base",
		ProductID:    "produto",
		CostPrice:    "preço custo",
		SellingPrice: "preço venda",
		Quantity:     "quantidade",
	},
}
