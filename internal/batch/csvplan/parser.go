// Package csvplan reads batch plans exported from spreadsheets. A plan lists
// one batch per row: base code, product, cost and selling price, quantity.
package csvplan

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/stockroom/internal/encoding"
)

// Row is one planned batch.
type Row struct {
	Line         int
	BaseCode     string
	ProductID    string
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	Quantity     int
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes r to UTF-8, finds the header row among any preamble lines and
// returns every data row below it. Rows with an empty base code are skipped;
// any other malformed row fails the whole plan.
func (p *Parser) Parse(r io.Reader) ([]Row, error) {
	utf8r, _, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = delimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		records [][]string
		lines   []int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	profile, cols, headerIdx := detectProfile(records)
	if profile == nil {
		return nil, fmt.Errorf("no batch plan header found: expected columns %s", strings.Join(profiles[0].columns(), ", "))
	}

	return parseRows(profile, cols, records[headerIdx+1:], lines[headerIdx+1:])
}

// delimiter picks ';' when present anywhere, since European sheets use ','
// as the decimal separator.
func delimiter(raw []byte) rune {
	if bytes.ContainsRune(raw, ';') {
		return ';'
	}

	return ','
}

type colIndex map[string]int

func detectProfile(records [][]string) (*Profile, colIndex, int) {
	for rowIdx, record := range records {
		cols := make(colIndex, len(record))

		for i, header := range record {
			if name := normalise(header); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matches(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matches(p *Profile, cols colIndex) bool {
	for _, name := range p.columns() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts the records below the header. lines holds the file line
// of each record for error messages.
func parseRows(p *Profile, cols colIndex, records [][]string, lines []int) ([]Row, error) {
	var rows []Row

	for i, record := range records {
		line := lines[i]

		base := cell(record, cols[p.BaseCode])
		if base == "" {
			continue
		}

		row := Row{
			Line:      line,
			BaseCode:  base,
			ProductID: cell(record, cols[p.ProductID]),
		}

		if row.ProductID == "" {
			return nil, fmt.Errorf("line %d: missing product", line)
		}

		var err error

		if row.CostPrice, err = parsePrice(cell(record, cols[p.CostPrice])); err != nil {
			return nil, fmt.Errorf("line %d: cost price: %w", line, err)
		}

		if row.SellingPrice, err = parsePrice(cell(record, cols[p.SellingPrice])); err != nil {
			return nil, fmt.Errorf("line %d: selling price: %w", line, err)
		}

		qty := cell(record, cols[p.Quantity])

		if row.Quantity, err = strconv.Atoi(qty); err != nil || row.Quantity < 1 {
			return nil, fmt.Errorf("line %d: quantity %q is not a positive whole number", line, qty)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// parsePrice accepts "12.50" as well as the European "1.234,56". An empty
// cell is zero.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	clean := s
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%q is negative", s)
	}

	return d, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
