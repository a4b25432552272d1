package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logidocs/backend/internal/domain/document"
)

// DefaultMaxRows caps the number of line items accepted from one file
const DefaultMaxRows = 1000

// columnAliases maps accepted header spellings to item columns
var columnAliases = map[string]string{
	"product_name": "product_name",
	"product":      "product_name",
	"item":         "product_name",
	"item_name":    "product_name",
	"goods":        "product_name",
	"description":  "description",
	"desc":         "description",
	"quantity":     "quantity",
	"qty":          "quantity",
	"unit":         "unit",
	"uom":          "unit",
	"unit_price":   "unit_price",
	"price":        "unit_price",
	"amount":       "amount",
	"total":        "amount",
	"line_total":   "amount",
	"packages":     "packages",
	"pkgs":         "packages",
	"cartons":      "packages",
	"ctns":         "packages",
	"net_weight":   "net_weight",
	"nw":           "net_weight",
	"net_wt":       "net_weight",
	"gross_weight": "gross_weight",
	"gw":           "gross_weight",
	"gross_wt":     "gross_weight",
	"measurement":  "measurement",
	"cbm":          "measurement",
	"volume":       "measurement",
}

// ItemsResult is the outcome of reading a line item sheet
type ItemsResult struct {
	Items      []document.ItemInput
	Rows       []int
	Errors     []RowError
	TotalRows  int
	Truncated  bool
	ErrorCount int
}

// HasErrors reports whether any row failed to parse or validate
func (r *ItemsResult) HasErrors() bool {
	return r.ErrorCount > 0
}

// ItemsReader turns a CSV sheet into document line items
type ItemsReader struct {
	maxRows   int
	maxErrors int
}

// NewItemsReader creates an ItemsReader. maxRows <= 0 uses DefaultMaxRows.
func NewItemsReader(maxRows int) *ItemsReader {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	return &ItemsReader{maxRows: maxRows, maxErrors: 100}
}

// Read parses r and validates every row with the document item rules.
// File-level problems (encoding, header, no rows) are returned as error;
// row problems are collected in the result.
func (ir *ItemsReader) Read(r io.Reader) (*ItemsResult, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	columns := make(map[string]string)
	for _, h := range parser.Headers() {
		if col, ok := columnAliases[h]; ok {
			if _, taken := columns[col]; !taken {
				columns[col] = h
			}
		}
	}
	if _, ok := columns["product_name"]; !ok {
		return nil, fmt.Errorf("%w: product_name", ErrMissingColumn)
	}

	result := &ItemsResult{}
	collected := NewErrorCollection(ir.maxErrors)
	for {
		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			var rowErr RowError
			if errors.As(err, &rowErr) {
				collected.Add(rowErr)
				continue
			}
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		result.TotalRows++
		if len(result.Items) >= ir.maxRows {
			result.Truncated = true
			continue
		}
		result.Items = append(result.Items, toItemInput(row, columns))
		result.Rows = append(result.Rows, row.LineNumber)
	}
	if result.TotalRows == 0 && !collected.HasErrors() {
		return nil, ErrNoDataRows
	}
	if result.Truncated {
		collected.Add(NewRowError(0, "", ErrCodeTooManyRows,
			fmt.Sprintf("at most %d rows can be imported, file has %d", ir.maxRows, result.TotalRows)))
	}

	_, fieldErrs := document.ParseItems(result.Items)
	for _, fe := range fieldErrs {
		index, column := splitItemField(fe.Field)
		line := 0
		if index >= 0 && index < len(result.Rows) {
			line = result.Rows[index]
		}
		collected.Add(NewRowError(line, column, fe.Code, fe.Message))
	}

	result.Errors = collected.Errors()
	result.ErrorCount = collected.TotalCount()
	return result, nil
}

func toItemInput(row *Row, columns map[string]string) document.ItemInput {
	get := func(col string) string {
		if h, ok := columns[col]; ok {
			return row.Get(h)
		}
		return ""
	}
	return document.ItemInput{
		ProductName: get("product_name"),
		Description: get("description"),
		Quantity:    get("quantity"),
		Unit:        get("unit"),
		UnitPrice:   get("unit_price"),
		Amount:      get("amount"),
		Packages:    get("packages"),
		NetWeight:   get("net_weight"),
		GrossWeight: get("gross_weight"),
		Measurement: get("measurement"),
	}
}

// splitItemField turns "items[3].quantity" into (3, "quantity")
func splitItemField(field string) (int, string) {
	rest, ok := strings.CutPrefix(field, "items[")
	if !ok {
		return -1, field
	}
	end := strings.Index(rest, "]")
	if end < 0 {
		return -1, field
	}
	index, err := strconv.Atoi(rest[:end])
	if err != nil {
		return -1, field
	}
	return index, strings.TrimPrefix(rest[end+1:], ".")
}
