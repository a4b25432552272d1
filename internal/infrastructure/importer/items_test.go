package importer

import (
	"strings"
	"testing"

	"github.com/logidocs/backend/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsReader_Read(t *testing.T) {
	sheet := "Item,Description,QTY,UOM,Price,CBM,GW,NW,Ctns\n" +
		"Steel bolts,M8 zinc,1200,pcs,$0.15,1.2,350,340,12\n" +
		"\n" +
		"Hex nuts,,800,pcs,0.05,0.4,90,88,4\n"

	result, err := NewItemsReader(0).Read(strings.NewReader(sheet))
	require.NoError(t, err)

	assert.False(t, result.HasErrors())
	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, []int{2, 4}, result.Rows)
	require.Len(t, result.Items, 2)
	assert.Equal(t, document.ItemInput{
		ProductName: "Steel bolts",
		Description: "M8 zinc",
		Quantity:    "1200",
		Unit:        "pcs",
		UnitPrice:   "$0.15",
		Packages:    "12",
		NetWeight:   "340",
		GrossWeight: "350",
		Measurement: "1.2",
	}, result.Items[0])
	assert.Equal(t, "Hex nuts", result.Items[1].ProductName)
}

func TestItemsReader_RowErrorsCarryLineNumbers(t *testing.T) {
	sheet := "product_name,quantity,unit_price\n" +
		"Bolts,ten,1\n" +
		",5,1\n" +
		"Nuts,-3,1\n"

	result, err := NewItemsReader(0).Read(strings.NewReader(sheet))
	require.NoError(t, err)

	require.True(t, result.HasErrors())
	require.Len(t, result.Errors, 3)
	assert.Equal(t, RowError{Row: 2, Column: "quantity", Code: document.CodeInvalidNumber, Message: "quantity is not a valid number"}, result.Errors[0])
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Equal(t, "product_name", result.Errors[1].Column)
	assert.Equal(t, document.CodeRequired, result.Errors[1].Code)
	assert.Equal(t, 4, result.Errors[2].Row)
	assert.Equal(t, document.CodeNegative, result.Errors[2].Code)
}

func TestItemsReader_MissingProductColumn(t *testing.T) {
	_, err := NewItemsReader(0).Read(strings.NewReader("qty,price\n1,2\n"))

	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestItemsReader_NoDataRows(t *testing.T) {
	_, err := NewItemsReader(0).Read(strings.NewReader("product,qty\n\n"))

	assert.ErrorIs(t, err, ErrNoDataRows)
}

func TestItemsReader_TooManyRows(t *testing.T) {
	sheet := "product\nA\nB\nC\n"

	result, err := NewItemsReader(2).Read(strings.NewReader(sheet))
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 3, result.TotalRows)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrCodeTooManyRows, result.Errors[0].Code)
}

func TestSplitItemField(t *testing.T) {
	index, column := splitItemField("items[12].gross_weight")
	assert.Equal(t, 12, index)
	assert.Equal(t, "gross_weight", column)

	index, column = splitItemField("currency")
	assert.Equal(t, -1, index)
	assert.Equal(t, "currency", column)
}
