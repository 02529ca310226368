package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var march = stock.Period{Year: 2024, Month: time.March}

func record(t *testing.T, name, opening, purchased, utilised, adj, minLevel string) stock.StockStatusRecord {
	t.Helper()
	r, err := stock.NewStockStatusRecord(march, name, "Whole Spices",
		decimal.RequireFromString(opening), decimal.RequireFromString(minLevel), stock.ThreeTierPolicy{})
	require.NoError(t, err)
	r.AddPurchased(decimal.RequireFromString(purchased))
	r.AddUtilised(decimal.RequireFromString(utilised))
	require.NoError(t, r.SetAdjustment(decimal.RequireFromString(adj)))
	return *r
}

func TestXLSXExporter_Write(t *testing.T) {
	e := NewXLSXExporter()
	e.now = func() time.Time { return time.Date(2024, time.April, 1, 0, 5, 0, 0, time.UTC) }
	records := []stock.StockStatusRecord{
		record(t, "Cumin", "10", "5", "2", "0", "5"),
		record(t, "Clove", "10", "0", "0", "-9", "5"),
		record(t, "Saffron", "1", "0", "0", "-2", "1"),
	}

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, march, stock.PolicyThreeTier, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetStock, sheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(sheetStock)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Opening Balance", rows[0][3])
	assert.Equal(t, []string{"2024-03-01", "Cumin", "Whole Spices", "10.00", "5.00", "2.00", "0.00", "13.00", "5.00", "Normal"}, rows[1])
	assert.Equal(t, "Critical", rows[2][9])
	assert.Equal(t, "-1.00", rows[3][7])
	assert.Equal(t, "Out of Stock", rows[3][9])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Period", "2024-03"}, summary[0])
	assert.Equal(t, []string{"Policy", "three_tier"}, summary[1])
	assert.Equal(t, []string{"Generated At", "2024-04-01T00:05:00Z"}, summary[2])
	assert.Equal(t, []string{"Total Items", "3"}, summary[4])
	assert.Equal(t, []string{"Critical", "1"}, summary[7])
	assert.Equal(t, []string{"Out of Stock", "1"}, summary[8])
}

func TestXLSXExporter_StatusCellsAreFilled(t *testing.T) {
	e := NewXLSXExporter()
	records := []stock.StockStatusRecord{record(t, "Cumin", "0", "0", "0", "0", "5")}

	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf, march, stock.PolicyThreeTier, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	styleID, err := f.GetCellStyle(sheetStock, "J2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotEmpty(t, style.Fill.Color)
	assert.Contains(t, strings.ToUpper(style.Fill.Color[0]), "FFC7CE")
}

func TestXLSXExporter_EmptySheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXExporter().Write(&buf, march, stock.PolicyTwoTier, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetStock)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestXLSXExporter_Names(t *testing.T) {
	e := NewXLSXExporter()
	assert.Equal(t, "stock-status-2024-03.xlsx", e.FileName(march))
	assert.Contains(t, e.ContentType(), "spreadsheetml")
}
