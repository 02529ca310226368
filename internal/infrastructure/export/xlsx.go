// Package export renders the stock status sheet as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/xuri/excelize/v2"
)

const (
	sheetStock   = "Stock Status"
	sheetSummary = "Summary"

	// numFmtTwoDecimals is the built-in "0.00" number format
	numFmtTwoDecimals = 2
)

var stockHeader = []interface{}{
	"Date", "Material", "Category", "Opening Balance", "Purchases", "Utilised",
	"Adjustment (+/-)", "Closing Balance", "Min Level", "Status",
}

var columnWidths = map[string]float64{
	"A": 12, "B": 24, "C": 18, "D": 16, "E": 12, "F": 12, "G": 16, "H": 16, "I": 12, "J": 14,
}

// statusFills are the background colours of the Status column
var statusFills = map[stock.Status]string{
	stock.StatusNormal:     "#C6EFCE",
	stock.StatusLowStock:   "#FFEB9C",
	stock.StatusCritical:   "#F8CBAD",
	stock.StatusOutOfStock: "#FFC7CE",
}

// XLSXExporter writes stock sheets to XLSX
type XLSXExporter struct {
	now func() time.Time
}

// NewXLSXExporter creates an exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{now: time.Now}
}

// ContentType is the MIME type of the produced workbook
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName returns the download name for a period, e.g. stock-status-2024-03.xlsx
func (e *XLSXExporter) FileName(period stock.Period) string {
	return fmt.Sprintf("stock-status-%s.xlsx", period)
}

// Write renders one sheet row per record plus a summary sheet with the
// status counts, and writes the workbook to w.
func (e *XLSXExporter) Write(w io.Writer, period stock.Period, policy string, records []stock.StockStatusRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetStock); err != nil {
		return err
	}
	if err := e.writeStockSheet(f, period, records); err != nil {
		return fmt.Errorf("write stock sheet: %w", err)
	}
	if err := e.writeSummarySheet(f, period, policy, records); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func (e *XLSXExporter) writeStockSheet(f *excelize.File, period stock.Period, records []stock.StockStatusRecord) error {
	if err := f.SetSheetRow(sheetStock, "A1", &stockHeader); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "#808080", Style: 1}},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetStock, "A1", "J1", headerStyle); err != nil {
		return err
	}

	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return err
	}
	statusStyles := make(map[stock.Status]int, len(statusFills))
	for status, color := range statusFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return err
		}
		statusStyles[status] = id
	}

	date := period.Start().Format(time.DateOnly)
	for i := range records {
		r := &records[i]
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{
			date,
			r.Name,
			r.Category,
			r.OpeningBalance.InexactFloat64(),
			r.PurchasedQty.InexactFloat64(),
			r.UtilisedQty.InexactFloat64(),
			r.Adjustment.InexactFloat64(),
			r.ClosingBalance.InexactFloat64(),
			r.MinLevel.InexactFloat64(),
			r.Status.String(),
		}
		if err := f.SetSheetRow(sheetStock, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetStock, fmt.Sprintf("D%d", row), fmt.Sprintf("I%d", row), numberStyle); err != nil {
			return err
		}
		if id, ok := statusStyles[r.Status]; ok {
			statusCell := fmt.Sprintf("J%d", row)
			if err := f.SetCellStyle(sheetStock, statusCell, statusCell, id); err != nil {
				return err
			}
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(sheetStock, col, col, width); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetStock, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if len(records) > 0 {
		return f.AutoFilter(sheetStock, fmt.Sprintf("A1:J%d", len(records)+1), nil)
	}
	return nil
}

func (e *XLSXExporter) writeSummarySheet(f *excelize.File, period stock.Period, policy string, records []stock.StockStatusRecord) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return err
	}
	summary := stock.Summarize(records)
	rows := [][]interface{}{
		{"Period", period.String()},
		{"Policy", policy},
		{"Generated At", e.now().UTC().Format(time.RFC3339)},
		{},
		{"Total Items", summary.TotalItems},
		{stock.StatusNormal.String(), summary.NormalCount},
		{stock.StatusLowStock.String(), summary.LowStockCount},
		{stock.StatusCritical.String(), summary.CriticalCount},
		{stock.StatusOutOfStock.String(), summary.OutOfStockCount},
	}
	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &rows[i]); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "B", 20)
}
