package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders datasets into a single-sheet workbook.
type XLSXExporter struct {
	sheet string
}

// NewXLSXExporter builds an XLSX exporter writing to the named sheet.
func NewXLSXExporter(sheet string) *XLSXExporter {
	if sheet == "" {
		sheet = "Datos"
	}
	return &XLSXExporter{sheet: sheet}
}

// Render produces the workbook bytes. The title, when set, takes the first
// row merged across every column.
func (e *XLSXExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(e.sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if e.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("delete default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "#BFBFBF", Style: 1},
			{Type: "right", Color: "#BFBFBF", Style: 1},
			{Type: "top", Color: "#BFBFBF", Style: 1},
			{Type: "bottom", Color: "#BFBFBF", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("body style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	if err := f.SetColWidth(e.sheet, "A", "A", 14); err != nil {
		return nil, err
	}
	if len(data.Headers) > 1 {
		if err := f.SetColWidth(e.sheet, "B", lastCol, 28); err != nil {
			return nil, err
		}
	}

	row := 1
	if title != "" {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
		_ = f.SetCellValue(e.sheet, first, title)
		if err := f.MergeCell(e.sheet, first, last); err != nil {
			return nil, fmt.Errorf("merge title: %w", err)
		}
		_ = f.SetCellStyle(e.sheet, first, last, headerStyle)
		row++
	}

	for i, header := range data.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(e.sheet, cell, header)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
	_ = f.SetCellStyle(e.sheet, first, last, headerStyle)
	row++

	bodyStart := row
	for _, record := range data.Rows {
		for i, header := range data.Headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(e.sheet, cell, record[header])
		}
		row++
	}
	if len(data.Rows) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, bodyStart)
		last, _ := excelize.CoordinatesToCellName(len(data.Headers), row-1)
		_ = f.SetCellStyle(e.sheet, first, last, bodyStyle)
	}

	columns := make(map[string]int, len(data.Headers))
	for i, header := range data.Headers {
		columns[header] = i + 1
	}
	for _, m := range data.Merges {
		col, ok := columns[m.Header]
		if !ok || m.FirstRow < 0 || m.LastRow <= m.FirstRow || m.LastRow >= len(data.Rows) {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(col, bodyStart+m.FirstRow)
		bottom, _ := excelize.CoordinatesToCellName(col, bodyStart+m.LastRow)
		if err := f.MergeCell(e.sheet, top, bottom); err != nil {
			return nil, fmt.Errorf("merge %s:%s: %w", top, bottom, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
