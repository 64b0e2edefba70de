package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/fieldops-service/internal/model"
)

// Generator renders a unified timeline as a spreadsheet for offline
// history review.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(items []model.TimelineItem) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Timeline"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Service Timeline")
	set("A2", "Generated")
	set("B2", time.Now().UTC().Format("2006-01-02 15:04"))
	set("A3", "Items")
	set("B3", len(items))

	headers := []string{"Date", "Kind", "Status", "Title", "Customer", "Product", "Technician", "Address", "Notes"}
	headerRow := 5
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, err
		}
		set(cell, header)
	}

	for rowIndex, item := range items {
		row := headerRow + 1 + rowIndex
		set(fmt.Sprintf("A%d", row), item.Date.Format("2006-01-02"))
		set(fmt.Sprintf("B%d", row), string(item.SourceKind))
		set(fmt.Sprintf("C%d", row), item.DisplayStatus)
		set(fmt.Sprintf("D%d", row), item.Title)
		set(fmt.Sprintf("E%d", row), item.CustomerName)
		set(fmt.Sprintf("F%d", row), item.ProductName)
		set(fmt.Sprintf("G%d", row), item.TechnicianName)
		set(fmt.Sprintf("H%d", row), item.Address)
		set(fmt.Sprintf("I%d", row), item.Notes)
	}

	_ = file.SetColWidth(sheet, "A", "A", 12)
	_ = file.SetColWidth(sheet, "D", "F", 28)
	_ = file.SetColWidth(sheet, "G", "I", 22)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
