package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/fieldops-service/internal/model"
)

// Generator renders a completed service log as a printable work report.
type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(log model.ServiceLog) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Service Work Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Report %s, %s", log.ID, formatDate(log.ServiceDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addField(pdf, g.fontName, "Customer", log.CustomerName)
	addField(pdf, g.fontName, "Product", log.ProductName)
	addField(pdf, g.fontName, "Location", log.InstallationLocation)
	addField(pdf, g.fontName, "Technician", log.TechnicianName)
	addField(pdf, g.fontName, "Service type", serviceTypeLabel(log.ServiceType))
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Work performed", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.MultiCell(0, 6, log.WorkDescription, "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Amounts", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Service price: %.2f", log.ServicePrice), "", 1, "L", false, 0, "")
	if log.TechnicianFee != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Technician fee: %.2f", *log.TechnicianFee), "", 1, "L", false, 0, "")
	}

	if log.Notes != nil && *log.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, *log.Notes, "", "L", false)
	}

	if len(log.Evidence) > 0 {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Evidence", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for _, url := range log.Evidence {
			pdf.CellFormat(0, 5, url, "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addField(pdf *gofpdf.Fpdf, fontName, label, value string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func serviceTypeLabel(serviceType model.ServiceType) string {
	if serviceType == model.ServiceTypeContract {
		return "Contract maintenance"
	}
	return "On-call service"
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
