package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/pestcare-visits/internal/model"
)

// Generator renders the service report handed to the client after a
// completed visit. It uses the built-in Helvetica face, so text outside
// Windows-1252 is transliterated by gofpdf.
type Generator struct {
	fontName string
	company  string
}

func NewGenerator(company string) *Generator {
	if strings.TrimSpace(company) == "" {
		company = "Pest Control Services"
	}
	return &Generator{fontName: "Helvetica", company: company}
}

func (g *Generator) Generate(doc model.VisitDocument) ([]byte, error) {
	if doc.Visit.Status != model.VisitStatusCompleted {
		return nil, fmt.Errorf("visit %s is not completed", doc.Visit.Number())
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("Service report %s", doc.Visit.Number()), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, tr(g.company), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "B", 13)
	pdf.CellFormat(0, 8, "Service Report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Visit %s on %s", doc.Visit.Number(), formatDate(doc.Visit.Date)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contract %s (%s - %s)",
		safeValue(doc.Contract.ContractNumber),
		formatDate(doc.Contract.StartDate),
		formatDate(doc.Contract.EndDate),
	)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addClientBlock(pdf, g.fontName, tr, doc.Client)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Treatment", "", 1, "L", false, 0, "")

	colWidths := []float64{50, 130}
	drawTableRow(pdf, g.fontName, []string{"Field", "Value"}, colWidths, true)
	rows := [][]string{
		{"Service type", string(doc.Contract.Cadence)},
		{"Pest type", formatString(doc.Visit.PestType)},
		{"Chemicals used", formatString(doc.Visit.Chemicals)},
		{"Completed at", formatDateTime(doc.Visit.CompletedAt)},
		{"Technician", technicianName(doc.Technician)},
	}
	for _, row := range rows {
		drawTableRow(pdf, g.fontName, []string{row[0], tr(row[1])}, colWidths, false)
	}

	if doc.Visit.Notes != nil && strings.TrimSpace(*doc.Visit.Notes) != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Technician notes", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, tr(*doc.Visit.Notes), "", "L", false)
	}

	pdf.Ln(8)
	signatureBlock(pdf, g.fontName, "Technician", tr(technicianName(doc.Technician)))
	signatureBlock(pdf, g.fontName, "Client", tr(doc.Client.Name))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addClientBlock(pdf *gofpdf.Fpdf, fontName string, tr func(string) string, client model.Client) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	address := client.Address
	if client.UnitNumber != nil && *client.UnitNumber != "" {
		address = fmt.Sprintf("%s, unit %s", address, *client.UnitNumber)
	}
	lines := []string{
		client.Name,
		fmt.Sprintf("Phone: %s", safeValue(client.Phone)),
		fmt.Sprintf("Address: %s", safeValue(address)),
		fmt.Sprintf("Emirate: %s", safeValue(client.Emirate)),
		fmt.Sprintf("Property: %s", safeValue(string(client.PropertyType))),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 8, col, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, name string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(name)), "", 1, "L", false, 0, "")
}

func technicianName(tech *model.Technician) string {
	if tech == nil {
		return ""
	}
	return tech.Name
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatString(value *string) string {
	if value == nil {
		return "-"
	}
	return safeValue(*value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}

func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02.01.2006 15:04 UTC")
}
