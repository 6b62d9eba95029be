// Package reporting renders drift reports in document formats.
package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/OlderMutt/Surface-Minder/internal/core/domain"
)

// PDFExporter exports check results to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportDriftReport generates a PDF from a baseline comparison result.
func (e *PDFExporter) ExportDriftReport(result *domain.CheckResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, result)
	e.addSummary(pdf, result)
	e.addHostSections(pdf, result)
	e.addFooter(pdf, result)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, result *domain.CheckResult) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 14, "Surface Drift Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 8, fmt.Sprintf("Tenant: %s", result.Tenant), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", result.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	for _, a := range result.Artifacts {
		pdf.CellFormat(0, 6, fmt.Sprintf("Artifact: %s (%s)", a.Name, a.Kind), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, result *domain.CheckResult) {
	var added, removed, changed int
	for _, d := range result.Report {
		added += len(d.Added)
		removed += len(d.Removed)
		changed += len(d.Changed)
	}

	r, g, b := 40, 167, 69 // green when clean
	if result.Report.Total() > 0 {
		r, g, b = 220, 53, 69 // red when drifted
	}

	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 22, "F")
	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+3)
	pdf.CellFormat(60, 16, fmt.Sprintf("%d changes", result.Report.Total()), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetXY(100, y+6)
	pdf.CellFormat(90, 10, fmt.Sprintf("%d added / %d removed / %d changed on %d hosts",
		added, removed, changed, len(result.Report)), "", 0, "L", false, 0, "")

	pdf.SetY(y + 26)
	pdf.Ln(4)
}

func (e *PDFExporter) addHostSections(pdf *gofpdf.Fpdf, result *domain.CheckResult) {
	for _, host := range result.Report.Hosts() {
		delta := result.Report[host]

		pdf.SetFont("Arial", "B", 13)
		pdf.SetTextColor(0, 51, 102)
		pdf.CellFormat(0, 9, host, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(40, 40, 40)
		for _, entry := range delta.Added {
			pdf.CellFormat(0, 6, fmt.Sprintf("  + %s  state=%s  svc=%s", entry.Key, entry.Value.State, entry.Value.Service), "", 1, "L", false, 0, "")
		}
		for _, entry := range delta.Removed {
			pdf.CellFormat(0, 6, fmt.Sprintf("  - %s  state=%s  svc=%s", entry.Key, entry.Value.State, entry.Value.Service), "", 1, "L", false, 0, "")
		}
		for _, c := range delta.Changed {
			pdf.CellFormat(0, 6, fmt.Sprintf("  ~ %s  %s/%s -> %s/%s", c.Key, c.Old.State, c.Old.Service, c.New.State, c.New.Service), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, result *domain.CheckResult) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 6, fmt.Sprintf("SurfaceMinder run %s", result.RunID), "", 0, "C", false, 0, "")
}
