package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// Letter pages with one-inch side and bottom margins and a slim top margin.
const (
	marginLeft   = 72
	marginTop    = 24
	marginRight  = 72
	marginBottom = 72
)

// RenderPDF writes the footprint report for a parsed log as a PDF document.
func RenderPDF(w io.Writer, log *TrainingLog, fp *Footprint) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 28, "Carbon Footprint Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if !log.Start.IsZero() {
		pdf.CellFormat(0, 14, fmt.Sprintf("Training period: %s to %s",
			log.Start.Format("2006-01-02 15:04:05"), log.End.Format("2006-01-02 15:04:05")),
			"", 1, "L", false, 0, "")
	}
	if log.Version != "" {
		pdf.CellFormat(0, 14, fmt.Sprintf("carbontracker version %s", log.Version), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	writeSummary(pdf, log, fp)
	pdf.Ln(14)
	writeEpochTable(pdf, fp)

	pdf.Ln(14)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 14, fmt.Sprintf("This is equivalent to %.6f km travelled by car.", fp.CarKm),
		"", 1, "L", false, 0, "")

	return pdf.Output(w)
}

func writeSummary(pdf *fpdf.Fpdf, log *TrainingLog, fp *Footprint) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 18, "Summary", "", 1, "L", false, 0, "")

	rows := [][2]string{
		{"Training duration", FormatDuration(fp.Duration)},
		{"Energy consumption", fmt.Sprintf("%.6f kWh", fp.Energy)},
		{"Average carbon intensity", fmt.Sprintf("%.2f gCO2eq/kWh", fp.Intensity)},
		{"CO2eq emissions", fmt.Sprintf("%.6f g", fp.CO2*1000)},
	}
	if log.PUE > 0 {
		rows = append(rows, [2]string{"PUE coefficient", fmt.Sprintf("%.2f", log.PUE)})
	}

	for _, row := range rows {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(160, 14, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 14, row[1], "", 1, "L", false, 0, "")
	}
}

func writeEpochTable(pdf *fpdf.Fpdf, fp *Footprint) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 18, "Epochs", "", 1, "L", false, 0, "")

	widths := []float64{60, 108, 90, 105, 105}
	headers := []string{"Epoch", "Duration", "Power (W)", "Energy (kWh)", "CO2eq (g)"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 16, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 10)
	for _, e := range fp.Epochs {
		cells := []string{
			fmt.Sprintf("%d", e.Number),
			FormatDuration(e.Duration),
			fmt.Sprintf("%.2f", e.Power),
			fmt.Sprintf("%.6f", e.Energy),
			fmt.Sprintf("%.6f", e.CO2*1000),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 14, c, "", 0, "L", false, 0, "")
		}
		pdf.Ln(14)
	}
}
