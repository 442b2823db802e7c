package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight

	chartSize = 110.0 // Lorenz chart is square
)

// PDFInequalityReport renders a run (and optionally a rate sweep) to PDF
type PDFInequalityReport struct {
	pdf     *fpdf.Fpdf
	results *Results
	sweep   *RateSweep
}

// GenerateInequalityPDFReport creates the PDF report. sweep may be nil.
func GenerateInequalityPDFReport(results *Results, sweep *RateSweep) ([]byte, error) {
	if results == nil {
		return nil, fmt.Errorf("no results to report")
	}
	report := &PDFInequalityReport{
		pdf:     fpdf.New("P", "mm", "A4", ""),
		results: results,
		sweep:   sweep,
	}

	report.pdf.SetMargins(marginLeft, marginTop, marginRight)
	report.pdf.SetAutoPageBreak(true, marginBottom)
	report.pdf.SetTitle("Income Inequality Report", false)

	report.addSummaryPage()
	report.addLorenzPage()
	if sweep != nil && len(sweep.Points) > 0 {
		report.addSweepPage()
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePDFReport writes the PDF report to filename
func WritePDFReport(results *Results, sweep *RateSweep, filename string) error {
	data, err := GenerateInequalityPDFReport(results, sweep)
	if err != nil {
		return fmt.Errorf("rendering PDF: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}

func (r *PDFInequalityReport) addSummaryPage() {
	r.pdf.AddPage()

	r.pdf.SetFont("Arial", "B", 24)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.Ln(10)
	r.pdf.CellFormat(contentWidth, 12, "Income Inequality Report", "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "I", 11)
	r.pdf.SetTextColor(80, 80, 80)
	r.pdf.CellFormat(contentWidth, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2 January 2006")), "", 1, "C", false, 0, "")
	r.pdf.Ln(8)

	p := r.results.Params
	r.drawSectionHeader("Parameters")
	widths := []float64{70, contentWidth - 70}
	r.drawTableRow([]string{"Population", fmt.Sprintf("%d", p.Population)}, widths, false)
	r.drawTableRow([]string{"Income groups", fmt.Sprintf("%d", p.GroupCount)}, widths, false)
	r.drawTableRow([]string{"Group span", FormatMoneyFull(p.GroupSpan)}, widths, false)
	r.drawTableRow([]string{"Distribution", p.Distribution.Label()}, widths, false)
	r.drawTableRow([]string{"Seed", fmt.Sprintf("%d", r.results.Seed)}, widths, false)
	r.pdf.Ln(6)

	r.drawSectionHeader("Inequality")
	cols := []float64{70, (contentWidth - 70) / 2, (contentWidth - 70) / 2}
	r.drawTableHeader([]string{"Metric", "Before tax", "After tax"}, cols)
	r.drawTableRow([]string{"Gini coefficient", FormatGini(r.results.GiniBefore), FormatGini(r.results.GiniAfter)}, cols, true)
	r.drawTableRow([]string{"Total income",
		FormatMoneyFull(r.results.TaxSummary.TotalGross), FormatMoneyFull(r.results.TaxSummary.TotalNet)}, cols, false)
	r.drawTableRow([]string{"Average income",
		FormatMoney(AverageIncome(r.results.IncomesBefore)), FormatMoney(AverageIncome(r.results.IncomesAfter))}, cols, false)
	r.drawTableRow([]string{"Median income",
		FormatMoney(MedianIncome(r.results.IncomesBefore)), FormatMoney(MedianIncome(r.results.IncomesAfter))}, cols, false)
	r.pdf.Ln(4)

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	change := "Gini change: n/a"
	if !IsUndefinedGini(r.results.GiniChange) {
		change = fmt.Sprintf("Gini change: %+.4f (%s)", r.results.GiniChange, FormatPercent(r.results.GiniChangePercent))
	}
	r.pdf.CellFormat(contentWidth, 6, change, "", 1, "L", false, 0, "")
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Tax collected: %s (%s of total income)",
		FormatMoneyFull(r.results.TaxSummary.TotalTax), FormatPercent(r.results.TaxSummary.TaxShare)), "", 1, "L", false, 0, "")
	r.pdf.Ln(6)

	r.drawSectionHeader("Tax Brackets")
	bw := []float64{20, 55, 55, contentWidth - 130}
	r.drawTableHeader([]string{"#", "From", "To", "Rate"}, bw)
	from := 0
	for i, b := range p.Brackets {
		r.drawTableRow([]string{
			fmt.Sprintf("%d", i+1),
			FormatMoneyFull(from),
			FormatMoneyFull(from + b.Width),
			fmt.Sprintf("%.1f%%", b.Rate),
		}, bw, false)
		from += b.Width
	}
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.Ln(2)
	r.pdf.MultiCell(contentWidth, 4.5,
		fmt.Sprintf("Each bracket taxes the next slice of income. Income above %s is not taxed.",
			FormatMoneyFull(BracketCoverage(p.Brackets))), "", "L", false)
}

func (r *PDFInequalityReport) addLorenzPage() {
	r.pdf.AddPage()
	r.drawSectionHeader("Lorenz Curves")

	x0 := marginLeft + (contentWidth-chartSize)/2
	y0 := r.pdf.GetY() + 5

	// Axes and frame
	r.pdf.SetDrawColor(180, 180, 180)
	r.pdf.SetLineWidth(0.2)
	r.pdf.Rect(x0, y0, chartSize, chartSize, "D")
	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetTextColor(80, 80, 80)
	for i := 0; i <= 4; i++ {
		f := float64(i) / 4
		r.pdf.Line(x0+f*chartSize, y0+chartSize, x0+f*chartSize, y0+chartSize+1.5)
		r.pdf.Text(x0+f*chartSize-3, y0+chartSize+5, fmt.Sprintf("%.0f%%", f*100))
		r.pdf.Line(x0-1.5, y0+chartSize-f*chartSize, x0, y0+chartSize-f*chartSize)
		r.pdf.Text(x0-10, y0+chartSize-f*chartSize+1, fmt.Sprintf("%.0f%%", f*100))
	}

	r.drawCurve(x0, y0, r.results.LorenzBefore.PopulationShare, r.results.LorenzBefore.EqualityShare, 150, 150, 150, true)
	r.drawCurve(x0, y0, r.results.LorenzBefore.PopulationShare, r.results.LorenzBefore.IncomeShare, 220, 53, 69, false)
	r.drawCurve(x0, y0, r.results.LorenzAfter.PopulationShare, r.results.LorenzAfter.IncomeShare, 40, 120, 200, false)

	// Legend
	ly := y0 + chartSize + 12
	r.drawLegendEntry(x0, ly, 150, 150, 150, "Perfect equality")
	r.drawLegendEntry(x0+40, ly, 220, 53, 69, "Before tax ("+FormatGini(r.results.GiniBefore)+")")
	r.drawLegendEntry(x0+80, ly, 40, 120, 200, "After tax ("+FormatGini(r.results.GiniAfter)+")")

	r.pdf.SetXY(marginLeft, ly+10)
	r.pdf.SetFont("Arial", "I", 9)
	r.pdf.SetTextColor(120, 120, 120)
	r.pdf.MultiCell(contentWidth, 4.5,
		"The horizontal axis is the cumulative share of the population, poorest first; the vertical axis "+
			"is their cumulative share of income. The further a curve sags below the diagonal, the higher the Gini.",
		"", "L", false)
}

// drawCurve plots y against x on the unit square anchored at (x0, y0)
func (r *PDFInequalityReport) drawCurve(x0, y0 float64, xs, ys []float64, red, green, blue int, dashed bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return
	}
	r.pdf.SetDrawColor(red, green, blue)
	r.pdf.SetLineWidth(0.5)
	if dashed {
		r.pdf.SetDashPattern([]float64{1.5, 1}, 0)
	}

	// Thin very large populations so the PDF stays small
	step := max(1, (len(xs)-1)/400)
	px, py := x0+xs[0]*chartSize, y0+chartSize-ys[0]*chartSize
	for i := step; i < len(xs); i += step {
		nx, ny := x0+xs[i]*chartSize, y0+chartSize-ys[i]*chartSize
		r.pdf.Line(px, py, nx, ny)
		px, py = nx, ny
	}
	last := len(xs) - 1
	if (last % step) != 0 {
		r.pdf.Line(px, py, x0+xs[last]*chartSize, y0+chartSize-ys[last]*chartSize)
	}

	r.pdf.SetDashPattern([]float64{}, 0)
	r.pdf.SetLineWidth(0.2)
}

func (r *PDFInequalityReport) drawLegendEntry(x, y float64, red, green, blue int, label string) {
	r.pdf.SetDrawColor(red, green, blue)
	r.pdf.SetLineWidth(0.8)
	r.pdf.Line(x, y, x+6, y)
	r.pdf.SetLineWidth(0.2)
	r.pdf.SetFont("Arial", "", 8)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.Text(x+8, y+1, label)
}

func (r *PDFInequalityReport) addSweepPage() {
	r.pdf.AddPage()
	s := r.sweep
	r.drawSectionHeader(fmt.Sprintf("Rate Sweep: Bracket %d", s.BracketIndex+1))

	r.pdf.SetFont("Arial", "", 10)
	r.pdf.SetTextColor(50, 50, 50)
	r.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Width %s, configured rate %.1f%%, Gini before tax %s",
		FormatMoneyFull(s.Bracket.Width), s.Bracket.Rate, FormatGini(s.GiniBefore)), "", 1, "L", false, 0, "")
	r.pdf.Ln(3)

	widths := []float64{25, 35, 30, 30, 35, contentWidth - 155}
	r.drawTableHeader([]string{"Rate", "Gini after", "Change", "Change %", "Tax collected", "Tax share"}, widths)
	best, hasBest := s.BestPoint()
	for _, p := range s.Points {
		r.drawTableRow([]string{
			fmt.Sprintf("%.1f%%", p.Rate),
			FormatGini(p.GiniAfter),
			fmt.Sprintf("%+.4f", p.GiniChange),
			FormatPercent(p.GiniChangePercent),
			FormatMoneyFull(p.TotalTax),
			FormatPercent(p.TaxShare),
		}, widths, hasBest && p.Rate == best.Rate)
	}
}

// Helper functions

func (r *PDFInequalityReport) drawSectionHeader(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 51, 102)
	r.pdf.CellFormat(contentWidth, 10, title, "", 1, "L", false, 0, "")
	r.pdf.SetDrawColor(0, 51, 102)
	r.pdf.Line(marginLeft, r.pdf.GetY(), marginLeft+contentWidth, r.pdf.GetY())
	r.pdf.Ln(5)
}

func (r *PDFInequalityReport) drawTableHeader(headers []string, widths []float64) {
	r.pdf.SetFillColor(0, 51, 102)
	r.pdf.SetTextColor(255, 255, 255)
	r.pdf.SetFont("Arial", "B", 9)

	for i, header := range headers {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 6, header, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *PDFInequalityReport) drawTableRow(cells []string, widths []float64, isBold bool) {
	r.pdf.SetFillColor(250, 250, 250)
	r.pdf.SetTextColor(50, 50, 50)

	if isBold {
		r.pdf.SetFont("Arial", "B", 9)
		r.pdf.SetFillColor(240, 240, 240)
	} else {
		r.pdf.SetFont("Arial", "", 9)
	}

	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		r.pdf.CellFormat(widths[i], 5, cell, "1", 0, align, true, 0, "")
	}
	r.pdf.Ln(-1)
}
