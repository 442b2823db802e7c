package main

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"time"
)

const svgChartSize = 400

// GenerateHTMLReport writes a standalone HTML report for a run. sweep may be nil.
func GenerateHTMLReport(results *Results, sweep *RateSweep, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	if err := WriteHTMLReport(f, results, sweep); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return f.Close()
}

// WriteHTMLReport renders the report to w
func WriteHTMLReport(w io.Writer, results *Results, sweep *RateSweep) error {
	if results == nil {
		return fmt.Errorf("no results to report")
	}
	ew := &errWriter{w: w}

	fmt.Fprintf(ew, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Income Inequality: %s</title>
    <style>
        :root {
            --primary: #2563eb;
            --success: #16a34a;
            --danger: #dc2626;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: var(--primary); }
        h2 {
            font-size: 1.25rem;
            margin: 1.5rem 0 1rem;
            padding-bottom: 0.5rem;
            border-bottom: 2px solid var(--border);
        }
        .muted { color: var(--text-muted); font-size: 0.9rem; }
        .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 1rem; }
        .card {
            background: var(--card-bg);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 1rem;
        }
        .card .label { color: var(--text-muted); font-size: 0.85rem; }
        .card .value { font-size: 1.5rem; font-weight: 600; }
        .good { color: var(--success); }
        .bad { color: var(--danger); }
        table { width: 100%%; border-collapse: collapse; background: var(--card-bg); }
        th, td { padding: 0.4rem 0.75rem; border: 1px solid var(--border); text-align: right; }
        th:first-child, td:first-child { text-align: left; }
        th { background: var(--primary); color: white; }
        tr.best td { font-weight: 600; background: #f0fdf4; }
    </style>
</head>
<body>
<div class="container">
    <h1>Income Inequality Report</h1>
    <p class="muted">%s &middot; generated %s &middot; seed %d</p>
`, html.EscapeString(results.Params.Distribution.Label()),
		html.EscapeString(results.Params.String()), time.Now().Format("2 January 2006 15:04"), results.Seed)

	writeSummaryCardsHTML(ew, results)
	writeLorenzSVG(ew, results)
	writeBracketTableHTML(ew, results.Params.Brackets)
	if sweep != nil && len(sweep.Points) > 0 {
		writeSweepTableHTML(ew, sweep)
	}

	fmt.Fprintf(ew, "</div>\n</body>\n</html>\n")
	return ew.err
}

func writeSummaryCardsHTML(w io.Writer, r *Results) {
	changeClass := ""
	switch {
	case r.GiniChange > 0:
		changeClass = "good"
	case r.GiniChange < 0:
		changeClass = "bad"
	}
	change := "n/a"
	if !IsUndefinedGini(r.GiniChange) {
		change = fmt.Sprintf("%+.4f (%s)", r.GiniChange, FormatPercent(r.GiniChangePercent))
	}

	fmt.Fprintf(w, `    <h2>Summary</h2>
    <div class="cards">
        <div class="card"><div class="label">Gini before tax</div><div class="value">%s</div></div>
        <div class="card"><div class="label">Gini after tax</div><div class="value">%s</div></div>
        <div class="card"><div class="label">Change</div><div class="value %s">%s</div></div>
        <div class="card"><div class="label">Tax collected</div><div class="value">%s</div><div class="muted">%s of total income</div></div>
    </div>
`, FormatGini(r.GiniBefore), FormatGini(r.GiniAfter), changeClass, change,
		FormatMoneyFull(r.TaxSummary.TotalTax), FormatPercent(r.TaxSummary.TaxShare))
}

// svgPolyline converts a Lorenz series into SVG polyline points
func svgPolyline(xs, ys []float64) string {
	var b strings.Builder
	step := max(1, (len(xs)-1)/500)
	for i := 0; i < len(xs); i += step {
		fmt.Fprintf(&b, "%.1f,%.1f ", xs[i]*svgChartSize, (1-ys[i])*svgChartSize)
	}
	if last := len(xs) - 1; last >= 0 && last%step != 0 {
		fmt.Fprintf(&b, "%.1f,%.1f", xs[last]*svgChartSize, (1-ys[last])*svgChartSize)
	}
	return strings.TrimSpace(b.String())
}

func writeLorenzSVG(w io.Writer, r *Results) {
	fmt.Fprintf(w, `    <h2>Lorenz Curves</h2>
    <svg viewBox="-40 -10 %d %d" width="%d" height="%d" xmlns="http://www.w3.org/2000/svg" font-size="11">
        <rect x="0" y="0" width="%d" height="%d" fill="white" stroke="#cbd5e1"/>
`, svgChartSize+60, svgChartSize+60, svgChartSize+60, svgChartSize+60, svgChartSize, svgChartSize)
	for i := 0; i <= 4; i++ {
		pos := float64(i) / 4 * svgChartSize
		fmt.Fprintf(w, `        <text x="%.0f" y="%d" text-anchor="middle" fill="#64748b">%d%%</text>
        <text x="-6" y="%.0f" text-anchor="end" fill="#64748b">%d%%</text>
`, pos, svgChartSize+16, i*25, svgChartSize-pos+4, i*25)
	}
	fmt.Fprintf(w, `        <polyline fill="none" stroke="#94a3b8" stroke-dasharray="6 4" stroke-width="1.5" points="%s"/>
        <polyline fill="none" stroke="#dc2626" stroke-width="2" points="%s"/>
        <polyline fill="none" stroke="#2563eb" stroke-width="2" points="%s"/>
    </svg>
    <p class="muted"><span style="color:#94a3b8">&#9644;</span> Perfect equality &nbsp;
    <span style="color:#dc2626">&#9644;</span> Before tax (%s) &nbsp;
    <span style="color:#2563eb">&#9644;</span> After tax (%s)</p>
`, svgPolyline(r.LorenzBefore.PopulationShare, r.LorenzBefore.EqualityShare),
		svgPolyline(r.LorenzBefore.PopulationShare, r.LorenzBefore.IncomeShare),
		svgPolyline(r.LorenzAfter.PopulationShare, r.LorenzAfter.IncomeShare),
		FormatGini(r.GiniBefore), FormatGini(r.GiniAfter))
}

func writeBracketTableHTML(w io.Writer, brackets []TaxBracket) {
	fmt.Fprintf(w, "    <h2>Tax Brackets</h2>\n    <table>\n        <tr><th>#</th><th>From</th><th>To</th><th>Rate</th></tr>\n")
	from := 0
	for i, b := range brackets {
		fmt.Fprintf(w, "        <tr><td>%d</td><td>%s</td><td>%s</td><td>%.1f%%</td></tr>\n",
			i+1, FormatMoneyFull(from), FormatMoneyFull(from+b.Width), b.Rate)
		from += b.Width
	}
	fmt.Fprintf(w, "    </table>\n    <p class=\"muted\">Each bracket taxes the next slice of income. Income above %s is not taxed.</p>\n",
		FormatMoneyFull(from))
}

func writeSweepTableHTML(w io.Writer, s *RateSweep) {
	fmt.Fprintf(w, "    <h2>Rate Sweep: Bracket %d</h2>\n    <table>\n", s.BracketIndex+1)
	fmt.Fprintf(w, "        <tr><th>Rate</th><th>Gini after</th><th>Change</th><th>Change %%</th><th>Tax collected</th><th>Tax share</th></tr>\n")
	best, hasBest := s.BestPoint()
	for _, p := range s.Points {
		class := ""
		if hasBest && p.Rate == best.Rate {
			class = ` class="best"`
		}
		fmt.Fprintf(w, "        <tr%s><td>%.1f%%</td><td>%s</td><td>%+.4f</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			class, p.Rate, FormatGini(p.GiniAfter), p.GiniChange, FormatPercent(p.GiniChangePercent),
			FormatMoneyFull(p.TotalTax), FormatPercent(p.TaxShare))
	}
	fmt.Fprintf(w, "    </table>\n")
}

// errWriter keeps the first write error so report code can use plain Fprintf
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
