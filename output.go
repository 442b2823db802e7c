package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// FormatMoney formats an amount with a k/M suffix
func FormatMoney(amount float64) string {
	if math.Abs(amount) >= 1000000 {
		return fmt.Sprintf("%.2fM", amount/1000000)
	}
	if math.Abs(amount) >= 1000 {
		return fmt.Sprintf("%.0fk", amount/1000)
	}
	return fmt.Sprintf("%.0f", amount)
}

// FormatMoneyFull formats an amount with thousands separators
func FormatMoneyFull(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}

// FormatGini formats a Gini value, or "n/a" when undefined
func FormatGini(g float64) string {
	if IsUndefinedGini(g) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", g)
}

// FormatPercent formats a percentage, or "n/a" when undefined
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// PrintHeader prints the run configuration
func PrintHeader(w io.Writer, params SimulationParams) {
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                 INCOME INEQUALITY & PROGRESSIVE TAX SIMULATION               ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "──────────────")
	fmt.Fprintf(w, "  Population:    %d people in %d groups\n", params.Population, params.GroupCount)
	fmt.Fprintf(w, "  Group span:    %s per group (max %s)\n",
		FormatMoneyFull(ResolveGroupSpan(params)),
		FormatMoneyFull(ResolveGroupSpan(params)*params.GroupCount))
	fmt.Fprintf(w, "  Distribution:  %s\n", params.Distribution.Label())
	fmt.Fprintln(w)
	PrintBrackets(w, params.Brackets)
}

// PrintBrackets prints the bracket list as consecutive income slices
func PrintBrackets(w io.Writer, brackets []TaxBracket) {
	fmt.Fprintln(w, "Tax Brackets (each taxes the next slice of income):")
	if len(brackets) == 0 {
		fmt.Fprintln(w, "  (none - all income is net)")
		fmt.Fprintln(w)
		return
	}
	from := 0
	for i, b := range brackets {
		fmt.Fprintf(w, "  %d. %12s - %-12s %6.1f%%\n", i+1, FormatMoneyFull(from), FormatMoneyFull(from+b.Width), b.Rate)
		from += b.Width
	}
	fmt.Fprintf(w, "     %s\n", mutedStyle.Render(fmt.Sprintf("income above %s is untaxed", FormatMoneyFull(from))))
	fmt.Fprintln(w)
}

// PrintResultSummary prints the Gini comparison and tax totals
func PrintResultSummary(w io.Writer, r *Results) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "╔══════════════════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║ Run: %-71s ║\n", truncate(r.Params.String(), 71))
	fmt.Fprintf(w, "╚══════════════════════════════════════════════════════════════════════════════╝\n")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-24s │ %14s │ %14s\n", "Metric", "Before tax", "After tax")
	fmt.Fprintln(w, strings.Repeat("─", 58))
	fmt.Fprintf(w, "%-24s │ %14s │ %14s\n", "Gini coefficient", FormatGini(r.GiniBefore), FormatGini(r.GiniAfter))
	fmt.Fprintf(w, "%-24s │ %14s │ %14s\n", "Total income",
		FormatMoneyFull(r.TaxSummary.TotalGross), FormatMoneyFull(r.TaxSummary.TotalNet))
	fmt.Fprintf(w, "%-24s │ %14s │ %14s\n", "Average income",
		FormatMoney(AverageIncome(r.IncomesBefore)), FormatMoney(AverageIncome(r.IncomesAfter)))
	fmt.Fprintf(w, "%-24s │ %14s │ %14s\n", "Median income",
		FormatMoney(MedianIncome(r.IncomesBefore)), FormatMoney(MedianIncome(r.IncomesAfter)))
	fmt.Fprintln(w, strings.Repeat("─", 58))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Tax collected:     %s (%s of total income)\n",
		FormatMoneyFull(r.TaxSummary.TotalTax), FormatPercent(r.TaxSummary.TaxShare))

	change := fmt.Sprintf("%+.4f (%s)", r.GiniChange, FormatPercent(r.GiniChangePercent))
	switch {
	case math.IsNaN(r.GiniChange):
		change = "n/a"
	case r.GiniChange > 0:
		change = goodStyle.Render(change + " more equal")
	case r.GiniChange < 0:
		change = warnStyle.Render(change + " less equal")
	}
	fmt.Fprintf(w, "  Gini reduction:    %s\n", change)
	fmt.Fprintf(w, "  Seed:              %d\n", r.Seed)
}

// PrintGroupSizes prints the population per income group
func PrintGroupSizes(w io.Writer, r *Results) {
	span := r.Params.GroupSpan
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Group sizes:"))
	largest := 0
	for _, s := range r.GroupSizes {
		largest = max(largest, s)
	}
	for i, s := range r.GroupSizes {
		bar := ""
		if largest > 0 {
			bar = strings.Repeat("█", s*40/largest)
		}
		fmt.Fprintf(w, "  %12s - %-12s %5d %s\n", FormatMoneyFull(i*span), FormatMoneyFull((i+1)*span), s, bar)
	}
}

// PrintIncomeDetails prints every step-th individual with their tax
func PrintIncomeDetails(w io.Writer, r *Results, step int) {
	if step < 1 {
		step = 1
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Individuals:"))
	fmt.Fprintf(w, "%6s │ %12s │ %10s │ %12s │ %6s\n", "#", "Gross", "Tax", "Net", "Rate")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, row := range ExportRows(r) {
		if (row.Index-1)%step != 0 && row.Index != len(r.PerIndividual) {
			continue
		}
		effective := 0.0
		if row.Gross > 0 {
			effective = float64(row.Tax) / float64(row.Gross) * 100
		}
		fmt.Fprintf(w, "%6d │ %12s │ %10s │ %12s │ %5.1f%%\n",
			row.Index, FormatMoneyFull(row.Gross), FormatMoneyFull(row.Tax), FormatMoneyFull(row.Net), effective)
	}
}

// PrintScenarios lists the configured presets
func PrintScenarios(w io.Writer, config *Config) {
	fmt.Fprintln(w, titleStyle.Render("Scenarios:"))
	fmt.Fprintln(w)
	for _, s := range config.Scenarios {
		fmt.Fprintf(w, "  %-10s %s\n", s.Name, s.Description)
		fmt.Fprintf(w, "  %-10s %d people, %d groups x %s, %s, %d brackets, expected Gini %.2f\n",
			"", s.Population, s.Groups, FormatMoneyFull(s.GroupSpan), s.Distribution, len(s.TaxBrackets), s.ExpectedGini)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
