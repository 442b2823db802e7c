package main

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// SweepPoint holds the outcome of one rate in a sweep
type SweepPoint struct {
	Rate              float64 `json:"rate"`
	GiniAfter         float64 `json:"gini_after"`
	GiniChange        float64 `json:"gini_change"`
	GiniChangePercent float64 `json:"gini_change_percent"`
	TotalTax          int     `json:"total_tax"`
	TaxShare          float64 `json:"tax_share"`
}

// RateSweep holds a complete sweep over one bracket's rate
type RateSweep struct {
	BracketIndex int
	Bracket      TaxBracket // As configured, before the rate is varied
	GiniBefore   float64
	Seed         uint64
	Points       []SweepPoint
	Base         *Results // The pre-tax population every point is taxed from
}

// maxSweepPoints caps how many rates one sweep may evaluate
const maxSweepPoints = 1000

// rateStepCount returns how many rates fit from min to max inclusive
func rateStepCount(min, max, step float64) float64 {
	return math.Floor((max-min)/step+1e-9) + 1
}

// buildRateSteps generates rates from min to max with the given step.
// Ranges that would exceed maxSweepPoints yield nil.
func buildRateSteps(min, max, step float64) []float64 {
	n := rateStepCount(min, max, step)
	if !(n >= 1 && n <= maxSweepPoints) {
		return nil
	}
	rates := make([]float64, int(n))
	for i := range rates {
		rates[i] = math.Round((min+float64(i)*step)*1e6) / 1e6
	}
	return rates
}

// RunRateSweep generates one population and re-taxes it with the chosen
// bracket's rate stepped from minRate to maxRate
func RunRateSweep(params SimulationParams, bracketIndex int, minRate, maxRate, step float64) (*RateSweep, error) {
	if len(params.Brackets) == 0 {
		return nil, &ValidationError{Field: "tax_brackets", Message: "sweep needs at least one bracket"}
	}
	if bracketIndex < 0 {
		bracketIndex = len(params.Brackets) - 1
	}
	if bracketIndex >= len(params.Brackets) {
		return nil, &ValidationError{
			Field:   "bracket",
			Message: fmt.Sprintf("index %d out of range (have %d brackets)", bracketIndex, len(params.Brackets)),
		}
	}
	if math.IsNaN(minRate) || math.IsInf(minRate, 0) {
		return nil, &ValidationError{Field: "min_rate", Message: fmt.Sprintf("must be finite (got %g)", minRate)}
	}
	if math.IsNaN(maxRate) || math.IsInf(maxRate, 0) {
		return nil, &ValidationError{Field: "max_rate", Message: fmt.Sprintf("must be finite (got %g)", maxRate)}
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, &ValidationError{Field: "step", Message: fmt.Sprintf("must be positive (got %g)", step)}
	}
	if maxRate < minRate {
		return nil, &ValidationError{Field: "max_rate", Message: fmt.Sprintf("%g is below min_rate %g", maxRate, minRate)}
	}
	if n := rateStepCount(minRate, maxRate, step); math.IsInf(n, 0) || n > maxSweepPoints {
		return nil, &ValidationError{
			Field:   "step",
			Message: fmt.Sprintf("%g to %g by %g needs more than %d points", minRate, maxRate, step, maxSweepPoints),
		}
	}

	base, err := RunSimulation(params)
	if err != nil {
		return nil, err
	}

	sweep := &RateSweep{
		BracketIndex: bracketIndex,
		Bracket:      params.Brackets[bracketIndex],
		GiniBefore:   base.GiniBefore,
		Seed:         base.Seed,
		Base:         base,
	}
	for _, rate := range buildRateSteps(minRate, maxRate, step) {
		r, err := RetaxResults(base, WithBracketRate(params.Brackets, bracketIndex, rate))
		if err != nil {
			return nil, err
		}
		sweep.Points = append(sweep.Points, SweepPoint{
			Rate:              rate,
			GiniAfter:         r.GiniAfter,
			GiniChange:        r.GiniChange,
			GiniChangePercent: r.GiniChangePercent,
			TotalTax:          r.TaxSummary.TotalTax,
			TaxShare:          r.TaxSummary.TaxShare,
		})
	}
	return sweep, nil
}

// BestPoint returns the point with the lowest post-tax Gini
func (s *RateSweep) BestPoint() (SweepPoint, bool) {
	best := -1
	for i, p := range s.Points {
		if IsUndefinedGini(p.GiniAfter) {
			continue
		}
		if best < 0 || p.GiniAfter < s.Points[best].GiniAfter {
			best = i
		}
	}
	if best < 0 {
		return SweepPoint{}, false
	}
	return s.Points[best], true
}

// PrintRateSweep prints the sweep as a table
func PrintRateSweep(w io.Writer, s *RateSweep) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║                            BRACKET RATE SWEEP                                ║")
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Bracket %d: width %s, configured rate %.1f%%\n",
		s.BracketIndex+1, FormatMoneyFull(s.Bracket.Width), s.Bracket.Rate)
	fmt.Fprintf(w, "  Gini before tax: %s (seed %d)\n", FormatGini(s.GiniBefore), s.Seed)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%8s │ %10s │ %10s │ %10s │ %14s │ %8s\n", "Rate", "Gini after", "Change", "Change %", "Tax collected", "Tax %")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, p := range s.Points {
		fmt.Fprintf(w, "%7.1f%% │ %10s │ %+10.4f │ %10s │ %14s │ %8s\n",
			p.Rate, FormatGini(p.GiniAfter), p.GiniChange, FormatPercent(p.GiniChangePercent),
			FormatMoneyFull(p.TotalTax), FormatPercent(p.TaxShare))
	}
	fmt.Fprintln(w, strings.Repeat("─", 78))

	if best, ok := s.BestPoint(); ok {
		fmt.Fprintf(w, "  Lowest post-tax Gini %s at %.1f%%\n", FormatGini(best.GiniAfter), best.Rate)
	}
}
