package main

import (
	"bytes"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
)

// =============================================================================
// Rate Steps
// =============================================================================

func TestBuildRateSteps(t *testing.T) {
	tests := []struct {
		min, max, step float64
		want           []float64
	}{
		{0, 60, 5, []float64{0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60}},
		{10, 11, 0.25, []float64{10, 10.25, 10.5, 10.75, 11}},
		{0, 1, 0.1, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}},
		{20, 20, 5, []float64{20}},
		{0, 12, 5, []float64{0, 5, 10}},
	}
	for _, tt := range tests {
		if got := buildRateSteps(tt.min, tt.max, tt.step); !slices.Equal(got, tt.want) {
			t.Errorf("%v..%v by %v: got %v, want %v", tt.min, tt.max, tt.step, got, tt.want)
		}
	}
}

func TestBuildRateSteps_BoundedCount(t *testing.T) {
	tests := []struct {
		name           string
		min, max, step float64
		wantLen        int
	}{
		{"at the cap", 0, 999, 1, maxSweepPoints},
		{"one past the cap", 0, 1000, 1, 0},
		{"huge range", 0, 1e7, 1, 0},
		{"equal huge bounds", 1e300, 1e300, 1, 1},
		{"huge bounds", 1e300, 2e300, 1, 0},
		{"overflowing range", -1e308, 1e308, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildRateSteps(tt.min, tt.max, tt.step)
			if len(got) != tt.wantLen {
				t.Errorf("got %d rates, want %d", len(got), tt.wantLen)
			}
		})
	}

	rates := buildRateSteps(1e300, 1e300, 1)
	if len(rates) == 1 && math.Abs(rates[0]-1e300) > 1e288 {
		t.Errorf("equal bounds: got %g", rates[0])
	}
}

// =============================================================================
// Sweep
// =============================================================================

func TestRunRateSweep_SharesOnePopulation(t *testing.T) {
	params := denmarkParams(77)
	sweep, err := RunRateSweep(params, -1, 0, 60, 10)
	if err != nil {
		t.Fatalf("RunRateSweep: %v", err)
	}

	if sweep.BracketIndex != 3 {
		t.Errorf("-1 should select the last bracket, got %d", sweep.BracketIndex)
	}
	if len(sweep.Points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(sweep.Points))
	}
	if sweep.Seed != 77 || sweep.Base == nil {
		t.Fatalf("sweep must record its seed and base run")
	}

	for _, p := range sweep.Points {
		r, err := RetaxResults(sweep.Base, WithBracketRate(params.Brackets, 3, p.Rate))
		if err != nil {
			t.Fatal(err)
		}
		assertGiniEquals(t, r.GiniAfter, p.GiniAfter, "point gini")
		if r.TaxSummary.TotalTax != p.TotalTax {
			t.Errorf("rate %.0f: total tax %d, want %d", p.Rate, p.TotalTax, r.TaxSummary.TotalTax)
		}
	}

	// Raising a rate never lowers the tax collected
	for i := 1; i < len(sweep.Points); i++ {
		if sweep.Points[i].TotalTax < sweep.Points[i-1].TotalTax {
			t.Errorf("tax fell from %d to %d as the rate rose", sweep.Points[i-1].TotalTax, sweep.Points[i].TotalTax)
		}
	}
	// The input params are left alone
	if params.Brackets[3].Rate != 15 {
		t.Errorf("sweep modified the caller's brackets: %v", params.Brackets)
	}
}

func TestRunRateSweep_Validation(t *testing.T) {
	noBrackets := denmarkParams(1)
	noBrackets.Brackets = nil

	tests := []struct {
		name           string
		params         SimulationParams
		bracket        int
		min, max, step float64
		wantField      string
	}{
		{"no brackets", noBrackets, 0, 0, 60, 5, "tax_brackets"},
		{"bracket out of range", denmarkParams(1), 4, 0, 60, 5, "bracket"},
		{"zero step", denmarkParams(1), 0, 0, 60, 0, "step"},
		{"max below min", denmarkParams(1), 0, 50, 10, 5, "max_rate"},
		{"too many points", denmarkParams(1), 0, 0, 1e7, 1, "step"},
		{"huge bounds", denmarkParams(1), 0, 1e300, 2e300, 1, "step"},
		{"overflowing range", denmarkParams(1), 0, -1e308, 1e308, 1, "step"},
		{"NaN step", denmarkParams(1), 0, 0, 60, math.NaN(), "step"},
		{"infinite step", denmarkParams(1), 0, 0, 60, math.Inf(1), "step"},
		{"NaN min", denmarkParams(1), 0, math.NaN(), 60, 5, "min_rate"},
		{"infinite max", denmarkParams(1), 0, 0, math.Inf(1), 5, "max_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunRateSweep(tt.params, tt.bracket, tt.min, tt.max, tt.step)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("expected field %q, got %v", tt.wantField, err)
			}
		})
	}

	bad := denmarkParams(1)
	bad.Population = 0
	if _, err := RunRateSweep(bad, 0, 0, 60, 5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("invalid params: expected ErrInvalidParameter, got %v", err)
	}
}

func TestRateSweep_BestPoint(t *testing.T) {
	s := &RateSweep{Points: []SweepPoint{
		{Rate: 0, GiniAfter: 0.40},
		{Rate: 10, GiniAfter: math.NaN()},
		{Rate: 20, GiniAfter: 0.31},
		{Rate: 30, GiniAfter: 0.35},
	}}
	best, ok := s.BestPoint()
	if !ok || best.Rate != 20 {
		t.Errorf("got rate %.0f ok=%v, want 20", best.Rate, ok)
	}

	empty := &RateSweep{Points: []SweepPoint{{GiniAfter: math.NaN()}}}
	if _, ok := empty.BestPoint(); ok {
		t.Error("all-undefined sweep has no best point")
	}
}

func TestPrintRateSweep(t *testing.T) {
	sweep, err := RunRateSweep(denmarkParams(5), 0, 0, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintRateSweep(&buf, sweep)
	out := buf.String()

	for _, want := range []string{"BRACKET RATE SWEEP", "Bracket 1", "0.0%", "10.0%", "20.0%", "Lowest post-tax Gini"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
