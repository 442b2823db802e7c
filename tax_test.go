package main

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// Tax Engine Tests
//
// Brackets are slices: each one taxes the next Width of remaining income at
// Rate percent, floored per slice. Evaluation stops at the first bracket that
// absorbs the remainder. Income beyond the combined width is not taxed.

var twoSliceBrackets = []TaxBracket{
	{Width: 15, Rate: 10},
	{Width: 100, Rate: 20},
}

func assertTaxResult(t *testing.T, got TaxResult, gross, tax, net int, description string) {
	t.Helper()
	if got.Gross != gross || got.Tax != tax || got.Net != net {
		t.Errorf("%s: expected gross %d tax %d net %d, got gross %d tax %d net %d",
			description, gross, tax, net, got.Gross, got.Tax, got.Net)
	}
}

// =============================================================================
// Single Income
// =============================================================================

func TestApplyTax_TwoSlices(t *testing.T) {
	// 15 at 10% = floor(1.5) = 1, then 25 at 20% = 5
	assertTaxResult(t, ApplyTax(40, twoSliceBrackets), 40, 6, 34, "income 40")
}

func TestApplyTax_StopsAtAbsorbingBracket(t *testing.T) {
	brackets := []TaxBracket{{Width: 15, Rate: 10}, {Width: 100, Rate: 90}}
	// 10 fits inside the first bracket, so the 90% bracket is never reached
	assertTaxResult(t, ApplyTax(10, brackets), 10, 1, 9, "income 10")
}

func TestApplyTax_ExactBracketWidth(t *testing.T) {
	// remaining == width is absorbed by that bracket
	assertTaxResult(t, ApplyTax(15, twoSliceBrackets), 15, 1, 14, "income 15")
}

func TestApplyTax_FloorsEachSlice(t *testing.T) {
	brackets := []TaxBracket{{Width: 7, Rate: 10}, {Width: 7, Rate: 10}}
	// floor(0.7) + floor(0.7) = 0, where one 14 slice would give floor(1.4) = 1
	assertTaxResult(t, ApplyTax(14, brackets), 14, 0, 14, "income 14")
}

func TestApplyTax_IncomeBeyondCoverageIsUntaxed(t *testing.T) {
	// Coverage is 115; the 885 above it pays nothing
	assertTaxResult(t, ApplyTax(1000, twoSliceBrackets), 1000, 21, 979, "income 1000")
}

func TestApplyTax_NoBrackets(t *testing.T) {
	assertTaxResult(t, ApplyTax(5000, nil), 5000, 0, 5000, "no brackets")
}

func TestApplyTax_ZeroAndNegativeIncome(t *testing.T) {
	assertTaxResult(t, ApplyTax(0, twoSliceBrackets), 0, 0, 0, "zero income")
	assertTaxResult(t, ApplyTax(-50, twoSliceBrackets), -50, 0, -50, "negative income")
}

func TestApplyTax_ZeroWidthBracketSkipped(t *testing.T) {
	brackets := []TaxBracket{{Width: 0, Rate: 50}, {Width: 100, Rate: 10}}
	assertTaxResult(t, ApplyTax(40, brackets), 40, 4, 36, "zero width first bracket")
}

// =============================================================================
// Population
// =============================================================================

func TestApplyTaxToPopulation_ConcreteScenario(t *testing.T) {
	results, after := ApplyTaxToPopulation([]int{10, 20, 30, 40}, twoSliceBrackets)

	wantTax := []int{1, 2, 4, 6}
	for i, r := range results {
		if r.Tax != wantTax[i] {
			t.Errorf("income %d: expected tax %d, got %d", r.Gross, wantTax[i], r.Tax)
		}
	}
	if want := []int{9, 18, 26, 34}; !slices.Equal(after, want) {
		t.Errorf("post-tax incomes: got %v, want %v", after, want)
	}
}

func TestApplyTaxToPopulation_ResortsNetIncomes(t *testing.T) {
	// A rate above 100% reverses the ranking; the analysis set must still be sorted
	brackets := []TaxBracket{{Width: 100, Rate: 0}, {Width: 100, Rate: 150}}
	incomes := []int{100, 150, 200}
	results, after := ApplyTaxToPopulation(incomes, brackets)

	if want := []int{50, 75, 100}; !slices.Equal(after, want) {
		t.Errorf("post-tax incomes: got %v, want %v", after, want)
	}
	for i, r := range results {
		if r.Gross != incomes[i] {
			t.Errorf("results must keep input order: position %d has gross %d, want %d", i, r.Gross, incomes[i])
		}
	}
}

func TestInvariant_NetNeverExceedsGross(t *testing.T) {
	rng := NewRandomSource(99)
	brackets := []TaxBracket{{Width: 50000, Rate: 8}, {Width: 200000, Rate: 12}, {Width: 300000, Rate: 15}}
	for i := 0; i < 1000; i++ {
		income := rng.IntN(1000000)
		r := ApplyTax(income, brackets)
		if r.Net > r.Gross || r.Tax < 0 {
			t.Fatalf("income %d: tax %d net %d", income, r.Tax, r.Net)
		}
		if r.Gross != r.Tax+r.Net {
			t.Fatalf("income %d: gross %d != tax %d + net %d", income, r.Gross, r.Tax, r.Net)
		}
	}
}

func TestInvariant_TaxMonotonicWithProgressiveRates(t *testing.T) {
	brackets := []TaxBracket{{Width: 1000, Rate: 5}, {Width: 2000, Rate: 20}, {Width: 5000, Rate: 40}}
	previous := 0
	for income := 0; income <= 10000; income += 37 {
		tax := ApplyTax(income, brackets).Tax
		if tax < previous {
			t.Fatalf("tax decreased from %d to %d at income %d", previous, tax, income)
		}
		previous = tax
	}
}

func TestSummarizeTax(t *testing.T) {
	results, _ := ApplyTaxToPopulation([]int{10, 20, 30, 40}, twoSliceBrackets)
	s := SummarizeTax(results)

	if s.TotalGross != 100 || s.TotalTax != 13 || s.TotalNet != 87 {
		t.Errorf("got gross %d tax %d net %d, want 100/13/87", s.TotalGross, s.TotalTax, s.TotalNet)
	}
	if math.Abs(s.TaxShare-13) > 1e-9 {
		t.Errorf("tax share: got %.4f, want 13", s.TaxShare)
	}

	if empty := SummarizeTax(nil); !math.IsNaN(empty.TaxShare) {
		t.Errorf("empty population should have NaN tax share, got %v", empty.TaxShare)
	}
}

// =============================================================================
// Bracket Helpers
// =============================================================================

func TestValidateBrackets(t *testing.T) {
	if err := ValidateBrackets(twoSliceBrackets); err != nil {
		t.Errorf("valid brackets rejected: %v", err)
	}
	if err := ValidateBrackets(nil); err != nil {
		t.Errorf("empty bracket list rejected: %v", err)
	}
	// Rates outside 0..100 are applied as given
	if err := ValidateBrackets([]TaxBracket{{Width: 10, Rate: 150}, {Width: 10, Rate: -5}}); err != nil {
		t.Errorf("out-of-range rates rejected: %v", err)
	}

	err := ValidateBrackets([]TaxBracket{{Width: 10, Rate: 5}, {Width: -1, Rate: 5}})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "tax_brackets[1].width" {
		t.Errorf("expected field tax_brackets[1].width, got %v", err)
	}
}

func TestBracketCoverage(t *testing.T) {
	if got := BracketCoverage(twoSliceBrackets); got != 115 {
		t.Errorf("got %d, want 115", got)
	}
	if got := BracketCoverage(nil); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestGetMarginalRate(t *testing.T) {
	tests := []struct {
		income int
		want   float64
	}{
		{0, 0},
		{1, 10},
		{15, 10},
		{16, 20},
		{115, 20},
		{116, 0},
	}
	for _, tt := range tests {
		if got := GetMarginalRate(tt.income, twoSliceBrackets); got != tt.want {
			t.Errorf("income %d: got %.0f%%, want %.0f%%", tt.income, got, tt.want)
		}
	}
}

func TestWithBracketRate_DoesNotMutate(t *testing.T) {
	original := slices.Clone(twoSliceBrackets)
	updated := WithBracketRate(twoSliceBrackets, 1, 45)

	if updated[1].Rate != 45 {
		t.Errorf("updated rate: got %.0f, want 45", updated[1].Rate)
	}
	if !slices.Equal(twoSliceBrackets, original) {
		t.Errorf("input brackets were modified: %v", twoSliceBrackets)
	}
	if out := WithBracketRate(twoSliceBrackets, 5, 45); !slices.Equal(out, original) {
		t.Errorf("out-of-range index should leave rates unchanged, got %v", out)
	}
}
