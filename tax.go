package main

import (
	"fmt"
	"math"
	"slices"
)

// Brackets follow a slice model: each bracket taxes the next Width of
// remaining income at its Rate. Evaluation stops at the first bracket that
// absorbs what is left. Income beyond the combined width of all brackets is
// never taxed; there is no implied top rate.

// taxSlice returns floor(amount * rate / 100)
func taxSlice(amount int, rate float64) int {
	return int(math.Floor(float64(amount) * rate / 100))
}

// ApplyTax calculates the tax owed by one individual
func ApplyTax(income int, brackets []TaxBracket) TaxResult {
	result := TaxResult{Gross: income, Net: income}
	if income <= 0 {
		return result
	}

	remaining := income
	for _, bracket := range brackets {
		if remaining > bracket.Width {
			result.Tax += taxSlice(bracket.Width, bracket.Rate)
			remaining -= bracket.Width
			continue
		}
		result.Tax += taxSlice(remaining, bracket.Rate)
		break
	}

	result.Net = result.Gross - result.Tax
	return result
}

// ApplyTaxToPopulation taxes every individual. Results keep the input order;
// the returned post-tax incomes are re-sorted ascending for analysis.
func ApplyTaxToPopulation(incomes []int, brackets []TaxBracket) ([]TaxResult, []int) {
	results := make([]TaxResult, len(incomes))
	after := make([]int, len(incomes))
	for i, income := range incomes {
		results[i] = ApplyTax(income, brackets)
		after[i] = results[i].Net
	}
	slices.Sort(after)
	return results, after
}

// SummarizeTax totals gross income and tax collected across a population
func SummarizeTax(results []TaxResult) TaxSummary {
	var summary TaxSummary
	for _, r := range results {
		summary.TotalGross += r.Gross
		summary.TotalTax += r.Tax
		summary.TotalNet += r.Net
	}
	if summary.TotalGross == 0 {
		summary.TaxShare = math.NaN()
	} else {
		summary.TaxShare = float64(summary.TotalTax) / float64(summary.TotalGross) * 100
	}
	return summary
}

// ValidateBrackets rejects negative widths. Rates are applied as given.
func ValidateBrackets(brackets []TaxBracket) error {
	for i, b := range brackets {
		if b.Width < 0 {
			return &ValidationError{
				Field:   fmt.Sprintf("tax_brackets[%d].width", i),
				Message: fmt.Sprintf("must not be negative (got %d)", b.Width),
			}
		}
	}
	return nil
}

// BracketCoverage returns the combined width of all brackets; income above
// it is untaxed
func BracketCoverage(brackets []TaxBracket) int {
	total := 0
	for _, b := range brackets {
		total += b.Width
	}
	return total
}

// GetMarginalRate returns the rate applied to the last unit of income,
// or 0 when the income lies beyond every bracket
func GetMarginalRate(income int, brackets []TaxBracket) float64 {
	if income <= 0 {
		return 0
	}
	remaining := income
	for _, b := range brackets {
		if remaining <= b.Width {
			return b.Rate
		}
		remaining -= b.Width
	}
	return 0
}

// WithBracketRate returns a copy of brackets with one bracket's rate replaced
func WithBracketRate(brackets []TaxBracket, index int, rate float64) []TaxBracket {
	out := slices.Clone(brackets)
	if index >= 0 && index < len(out) {
		out[index].Rate = rate
	}
	return out
}
