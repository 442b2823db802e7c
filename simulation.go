package main

import (
	"fmt"
	"math"
	"slices"
)

// ResolveGroupSpan derives the per-group income range from MaxIncome when no
// explicit span is given
func ResolveGroupSpan(params SimulationParams) int {
	if params.GroupSpan > 0 {
		return params.GroupSpan
	}
	if params.GroupCount <= 0 {
		return 0
	}
	return params.MaxIncome / params.GroupCount
}

// Upper limits on a single run
const (
	MaxPopulation = 100_000
	MaxGroups     = 1_000
	MaxTopIncome  = 1_000_000_000_000 // groups * span
)

// ValidateParams checks parameters before any computation runs
func ValidateParams(params SimulationParams) error {
	if params.Population <= 0 {
		return &ValidationError{Field: "population", Message: fmt.Sprintf("must be positive (got %d)", params.Population)}
	}
	if params.Population > MaxPopulation {
		return &ValidationError{Field: "population", Message: fmt.Sprintf("must be at most %d (got %d)", MaxPopulation, params.Population)}
	}
	if params.GroupCount <= 0 {
		return &ValidationError{Field: "groups", Message: fmt.Sprintf("must be positive (got %d)", params.GroupCount)}
	}
	if params.GroupCount > MaxGroups {
		return &ValidationError{Field: "groups", Message: fmt.Sprintf("must be at most %d (got %d)", MaxGroups, params.GroupCount)}
	}
	if params.GroupSpan < 0 {
		return &ValidationError{Field: "group_span", Message: fmt.Sprintf("must not be negative (got %d)", params.GroupSpan)}
	}
	span := ResolveGroupSpan(params)
	if span <= 0 {
		return &ValidationError{
			Field:   "group_span",
			Message: fmt.Sprintf("must be positive; set group_span or a max_income of at least %d", params.GroupCount),
		}
	}
	if span > MaxTopIncome/params.GroupCount {
		return &ValidationError{
			Field:   "group_span",
			Message: fmt.Sprintf("%d groups of %d exceed the top income limit of %d", params.GroupCount, span, MaxTopIncome),
		}
	}
	switch params.Distribution {
	case DistributionEqual, DistributionNormal, DistributionSkewed, DistributionExtreme:
	default:
		return &ValidationError{Field: "distribution", Message: fmt.Sprintf("unknown distribution %d", params.Distribution)}
	}
	return ValidateBrackets(params.Brackets)
}

// RunSimulation runs one full recomputation: shape the group sizes, generate
// the population, tax it and analyze both income sets. Every call owns its
// random source; nothing is shared between calls.
func RunSimulation(params SimulationParams) (*Results, error) {
	if err := ValidateParams(params); err != nil {
		return nil, err
	}

	seed := params.Seed
	if seed == 0 {
		seed = NewSeed()
	}
	span := ResolveGroupSpan(params)

	sizes := ShapeGroupSizes(params.Distribution, params.Population, params.GroupCount)
	for i, s := range sizes {
		if s < 0 {
			return nil, &ValidationError{
				Field: "population",
				Message: fmt.Sprintf("%s distribution of %d people over %d groups leaves group %d with %d people",
					params.Distribution, params.Population, params.GroupCount, i, s),
			}
		}
	}

	before, err := GenerateIncomes(params.GroupCount, span, sizes, NewRandomSource(seed))
	if err != nil {
		return nil, fmt.Errorf("generating incomes: %w", err)
	}

	return analyzeTaxed(params, seed, span, sizes, before), nil
}

// RetaxResults re-applies a bracket set to an existing pre-tax population
// without drawing new incomes
func RetaxResults(prev *Results, brackets []TaxBracket) (*Results, error) {
	if err := ValidateBrackets(brackets); err != nil {
		return nil, err
	}
	params := prev.Params
	params.Brackets = slices.Clone(brackets)
	return analyzeTaxed(params, prev.Seed, ResolveGroupSpan(params), prev.GroupSizes, prev.IncomesBefore), nil
}

func analyzeTaxed(params SimulationParams, seed uint64, span int, sizes, before []int) *Results {
	perIndividual, after := ApplyTaxToPopulation(before, params.Brackets)

	params.GroupSpan = span
	params.Seed = seed

	r := &Results{
		Params:        params,
		Seed:          seed,
		GroupSizes:    sizes,
		IncomesBefore: before,
		IncomesAfter:  after,
		PerIndividual: perIndividual,
		GiniBefore:    ComputeGini(before),
		GiniAfter:     ComputeGini(after),
		LorenzBefore:  ComputeLorenzCurve(before),
		LorenzAfter:   ComputeLorenzCurve(after),
		TaxSummary:    SummarizeTax(perIndividual),
	}
	r.GiniChange = GiniChange(r.GiniBefore, r.GiniAfter)
	r.GiniChangePercent = GiniChangePercent(r.GiniBefore, r.GiniAfter)
	return r
}

// GiniChange returns before - after; NaN propagates
func GiniChange(before, after float64) float64 {
	return before - after
}

// GiniChangePercent returns the change relative to the pre-tax Gini.
// NaN when the pre-tax Gini is zero or undefined.
func GiniChangePercent(before, after float64) float64 {
	if IsUndefinedGini(before) || before == 0 {
		return math.NaN()
	}
	return (before - after) / before * 100
}

// ExportRows flattens per-individual results into 1-indexed export records
func ExportRows(r *Results) []ExportRow {
	if r == nil {
		return nil
	}
	rows := make([]ExportRow, len(r.PerIndividual))
	for i, tr := range r.PerIndividual {
		rows[i] = ExportRow{Index: i + 1, Gross: tr.Gross, Net: tr.Net, Tax: tr.Tax}
	}
	return rows
}

// AverageIncome returns the mean of an income set, NaN when empty
func AverageIncome(incomes []int) float64 {
	if len(incomes) == 0 {
		return math.NaN()
	}
	return float64(sumIncomes(incomes)) / float64(len(incomes))
}

// MedianIncome returns the median of a sorted income set, NaN when empty
func MedianIncome(sorted []int) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}
