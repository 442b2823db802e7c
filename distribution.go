package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// RandomSource is the entropy consumed by the distribution generator.
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a seeded PCG generator owned by a single call chain
func NewRandomSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed picks a fresh non-zero seed so a run can be reproduced later
func NewSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// ShapeGroupSizes splits totalPeople across groupCount income groups
// following the requested distribution. The result always sums to totalPeople.
func ShapeGroupSizes(dist DistributionType, totalPeople, groupCount int) []int {
	if groupCount <= 0 {
		return nil
	}

	switch dist {
	case DistributionNormal:
		return normalizeToTotal(normalWeights(groupCount), totalPeople)
	case DistributionSkewed:
		return normalizeToTotal(decayWeights(groupCount, 3), totalPeople)
	case DistributionExtreme:
		return normalizeToTotal(decayWeights(groupCount, 5), totalPeople)
	default:
		return equalGroupSizes(totalPeople, groupCount)
	}
}

// equalGroupSizes gives every group floor(total/groups); the remainder goes
// one each to the last groups
func equalGroupSizes(totalPeople, groupCount int) []int {
	perGroup := totalPeople / groupCount
	remainder := totalPeople % groupCount

	sizes := make([]int, groupCount)
	for i := range sizes {
		sizes[i] = perGroup
	}
	for i := 0; i < remainder; i++ {
		sizes[groupCount-1-i]++
	}
	return sizes
}

// normalWeights is a Gaussian centred on groups/2 with sigma groups/4
func normalWeights(groupCount int) []float64 {
	groups := float64(groupCount)
	mid := groups / 2
	sigma := groups / 4

	weights := make([]float64, groupCount)
	for i := range weights {
		distance := float64(i) - mid
		weights[i] = math.Exp(-(distance * distance) / (2 * sigma * sigma))
	}
	return weights
}

// decayWeights is exp(-i / (groups/divisor)); a larger divisor decays faster
func decayWeights(groupCount int, divisor float64) []float64 {
	scale := float64(groupCount) / divisor

	weights := make([]float64, groupCount)
	for i := range weights {
		weights[i] = math.Exp(-float64(i) / scale)
	}
	return weights
}

// normalizeToTotal converts weights into integer sizes summing to total.
// The whole rounding error lands on the first group with the largest size.
func normalizeToTotal(weights []float64, total int) []int {
	var sum float64
	for _, w := range weights {
		sum += w
	}

	sizes := make([]int, len(weights))
	current := 0
	for i, w := range weights {
		sizes[i] = int(math.Round(w / sum * float64(total)))
		current += sizes[i]
	}

	if diff := total - current; diff != 0 {
		maxIdx := 0
		for i, s := range sizes {
			if s > sizes[maxIdx] {
				maxIdx = i
			}
		}
		sizes[maxIdx] += diff
	}

	return sizes
}

// GenerateIncomes draws groupSizes[i] incomes uniformly from the inclusive
// range [i*groupSpan, (i+1)*groupSpan] for each group and returns them sorted.
// Adjacent groups share their boundary value.
func GenerateIncomes(groupCount, groupSpan int, groupSizes []int, rng RandomSource) ([]int, error) {
	if groupCount < 1 {
		return nil, &ValidationError{Field: "groups", Message: fmt.Sprintf("must be at least 1 (got %d)", groupCount)}
	}
	if groupSpan <= 0 {
		return nil, &ValidationError{Field: "group_span", Message: fmt.Sprintf("must be positive (got %d)", groupSpan)}
	}
	if groupSpan > MaxTopIncome/groupCount {
		return nil, &ValidationError{
			Field:   "group_span",
			Message: fmt.Sprintf("%d groups of %d exceed the top income limit of %d", groupCount, groupSpan, MaxTopIncome),
		}
	}
	if len(groupSizes) != groupCount {
		return nil, &ValidationError{
			Field:   "group_sizes",
			Message: fmt.Sprintf("expected %d group sizes, got %d", groupCount, len(groupSizes)),
		}
	}

	total := 0
	for i, size := range groupSizes {
		if size < 0 {
			return nil, &ValidationError{
				Field:   "group_sizes",
				Message: fmt.Sprintf("group %d has negative size %d", i, size),
			}
		}
		total += size
	}
	if rng == nil {
		return nil, &ValidationError{Field: "rng", Message: "random source is required"}
	}

	incomes := make([]int, 0, total)
	for i := 0; i < groupCount; i++ {
		lower := i * groupSpan
		upper := lower + groupSpan
		for j := 0; j < groupSizes[i]; j++ {
			incomes = append(incomes, lower+rng.IntN(upper-lower+1))
		}
	}

	slices.Sort(incomes)
	return incomes, nil
}
