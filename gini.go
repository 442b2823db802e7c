package main

import "math"

// The analyzer functions require incomes sorted ascending. They never sort
// or modify their input; every producer in the pipeline returns sorted slices.

func sumIncomes(incomes []int) int {
	total := 0
	for _, v := range incomes {
		total += v
	}
	return total
}

// CumulativeIncomeShares returns C[i] = sum(incomes[0..i]) / total.
// Returns nil when the input is empty or its total is zero.
func CumulativeIncomeShares(sorted []int) []float64 {
	total := sumIncomes(sorted)
	if len(sorted) == 0 || total == 0 {
		return nil
	}

	shares := make([]float64, len(sorted))
	running := 0
	for i, v := range sorted {
		running += v
		shares[i] = float64(running) / float64(total)
	}
	return shares
}

// EqualityLine returns L[i] = (i+1)/n
func EqualityLine(n int) []float64 {
	if n <= 0 {
		return nil
	}
	line := make([]float64, n)
	for i := range line {
		line[i] = float64(i+1) / float64(n)
	}
	return line
}

// ComputeGini returns sum(L-C) / (sum(C) + sum(L-C)) over the cumulative
// income shares C and the equality line L. This is not the textbook
// 1 - 2*area form; the denominator equals sum(L) = (n+1)/2, so a single
// holder of all income scores (n-1)/(n+1).
//
// Empty input or a zero total yields NaN (see IsUndefinedGini).
func ComputeGini(sorted []int) float64 {
	cumulative := CumulativeIncomeShares(sorted)
	if cumulative == nil {
		return math.NaN()
	}
	equality := EqualityLine(len(sorted))

	var sumC, sumGap float64
	for i := range cumulative {
		sumC += cumulative[i]
		sumGap += equality[i] - cumulative[i]
	}
	return sumGap / (sumC + sumGap)
}

// ComputeLorenzCurve returns chart-ready samples prefixed with the origin.
// With a zero total the income share stays flat at zero; with no incomes
// only the origin is returned.
func ComputeLorenzCurve(sorted []int) LorenzCurve {
	n := len(sorted)
	curve := LorenzCurve{
		PopulationShare: make([]float64, n+1),
		IncomeShare:     make([]float64, n+1),
		EqualityShare:   make([]float64, n+1),
	}
	if n == 0 {
		return curve
	}

	cumulative := CumulativeIncomeShares(sorted)
	equality := EqualityLine(n)
	for i := 0; i < n; i++ {
		curve.PopulationShare[i+1] = equality[i]
		curve.EqualityShare[i+1] = equality[i]
		if cumulative != nil {
			curve.IncomeShare[i+1] = cumulative[i]
		}
	}
	return curve
}

// MaxGini is the largest value ComputeGini can produce for n incomes
func MaxGini(n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return float64(n-1) / float64(n+1)
}
