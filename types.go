package main

import (
	"fmt"
	"strings"
)

// DistributionType selects the shape of the group size profile
type DistributionType int

const (
	DistributionEqual   DistributionType = iota // Same number of people in every group
	DistributionNormal                          // Bell curve centred on the middle group
	DistributionSkewed                          // Exponential decay, most people in low groups
	DistributionExtreme                         // Sharper decay than skewed
)

func (d DistributionType) String() string {
	switch d {
	case DistributionEqual:
		return "equal"
	case DistributionNormal:
		return "normal"
	case DistributionSkewed:
		return "skewed"
	case DistributionExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// Label returns a human-readable name for reports
func (d DistributionType) Label() string {
	switch d {
	case DistributionEqual:
		return "Equal"
	case DistributionNormal:
		return "Normal (bell curve)"
	case DistributionSkewed:
		return "Skewed (realistic)"
	case DistributionExtreme:
		return "Extreme inequality"
	default:
		return "Unknown"
	}
}

// ParseDistributionType converts a config/CLI name into a DistributionType
func ParseDistributionType(s string) (DistributionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equal":
		return DistributionEqual, nil
	case "normal":
		return DistributionNormal, nil
	case "skewed":
		return DistributionSkewed, nil
	case "extreme":
		return DistributionExtreme, nil
	}
	return 0, &ValidationError{
		Field:   "distribution",
		Message: fmt.Sprintf("unknown distribution %q (want equal, normal, skewed or extreme)", s),
	}
}

// AllDistributionTypes lists every supported shape in display order
func AllDistributionTypes() []DistributionType {
	return []DistributionType{DistributionEqual, DistributionNormal, DistributionSkewed, DistributionExtreme}
}

// TaxBracket taxes the next Width of remaining income at Rate percent.
// Brackets are slices consumed in list order, not thresholds from zero.
type TaxBracket struct {
	Width int     `yaml:"width" json:"width"`
	Rate  float64 `yaml:"rate" json:"rate"` // Percent, e.g. 15 = 15%
}

// TaxResult is the outcome of taxing one individual
type TaxResult struct {
	Gross int `json:"gross"`
	Tax   int `json:"tax"`
	Net   int `json:"net"` // Gross - Tax
}

// TaxSummary aggregates a population's tax results
type TaxSummary struct {
	TotalGross int     `json:"total_gross"`
	TotalTax   int     `json:"total_tax"`
	TotalNet   int     `json:"total_net"`
	TaxShare   float64 `json:"tax_share"` // TotalTax / TotalGross * 100, NaN when TotalGross is 0
}

// LorenzCurve holds chart-ready Lorenz samples.
// All three slices have length n+1 and start at the origin.
type LorenzCurve struct {
	PopulationShare []float64 `json:"population_share"`
	IncomeShare     []float64 `json:"income_share"`
	EqualityShare   []float64 `json:"equality_share"`
}

// Len returns the number of sample points (including the origin)
func (l LorenzCurve) Len() int {
	return len(l.PopulationShare)
}

// SimulationParams holds everything needed for one recomputation
type SimulationParams struct {
	Population   int
	GroupCount   int
	GroupSpan    int // Income range per group; derived from MaxIncome when 0
	MaxIncome    int
	Distribution DistributionType
	Brackets     []TaxBracket
	Seed         uint64 // 0 = pick a fresh seed
}

func (sp SimulationParams) String() string {
	return fmt.Sprintf("%d people, %d groups x %s, %s distribution, %d brackets",
		sp.Population, sp.GroupCount, FormatMoney(float64(sp.GroupSpan)), sp.Distribution, len(sp.Brackets))
}

// Results is the output contract consumed by the presentation layer
type Results struct {
	Params            SimulationParams
	Seed              uint64
	GroupSizes        []int
	IncomesBefore     []int       // Sorted ascending
	IncomesAfter      []int       // Sorted ascending
	PerIndividual     []TaxResult // Same order as IncomesBefore
	GiniBefore        float64
	GiniAfter         float64
	GiniChange        float64 // GiniBefore - GiniAfter
	GiniChangePercent float64 // GiniChange / GiniBefore * 100, NaN when GiniBefore is 0
	LorenzBefore      LorenzCurve
	LorenzAfter       LorenzCurve
	TaxSummary        TaxSummary
}

// ExportRow is one record of the per-individual export
type ExportRow struct {
	Index int // 1-based
	Gross int
	Net   int
	Tax   int
}
