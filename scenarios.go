package main

import (
	"fmt"
	"math"
	"strings"
)

// DefaultScenarioName is used when a requested preset does not exist
const DefaultScenarioName = "denmark"

// Scenario is a named preset of simulation parameters
type Scenario struct {
	Name         string       `yaml:"name" json:"name"`
	Description  string       `yaml:"description" json:"description"`
	Population   int          `yaml:"population" json:"population"`
	Groups       int          `yaml:"groups" json:"groups"`
	GroupSpan    int          `yaml:"group_span" json:"group_span"`
	Distribution string       `yaml:"distribution" json:"distribution"`
	TaxBrackets  []TaxBracket `yaml:"tax_brackets" json:"tax_brackets"`
	ExpectedGini float64      `yaml:"expected_gini" json:"expected_gini"` // Reference post-tax figure for comparison
}

// Params converts the preset into engine parameters
func (s Scenario) Params(seed uint64) (SimulationParams, error) {
	dist, err := ParseDistributionType(s.Distribution)
	if err != nil {
		return SimulationParams{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return SimulationParams{
		Population:   s.Population,
		GroupCount:   s.Groups,
		GroupSpan:    s.GroupSpan,
		Distribution: dist,
		Brackets:     append([]TaxBracket(nil), s.TaxBrackets...),
		Seed:         seed,
	}, nil
}

// LookupScenario returns the named preset, falling back to denmark when the
// name is unknown. The bool reports whether the name matched.
func (c *Config) LookupScenario(name string) (Scenario, bool) {
	for _, s := range c.Scenarios {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	for _, s := range c.Scenarios {
		if s.Name == DefaultScenarioName {
			return s, false
		}
	}
	if len(c.Scenarios) > 0 {
		return c.Scenarios[0], false
	}
	return Scenario{}, false
}

// FindScenario returns the named preset or the default one
func (c *Config) FindScenario(name string) Scenario {
	s, _ := c.LookupScenario(name)
	return s
}

// ScenarioNames lists preset names in configuration order
func (c *Config) ScenarioNames() []string {
	names := make([]string, len(c.Scenarios))
	for i, s := range c.Scenarios {
		names[i] = s.Name
	}
	return names
}

// Challenge is a goal a simulation result can be checked against
type Challenge struct {
	ID    int    `json:"id"`
	Goal  string `json:"goal"`
	check func(r *Results) bool
}

// ChallengeStatus reports whether one result meets a challenge
type ChallengeStatus struct {
	ID   int    `json:"id"`
	Goal string `json:"goal"`
	Met  bool   `json:"met"`
}

// Undefined Gini values never satisfy a threshold. The last two are
// exploration tasks and always pass.
var challenges = []Challenge{
	{ID: 1, Goal: "Bring the post-tax Gini below 0.30", check: func(r *Results) bool { return r.GiniAfter < 0.30 }},
	{ID: 2, Goal: "Land the post-tax Gini near 0.28", check: func(r *Results) bool { return math.Abs(r.GiniAfter-0.28) < 0.03 }},
	{ID: 3, Goal: "Cut the Gini by more than 20% through tax", check: func(r *Results) bool { return r.GiniChangePercent > 20 }},
	{ID: 4, Goal: "Compare a flat tax with a progressive one", check: func(*Results) bool { return true }},
	{ID: 5, Goal: "Tax only the top incomes", check: func(*Results) bool { return true }},
}

// Challenges lists the available challenges in ID order
func Challenges() []Challenge {
	return append([]Challenge(nil), challenges...)
}

// CheckChallenge reports whether r meets challenge id. Unknown ids and nil
// results never pass.
func CheckChallenge(id int, r *Results) bool {
	if r == nil {
		return false
	}
	for _, c := range challenges {
		if c.ID == id {
			return c.check(r)
		}
	}
	return false
}

// ChallengeResults checks r against every challenge
func ChallengeResults(r *Results) []ChallengeStatus {
	out := make([]ChallengeStatus, len(challenges))
	for i, c := range challenges {
		out[i] = ChallengeStatus{ID: c.ID, Goal: c.Goal, Met: CheckChallenge(c.ID, r)}
	}
	return out
}
