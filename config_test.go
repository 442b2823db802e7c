package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Configuration Tests
//
// The embedded defaults are always loaded first; a user file only overrides
// what it sets. Rates may be written as 15 or 15%.

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

// =============================================================================
// Defaults
// =============================================================================

func TestLoadDefaultConfig(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig: %v", err)
	}

	if config.GetPopulation() != 200 || config.GetGroupCount() != 10 || config.GetGroupSpan() != 100000 {
		t.Errorf("unexpected defaults: %+v", config.Simulation)
	}
	if dist, err := config.GetDistribution(); err != nil || dist != DistributionNormal {
		t.Errorf("distribution: got %v (%v), want normal", dist, err)
	}
	if len(config.TaxBrackets) != 4 {
		t.Fatalf("expected 4 default brackets, got %d", len(config.TaxBrackets))
	}
	// "8%" in the YAML is stored as 8
	if config.TaxBrackets[0].Rate != 8 || config.TaxBrackets[0].Width != 50000 {
		t.Errorf("first bracket: got %+v", config.TaxBrackets[0])
	}
	if got := config.ScenarioNames(); strings.Join(got, ",") != "denmark,usa,sweden,equal" {
		t.Errorf("scenario names: got %v", got)
	}
	minRate, maxRate, step := config.GetSweepRange()
	if minRate != 0 || maxRate != 60 || step != 5 {
		t.Errorf("sweep range: got %v..%v by %v", minRate, maxRate, step)
	}
	if config.GetSweepBracket() != 3 {
		t.Errorf("sweep bracket -1 should resolve to the last bracket, got %d", config.GetSweepBracket())
	}
}

func TestConfigGetters_EmptyConfig(t *testing.T) {
	var config Config

	if config.GetPopulation() != 200 {
		t.Errorf("population default: %d", config.GetPopulation())
	}
	if config.GetGroupCount() != 10 {
		t.Errorf("group default: %d", config.GetGroupCount())
	}
	if config.GetGroupSpan() != 100000 {
		t.Errorf("span default: %d", config.GetGroupSpan())
	}
	if config.GetServerAddr() != "localhost:8080" {
		t.Errorf("addr default: %s", config.GetServerAddr())
	}
	if config.GetLogLevel() != "info" {
		t.Errorf("log level default: %s", config.GetLogLevel())
	}

	config.Simulation.MaxIncome = 1000000
	if config.GetGroupSpan() != 100000 {
		t.Errorf("span from max income: got %d, want 100000", config.GetGroupSpan())
	}
	config.Simulation.Groups = 4
	if config.GetGroupSpan() != 250000 {
		t.Errorf("span from max income over 4 groups: got %d, want 250000", config.GetGroupSpan())
	}
}

func TestConfig_ToParams(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	params, err := config.ToParams()
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateParams(params); err != nil {
		t.Errorf("default params invalid: %v", err)
	}

	// The params own their brackets
	params.Brackets[0].Rate = 99
	if config.TaxBrackets[0].Rate == 99 {
		t.Error("ToParams shares the bracket slice with the config")
	}

	config.Simulation.Distribution = "lognormal"
	if _, err := config.ToParams(); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown distribution, got %v", err)
	}
}

func TestPreprocessPercentages(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"rate: 25%", "rate: 25"},
		{"rate: 12.5%", "rate: 12.5"},
		{"{width: 100, rate: 8%}", "{width: 100, rate: 8}"},
		{"rate: 25", "rate: 25"},
		{"description: top 1% earners", "description: top 1% earners"},
	}
	for _, tt := range tests {
		if got := preprocessPercentages(tt.in); got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Loading Files
// =============================================================================

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
simulation:
  population: 500
  distribution: skewed
logging:
  level: debug
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.GetPopulation() != 500 {
		t.Errorf("population: got %d, want 500", config.GetPopulation())
	}
	if config.GetGroupCount() != 10 {
		t.Errorf("groups should keep the default, got %d", config.GetGroupCount())
	}
	if len(config.TaxBrackets) != 4 {
		t.Errorf("brackets should keep the defaults, got %v", config.TaxBrackets)
	}
	if len(config.Scenarios) != 4 {
		t.Errorf("scenarios should keep the defaults, got %d", len(config.Scenarios))
	}
	if config.GetLogLevel() != "debug" {
		t.Errorf("log level: got %s", config.GetLogLevel())
	}
}

func TestLoadConfig_ReplacesBrackets(t *testing.T) {
	path := writeConfigFile(t, `
tax_brackets:
  - width: 1000
    rate: 10%
  - width: 5000
    rate: 40%
`)
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []TaxBracket{{Width: 1000, Rate: 10}, {Width: 5000, Rate: 40}}
	if len(config.TaxBrackets) != 2 || config.TaxBrackets[0] != want[0] || config.TaxBrackets[1] != want[1] {
		t.Errorf("brackets: got %v, want %v", config.TaxBrackets, want)
	}
}

func TestLoadConfig_AppliesScenario(t *testing.T) {
	path := writeConfigFile(t, "simulation:\n  scenario: usa\n")
	config, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.Simulation.Distribution != "skewed" || config.GetGroupSpan() != 120000 {
		t.Errorf("usa scenario not applied: %+v", config.Simulation)
	}
	if config.TaxBrackets[len(config.TaxBrackets)-1].Rate != 24 {
		t.Errorf("usa brackets not applied: %v", config.TaxBrackets)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: expected fs.ErrNotExist, got %v", err)
	}

	path := writeConfigFile(t, "simulation: [not, a, map\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	config.Simulation.Population = 1234
	config.TaxBrackets = []TaxBracket{{Width: 777, Rate: 33}}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := SaveConfig(config, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Gini Simulator Configuration") {
		t.Error("saved file is missing its header")
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if loaded.GetPopulation() != 1234 {
		t.Errorf("population: got %d", loaded.GetPopulation())
	}
	if len(loaded.TaxBrackets) != 1 || loaded.TaxBrackets[0] != (TaxBracket{Width: 777, Rate: 33}) {
		t.Errorf("brackets: got %v", loaded.TaxBrackets)
	}
}

// =============================================================================
// Scenarios
// =============================================================================

func TestLookupScenario(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	s, ok := config.LookupScenario("Sweden")
	if !ok || s.Name != "sweden" {
		t.Errorf("case-insensitive lookup: got %q ok=%v", s.Name, ok)
	}

	s, ok = config.LookupScenario("atlantis")
	if ok || s.Name != DefaultScenarioName {
		t.Errorf("unknown scenario should fall back to %s, got %q ok=%v", DefaultScenarioName, s.Name, ok)
	}

	if got := config.FindScenario("equal"); got.Distribution != "equal" {
		t.Errorf("FindScenario: got %+v", got)
	}

	var empty Config
	if s, ok := empty.LookupScenario("denmark"); ok || s.Name != "" {
		t.Errorf("no scenarios configured: got %q ok=%v", s.Name, ok)
	}
}

func TestScenarios_AllRunnable(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range config.Scenarios {
		params, err := s.Params(1)
		if err != nil {
			t.Errorf("%s: %v", s.Name, err)
			continue
		}
		r, err := RunSimulation(params)
		if err != nil {
			t.Errorf("%s: %v", s.Name, err)
			continue
		}
		if IsUndefinedGini(r.GiniBefore) {
			t.Errorf("%s: undefined pre-tax Gini", s.Name)
		}
	}
}

func TestApplyScenario(t *testing.T) {
	config, err := LoadDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	config.Simulation.MaxIncome = 42
	config.ApplyScenario(config.FindScenario("usa"))

	if config.Simulation.Scenario != "usa" || config.Simulation.MaxIncome != 0 {
		t.Errorf("scenario not applied: %+v", config.Simulation)
	}
	scenario := config.FindScenario("usa")
	config.TaxBrackets[0].Rate = 99
	if scenario.TaxBrackets[0].Rate == 99 {
		t.Error("ApplyScenario shares brackets with the preset")
	}
}
