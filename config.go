package main

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// SimulationConfig holds the population and distribution settings
type SimulationConfig struct {
	Scenario     string `yaml:"scenario,omitempty" json:"scenario,omitempty"` // Preset to start from (overrides the fields below)
	Population   int    `yaml:"population" json:"population"`
	Groups       int    `yaml:"groups" json:"groups"`
	GroupSpan    int    `yaml:"group_span" json:"group_span"`                   // Income range per group
	MaxIncome    int    `yaml:"max_income,omitempty" json:"max_income,omitempty"` // Used when group_span is 0
	Distribution string `yaml:"distribution" json:"distribution"`
	Seed         uint64 `yaml:"seed,omitempty" json:"seed,omitempty"` // 0 = random each run
}

// SweepConfig controls the bracket rate sweep
type SweepConfig struct {
	Bracket int     `yaml:"bracket" json:"bracket"` // Bracket index to vary, -1 = last
	MinRate float64 `yaml:"min_rate" json:"min_rate"`
	MaxRate float64 `yaml:"max_rate" json:"max_rate"`
	Step    float64 `yaml:"step" json:"step"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	OpenBrowser bool   `yaml:"open_browser" json:"open_browser"`
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"` // trace, debug, info, warn, error
}

// Config holds the complete configuration
type Config struct {
	Simulation  SimulationConfig `yaml:"simulation" json:"simulation"`
	TaxBrackets []TaxBracket     `yaml:"tax_brackets" json:"tax_brackets"`
	Scenarios   []Scenario       `yaml:"scenarios" json:"scenarios"`
	Sweep       SweepConfig      `yaml:"sweep" json:"sweep"`
	Server      ServerConfig     `yaml:"server" json:"server"`
	Logging     LoggingConfig    `yaml:"logging" json:"logging"`
}

// GetPopulation returns the population size, using default if not set
func (c *Config) GetPopulation() int {
	if c.Simulation.Population <= 0 {
		return 200
	}
	return c.Simulation.Population
}

// GetGroupCount returns the number of income groups, using default if not set
func (c *Config) GetGroupCount() int {
	if c.Simulation.Groups <= 0 {
		return 10
	}
	return c.Simulation.Groups
}

// GetGroupSpan returns the income span per group.
// Falls back to max_income / groups, then to 100,000.
func (c *Config) GetGroupSpan() int {
	if c.Simulation.GroupSpan > 0 {
		return c.Simulation.GroupSpan
	}
	if c.Simulation.MaxIncome > 0 {
		return c.Simulation.MaxIncome / c.GetGroupCount()
	}
	return 100000
}

// GetDistribution returns the configured distribution shape (default normal)
func (c *Config) GetDistribution() (DistributionType, error) {
	if c.Simulation.Distribution == "" {
		return DistributionNormal, nil
	}
	return ParseDistributionType(c.Simulation.Distribution)
}

// GetSweepBracket resolves the sweep bracket index against the configured brackets
func (c *Config) GetSweepBracket() int {
	if c.Sweep.Bracket < 0 || c.Sweep.Bracket >= len(c.TaxBrackets) {
		return len(c.TaxBrackets) - 1
	}
	return c.Sweep.Bracket
}

// GetSweepRange returns min, max and step for the rate sweep with defaults 0..60 by 5
func (c *Config) GetSweepRange() (minRate, maxRate, step float64) {
	minRate, maxRate, step = c.Sweep.MinRate, c.Sweep.MaxRate, c.Sweep.Step
	if maxRate <= minRate {
		minRate, maxRate = 0, 60
	}
	if step <= 0 {
		step = 5
	}
	return minRate, maxRate, step
}

// GetServerAddr returns the web server listen address
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return "localhost:8080"
	}
	return c.Server.Addr
}

// GetLogLevel returns the configured log level (default info)
func (c *Config) GetLogLevel() string {
	if c.Logging.Level == "" {
		return "info"
	}
	return c.Logging.Level
}

// ToParams builds engine parameters from the configuration
func (c *Config) ToParams() (SimulationParams, error) {
	dist, err := c.GetDistribution()
	if err != nil {
		return SimulationParams{}, err
	}
	return SimulationParams{
		Population:   c.GetPopulation(),
		GroupCount:   c.GetGroupCount(),
		GroupSpan:    c.GetGroupSpan(),
		MaxIncome:    c.Simulation.MaxIncome,
		Distribution: dist,
		Brackets:     append([]TaxBracket(nil), c.TaxBrackets...),
		Seed:         c.Simulation.Seed,
	}, nil
}

// ApplyScenario copies a preset's parameters into the simulation settings
func (c *Config) ApplyScenario(s Scenario) {
	c.Simulation.Scenario = s.Name
	c.Simulation.Population = s.Population
	c.Simulation.Groups = s.Groups
	c.Simulation.GroupSpan = s.GroupSpan
	c.Simulation.MaxIncome = 0
	c.Simulation.Distribution = s.Distribution
	c.TaxBrackets = append([]TaxBracket(nil), s.TaxBrackets...)
}

// LoadConfig loads configuration from a YAML file.
// Settings missing from the file keep their embedded defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config, err := LoadDefaultConfig()
	if err != nil {
		return nil, err
	}
	// A file that sets its own brackets replaces the default list entirely
	defaultBrackets := config.TaxBrackets
	config.TaxBrackets = nil
	if err := yaml.Unmarshal([]byte(preprocessPercentages(string(data))), config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if config.TaxBrackets == nil {
		config.TaxBrackets = defaultBrackets
	}

	if config.Simulation.Scenario != "" {
		config.ApplyScenario(config.FindScenario(config.Simulation.Scenario))
	}
	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Gini Simulator Configuration
# Generated by gini-sim - feel free to edit manually
#
# ═══════════════════════════════════════════════════════════════════════════════
# TAX BRACKETS
# ═══════════════════════════════════════════════════════════════════════════════
#   Each bracket taxes the NEXT 'width' of income at 'rate' percent.
#   Brackets are consumed in order; income beyond the last bracket is untaxed.
#   Rates: 25 or 25% both mean twenty-five percent.
#
# ═══════════════════════════════════════════════════════════════════════════════
# RUN COMMANDS
# ═══════════════════════════════════════════════════════════════════════════════
#   gini-sim run --config FILE         Console report
#   gini-sim sweep --config FILE       Rate sweep on one bracket
#   gini-sim serve --config FILE       Web UI on server.addr
#

`)
	content := append(header, data...)
	if err := os.WriteFile(filename, content, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// LoadDefaultConfig loads the default configuration from embedded default-config.yaml
func LoadDefaultConfig() (*Config, error) {
	content := preprocessPercentages(defaultConfigYAML)

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return &config, nil
}

var percentPattern = regexp.MustCompile(`(:\s*)(\d+\.?\d*)%`)

// preprocessPercentages strips the percent sign from values like "25%".
// Rates are stored in percent, so "25%" becomes 25.
func preprocessPercentages(content string) string {
	return percentPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := percentPattern.FindStringSubmatch(match)
		if len(parts) >= 3 {
			if num, err := strconv.ParseFloat(parts[2], 64); err == nil {
				return parts[1] + strconv.FormatFloat(num, 'f', -1, 64)
			}
		}
		return match
	})
}
