package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer exposes the simulator as MCP tools over stdio
type MCPServer struct {
	server *sdk.Server
	config *Config
	logger *slog.Logger
}

// SimulateInput defines the input for the simulate_inequality tool
type SimulateInput struct {
	Scenario     string       `json:"scenario,omitempty" jsonschema:"Preset to start from: denmark, usa, sweden or equal"`
	Population   int          `json:"population,omitempty" jsonschema:"Number of individuals"`
	Groups       int          `json:"groups,omitempty" jsonschema:"Number of income groups"`
	GroupSpan    int          `json:"group_span,omitempty" jsonschema:"Income range covered by each group"`
	Distribution string       `json:"distribution,omitempty" jsonschema:"equal, normal, skewed or extreme"`
	TaxBrackets  []TaxBracket `json:"tax_brackets,omitempty" jsonschema:"Ordered slices of income: each taxes the next width at rate percent"`
	Seed         uint64       `json:"seed,omitempty" jsonschema:"Random seed; 0 picks a new one"`
}

// SimulateOutput defines the output for the simulate_inequality tool
type SimulateOutput struct {
	Seed              uint64   `json:"seed" jsonschema:"Seed used, pass it back to reproduce the run"`
	GroupSizes        []int    `json:"group_sizes" jsonschema:"People per income group"`
	GiniBefore        *float64 `json:"gini_before" jsonschema:"Gini coefficient of pre-tax incomes, null when undefined"`
	GiniAfter         *float64 `json:"gini_after" jsonschema:"Gini coefficient of post-tax incomes, null when undefined"`
	GiniChange        *float64 `json:"gini_change" jsonschema:"gini_before minus gini_after"`
	GiniChangePercent *float64 `json:"gini_change_percent" jsonschema:"Change relative to gini_before, null when gini_before is zero"`
	TotalGross        int      `json:"total_gross" jsonschema:"Total pre-tax income"`
	TotalTax          int      `json:"total_tax" jsonschema:"Total tax collected"`
	TaxShare          *float64 `json:"tax_share" jsonschema:"Tax collected as a percentage of total income"`
}

// ComputeGiniInput defines the input for the compute_gini tool
type ComputeGiniInput struct {
	Incomes       []int `json:"incomes" jsonschema:"Incomes in any order"`
	IncludeLorenz bool  `json:"include_lorenz,omitempty" jsonschema:"Also return the Lorenz curve samples"`
}

// ComputeGiniOutput defines the output for the compute_gini tool
type ComputeGiniOutput struct {
	Count     int          `json:"count" jsonschema:"Number of incomes"`
	Gini      *float64     `json:"gini" jsonschema:"Gini coefficient, null when the input is empty or sums to zero"`
	Undefined bool         `json:"undefined" jsonschema:"True when the Gini coefficient is undefined"`
	MaxGini   *float64     `json:"max_gini" jsonschema:"Largest value the measure can take for this many incomes"`
	Lorenz    *LorenzCurve `json:"lorenz,omitempty" jsonschema:"Lorenz curve samples starting at the origin"`
}

// ApplyTaxInput defines the input for the apply_tax tool
type ApplyTaxInput struct {
	Incomes     []int        `json:"incomes" jsonschema:"Gross incomes to tax"`
	TaxBrackets []TaxBracket `json:"tax_brackets" jsonschema:"Ordered slices of income: each taxes the next width at rate percent"`
}

// ApplyTaxOutput defines the output for the apply_tax tool
type ApplyTaxOutput struct {
	Results    []TaxResult `json:"results" jsonschema:"Per-income gross, tax and net in input order"`
	TotalGross int         `json:"total_gross" jsonschema:"Sum of gross incomes"`
	TotalTax   int         `json:"total_tax" jsonschema:"Sum of tax"`
	TaxShare   *float64    `json:"tax_share" jsonschema:"Tax as a percentage of gross, null when gross is zero"`
	Untaxed    int         `json:"untaxed_above" jsonschema:"Income above this amount falls outside every bracket and is not taxed"`
}

// NewMCPServer creates an MCP server with the simulator tools registered
func NewMCPServer(config *Config, version string, logger *slog.Logger) *MCPServer {
	if config == nil {
		config, _ = LoadDefaultConfig()
	}
	if logger == nil {
		logger = discardLogger()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    "gini-sim",
		Version: version,
	}, nil)

	s := &MCPServer{
		server: mcpServer,
		config: config,
		logger: logger,
	}
	s.registerTools()
	return s
}

func (s *MCPServer) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simulate_inequality",
		Description: "Generate a synthetic population, apply progressive tax brackets and report the Gini coefficient before and after tax",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "compute_gini",
		Description: "Compute the Gini coefficient and optionally the Lorenz curve for a list of incomes",
	}, s.handleComputeGini)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "apply_tax",
		Description: "Apply slice-model tax brackets to a list of incomes",
	}, s.handleApplyTax)
}

// Run serves over stdio until the client disconnects or ctx is cancelled
func (s *MCPServer) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

func (s *MCPServer) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	params, err := paramsFromRequest(s.config, &APISimulationRequest{
		Scenario:     args.Scenario,
		Population:   args.Population,
		Groups:       args.Groups,
		GroupSpan:    args.GroupSpan,
		Distribution: args.Distribution,
		TaxBrackets:  args.TaxBrackets,
		Seed:         args.Seed,
	})
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	r, err := RunSimulation(params)
	if err != nil {
		return nil, SimulateOutput{}, err
	}
	s.logger.Debug("simulate_inequality", "seed", r.Seed, "population", params.Population)

	return nil, SimulateOutput{
		Seed:              r.Seed,
		GroupSizes:        r.GroupSizes,
		GiniBefore:        jsonFloat(r.GiniBefore),
		GiniAfter:         jsonFloat(r.GiniAfter),
		GiniChange:        jsonFloat(r.GiniChange),
		GiniChangePercent: jsonFloat(r.GiniChangePercent),
		TotalGross:        r.TaxSummary.TotalGross,
		TotalTax:          r.TaxSummary.TotalTax,
		TaxShare:          jsonFloat(r.TaxSummary.TaxShare),
	}, nil
}

func (s *MCPServer) handleComputeGini(ctx context.Context, req *sdk.CallToolRequest, args ComputeGiniInput) (*sdk.CallToolResult, ComputeGiniOutput, error) {
	for i, v := range args.Incomes {
		if v < 0 {
			return nil, ComputeGiniOutput{}, &ValidationError{Field: "incomes", Message: fmt.Sprintf("income at position %d is negative", i)}
		}
	}

	// The analyzer requires sorted input; callers of the tool need not sort
	sorted := slices.Clone(args.Incomes)
	slices.Sort(sorted)

	g := ComputeGini(sorted)
	out := ComputeGiniOutput{
		Count:     len(sorted),
		Gini:      jsonFloat(g),
		Undefined: IsUndefinedGini(g),
		MaxGini:   jsonFloat(MaxGini(len(sorted))),
	}
	if args.IncludeLorenz {
		curve := ComputeLorenzCurve(sorted)
		out.Lorenz = &curve
	}
	return nil, out, nil
}

func (s *MCPServer) handleApplyTax(ctx context.Context, req *sdk.CallToolRequest, args ApplyTaxInput) (*sdk.CallToolResult, ApplyTaxOutput, error) {
	if err := ValidateBrackets(args.TaxBrackets); err != nil {
		return nil, ApplyTaxOutput{}, err
	}

	results, _ := ApplyTaxToPopulation(args.Incomes, args.TaxBrackets)
	summary := SummarizeTax(results)
	return nil, ApplyTaxOutput{
		Results:    results,
		TotalGross: summary.TotalGross,
		TotalTax:   summary.TotalTax,
		TaxShare:   jsonFloat(summary.TaxShare),
		Untaxed:    BracketCoverage(args.TaxBrackets),
	}, nil
}
