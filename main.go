package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

const defaultConfigFile = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gini-sim",
		Short: "Income inequality and progressive tax simulator",
		Long: `gini-sim generates a synthetic population of incomes, applies a
progressive tax schedule and measures inequality with the Gini coefficient
before and after tax.

Without a subcommand it runs a single simulation and prints the summary.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulationCmd(cmd, runOptions{})
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.Bool("json", false, "Output as JSON")
	flags.String("config", defaultConfigFile, "Path to YAML configuration file")
	flags.String("scenario", "", "Start from a preset scenario (denmark, usa, sweden, equal)")
	flags.Int("population", 0, "Number of individuals")
	flags.Int("groups", 0, "Number of income groups")
	flags.Int("span", 0, "Income range covered by each group")
	flags.Int("max-income", 0, "Top of the income range; sets span to max-income/groups")
	flags.String("distribution", "", "Population shape: equal, normal, skewed or extreme")
	flags.Uint64("seed", 0, "Random seed (0 picks a new one)")
	flags.String("log-level", "", "Log level: trace, debug, info, warn or error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newScenariosCmd(),
		newSweepCmd(),
		newServeCmd(),
		newUICmd(),
		newTUICmd(),
		newMCPCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gini-sim version %s\n", version)
			}
		},
	}
}

type runOptions struct {
	details bool
	csvFile string
	pdfFile string
	html    bool
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print the inequality summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts runOptions
			opts.details, _ = cmd.Flags().GetBool("details")
			opts.csvFile, _ = cmd.Flags().GetString("csv")
			opts.pdfFile, _ = cmd.Flags().GetString("pdf")
			opts.html, _ = cmd.Flags().GetBool("html")
			return runSimulationCmd(cmd, opts)
		},
	}
	cmd.Flags().Bool("details", false, "Show group sizes and sampled incomes")
	cmd.Flags().String("csv", "", "Write per-individual incomes to this CSV file")
	cmd.Flags().String("pdf", "", "Write a PDF report to this file")
	cmd.Flags().Bool("html", false, "Write an HTML report into a dated folder")
	return cmd
}

func runSimulationCmd(cmd *cobra.Command, opts runOptions) error {
	config, logger, err := loadCommandConfig(cmd)
	if err != nil {
		return err
	}
	params, err := commandParams(cmd, config)
	if err != nil {
		return err
	}

	results, err := RunSimulation(params)
	if err != nil {
		return err
	}
	logger.Debug("simulation complete", "seed", results.Seed, "gini_before", results.GiniBefore, "gini_after", results.GiniAfter)
	if ctx := cmd.Context(); logger.Enabled(ctx, LevelTrace) {
		span := results.Params.GroupSpan
		for i, size := range results.GroupSizes {
			logger.Log(ctx, LevelTrace, "income group", "index", i, "from", i*span, "to", (i+1)*span, "people", size)
		}
	}

	out := cmd.OutOrStdout()
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(convertToAPISummary(results, opts.details)); err != nil {
			return err
		}
	} else {
		PrintHeader(out, results.Params)
		PrintResultSummary(out, results)
		if opts.details {
			PrintGroupSizes(out, results)
			PrintIncomeDetails(out, results, max(1, len(results.IncomesBefore)/20))
		}
	}

	if opts.csvFile != "" {
		if err := ExportCSVFile(results, opts.csvFile); err != nil {
			return err
		}
		logger.Info("wrote CSV export", "file", opts.csvFile, "rows", len(results.PerIndividual))
	}
	if opts.pdfFile != "" {
		if err := WritePDFReport(results, nil, opts.pdfFile); err != nil {
			return err
		}
		logger.Info("wrote PDF report", "file", opts.pdfFile)
	}
	if opts.html {
		path, err := writeDatedHTMLReport(results, nil)
		if err != nil {
			return err
		}
		logger.Info("wrote HTML report", "file", path)
	}
	return nil
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the preset scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(config.Scenarios)
			}
			PrintScenarios(cmd.OutOrStdout(), config)
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Vary one bracket's rate and report the Gini coefficient at each step",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			params, err := commandParams(cmd, config)
			if err != nil {
				return err
			}

			bracket := config.GetSweepBracket()
			if cmd.Flags().Changed("bracket") {
				bracket, _ = cmd.Flags().GetInt("bracket")
			}
			minRate, maxRate, step := config.GetSweepRange()
			if cmd.Flags().Changed("min") {
				minRate, _ = cmd.Flags().GetFloat64("min")
			}
			if cmd.Flags().Changed("max") {
				maxRate, _ = cmd.Flags().GetFloat64("max")
			}
			if cmd.Flags().Changed("step") {
				step, _ = cmd.Flags().GetFloat64("step")
			}

			sweep, err := RunRateSweep(params, bracket, minRate, maxRate, step)
			if err != nil {
				return err
			}
			logger.Debug("sweep complete", "bracket", sweep.BracketIndex, "points", len(sweep.Points))

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				resp := convertSweep(sweep)
				resp.Success = true
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
			} else {
				PrintRateSweep(cmd.OutOrStdout(), sweep)
			}

			if pdfFile, _ := cmd.Flags().GetString("pdf"); pdfFile != "" {
				if err := WritePDFReport(sweep.Base, sweep, pdfFile); err != nil {
					return err
				}
				logger.Info("wrote PDF report", "file", pdfFile)
			}
			if html, _ := cmd.Flags().GetBool("html"); html {
				path, err := writeDatedHTMLReport(sweep.Base, sweep)
				if err != nil {
					return err
				}
				logger.Info("wrote HTML report", "file", path)
			}
			return nil
		},
	}
	cmd.Flags().Int("bracket", -1, "Bracket to vary, 0-based (-1 = last)")
	cmd.Flags().Float64("min", 0, "Lowest rate in percent")
	cmd.Flags().Float64("max", 60, "Highest rate in percent")
	cmd.Flags().Float64("step", 5, "Rate increment in percent")
	cmd.Flags().String("pdf", "", "Write a PDF report including the sweep")
	cmd.Flags().Bool("html", false, "Write an HTML report including the sweep")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			addr := config.GetServerAddr()
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}
			browse := config.Server.OpenBrowser
			if cmd.Flags().Changed("open") {
				browse, _ = cmd.Flags().GetBool("open")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return NewWebServer(config, addr, logger).Start(ctx, browse)
		},
	}
	cmd.Flags().String("addr", "localhost:8080", "Listen address (use :0 for an automatic port)")
	cmd.Flags().Bool("open", false, "Open the interface in the system browser")
	return cmd
}

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the web interface in an embedded window",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if !webviewAvailable {
				logger.Warn("embedded window not compiled in, use serve --open instead")
			}
			return runEmbeddedUI(config, logger)
		},
	}
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Explore parameters interactively in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, _, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			params, err := commandParams(cmd, config)
			if err != nil {
				return err
			}
			return RunTUI(config, params)
		},
	}
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the simulator as MCP tools over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			return NewMCPServer(config, version, logger).Run(cmd.Context())
		},
	}
}

// loadCommandConfig reads the config file and layers the global flags over it.
// A missing default config file is not an error; the embedded defaults apply.
func loadCommandConfig(cmd *cobra.Command) (*Config, *slog.Logger, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")

	config, err := LoadConfig(configFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("config") {
			return nil, nil, err
		}
		if config, err = LoadDefaultConfig(); err != nil {
			return nil, nil, err
		}
	}

	if flags.Changed("log-level") {
		config.Logging.Level, _ = flags.GetString("log-level")
	}
	logger := NewLogger(config.GetLogLevel(), cmd.ErrOrStderr())

	if name, _ := flags.GetString("scenario"); name != "" {
		s, ok := config.LookupScenario(name)
		if !ok {
			logger.Warn("unknown scenario, using fallback", "requested", name, "using", s.Name)
		}
		config.ApplyScenario(s)
	}
	if flags.Changed("population") {
		config.Simulation.Population, _ = flags.GetInt("population")
	}
	if flags.Changed("groups") {
		config.Simulation.Groups, _ = flags.GetInt("groups")
	}
	if flags.Changed("max-income") {
		config.Simulation.MaxIncome, _ = flags.GetInt("max-income")
		config.Simulation.GroupSpan = 0
	}
	if flags.Changed("span") {
		config.Simulation.GroupSpan, _ = flags.GetInt("span")
	}
	if flags.Changed("distribution") {
		config.Simulation.Distribution, _ = flags.GetString("distribution")
	}
	if flags.Changed("seed") {
		config.Simulation.Seed, _ = flags.GetUint64("seed")
	}
	return config, logger, nil
}

// commandParams builds validated engine parameters from the layered config.
// Explicit non-positive flag values are kept so validation reports them.
func commandParams(cmd *cobra.Command, config *Config) (SimulationParams, error) {
	params, err := config.ToParams()
	if err != nil {
		return SimulationParams{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("population") {
		params.Population, _ = flags.GetInt("population")
	}
	if flags.Changed("groups") {
		params.GroupCount, _ = flags.GetInt("groups")
	}
	if flags.Changed("span") {
		params.GroupSpan, _ = flags.GetInt("span")
	}
	return params, ValidateParams(params)
}

// writeDatedHTMLReport writes the HTML report into a folder named after today's date
func writeDatedHTMLReport(results *Results, sweep *RateSweep) (string, error) {
	now := time.Now()
	dir := now.Format("2006-01-02")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report folder: %w", err)
	}
	name := fmt.Sprintf("gini-%s-%s.html", strings.ToLower(results.Params.Distribution.String()), now.Format("150405"))
	path := filepath.Join(dir, name)
	if err := GenerateHTMLReport(results, sweep, path); err != nil {
		return "", err
	}
	return path, nil
}
