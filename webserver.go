package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// WebServer holds the HTTP server configuration
type WebServer struct {
	config *Config
	addr   string
	logger *slog.Logger
}

// NewWebServer creates a new web server instance. config may be nil, in
// which case the embedded defaults are used.
func NewWebServer(config *Config, addr string, logger *slog.Logger) *WebServer {
	if config == nil {
		config, _ = LoadDefaultConfig()
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &WebServer{
		config: config,
		addr:   addr,
		logger: logger,
	}
}

// APISimulationRequest represents a request to run a simulation.
// Zero fields fall back to the scenario (if named) and then the server config.
type APISimulationRequest struct {
	Scenario       string       `json:"scenario,omitempty"`
	Population     int          `json:"population,omitempty"`
	Groups         int          `json:"groups,omitempty"`
	GroupSpan      int          `json:"group_span,omitempty"`
	MaxIncome      int          `json:"max_income,omitempty"`
	Distribution   string       `json:"distribution,omitempty"`
	TaxBrackets    []TaxBracket `json:"tax_brackets,omitempty"` // An explicit empty list means no tax
	Seed           uint64       `json:"seed,omitempty"`
	IncludeIncomes bool         `json:"include_incomes,omitempty"`
}

// APISimulationResponse represents the simulation results
type APISimulationResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Result  *APIResultSummary `json:"result,omitempty"`
}

// APIResultSummary is the JSON form of Results. Undefined values are null.
type APIResultSummary struct {
	Seed              uint64            `json:"seed"`
	Population        int               `json:"population"`
	Groups            int               `json:"groups"`
	GroupSpan         int               `json:"group_span"`
	Distribution      string            `json:"distribution"`
	Brackets          []TaxBracket      `json:"tax_brackets"`
	GroupSizes        []int             `json:"group_sizes"`
	GiniBefore        *float64          `json:"gini_before"`
	GiniAfter         *float64          `json:"gini_after"`
	GiniChange        *float64          `json:"gini_change"`
	GiniChangePercent *float64          `json:"gini_change_percent"`
	TotalGross        int               `json:"total_gross"`
	TotalTax          int               `json:"total_tax"`
	TotalNet          int               `json:"total_net"`
	TaxShare          *float64          `json:"tax_share"`
	AverageBefore     *float64          `json:"average_before"`
	AverageAfter      *float64          `json:"average_after"`
	LorenzBefore      LorenzCurve       `json:"lorenz_before"`
	LorenzAfter       LorenzCurve       `json:"lorenz_after"`
	IncomesBefore     []int             `json:"incomes_before,omitempty"`
	IncomesAfter      []int             `json:"incomes_after,omitempty"`
	PerIndividual     []TaxResult       `json:"per_individual,omitempty"`
	Challenges        []ChallengeStatus `json:"challenges"`
}

// APISweepRequest runs a rate sweep over one bracket
type APISweepRequest struct {
	APISimulationRequest
	Bracket *int    `json:"bracket,omitempty"` // nil = configured bracket
	MinRate float64 `json:"min_rate"`
	MaxRate float64 `json:"max_rate"`
	Step    float64 `json:"step"`
}

// APISweepPoint is the JSON form of SweepPoint
type APISweepPoint struct {
	Rate              float64  `json:"rate"`
	GiniAfter         *float64 `json:"gini_after"`
	GiniChange        *float64 `json:"gini_change"`
	GiniChangePercent *float64 `json:"gini_change_percent"`
	TotalTax          int      `json:"total_tax"`
	TaxShare          *float64 `json:"tax_share"`
}

// APISweepResponse holds sweep results
type APISweepResponse struct {
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	Seed         uint64          `json:"seed,omitempty"`
	BracketIndex int             `json:"bracket_index"`
	GiniBefore   *float64        `json:"gini_before"`
	Points       []APISweepPoint `json:"points,omitempty"`
}

// APIPDFExportRequest asks for a PDF report, optionally with a sweep page
type APIPDFExportRequest struct {
	APISimulationRequest
	IncludeSweep bool `json:"include_sweep"`
}

// Routes builds the HTTP router
func (ws *WebServer) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ws.requestLogger)

	r.Get("/", ws.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/config", ws.handleGetConfig)
		r.Get("/scenarios", ws.handleScenarios)
		r.Post("/simulate", ws.handleSimulate)
		r.Post("/sweep", ws.handleSweep)
		r.Post("/export-csv", ws.handleExportCSV)
		r.Post("/export-pdf", ws.handleExportPDF)
	})
	return r
}

// requestLogger logs every request at debug level
func (ws *WebServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		ws.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// listen opens the listener and returns a browsable URL for it
func (ws *WebServer) listen() (net.Listener, string, error) {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return nil, "", err
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)

	// If listening on all interfaces, use localhost for the URL
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}
	return listener, url, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (ws *WebServer) Start(ctx context.Context, browse bool) error {
	listener, url, err := ws.listen()
	if err != nil {
		return err
	}

	server := &http.Server{Handler: ws.Routes(), ReadHeaderTimeout: 10 * time.Second}
	ws.logger.Info("starting web server", "addr", listener.Addr().String(), "url", url)
	if browse {
		go openBrowser(url)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case <-ctx.Done():
		ws.logger.Info("shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

// StartForEmbedded starts the server and returns the URL and a cleanup function.
// Unlike Start, this does not open the browser and does not block.
func (ws *WebServer) StartForEmbedded() (url string, cleanup func(), err error) {
	listener, url, err := ws.listen()
	if err != nil {
		return "", nil, err
	}

	ws.logger.Info("starting embedded web server", "addr", listener.Addr().String())
	server := &http.Server{Handler: ws.Routes(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			ws.logger.Error("server error", "err", err)
		}
	}()

	cleanup = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return url, cleanup, nil
}

// handleIndex serves the main web UI
func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, webUIHTML)
}

// handleGetConfig returns the current configuration
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, ws.config)
}

// handleScenarios returns the preset list
func (ws *WebServer) handleScenarios(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, ws.config.Scenarios)
}

// handleSimulate runs one simulation
func (ws *WebServer) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req APISimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := ws.simulate(&req)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}
	ws.logger.Debug("simulated", "seed", results.Seed, "gini_before", results.GiniBefore, "gini_after", results.GiniAfter)

	summary := convertToAPISummary(results, req.IncludeIncomes)
	sendJSON(w, http.StatusOK, APISimulationResponse{Success: true, Result: &summary})
}

// handleSweep runs a bracket rate sweep
func (ws *WebServer) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req APISweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	params, err := ws.buildParams(&req.APISimulationRequest)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	bracket := ws.config.GetSweepBracket()
	if req.Bracket != nil {
		bracket = *req.Bracket
	}
	minRate, maxRate, step := req.MinRate, req.MaxRate, req.Step
	if maxRate == 0 && step == 0 {
		minRate, maxRate, step = ws.config.GetSweepRange()
	}

	sweep, err := RunRateSweep(params, bracket, minRate, maxRate, step)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	resp := convertSweep(sweep)
	resp.Success = true
	sendJSON(w, http.StatusOK, resp)
}

// handleExportCSV streams the per-individual export as a CSV download
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	var req APISimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := ws.simulate(&req)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	filename := fmt.Sprintf("gini-simulation-%s.csv", time.Now().Format("2006-01-02-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Simulation-Seed", fmt.Sprintf("%d", results.Seed))
	if err := WriteCSV(w, ExportRows(results)); err != nil {
		ws.logger.Error("writing CSV export", "err", err)
	}
}

// handleExportPDF renders the PDF report as a download
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	var req APIPDFExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := ws.simulate(&req.APISimulationRequest)
	if err != nil {
		sendJSONError(w, statusForError(err), err.Error())
		return
	}

	var sweep *RateSweep
	if req.IncludeSweep && len(results.Params.Brackets) > 0 {
		minRate, maxRate, step := ws.config.GetSweepRange()
		params := results.Params
		sweep, err = RunRateSweep(params, ws.config.GetSweepBracket(), minRate, maxRate, step)
		if err != nil {
			sendJSONError(w, statusForError(err), err.Error())
			return
		}
	}

	data, err := GenerateInequalityPDFReport(results, sweep)
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, "Failed to generate PDF: "+err.Error())
		return
	}

	filename := fmt.Sprintf("gini-report-%s.pdf", time.Now().Format("2006-01-02-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// simulate builds params from the request and runs the pipeline
func (ws *WebServer) simulate(req *APISimulationRequest) (*Results, error) {
	params, err := ws.buildParams(req)
	if err != nil {
		return nil, err
	}
	return RunSimulation(params)
}

func (ws *WebServer) buildParams(req *APISimulationRequest) (SimulationParams, error) {
	return paramsFromRequest(ws.config, req)
}

// paramsFromRequest layers a request over the named scenario and the base config
func paramsFromRequest(base *Config, req *APISimulationRequest) (SimulationParams, error) {
	config := *base
	if req.Scenario != "" {
		config.ApplyScenario(config.FindScenario(req.Scenario))
	}
	if req.Population != 0 {
		config.Simulation.Population = req.Population
	}
	if req.Groups != 0 {
		config.Simulation.Groups = req.Groups
	}
	if req.GroupSpan != 0 {
		config.Simulation.GroupSpan = req.GroupSpan
	}
	if req.MaxIncome != 0 {
		config.Simulation.MaxIncome = req.MaxIncome
		if req.GroupSpan == 0 {
			config.Simulation.GroupSpan = 0
		}
	}
	if req.Distribution != "" {
		config.Simulation.Distribution = req.Distribution
	}
	if req.TaxBrackets != nil {
		config.TaxBrackets = req.TaxBrackets
	}
	config.Simulation.Seed = req.Seed

	params, err := config.ToParams()
	if err != nil {
		return SimulationParams{}, err
	}
	// Negative values would be replaced by getter defaults; reject them instead
	if req.Population < 0 {
		params.Population = req.Population
	}
	if req.Groups < 0 {
		params.GroupCount = req.Groups
	}
	if req.GroupSpan < 0 {
		params.GroupSpan = req.GroupSpan
	}
	return params, ValidateParams(params)
}

// convertToAPISummary converts Results to the JSON response form
func convertToAPISummary(r *Results, includeIncomes bool) APIResultSummary {
	summary := APIResultSummary{
		Seed:              r.Seed,
		Population:        r.Params.Population,
		Groups:            r.Params.GroupCount,
		GroupSpan:         r.Params.GroupSpan,
		Distribution:      r.Params.Distribution.String(),
		Brackets:          r.Params.Brackets,
		GroupSizes:        r.GroupSizes,
		GiniBefore:        jsonFloat(r.GiniBefore),
		GiniAfter:         jsonFloat(r.GiniAfter),
		GiniChange:        jsonFloat(r.GiniChange),
		GiniChangePercent: jsonFloat(r.GiniChangePercent),
		TotalGross:        r.TaxSummary.TotalGross,
		TotalTax:          r.TaxSummary.TotalTax,
		TotalNet:          r.TaxSummary.TotalNet,
		TaxShare:          jsonFloat(r.TaxSummary.TaxShare),
		AverageBefore:     jsonFloat(AverageIncome(r.IncomesBefore)),
		AverageAfter:      jsonFloat(AverageIncome(r.IncomesAfter)),
		LorenzBefore:      r.LorenzBefore,
		LorenzAfter:       r.LorenzAfter,
		Challenges:        ChallengeResults(r),
	}
	if summary.Brackets == nil {
		summary.Brackets = []TaxBracket{}
	}
	if includeIncomes {
		summary.IncomesBefore = r.IncomesBefore
		summary.IncomesAfter = r.IncomesAfter
		summary.PerIndividual = r.PerIndividual
	}
	return summary
}

// convertSweep converts a RateSweep to the JSON response form
func convertSweep(s *RateSweep) APISweepResponse {
	resp := APISweepResponse{
		Seed:         s.Seed,
		BracketIndex: s.BracketIndex,
		GiniBefore:   jsonFloat(s.GiniBefore),
	}
	for _, p := range s.Points {
		resp.Points = append(resp.Points, APISweepPoint{
			Rate:              p.Rate,
			GiniAfter:         jsonFloat(p.GiniAfter),
			GiniChange:        jsonFloat(p.GiniChange),
			GiniChangePercent: jsonFloat(p.GiniChangePercent),
			TotalTax:          p.TotalTax,
			TaxShare:          jsonFloat(p.TaxShare),
		})
	}
	return resp
}

// jsonFloat returns nil for NaN and infinities so they encode as null
func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// statusForError maps validation failures to 400 and everything else to 500
func statusForError(err error) int {
	if errors.Is(err, ErrInvalidParameter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, APISimulationResponse{
		Success: false,
		Error:   message,
	})
}

// openBrowser opens url in the system browser
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		fmt.Fprintf(os.Stderr, "Cannot open browser on %s\n", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening browser: %v\n", err)
	}
}

// webUIHTML is the embedded web interface HTML
const webUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Gini Simulator</title>
    <style>
        :root {
            --primary: #2563eb;
            --primary-dark: #1d4ed8;
            --success: #16a34a;
            --danger: #dc2626;
            --bg: #f1f5f9;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
            padding: 1.5rem;
        }
        .layout { display: grid; grid-template-columns: 320px 1fr; gap: 1.5rem; max-width: 1300px; margin: 0 auto; }
        .card { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: 1rem; }
        h1 { font-size: 1.5rem; color: var(--primary); margin-bottom: 1rem; }
        h2 { font-size: 1.1rem; margin-bottom: 0.75rem; }
        label { display: block; font-size: 0.85rem; color: var(--text-muted); margin-top: 0.6rem; }
        input, select, textarea { width: 100%; padding: 0.4rem; border: 1px solid var(--border); border-radius: 4px; font: inherit; }
        textarea { font-family: monospace; min-height: 7rem; }
        button {
            margin-top: 0.8rem; width: 100%; padding: 0.5rem; border: none; border-radius: 4px;
            background: var(--primary); color: white; font-weight: 600; cursor: pointer;
        }
        button:hover { background: var(--primary-dark); }
        button.secondary { background: #475569; }
        .stats { display: grid; grid-template-columns: repeat(4, 1fr); gap: 0.75rem; margin-bottom: 1rem; }
        .stat .label { font-size: 0.8rem; color: var(--text-muted); }
        .stat .value { font-size: 1.4rem; font-weight: 600; }
        .good { color: var(--success); }
        .bad { color: var(--danger); }
        .error { color: var(--danger); margin-top: 0.5rem; font-size: 0.9rem; }
        table { width: 100%; border-collapse: collapse; margin-top: 1rem; font-size: 0.9rem; }
        th, td { border: 1px solid var(--border); padding: 0.3rem 0.6rem; text-align: right; }
        th { background: var(--primary); color: white; }
        .challenges { list-style: none; margin-top: 1rem; font-size: 0.9rem; }
        .challenges li.met { color: var(--success); }
    </style>
</head>
<body>
<h1>Income Inequality &amp; Progressive Tax Simulator</h1>
<div class="layout">
    <div class="card">
        <h2>Parameters</h2>
        <label for="scenario">Scenario</label>
        <select id="scenario"><option value="">(custom)</option></select>
        <label for="population">Population</label>
        <input id="population" type="number" min="1" value="200">
        <label for="groups">Income groups</label>
        <input id="groups" type="number" min="1" value="10">
        <label for="span">Income span per group</label>
        <input id="span" type="number" min="1" value="100000">
        <label for="distribution">Distribution</label>
        <select id="distribution">
            <option value="equal">Equal</option>
            <option value="normal" selected>Normal (bell curve)</option>
            <option value="skewed">Skewed (realistic)</option>
            <option value="extreme">Extreme inequality</option>
        </select>
        <label for="brackets">Tax brackets (width, rate % per line)</label>
        <textarea id="brackets"></textarea>
        <label for="seed">Seed (0 = random)</label>
        <input id="seed" type="number" min="0" value="0">
        <button id="run">Simulate</button>
        <button id="sweep" class="secondary">Sweep last bracket rate</button>
        <button id="csv" class="secondary">Export CSV</button>
        <button id="pdf" class="secondary">Export PDF</button>
        <div id="error" class="error"></div>
    </div>
    <div class="card">
        <div class="stats">
            <div class="stat"><div class="label">Gini before tax</div><div class="value" id="giniBefore">-</div></div>
            <div class="stat"><div class="label">Gini after tax</div><div class="value" id="giniAfter">-</div></div>
            <div class="stat"><div class="label">Change</div><div class="value" id="giniChange">-</div></div>
            <div class="stat"><div class="label">Tax share</div><div class="value" id="taxShare">-</div></div>
        </div>
        <canvas id="chart" width="800" height="500"></canvas>
        <ul id="challenges" class="challenges"></ul>
        <div id="sweepTable"></div>
    </div>
</div>
<script>
var scenarios = [];

function el(id) { return document.getElementById(id); }

function fmtGini(v) { return v === null || v === undefined ? 'n/a' : v.toFixed(4); }
function fmtPct(v) { return v === null || v === undefined ? 'n/a' : v.toFixed(1) + '%'; }

function parseBrackets() {
    var lines = el('brackets').value.split('\n');
    var out = [];
    for (var i = 0; i < lines.length; i++) {
        var line = lines[i].trim();
        if (!line) continue;
        var parts = line.split(/[,;\s]+/);
        out.push({ width: parseInt(parts[0], 10), rate: parseFloat(parts[1]) });
    }
    return out;
}

function showBrackets(brackets) {
    el('brackets').value = brackets.map(function (b) { return b.width + ', ' + b.rate; }).join('\n');
}

function request() {
    return {
        population: parseInt(el('population').value, 10),
        groups: parseInt(el('groups').value, 10),
        group_span: parseInt(el('span').value, 10),
        distribution: el('distribution').value,
        tax_brackets: parseBrackets(),
        seed: parseInt(el('seed').value, 10) || 0
    };
}

function post(url, body) {
    return fetch(url, { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body) });
}

function drawChart(result) {
    var c = el('chart'), ctx = c.getContext('2d');
    var pad = 50, w = c.width - 2 * pad, h = c.height - 2 * pad;
    ctx.clearRect(0, 0, c.width, c.height);
    ctx.strokeStyle = '#cbd5e1';
    ctx.strokeRect(pad, pad, w, h);
    ctx.fillStyle = '#64748b';
    ctx.font = '12px sans-serif';
    for (var i = 0; i <= 4; i++) {
        ctx.fillText((i * 25) + '%', pad + i * w / 4 - 10, pad + h + 18);
        ctx.fillText((i * 25) + '%', pad - 40, pad + h - i * h / 4 + 4);
    }
    function line(xs, ys, color, dash) {
        ctx.beginPath();
        ctx.setLineDash(dash ? [6, 4] : []);
        ctx.strokeStyle = color;
        ctx.lineWidth = 2;
        for (var i = 0; i < xs.length; i++) {
            var x = pad + xs[i] * w, y = pad + h - ys[i] * h;
            if (i === 0) ctx.moveTo(x, y); else ctx.lineTo(x, y);
        }
        ctx.stroke();
    }
    var before = result.lorenz_before, after = result.lorenz_after;
    line(before.population_share, before.equality_share, '#94a3b8', true);
    line(before.population_share, before.income_share, '#dc2626', false);
    line(after.population_share, after.income_share, '#2563eb', false);
    ctx.setLineDash([]);
}

function showResult(result) {
    el('giniBefore').textContent = fmtGini(result.gini_before);
    el('giniAfter').textContent = fmtGini(result.gini_after);
    var change = el('giniChange');
    change.textContent = result.gini_change === null ? 'n/a' : fmtPct(result.gini_change_percent);
    change.className = 'value ' + (result.gini_change > 0 ? 'good' : (result.gini_change < 0 ? 'bad' : ''));
    el('taxShare').textContent = fmtPct(result.tax_share);
    el('seed').value = result.seed;
    el('challenges').innerHTML = (result.challenges || []).map(function (c) {
        return '<li class="' + (c.met ? 'met' : '') + '">' + (c.met ? '&#10003; ' : '&#9675; ') + c.goal + '</li>';
    }).join('');
    drawChart(result);
}

function handleError(resp) {
    return resp.json().then(function (data) { throw new Error(data.error || resp.statusText); });
}

function run() {
    el('error').textContent = '';
    post('/api/simulate', request()).then(function (resp) {
        if (!resp.ok) return handleError(resp);
        return resp.json();
    }).then(function (data) { showResult(data.result); })
      .catch(function (err) { el('error').textContent = err.message; });
}

function sweep() {
    el('error').textContent = '';
    post('/api/sweep', request()).then(function (resp) {
        if (!resp.ok) return handleError(resp);
        return resp.json();
    }).then(function (data) {
        var html = '<table><tr><th>Rate</th><th>Gini after</th><th>Change %</th><th>Tax share</th></tr>';
        data.points.forEach(function (p) {
            html += '<tr><td>' + p.rate.toFixed(1) + '%</td><td>' + fmtGini(p.gini_after) + '</td><td>' +
                fmtPct(p.gini_change_percent) + '</td><td>' + fmtPct(p.tax_share) + '</td></tr>';
        });
        el('sweepTable').innerHTML = html + '</table>';
    }).catch(function (err) { el('error').textContent = err.message; });
}

function download(url, name) {
    el('error').textContent = '';
    post(url, request()).then(function (resp) {
        if (!resp.ok) return handleError(resp);
        return resp.blob();
    }).then(function (blob) {
        var a = document.createElement('a');
        a.href = URL.createObjectURL(blob);
        a.download = name;
        a.click();
    }).catch(function (err) { el('error').textContent = err.message; });
}

function applyScenario(name) {
    var s = scenarios.filter(function (x) { return x.name === name; })[0];
    if (!s) return;
    el('population').value = s.population;
    el('groups').value = s.groups;
    el('span').value = s.group_span;
    el('distribution').value = s.distribution;
    showBrackets(s.tax_brackets);
    run();
}

el('run').onclick = run;
el('sweep').onclick = sweep;
el('csv').onclick = function () { download('/api/export-csv', 'gini-simulation.csv'); };
el('pdf').onclick = function () { download('/api/export-pdf', 'gini-report.pdf'); };
el('scenario').onchange = function () { applyScenario(this.value); };

fetch('/api/config').then(function (r) { return r.json(); }).then(function (cfg) {
    el('population').value = cfg.simulation.population || 200;
    el('groups').value = cfg.simulation.groups || 10;
    if (cfg.simulation.group_span) el('span').value = cfg.simulation.group_span;
    if (cfg.simulation.distribution) el('distribution').value = cfg.simulation.distribution;
    showBrackets(cfg.tax_brackets || []);
    scenarios = cfg.scenarios || [];
    scenarios.forEach(function (s) {
        var o = document.createElement('option');
        o.value = s.name;
        o.textContent = s.name + ' - ' + s.description;
        el('scenario').appendChild(o);
    });
    run();
});
</script>
</body>
</html>
`
