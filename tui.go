package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tuiField int

const (
	fieldScenario tuiField = iota
	fieldPopulation
	fieldGroups
	fieldSpan
	fieldDistribution
	fieldTopRate
	fieldCount
)

func (f tuiField) label() string {
	switch f {
	case fieldScenario:
		return "Scenario"
	case fieldPopulation:
		return "Population"
	case fieldGroups:
		return "Groups"
	case fieldSpan:
		return "Group span"
	case fieldDistribution:
		return "Distribution"
	case fieldTopRate:
		return "Top bracket rate"
	}
	return ""
}

type tuiKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Increase key.Binding
	Decrease key.Binding
	Reseed   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Increase, k.Decrease, k.Reseed, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Increase, k.Decrease}, {k.Reseed, k.Help, k.Quit}}
}

var tuiKeys = tuiKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous field")),
	Down:     key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "next field")),
	Increase: key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→/+", "increase")),
	Decrease: key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/-", "decrease")),
	Reseed:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new population")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type tuiModel struct {
	config    *Config
	params    SimulationParams
	scenario  int // Index into config.Scenarios, -1 = custom
	field     tuiField
	results   *Results
	err       error
	help      help.Model
	width     int
	newSeedFn func() uint64
}

// RunTUI starts the interactive terminal explorer
func RunTUI(config *Config, params SimulationParams) error {
	p := tea.NewProgram(newTUIModel(config, params), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newTUIModel(config *Config, params SimulationParams) tuiModel {
	if params.Seed == 0 {
		params.Seed = NewSeed()
	}
	params.GroupSpan = ResolveGroupSpan(params)
	m := tuiModel{
		config:    config,
		params:    params,
		scenario:  -1,
		help:      help.New(),
		newSeedFn: NewSeed,
	}
	if config != nil && config.Simulation.Scenario != "" {
		for i, s := range config.Scenarios {
			if s.Name == config.Simulation.Scenario {
				m.scenario = i
			}
		}
	}
	return m.recompute()
}

// recompute reruns the whole pipeline; nothing carries over from the last run
func (m tuiModel) recompute() tuiModel {
	m.results, m.err = RunSimulation(m.params)
	return m
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tuiKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, tuiKeys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, tuiKeys.Up):
			m.field = (m.field + fieldCount - 1) % fieldCount
		case key.Matches(msg, tuiKeys.Down):
			m.field = (m.field + 1) % fieldCount
		case key.Matches(msg, tuiKeys.Increase):
			return m.adjust(1).recompute(), nil
		case key.Matches(msg, tuiKeys.Decrease):
			return m.adjust(-1).recompute(), nil
		case key.Matches(msg, tuiKeys.Reseed):
			m.params.Seed = m.newSeedFn()
			return m.recompute(), nil
		}
	}
	return m, nil
}

// adjust moves the selected field one step in direction dir
func (m tuiModel) adjust(dir int) tuiModel {
	p := &m.params
	switch m.field {
	case fieldScenario:
		if m.config == nil || len(m.config.Scenarios) == 0 {
			return m
		}
		n := len(m.config.Scenarios)
		m.scenario = ((m.scenario+dir)%n + n) % n
		s := m.config.Scenarios[m.scenario]
		sp, err := s.Params(p.Seed)
		if err != nil {
			m.err = err
			return m
		}
		*p = sp
	case fieldPopulation:
		p.Population = min(MaxPopulation, max(10, p.Population+dir*stepFor(p.Population)))
		m.scenario = -1
	case fieldGroups:
		p.GroupCount = min(50, max(1, p.GroupCount+dir))
		m.scenario = -1
	case fieldSpan:
		p.GroupSpan = max(1000, p.GroupSpan+dir*stepFor(p.GroupSpan))
		m.scenario = -1
	case fieldDistribution:
		all := AllDistributionTypes()
		p.Distribution = all[(int(p.Distribution)+dir+len(all))%len(all)]
		m.scenario = -1
	case fieldTopRate:
		if len(p.Brackets) == 0 {
			p.Brackets = []TaxBracket{{Width: p.GroupSpan * p.GroupCount, Rate: 0}}
		}
		last := len(p.Brackets) - 1
		rate := min(100, max(0, p.Brackets[last].Rate+float64(dir)))
		p.Brackets = WithBracketRate(p.Brackets, last, rate)
		m.scenario = -1
	}
	return m
}

// stepFor returns roughly 10% of v rounded to a power of ten
func stepFor(v int) int {
	step := 1
	for step*100 <= v {
		step *= 10
	}
	return step
}

func (m tuiModel) fieldValue(f tuiField) string {
	p := m.params
	switch f {
	case fieldScenario:
		if m.scenario < 0 || m.config == nil {
			return "custom"
		}
		return m.config.Scenarios[m.scenario].Name
	case fieldPopulation:
		return fmt.Sprintf("%d", p.Population)
	case fieldGroups:
		return fmt.Sprintf("%d", p.GroupCount)
	case fieldSpan:
		return FormatMoneyFull(p.GroupSpan)
	case fieldDistribution:
		return p.Distribution.Label()
	case fieldTopRate:
		if len(p.Brackets) == 0 {
			return "no brackets"
		}
		return fmt.Sprintf("%.0f%%", p.Brackets[len(p.Brackets)-1].Rate)
	}
	return ""
}

func (m tuiModel) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("GINI SIMULATOR")

	selected := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	var fields []string
	for f := tuiField(0); f < fieldCount; f++ {
		line := fmt.Sprintf("%-18s %s", f.label(), m.fieldValue(f))
		if f == m.field {
			fields = append(fields, selected.Render("▸ "+line))
		} else {
			fields = append(fields, "  "+line)
		}
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1)
	left := box.Render(strings.Join(fields, "\n"))

	right := box.Render(m.renderResults())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(m.help.View(tuiKeys))

	return strings.Join([]string{header, body, footer}, "\n")
}

func (m tuiModel) renderResults() string {
	if m.err != nil {
		return warnStyle.Render("⚠ " + m.err.Error())
	}
	r := m.results
	if r == nil {
		return "No results"
	}

	lines := []string{
		titleStyle.Render("Inequality"),
		fmt.Sprintf("Gini before tax  %s", FormatGini(r.GiniBefore)),
		fmt.Sprintf("Gini after tax   %s", FormatGini(r.GiniAfter)),
		fmt.Sprintf("Reduction        %s", FormatPercent(r.GiniChangePercent)),
		fmt.Sprintf("Tax share        %s", FormatPercent(r.TaxSummary.TaxShare)),
		mutedStyle.Render(fmt.Sprintf("seed %d", r.Seed)),
		"",
		titleStyle.Render("Lorenz curve (after tax)"),
	}
	lines = append(lines, renderLorenzASCII(r.LorenzAfter, 40, 12)...)

	lines = append(lines, "", titleStyle.Render("Challenges"))
	for _, c := range ChallengeResults(r) {
		if c.Met {
			lines = append(lines, goodStyle.Render("✓ "+c.Goal))
		} else {
			lines = append(lines, mutedStyle.Render("○ "+c.Goal))
		}
	}
	return strings.Join(lines, "\n")
}

// renderLorenzASCII plots a Lorenz curve and the equality diagonal on a character grid
func renderLorenzASCII(curve LorenzCurve, width, height int) []string {
	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}
	plot := func(x, y float64, ch rune) {
		col := min(width-1, max(0, int(x*float64(width-1)+0.5)))
		row := min(height-1, max(0, height-1-int(y*float64(height-1)+0.5)))
		if grid[row][col] == ' ' || ch == '●' {
			grid[row][col] = ch
		}
	}
	for i := 0; i < width; i++ {
		f := float64(i) / float64(width-1)
		plot(f, f, '·')
	}
	for i := range curve.PopulationShare {
		plot(curve.PopulationShare[i], curve.IncomeShare[i], '●')
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = "│" + string(row)
	}
	return append(lines, "└"+strings.Repeat("─", width))
}
