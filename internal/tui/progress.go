// Package tui renders live sweep progress in the terminal: a counter bar,
// per-stage failure tallies, and a sparkline of the delays found so far.
package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/idtlab/autoignition/internal/sweep"
)

const barWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// OutcomeMsg carries one finished condition into the model.
type OutcomeMsg sweep.Outcome

// DoneMsg signals that the sweep finished (or was cut short).
type DoneMsg struct{ Err error }

// Model is the bubbletea model for a running sweep.
type Model struct {
	label    string
	total    int
	outcomes <-chan sweep.Outcome

	done     int
	ok       int
	failures map[string]int
	delays   []float64
	last     string
	finished bool
	err      error
}

// NewModel builds a progress model reading outcomes from ch. The channel
// must be closed when the sweep returns.
func NewModel(label string, total int, ch <-chan sweep.Outcome) Model {
	return Model{
		label:    label,
		total:    total,
		outcomes: ch,
		failures: make(map[string]int),
	}
}

func waitForOutcome(ch <-chan sweep.Outcome) tea.Cmd {
	return func() tea.Msg {
		o, open := <-ch
		if !open {
			return DoneMsg{}
		}
		return OutcomeMsg(o)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForOutcome(m.outcomes)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case OutcomeMsg:
		o := sweep.Outcome(msg)
		m.done++
		if o.OK() {
			m.ok++
			m.delays = append(m.delays, math.Log10(o.Result.Time))
			m.last = fmt.Sprintf("%.0f K / %.3g Pa → %.4g s", o.Condition.Temperature, o.Condition.Pressure, o.Result.Time)
		} else {
			m.failures[string(o.Failure)]++
			m.last = fmt.Sprintf("%.0f K / %.3g Pa → %s", o.Condition.Temperature, o.Condition.Pressure, o.Failure)
		}
		return m, waitForOutcome(m.outcomes)
	case DoneMsg:
		m.finished = true
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.label)) + "\n")

	filled := 0
	if m.total > 0 {
		filled = m.done * barWidth / m.total
	}
	bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
	s.WriteString(fmt.Sprintf("%s %d/%d\n\n", bar, m.done, m.total))

	s.WriteString(labelStyle.Render("Ignited") + okStyle.Render(fmt.Sprintf("%d", m.ok)) + "\n")
	for _, kind := range sortedKeys(m.failures) {
		s.WriteString(labelStyle.Render(kind) + failStyle.Render(fmt.Sprintf("%d", m.failures[kind])) + "\n")
	}
	if m.last != "" {
		s.WriteString(labelStyle.Render("Last") + valueStyle.Render(m.last) + "\n")
	}

	if len(m.delays) > 1 {
		chart := asciigraph.Plot(m.delays, asciigraph.Height(5), asciigraph.Width(50), asciigraph.Caption("log10 delay (s)"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if m.finished {
		status := "DONE"
		if m.err != nil {
			status = "STOPPED: " + m.err.Error()
		}
		s.WriteString("\n" + status + "\n")
	} else {
		s.WriteString(helpStyle.Render("q: quit"))
	}
	return s.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
