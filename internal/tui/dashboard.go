// Package tui is the live terminal dashboard: it drives the process
// controller with real ticker messages (300 ms physics, 1 s clock) and
// renders gauges, the alarm log and a temperature sparkline.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Guilherme-Argilar/minha-panela/internal/kettle"
	"github.com/Guilherme-Argilar/minha-panela/internal/process"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const gaugeWidth = 30

type model struct {
	ctrl *process.Controller
	dt   time.Duration

	width  int
	height int
}

// Run blocks until the operator quits the dashboard.
func Run(ctrl *process.Controller, dt time.Duration) error {
	if dt <= 0 {
		dt = process.NominalTick
	}
	m := model{ctrl: ctrl, dt: dt, width: 80, height: 24}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type physicsMsg time.Time
type clockMsg time.Time

func physicsTick(dt time.Duration) tea.Cmd {
	return tea.Tick(dt, func(t time.Time) tea.Msg { return physicsMsg(t) })
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(physicsTick(m.dt), clockTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case physicsMsg:
		m.ctrl.Tick(m.dt)
		return m, physicsTick(m.dt)
	case clockMsg:
		m.ctrl.TickClock(time.Second)
		return m, clockTick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		// Start and pause are idempotent; the toggle lives here.
		if st.Running {
			_ = m.ctrl.Pause()
		} else {
			_ = m.ctrl.Start()
		}
	case "r":
		m.ctrl.Reset()
	case "a":
		m.ctrl.SetAutoMode(!st.AutoMode)
	case "up":
		_ = m.ctrl.SetManualSetpoint(st.Setpoint + 1)
	case "down":
		_ = m.ctrl.SetManualSetpoint(st.Setpoint - 1)
	case "right":
		_ = m.ctrl.SetCommandedRPM(st.CommandedRPM + 5)
	case "left":
		_ = m.ctrl.SetCommandedRPM(st.CommandedRPM - 5)
	case "1", "2", "3", "4":
		phase := kettle.Phase(int(msg.String()[0] - '1'))
		_ = m.ctrl.SetPhase(phase)
	}
	return m, nil
}

func (m model) View() string {
	snap := m.ctrl.Snapshot()
	var b strings.Builder

	b.WriteString(m.header(snap))
	b.WriteString("\n\n")
	b.WriteString(m.gauges(snap))
	b.WriteString("\n")
	b.WriteString(m.sparkline(snap))
	b.WriteString("\n")
	b.WriteString(m.alarmList(snap))
	b.WriteString("\n")
	b.WriteString(dim.Render("space start/pause · r reset · a auto · ←→ rpm · ↑↓ setpoint · 1-4 phase (manual) · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m model) header(snap process.Snapshot) string {
	status := dim.Render("STOPPED")
	if snap.Running {
		status = green.Render("RUNNING")
	}
	mode := yellow.Render("manual")
	if snap.AutoMode {
		mode = cyan.Render("auto")
	}
	guard := ""
	if snap.ProtectionOn {
		guard = "  " + red.Render("MOTOR PROTECTION")
	}
	elapsed := fmt.Sprintf("%02d:%02d", snap.ElapsedSeconds/60, snap.ElapsedSeconds%60)

	return fmt.Sprintf("  %s  %s  %s  %s  %s%s",
		magenta.Render("minha panela"),
		status, mode,
		white.Render(phaseLabel(m.ctrl, snap.Phase)),
		dim.Render(elapsed),
		guard)
}

func phaseLabel(ctrl *process.Controller, p kettle.Phase) string {
	label := ctrl.Config().Recipe.Spec(p).Label
	if label == "" {
		label = p.String()
	}
	return label
}

func (m model) gauges(snap process.Snapshot) string {
	cfg := m.ctrl.Config()
	var b strings.Builder

	torqueStyle := green
	switch {
	case snap.Torque >= cfg.Protection.Overload:
		torqueStyle = red
	case snap.Torque >= cfg.Protection.Sustain:
		torqueStyle = yellow
	}

	rows := []string{
		gaugeRow("temp ", snap.Temperature, cfg.MaxSetpoint, "°C", cyan) +
			dim.Render(fmt.Sprintf("  target %.0f°C", snap.Setpoint)),
		gaugeRow("brix ", snap.Brix, cfg.Physics.MaxBrix, "°Bx", magenta),
		gaugeRow("load ", snap.Torque, 100, "%", torqueStyle),
		gaugeRow("stir ", snap.EffectiveRPM, cfg.MaxRPM, "rpm", white) +
			dim.Render(fmt.Sprintf("  commanded %.0f", snap.CommandedRPM)),
		gaugeRow("eff  ", snap.Efficiency, 100, "%", green),
	}
	for _, r := range rows {
		b.WriteString("  " + r + "\n")
	}
	return b.String()
}

func gaugeRow(name string, value, max float64, unit string, style lipgloss.Style) string {
	if max <= 0 {
		max = 1
	}
	fill := int(value / max * gaugeWidth)
	if fill < 0 {
		fill = 0
	}
	if fill > gaugeWidth {
		fill = gaugeWidth
	}
	bar := style.Render(strings.Repeat("█", fill)) + dim.Render(strings.Repeat("░", gaugeWidth-fill))
	return fmt.Sprintf("%s %s %s", dim.Render(name), bar, white.Render(fmt.Sprintf("%6.1f %s", value, unit)))
}

func (m model) sparkline(snap process.Snapshot) string {
	if len(snap.History) < 2 {
		return ""
	}
	data := make([]float64, 0, len(snap.History))
	for _, s := range snap.History {
		data = append(data, s.Temperature)
	}
	width := m.width - 14
	if width > 60 {
		width = 60
	}
	if len(data) > width && width > 0 {
		data = data[len(data)-width:]
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(6),
		asciigraph.Caption("temperature °C"),
	)
	return "  " + strings.ReplaceAll(graph, "\n", "\n  ") + "\n"
}

func (m model) alarmList(snap process.Snapshot) string {
	if len(snap.Alarms) == 0 {
		return "  " + dim.Render("no alarms") + "\n"
	}
	var b strings.Builder
	for i := len(snap.Alarms) - 1; i >= 0; i-- {
		a := snap.Alarms[i]
		style := dim
		switch a.Severity {
		case kettle.SeverityWarning:
			style = yellow
		case kettle.SeverityError:
			style = red
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			dim.Render(a.Timestamp.Format("15:04:05")),
			style.Render(strings.ToUpper(string(a.Severity))),
			white.Render(a.Message)))
	}
	return b.String()
}
