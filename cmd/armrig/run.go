package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/armrig/pkg/rig"
	"github.com/gwillem/armrig/pkg/robot"
	"github.com/gwillem/armrig/pkg/teleop"
)

type RunCommand struct {
	Hz     int  `long:"hz" description:"Control loop frequency (default from config)"`
	Mirror bool `long:"mirror" description:"Mirror the rig onto the paired SO-101 arm"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	tableHeight  = 9 // joint table
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Joint colors - distinct colors for each joint
var jointColors = map[robot.JointName]string{
	robot.Shoulder: "196", // red
	robot.LowerArm: "208", // orange
	robot.Elbow:    "226", // yellow
	robot.UpperArm: "46",  // green
	robot.Wrist:    "51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type runModel struct {
	ctrl     *teleop.Controller
	keys     *teleop.HeldKeys
	cfg      *robot.Config
	chart    *streamlinechart.Model
	width    int
	height   int
	logs     []string
	joints   []rig.JointSnapshot
	lastTick uint64
	quitting bool
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg teleop.State
type logMsg string

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 14 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - tableHeight - footerHeight - borderSize
	if height < 6 {
		height = 6
	}
	return width, height
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

// chartRange is the y range of the chart for the configured reading mode.
func chartRange(mode robot.ReadingMode) float64 {
	if m, _ := robot.ParseReadingMode(string(mode)); m == robot.ReadingQuaternion {
		return 1
	}
	return math.Pi
}

func newRunModel(ctrl *teleop.Controller, keys *teleop.HeldKeys, cfg *robot.Config) runModel {
	y := chartRange(cfg.Control.Reading)
	chart := streamlinechart.New(80, 14,
		streamlinechart.WithYRange(-y, y),
	)

	for _, name := range robot.AllJoints() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return runModel{
		ctrl:  ctrl,
		keys:  keys,
		cfg:   cfg,
		chart: &chart,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		m.keys.Press(robot.ParseKey(msg.String()), time.Now())
		return m, nil

	case stateMsg:
		state := teleop.State(msg)
		if state.Tick > m.lastTick {
			for _, j := range state.Joints {
				m.chart.PushDataSet(string(j.Name), j.Reading)
			}
			m.chart.DrawAll()
			m.joints = state.Joints
			m.lastTick = state.Tick
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m runModel) View() string {
	if m.quitting {
		return "Rig stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("armrig"))
	sb.WriteString(fmt.Sprintf(" - %d Hz, toggle %s, %s reading", m.ctrl.Hz(), m.cfg.Control.Toggle, m.cfg.Control.Reading))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	sb.WriteString(renderJointTable(m.cfg, m.joints))
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9"))

	var logLines string
	if len(m.logs) == 0 {
		k := m.cfg.Keys
		logLines = statusStyle.Render(fmt.Sprintf(
			"Toggle a joint, %s/%s rotate, %s mark, %s return, esc quits",
			k.RotateNegative, k.RotatePositive, k.Mark, k.Return))
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range robot.AllJoints() {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(jointColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+string(name))
	}
	return strings.Join(items, "  ")
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hold, err := cfg.Loop.KeyHoldDuration()
	if err != nil {
		return err
	}
	keys := teleop.NewHeldKeys(hold)

	var mirror teleop.Mirror
	if c.Mirror {
		if !cfg.Mirror.IsCalibrated() {
			return fmt.Errorf("no calibrated mirror arm in %s; run 'armrig setup' first", opts.Config)
		}
		arm, err := robot.NewArm(cfg.Mirror.Port, cfg.Mirror.Calibration)
		if err != nil {
			return fmt.Errorf("connect mirror arm: %w", err)
		}
		mirror = arm
	}

	ctrl, err := teleop.NewController(teleop.Config{
		Rig:    cfg,
		Keys:   keys,
		Mirror: mirror,
		Hz:     c.Hz,
	})
	if err != nil {
		log.Fatalf("Failed to create controller: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		// Close waits for Start to disable torque before closing the bus.
		cancel()
		ctrl.Close()
	}()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	p := tea.NewProgram(newRunModel(ctrl, keys, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}

	return nil
}
