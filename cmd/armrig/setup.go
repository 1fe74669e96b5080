package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/armrig/pkg/robot"
)

var subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

type SetupCommand struct {
	NoScan bool `long:"no-scan" description:"Skip scanning serial ports for a mirror arm"`
}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("armrig setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := robot.LoadConfigFrom(opts.Config)
	if errors.Is(err, os.ErrNotExist) {
		cfg = robot.DefaultConfig()
	} else if err != nil {
		return err
	}

	if !c.NoScan {
		port := pickMirrorPort()
		if port != "" {
			fmt.Println()
			fmt.Println(subHeaderStyle.Render("━━━ Calibrating Mirror Arm ━━━"))
			fmt.Println()
			cal, err := calibrateArm(port)
			if err != nil {
				return fmt.Errorf("calibrate %s: %w", port, err)
			}
			cfg.Mirror = &robot.MirrorConfig{Port: port, Calibration: cal}
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(renderJointTable(cfg, nil))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start the rig with: " + headerStyle.Render("armrig run"))

	return nil
}

// pickMirrorPort scans for SO-101 arms and asks which one mirrors the rig.
// It returns "" when none is found or the user declines.
func pickMirrorPort() string {
	fmt.Println("Scanning for SO-101 arms...")
	ports := findArms()
	if len(ports) == 0 {
		fmt.Println(dimStyle.Render("No SO-101 arm found, the rig will run without a mirror."))
		return ""
	}

	options := make([]huh.Option[string], 0, len(ports)+1)
	for _, port := range ports {
		options = append(options, huh.NewOption(port, port))
	}
	options = append(options, huh.NewOption("No mirror arm", ""))

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which arm should mirror the rig?").
				Description("Its servos will follow the rig's joint angles").
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		return ""
	}
	return port
}

func openBus(port string) (*feetech.Bus, error) {
	return feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
}

// findArms returns the serial ports with servos 1-5 answering.
func findArms() []string {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Printf("Error listing ports: %v\n", err)
		return nil
	}

	var found []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, err := openBus(port)
		if err != nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		servos, err := bus.Scan(ctx, 1, robot.NumJoints+1)
		cancel()
		bus.Close()

		if err == nil && hasJointServos(servos) {
			fmt.Printf("  Found SO-101 arm on %s\n", port)
			found = append(found, port)
		}
	}
	return found
}

func hasJointServos(servos []feetech.FoundServo) bool {
	ids := make(map[int]bool, len(servos))
	for _, s := range servos {
		ids[s.ID] = true
	}
	for _, name := range robot.AllJoints() {
		if !ids[robot.ServoID(name)] {
			return false
		}
	}
	return true
}

// calibrateArm records the range of each joint servo while the user
// moves the arm by hand.
func calibrateArm(port string) (robot.Calibration, error) {
	bus, err := openBus(port)
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	ctx := context.Background()
	servos, err := bus.Scan(ctx, 1, robot.NumJoints+1)
	if err != nil {
		return nil, err
	}
	if !hasJointServos(servos) {
		return nil, fmt.Errorf("not an SO-101 arm (expected servos with IDs 1-%d)", robot.NumJoints)
	}

	servoMap := make(map[robot.JointName]*feetech.Servo, robot.NumJoints)
	for _, s := range servos {
		for _, name := range robot.AllJoints() {
			if robot.ServoID(name) == s.ID {
				servoMap[name] = feetech.NewServo(bus, s.ID, s.Model)
			}
		}
	}

	// Torque off so the arm can be moved freely
	for _, servo := range servoMap {
		servo.Disable(ctx)
	}

	fmt.Println("Move each joint to its minimum AND maximum positions.")
	fmt.Println()

	m := newCalibrationModel(servoMap)
	for name, servo := range servoMap {
		pos, err := servo.Position(ctx)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		m.observe(name, pos)
	}

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	cm := final.(calibrationModel)
	if cm.aborted {
		return nil, fmt.Errorf("calibration aborted")
	}

	cal := make(robot.Calibration, robot.NumJoints)
	for _, name := range robot.AllJoints() {
		cal[name] = robot.ServoCalibration{
			ID:       robot.ServoID(name),
			RangeMin: cm.minPositions[name],
			RangeMax: cm.maxPositions[name],
		}
	}
	return cal, nil
}

type calibrationModel struct {
	servos       map[robot.JointName]*feetech.Servo
	curPositions map[robot.JointName]int
	minPositions map[robot.JointName]int
	maxPositions map[robot.JointName]int
	done         bool
	aborted      bool
}

type tickMsg time.Time

func newCalibrationModel(servos map[robot.JointName]*feetech.Servo) calibrationModel {
	return calibrationModel{
		servos:       servos,
		curPositions: make(map[robot.JointName]int),
		minPositions: make(map[robot.JointName]int),
		maxPositions: make(map[robot.JointName]int),
	}
}

func (m calibrationModel) observe(name robot.JointName, pos int) {
	m.curPositions[name] = pos
	if lo, ok := m.minPositions[name]; !ok || pos < lo {
		m.minPositions[name] = pos
	}
	if hi, ok := m.maxPositions[name]; !ok || pos > hi {
		m.maxPositions[name] = pos
	}
}

func calibrationTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m calibrationModel) Init() tea.Cmd {
	return calibrationTick()
}

func (m calibrationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit
		}

	case tickMsg:
		ctx := context.Background()
		for name, servo := range m.servos {
			pos, err := servo.Position(ctx)
			if err != nil {
				continue
			}
			m.observe(name, pos)
		}
		return m, calibrationTick()
	}

	return m, nil
}

func (m calibrationModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	rangeGoodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	rangeLowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	joints := robot.AllJoints()
	rows := make([][]string, 0, len(joints))
	ranges := make([]int, 0, len(joints))
	for _, name := range joints {
		span := m.maxPositions[name] - m.minPositions[name]
		ranges = append(ranges, span)
		rows = append(rows, []string{
			string(name),
			fmt.Sprintf("%d", m.curPositions[name]),
			fmt.Sprintf("%d", m.minPositions[name]),
			fmt.Sprintf("%d", m.maxPositions[name]),
			fmt.Sprintf("%d", span),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Joint", "Current", "Min", "Max", "Range").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			switch col {
			case 0:
				return tableJointStyle
			case 1:
				return tableActiveStyle
			case 4:
				if row >= 0 && row < len(ranges) && ranges[row] > 500 {
					return rangeGoodStyle
				}
				return rangeLowStyle
			default:
				return tableCellStyle
			}
		})

	return t.Render() + "\n\n" + dimStyle.Render("Press Enter when done, Esc to abort")
}
