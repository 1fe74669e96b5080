package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/armrig/pkg/rig"
	"github.com/gwillem/armrig/pkg/robot"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableJointStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Padding(0, 1)
)

func formatBound(b *float64) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f", *b)
}

// renderJointTable shows each joint's bindings and limits, plus the
// live reading, reference and manual flag when snap is non-nil.
func renderJointTable(cfg *robot.Config, snap []rig.JointSnapshot) string {
	headers := []string{"Joint", "Axis", "Toggle", "Lower", "Upper"}
	if snap != nil {
		headers = append(headers, "Reading", "Reference", "Manual")
	}

	manual := make([]bool, 0, robot.NumJoints)
	rows := make([][]string, 0, robot.NumJoints)
	for i, name := range robot.AllJoints() {
		jc := cfg.Joints[name]
		row := []string{
			string(name),
			jc.Axis.String(),
			string(jc.Toggle),
			formatBound(jc.Lower),
			formatBound(jc.Upper),
		}
		on := false
		if i < len(snap) {
			s := snap[i]
			on = s.Manual
			flag := "off"
			if on {
				flag = "ON"
			}
			row = append(row,
				fmt.Sprintf("%+.3f", s.Reading),
				fmt.Sprintf("%+.3f", s.Reference),
				flag,
			)
		}
		manual = append(manual, on)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableJointStyle
			}
			if row >= 0 && row < len(manual) && manual[row] {
				return tableActiveStyle
			}
			return tableCellStyle
		})

	return t.Render()
}
