// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

// Transaction confirmation screen shown by a local emulator before it
// accepts the extra field.

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Armor-Network/armor/internal/hardware"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	amountStyle = lipgloss.NewStyle().
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder())

	buttonActiveStyle = buttonStyle.
				BorderForeground(lipgloss.Color("42")).
				Foreground(lipgloss.Color("42"))

	buttonInactiveStyle = buttonStyle.
				BorderForeground(lipgloss.Color("241")).
				Foreground(lipgloss.Color("241"))

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

// confirmModel asks the user to approve one transaction
type confirmModel struct {
	c        hardware.Confirmation
	focus    int // 0 approve, 1 reject
	approved bool
	done     bool
}

func newConfirmModel(c hardware.Confirmation) confirmModel {
	// Default to reject so a stray Enter does not sign
	return confirmModel{c: c, focus: 1}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "left":
		m.focus = 0
	case "right":
		m.focus = 1
	case "tab":
		m.focus = (m.focus + 1) % 2
	case "enter", " ":
		m.approved = m.focus == 0
		m.done = true
		return m, tea.Quit
	case "y", "a":
		m.approved = true
		m.done = true
		return m, tea.Quit
	case "n", "r", "esc", "ctrl+c", "q":
		m.approved = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Confirm Transaction"))
	sb.WriteString("\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	if m.c.HasDestination {
		row("Send", amountStyle.Render(fmt.Sprintf("%d", m.c.Amount)))
		row("To", m.c.Destination.String())
	} else {
		sb.WriteString(warningStyle.Render("All outputs go back to this wallet"))
		sb.WriteString("\n")
	}
	row("Change", fmt.Sprintf("%d", m.c.Change))
	row("Fee", amountStyle.Render(fmt.Sprintf("%d", m.c.Fee)))
	sb.WriteString("\n")

	var approveBtn, rejectBtn string
	if m.focus == 0 {
		approveBtn = buttonActiveStyle.Render("> APPROVE")
		rejectBtn = buttonInactiveStyle.Render("  REJECT")
	} else {
		approveBtn = buttonInactiveStyle.Render("  APPROVE")
		rejectBtn = buttonActiveStyle.Render("> REJECT")
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, approveBtn, "  ", rejectBtn))
	sb.WriteString("\n\n")
	sb.WriteString(helpStyle.Render("y/a: Approve | n/r: Reject | Tab/←→: Switch | Enter: Confirm"))

	return popupStyle.Render(sb.String()) + "\n"
}

// terminalConfirmer shows confirmModel on the terminal for every
// transaction
type terminalConfirmer struct{}

func (terminalConfirmer) Confirm(c hardware.Confirmation) (bool, error) {
	p := tea.NewProgram(newConfirmModel(c), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(confirmModel).approved, nil
}
