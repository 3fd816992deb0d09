// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Armor Network Authors

package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Armor-Network/armor/internal/hardware"
	"github.com/Armor-Network/armor/internal/testutil"
)

func press(m confirmModel, keys ...tea.KeyMsg) confirmModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(confirmModel)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestConfirmModelKeys(t *testing.T) {
	c := hardware.Confirmation{Amount: 900, Fee: 50}
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	tab := tea.KeyMsg{Type: tea.KeyTab}
	left := tea.KeyMsg{Type: tea.KeyLeft}
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	tests := []struct {
		name     string
		keys     []tea.KeyMsg
		approved bool
		done     bool
	}{
		{"enter defaults to reject", []tea.KeyMsg{enter}, false, true},
		{"y approves", []tea.KeyMsg{runeKey('y')}, true, true},
		{"n rejects", []tea.KeyMsg{runeKey('n')}, false, true},
		{"esc rejects", []tea.KeyMsg{esc}, false, true},
		{"tab then enter approves", []tea.KeyMsg{tab, enter}, true, true},
		{"left then enter approves", []tea.KeyMsg{left, enter}, true, true},
		{"other keys wait", []tea.KeyMsg{runeKey('x')}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newConfirmModel(c), tt.keys...)
			if m.approved != tt.approved || m.done != tt.done {
				t.Errorf("approved=%v done=%v, want approved=%v done=%v", m.approved, m.done, tt.approved, tt.done)
			}
		})
	}
}

func TestConfirmModelView(t *testing.T) {
	dst := testutil.ForeignDestination(t)
	m := newConfirmModel(hardware.Confirmation{
		Destination:    dst,
		HasDestination: true,
		Amount:         900,
		Change:         30,
		Fee:            70,
	})
	view := m.View()
	for _, want := range []string{"Confirm Transaction", "900", dst.String(), "70", "REJECT"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q", want)
		}
	}

	self := newConfirmModel(hardware.Confirmation{Change: 950, Fee: 50}).View()
	if !strings.Contains(self, "back to this wallet") {
		t.Error("view does not flag a transaction without destination")
	}

	if v := press(m, runeKey('y')).View(); v != "" {
		t.Errorf("finished model still renders %q", v)
	}
}
