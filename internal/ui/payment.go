package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Perdok-cat/Woodcal/internal/calc"
	"github.com/Perdok-cat/Woodcal/internal/model"
	"github.com/Perdok-cat/Woodcal/internal/sheet"
)

func (m *Model) initPriceInputs() {
	m.priceInputs = make([]textinput.Model, 0, len(model.BucketsDescending))
	for _, b := range model.BucketsDescending {
		input := newInput(fmt.Sprintf("%-5s", b.String()) + " ")
		input.Placeholder = "0"
		input.CharLimit = 16
		input.Width = 16
		input.SetValue(sheet.FormatNumber(m.opts.Prices[b]))
		m.priceInputs = append(m.priceInputs, input)
	}
}

// prices reads the current price inputs; unparsable text prices a bucket at zero.
func (m *Model) prices() model.Prices {
	prices := model.Prices{}
	for i, b := range model.BucketsDescending {
		prices[b] = sheet.ParseNumber(m.priceInputs[i].Value())
	}
	return prices
}

func (m *Model) payment() calc.Payment {
	var totals calc.Totals
	if m.ctrl != nil {
		totals = m.ctrl.Totals()
	} else {
		totals = calc.Sum(nil)
	}
	return calc.Pay(totals, m.prices())
}

func (m *Model) updatePayment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "e":
		m.priceMode = true
		m.setPriceIndex(m.priceIndex)
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) setPriceIndex(idx int) {
	if idx < 0 {
		idx = len(m.priceInputs) - 1
	}
	if idx >= len(m.priceInputs) {
		idx = 0
	}
	m.priceIndex = idx
	for i := range m.priceInputs {
		if i == idx && m.priceMode {
			m.priceInputs[i].Focus()
		} else {
			m.priceInputs[i].Blur()
		}
	}
}

func (m *Model) updatePrices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.priceMode = false
		m.setPriceIndex(m.priceIndex)
		return m, nil
	case "tab", "down":
		m.setPriceIndex(m.priceIndex + 1)
		return m, nil
	case "shift+tab", "up":
		m.setPriceIndex(m.priceIndex - 1)
		return m, nil
	}
	var cmd tea.Cmd
	m.priceInputs[m.priceIndex], cmd = m.priceInputs[m.priceIndex].Update(msg)
	return m, cmd
}

func (m *Model) renderPayment() string {
	if m.ctrl == nil {
		return mutedStyle.Render("No file open. Pick one on the Files tab.")
	}
	p := m.payment()
	lines := make([]string, 0, len(p.Lines)+2)
	for i, line := range p.Lines {
		amount := fmt.Sprintf("%6d x %-10s = %s",
			line.Total,
			strconv.FormatFloat(line.Price, 'f', -1, 64),
			formatAmount(line.Amount))
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			padLine(m.priceInputs[i].View(), 24),
			mutedStyle.Render(amount)))
	}
	lines = append(lines, "", totalStyle.Render("Grand total: "+formatAmount(p.Grand)))
	return strings.Join(lines, "\n")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
