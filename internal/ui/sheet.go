package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Perdok-cat/Woodcal/internal/model"
	"github.com/Perdok-cat/Woodcal/internal/sheet"
)

type editField int

const (
	editNone editField = iota
	editRound
	editLength
)

// commitMsg arrives once the settle delay after a length edit has elapsed.
type commitMsg struct {
	fileID string
	id     int64
	round  int
	length float64
}

const emptyNoteLabel = "(empty)"

var errNoRow = errors.New("no row selected")

func (m *Model) initSheetTable() {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Round", Width: 7},
		{Title: "Length", Width: 8},
	}
	for _, b := range model.BucketsDescending {
		columns = append(columns, table.Column{Title: b.String(), Width: 6})
	}
	columns = append(columns, table.Column{Title: "Note", Width: 14})
	m.sheetTable = table.New(
		table.WithColumns(columns),
		table.WithHeight(10),
	)
	m.sheetTable.SetStyles(tableStyles())
}

func (m *Model) initEditInput() {
	m.editInput = newInput("")
	m.editInput.CharLimit = 12
	m.editInput.Width = 12
}

func (m *Model) refreshSheet() {
	if m.ctrl == nil {
		m.sheetIDs = nil
		m.sheetTable.SetRows(nil)
		return
	}
	records := m.ctrl.Records()
	rows := make([]table.Row, 0, len(records))
	ids := make([]int64, 0, len(records))
	for i, rec := range records {
		row := table.Row{
			strconv.Itoa(i + 1),
			formatInt(rec.Round),
			sheet.FormatNumber(rec.Length),
		}
		for _, b := range model.BucketsDescending {
			row = append(row, strconv.Itoa(rec.Value(b)))
		}
		rows = append(rows, append(row, rec.Note))
		ids = append(ids, rec.ID)
	}
	m.sheetIDs = ids
	m.sheetTable.SetRows(rows)
	if cursor := m.sheetTable.Cursor(); cursor >= len(rows) {
		m.sheetTable.SetCursor(maxInt(0, len(rows)-1))
	}
}

func (m *Model) selectedRecord() (model.CalculationRecord, bool) {
	if m.ctrl == nil {
		return model.CalculationRecord{}, false
	}
	idx := m.sheetTable.Cursor()
	if idx < 0 || idx >= len(m.sheetIDs) {
		return model.CalculationRecord{}, false
	}
	return m.ctrl.Record(m.sheetIDs[idx])
}

func (m *Model) updateSheet(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl == nil {
		if msg.String() == "enter" {
			m.setTab(tabFiles)
		}
		return m, nil
	}
	switch msg.String() {
	case "r":
		return m, m.startEdit(editRound)
	case "enter", "l":
		return m, m.startEdit(editLength)
	case "n":
		m.openNotePicker()
		return m, nil
	case "a":
		if _, ok := m.ctrl.AddRow(context.Background()); ok {
			m.refreshSheet()
			m.sheetTable.GotoBottom()
		}
		m.setError(m.ctrl.LastError())
		return m, nil
	case "p":
		m.setTab(tabPayment)
		return m, nil
	}
	var cmd tea.Cmd
	m.sheetTable, cmd = m.sheetTable.Update(msg)
	return m, cmd
}

func (m *Model) startEdit(field editField) tea.Cmd {
	rec, ok := m.selectedRecord()
	if !ok {
		m.setError(errNoRow)
		return nil
	}
	m.editField = field
	m.editID = rec.ID
	switch field {
	case editRound:
		m.editInput.Prompt = "Round: "
		m.editInput.SetValue(formatInt(rec.Round))
	case editLength:
		m.editInput.Prompt = "Length: "
		m.editInput.SetValue(sheet.FormatNumber(rec.Length))
	}
	m.editInput.CursorEnd()
	m.editInput.Focus()
	return textinput.Blink
}

func (m *Model) stopEdit() {
	m.editField = editNone
	m.editInput.Blur()
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.stopEdit()
		return m, nil
	case "enter":
		return m, m.submitEdit()
	}
	var cmd tea.Cmd
	m.editInput, cmd = m.editInput.Update(msg)
	return m, cmd
}

// submitEdit saves the field being edited. A saved round moves on to the
// length of the same row; a saved length schedules the calculation.
func (m *Model) submitEdit() tea.Cmd {
	ctx := context.Background()
	id := m.editID
	field := m.editField
	text := m.editInput.Value()
	m.stopEdit()

	switch field {
	case editRound:
		ok := m.ctrl.OnUpdateRecord(ctx, id, model.RecordPatch{Round: model.Int(sheet.ParseRound(text))})
		m.setError(m.ctrl.LastError())
		m.refreshSheet()
		if !ok {
			return nil
		}
		return m.startEdit(editLength)
	case editLength:
		ok := m.ctrl.OnUpdateRecord(ctx, id, model.RecordPatch{Length: model.Float(sheet.ParseNumber(text))})
		m.setError(m.ctrl.LastError())
		m.refreshSheet()
		if !ok {
			return nil
		}
		rec, found := m.ctrl.Record(id)
		if !found {
			return nil
		}
		return commitAfter(m.opts.Sheet.SettleDelay, commitMsg{
			fileID: m.ctrl.FileID(),
			id:     rec.ID,
			round:  rec.Round,
			length: rec.Length,
		})
	}
	return nil
}

func commitAfter(delay time.Duration, msg commitMsg) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

func (m *Model) handleCommit(msg commitMsg) {
	if m.ctrl == nil || m.ctrl.FileID() != msg.fileID {
		m.log.Debug("dropping commit for closed sheet", zap.String("file", msg.fileID))
		return
	}
	before := len(m.ctrl.Records())
	if !m.ctrl.OnLengthCommitted(context.Background(), msg.id, msg.round, msg.length) {
		return
	}
	m.setError(m.ctrl.LastError())
	m.refreshSheet()
	if len(m.ctrl.Records()) > before {
		m.sheetTable.GotoBottom()
	}
}

func (m *Model) noteOptions() []string {
	return append([]string{""}, m.opts.Sheet.Notes...)
}

func (m *Model) openNotePicker() {
	rec, ok := m.selectedRecord()
	if !ok {
		m.setError(errNoRow)
		return
	}
	m.noteMode = true
	m.editID = rec.ID
	m.noteIndex = 0
	for i, opt := range m.noteOptions() {
		if opt == rec.Note {
			m.noteIndex = i
			break
		}
	}
}

func (m *Model) updateNotePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.noteOptions()
	switch msg.String() {
	case "esc", "q":
		m.noteMode = false
	case "up", "k":
		if m.noteIndex > 0 {
			m.noteIndex--
		}
	case "down", "j":
		if m.noteIndex < len(options)-1 {
			m.noteIndex++
		}
	case "enter":
		m.noteMode = false
		m.ctrl.ApplyNote(context.Background(), m.editID, options[m.noteIndex])
		m.setError(m.ctrl.LastError())
		m.refreshSheet()
	}
	return m, nil
}

func (m *Model) renderNoteModal() string {
	lines := []string{cardValueStyle.Render("Note"), ""}
	for i, opt := range m.noteOptions() {
		label := opt
		if label == "" {
			label = emptyNoteLabel
		}
		if i == m.noteIndex {
			lines = append(lines, selectedStyle.Render("> "+label))
		} else {
			lines = append(lines, mutedStyle.Render("  "+label))
		}
	}
	lines = append(lines, "", headerStyle.Render("enter: apply  esc: cancel"))
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderSheet() string {
	if m.ctrl == nil {
		return mutedStyle.Render("No file open. Pick one on the Files tab.")
	}
	lines := []string{m.sheetTable.View(), m.renderTotals()}
	if m.editField != editNone {
		lines = append(lines, m.editInput.View())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTotals() string {
	totals := m.ctrl.Totals()
	parts := []string{"Total"}
	for _, b := range model.BucketsDescending {
		parts = append(parts, b.String()+" "+strconv.Itoa(totals[b]))
	}
	return totalStyle.Render(truncateLine(strings.Join(parts, "  "), m.width))
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
