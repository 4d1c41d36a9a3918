// Package ui provides the Bubble Tea interface: file list, calculation sheet and payment.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Perdok-cat/Woodcal/internal/model"
	"github.com/Perdok-cat/Woodcal/internal/sheet"
)

const (
	tabFiles = iota
	tabSheet
	tabPayment
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	totalStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Store is the persistence the UI needs.
type Store interface {
	sheet.RecordStore
	CreateFile(ctx context.Context, name, note string) (model.File, error)
	GetFile(ctx context.Context, id string) (model.File, error)
	ListFiles(ctx context.Context) ([]model.File, error)
	DeleteFile(ctx context.Context, id string) error
}

// Options configures the UI.
type Options struct {
	Sheet  model.SheetConfig
	Prices model.Prices
	Logger *zap.Logger
	// FileID opens a sheet directly when set.
	FileID string
}

// Model implements the Bubble Tea application.
type Model struct {
	store Store
	opts  Options
	log   *zap.Logger

	tabs      []string
	activeTab int
	width     int
	height    int
	errMsg    string

	files         []model.File
	fileTable     table.Model
	formMode      bool
	formInputs    []textinput.Model
	formIndex     int
	formError     string
	pendingDelete string

	file       *model.File
	ctrl       *sheet.Controller
	sheetTable table.Model
	sheetIDs   []int64
	editField  editField
	editID     int64
	editInput  textinput.Model
	noteMode   bool
	noteIndex  int

	priceMode   bool
	priceInputs []textinput.Model
	priceIndex  int
}

// NewModel constructs the UI model and loads the file list.
func NewModel(st Store, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		store: st,
		opts:  opts,
		log:   logger,
		tabs:  []string{"Files", "Sheet", "Payment"},
	}
	m.initFileTable()
	m.initSheetTable()
	m.initFormInputs()
	m.initEditInput()
	m.initPriceInputs()
	m.refreshFiles()
	if opts.FileID != "" {
		m.openFile(opts.FileID)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case commitMsg:
		m.handleCommit(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.formMode:
			return m.updateForm(msg)
		case m.pendingDelete != "":
			return m.updateConfirmDelete(msg)
		case m.editField != editNone:
			return m.updateEdit(msg)
		case m.noteMode:
			return m.updateNotePicker(msg)
		case m.priceMode:
			return m.updatePrices(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right":
			m.moveTab(1)
			return m, tea.ClearScreen
		}
		switch m.activeTab {
		case tabFiles:
			return m.updateFiles(msg)
		case tabSheet:
			return m.updateSheet(msg)
		case tabPayment:
			return m.updatePayment(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.noteMode {
		return fitLines(m.renderNoteModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.fileTable.SetWidth(m.width)
	m.fileTable.SetHeight(maxInt(1, bodyHeight-1))
	m.sheetTable.SetWidth(m.width)
	// Leave room for the totals line.
	m.sheetTable.SetHeight(maxInt(1, bodyHeight-2))
	for i := range m.formInputs {
		m.formInputs[i].Width = maxInt(10, modalInnerWidth(m.width)-lipgloss.Width(m.formInputs[i].Prompt))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.setTab(next)
}

func (m *Model) setTab(tab int) {
	m.activeTab = tab
	if tab == tabFiles {
		m.fileTable.Focus()
	} else {
		m.fileTable.Blur()
	}
	if tab == tabSheet {
		m.sheetTable.Focus()
	} else {
		m.sheetTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	title := "No file open"
	if m.file != nil {
		title = "File: " + m.file.Name
		if m.file.Note != "" {
			title += "  ·  " + m.file.Note
		}
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(title, m.width))
}

func (m *Model) renderBody(height int) string {
	switch m.activeTab {
	case tabFiles:
		return fitLines(m.renderFiles(), m.width, height)
	case tabSheet:
		return fitLines(m.renderSheet(), m.width, height)
	case tabPayment:
		return fitLines(m.renderPayment(), m.width, height)
	}
	return ""
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render(truncateLine(m.helpText(), m.width))
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return help
}

func (m *Model) helpText() string {
	switch {
	case m.formMode:
		return "tab/shift+tab: next field  enter: create  esc: cancel"
	case m.pendingDelete != "":
		return "Delete file and all its rows? y: yes  n/esc: no"
	case m.editField != editNone:
		return "enter: save  esc: cancel"
	case m.priceMode:
		return "tab/shift+tab: next price  enter: apply  esc: cancel"
	}
	switch m.activeTab {
	case tabFiles:
		return "Nav: left/right  Open: enter  New: n  Delete: d  Quit: q"
	case tabSheet:
		return "Nav: left/right/up/down  Round: r  Length: enter  Note: n  Add row: a  Quit: q"
	default:
		return "Nav: left/right  Edit prices: enter  Quit: q"
	}
}

func (m *Model) setError(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = err.Error()
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
