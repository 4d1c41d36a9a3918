package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Perdok-cat/Woodcal/internal/sheet"
)

const fileDateLayout = "02/01/2006 15:04"

const (
	formName = iota
	formNote
)

func (m *Model) initFileTable() {
	m.fileTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 24},
			{Title: "Note", Width: 32},
			{Title: "Updated", Width: 16},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m.fileTable.SetStyles(tableStyles())
}

func (m *Model) initFormInputs() {
	m.formInputs = []textinput.Model{
		newInput("Name: "),
		newInput("Note: "),
	}
	m.formInputs[formName].Placeholder = "required"
	m.formInputs[formNote].Placeholder = "optional"
}

func (m *Model) refreshFiles() {
	files, err := m.store.ListFiles(context.Background())
	if err != nil {
		m.log.Error("list files failed", zap.Error(err))
		m.setError(err)
		return
	}
	m.files = files
	rows := make([]table.Row, 0, len(files))
	for _, f := range files {
		rows = append(rows, table.Row{f.Name, f.Note, f.UpdatedAt.Local().Format(fileDateLayout)})
	}
	m.fileTable.SetRows(rows)
	if cursor := m.fileTable.Cursor(); cursor >= len(rows) {
		m.fileTable.SetCursor(maxInt(0, len(rows)-1))
	}
}

func (m *Model) selectedFileID() string {
	idx := m.fileTable.Cursor()
	if idx < 0 || idx >= len(m.files) {
		return ""
	}
	return m.files[idx].ID
}

func (m *Model) selectFile(id string) {
	for i, f := range m.files {
		if f.ID == id {
			m.fileTable.SetCursor(i)
			return
		}
	}
}

func (m *Model) openFile(id string) {
	ctx := context.Background()
	file, err := m.store.GetFile(ctx, id)
	if err != nil {
		m.log.Error("open file failed", zap.String("file", id), zap.Error(err))
		m.setError(err)
		return
	}
	ctrl := sheet.NewController(m.store, file.ID, m.log)
	if err := ctrl.Load(ctx); err != nil {
		m.setError(err)
		return
	}
	m.file = &file
	m.ctrl = ctrl
	m.setError(nil)
	m.refreshSheet()
	m.sheetTable.SetCursor(0)
	m.setTab(tabSheet)
}

func (m *Model) closeFile() {
	m.file = nil
	m.ctrl = nil
	m.sheetIDs = nil
	m.sheetTable.SetRows(nil)
}

func (m *Model) updateFiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if id := m.selectedFileID(); id != "" {
			m.openFile(id)
		}
		return m, nil
	case "n":
		m.openForm()
		return m, textinput.Blink
	case "d":
		m.pendingDelete = m.selectedFileID()
		return m, nil
	}
	var cmd tea.Cmd
	m.fileTable, cmd = m.fileTable.Update(msg)
	return m, cmd
}

func (m *Model) openForm() {
	m.formMode = true
	m.formError = ""
	for i := range m.formInputs {
		m.formInputs[i].SetValue("")
	}
	m.setFormIndex(formName)
}

func (m *Model) setFormIndex(idx int) {
	if idx < 0 {
		idx = len(m.formInputs) - 1
	}
	if idx >= len(m.formInputs) {
		idx = 0
	}
	m.formIndex = idx
	for i := range m.formInputs {
		if i == idx {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formMode = false
		m.formError = ""
		return m, nil
	case "tab", "down":
		m.setFormIndex(m.formIndex + 1)
		return m, nil
	case "shift+tab", "up":
		m.setFormIndex(m.formIndex - 1)
		return m, nil
	case "enter":
		m.submitForm()
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formIndex], cmd = m.formInputs[m.formIndex].Update(msg)
	return m, cmd
}

func (m *Model) submitForm() {
	name := strings.TrimSpace(m.formInputs[formName].Value())
	if name == "" {
		m.formError = "Name is required"
		m.setFormIndex(formName)
		return
	}
	file, err := m.store.CreateFile(context.Background(), name, m.formInputs[formNote].Value())
	if err != nil {
		m.log.Error("create file failed", zap.Error(err))
		m.formError = err.Error()
		return
	}
	m.log.Info("file created", zap.String("file", file.ID), zap.String("name", file.Name))
	m.formMode = false
	m.formError = ""
	m.refreshFiles()
	m.selectFile(file.ID)
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pendingDelete
		m.pendingDelete = ""
		if err := m.store.DeleteFile(context.Background(), id); err != nil {
			m.log.Error("delete file failed", zap.String("file", id), zap.Error(err))
			m.setError(err)
			return m, nil
		}
		m.log.Info("file deleted", zap.String("file", id))
		if m.file != nil && m.file.ID == id {
			m.closeFile()
		}
		m.setError(nil)
		m.refreshFiles()
	case "n", "N", "esc":
		m.pendingDelete = ""
	}
	return m, nil
}

func (m *Model) renderFiles() string {
	if m.formMode {
		return m.renderForm()
	}
	if len(m.files) == 0 {
		return mutedStyle.Render("No files yet. Press n to create one.")
	}
	view := m.fileTable.View()
	if m.pendingDelete != "" {
		name := m.pendingDelete
		for _, f := range m.files {
			if f.ID == m.pendingDelete {
				name = f.Name
				break
			}
		}
		view += "\n" + errorStyle.Render(truncateLine("Delete \""+name+"\"? (y/n)", m.width))
	}
	return view
}

func (m *Model) renderForm() string {
	lines := []string{cardValueStyle.Render("New file"), ""}
	for _, input := range m.formInputs {
		lines = append(lines, input.View())
	}
	if m.formError != "" {
		lines = append(lines, "", errorStyle.Render(m.formError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, lipgloss.Height(box), lipgloss.Center, lipgloss.Top, box)
}
