package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case fetchDoneMsg:
		cmd := m.applyFetch(msg)
		return m, cmd

	case submitDoneMsg:
		cmd := m.applySubmit(msg)
		return m, cmd

	case deleteDoneMsg:
		cmd := m.applyDelete(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if _, ok := m.page.(createPage); ok {
		cmd := m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.confirm != nil {
		cmd := m.updateConfirm(msg)
		return m, cmd
	}

	// Plain digits and letters belong to the text inputs on the form, so only
	// function keys navigate from there.
	typing := false
	if _, ok := m.page.(createPage); ok {
		typing = m.form.editingText()
	}
	if !typing || isFunctionKey(msg) {
		switch {
		case key.Matches(msg, m.keys.Home):
			cmd := m.goHome()
			return m, cmd
		case key.Matches(msg, m.keys.Create):
			cmd := m.goCreate()
			return m, cmd
		case key.Matches(msg, m.keys.Gallery):
			cmd := m.goGallery()
			return m, cmd
		}
	}

	switch m.page.(type) {
	case createPage:
		cmd := m.updateForm(msg)
		return m, cmd
	case galleryPage:
		cmd := m.updateGallery(msg)
		return m, cmd
	case detailPage:
		cmd := m.updateDetail(msg)
		return m, cmd
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *appModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Cancel):
		m.form.reset()
		m.status.clear()
		return m.form.setFocus(fieldName)
	case key.Matches(msg, m.keys.Delete):
		m.requestDelete()
		return nil
	case key.Matches(msg, m.keys.Next):
		return m.form.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		return m.form.moveFocus(-1)
	}
	if m.form.focus == fieldColor {
		switch {
		case key.Matches(msg, m.keys.Left):
			m.form.cycleColor(-1)
		case key.Matches(msg, m.keys.Right), msg.String() == " ":
			m.form.cycleColor(1)
		case key.Matches(msg, m.keys.Quit):
			return tea.Quit
		}
		return nil
	}
	return m.form.update(msg)
}

func (m *appModel) updateGallery(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh(false)
	case key.Matches(msg, m.keys.Open):
		if rec, ok := m.galleryCursor(); ok {
			return m.openDetail(rec)
		}
		return nil
	case key.Matches(msg, m.keys.Edit):
		if rec, ok := m.galleryCursor(); ok {
			return m.editRecord(rec)
		}
		return nil
	case msg.Type == tea.KeyEsc:
		return m.goHome()
	}
	var cmd tea.Cmd
	m.gallery, cmd = m.gallery.Update(msg)
	return cmd
}

func (m *appModel) updateDetail(msg tea.KeyMsg) tea.Cmd {
	rec, _ := m.selectedRecord()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Edit):
		return m.editRecord(rec)
	case key.Matches(msg, m.keys.Back):
		return m.back()
	}
	return nil
}

func (m *appModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Yes):
		return m.deleteConfirmed()
	case key.Matches(msg, m.keys.No):
		m.confirm = nil
		return nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "left", "right":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
	case "enter":
		if m.confirm.focus == confirmFocusConfirm {
			return m.deleteConfirmed()
		}
		m.confirm = nil
	}
	return nil
}

func isFunctionKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyF1, tea.KeyF2, tea.KeyF3:
		return true
	}
	return false
}
