package tui

import (
	"crewmates/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *appModel) goHome() tea.Cmd {
	m.page = homePage{}
	return nil
}

// goCreate is the nav-bar entry into the form; it always starts a fresh create.
func (m *appModel) goCreate() tea.Cmd {
	m.page = createPage{}
	m.form.reset()
	return m.form.setFocus(fieldName)
}

// goGallery re-fetches on every entry.
func (m *appModel) goGallery() tea.Cmd {
	m.page = galleryPage{}
	m.galleryLive = true
	return m.refresh(false)
}

func (m *appModel) openDetail(rec model.Crewmate) tea.Cmd {
	if _, ok := m.page.(galleryPage); !ok {
		return nil
	}
	m.page = detailPage{record: rec}
	return nil
}

// editRecord loads rec into the form without resetting it first.
func (m *appModel) editRecord(rec model.Crewmate) tea.Cmd {
	switch m.page.(type) {
	case galleryPage, detailPage:
	default:
		return nil
	}
	m.form.load(rec)
	m.page = createPage{}
	return m.form.setFocus(fieldName)
}

func (m *appModel) back() tea.Cmd {
	if _, ok := m.page.(detailPage); ok {
		return m.goGallery()
	}
	return nil
}

func (m appModel) selectedRecord() (model.Crewmate, bool) {
	if d, ok := m.page.(detailPage); ok {
		return d.record, true
	}
	return model.Crewmate{}, false
}

func (m appModel) galleryCursor() (model.Crewmate, bool) {
	if it, ok := m.gallery.SelectedItem().(crewmateItem); ok {
		return it.rec, true
	}
	return model.Crewmate{}, false
}
