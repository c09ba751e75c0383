package tui

import (
	"fmt"
	"strings"

	"crewmates/internal/docs"
	"crewmates/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var navEntries = []struct {
	key   string
	label string
	page  page
}{
	{key: "1", label: "Home", page: homePage{}},
	{key: "2", label: "Create a Crewmate!", page: createPage{}},
	{key: "3", label: "Crewmate Gallery", page: galleryPage{}},
}

func (m appModel) View() string {
	bodyW, bodyH := m.bodySize()

	var body string
	switch p := m.page.(type) {
	case homePage:
		body = renderMarkdown(docs.MustGet("home"), bodyW)
	case createPage:
		body = m.viewForm()
	case galleryPage:
		body = m.viewGallery()
	case detailPage:
		body = m.viewDetail(p.record)
	}
	if m.confirm != nil {
		body = m.viewConfirm()
	}
	body = lipgloss.NewStyle().PaddingLeft(2).Render(normalizePane(body, bodyW, bodyH))

	return strings.Join([]string{
		m.viewNav(),
		"",
		body,
		m.viewStatus(),
		m.help.ShortHelpView(m.shortHelp()),
	}, "\n")
}

func (m appModel) viewNav() string {
	active := m.page.pageName()
	if active == "detail" {
		active = "gallery"
	}
	parts := make([]string, 0, len(navEntries)+1)
	for _, e := range navEntries {
		label := fmt.Sprintf("%s %s", e.key, e.label)
		if e.page.pageName() == active {
			parts = append(parts, styleNavActive().Render(label))
		} else {
			parts = append(parts, styleNavItem().Render(label))
		}
	}
	if rec, ok := m.selectedRecord(); ok {
		parts = append(parts, styleMuted().Render("› "+rec.Name))
	}
	return normalizePane(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width, 1)
}

func (m appModel) viewStatus() string {
	prefix := ""
	if m.pending > 0 {
		prefix = m.spinner.View() + " "
	}
	if m.status.empty() {
		return normalizePane(prefix, m.width, 1)
	}
	return normalizePane(prefix+styleStatus(m.status.kind).Render(m.status.text), m.width, 1)
}

func (m appModel) viewForm() string {
	title := "Create a New Crewmate"
	button := "Create Crewmate"
	if target, ok := m.form.editTarget(); ok {
		title = "Update Crewmate: " + target.Name
		button = "Update Crewmate"
	}

	inputW := modalBodyWidth(m.width)
	m.form.name.Width = inputW
	m.form.speed.Width = inputW

	label := func(text string, f formField) string {
		if m.form.focus == f {
			return styleAccent().Bold(true).Render("› " + text)
		}
		return styleMuted().Render("  " + text)
	}

	lines := []string{
		styleHeading().Render(title),
		"",
		label("Name", fieldName),
		"  " + styleInput(m.form.focus == fieldName).Render(m.form.name.View()),
		"",
		label("Speed (mph)", fieldSpeed),
		"  " + styleInput(m.form.focus == fieldSpeed).Render(m.form.speed.View()),
		"",
		label("Color", fieldColor),
		"  " + m.viewColorPicker(),
		"",
	}

	actions := styleNavActive().Render(button) + "  " + styleNavItem().Render("Cancel")
	if _, ok := m.form.editTarget(); ok {
		actions += "  " + styleStatus(statusError).Render("ctrl+d Delete")
	}
	lines = append(lines, "  "+actions)
	return strings.Join(lines, "\n")
}

func (m appModel) viewColorPicker() string {
	parts := make([]string, 0, len(model.Palette))
	for i, c := range model.Palette {
		name := renderColorName(c)
		if i == m.form.color {
			parts = append(parts, "["+name+"]")
		} else {
			parts = append(parts, " "+styleMuted().Render(string(c))+" ")
		}
	}
	out := strings.Join(parts, "")
	if m.form.color < 0 {
		out = styleMuted().Render("(none) ") + out
	}
	return out
}

func (m appModel) viewGallery() string {
	if !m.cache.loaded && m.pending > 0 {
		return styleMuted().Render("Loading crewmates…")
	}
	if len(m.cache.records) == 0 {
		return styleMuted().Render("No crewmates yet. Press 2 to create one.")
	}
	head := styleHeading().Render(fmt.Sprintf("Your Crewmates (%d)", len(m.cache.records))) +
		styleMuted().Render(" · updated "+m.cache.fetchedAt.Local().Format("15:04"))
	return head + "\n\n" + m.gallery.View()
}
