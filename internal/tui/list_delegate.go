package tui

import (
	"fmt"
	"io"
	"strings"

	"crewmates/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// crewmateDelegate renders one gallery row: swatch, name, speed, color.
type crewmateDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCrewmateDelegate() crewmateDelegate {
	return crewmateDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d crewmateDelegate) Height() int                             { return 1 }
func (d crewmateDelegate) Spacing() int                            { return 0 }
func (d crewmateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d crewmateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	it, ok := item.(crewmateItem)
	if !ok || contentW < 4 {
		return
	}

	style := d.normal
	cursor := "  "
	if index == m.Index() {
		style = d.selected
		cursor = "> "
	}

	name := it.rec.Name
	meta := fmt.Sprintf("%s mph  %s", model.FormatSpeed(it.rec.Speed), it.rec.Color)
	nameW := contentW - xansi.StringWidth(cursor) - 2 - xansi.StringWidth(meta) - 2
	if nameW < 4 {
		nameW = 4
	}
	if xansi.StringWidth(name) > nameW {
		name = xansi.Truncate(name, nameW, "…")
	}
	name += strings.Repeat(" ", nameW-xansi.StringWidth(name))

	line := cursor + colorSwatch(it.rec.Color) + " " + style.Render(name) + "  " + styleMuted().Render(meta)
	if xansi.StringWidth(line) > contentW {
		line = xansi.Truncate(line, contentW, "")
	}
	fmt.Fprint(w, line)
}
