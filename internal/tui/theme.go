package tui

import (
	"os"
	"strconv"
	"strings"

	"crewmates/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so chrome colors are lipgloss.AdaptiveColor and "faint" is only applied on
// dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "235")
	colorInputBg    lipgloss.TerminalColor = ac("254", "234")
	colorAccent     lipgloss.TerminalColor = ac("27", "62")
	colorSuccess    lipgloss.TerminalColor = ac("28", "78")
	colorError      lipgloss.TerminalColor = ac("160", "203")
)

// crewColors maps each palette entry to a swatch. Rainbow is drawn per rune.
var crewColors = map[model.Color]lipgloss.TerminalColor{
	model.ColorRed:    ac("160", "203"),
	model.ColorGreen:  ac("28", "78"),
	model.ColorBlue:   ac("27", "75"),
	model.ColorPurple: ac("91", "141"),
	model.ColorYellow: ac("136", "221"),
	model.ColorOrange: ac("166", "215"),
	model.ColorPink:   ac("162", "218"),
}

var rainbowCycle = []model.Color{
	model.ColorRed, model.ColorOrange, model.ColorYellow,
	model.ColorGreen, model.ColorBlue, model.ColorPurple,
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

func styleHeading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleNavActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(colorSelectedFg).
		Background(colorSelectedBg)
}

func styleNavItem() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg)
}

func styleInput(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Padding(0, 1).Background(colorInputBg)
	if focused {
		st = st.Foreground(colorSelectedFg).Bold(true)
	}
	return st
}

func styleStatus(kind statusKind) lipgloss.Style {
	st := lipgloss.NewStyle()
	switch kind {
	case statusSuccess:
		return st.Foreground(colorSuccess)
	case statusError:
		return st.Foreground(colorError).Bold(true)
	case statusProgress:
		return st.Foreground(colorAccent)
	}
	return styleMuted()
}

func renderColorName(c model.Color) string {
	if c == model.ColorRainbow {
		var b strings.Builder
		for i, r := range string(c) {
			col := crewColors[rainbowCycle[i%len(rainbowCycle)]]
			b.WriteString(lipgloss.NewStyle().Foreground(col).Render(string(r)))
		}
		return b.String()
	}
	col, ok := crewColors[c]
	if !ok {
		return string(c)
	}
	return lipgloss.NewStyle().Foreground(col).Render(string(c))
}

func colorSwatch(c model.Color) string {
	if c == model.ColorRainbow {
		c = model.ColorPurple
	}
	col, ok := crewColors[c]
	if !ok {
		return " "
	}
	return lipgloss.NewStyle().Foreground(col).Render("●")
}

// applyColorProfilePreference honors NO_COLOR and otherwise trusts the
// terminal, upgrading to 256 colors or truecolor when TERM/COLORTERM say so.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	profile := termenv.ColorProfile()
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && profile == termenv.ANSI {
		profile = termenv.ANSI256
	}
	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) CREWMATES_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("15;0" = fg;bg)
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CREWMATES_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
