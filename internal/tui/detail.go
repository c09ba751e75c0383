package tui

import (
	"math"
	"strings"
	"time"

	"crewmates/internal/model"

	"github.com/charmbracelet/lipgloss"
)

type detailRow struct {
	label string
	value string
}

// speedScore is speed × 100 shifted in the decimal text FormatSpeed
// produces, so it shows every digit the speed has. It is never stored.
func speedScore(speed float64) string {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return model.FormatSpeed(speed * 100)
	}
	s := model.FormatSpeed(speed)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")
	frac += "00"
	whole = strings.TrimLeft(whole+frac[:2], "0")
	frac = strings.TrimRight(frac[2:], "0")
	if whole == "" {
		whole = "0"
	}
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

func detailRows(rec model.Crewmate) []detailRow {
	created := "—"
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt.Local().Format(time.DateTime)
	}
	return []detailRow{
		{label: "Name", value: rec.Name},
		{label: "Speed", value: model.FormatSpeed(rec.Speed) + " mph"},
		{label: "Color", value: string(rec.Color)},
		{label: "Speed score", value: speedScore(rec.Speed)},
		{label: "Created", value: created},
		{label: "ID", value: rec.ID},
	}
}

func (m appModel) viewDetail(rec model.Crewmate) string {
	labelW := 0
	rows := detailRows(rec)
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > labelW {
			labelW = w
		}
	}
	label := styleMuted().Width(labelW + 2)

	lines := []string{styleHeading().Render(rec.Name), ""}
	for _, r := range rows {
		v := r.value
		if r.label == "Color" {
			v = renderColorName(rec.Color)
		}
		lines = append(lines, label.Render(r.label)+v)
	}
	return strings.Join(lines, "\n")
}
