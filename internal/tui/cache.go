package tui

import (
	"time"

	"crewmates/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

// listCache is the last successful Select, newest first. It is only ever
// replaced as a whole.
type listCache struct {
	records   []model.Crewmate
	loaded    bool
	fetchedAt time.Time
}

func (c *listCache) replace(recs []model.Crewmate, at time.Time) {
	c.records = append([]model.Crewmate(nil), recs...)
	c.loaded = true
	c.fetchedAt = at
}

type crewmateItem struct {
	rec model.Crewmate
}

func (it crewmateItem) FilterValue() string { return it.rec.Name }
func (it crewmateItem) Title() string       { return it.rec.Name }
func (it crewmateItem) Description() string {
	return model.FormatSpeed(it.rec.Speed) + " mph · " + string(it.rec.Color)
}

// syncGallery mirrors the cache into the gallery list, keeping the cursor on
// the same record when it still exists.
func (m *appModel) syncGallery() {
	selectedID := ""
	if it, ok := m.gallery.SelectedItem().(crewmateItem); ok {
		selectedID = it.rec.ID
	}
	items := make([]list.Item, 0, len(m.cache.records))
	idx := 0
	for i, r := range m.cache.records {
		items = append(items, crewmateItem{rec: r})
		if r.ID == selectedID {
			idx = i
		}
	}
	m.gallery.SetItems(items)
	if len(items) > 0 {
		m.gallery.Select(idx)
	}
}
