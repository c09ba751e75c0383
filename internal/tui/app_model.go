package tui

import (
	"log/slog"
	"time"

	"crewmates/internal/store"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the controller.
type Options struct {
	// Store is the remote store. A nil Store makes every store operation
	// report that the client is not initialized.
	Store store.Store
	// Timeout bounds each store call. Zero disables it.
	Timeout time.Duration
	Logger  *slog.Logger
	// Now overrides the clock used to stamp created_at.
	Now func() time.Time
}

type appModel struct {
	store   store.Store
	timeout time.Duration
	log     *slog.Logger
	now     func() time.Time

	width  int
	height int

	page page
	// galleryLive is set once the gallery has been entered; from then on our
	// own mutations re-fetch the cache.
	galleryLive bool

	form    formState
	cache   listCache
	gallery list.Model
	status  statusLine
	confirm *confirmDelete

	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	pending    int
	fetchSeq   int
	submitting bool
}

func newAppModel(opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := appModel{
		store:   opts.Store,
		timeout: opts.Timeout,
		log:     log,
		now:     now,
		width:   80,
		height:  24,
		page:    homePage{},
		form:    newFormState(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleAccent())),
		help:    help.New(),
		keys:    defaultKeyMap(),
	}
	m.gallery = newGalleryList()
	m.resize()
	return m
}

func newGalleryList() list.Model {
	l := list.New(nil, newCrewmateDelegate(), 0, 0)
	l.Title = "Crewmate Gallery"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("crewmate", "crewmates")
	return l
}

func (m appModel) Init() tea.Cmd {
	if m.store == nil {
		m.log.Error("store client not initialized")
	}
	return nil
}

// resize lays out the gallery inside the frame left over by chrome.
func (m *appModel) resize() {
	w, h := m.bodySize()
	// gallery heading + blank line
	m.gallery.SetSize(w, h-2)
	m.help.Width = m.width
}

func (m appModel) bodySize() (int, int) {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	// nav bar + rule, status line, help line
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	return w, h
}
