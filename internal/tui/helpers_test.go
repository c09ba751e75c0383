package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"crewmates/internal/model"
	"crewmates/internal/store"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeStore wraps a Memory store with call counting and injectable errors.
type fakeStore struct {
	*store.Memory

	mu        sync.Mutex
	calls     int
	selectErr error
	insertErr error
	updateErr error
	deleteErr error
}

func newFakeStore(seed ...model.Fields) *fakeStore {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	for i, f := range seed {
		if f.CreatedAt.IsZero() {
			f.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		}
		if _, err := mem.Insert(context.Background(), f); err != nil {
			panic(err)
		}
	}
	return &fakeStore{Memory: mem}
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *fakeStore) Select(ctx context.Context) ([]model.Crewmate, error) {
	s.hit()
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.Memory.Select(ctx)
}

func (s *fakeStore) Insert(ctx context.Context, f model.Fields) (model.Crewmate, error) {
	s.hit()
	if s.insertErr != nil {
		return model.Crewmate{}, s.insertErr
	}
	return s.Memory.Insert(ctx, f)
}

func (s *fakeStore) Update(ctx context.Context, id string, f model.Fields) (model.Crewmate, error) {
	s.hit()
	if s.updateErr != nil {
		return model.Crewmate{}, s.updateErr
	}
	return s.Memory.Update(ctx, id, f)
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	s.hit()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Memory.Delete(ctx, id)
}

// blockingStore never answers until its context ends.
type blockingStore struct{ store.Store }

func (blockingStore) Select(ctx context.Context) ([]model.Crewmate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestModel(st store.Store) appModel {
	m := newAppModel(Options{Store: st})
	// A blinking cursor's focus command sleeps; keep it static so every
	// returned command can be run inline.
	m.form.name.Cursor.SetMode(cursor.CursorStatic)
	m.form.speed.Cursor.SetMode(cursor.CursorStatic)
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return mm.(appModel)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "f1":
		return tea.KeyMsg{Type: tea.KeyF1}
	case "f2":
		return tea.KeyMsg{Type: tea.KeyF2}
	case "f3":
		return tea.KeyMsg{Type: tea.KeyF3}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func send(t *testing.T, m appModel, msg tea.Msg) (appModel, tea.Cmd) {
	t.Helper()
	mm, cmd := m.Update(msg)
	out, ok := mm.(appModel)
	if !ok {
		t.Fatalf("Update returned %T, want appModel", mm)
	}
	return out, cmd
}

func press(t *testing.T, m appModel, k string) (appModel, tea.Cmd) {
	t.Helper()
	return send(t, m, keyMsg(k))
}

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// collect executes a store command and returns its completion messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case fetchDoneMsg, submitDoneMsg, deleteDoneMsg:
		return []tea.Msg{msg}
	}
	return nil
}

// run delivers every store result produced by cmd, following up on any
// refresh those results trigger.
func run(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	for _, msg := range collect(cmd) {
		var next tea.Cmd
		m, next = send(t, m, msg)
		m = run(t, m, next)
	}
	return m
}

// pressRun presses k and runs the resulting store work to completion.
func pressRun(t *testing.T, m appModel, k string) appModel {
	t.Helper()
	m, cmd := press(t, m, k)
	return run(t, m, cmd)
}

// fillForm goes to the create page and types a crewmate. colorSteps is the
// number of right presses on the color picker (Red = 1, Blue = 3).
func fillForm(t *testing.T, m appModel, name, speed string, colorSteps int) appModel {
	t.Helper()
	m, _ = press(t, m, "f2")
	m = typeText(t, m, name)
	m, _ = press(t, m, "tab")
	m = typeText(t, m, speed)
	m, _ = press(t, m, "tab")
	for i := 0; i < colorSteps; i++ {
		m, _ = press(t, m, "right")
	}
	return m
}

func assertInvariants(t *testing.T, m appModel) {
	t.Helper()
	_, hasTarget := m.form.editTarget()
	_, isEdit := m.form.mode.(editMode)
	if hasTarget != isEdit {
		t.Fatalf("form invariant broken: hasTarget=%v isEdit=%v", hasTarget, isEdit)
	}
	_, hasSelected := m.selectedRecord()
	_, isDetail := m.page.(detailPage)
	if hasSelected != isDetail {
		t.Fatalf("page invariant broken: hasSelected=%v isDetail=%v", hasSelected, isDetail)
	}
}

func cachedRecord(m appModel, id string) (model.Crewmate, bool) {
	for _, r := range m.cache.records {
		if r.ID == id {
			return r, true
		}
	}
	return model.Crewmate{}, false
}
