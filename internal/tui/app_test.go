package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crewmates/internal/model"
)

func TestSubmit_EmptyColorNeverCallsStore(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "12", 0)
	m, cmd := press(t, m, "enter")

	if cmd != nil {
		t.Fatalf("expected no command for an invalid form")
	}
	if st.count() != 0 {
		t.Fatalf("expected no store calls, got %d", st.count())
	}
	if m.status.kind != statusError || !strings.Contains(m.status.text, "color is required") {
		t.Fatalf("expected color validation status, got %q", m.status.text)
	}
	if got := m.form.name.Value(); got != "Ada" {
		t.Fatalf("expected form to keep name, got %q", got)
	}
}

func TestSubmit_RejectsNonNumericSpeed(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "fast", 1)
	m, cmd := press(t, m, "enter")

	if cmd != nil || st.count() != 0 {
		t.Fatalf("expected submit to stop before the store (calls=%d)", st.count())
	}
	if !strings.Contains(m.status.text, "speed") {
		t.Fatalf("expected speed validation status, got %q", m.status.text)
	}
}

func TestSubmit_RejectsNonFiniteSpeed(t *testing.T) {
	for _, speed := range []string{"NaN", "Inf", "-inf"} {
		t.Run(speed, func(t *testing.T) {
			st := newFakeStore()
			m := newTestModel(st)

			m = fillForm(t, m, "Ada", speed, 3)
			m, cmd := press(t, m, "enter")

			if cmd != nil || st.count() != 0 {
				t.Fatalf("expected %q to stop before the store (calls=%d)", speed, st.count())
			}
			want := "Invalid crewmate: speed"
			if m.status.kind != statusError || !strings.HasPrefix(m.status.text, want) {
				t.Fatalf("expected %q status, got %q", want, m.status.text)
			}
		})
	}
}

func TestAdaScenario(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "12", 3)
	if got := m.form.input().Color; got != "Blue" {
		t.Fatalf("expected Blue selected, got %q", got)
	}
	m = pressRun(t, m, "enter")

	if m.status.kind != statusSuccess || !strings.Contains(m.status.text, "successfully") {
		t.Fatalf("expected success status, got %q", m.status.text)
	}
	if m.status.text != "Crewmate created successfully!" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if m.form.name.Value() != "" || m.form.speed.Value() != "" || m.form.color != -1 {
		t.Fatalf("expected form cleared after create")
	}
	if _, ok := m.page.(createPage); !ok {
		t.Fatalf("expected to stay on create page, got %s", m.page.pageName())
	}

	m = pressRun(t, m, "f3")
	if len(m.cache.records) != 1 {
		t.Fatalf("expected one cached crewmate, got %d", len(m.cache.records))
	}
	rec := m.cache.records[0]
	if rec.Name != "Ada" || rec.Color != model.ColorBlue || rec.Speed != 12 {
		t.Fatalf("unexpected record %+v", rec)
	}

	m, _ = press(t, m, "enter")
	got, ok := m.selectedRecord()
	if !ok || got.ID != rec.ID {
		t.Fatalf("expected detail page for %s, got page %s", rec.ID, m.page.pageName())
	}
	var score string
	for _, row := range detailRows(got) {
		if row.label == "Speed score" {
			score = row.value
		}
	}
	if score != "1200" {
		t.Fatalf("expected speed score 1200, got %q", score)
	}
	if !strings.Contains(m.View(), "1200") {
		t.Fatalf("expected detail view to show 1200")
	}
}

func TestSubmit_LateSuccessKeepsNewForm(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "12", 3)
	m, pending := press(t, m, "enter")
	if pending == nil {
		t.Fatalf("expected an insert command")
	}

	m, _ = press(t, m, "f2")
	m = typeText(t, m, "Bob")
	m = run(t, m, pending)

	if got := m.form.name.Value(); got != "Bob" {
		t.Fatalf("expected the new form to survive the late insert, got name %q", got)
	}
	if m.status.text != "Crewmate created successfully!" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	recs, err := st.Memory.Select(context.Background())
	if err != nil || len(recs) != 1 || recs[0].Name != "Ada" {
		t.Fatalf("expected Ada stored, got %v (err=%v)", recs, err)
	}
}

func TestGallery_NewestFirstAfterCreate(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Old", Speed: 1, Color: model.ColorRed})
	m := newTestModel(st)
	m.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }

	m = pressRun(t, m, "3")
	if len(m.cache.records) != 1 {
		t.Fatalf("expected seeded record, got %d", len(m.cache.records))
	}

	m = fillForm(t, m, "New", "5", 2)
	m = pressRun(t, m, "enter")

	if len(m.cache.records) != 2 {
		t.Fatalf("expected live gallery to re-fetch after create, got %d", len(m.cache.records))
	}
	if m.cache.records[0].Name != "New" {
		t.Fatalf("expected newest first, got %q", m.cache.records[0].Name)
	}
	if m.status.text != "Crewmate created successfully!" {
		t.Fatalf("expected success status to survive the follow-up fetch, got %q", m.status.text)
	}
}

func TestSubmit_DoesNotRefreshBeforeGalleryVisited(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "12", 3)
	m = pressRun(t, m, "enter")

	if st.count() != 1 {
		t.Fatalf("expected only the insert, got %d calls", st.count())
	}
	if m.cache.loaded {
		t.Fatalf("expected cache untouched")
	}
}

func TestEdit_UpdatesRecordAndReturnsToCreateMode(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	orig := m.cache.records[0]

	m, _ = press(t, m, "e")
	if _, ok := m.page.(createPage); !ok {
		t.Fatalf("expected edit to open the form, got %s", m.page.pageName())
	}
	target, ok := m.form.editTarget()
	if !ok || target.ID != orig.ID {
		t.Fatalf("expected edit target %s", orig.ID)
	}
	if m.form.name.Value() != "Ada" || m.form.speed.Value() != "12" || m.form.input().Color != "Blue" {
		t.Fatalf("expected fields copied into the form, got %+v", m.form.input())
	}
	assertInvariants(t, m)

	m.form.speed.SetValue("30")
	m = pressRun(t, m, "enter")

	if m.status.text != "Crewmate updated successfully!" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if _, ok := m.form.mode.(createMode); !ok {
		t.Fatalf("expected form back in create mode")
	}
	if len(m.cache.records) != 1 || m.cache.records[0].Speed != 30 || m.cache.records[0].ID != orig.ID {
		t.Fatalf("expected refreshed cache with updated speed, got %+v", m.cache.records)
	}
	if !m.cache.records[0].CreatedAt.After(orig.CreatedAt) {
		t.Fatalf("expected created_at to advance")
	}
}

func TestEdit_FromDetail(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	m, _ = press(t, m, "enter")
	m, _ = press(t, m, "e")

	if _, ok := m.form.editTarget(); !ok {
		t.Fatalf("expected edit mode from detail")
	}
	if _, ok := m.page.(createPage); !ok {
		t.Fatalf("expected create page, got %s", m.page.pageName())
	}
	assertInvariants(t, m)
}

func TestSubmit_FailureKeepsForm(t *testing.T) {
	st := newFakeStore()
	st.insertErr = errors.New("duplicate key value violates unique constraint")
	m := newTestModel(st)

	m = fillForm(t, m, "Ada", "12", 3)
	m = pressRun(t, m, "enter")

	want := "Error creating crewmate: duplicate key value violates unique constraint"
	if m.status.text != want {
		t.Fatalf("status = %q, want %q", m.status.text, want)
	}
	in := m.form.input()
	if in.Name != "Ada" || in.Speed != "12" || in.Color != "Blue" {
		t.Fatalf("expected form kept for retry, got %+v", in)
	}
	if m.submitting || m.pending != 0 {
		t.Fatalf("expected in-flight state cleared")
	}
}

func TestUpdate_FailureMessage(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	st.updateErr = errors.New("permission denied")
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	m, _ = press(t, m, "e")
	m = pressRun(t, m, "enter")

	if m.status.text != "Error updating crewmate: permission denied" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if _, ok := m.form.editTarget(); !ok {
		t.Fatalf("expected edit mode kept after failure")
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	st := newFakeStore(
		model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue},
		model.Fields{Name: "Bob", Speed: 3, Color: model.ColorRed},
	)
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	victim := m.cache.records[0]
	m, _ = press(t, m, "e")
	calls := st.count()

	m, cmd := press(t, m, "ctrl+d")
	if cmd != nil || m.confirm == nil {
		t.Fatalf("expected confirmation gate")
	}
	m, _ = press(t, m, "n")
	if m.confirm != nil {
		t.Fatalf("expected gate closed")
	}
	if st.count() != calls {
		t.Fatalf("expected no delete without confirmation")
	}
	if _, ok := m.form.editTarget(); !ok {
		t.Fatalf("expected edit mode kept after declining")
	}

	m, _ = press(t, m, "ctrl+d")
	m = pressRun(t, m, "y")

	if m.status.text != "Crewmate deleted successfully!" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if _, ok := m.form.mode.(createMode); !ok {
		t.Fatalf("expected form cleared after delete")
	}
	if _, found := cachedRecord(m, victim.ID); found {
		t.Fatalf("deleted record %s still cached", victim.ID)
	}
	if len(m.cache.records) != 1 {
		t.Fatalf("expected one record left, got %d", len(m.cache.records))
	}
}

func TestDelete_ConfirmWithEnter(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	m, _ = press(t, m, "e")
	m, _ = press(t, m, "ctrl+d")

	// Cancel has focus first; enter there keeps the record.
	m, _ = press(t, m, "enter")
	if m.confirm != nil || st.count() != 1 {
		t.Fatalf("expected enter on Keep to close without deleting")
	}

	m, _ = press(t, m, "ctrl+d")
	m, _ = press(t, m, "tab")
	m = pressRun(t, m, "enter")
	if len(m.cache.records) != 0 {
		t.Fatalf("expected record deleted, got %d", len(m.cache.records))
	}
}

func TestDelete_IgnoredInCreateMode(t *testing.T) {
	m := newTestModel(newFakeStore())
	m, _ = press(t, m, "f2")
	m, cmd := press(t, m, "ctrl+d")
	if cmd != nil || m.confirm != nil {
		t.Fatalf("expected delete to be ignored in create mode")
	}
}

func TestDelete_FailureKeepsState(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	st.deleteErr = errors.New("timeout")
	m := newTestModel(st)
	m = pressRun(t, m, "3")
	m, _ = press(t, m, "e")
	m, _ = press(t, m, "ctrl+d")
	m = pressRun(t, m, "y")

	if m.status.text != "Error deleting crewmate: timeout" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if _, ok := m.form.editTarget(); !ok {
		t.Fatalf("expected edit mode kept")
	}
	if len(m.cache.records) != 1 {
		t.Fatalf("expected cache untouched")
	}
}

func TestRefresh_FailureKeepsPreviousCache(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	m = pressRun(t, m, "3")

	st.selectErr = errors.New("connection refused")
	m = pressRun(t, m, "r")

	if m.status.text != "Error fetching crewmates: connection refused" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if len(m.cache.records) != 1 {
		t.Fatalf("expected previous cache kept, got %d", len(m.cache.records))
	}

	st.selectErr = nil
	m = pressRun(t, m, "r")
	if !m.status.empty() {
		t.Fatalf("expected successful fetch to clear status, got %q", m.status.text)
	}
}

func TestRefresh_FirstLoadFailureShowsEmptyGallery(t *testing.T) {
	st := newFakeStore()
	st.selectErr = errors.New("boom")
	m := newTestModel(st)
	m = pressRun(t, m, "3")

	if _, ok := m.page.(galleryPage); !ok {
		t.Fatalf("expected gallery page, got %s", m.page.pageName())
	}
	if len(m.cache.records) != 0 || m.cache.loaded {
		t.Fatalf("expected empty cache")
	}
	if m.status.kind != statusError {
		t.Fatalf("expected error status")
	}
}

func TestRefresh_ProgressStatusWhileInFlight(t *testing.T) {
	m := newTestModel(newFakeStore())
	m, cmd := press(t, m, "3")
	if cmd == nil {
		t.Fatalf("expected fetch command")
	}
	if m.status.kind != statusProgress || m.status.text != "Loading crewmates…" {
		t.Fatalf("unexpected status %q", m.status.text)
	}
	if m.pending != 1 {
		t.Fatalf("expected one pending op, got %d", m.pending)
	}
	m = run(t, m, cmd)
	if m.pending != 0 || !m.status.empty() {
		t.Fatalf("expected idle after fetch (pending=%d status=%q)", m.pending, m.status.text)
	}
}

func TestRefresh_LastResolvedWins(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)

	m, first := press(t, m, "3")
	firstMsgs := collect(first)

	if _, err := st.Memory.Insert(t.Context(), model.Fields{Name: "Bob", Speed: 1, Color: model.ColorRed}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	m, second := press(t, m, "r")
	secondMsgs := collect(second)

	if len(firstMsgs) != 1 || len(secondMsgs) != 1 {
		t.Fatalf("expected one result per fetch, got %d and %d", len(firstMsgs), len(secondMsgs))
	}
	m, _ = send(t, m, secondMsgs[0])
	if len(m.cache.records) != 2 {
		t.Fatalf("expected second result applied first, got %d", len(m.cache.records))
	}
	m, _ = send(t, m, firstMsgs[0])

	if len(m.cache.records) != 1 || m.cache.records[0].Name != "Ada" {
		t.Fatalf("expected the last-resolved (first issued) result to win, got %+v", m.cache.records)
	}
	if m.pending != 0 {
		t.Fatalf("expected no pending ops, got %d", m.pending)
	}
}

func TestRefresh_ResolvesAfterNavigatingAway(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)

	m, cmd := press(t, m, "3")
	m, _ = press(t, m, "1")
	m = run(t, m, cmd)

	if _, ok := m.page.(homePage); !ok {
		t.Fatalf("expected to stay home, got %s", m.page.pageName())
	}
	if len(m.cache.records) != 1 {
		t.Fatalf("expected late fetch to still fill the cache")
	}
}

func TestStoreTimeout(t *testing.T) {
	m := newAppModel(Options{Store: blockingStore{}, Timeout: 20 * time.Millisecond})
	m = pressRun(t, m, "3")

	if m.status.kind != statusError || !strings.Contains(m.status.text, "deadline exceeded") {
		t.Fatalf("expected timeout status, got %q", m.status.text)
	}
}

func TestUninitializedStore(t *testing.T) {
	m := newTestModel(nil)

	m, cmd := press(t, m, "3")
	if cmd != nil {
		t.Fatalf("expected no command without a store")
	}
	if _, ok := m.page.(galleryPage); !ok {
		t.Fatalf("expected gallery page, got %s", m.page.pageName())
	}
	if m.status.text != uninitializedStatus {
		t.Fatalf("unexpected status %q", m.status.text)
	}

	m.status.clear()
	m = fillForm(t, m, "Ada", "12", 3)
	m, cmd = press(t, m, "enter")
	if cmd != nil || m.status.text != uninitializedStatus {
		t.Fatalf("expected submit to short-circuit, got %q", m.status.text)
	}
}

func TestNavigation(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	if _, ok := m.page.(homePage); !ok {
		t.Fatalf("expected initial home page")
	}

	m = pressRun(t, m, "3")
	m, _ = press(t, m, "enter")
	if _, ok := m.page.(detailPage); !ok {
		t.Fatalf("expected detail page")
	}
	assertInvariants(t, m)

	// Back re-enters the gallery, which re-fetches.
	calls := st.count()
	m = pressRun(t, m, "esc")
	if _, ok := m.page.(galleryPage); !ok {
		t.Fatalf("expected gallery after back, got %s", m.page.pageName())
	}
	if st.count() != calls+1 {
		t.Fatalf("expected a fetch on gallery re-entry")
	}

	// Nav to create from an edit resets the form.
	m, _ = press(t, m, "e")
	if _, ok := m.form.editTarget(); !ok {
		t.Fatalf("expected edit mode")
	}
	m, _ = press(t, m, "f2")
	if _, ok := m.form.mode.(createMode); !ok || m.form.name.Value() != "" {
		t.Fatalf("expected nav to create to reset the form")
	}

	// Digits are text while a field has focus.
	m = typeText(t, m, "12")
	if _, ok := m.page.(createPage); !ok || m.form.name.Value() != "12" {
		t.Fatalf("expected digits typed into the name field")
	}

	// Home leaves the form alone.
	m, _ = press(t, m, "f1")
	if _, ok := m.page.(homePage); !ok {
		t.Fatalf("expected home page")
	}
	if m.form.name.Value() != "12" {
		t.Fatalf("expected home navigation to keep the form")
	}
	assertInvariants(t, m)

	// Select is only meaningful from the gallery.
	m, _ = press(t, m, "enter")
	if _, ok := m.page.(homePage); !ok {
		t.Fatalf("expected enter on home to be ignored")
	}
}

func TestCancel_ClearsForm(t *testing.T) {
	st := newFakeStore()
	m := newTestModel(st)
	m = fillForm(t, m, "Ada", "12", 3)
	m, _ = press(t, m, "esc")

	if m.form.input() != (model.Input{}) {
		t.Fatalf("expected empty form, got %+v", m.form.input())
	}
	if st.count() != 0 {
		t.Fatalf("expected no store calls on cancel")
	}
}

func TestModeInvariantAcrossFlows(t *testing.T) {
	st := newFakeStore(
		model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue},
		model.Fields{Name: "Bob", Speed: 3, Color: model.ColorRed},
	)
	m := newTestModel(st)
	steps := []string{"3", "e", "esc", "f3", "enter", "e", "enter", "f2", "f3", "enter", "esc", "e", "ctrl+d", "n", "ctrl+d", "y", "f1", "3"}
	for _, k := range steps {
		m = pressRun(t, m, k)
		assertInvariants(t, m)
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(newFakeStore())
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	_, cmd = press(t, m, "ctrl+c")
	if cmd == nil {
		t.Fatalf("expected quit command for ctrl+c")
	}
}

func TestView_ShowsNavAndStatus(t *testing.T) {
	st := newFakeStore()
	st.selectErr = errors.New("boom")
	m := newTestModel(st)
	m = pressRun(t, m, "3")

	out := m.View()
	for _, want := range []string{"Home", "Create a Crewmate!", "Crewmate Gallery", "Error fetching crewmates: boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}

func TestView_GalleryShowsLastFetchTime(t *testing.T) {
	st := newFakeStore(model.Fields{Name: "Ada", Speed: 12, Color: model.ColorBlue})
	m := newTestModel(st)
	fetched := time.Date(2030, 1, 1, 9, 41, 0, 0, time.UTC)
	m.now = func() time.Time { return fetched }

	m = pressRun(t, m, "3")

	if !m.cache.fetchedAt.Equal(fetched) {
		t.Fatalf("expected fetch time %v, got %v", fetched, m.cache.fetchedAt)
	}
	want := "updated " + fetched.Local().Format("15:04")
	if out := m.View(); !strings.Contains(out, want) {
		t.Fatalf("expected gallery heading to contain %q", want)
	}
}
