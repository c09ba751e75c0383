package tui

import (
	"context"
	"time"

	"crewmates/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func storeContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// beginOp counts an in-flight store call and starts the spinner for the first.
func (m *appModel) beginOp(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *appModel) endOp() {
	if m.pending > 0 {
		m.pending--
	}
}

// refresh re-reads the whole table. Responses are applied in arrival order,
// so the last one to resolve wins.
func (m *appModel) refresh(quiet bool) tea.Cmd {
	if m.store == nil {
		m.status.fail("", ErrUninitializedClient)
		return nil
	}
	m.fetchSeq++
	seq := m.fetchSeq
	if !quiet {
		m.status.progress("Loading crewmates…")
	}
	st, timeout, log := m.store, m.timeout, m.log
	log.Debug("fetch crewmates", "seq", seq)
	return m.beginOp(func() tea.Msg {
		ctx, cancel := storeContext(timeout)
		defer cancel()
		recs, err := st.Select(ctx)
		return fetchDoneMsg{seq: seq, records: recs, err: err, quiet: quiet}
	})
}

func (m *appModel) applyFetch(msg fetchDoneMsg) tea.Cmd {
	m.endOp()
	if msg.err != nil {
		m.log.Warn("fetch crewmates failed", "seq", msg.seq, "err", msg.err)
		m.status.fail("Error fetching crewmates", msg.err)
		return nil
	}
	m.cache.replace(msg.records, m.now())
	m.syncGallery()
	if !msg.quiet || m.status.kind == statusError {
		m.status.clear()
	}
	return nil
}

// submit validates the form and issues an insert or an update.
func (m *appModel) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	if m.store == nil {
		m.status.fail("", ErrUninitializedClient)
		return nil
	}
	fields, err := m.form.input().Parse()
	if err != nil {
		m.status.fail("Invalid crewmate", err)
		return nil
	}
	fields = fields.Stamped(m.now())

	mode, gen := m.form.mode, m.form.gen
	st, timeout := m.store, m.timeout
	var call func(ctx context.Context) (model.Crewmate, error)
	switch md := mode.(type) {
	case editMode:
		id := md.target.ID
		call = func(ctx context.Context) (model.Crewmate, error) { return st.Update(ctx, id, fields) }
	default:
		call = func(ctx context.Context) (model.Crewmate, error) { return st.Insert(ctx, fields) }
	}

	m.submitting = true
	m.status.progress(progressText(mode))
	m.log.Debug("submit crewmate", "op", mode.verb(), "name", fields.Name)
	return m.beginOp(func() tea.Msg {
		ctx, cancel := storeContext(timeout)
		defer cancel()
		rec, err := call(ctx)
		return submitDoneMsg{gen: gen, mode: mode, record: rec, err: err}
	})
}

func (m *appModel) applySubmit(msg submitDoneMsg) tea.Cmd {
	m.endOp()
	m.submitting = false
	if msg.err != nil {
		m.log.Warn("submit crewmate failed", "op", msg.mode.verb(), "err", msg.err)
		m.status.fail("Error "+gerund(msg.mode)+" crewmate", msg.err)
		return nil
	}
	// A form started after the submit is left alone.
	if msg.gen == m.form.gen {
		m.form.reset()
	}
	m.status.success("Crewmate " + pastTense(msg.mode) + " successfully!")
	return m.refreshIfLive()
}

// requestDelete opens the confirmation gate. It only applies in edit mode.
func (m *appModel) requestDelete() {
	target, ok := m.form.editTarget()
	if !ok || m.submitting {
		return
	}
	m.confirm = &confirmDelete{target: target, focus: confirmFocusCancel}
}

func (m *appModel) deleteConfirmed() tea.Cmd {
	c := m.confirm
	m.confirm = nil
	if c == nil {
		return nil
	}
	if m.store == nil {
		m.status.fail("", ErrUninitializedClient)
		return nil
	}
	id := c.target.ID
	st, timeout := m.store, m.timeout
	m.submitting = true
	m.status.progress("Deleting crewmate…")
	m.log.Debug("delete crewmate", "id", id)
	return m.beginOp(func() tea.Msg {
		ctx, cancel := storeContext(timeout)
		defer cancel()
		return deleteDoneMsg{id: id, err: st.Delete(ctx, id)}
	})
}

func (m *appModel) applyDelete(msg deleteDoneMsg) tea.Cmd {
	m.endOp()
	m.submitting = false
	if msg.err != nil {
		m.log.Warn("delete crewmate failed", "id", msg.id, "err", msg.err)
		m.status.fail("Error deleting crewmate", msg.err)
		return nil
	}
	if target, ok := m.form.editTarget(); ok && target.ID == msg.id {
		m.form.reset()
	}
	m.status.success("Crewmate deleted successfully!")
	return m.refreshIfLive()
}

// refreshIfLive keeps the cache consistent after our own mutations once the
// gallery has been opened in this session.
func (m *appModel) refreshIfLive() tea.Cmd {
	if !m.galleryLive {
		return nil
	}
	return m.refresh(true)
}

func progressText(mode formMode) string {
	if _, ok := mode.(editMode); ok {
		return "Updating crewmate…"
	}
	return "Creating crewmate…"
}

func gerund(mode formMode) string {
	if _, ok := mode.(editMode); ok {
		return "updating"
	}
	return "creating"
}

func pastTense(mode formMode) string {
	if _, ok := mode.(editMode); ok {
		return "updated"
	}
	return "created"
}
