package tui

import (
	"crewmates/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// formState is shared by the create and edit flows.
type formState struct {
	name  textinput.Model
	speed textinput.Model
	// color indexes model.Palette; -1 means nothing chosen yet.
	color int
	focus formField
	mode  formMode
	// gen changes whenever the form starts over, so late results can tell
	// whether they still belong to what is on screen.
	gen   int
}

func newFormState() formState {
	name := textinput.New()
	name.Prompt = ""
	name.Placeholder = "Enter crewmate's name"
	name.CharLimit = 80

	speed := textinput.New()
	speed.Prompt = ""
	speed.Placeholder = "Enter speed in mph"
	speed.CharLimit = 24

	f := formState{name: name, speed: speed}
	f.reset()
	return f
}

// reset empties every field and returns to create mode.
func (f *formState) reset() {
	f.name.SetValue("")
	f.speed.SetValue("")
	f.color = -1
	f.mode = createMode{}
	f.gen++
	f.setFocus(fieldName)
}

// load copies rec into the inputs and switches to edit mode.
func (f *formState) load(rec model.Crewmate) {
	f.name.SetValue(rec.Name)
	f.speed.SetValue(model.FormatSpeed(rec.Speed))
	f.color = paletteIndex(rec.Color)
	f.mode = editMode{target: rec}
	f.gen++
	f.setFocus(fieldName)
}

func (f formState) editTarget() (model.Crewmate, bool) {
	if em, ok := f.mode.(editMode); ok {
		return em.target, true
	}
	return model.Crewmate{}, false
}

func (f formState) input() model.Input {
	in := model.Input{Name: f.name.Value(), Speed: f.speed.Value()}
	if f.color >= 0 && f.color < len(model.Palette) {
		in.Color = string(model.Palette[f.color])
	}
	return in
}

func (f *formState) setFocus(field formField) tea.Cmd {
	f.focus = field
	f.name.Blur()
	f.speed.Blur()
	switch field {
	case fieldName:
		return f.name.Focus()
	case fieldSpeed:
		return f.speed.Focus()
	}
	return nil
}

func (f *formState) moveFocus(delta int) tea.Cmd {
	next := (int(f.focus) + delta + formFieldCount) % formFieldCount
	return f.setFocus(formField(next))
}

// cycleColor steps through the palette, wrapping at both ends.
func (f *formState) cycleColor(delta int) {
	n := len(model.Palette)
	if f.color < 0 {
		if delta > 0 {
			f.color = 0
		} else {
			f.color = n - 1
		}
		return
	}
	f.color = (f.color + delta + n) % n
}

// update feeds msg to the focused text input.
func (f *formState) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldName:
		f.name, cmd = f.name.Update(msg)
	case fieldSpeed:
		f.speed, cmd = f.speed.Update(msg)
	}
	return cmd
}

func (f formState) editingText() bool {
	return f.focus == fieldName || f.focus == fieldSpeed
}

func paletteIndex(c model.Color) int {
	for i, p := range model.Palette {
		if p == c {
			return i
		}
	}
	return -1
}
