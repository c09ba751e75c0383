package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Color string

const (
	ColorRed     Color = "Red"
	ColorGreen   Color = "Green"
	ColorBlue    Color = "Blue"
	ColorPurple  Color = "Purple"
	ColorYellow  Color = "Yellow"
	ColorOrange  Color = "Orange"
	ColorPink    Color = "Pink"
	ColorRainbow Color = "Rainbow"
)

// Palette is the fixed, ordered set of colors a crewmate may have.
var Palette = []Color{
	ColorRed,
	ColorGreen,
	ColorBlue,
	ColorPurple,
	ColorYellow,
	ColorOrange,
	ColorPink,
	ColorRainbow,
}

// ParseColor matches s against the palette (case-insensitive).
func ParseColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Palette {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

func (c Color) Valid() bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// Crewmate is a persisted record. Values held outside the store are copies.
type Crewmate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Speed     float64   `json:"speed"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Fields returns the mutable part of the record.
func (c Crewmate) Fields() Fields {
	return Fields{Name: c.Name, Speed: c.Speed, Color: c.Color, CreatedAt: c.CreatedAt}
}

// Fields is everything except the store-assigned id.
type Fields struct {
	Name      string    `json:"name"`
	Speed     float64   `json:"speed"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Stamped returns a copy with CreatedAt set to now (UTC).
func (f Fields) Stamped(now time.Time) Fields {
	f.CreatedAt = now.UTC()
	return f
}

// ValidationError reports input that was rejected before reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Input is the raw text a user typed into the form.
type Input struct {
	Name  string
	Speed string
	Color string
}

// Parse validates raw input and coerces speed.
//
// Color is checked first: it is the only field without input-level
// requiredness in the form, so it is the one most likely to be missing.
func (in Input) Parse() (Fields, error) {
	color := strings.TrimSpace(in.Color)
	if color == "" {
		return Fields{}, &ValidationError{Field: "color", Reason: "is required"}
	}
	c, ok := ParseColor(color)
	if !ok {
		return Fields{}, &ValidationError{Field: "color", Reason: fmt.Sprintf("%q is not in the palette", color)}
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Fields{}, &ValidationError{Field: "name", Reason: "is required"}
	}
	speedText := strings.TrimSpace(in.Speed)
	if speedText == "" {
		return Fields{}, &ValidationError{Field: "speed", Reason: "is required"}
	}
	speed, err := strconv.ParseFloat(speedText, 64)
	if err != nil || !finite(speed) {
		return Fields{}, &ValidationError{Field: "speed", Reason: fmt.Sprintf("%q is not a number", speedText)}
	}
	return Fields{Name: name, Speed: speed, Color: c}, nil
}

// Validate checks already-typed fields (used by non-interactive callers).
func (f Fields) Validate() error {
	if f.Color == "" {
		return &ValidationError{Field: "color", Reason: "is required"}
	}
	if !f.Color.Valid() {
		return &ValidationError{Field: "color", Reason: fmt.Sprintf("%q is not in the palette", string(f.Color))}
	}
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if !finite(f.Speed) {
		return &ValidationError{Field: "speed", Reason: fmt.Sprintf("%v is not a number", f.Speed)}
	}
	return nil
}

// finite rejects the NaN and Inf spellings ParseFloat accepts.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatSpeed renders a speed without trailing zeros.
func FormatSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
