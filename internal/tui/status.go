package tui

import (
	"errors"
	"fmt"
)

// ErrUninitializedClient is returned for every store operation when the
// controller was started without a store.
var ErrUninitializedClient = errors.New("store client not initialized")

const uninitializedStatus = "Store client not initialized. Check your configuration."

type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusProgress
	statusSuccess
	statusError
)

// statusLine is the single message region. Every outcome overwrites it.
type statusLine struct {
	kind statusKind
	text string
}

func (s *statusLine) set(kind statusKind, text string) {
	s.kind = kind
	s.text = text
}

func (s *statusLine) clear() {
	s.kind = statusNone
	s.text = ""
}

func (s *statusLine) progress(text string) { s.set(statusProgress, text) }

func (s *statusLine) success(text string) { s.set(statusSuccess, text) }

// fail renders err after prefix. Validation and uninitialized-store errors
// are shown on their own.
func (s *statusLine) fail(prefix string, err error) {
	if errors.Is(err, ErrUninitializedClient) {
		s.set(statusError, uninitializedStatus)
		return
	}
	if prefix == "" {
		s.set(statusError, err.Error())
		return
	}
	s.set(statusError, fmt.Sprintf("%s: %v", prefix, err))
}

func (s statusLine) empty() bool { return s.text == "" }
