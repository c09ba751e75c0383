package tui

import (
	"crewmates/internal/model"
)

// page is the navigation state. Only detailPage carries a record, so a
// selected record exists exactly when the detail page is shown.
type page interface {
	pageName() string
}

type homePage struct{}

type createPage struct{}

type galleryPage struct{}

type detailPage struct {
	record model.Crewmate
}

func (homePage) pageName() string    { return "home" }
func (createPage) pageName() string  { return "create" }
func (galleryPage) pageName() string { return "gallery" }
func (detailPage) pageName() string  { return "detail" }

// formMode tags the form. The edit target lives inside editMode, so it can
// only be present in edit mode.
type formMode interface {
	verb() string
}

type createMode struct{}

type editMode struct {
	target model.Crewmate
}

func (createMode) verb() string { return "create" }
func (editMode) verb() string   { return "update" }

type formField int

const (
	fieldName formField = iota
	fieldSpeed
	fieldColor
)

const formFieldCount = 3

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// confirmDelete is the yes/no gate shown before a delete is issued.
type confirmDelete struct {
	target model.Crewmate
	focus  confirmModalFocus
}

type fetchDoneMsg struct {
	seq     int
	records []model.Crewmate
	err     error
	// quiet fetches follow a mutation; they keep the mutation's status.
	quiet bool
}

type submitDoneMsg struct {
	// gen is the form generation that was submitted.
	gen    int
	mode   formMode
	record model.Crewmate
	err    error
}

type deleteDoneMsg struct {
	id  string
	err error
}
