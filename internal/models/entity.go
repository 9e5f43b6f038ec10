package models

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned when a 2xx body lacks a field the caller needs.
var ErrMalformedResponse = errors.New("malformed response")

// EntityKind selects which backend collection a generic operation targets
type EntityKind int

const (
	KindParticipant EntityKind = iota
	KindProject
)

func (k EntityKind) String() string {
	switch k {
	case KindParticipant:
		return "participant"
	case KindProject:
		return "project"
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

// CollectionPath is the list/create endpoint. The trailing slash matters to the backend.
func (k EntityKind) CollectionPath() string {
	switch k {
	case KindParticipant:
		return "/participants/"
	case KindProject:
		return "/projects/"
	}
	panic(fmt.Sprintf("unknown entity kind %d", int(k)))
}

// ItemPath is the read/update/delete endpoint for one record.
func (k EntityKind) ItemPath(id uint) string {
	return fmt.Sprintf("%s%d", k.CollectionPath(), id)
}
