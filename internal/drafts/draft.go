// Package drafts keeps unfinished wizards on disk so a creation interrupted
// by a failure or by closing the terminal can be resumed.
package drafts

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("draft not found")

// Kind is the wizard a draft belongs to.
type Kind string

const (
	KindEstimate Kind = "estimate"
	KindRequest  Kind = "purchase_request"
)

func (k Kind) Label() string {
	switch k {
	case KindEstimate:
		return "Смета"
	case KindRequest:
		return "Заявка"
	default:
		return string(k)
	}
}

// Draft is a saved wizard. HeaderID is set once the header document exists on
// the server; Created counts the items already sent.
type Draft struct {
	ID        uuid.UUID
	Kind      Kind
	Title     string
	Step      int
	Payload   json.RawMessage
	HeaderID  uuid.UUID
	Created   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Started reports whether a submit already created the header.
func (d *Draft) Started() bool {
	return d.HeaderID != uuid.Nil
}
