// Package document holds the fields every workflow document shares.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// ErrNotEditable is returned when line items are changed on a document whose
// status no longer allows it.
var ErrNotEditable = errors.New("document is not editable in its current status")

// Header is embedded by every header document. It satisfies resource.Entity.
type Header struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Number    string          `json:"number"`
	Status    workflow.Status `json:"status"`
	Version   int             `json:"version"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (h Header) EntityID() uuid.UUID {
	return h.ID
}

func (h Header) EntityStatus() workflow.Status {
	return h.Status
}

const dateLayout = time.DateOnly

// Date is a calendar date sent as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	for _, layout := range []string{dateLayout, "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}

	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or DD.MM.YYYY", s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.Format("02.01.2006")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		*d = Date{}
		return nil
	}

	// Some endpoints send full timestamps. The date is taken in the
	// timestamp's own offset.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewDate(t.Year(), t.Month(), t.Day())
		return nil
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
