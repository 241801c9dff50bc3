// Package wizard collects a document and its lines over several steps and
// creates them on the server at the end. Nothing is sent before Submit.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/resource"
)

var (
	// ErrIncomplete is returned by Next when required fields of the current
	// step are empty. The wrapped message names them.
	ErrIncomplete = errors.New("заполните обязательные поля")
	ErrNotReady   = errors.New("wizard is not on the review step")

	// ErrLocked is returned when lines change after the header was created.
	ErrLocked = errors.New("документ уже создан, состав строк изменить нельзя")
)

type Step int

const (
	StepSource Step = iota
	StepDetails
	StepLines
	StepReview
)

// Progress records how far a submit got. It survives a failed Submit so the
// next one resumes instead of creating a second header.
type Progress struct {
	HeaderID uuid.UUID `json:"header_id"`
	Created  int       `json:"created"`
}

func (p Progress) Started() bool {
	return p.HeaderID != uuid.Nil
}

// PartialError means the header exists but only Created of Total lines were
// created. Nothing is rolled back.
type PartialError struct {
	HeaderID uuid.UUID
	Created  int
	Total    int
	Err      error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("создано строк: %d из %d: %v", e.Created, e.Total, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

//go:generate mockgen -source=wizard.go -destination=creators_mock.go -package=wizard

// HeaderCreator creates the header document. resource.Mutations implements it.
type HeaderCreator[P any, H any] interface {
	Create(ctx context.Context, payload P) (*H, error)
}

// ItemCreator creates one line under a header. resource.Items implements it.
type ItemCreator[P any, I any] interface {
	Create(ctx context.Context, headerID uuid.UUID, payload P) (*I, error)
}

func incomplete(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(fields, ", "))
}

// callContext bounds one request. A zero timeout leaves only ctx's deadline.
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}

// submit creates the header unless progress says it exists, then the lines not
// yet created, one at a time. Each request gets its own timeout so a long
// document is not cut short by a single shared deadline.
func submit[HP any, H resource.Entity, IP any, I any](
	ctx context.Context,
	timeout time.Duration,
	p *Progress,
	header HP,
	lines []IP,
	headers HeaderCreator[HP, H],
	items ItemCreator[IP, I],
	logger *slog.Logger,
) (uuid.UUID, error) {
	if !p.Started() {
		callCtx, cancel := callContext(ctx, timeout)
		h, err := headers.Create(callCtx, header)
		cancel()

		if err != nil {
			return uuid.Nil, err
		}

		if h == nil || (*h).EntityID() == uuid.Nil {
			return uuid.Nil, errors.New("server returned the document without an id")
		}

		p.HeaderID = (*h).EntityID()
		p.Created = 0
	}

	for i := p.Created; i < len(lines); i++ {
		callCtx, cancel := callContext(ctx, timeout)
		_, err := items.Create(callCtx, p.HeaderID, lines[i])
		cancel()

		if err != nil {
			logger.Error("wizard submit stopped", "header_id", p.HeaderID, "created", p.Created, "total", len(lines), "error", err)

			return p.HeaderID, &PartialError{HeaderID: p.HeaderID, Created: p.Created, Total: len(lines), Err: err}
		}

		p.Created++
	}

	return p.HeaderID, nil
}
