package wizard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/boq"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/totals"
)

// Estimate walks through source BOQ, contractor, line pricing and review.
type Estimate struct {
	Step Step `json:"step"`

	ProjectID uuid.UUID `json:"project_id"`
	BOQID     uuid.UUID `json:"boq_id"`
	BOQTitle  string    `json:"boq_title,omitempty"`

	ContractorID   uuid.UUID `json:"contractor_id"`
	ContractorName string    `json:"contractor_name,omitempty"`
	Title          string    `json:"title"`
	Notes          string    `json:"notes,omitempty"`

	Lines    []estimate.ItemParams `json:"lines"`
	Progress Progress              `json:"progress"`

	DraftID uuid.UUID `json:"-"`
}

func NewEstimate(projectID uuid.UUID) *Estimate {
	return &Estimate{ProjectID: projectID}
}

func (w *Estimate) StepTitle() string {
	switch w.Step {
	case StepSource:
		return "Ведомость объёмов"
	case StepDetails:
		return "Подрядчик"
	case StepLines:
		return "Строки сметы"
	default:
		return "Проверка"
	}
}

// SelectBOQ sets the source and proposes one line per BOQ item at the BOQ
// price. Lines already chosen are replaced.
func (w *Estimate) SelectBOQ(b *boq.BOQ, items []boq.Item) error {
	if w.Progress.Started() {
		return ErrLocked
	}

	w.BOQID = b.ID
	w.BOQTitle = b.Title

	if w.Title == "" {
		w.Title = b.Title
	}

	w.Lines = LinesFromBOQ(items)

	return nil
}

func (w *Estimate) SetLines(lines []estimate.ItemParams) error {
	if w.Progress.Started() {
		return ErrLocked
	}

	w.Lines = lines

	return nil
}

// LinesFromBOQ copies BOQ items into estimate lines linked to their source.
func LinesFromBOQ(items []boq.Item) []estimate.ItemParams {
	out := make([]estimate.ItemParams, 0, len(items))

	for _, it := range items {
		id := it.ID
		out = append(out, estimate.ItemParams{
			BOQItemID: &id,
			Section:   it.Section,
			Name:      it.Name,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	return out
}

func (w *Estimate) Validate(step Step) error {
	var missing []string

	switch step {
	case StepSource:
		if w.ProjectID == uuid.Nil {
			missing = append(missing, "объект")
		}

		if w.BOQID == uuid.Nil {
			missing = append(missing, "ведомость объёмов")
		}
	case StepDetails:
		if w.ContractorID == uuid.Nil {
			missing = append(missing, "подрядчик")
		}

		if strings.TrimSpace(w.Title) == "" {
			missing = append(missing, "наименование")
		}
	case StepLines:
		fields := make([]lineFields, len(w.Lines))
		for i, l := range w.Lines {
			fields[i] = lineFields{name: strings.TrimSpace(l.Name), quantity: l.Quantity, unitPrice: l.UnitPrice}
		}

		missing = checkLines(fields, "строки сметы")
	case StepReview:
		return validateUpTo(StepReview, w.Validate)
	}

	return incomplete(missing...)
}

func (w *Estimate) Next() error {
	return advance(&w.Step, w.Validate)
}

func (w *Estimate) Back() {
	retreat(&w.Step)
}

func (w *Estimate) Header() estimate.CreateParams {
	return estimate.CreateParams{
		ProjectID:    w.ProjectID,
		BOQID:        w.BOQID,
		ContractorID: w.ContractorID,
		Title:        strings.TrimSpace(w.Title),
		Notes:        w.Notes,
	}
}

// Total is the display total of the selected lines.
func (w *Estimate) Total() decimal.Decimal {
	lines := make([]totals.Line, len(w.Lines))
	for i, l := range w.Lines {
		lines[i] = totals.Line{Section: l.Section, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	return totals.Grand(lines)
}

// Submit creates the estimate and then its lines in order. After a
// *PartialError, calling Submit again creates only the missing lines.
func (w *Estimate) Submit(
	ctx context.Context,
	timeout time.Duration,
	headers HeaderCreator[estimate.CreateParams, estimate.Estimate],
	items ItemCreator[estimate.ItemParams, estimate.Item],
) (uuid.UUID, error) {
	if w.Step != StepReview {
		return uuid.Nil, ErrNotReady
	}

	if err := w.Validate(StepReview); err != nil {
		return uuid.Nil, err
	}

	return submit(ctx, timeout, &w.Progress, w.Header(), w.Lines, headers, items, slog.Default().With("wizard", drafts.KindEstimate))
}

func (w *Estimate) SaveDraft(ctx context.Context, svc *drafts.Service) error {
	title := strings.TrimSpace(w.Title)
	if title == "" {
		title = "Новая смета"
	}

	return saveDraft(ctx, svc, draftMeta{
		id:       &w.DraftID,
		kind:     drafts.KindEstimate,
		title:    title,
		step:     w.Step,
		progress: w.Progress,
	}, w)
}

// RestoreEstimate rebuilds a wizard from a saved draft. The draft's progress
// columns win over the payload.
func RestoreEstimate(d *drafts.Draft) (*Estimate, error) {
	var w Estimate
	if err := restoreDraft(d, drafts.KindEstimate, &w); err != nil {
		return nil, err
	}

	w.DraftID = d.ID
	w.Step = clampStep(d.Step)
	w.Progress = Progress{HeaderID: d.HeaderID, Created: d.Created}

	return &w, nil
}
