package wizard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
	"github.com/MrJamesThe3rd/procura/internal/estimate"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/totals"
)

// Request walks through approved estimate, funding, line selection and review.
type Request struct {
	Step Step `json:"step"`

	ProjectID     uuid.UUID `json:"project_id"`
	EstimateID    uuid.UUID `json:"estimate_id"`
	EstimateTitle string    `json:"estimate_title,omitempty"`

	FundingType request.FundingType `json:"funding_type"`
	NeededBy    document.Date       `json:"needed_by"`
	Notes       string              `json:"notes,omitempty"`

	Lines    []request.ItemParams `json:"lines"`
	Progress Progress             `json:"progress"`

	DraftID uuid.UUID `json:"-"`
}

func NewRequest(projectID uuid.UUID) *Request {
	return &Request{ProjectID: projectID, FundingType: request.FundingOwn}
}

func (w *Request) StepTitle() string {
	switch w.Step {
	case StepSource:
		return "Смета"
	case StepDetails:
		return "Финансирование"
	case StepLines:
		return "Материалы"
	default:
		return "Проверка"
	}
}

// SelectEstimate sets the source estimate and proposes its lines.
func (w *Request) SelectEstimate(e *estimate.Estimate, items []estimate.Item) error {
	if w.Progress.Started() {
		return ErrLocked
	}

	w.EstimateID = e.ID
	w.EstimateTitle = e.Title
	w.Lines = LinesFromEstimate(items)

	return nil
}

func (w *Request) SetLines(lines []request.ItemParams) error {
	if w.Progress.Started() {
		return ErrLocked
	}

	w.Lines = lines

	return nil
}

func LinesFromEstimate(items []estimate.Item) []request.ItemParams {
	out := make([]request.ItemParams, 0, len(items))

	for _, it := range items {
		id := it.ID
		out = append(out, request.ItemParams{
			EstimateItemID: &id,
			Section:        it.Section,
			Name:           it.Name,
			Unit:           it.Unit,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
		})
	}

	return out
}

func (w *Request) Validate(step Step) error {
	var missing []string

	switch step {
	case StepSource:
		if w.ProjectID == uuid.Nil {
			missing = append(missing, "объект")
		}

		if w.EstimateID == uuid.Nil {
			missing = append(missing, "смета")
		}
	case StepDetails:
		if !w.FundingType.Valid() {
			missing = append(missing, "источник финансирования")
		}

		if w.NeededBy.IsZero() {
			missing = append(missing, "срок поставки")
		}
	case StepLines:
		fields := make([]lineFields, len(w.Lines))
		for i, l := range w.Lines {
			fields[i] = lineFields{name: strings.TrimSpace(l.Name), quantity: l.Quantity, unitPrice: l.UnitPrice}
		}

		missing = checkLines(fields, "материалы")
	case StepReview:
		return validateUpTo(StepReview, w.Validate)
	}

	return incomplete(missing...)
}

func (w *Request) Next() error {
	return advance(&w.Step, w.Validate)
}

func (w *Request) Back() {
	retreat(&w.Step)
}

func (w *Request) Header() request.CreateParams {
	return request.CreateParams{
		ProjectID:   w.ProjectID,
		EstimateID:  w.EstimateID,
		FundingType: w.FundingType,
		NeededBy:    w.NeededBy,
		Notes:       w.Notes,
	}
}

func (w *Request) Total() decimal.Decimal {
	lines := make([]totals.Line, len(w.Lines))
	for i, l := range w.Lines {
		lines[i] = totals.Line{Section: l.Section, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}

	return totals.Grand(lines)
}

// Submit creates the purchase request and then its lines in order. After a
// *PartialError, calling Submit again creates only the missing lines.
func (w *Request) Submit(
	ctx context.Context,
	timeout time.Duration,
	headers HeaderCreator[request.CreateParams, request.PurchaseRequest],
	items ItemCreator[request.ItemParams, request.Item],
) (uuid.UUID, error) {
	if w.Step != StepReview {
		return uuid.Nil, ErrNotReady
	}

	if err := w.Validate(StepReview); err != nil {
		return uuid.Nil, err
	}

	return submit(ctx, timeout, &w.Progress, w.Header(), w.Lines, headers, items, slog.Default().With("wizard", drafts.KindRequest))
}

func (w *Request) SaveDraft(ctx context.Context, svc *drafts.Service) error {
	title := "Новая заявка"
	if w.EstimateTitle != "" {
		title = "Заявка по смете «" + w.EstimateTitle + "»"
	}

	return saveDraft(ctx, svc, draftMeta{
		id:       &w.DraftID,
		kind:     drafts.KindRequest,
		title:    title,
		step:     w.Step,
		progress: w.Progress,
	}, w)
}

func RestoreRequest(d *drafts.Draft) (*Request, error) {
	var w Request
	if err := restoreDraft(d, drafts.KindRequest, &w); err != nil {
		return nil, err
	}

	w.DraftID = d.ID
	w.Step = clampStep(d.Step)
	w.Progress = Progress{HeaderID: d.HeaderID, Created: d.Created}

	return &w, nil
}
