package view

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/organization"
	"github.com/MrJamesThe3rd/procura/internal/request"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/wizard"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

// wizLine is a wizard line as the lines step shows it.
type wizLine struct {
	section  string
	name     string
	unit     string
	quantity decimal.Decimal
	price    decimal.Decimal
}

// flow adapts one creation wizard to WizardModel. Implementations hold the
// wizard by pointer; forms bind straight to its fields.
type flow interface {
	kind() string
	step() wizard.Step
	stepTitle() string

	// sourceForm offers the documents a new one can be raised from.
	sourceForm(ctx context.Context) (*huh.Form, error)
	selectSource(ctx context.Context) error
	detailsForm(ctx context.Context) (*huh.Form, error)
	applyDetails() error

	lines() []wizLine
	setLine(i int, quantity, price decimal.Decimal) error
	removeLine(i int) error

	next() error
	back()
	review() []docField
	total() decimal.Decimal
	started() bool

	// snapshot copies the wizard so a command can submit or save it off the
	// UI goroutine. Results come back through setProgress and setDraftID.
	snapshot() flow
	progress() wizard.Progress
	setProgress(p wizard.Progress)
	draftID() uuid.UUID
	setDraftID(id uuid.UUID)

	submit(ctx context.Context, timeout time.Duration) (uuid.UUID, error)
	saveDraft(ctx context.Context) error
	dropDraft(ctx context.Context) error
	open(id uuid.UUID) View
}

// estimateFlow

type estimateFlow struct {
	svc *Services
	w   *wizard.Estimate

	source      uuid.UUID
	contractors map[uuid.UUID]string
}

func (f *estimateFlow) kind() string           { return "Новая смета" }
func (f *estimateFlow) step() wizard.Step      { return f.w.Step }
func (f *estimateFlow) stepTitle() string      { return f.w.StepTitle() }
func (f *estimateFlow) next() error            { return f.w.Next() }
func (f *estimateFlow) back()                  { f.w.Back() }
func (f *estimateFlow) total() decimal.Decimal { return f.w.Total() }
func (f *estimateFlow) started() bool          { return f.w.Progress.Started() }
func (f *estimateFlow) open(id uuid.UUID) View { return newEstimateDocument(f.svc, id) }

func (f *estimateFlow) sourceForm(ctx context.Context) (*huh.Form, error) {
	page, err := f.svc.BOQs.Queries.List(ctx, f.w.ProjectID, resource.Filter{Status: workflow.StatusApproved})
	if err != nil {
		return nil, err
	}

	if len(page.Items) == 0 {
		return nil, fmt.Errorf("утверждённые ВОР: %w", errNoOptions)
	}

	opts := make([]huh.Option[uuid.UUID], len(page.Items))
	for i, b := range page.Items {
		opts[i] = huh.NewOption(fmt.Sprintf("%s %s (%s)", b.Number, b.Title, FormatNullMoney(b.Total)), b.ID)
	}

	f.source = f.w.BOQID

	return huh.NewForm(huh.NewGroup(
		selectID("Ведомость объёмов работ", opts, &f.source),
	)), nil
}

func (f *estimateFlow) selectSource(ctx context.Context) error {
	if f.source == f.w.BOQID && len(f.w.Lines) > 0 {
		return nil
	}

	b, items, err := f.svc.BOQs.Load(ctx, f.source)
	if err != nil {
		return err
	}

	return f.w.SelectBOQ(b, items)
}

func (f *estimateFlow) detailsForm(ctx context.Context) (*huh.Form, error) {
	orgs, err := f.svc.Organizations.ByRole(ctx, organization.RoleContractor, "")
	if err != nil {
		return nil, err
	}

	if len(orgs) == 0 {
		return nil, fmt.Errorf("подрядчики: %w", errNoOptions)
	}

	f.contractors = make(map[uuid.UUID]string, len(orgs))
	opts := make([]huh.Option[uuid.UUID], len(orgs))

	for i, o := range orgs {
		f.contractors[o.ID] = o.Name
		opts[i] = huh.NewOption(o.String(), o.ID)
	}

	return huh.NewForm(huh.NewGroup(
		selectID("Подрядчик", opts, &f.w.ContractorID),
		huh.NewInput().Title("Наименование сметы").Value(&f.w.Title).Validate(required("наименование")),
		huh.NewText().Title("Примечание").Value(&f.w.Notes),
	)), nil
}

func (f *estimateFlow) applyDetails() error {
	f.w.ContractorName = f.contractors[f.w.ContractorID]
	return nil
}

func (f *estimateFlow) lines() []wizLine {
	out := make([]wizLine, len(f.w.Lines))
	for i, l := range f.w.Lines {
		out[i] = wizLine{section: l.Section, name: l.Name, unit: l.Unit, quantity: l.Quantity, price: l.UnitPrice}
	}

	return out
}

func (f *estimateFlow) setLine(i int, quantity, price decimal.Decimal) error {
	lines := append(f.w.Lines[:0:0], f.w.Lines...)
	lines[i].Quantity = quantity
	lines[i].UnitPrice = price

	return f.w.SetLines(lines)
}

func (f *estimateFlow) removeLine(i int) error {
	lines := append(f.w.Lines[:i:i], f.w.Lines[i+1:]...)
	return f.w.SetLines(lines)
}

func (f *estimateFlow) review() []docField {
	return []docField{
		{"ВОР", f.w.BOQTitle},
		{"Подрядчик", f.w.ContractorName},
		{"Наименование", f.w.Title},
		{"Примечание", f.w.Notes},
		{"Строк", fmt.Sprint(len(f.w.Lines))},
	}
}

func (f *estimateFlow) snapshot() flow {
	w := *f.w
	w.Lines = slices.Clone(f.w.Lines)

	return &estimateFlow{svc: f.svc, w: &w}
}

func (f *estimateFlow) progress() wizard.Progress     { return f.w.Progress }
func (f *estimateFlow) setProgress(p wizard.Progress) { f.w.Progress = p }
func (f *estimateFlow) draftID() uuid.UUID            { return f.w.DraftID }
func (f *estimateFlow) setDraftID(id uuid.UUID)       { f.w.DraftID = id }

func (f *estimateFlow) submit(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	return f.w.Submit(ctx, timeout, f.svc.Estimates.Mutations, f.svc.Estimates.Items)
}

func (f *estimateFlow) saveDraft(ctx context.Context) error {
	return f.w.SaveDraft(ctx, f.svc.Drafts)
}

func (f *estimateFlow) dropDraft(ctx context.Context) error {
	if f.w.DraftID == uuid.Nil {
		return nil
	}

	return f.svc.Drafts.Delete(ctx, f.w.DraftID)
}

// requestFlow

type requestFlow struct {
	svc *Services
	w   *wizard.Request

	source   uuid.UUID
	neededBy string
}

func (f *requestFlow) kind() string           { return "Новая заявка" }
func (f *requestFlow) step() wizard.Step      { return f.w.Step }
func (f *requestFlow) stepTitle() string      { return f.w.StepTitle() }
func (f *requestFlow) next() error            { return f.w.Next() }
func (f *requestFlow) back()                  { f.w.Back() }
func (f *requestFlow) total() decimal.Decimal { return f.w.Total() }
func (f *requestFlow) started() bool          { return f.w.Progress.Started() }
func (f *requestFlow) open(id uuid.UUID) View { return newRequestDocument(f.svc, id) }

func (f *requestFlow) sourceForm(ctx context.Context) (*huh.Form, error) {
	estimates, err := f.svc.Estimates.Approved(ctx, f.w.ProjectID)
	if err != nil {
		return nil, err
	}

	if len(estimates) == 0 {
		return nil, fmt.Errorf("утверждённые сметы: %w", errNoOptions)
	}

	opts := make([]huh.Option[uuid.UUID], len(estimates))
	for i, e := range estimates {
		opts[i] = huh.NewOption(fmt.Sprintf("%s %s (%s)", e.Number, e.Title, FormatNullMoney(e.Total)), e.ID)
	}

	f.source = f.w.EstimateID

	return huh.NewForm(huh.NewGroup(
		selectID("Смета", opts, &f.source),
	)), nil
}

func (f *requestFlow) selectSource(ctx context.Context) error {
	if f.source == f.w.EstimateID && len(f.w.Lines) > 0 {
		return nil
	}

	e, err := f.svc.Estimates.Queries.Get(ctx, f.source)
	if err != nil {
		return err
	}

	items, err := f.svc.Estimates.Items.List(ctx, f.source)
	if err != nil {
		return err
	}

	return f.w.SelectEstimate(e, items)
}

func (f *requestFlow) detailsForm(context.Context) (*huh.Form, error) {
	opts := make([]huh.Option[request.FundingType], len(request.FundingTypes))
	for i, ft := range request.FundingTypes {
		opts[i] = huh.NewOption(ft.Label(), ft)
	}

	f.neededBy = f.w.NeededBy.String()

	return huh.NewForm(huh.NewGroup(
		huh.NewSelect[request.FundingType]().Title("Источник финансирования").Options(opts...).Value(&f.w.FundingType),
		huh.NewInput().Title("Срок поставки").Placeholder("ДД.ММ.ГГГГ").Value(&f.neededBy).Validate(validDate),
		huh.NewText().Title("Примечание").Value(&f.w.Notes),
	)), nil
}

func (f *requestFlow) applyDetails() error {
	d, err := document.ParseDate(strings.TrimSpace(f.neededBy))
	if err != nil {
		return err
	}

	f.w.NeededBy = d

	return nil
}

func (f *requestFlow) lines() []wizLine {
	out := make([]wizLine, len(f.w.Lines))
	for i, l := range f.w.Lines {
		out[i] = wizLine{section: l.Section, name: l.Name, unit: l.Unit, quantity: l.Quantity, price: l.UnitPrice}
	}

	return out
}

func (f *requestFlow) setLine(i int, quantity, price decimal.Decimal) error {
	lines := append(f.w.Lines[:0:0], f.w.Lines...)
	lines[i].Quantity = quantity
	lines[i].UnitPrice = price

	return f.w.SetLines(lines)
}

func (f *requestFlow) removeLine(i int) error {
	lines := append(f.w.Lines[:i:i], f.w.Lines[i+1:]...)
	return f.w.SetLines(lines)
}

func (f *requestFlow) review() []docField {
	return []docField{
		{"Смета", f.w.EstimateTitle},
		{"Финансирование", f.w.FundingType.Label()},
		{"Срок поставки", f.w.NeededBy.String()},
		{"Примечание", f.w.Notes},
		{"Позиций", fmt.Sprint(len(f.w.Lines))},
	}
}

func (f *requestFlow) snapshot() flow {
	w := *f.w
	w.Lines = slices.Clone(f.w.Lines)

	return &requestFlow{svc: f.svc, w: &w}
}

func (f *requestFlow) progress() wizard.Progress     { return f.w.Progress }
func (f *requestFlow) setProgress(p wizard.Progress) { f.w.Progress = p }
func (f *requestFlow) draftID() uuid.UUID            { return f.w.DraftID }
func (f *requestFlow) setDraftID(id uuid.UUID)       { f.w.DraftID = id }

func (f *requestFlow) submit(ctx context.Context, timeout time.Duration) (uuid.UUID, error) {
	return f.w.Submit(ctx, timeout, f.svc.Requests.Mutations, f.svc.Requests.Items)
}

func (f *requestFlow) saveDraft(ctx context.Context) error {
	return f.w.SaveDraft(ctx, f.svc.Drafts)
}

func (f *requestFlow) dropDraft(ctx context.Context) error {
	if f.w.DraftID == uuid.Nil {
		return nil
	}

	return f.svc.Drafts.Delete(ctx, f.w.DraftID)
}
