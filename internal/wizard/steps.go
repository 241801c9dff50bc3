package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/drafts"
)

// advance moves to the next step once the current one validates.
func advance(step *Step, validate func(Step) error) error {
	if *step >= StepReview {
		return nil
	}

	if err := validate(*step); err != nil {
		return err
	}

	*step++

	return nil
}

func retreat(step *Step) {
	if *step > StepSource {
		*step--
	}
}

// validateUpTo checks every step before last, so a wizard restored from a
// draft cannot submit with a hole in it.
func validateUpTo(last Step, validate func(Step) error) error {
	for s := StepSource; s < last; s++ {
		if err := validate(s); err != nil {
			return err
		}
	}

	return nil
}

type lineFields struct {
	name      string
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
}

func checkLines(lines []lineFields, emptyLabel string) []string {
	if len(lines) == 0 {
		return []string{emptyLabel}
	}

	var missing []string

	for i, l := range lines {
		if l.name == "" {
			missing = append(missing, fmt.Sprintf("строка %d: наименование", i+1))
		}

		if !l.quantity.IsPositive() {
			missing = append(missing, fmt.Sprintf("строка %d: количество", i+1))
		}

		if l.unitPrice.IsNegative() {
			missing = append(missing, fmt.Sprintf("строка %d: цена", i+1))
		}
	}

	return missing
}

type draftMeta struct {
	id       *uuid.UUID
	kind     drafts.Kind
	title    string
	step     Step
	progress Progress
}

func saveDraft(ctx context.Context, svc *drafts.Service, meta draftMeta, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding %s draft: %w", meta.kind, err)
	}

	d := &drafts.Draft{
		ID:       *meta.id,
		Kind:     meta.kind,
		Title:    meta.title,
		Step:     int(meta.step),
		Payload:  payload,
		HeaderID: meta.progress.HeaderID,
		Created:  meta.progress.Created,
	}

	if err := svc.Save(ctx, d); err != nil {
		return fmt.Errorf("saving %s draft: %w", meta.kind, err)
	}

	*meta.id = d.ID

	return nil
}

func restoreDraft(d *drafts.Draft, kind drafts.Kind, state any) error {
	if d.Kind != kind {
		return fmt.Errorf("draft %s is a %s, not a %s", d.ID, d.Kind, kind)
	}

	if err := json.Unmarshal(d.Payload, state); err != nil {
		return fmt.Errorf("decoding %s draft: %w", kind, err)
	}

	return nil
}

func clampStep(n int) Step {
	return min(max(Step(n), StepSource), StepReview)
}
