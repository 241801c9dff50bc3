package boq

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
)

var Endpoint = resource.Endpoint{
	Kind:     "boq",
	Resource: "boqs",
	Parent:   "projects",
	Items:    "items",
	Fallbacks: resource.Fallbacks{
		Get:    "Не удалось загрузить ВОР",
		List:   "Не удалось загрузить список ВОР",
		Create: "Не удалось создать ВОР",
	},
}

// Handle bundles the queries and mutations of bills of quantities.
type Handle struct {
	Queries   *resource.Queries[BOQ]
	Mutations *resource.Mutations[BOQ, CreateParams, UpdateParams]
	Items     *resource.Items[Item, ItemParams, ItemUpdate]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:   resource.NewQueries[BOQ](Endpoint, deps),
		Mutations: resource.NewMutations[BOQ, CreateParams, UpdateParams](Endpoint, Workflow, deps),
		Items:     resource.NewItems[Item, ItemParams, ItemUpdate](Endpoint, deps),
	}
}

// ImportResult reports a bulk item import. Lines are created one by one; on
// failure Created says how many made it.
type ImportResult struct {
	Created int
	Total   int
}

// AddItems creates items in order, stopping at the first failure. The BOQ
// must be editable.
func (h *Handle) AddItems(ctx context.Context, b *BOQ, items []ItemParams) (ImportResult, error) {
	res := ImportResult{Total: len(items)}

	if !Workflow.IsEditable(b.Status) {
		return res, fmt.Errorf("boq %s is %s: %w", b.Number, b.Status, document.ErrNotEditable)
	}

	for i, it := range items {
		if _, err := h.Items.Create(ctx, b.ID, it); err != nil {
			return res, fmt.Errorf("creating item %d of %d: %w", i+1, len(items), err)
		}

		res.Created++
	}

	return res, nil
}

func (h *Handle) Load(ctx context.Context, id uuid.UUID) (*BOQ, []Item, error) {
	b, err := h.Queries.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	items, err := h.Items.List(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return b, items, nil
}
