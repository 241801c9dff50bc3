// Package material is the materials catalogue used when pricing lines.
package material

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/procura/internal/resource"
)

type Material struct {
	ID       uuid.UUID           `json:"id"`
	Code     string              `json:"code,omitempty"`
	Name     string              `json:"name"`
	Unit     string              `json:"unit"`
	Category string              `json:"category,omitempty"`
	Price    decimal.NullDecimal `json:"price"`
}

// MinSearchLen is the shortest query sent to the server.
const MinSearchLen = 2

var Endpoint = resource.Endpoint{
	Kind:     "material",
	Resource: "materials",
	Fallbacks: resource.Fallbacks{
		List: "Не удалось выполнить поиск материалов",
	},
}

type Handle struct {
	Queries *resource.Queries[Material]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{Queries: resource.NewQueries[Material](Endpoint, deps)}
}

// Search queries the catalogue. Text shorter than MinSearchLen returns nothing
// without a request.
func (h *Handle) Search(ctx context.Context, text string, limit int) ([]Material, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinSearchLen {
		return nil, nil
	}

	page, err := h.Queries.List(ctx, uuid.Nil, resource.Filter{Search: text, Limit: limit})
	if err != nil {
		return nil, err
	}

	return page.Items, nil
}
