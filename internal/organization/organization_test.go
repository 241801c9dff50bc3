package organization_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/organization"
	"github.com/MrJamesThe3rd/procura/internal/project"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
)

func deps(t *testing.T, srv *apitest.Server) resource.Deps {
	t.Helper()

	return resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(10, time.Minute), nil),
	}
}

func TestHandle_ByRole(t *testing.T) {
	srv := apitest.New(t)
	srv.RespondList("/api/v1/organizations", []organization.Organization{
		{ID: uuid.New(), Name: "ООО «СтройМонтаж»", INN: "7701234567", Roles: []organization.Role{organization.RoleContractor}},
	}, 1)

	h := organization.NewHandle(deps(t, srv))

	got, err := h.ByRole(context.Background(), organization.RoleContractor, "строй")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ООО «СтройМонтаж» (ИНН 7701234567)", got[0].String())

	// Different role is a different cache entry.
	_, err = h.ByRole(context.Background(), organization.RoleSupplier, "строй")
	require.NoError(t, err)

	calls := srv.CallsTo(http.MethodGet, "/api/v1/organizations")
	require.Len(t, calls, 2)
	assert.Equal(t, "contractor", calls[0].Query.Get("role"))
	assert.Equal(t, "строй", calls[0].Query.Get("search"))
	assert.Equal(t, "supplier", calls[1].Query.Get("role"))
}

func TestProject_Active(t *testing.T) {
	srv := apitest.New(t)
	srv.RespondList("/api/v1/projects", []project.Project{{ID: uuid.New(), Code: "ЖК-12", Name: "Жилой комплекс", Active: true}}, 1)

	got, err := project.NewHandle(deps(t, srv)).Active(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ЖК-12 · Жилой комплекс", got[0].String())

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "true", calls[0].Query.Get("is_active"))
}
