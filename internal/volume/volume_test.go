package volume_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/apitest"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/querycache"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/volume"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func newHandle(t *testing.T, srv *apitest.Server, role workflow.Role) *volume.Handle {
	t.Helper()

	return volume.NewHandle(resource.Deps{
		API:    srv.Client(t),
		Loader: querycache.NewLoader(querycache.NewStore(10, time.Minute), nil),
		Role:   role,
	})
}

func TestWorkflow_Valid(t *testing.T) {
	require.NoError(t, volume.Workflow.Validate())
}

func TestWorkflow_VerifyBeforeApprove(t *testing.T) {
	type testCase struct {
		name   string
		status workflow.Status
		role   workflow.Role
		want   []workflow.Action
	}

	tests := []testCase{
		{name: "ReviewEngineer", status: workflow.StatusReview, role: workflow.RoleEngineer, want: []workflow.Action{workflow.ActionVerify, workflow.ActionReject}},
		{name: "ReviewManager", status: workflow.StatusReview, role: workflow.RoleManager, want: []workflow.Action{workflow.ActionReject}},
		{name: "VerifiedManager", status: workflow.StatusVerified, role: workflow.RoleManager, want: []workflow.Action{workflow.ActionApprove, workflow.ActionReject}},
		{name: "VerifiedEngineer", status: workflow.StatusVerified, role: workflow.RoleEngineer, want: []workflow.Action{workflow.ActionReject}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []workflow.Action
			for _, tr := range volume.Workflow.Available(tt.status, tt.role) {
				got = append(got, tr.Action)
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkflow_ApprovedBadge(t *testing.T) {
	assert.Equal(t, "В производство работ", volume.Workflow.Badge(workflow.StatusApproved).Label)
}

func TestHandle_Upload(t *testing.T) {
	projectID := uuid.New()
	srv := apitest.New(t)

	var (
		fields   map[string]string
		fileName string
		content  string
	)

	srv.Handle(http.MethodPost, "/api/v1/volumes", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()

		data, _ := io.ReadAll(f)
		content = string(data)
		fileName = hdr.Filename

		apitest.WriteEnvelope(w, http.StatusCreated, map[string]any{"data": volume.Volume{
			Header: document.Header{ID: uuid.New(), ProjectID: projectID, Status: workflow.StatusDraft},
			Code:   "КЖ-1",
		}})
	})

	got, err := newHandle(t, srv, workflow.RoleEngineer).Upload(context.Background(), volume.UploadParams{
		ProjectID:  projectID,
		Code:       "КЖ-1",
		Title:      "Конструкции железобетонные",
		Discipline: "КЖ",
		Revision:   2,
		FileName:   "kzh-1.pdf",
		File:       strings.NewReader("%PDF-1.7"),
	})
	require.NoError(t, err)

	assert.Equal(t, "КЖ-1", got.Code)
	assert.Equal(t, "kzh-1.pdf", fileName)
	assert.Equal(t, "%PDF-1.7", content)
	assert.Equal(t, map[string]string{
		"project_id": projectID.String(),
		"code":       "КЖ-1",
		"title":      "Конструкции железобетонные",
		"discipline": "КЖ",
		"revision":   "2",
	}, fields)
}

func TestHandle_Upload_RequiresFile(t *testing.T) {
	srv := apitest.New(t)

	_, err := newHandle(t, srv, workflow.RoleEngineer).Upload(context.Background(), volume.UploadParams{ProjectID: uuid.New()})
	assert.ErrorIs(t, err, volume.ErrNoFile)
	assert.Empty(t, srv.Calls())
}

func TestHandle_Verify(t *testing.T) {
	id := uuid.New()
	srv := apitest.New(t)
	srv.Respond(http.MethodPost, "/api/v1/volumes/{id}/verify", http.StatusOK, volume.Volume{Header: document.Header{ID: id, Status: workflow.StatusVerified}})

	got, err := newHandle(t, srv, workflow.RoleEngineer).Mutations.Transition(context.Background(),
		volume.Volume{Header: document.Header{ID: id, Status: workflow.StatusReview}}, workflow.ActionVerify, "Замечаний нет")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusVerified, got.Status)

	calls := srv.Calls()
	require.Len(t, calls, 1)

	var body map[string]string
	calls[0].DecodeJSON(t, &body)
	assert.Equal(t, map[string]string{"comment": "Замечаний нет"}, body)
}
