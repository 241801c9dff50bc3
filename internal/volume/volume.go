// Package volume is a working-documentation volume (Том РД): an uploaded file
// that is verified by engineering and then approved.
package volume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/apiclient"
	"github.com/MrJamesThe3rd/procura/internal/document"
	"github.com/MrJamesThe3rd/procura/internal/resource"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

type Volume struct {
	document.Header
	Code       string     `json:"code"`
	Title      string     `json:"title"`
	Discipline string     `json:"discipline,omitempty"`
	FileName   string     `json:"file_name,omitempty"`
	FileURL    string     `json:"file_url,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// UploadParams carries the metadata and the file of a new volume or a new
// revision of an existing one.
type UploadParams struct {
	ProjectID  uuid.UUID
	Code       string
	Title      string
	Discipline string
	Revision   int
	FileName   string
	File       io.Reader
}

type UpdateParams struct {
	Title      *string `json:"title,omitempty"`
	Discipline *string `json:"discipline,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

var ErrNoFile = errors.New("volume file is required")

var Workflow = &workflow.Machine{
	Kind:     "volume",
	Initial:  workflow.StatusDraft,
	States:   []workflow.Status{workflow.StatusDraft, workflow.StatusReview, workflow.StatusVerified, workflow.StatusApproved, workflow.StatusArchived},
	Editable: []workflow.Status{workflow.StatusDraft, workflow.StatusReview},
	Terminal: []workflow.Status{workflow.StatusArchived},
	Badges: map[workflow.Status]workflow.Badge{
		workflow.StatusApproved: {Label: "В производство работ", Color: workflow.ColorGreen},
	},
	Transitions: []workflow.Transition{
		workflow.Submit(workflow.ModeStatusPatch),
		{
			Action: workflow.ActionVerify,
			Label:  "Проверено",
			From:   []workflow.Status{workflow.StatusReview},
			To:     workflow.StatusVerified,
			Mode:   workflow.ModeEndpoint,
			Roles:  []workflow.Role{workflow.RoleEngineer},
		},
		workflow.Approve(workflow.StatusVerified, workflow.StatusApproved, workflow.RoleManager),
		workflow.Reject(workflow.StatusReview, workflow.StatusVerified),
		workflow.Archive(workflow.StatusApproved),
	},
}

var Endpoint = resource.Endpoint{
	Kind:     "volume",
	Resource: "volumes",
	Parent:   "projects",
	Fallbacks: resource.Fallbacks{
		Get:    "Не удалось загрузить том РД",
		List:   "Не удалось загрузить тома РД",
		Create: "Не удалось загрузить файл тома",
	},
}

type Handle struct {
	Queries   *resource.Queries[Volume]
	Mutations *resource.Mutations[Volume, UploadParams, UpdateParams]
}

func NewHandle(deps resource.Deps) *Handle {
	return &Handle{
		Queries:   resource.NewQueries[Volume](Endpoint, deps),
		Mutations: resource.NewMutations[Volume, UploadParams, UpdateParams](Endpoint, Workflow, deps),
	}
}

// Upload creates a volume from a file as multipart/form-data.
func (h *Handle) Upload(ctx context.Context, p UploadParams) (*Volume, error) {
	if p.File == nil || p.FileName == "" {
		return nil, ErrNoFile
	}

	if p.ProjectID == uuid.Nil {
		return nil, fmt.Errorf("uploading volume %s: %w", p.Code, resource.ErrNotFound)
	}

	fields := map[string]string{
		"project_id": p.ProjectID.String(),
		"code":       p.Code,
		"title":      p.Title,
	}

	if p.Discipline != "" {
		fields["discipline"] = p.Discipline
	}

	if p.Revision > 0 {
		fields["revision"] = strconv.Itoa(p.Revision)
	}

	return h.Mutations.CreateMultipart(ctx, &apiclient.Multipart{
		Fields:    fields,
		FileField: "file",
		FileName:  p.FileName,
		File:      p.File,
	})
}
