package drafts_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/procura/internal/drafts"
)

func TestService_Save(t *testing.T) {
	type testCase struct {
		name    string
		draft   drafts.Draft
		wantErr bool
		check   func(t *testing.T, d *drafts.Draft)
	}

	existing := uuid.New()

	tests := []testCase{
		{
			name:  "NewDraftGetsIDAndTimes",
			draft: drafts.Draft{Kind: drafts.KindEstimate, Title: "Смета на кровлю"},
			check: func(t *testing.T, d *drafts.Draft) {
				assert.NotEqual(t, uuid.Nil, d.ID)
				assert.False(t, d.CreatedAt.IsZero())
				assert.Equal(t, d.CreatedAt, d.UpdatedAt)
				assert.JSONEq(t, `{}`, string(d.Payload))
			},
		},
		{
			name:  "ExistingKeepsID",
			draft: drafts.Draft{ID: existing, Kind: drafts.KindRequest, Payload: []byte(`{"step":2}`)},
			check: func(t *testing.T, d *drafts.Draft) {
				assert.Equal(t, existing, d.ID)
				assert.JSONEq(t, `{"step":2}`, string(d.Payload))
			},
		},
		{
			name:    "KindRequired",
			draft:   drafts.Draft{Title: "без типа"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := drafts.NewMockRepository(ctrl)

			if !tt.wantErr {
				repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
			}

			d := tt.draft
			err := drafts.NewService(repo).Save(context.Background(), &d)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, &d)
		})
	}
}

func TestService_Get_NilID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := drafts.NewMockRepository(ctrl)

	_, err := drafts.NewService(repo).Get(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, drafts.ErrNotFound)
}
