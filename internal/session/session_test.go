package session_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/procura/internal/session"
	"github.com/MrJamesThe3rd/procura/internal/workflow"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	return s
}

func TestFromToken(t *testing.T) {
	exp := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		token   string
		want    session.Session
		wantErr error
	}

	tests := []testCase{
		{
			name:  "ManagerClaims",
			token: sign(t, jwt.MapClaims{"sub": "u-17", "name": "Ирина Волкова", "role": "Manager", "exp": exp.Unix()}),
			want:  session.Session{Subject: "u-17", Name: "Ирина Волкова", Role: workflow.RoleManager, ExpiresAt: exp},
		},
		{
			name:  "BearerPrefixAndEmailFallback",
			token: "Bearer " + sign(t, jwt.MapClaims{"email": "buyer@example.ru", "role": "buyer"}),
			want:  session.Session{Name: "buyer@example.ru", Role: workflow.RoleBuyer},
		},
		{
			name:    "Empty",
			token:   "  ",
			wantErr: session.ErrNoToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := session.FromToken(tt.token)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.Subject, got.Subject)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Role, got.Role)
			assert.True(t, tt.want.ExpiresAt.Equal(got.ExpiresAt))
		})
	}
}

func TestFromToken_Opaque(t *testing.T) {
	_, err := session.FromToken("d41d8cd98f00b204e9800998ecf8427e")
	require.Error(t, err)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	assert.False(t, session.Session{}.Expired(now))
	assert.True(t, session.Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
	assert.False(t, session.Session{ExpiresAt: now.Add(time.Hour)}.Expired(now))
}

func TestSession_String(t *testing.T) {
	assert.Equal(t, "гость", session.Session{}.String())
	assert.Equal(t, "Ирина Волкова (руководитель проекта)", session.Session{Name: "Ирина Волкова", Role: workflow.RoleManager}.String())
}
