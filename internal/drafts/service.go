package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=drafts
type Repository interface {
	Upsert(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)
	List(ctx context.Context, kind Kind) ([]*Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Save inserts a new draft or replaces the one with the same id. A new draft
// gets its id and creation time here.
func (s *Service) Save(ctx context.Context, d *Draft) error {
	if d.Kind == "" {
		return errors.New("draft kind is required")
	}

	now := s.now().UTC().Truncate(time.Millisecond)

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}

	d.UpdatedAt = now

	if len(d.Payload) == 0 {
		d.Payload = []byte("{}")
	}

	return s.repo.Upsert(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Draft, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}

	return s.repo.Get(ctx, id)
}

// List returns drafts newest first. An empty kind lists every draft.
func (s *Service) List(ctx context.Context, kind Kind) ([]*Draft, error) {
	return s.repo.List(ctx, kind)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
