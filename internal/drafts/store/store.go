package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/procura/internal/database"
	"github.com/MrJamesThe3rd/procura/internal/drafts"
)

const schema = `
	CREATE TABLE IF NOT EXISTS wizard_drafts (
		id            TEXT PRIMARY KEY,
		kind          TEXT NOT NULL,
		title         TEXT NOT NULL,
		step          INTEGER NOT NULL,
		payload       TEXT NOT NULL,
		header_id     TEXT NOT NULL DEFAULT '',
		created_count INTEGER NOT NULL DEFAULT 0,
		created_at    BIGINT NOT NULL,
		updated_at    BIGINT NOT NULL
	)`

// Store keeps drafts in SQLite or PostgreSQL. Ids are stored as text and
// times as unix milliseconds so one schema serves both.
type Store struct {
	db     *sql.DB
	driver string
}

// New creates the table when missing.
func New(ctx context.Context, db *sql.DB, driver string) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating drafts table: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// rebind turns ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != database.DriverPostgres {
		return query
	}

	var b strings.Builder

	n := 0

	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, kind, title, step, payload, header_id, created_count, created_at, updated_at
func scanDraft(s scanner) (*drafts.Draft, error) {
	var (
		d                    drafts.Draft
		id, kind, headerID   string
		payload              string
		createdAt, updatedAt int64
	)

	if err := s.Scan(&id, &kind, &d.Title, &d.Step, &payload, &headerID, &d.Created, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error

	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing draft id %q: %w", id, err)
	}

	if headerID != "" {
		if d.HeaderID, err = uuid.Parse(headerID); err != nil {
			return nil, fmt.Errorf("parsing header id %q: %w", headerID, err)
		}
	}

	d.Kind = drafts.Kind(kind)
	d.Payload = []byte(payload)
	d.CreatedAt = time.UnixMilli(createdAt).UTC()
	d.UpdatedAt = time.UnixMilli(updatedAt).UTC()

	return &d, nil
}

const selectColumns = `id, kind, title, step, payload, header_id, created_count, created_at, updated_at`

func (s *Store) Upsert(ctx context.Context, d *drafts.Draft) error {
	query := s.rebind(`
		INSERT INTO wizard_drafts (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			step = excluded.step,
			payload = excluded.payload,
			header_id = excluded.header_id,
			created_count = excluded.created_count,
			updated_at = excluded.updated_at
	`)

	headerID := ""
	if d.Started() {
		headerID = d.HeaderID.String()
	}

	_, err := s.db.ExecContext(ctx, query,
		d.ID.String(),
		string(d.Kind),
		d.Title,
		d.Step,
		string(d.Payload),
		headerID,
		d.Created,
		d.CreatedAt.UnixMilli(),
		d.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*drafts.Draft, error) {
	query := s.rebind(`SELECT ` + selectColumns + ` FROM wizard_drafts WHERE id = ?`)

	d, err := scanDraft(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, drafts.ErrNotFound
		}

		return nil, fmt.Errorf("getting draft: %w", err)
	}

	return d, nil
}

func (s *Store) List(ctx context.Context, kind drafts.Kind) ([]*drafts.Draft, error) {
	query := `SELECT ` + selectColumns + ` FROM wizard_drafts`

	var args []any

	if kind != "" {
		query += ` WHERE kind = ?`

		args = append(args, string(kind))
	}

	query += ` ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var out []*drafts.Draft

	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}

		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM wizard_drafts WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return drafts.ErrNotFound
	}

	return nil
}
