package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"qrius/internal/links/models"
)

const uniqueViolation = "23505"

// Postgres persists links.
//
// Expected schema:
//
//	CREATE TABLE links (
//	    id               UUID PRIMARY KEY,
//	    short_code       TEXT NOT NULL UNIQUE,
//	    destination_url  TEXT NOT NULL,
//	    is_active        BOOLEAN NOT NULL,
//	    organization_id  UUID,
//	    password_hash    TEXT,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed link store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const linkColumns = `id, short_code, destination_url, is_active, organization_id, password_hash, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, l *models.Link) error {
	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		l.ID, l.ShortCode, l.DestinationURL, l.IsActive, l.OrganizationID, l.PasswordHash, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (s *Postgres) FindByCode(ctx context.Context, shortCode string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, shortCode))
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *Postgres) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE organization_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(
			&l.ID, &l.ShortCode, &l.DestinationURL, &l.IsActive, &l.OrganizationID, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *Postgres) Update(ctx context.Context, l *models.Link) error {
	query := `
		UPDATE links
		SET destination_url = $2, is_active = $3, password_hash = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		l.ID, l.DestinationURL, l.IsActive, l.PasswordHash, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Link, error) {
	var l models.Link
	err := row.Scan(
		&l.ID, &l.ShortCode, &l.DestinationURL, &l.IsActive, &l.OrganizationID, &l.PasswordHash, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan link: %w", err)
	}
	return &l, nil
}
