package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"qrius/internal/domains/models"
)

// uniqueViolation is the Postgres error code raised when an insert hits the
// one-per-org or global-hostname unique index.
const uniqueViolation = "23505"

// Postgres persists custom domain records.
//
// Expected schema:
//
//	CREATE TABLE custom_domains (
//	    id               UUID PRIMARY KEY,
//	    organization_id  UUID NOT NULL UNIQUE,
//	    domain           TEXT NOT NULL UNIQUE,
//	    type             TEXT NOT NULL,
//	    cname_target     TEXT NOT NULL,
//	    status           TEXT NOT NULL,
//	    verified_at      TIMESTAMPTZ,
//	    last_check_at    TIMESTAMPTZ,
//	    last_check_error TEXT,
//	    created_at       TIMESTAMPTZ NOT NULL,
//	    updated_at       TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed domain store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const domainColumns = `id, organization_id, domain, type, cname_target, status, verified_at, last_check_at, last_check_error, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, d *models.CustomDomain) error {
	query := `
		INSERT INTO custom_domains (` + domainColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.OrganizationID, strings.ToLower(d.Domain), string(d.Type), d.CNAMETarget,
		string(d.Status), d.VerifiedAt, d.LastCheckAt, d.LastCheckError, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

func (s *Postgres) FindByOrg(ctx context.Context, orgID uuid.UUID) (*models.CustomDomain, error) {
	query := `SELECT ` + domainColumns + ` FROM custom_domains WHERE organization_id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, orgID))
}

func (s *Postgres) FindByDomain(ctx context.Context, hostname string) (*models.CustomDomain, error) {
	query := `SELECT ` + domainColumns + ` FROM custom_domains WHERE domain = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, strings.ToLower(hostname)))
}

func (s *Postgres) Update(ctx context.Context, d *models.CustomDomain) error {
	query := `
		UPDATE custom_domains
		SET status = $2, verified_at = $3, last_check_at = $4, last_check_error = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		d.ID, string(d.Status), d.VerifiedAt, d.LastCheckAt, d.LastCheckError, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update domain: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update domain: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM custom_domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.CustomDomain, error) {
	var d models.CustomDomain
	var domainType, status string
	err := row.Scan(
		&d.ID, &d.OrganizationID, &d.Domain, &domainType, &d.CNAMETarget,
		&status, &d.VerifiedAt, &d.LastCheckAt, &d.LastCheckError, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan domain: %w", err)
	}
	d.Type = models.DomainType(domainType)
	d.Status = models.DomainStatus(status)
	return &d, nil
}
