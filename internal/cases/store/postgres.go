package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sutura/internal/cases/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

// Postgres persists cases in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed case store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the cases table when absent. Deployments with a
// managed migration pipeline can skip this.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cases (
			id             UUID PRIMARY KEY,
			agent_id       UUID NOT NULL,
			victim_region  TEXT NOT NULL,
			victim_commune TEXT NOT NULL DEFAULT '',
			victim_age     INT NOT NULL DEFAULT 0,
			marital_status TEXT NOT NULL DEFAULT '',
			has_disability BOOLEAN NOT NULL DEFAULT FALSE,
			violence_type  TEXT NOT NULL,
			relationship   TEXT NOT NULL DEFAULT '',
			description    TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			submitted_at   TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS cases_agent_idx ON cases (agent_id);
		CREATE INDEX IF NOT EXISTS cases_region_idx ON cases (victim_region);
	`)
	if err != nil {
		return fmt.Errorf("ensure cases schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, c *models.Case) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, agent_id, victim_region, victim_commune, victim_age,
			marital_status, has_disability, violence_type, relationship,
			description, status, submitted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`,
		uuid.UUID(c.ID), uuid.UUID(c.AgentID), c.VictimRegion, c.VictimCommune, c.VictimAge,
		c.MaritalStatus, c.HasDisability, c.ViolenceType, c.RelationshipToVictim,
		c.Description, string(c.Status), c.SubmittedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create case: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CaseID) (*models.Case, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, agent_id, victim_region, victim_commune, victim_age,
		       marital_status, has_disability, violence_type, relationship,
		       description, status, submitted_at, updated_at
		FROM cases WHERE id = $1
	`, uuid.UUID(id))
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agent_id, victim_region, victim_commune, victim_age,
		       marital_status, has_disability, violence_type, relationship,
		       description, status, submitted_at, updated_at
		FROM cases ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []*models.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return out, nil
}

// Update writes the record only when the persisted status still equals
// expectedStatus. A zero-row update is disambiguated into not-found or
// conflict so the service can re-evaluate the transition.
func (s *Postgres) Update(ctx context.Context, c *models.Case, expectedStatus domain.CaseStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cases SET
			victim_commune = $3, victim_age = $4, marital_status = $5,
			has_disability = $6, violence_type = $7, relationship = $8,
			description = $9, status = $10, updated_at = $11
		WHERE id = $1 AND status = $2
	`,
		uuid.UUID(c.ID), string(expectedStatus),
		c.VictimCommune, c.VictimAge, c.MaritalStatus,
		c.HasDisability, c.ViolenceType, c.RelationshipToVictim,
		c.Description, string(c.Status), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`, uuid.UUID(c.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		if exists {
			return sentinel.ErrConflict
		}
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id domain.CaseID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c         models.Case
		caseID    uuid.UUID
		agentID   uuid.UUID
		status    string
		submitted time.Time
		updated   time.Time
	)
	err := row.Scan(
		&caseID, &agentID, &c.VictimRegion, &c.VictimCommune, &c.VictimAge,
		&c.MaritalStatus, &c.HasDisability, &c.ViolenceType, &c.RelationshipToVictim,
		&c.Description, &status, &submitted, &updated,
	)
	if err != nil {
		return nil, err
	}
	c.ID = domain.CaseID(caseID)
	c.AgentID = domain.ActorID(agentID)
	c.Status = domain.CaseStatus(status)
	c.SubmittedAt = submitted
	c.UpdatedAt = updated
	return &c, nil
}
