package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sutura/internal/tasks/models"
	"sutura/pkg/domain"
	"sutura/pkg/platform/sentinel"
)

// Postgres persists tasks in PostgreSQL. Participants are stored as a
// UUID array on the row since they are read and written as a unit.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed task store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the tasks table when absent.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id              UUID PRIMARY KEY,
			created_by      UUID NOT NULL,
			creator_role    TEXT NOT NULL,
			assigned_to     UUID NOT NULL,
			participants    UUID[] NOT NULL DEFAULT '{}',
			region          TEXT NOT NULL DEFAULT '',
			title           TEXT NOT NULL,
			notes           TEXT NOT NULL DEFAULT '',
			status          TEXT NOT NULL,
			priority        TEXT NOT NULL,
			due_date        TEXT NOT NULL DEFAULT '',
			due_time        TEXT NOT NULL DEFAULT '',
			related_case_id UUID,
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS tasks_assigned_idx ON tasks (assigned_to);
		CREATE INDEX IF NOT EXISTS tasks_creator_idx ON tasks (created_by);
		CREATE INDEX IF NOT EXISTS tasks_region_idx ON tasks (region);
	`)
	if err != nil {
		return fmt.Errorf("ensure tasks schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, t *models.Task) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, created_by, creator_role, assigned_to, participants, region,
			title, notes, status, priority, due_date, due_time,
			related_case_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`,
		uuid.UUID(t.ID), uuid.UUID(t.CreatedBy), string(t.CreatorRole), uuid.UUID(t.AssignedTo),
		participantArray(t.Participants), t.Region,
		t.Title, t.Notes, string(t.Status), string(t.Priority), t.Date, t.Time,
		relatedCaseValue(t.RelatedCaseID), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_by, creator_role, assigned_to, participants, region,
		       title, notes, status, priority, due_date, due_time,
		       related_case_id, created_at, updated_at
		FROM tasks WHERE id = $1
	`, uuid.UUID(id))
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_by, creator_role, assigned_to, participants, region,
		       title, notes, status, priority, due_date, due_time,
		       related_case_id, created_at, updated_at
		FROM tasks ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Update writes the record only when the persisted status still equals
// expectedStatus, mirroring the case store's compare-and-set.
func (s *Postgres) Update(ctx context.Context, t *models.Task, expectedStatus domain.TaskStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			assigned_to = $3, participants = $4, title = $5, notes = $6,
			status = $7, priority = $8, due_date = $9, due_time = $10,
			updated_at = $11
		WHERE id = $1 AND status = $2
	`,
		uuid.UUID(t.ID), string(expectedStatus),
		uuid.UUID(t.AssignedTo), participantArray(t.Participants), t.Title, t.Notes,
		string(t.Status), string(t.Priority), t.Date, t.Time,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, uuid.UUID(t.ID)).Scan(&exists); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if exists {
			return sentinel.ErrConflict
		}
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id domain.TaskID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func participantArray(ids []domain.ActorID) any {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return pq.Array(out)
}

func relatedCaseValue(id *domain.CaseID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t            models.Task
		taskID       uuid.UUID
		createdBy    uuid.UUID
		creatorRole  string
		assignedTo   uuid.UUID
		participants pq.StringArray
		status       string
		priority     string
		relatedCase  uuid.NullUUID
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(
		&taskID, &createdBy, &creatorRole, &assignedTo, &participants, &t.Region,
		&t.Title, &t.Notes, &status, &priority, &t.Date, &t.Time,
		&relatedCase, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ID = domain.TaskID(taskID)
	t.CreatedBy = domain.ActorID(createdBy)
	t.CreatorRole = domain.Role(creatorRole)
	t.AssignedTo = domain.ActorID(assignedTo)
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.CreatedAt = createdAt
	t.UpdatedAt = updatedAt
	if relatedCase.Valid {
		id := domain.CaseID(relatedCase.UUID)
		t.RelatedCaseID = &id
	}
	for _, p := range participants {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("parse participant id: %w", err)
		}
		t.Participants = append(t.Participants, domain.ActorID(id))
	}
	return &t, nil
}
