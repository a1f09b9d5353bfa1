package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatbot-platform/chatbot-backend/internal/chat/domain"
)

// Repo is the append-only conversation store. Turns are never updated or
// deleted here; ordering is carried by the seq column assigned on insert.
type Repo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) projectExists(ctx context.Context, projectID string) error {
	const q = `
select 1
from projects
where public_id = $1 and deleted_at is null;
`
	var one int
	if err := r.db.QueryRow(ctx, q, projectID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// Append persists one immutable turn and returns it with its assigned
// ordering key and timestamp.
func (r *Repo) Append(ctx context.Context, projectID, userID, role, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyContent
	}
	if err := r.projectExists(ctx, projectID); err != nil {
		return nil, err
	}

	m := domain.Message{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
	}

	const q = `
insert into chat_messages (id, project_public_id, user_id, role, content)
values ($1, $2, $3::uuid, $4, $5)
returning seq, created_at;
`
	if err := r.db.QueryRow(ctx, q, m.ID, projectID, userID, role, content).Scan(&m.Seq, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Recent returns at most limit turns in chronological order. Retrieval
// selects the latest rows descending and reverses them, so truncation
// always drops the oldest turns, never the newest.
func (r *Repo) Recent(ctx context.Context, projectID string, limit int) ([]domain.Message, error) {
	const q = `
select seq, id, project_public_id, role, content, created_at
from chat_messages
where project_public_id = $1
order by seq desc
limit $2;
`
	rows, err := r.db.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	newest := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.Seq, &m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		newest = append(newest, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	out := make([]domain.Message, 0, len(newest))
	for i := len(newest) - 1; i >= 0; i-- {
		out = append(out, newest[i])
	}
	return out, nil
}

// History returns the project's full conversation, oldest first.
func (r *Repo) History(ctx context.Context, projectID string) ([]domain.Message, error) {
	const q = `
select seq, id, project_public_id, role, content, created_at
from chat_messages
where project_public_id = $1
order by seq asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.Seq, &m.ID, &m.ProjectID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PurgeForDeletedProjects removes conversation rows whose project was
// soft-deleted before the cutoff. Used by the maintenance sweeper only;
// live projects are never touched.
func (r *Repo) PurgeForDeletedProjects(ctx context.Context, cutoffDays int) (int64, error) {
	const q = `
delete from chat_messages
where project_public_id in (
  select public_id from projects
  where deleted_at is not null
    and deleted_at < now() - make_interval(days => $1)
);
`
	ct, err := r.db.Exec(ctx, q, cutoffDays)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
