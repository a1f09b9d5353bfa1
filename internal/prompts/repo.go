package prompts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatbot-platform/chatbot-backend/internal/projects"
)

var ErrNotFound = errors.New("prompt not found")

type Prompt struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// ListForProject returns the project's prompt templates, newest first.
// The caller is expected to have resolved project ownership already.
func (r *Repo) ListForProject(ctx context.Context, userDBID, projectID string) ([]Prompt, error) {
	const q = `
select id, project_public_id, name, content, created_at, updated_at
from prompts
where project_public_id = $1 and user_id = $2::uuid
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, projectID, userDBID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Prompt{}
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, userDBID, projectID, name, content string) (*Prompt, error) {
	id, err := projects.NewID("pmt")
	if err != nil {
		return nil, err
	}

	const q = `
insert into prompts (id, project_public_id, user_id, name, content)
values ($1, $2, $3::uuid, $4, $5)
returning id, project_public_id, name, content, created_at, updated_at;
`
	var p Prompt
	if err := r.db.QueryRow(ctx, q, id, projectID, userDBID, name, content).
		Scan(&p.ID, &p.ProjectID, &p.Name, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Update(ctx context.Context, userDBID, promptID string, name, content *string) (*Prompt, error) {
	const q = `
update prompts
set name       = coalesce($3, name),
    content    = coalesce($4, content),
    updated_at = now()
where id = $1 and user_id = $2::uuid
returning id, project_public_id, name, content, created_at, updated_at;
`
	var p Prompt
	err := r.db.QueryRow(ctx, q, promptID, userDBID, name, content).
		Scan(&p.ID, &p.ProjectID, &p.Name, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Delete(ctx context.Context, userDBID, promptID string) (bool, error) {
	const q = `delete from prompts where id = $1 and user_id = $2::uuid;`
	ct, err := r.db.Exec(ctx, q, promptID, userDBID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
