package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a project does not exist or is not owned
// by the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("project not found")

const (
	ProviderOpenRouter = "openrouter"

	DefaultModel        = "openai/gpt-3.5-turbo"
	DefaultSystemPrompt = "You are a helpful assistant."
)

// SupportedProvider reports whether the given provider identifier belongs
// to the closed supported set.
func SupportedProvider(p string) bool {
	return p == ProviderOpenRouter
}

type Project struct {
	PublicID     string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Provider     string    `json:"llmProvider"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"systemPrompt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type CreateInput struct {
	Name         string
	Description  string
	Provider     string
	Model        string
	SystemPrompt string
}

const projectColumns = `public_id, name, description, llm_provider, model, system_prompt, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, userDBID string, in CreateInput) (*Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("name required")
	}
	if in.Provider == "" {
		in.Provider = ProviderOpenRouter
	}
	if !SupportedProvider(in.Provider) {
		return nil, fmt.Errorf("unsupported provider %q", in.Provider)
	}
	if in.Model == "" {
		in.Model = DefaultModel
	}
	if in.SystemPrompt == "" {
		in.SystemPrompt = DefaultSystemPrompt
	}

	for i := 0; i < 5; i++ {
		publicID, err := NewPublicID("proj")
		if err != nil {
			return nil, err
		}

		const q = `
insert into projects (public_id, user_id, name, description, llm_provider, model, system_prompt)
values ($1, $2::uuid, $3, $4, $5, $6, $7)
returning ` + projectColumns + `;
`
		var p Project
		err = r.db.QueryRow(ctx, q, publicID, userDBID, in.Name, in.Description, in.Provider, in.Model, in.SystemPrompt).
			Scan(&p.PublicID, &p.Name, &p.Description, &p.Provider, &p.Model, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt)

		if err == nil {
			return &p, nil
		}

		// unique violation on public_id → retry
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *Repo) List(ctx context.Context, userDBID string) ([]Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where user_id = $1::uuid and deleted_at is null
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, userDBID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.PublicID, &p.Name, &p.Description, &p.Provider, &p.Model, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindOwned resolves a project only when it belongs to the given user.
// Existence without ownership is reported as ErrNotFound.
func (r *Repo) FindOwned(ctx context.Context, userDBID, publicID string) (*Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where user_id = $1::uuid and public_id = $2 and deleted_at is null;
`
	var p Project
	err := r.db.QueryRow(ctx, q, userDBID, publicID).
		Scan(&p.PublicID, &p.Name, &p.Description, &p.Provider, &p.Model, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

type UpdateInput struct {
	Name         *string
	Description  *string
	Provider     *string
	Model        *string
	SystemPrompt *string
}

func (r *Repo) Update(ctx context.Context, userDBID, publicID string, in UpdateInput) (*Project, error) {
	if in.Provider != nil && !SupportedProvider(*in.Provider) {
		return nil, fmt.Errorf("unsupported provider %q", *in.Provider)
	}

	const q = `
update projects
set name          = coalesce($3, name),
    description   = coalesce($4, description),
    llm_provider  = coalesce($5, llm_provider),
    model         = coalesce($6, model),
    system_prompt = coalesce($7, system_prompt),
    updated_at    = now()
where user_id = $1::uuid and public_id = $2 and deleted_at is null
returning ` + projectColumns + `;
`
	var p Project
	err := r.db.QueryRow(ctx, q, userDBID, publicID, in.Name, in.Description, in.Provider, in.Model, in.SystemPrompt).
		Scan(&p.PublicID, &p.Name, &p.Description, &p.Provider, &p.Model, &p.SystemPrompt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SoftDelete marks a project as deleted. Conversation turns, prompts and
// file records are left in place; the maintenance sweeper purges them once
// the retention window passes.
func (r *Repo) SoftDelete(ctx context.Context, userDBID, publicID string) (bool, error) {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where user_id = $1::uuid and public_id = $2 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, userDBID, publicID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
