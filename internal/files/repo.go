package files

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chatbot-platform/chatbot-backend/internal/projects"
)

var ErrNotFound = errors.New("file not found")

type File struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"projectId"`
	ProviderFileID string    `json:"fileId"`
	FileName       string    `json:"fileName"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Add(ctx context.Context, userDBID, projectID, providerFileID, fileName string) (*File, error) {
	id, err := projects.NewID("file")
	if err != nil {
		return nil, err
	}

	const q = `
insert into project_files (id, project_public_id, user_id, provider_file_id, file_name)
values ($1, $2, $3::uuid, $4, $5)
returning id, project_public_id, provider_file_id, file_name, uploaded_at;
`
	var f File
	if err := r.db.QueryRow(ctx, q, id, projectID, userDBID, providerFileID, fileName).
		Scan(&f.ID, &f.ProjectID, &f.ProviderFileID, &f.FileName, &f.UploadedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repo) ListForProject(ctx context.Context, projectID string) ([]File, error) {
	const q = `
select id, project_public_id, provider_file_id, file_name, uploaded_at
from project_files
where project_public_id = $1
order by uploaded_at asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []File{}
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.ProviderFileID, &f.FileName, &f.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// FindByProviderID resolves a file row by the upstream file id.
func (r *Repo) FindByProviderID(ctx context.Context, projectID, providerFileID string) (*File, error) {
	const q = `
select id, project_public_id, provider_file_id, file_name, uploaded_at
from project_files
where project_public_id = $1 and provider_file_id = $2;
`
	var f File
	err := r.db.QueryRow(ctx, q, projectID, providerFileID).
		Scan(&f.ID, &f.ProjectID, &f.ProviderFileID, &f.FileName, &f.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *Repo) Remove(ctx context.Context, projectID, providerFileID string) (bool, error) {
	const q = `delete from project_files where project_public_id = $1 and provider_file_id = $2;`
	ct, err := r.db.Exec(ctx, q, projectID, providerFileID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
