package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	chatrepo "github.com/chatbot-platform/chatbot-backend/internal/chat/repository"
)

// Sweeper purges conversation turns, prompt templates and file records
// that belong to projects soft-deleted longer ago than the retention
// window. Deleting a project never cascades synchronously; this job is
// the only place orphaned rows are removed.
type Sweeper struct {
	db            *pgxpool.Pool
	turns         *chatrepo.Repo
	retentionDays int
}

func NewSweeper(db *pgxpool.Pool, turns *chatrepo.Repo, retention time.Duration) *Sweeper {
	days := int(retention.Hours() / 24)
	if days <= 0 {
		days = 30
	}
	return &Sweeper{db: db, turns: turns, retentionDays: days}
}

// Start schedules the nightly sweep (3:00 AM).
func (s *Sweeper) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 3 * * *", func() {
		s.Run(context.Background())
	})
	if err != nil {
		log.Printf("Failed to create sweeper cron job: %v", err)
		return
	}

	log.Printf("Maintenance sweeper started (nightly at 3:00AM, retention %dd)", s.retentionDays)
	c.Start()
}

// Run executes one sweep. Safe to call concurrently with live traffic;
// it only touches rows of projects already soft-deleted.
func (s *Sweeper) Run(ctx context.Context) {
	purged, err := s.turns.PurgeForDeletedProjects(ctx, s.retentionDays)
	if err != nil {
		log.Printf("sweeper: purge chat messages: %v", err)
		return
	}

	const promptsQ = `
delete from prompts
where project_public_id in (
  select public_id from projects
  where deleted_at is not null
    and deleted_at < now() - make_interval(days => $1)
);
`
	if _, err := s.db.Exec(ctx, promptsQ, s.retentionDays); err != nil {
		log.Printf("sweeper: purge prompts: %v", err)
		return
	}

	const filesQ = `
delete from project_files
where project_public_id in (
  select public_id from projects
  where deleted_at is not null
    and deleted_at < now() - make_interval(days => $1)
);
`
	if _, err := s.db.Exec(ctx, filesQ, s.retentionDays); err != nil {
		log.Printf("sweeper: purge project files: %v", err)
		return
	}

	log.Printf("sweeper: completed, purged %d chat messages", purged)
}
