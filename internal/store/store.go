package store

import (
	"context"
	"errors"

	"github.com/ankitx1357-boop/infralith-architecture/internal/model"
)

// ErrNotFound is returned by snapshot reads when the id is unknown.
var ErrNotFound = errors.New("entity not found")

// Stats holds aggregate counts across sessions and jobs.
type Stats struct {
	Sessions       int            `json:"sessions"`
	Jobs           int            `json:"jobs"`
	JobsByStatus   map[string]int `json:"jobs_by_status"`
	AvgJobProgress float64        `json:"avg_job_progress"`
}

// Store is the repository of session and job entities. It exclusively owns
// all entity instances; pipelines hold only ids and mutate through these
// operations.
//
// AppendLog and UpdateJob against an unknown id are deliberate silent no-ops
// (nil error): a pipeline must never crash because its entity vanished.
// Reads return snapshot copies that callers may retain and mutate freely.
type Store interface {
	CreateSession(ctx context.Context, goal string) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*model.Session, int, error)
	AppendLog(ctx context.Context, id, role, msg string) error

	CreateJob(ctx context.Context, prompt string) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]*model.Job, int, error)
	UpdateJob(ctx context.Context, id string, progress int, status string) error

	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
