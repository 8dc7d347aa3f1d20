package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/model"
)

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)

// sessionEntry pairs a session with its own lock so that writers to different
// sessions never contend. The outer MemoryStore lock guards map access only.
type sessionEntry struct {
	mu sync.Mutex
	s  model.Session
}

type jobEntry struct {
	mu sync.Mutex
	j  model.Job
}

// MemoryStore is a volatile Store keeping all entities in process-local maps.
// Entity lifetime equals process lifetime: nothing is deleted, expired, or
// persisted. Mutations of a single entity are serialized by that entity's
// lock; reads return deep clones so a poller can never observe a torn write.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	jobs     map[string]*jobEntry
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*sessionEntry),
		jobs:     make(map[string]*jobEntry),
	}
}

// Close releases nothing; it exists to satisfy the Store interface.
func (s *MemoryStore) Close() error { return nil }

// CreateSession allocates a new session with status INITIALIZING, an empty
// log trail, and zeroed metrics. It always succeeds.
func (s *MemoryStore) CreateSession(_ context.Context, goal string) (*model.Session, error) {
	now := time.Now().UTC()
	sess := model.Session{
		ID:        model.NewSessionID(),
		Goal:      goal,
		Status:    model.SessionInitializing,
		Logs:      []model.LogEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = &sessionEntry{s: sess}
	s.mu.Unlock()

	return cloneSession(&sess), nil
}

// GetSession returns a snapshot clone of the session or ErrNotFound.
func (s *MemoryStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSession(&e.s), nil
}

// AppendLog appends a log entry and refreshes updated_at. An unknown id is a
// silent no-op.
func (s *MemoryStore) AppendLog(_ context.Context, id, role, msg string) error {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	now := time.Now().UTC()
	e.mu.Lock()
	e.s.Logs = append(e.s.Logs, model.LogEntry{Role: role, Msg: msg, TS: now})
	e.s.UpdatedAt = now
	e.mu.Unlock()
	return nil
}

// ListSessions returns a page of session snapshots ordered newest first,
// along with the total session count.
func (s *MemoryStore) ListSessions(_ context.Context, limit, offset int) ([]*model.Session, int, error) {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		sessions = append(sessions, cloneSession(&e.s))
		e.mu.Unlock()
	}
	sort.Slice(sessions, func(i, j int) bool {
		// ULID suffixes are time-ordered, so id order breaks created_at ties.
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	total := len(sessions)
	return page(sessions, limit, offset), total, nil
}

// CreateJob allocates a new job with status QUEUED, zero progress, and an
// empty artifact list. It always succeeds.
func (s *MemoryStore) CreateJob(_ context.Context, prompt string) (*model.Job, error) {
	job := model.Job{
		ID:        model.NewJobID(),
		Prompt:    prompt,
		Status:    model.JobQueued,
		Progress:  0,
		Artifacts: []string{},
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = &jobEntry{j: job}
	s.mu.Unlock()

	return cloneJob(&job), nil
}

// GetJob returns a snapshot clone of the job or ErrNotFound.
func (s *MemoryStore) GetJob(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneJob(&e.j), nil
}

// UpdateJob overwrites progress and status as an atomic pair. A reader never
// observes one updated without the other. An unknown id is a silent no-op.
func (s *MemoryStore) UpdateJob(_ context.Context, id string, progress int, status string) error {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	e.j.Progress = progress
	e.j.Status = status
	e.mu.Unlock()
	return nil
}

// ListJobs returns a page of job snapshots ordered newest first, along with
// the total job count.
func (s *MemoryStore) ListJobs(_ context.Context, limit, offset int) ([]*model.Job, int, error) {
	s.mu.RLock()
	entries := make([]*jobEntry, 0, len(s.jobs))
	for _, e := range s.jobs {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		jobs = append(jobs, cloneJob(&e.j))
		e.mu.Unlock()
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID > jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	total := len(jobs)
	return page(jobs, limit, offset), total, nil
}

// Stats computes aggregate counts over all entities.
func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	sessionCount := len(s.sessions)
	jobEntries := make([]*jobEntry, 0, len(s.jobs))
	for _, e := range s.jobs {
		jobEntries = append(jobEntries, e)
	}
	s.mu.RUnlock()

	stats := &Stats{
		Sessions:     sessionCount,
		Jobs:         len(jobEntries),
		JobsByStatus: make(map[string]int),
	}

	var progressSum int
	for _, e := range jobEntries {
		e.mu.Lock()
		stats.JobsByStatus[e.j.Status]++
		progressSum += e.j.Progress
		e.mu.Unlock()
	}
	if len(jobEntries) > 0 {
		stats.AvgJobProgress = float64(progressSum) / float64(len(jobEntries))
	}

	return stats, nil
}

func cloneSession(s *model.Session) *model.Session {
	out := *s
	out.Logs = make([]model.LogEntry, len(s.Logs))
	copy(out.Logs, s.Logs)
	return &out
}

func cloneJob(j *model.Job) *model.Job {
	out := *j
	out.Artifacts = make([]string, len(j.Artifacts))
	copy(out.Artifacts, j.Artifacts)
	return &out
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
