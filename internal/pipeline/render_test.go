package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/model"
	"github.com/ankitx1357-boop/infralith-architecture/internal/pipeline"
	"github.com/ankitx1357-boop/infralith-architecture/internal/store"
)

// seqIntN returns increments from a fixed sequence, pinning the diffusion
// walk for deterministic assertions.
func seqIntN(seq []int) func(int) int {
	i := 0
	return func(n int) int {
		if i >= len(seq) {
			return n - 1 // drain at max step if the sequence runs out
		}
		v := seq[i]
		i++
		return v
	}
}

type jobUpdate struct {
	progress int
	status   string
}

// recordingStore captures every UpdateJob call in order.
type recordingStore struct {
	store.Store
	mu      sync.Mutex
	updates []jobUpdate
}

func (r *recordingStore) UpdateJob(ctx context.Context, id string, progress int, status string) error {
	if err := r.Store.UpdateJob(ctx, id, progress, status); err != nil {
		return err
	}
	r.mu.Lock()
	r.updates = append(r.updates, jobUpdate{progress, status})
	r.mu.Unlock()
	return nil
}

func TestRenderPipelineDeterministicTrajectory(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	job, _ := mem.CreateJob(ctx, "neon cyberpunk city")
	rec := &recordingStore{Store: mem}
	p := pipeline.NewRenderPipeline(rec, discardLogger(),
		pipeline.WithSleep(noSleep),
		pipeline.WithIntN(seqIntN([]int{14, 14, 14, 14, 14})),
	)
	p.Run(ctx, job.ID)

	// 20 + 14 per iteration: 34, 48, 62, 76, then 90 clamped to 80.
	want := []jobUpdate{
		{5, model.JobLoading},
		{15, model.JobTokenizing},
		{34, model.JobDiffusing},
		{48, model.JobDiffusing},
		{62, model.JobDiffusing},
		{76, model.JobDiffusing},
		{80, model.JobDiffusing},
		{90, model.JobUpscaling},
		{100, model.JobCompleted},
	}
	if len(rec.updates) != len(want) {
		t.Fatalf("got %d updates, want %d: %v", len(rec.updates), len(want), rec.updates)
	}
	for i, u := range rec.updates {
		if u != want[i] {
			t.Errorf("update[%d] = %+v, want %+v", i, u, want[i])
		}
	}

	got, _ := mem.GetJob(ctx, job.ID)
	if got.Progress != 100 || got.Status != model.JobCompleted {
		t.Errorf("final job = (%q, %d), want (COMPLETED, 100)", got.Status, got.Progress)
	}
}

func TestRenderPipelineZeroIncrementStillAdvances(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	job, _ := mem.CreateJob(ctx, "prompt")
	rec := &recordingStore{Store: mem}
	p := pipeline.NewRenderPipeline(rec, discardLogger(),
		pipeline.WithSleep(noSleep),
		pipeline.WithIntN(seqIntN([]int{0, 10, 0, 14, 14, 14, 14})),
	)
	p.Run(ctx, job.ID)

	// A zero increment repeats the current progress; still non-decreasing.
	prev := -1
	for i, u := range rec.updates {
		if u.progress < prev {
			t.Errorf("update[%d] progress %d decreased from %d", i, u.progress, prev)
		}
		if u.status == model.JobDiffusing && u.progress > 80 {
			t.Errorf("diffusion update[%d] progress %d exceeds clamp", i, u.progress)
		}
		if u.progress > 100 {
			t.Errorf("update[%d] progress %d exceeds 100", i, u.progress)
		}
		prev = u.progress
	}

	last := rec.updates[len(rec.updates)-1]
	if last.progress != 100 || last.status != model.JobCompleted {
		t.Errorf("terminal update = %+v, want (100, COMPLETED)", last)
	}
}

func TestRenderPipelineWithRealRandTerminates(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	job, _ := mem.CreateJob(ctx, "prompt")
	p := pipeline.NewRenderPipeline(mem, discardLogger(), pipeline.WithSleep(noSleep))
	p.Run(ctx, job.ID)

	got, _ := mem.GetJob(ctx, job.ID)
	if got.Progress != 100 || got.Status != model.JobCompleted {
		t.Errorf("final job = (%q, %d), want (COMPLETED, 100)", got.Status, got.Progress)
	}
}

// No suspension may follow the terminal COMPLETED write: with five diffusion
// iterations the pipeline sleeps exactly 2 + 5 + 1 times.
func TestRenderPipelineSleepCount(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	job, _ := mem.CreateJob(ctx, "prompt")
	slept := 0
	p := pipeline.NewRenderPipeline(mem, discardLogger(),
		pipeline.WithSleep(func(time.Duration) { slept++ }),
		pipeline.WithIntN(seqIntN([]int{14, 14, 14, 14, 14})),
	)
	p.Run(ctx, job.ID)

	if slept != 8 {
		t.Errorf("slept %d times, want 8", slept)
	}
}

func TestRenderPipelineUnknownIDRunsSilently(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	p := pipeline.NewRenderPipeline(mem, discardLogger(), pipeline.WithSleep(noSleep))
	p.Run(ctx, "job_VANISHED")

	if _, err := mem.GetJob(ctx, "job_VANISHED"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
