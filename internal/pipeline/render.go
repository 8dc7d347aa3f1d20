package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/model"
	"github.com/ankitx1357-boop/infralith-architecture/internal/store"
	"github.com/ankitx1357-boop/infralith-architecture/internal/telemetry"
)

// Render phase delays.
const (
	loadDelay     = 500 * time.Millisecond
	tokenizeDelay = 400 * time.Millisecond
	diffuseDelay  = 350 * time.Millisecond
	upscaleDelay  = 800 * time.Millisecond
)

// Diffusion loop bounds: the walk starts at 20, advances by a uniform random
// increment in [0, diffuseMaxStep] per iteration, and is clamped at the
// ceiling before the upscale phase takes over.
const (
	diffuseStart   = 20
	diffuseCeiling = 80
	diffuseMaxStep = 14
)

// RenderPipeline advances a job through the five render phases, writing each
// (progress, status) pair to the store as soon as the phase is reached so a
// concurrent poller sees it immediately. Progress never decreases; the
// COMPLETED phase at 100 is terminal and is never followed by a mutation.
type RenderPipeline struct {
	store  store.Store
	logger *slog.Logger
	opts   options
}

// NewRenderPipeline creates the render pipeline.
func NewRenderPipeline(st store.Store, logger *slog.Logger, opts ...Option) *RenderPipeline {
	p := &RenderPipeline{store: st, logger: logger, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// Run executes all phases. Failures never propagate: they are logged and the
// job is left in its last-written state, observable on the next poll.
func (p *RenderPipeline) Run(ctx context.Context, id string) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(id, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := p.run(ctx, id); err != nil {
		p.fail(id, err)
		return
	}
	telemetry.PipelinesCompleted.WithLabelValues(telemetry.KindRender).Inc()
}

func (p *RenderPipeline) run(ctx context.Context, id string) error {
	if err := p.update(ctx, id, 5, model.JobLoading); err != nil {
		return err
	}
	p.opts.sleep(loadDelay)

	if err := p.update(ctx, id, 15, model.JobTokenizing); err != nil {
		return err
	}
	p.opts.sleep(tokenizeDelay)

	// Diffusion: a clamped random walk. Unbounded in iteration count only in
	// principle; uniform increments cross the ceiling within a handful of
	// steps.
	progress := diffuseStart
	for progress < diffuseCeiling {
		progress += p.opts.intN(diffuseMaxStep + 1)
		if progress > diffuseCeiling {
			progress = diffuseCeiling
		}
		if err := p.update(ctx, id, progress, model.JobDiffusing); err != nil {
			return err
		}
		p.opts.sleep(diffuseDelay)
	}

	if err := p.update(ctx, id, 90, model.JobUpscaling); err != nil {
		return err
	}
	p.opts.sleep(upscaleDelay)

	return p.update(ctx, id, 100, model.JobCompleted)
}

func (p *RenderPipeline) update(ctx context.Context, id string, progress int, status string) error {
	if err := p.store.UpdateJob(ctx, id, progress, status); err != nil {
		return fmt.Errorf("update job to %s: %w", status, err)
	}
	p.opts.notify(id, status, strconv.Itoa(progress))
	return nil
}

func (p *RenderPipeline) fail(id string, cause error) {
	telemetry.PipelinesFailed.WithLabelValues(telemetry.KindRender).Inc()
	p.logger.Error("render pipeline failed", "job_id", id, "error", cause)
}
