package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/pipeline"
	"github.com/ankitx1357-boop/infralith-architecture/internal/telemetry"
)

// Handle tracks one dispatched pipeline for inspection. V1 exposes no
// cancellation; the handle exists so future control operations have somewhere
// to attach.
type Handle struct {
	ID           string
	Kind         string
	DispatchedAt time.Time
	done         chan struct{}
}

// Done is closed when the pipeline reaches its terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Dispatcher launches pipelines as background tasks. Dispatch calls always
// return immediately; a slot pool caps how many pipelines execute at once,
// and dispatches beyond the cap queue inside their own goroutine until a
// slot frees. Once launched, a pipeline runs to its terminal state; failures
// surface only on the entity itself.
type Dispatcher struct {
	sessions *pipeline.SessionPipeline
	renders  *pipeline.RenderPipeline
	broker   *Broker
	logger   *slog.Logger
	slots    chan struct{}

	wg      sync.WaitGroup
	mu      sync.Mutex
	handles map[string]*Handle
}

// NewDispatcher creates a dispatcher executing at most maxPipelines
// concurrently.
func NewDispatcher(sp *pipeline.SessionPipeline, rp *pipeline.RenderPipeline, broker *Broker, logger *slog.Logger, maxPipelines int) *Dispatcher {
	if maxPipelines <= 0 {
		maxPipelines = 1
	}
	return &Dispatcher{
		sessions: sp,
		renders:  rp,
		broker:   broker,
		logger:   logger,
		slots:    make(chan struct{}, maxPipelines),
		handles:  make(map[string]*Handle),
	}
}

// Broker returns the event broker pipelines publish through.
func (d *Dispatcher) Broker() *Broker { return d.broker }

// DispatchSession launches the agent pipeline for the session, returning
// immediately.
func (d *Dispatcher) DispatchSession(id string) {
	d.launch(id, telemetry.KindSession, func(ctx context.Context) {
		d.sessions.Run(ctx, id)
	})
}

// DispatchRender launches the render pipeline for the job, returning
// immediately.
func (d *Dispatcher) DispatchRender(id string) {
	d.launch(id, telemetry.KindRender, func(ctx context.Context) {
		d.renders.Run(ctx, id)
	})
}

// Handle returns the handle registered for an entity id, if any.
func (d *Dispatcher) Handle(id string) (*Handle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.handles[id]
	return h, ok
}

// Wait blocks until all in-flight and queued pipelines finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) launch(id, kind string, run func(context.Context)) {
	h := &Handle{ID: id, Kind: kind, DispatchedAt: time.Now().UTC(), done: make(chan struct{})}
	d.mu.Lock()
	d.handles[id] = h
	d.mu.Unlock()

	// A redispatch reuses the entity's topic; clear any closed marker left
	// by a previous run so new subscribers receive this run's events.
	d.broker.Reopen(id)

	telemetry.PipelinesStarted.WithLabelValues(kind).Inc()
	d.logger.Debug("pipeline dispatched", "kind", kind, "id", id)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// Acquire here so the dispatching caller never blocks; the pipeline
		// queues in its own goroutine when the pool is saturated.
		d.slots <- struct{}{}
		defer func() { <-d.slots }()
		defer close(h.done)
		defer d.broker.Close(id)

		telemetry.PipelinesInFlight.Inc()
		defer telemetry.PipelinesInFlight.Dec()

		run(context.Background())
	}()
}
