package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/model"
	"github.com/ankitx1357-boop/infralith-architecture/internal/store"
	"github.com/ankitx1357-boop/infralith-architecture/internal/telemetry"
)

// CriticalFailureMsg is the terminal log entry appended when a session
// pipeline aborts unexpectedly.
const CriticalFailureMsg = "CRITICAL FAILURE: pipeline aborted, see server logs"

// AgentScript is the fixed agent narrative replayed for every session. It is
// a deterministic trace, not a decision process: the test failure, debug, and
// re-test steps always occur in this order regardless of anything at runtime.
var AgentScript = []Step{
	{Role: model.RolePlanner, Msg: "Parsing goal and drafting an execution plan", Delay: 600 * time.Millisecond},
	{Role: model.RolePlanner, Msg: "Plan ready: 4 milestones, 7 tasks", Delay: 500 * time.Millisecond},
	{Role: model.RoleArchitect, Msg: "Designing service topology and API contracts", Delay: 700 * time.Millisecond},
	{Role: model.RoleArchitect, Msg: "Scaffolded project skeleton and module boundaries", Delay: 600 * time.Millisecond},
	{Role: model.RoleCoder, Msg: "Implementing domain models and request handlers", Delay: 900 * time.Millisecond},
	{Role: model.RoleCoder, Msg: "Core implementation complete, wiring integration points", Delay: 700 * time.Millisecond},
	{Role: model.RoleTester, Msg: "Running test suite (unit + integration)", Delay: 600 * time.Millisecond},
	{Role: model.RoleTester, Msg: "2 integration tests FAILED: connection pool exhaustion", Delay: 400 * time.Millisecond},
	{Role: model.RoleDebugger, Msg: "Bisecting the failure, inspecting pool lifecycle", Delay: 700 * time.Millisecond},
	{Role: model.RoleDebugger, Msg: "Patch applied: connections released on handler exit", Delay: 500 * time.Millisecond},
	{Role: model.RoleTester, Msg: "Re-running test suite", Delay: 600 * time.Millisecond},
	{Role: model.RoleTester, Msg: "All tests passing", Delay: 400 * time.Millisecond},
	{Role: model.RoleDevOps, Msg: "Building container image and pushing to registry", Delay: 800 * time.Millisecond},
	{Role: model.RoleDevOps, Msg: "Rolling out deployment, waiting on health checks", Delay: 700 * time.Millisecond},
	{Role: model.RoleSystem, Msg: "Deployment complete: service is live", Delay: 300 * time.Millisecond},
}

// SessionPipeline drives the agent script against one session's log trail.
// The session's status field is never touched after creation; completion is
// observable from the terminal SYSTEM log entry.
type SessionPipeline struct {
	store  store.Store
	logger *slog.Logger
	opts   options
}

// NewSessionPipeline creates the agent pipeline.
func NewSessionPipeline(st store.Store, logger *slog.Logger, opts ...Option) *SessionPipeline {
	p := &SessionPipeline{store: st, logger: logger, opts: defaultOptions()}
	for _, opt := range opts {
		opt(&p.opts)
	}
	return p
}

// Run executes the full agent script. Failures never propagate to the
// caller: any error or panic is recorded as a terminal SYSTEM log entry and
// the task ends without retry. The caller observes the failure on its next
// poll of the session snapshot.
func (p *SessionPipeline) Run(ctx context.Context, id string) {
	defer func() {
		if r := recover(); r != nil {
			p.fail(ctx, id, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := runScript(ctx, p.store, &p.opts, id, AgentScript); err != nil {
		p.fail(ctx, id, err)
		return
	}
	telemetry.PipelinesCompleted.WithLabelValues(telemetry.KindSession).Inc()
}

func (p *SessionPipeline) fail(ctx context.Context, id string, cause error) {
	telemetry.PipelinesFailed.WithLabelValues(telemetry.KindSession).Inc()
	p.logger.Error("session pipeline failed", "session_id", id, "error", cause)
	if err := p.store.AppendLog(ctx, id, model.RoleSystem, CriticalFailureMsg); err != nil {
		p.logger.Error("record critical failure", "session_id", id, "error", err)
		return
	}
	p.opts.notify(id, model.RoleSystem, CriticalFailureMsg)
}
