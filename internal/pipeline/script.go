package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ankitx1357-boop/infralith-architecture/internal/store"
)

// Step is one scripted pipeline step: suspend for Delay, then perform exactly
// one store mutation recording (Role, Msg).
type Step struct {
	Role  string
	Msg   string
	Delay time.Duration
}

// Option configures a pipeline. Defaults are production behavior; tests
// inject a no-op sleep and a deterministic random source.
type Option func(*options)

type options struct {
	sleep  func(time.Duration)
	intN   func(int) int
	notify func(id, tag, msg string)
}

func defaultOptions() options {
	return options{
		sleep:  time.Sleep,
		intN:   rand.Intn,
		notify: func(string, string, string) {},
	}
}

// WithSleep replaces the delay function.
func WithSleep(fn func(time.Duration)) Option {
	return func(o *options) { o.sleep = fn }
}

// WithIntN replaces the random source used by the diffusion loop. fn must
// return a value in [0, n).
func WithIntN(fn func(n int) int) Option {
	return func(o *options) { o.intN = fn }
}

// WithNotify registers a hook invoked after every store mutation. The
// dispatcher uses it to feed the live event broker.
func WithNotify(fn func(id, tag, msg string)) Option {
	return func(o *options) { o.notify = fn }
}

// runScript replays steps strictly in order against a session's log: for each
// step it sleeps for the step delay, then appends exactly one log entry. On
// return every script step has produced one mutation, in script order, with
// nothing skipped or reordered.
func runScript(ctx context.Context, st store.Store, opts *options, id string, script []Step) error {
	for _, step := range script {
		opts.sleep(step.Delay)
		if err := st.AppendLog(ctx, id, step.Role, step.Msg); err != nil {
			return fmt.Errorf("append %s log: %w", step.Role, err)
		}
		opts.notify(id, step.Role, step.Msg)
	}
	return nil
}
