// Package dispatch launches pipelines as fire-and-forget background tasks.
// A bounded slot pool caps how many pipelines execute concurrently, every
// dispatched pipeline is registered in a handle map for inspection, and a
// per-entity event broker fans pipeline progress out to SSE subscribers.
package dispatch
