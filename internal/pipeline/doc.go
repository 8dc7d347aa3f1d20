// Package pipeline implements the two background workflows: the scripted
// multi-agent build narrative driven against a session's log trail, and the
// five-phase render simulation advancing a job's progress. Both are built on
// a shared scripted-step runner and mutate entities exclusively through the
// store, so a concurrent poller always observes committed state.
package pipeline
