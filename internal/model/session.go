package model

import "time"

// Agent roles attached to session log entries.
const (
	RolePlanner   = "PLANNER"
	RoleArchitect = "ARCHITECT"
	RoleCoder     = "CODER"
	RoleTester    = "TESTER"
	RoleDebugger  = "DEBUGGER"
	RoleDevOps    = "DEVOPS"
	RoleSystem    = "SYSTEM"
)

// SessionInitializing is the status assigned to every session at creation.
// The pipeline never rewrites it; consumers derive the current phase from the
// role of the latest log entry.
const SessionInitializing = "INITIALIZING"

// LogEntry is one line in a session's log trail. Entries are immutable once
// appended; insertion order is significant and observable.
type LogEntry struct {
	Role string    `json:"role"`
	Msg  string    `json:"msg"`
	TS   time.Time `json:"ts"`
}

// SessionMetrics carries step/error counters. Nothing increments them in v1;
// the fields stay zero-valued for schema compatibility with the dashboard.
type SessionMetrics struct {
	Steps  int `json:"steps"`
	Errors int `json:"errors"`
}

// Session tracks one agent-workflow execution and its log trail.
type Session struct {
	ID        string         `json:"id"`
	Goal      string         `json:"goal"`
	Status    string         `json:"status"`
	Logs      []LogEntry     `json:"logs"`
	Metrics   SessionMetrics `json:"metrics"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
