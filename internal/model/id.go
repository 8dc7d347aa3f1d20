package model

import "github.com/oklog/ulid/v2"

// Id prefixes distinguish entity classes in logs and API paths.
const (
	sessionIDPrefix = "sess_"
	jobIDPrefix     = "job_"
)

// NewSessionID generates a session identifier: "sess_" followed by a ULID.
func NewSessionID() string {
	return sessionIDPrefix + ulid.Make().String()
}

// NewJobID generates a job identifier: "job_" followed by a ULID.
func NewJobID() string {
	return jobIDPrefix + ulid.Make().String()
}
