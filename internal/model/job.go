package model

import "time"

// Render job status constants, in phase order.
const (
	JobQueued     = "QUEUED"
	JobLoading    = "LOADING_ASSETS"
	JobTokenizing = "TOKENIZING_PROMPT"
	JobDiffusing  = "DIFFUSING_LATENT_NOISE"
	JobUpscaling  = "UPSCALING_4K"
	JobCompleted  = "COMPLETED"
)

// Job tracks one render-workflow execution. Progress is an integer percentage
// and never decreases across the job's lifetime. Artifacts is always empty in
// v1 but stays in the schema for forward compatibility.
type Job struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Artifacts []string  `json:"artifacts"`
	CreatedAt time.Time `json:"created_at"`
}
