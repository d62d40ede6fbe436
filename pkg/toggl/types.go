package toggl

import "time"

type workspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type project struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Active bool   `json:"active"`
}

type tag struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type timeEntry struct {
	ID          int64     `json:"id"`
	ProjectID   *int64    `json:"project_id"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	// Duration is in seconds; negative while the timer is running.
	Duration int64 `json:"duration"`
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}
