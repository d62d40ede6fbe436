package model

// Project represents a project on either side of the sync.
//
// On the Target side Name is the display name with any id markers stripped;
// the markers themselves are carried in the key fields.
type Project struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Active bool   `json:"active" yaml:"active"`
	// CorrelationKey links a Target project back to the Source project it was generated from.
	CorrelationKey *int64 `json:"correlation_key,omitempty" yaml:"correlation_key,omitempty"`
	// LegacyKey is the marker written by older releases before correlation keys existed.
	LegacyKey *int64 `json:"legacy_key,omitempty" yaml:"legacy_key,omitempty"`
	// PhaseKey marks a Target project created for a phase before it was split out.
	PhaseKey *int64 `json:"phase_key,omitempty" yaml:"phase_key,omitempty"`
	// ParentID is set on Source projects that are phases of another project.
	ParentID *int64 `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// HasCorrelation reports whether p carries the given correlation key.
func (p Project) HasCorrelation(key int64) bool {
	return p.CorrelationKey != nil && *p.CorrelationKey == key
}

// TimeEntry is a booking of hours against a project on a single day.
// ProjectID is local to the system the entry lives in.
type TimeEntry struct {
	ID        int64   `json:"id" yaml:"id"`
	Date      Date    `json:"date" yaml:"date"`
	ProjectID int64   `json:"project_id" yaml:"project_id"`
	Notes     string  `json:"notes" yaml:"notes"`
	Hours     float64 `json:"hours" yaml:"hours"`
	PhaseID   *int64  `json:"phase_id,omitempty" yaml:"phase_id,omitempty"`
}

// TimeEntryUpdate reassigns an existing entry to another project.
type TimeEntryUpdate struct {
	ID        int64
	ProjectID int64
}

// Workspace is the single top-level container on the Target side.
type Workspace struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Person is an account on the Source side that time is logged for.
type Person struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Active bool   `json:"active" yaml:"active"`
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}
