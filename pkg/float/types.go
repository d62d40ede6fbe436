package float

import (
	"encoding/json"
	"strconv"
)

// flag decodes Float's 0/1 booleans, which some endpoints send as numbers
// and others as strings.
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*f = flag(v)
	case float64:
		*f = v != 0
	case string:
		n, err := strconv.Atoi(v)
		*f = err == nil && n != 0
	default:
		*f = false
	}
	return nil
}

type project struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Active    flag   `json:"active"`
}

type phase struct {
	PhaseID   int64  `json:"phase_id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Active    flag   `json:"active"`
}

type task struct {
	Name string `json:"name"`
}

type person struct {
	PeopleID int64  `json:"people_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Active   flag   `json:"active"`
}

type loggedTime struct {
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	ProjectID int64   `json:"project_id"`
	PhaseID   int64   `json:"phase_id,omitempty"`
	PeopleID  int64   `json:"people_id"`
	Notes     string  `json:"notes"`
}
