package model

import "errors"

// ErrNoWorkspace is returned when the Target account has no workspace.
var ErrNoWorkspace = errors.New("couldn't get Toggl workspace")
