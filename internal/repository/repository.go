package repository

import "errors"

// ErrEmptyPatch is returned when an update carries no fields to change.
var ErrEmptyPatch = errors.New("no fields to update")
