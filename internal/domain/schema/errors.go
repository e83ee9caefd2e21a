package schema

import (
	"errors"
	"strings"
)

// Sentinel kinds for schema validation errors.
var (
	ErrEmptyDataset   = errors.New("no data provided")
	ErrMissingColumns = errors.New("missing required columns")
)

// MissingColumnsError names every required column that could not be
// matched against the dataset header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return ErrMissingColumns.Error() + ": " + strings.Join(e.Missing, ", ")
}

// Is lets callers match with errors.Is(err, ErrMissingColumns).
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}
