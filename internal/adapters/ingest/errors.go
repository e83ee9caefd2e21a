package ingest

import "errors"

// Sentinel errors returned by the loaders.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingHeader     = errors.New("missing header row")
	ErrMalformedJSON     = errors.New("malformed json dataset")
)
