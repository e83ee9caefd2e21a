package aggregate

import "errors"

// ErrNoValidData is returned when every row was rejected during
// normalization, leaving nothing to aggregate.
var ErrNoValidData = errors.New("no valid data after cleaning")
