package gateway

import "errors"

// ErrNotConfigured is returned when a gateway's credentials were absent at
// startup. The server runs without them; only the dependent call fails.
var ErrNotConfigured = errors.New("gateway not configured")
