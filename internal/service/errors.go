package service

import "errors"

// ErrPostNotFound reports an unknown post ID. Callers turn it into a
// user-facing "not found" reply rather than letting it reach the transport;
// the conflict case ("already approved") is distinct and detected by the
// command dispatcher from the record's current status.
var ErrPostNotFound = errors.New("post not found")
