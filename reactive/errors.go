package reactive

import "errors"

// ErrCycleDetected is reported through the error handler when the effect
// scheduler's flush loop runs far more effects than exist in the graph,
// the signature of an invalidation cycle rather than legitimate fan-out.
var ErrCycleDetected = errors.New("reactive: cycle detected while flushing effects")
