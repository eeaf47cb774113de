package orchestrator

import "time"

// StopGrace is how long Stop waits for the loops to drain before
// clearing overlays and cache anyway.
const StopGrace = 500 * time.Millisecond
