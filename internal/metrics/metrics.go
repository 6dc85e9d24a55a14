// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLoginSuccess()
	IncLoginFailure()

	// Quote metrics
	IncQuoteCreated()
	IncQuoteRejected(reason string) // reason: "invalid_text", "forbidden_group", "subject_missing"

	// Administration metrics
	IncUserCreated()
	IncGroupCreated()
	IncMembershipAdded()
	IncMembershipRemoved()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
