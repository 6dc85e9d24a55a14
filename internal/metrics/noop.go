package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncQuoteCreated is a no-op.
func (n *NoopRecorder) IncQuoteCreated() {}

// IncQuoteRejected is a no-op.
func (n *NoopRecorder) IncQuoteRejected(reason string) {}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncGroupCreated is a no-op.
func (n *NoopRecorder) IncGroupCreated() {}

// IncMembershipAdded is a no-op.
func (n *NoopRecorder) IncMembershipAdded() {}

// IncMembershipRemoved is a no-op.
func (n *NoopRecorder) IncMembershipRemoved() {}
