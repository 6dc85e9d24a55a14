package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses     uint64
	LoginFailures      uint64
	QuotesCreated      uint64
	QuotesRejected     map[string]uint64
	UsersCreated       uint64
	GroupsCreated      uint64
	MembershipsAdded   uint64
	MembershipsRemoved uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses     uint64
	loginFailures      uint64
	quotesCreated      uint64
	usersCreated       uint64
	groupsCreated      uint64
	membershipsAdded   uint64
	membershipsRemoved uint64

	mu             sync.Mutex
	quotesRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		quotesRejected: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.quotesRejected))
	for reason, count := range m.quotesRejected {
		rejected[reason] = count
	}
	m.mu.Unlock()

	return Snapshot{
		LoginSuccesses:     atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:      atomic.LoadUint64(&m.loginFailures),
		QuotesCreated:      atomic.LoadUint64(&m.quotesCreated),
		QuotesRejected:     rejected,
		UsersCreated:       atomic.LoadUint64(&m.usersCreated),
		GroupsCreated:      atomic.LoadUint64(&m.groupsCreated),
		MembershipsAdded:   atomic.LoadUint64(&m.membershipsAdded),
		MembershipsRemoved: atomic.LoadUint64(&m.membershipsRemoved),
	}
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncQuoteCreated increments the quote creation counter.
func (m *InMemoryRecorder) IncQuoteCreated() {
	atomic.AddUint64(&m.quotesCreated, 1)
}

// IncQuoteRejected increments the rejection counter for a reason.
func (m *InMemoryRecorder) IncQuoteRejected(reason string) {
	m.mu.Lock()
	m.quotesRejected[reason]++
	m.mu.Unlock()
}

// IncUserCreated increments the user creation counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncGroupCreated increments the group creation counter.
func (m *InMemoryRecorder) IncGroupCreated() {
	atomic.AddUint64(&m.groupsCreated, 1)
}

// IncMembershipAdded increments the membership add counter.
func (m *InMemoryRecorder) IncMembershipAdded() {
	atomic.AddUint64(&m.membershipsAdded, 1)
}

// IncMembershipRemoved increments the membership remove counter.
func (m *InMemoryRecorder) IncMembershipRemoved() {
	atomic.AddUint64(&m.membershipsRemoved, 1)
}
