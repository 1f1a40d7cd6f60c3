package apiclient

import "sync"

// Scheduler decides where and how completion callbacks run. The asynchronous
// dispatch operations hand every completion to the client's Scheduler,
// pre-flight failures included, and never invoke callbacks inline.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(fn func())

// Schedule implements Scheduler.
func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// SerialScheduler runs callbacks one at a time: no two callbacks scheduled
// through the same instance ever execute concurrently. It is the default
// policy, giving callers the single-threaded delivery a UI context expects
// without dedicating a goroutine or run loop to it.
type SerialScheduler struct {
	mu sync.Mutex
}

// NewSerialScheduler returns a ready-to-use serial scheduler.
func NewSerialScheduler() *SerialScheduler {
	return &SerialScheduler{}
}

// Schedule runs fn on its own goroutine, serialized against every other
// callback scheduled through s.
func (s *SerialScheduler) Schedule(fn func()) {
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	}()
}

// ConcurrentScheduler runs every callback on its own goroutine with no
// ordering or mutual-exclusion guarantees.
type ConcurrentScheduler struct{}

// Schedule implements Scheduler.
func (ConcurrentScheduler) Schedule(fn func()) { go fn() }
