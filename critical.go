package blockalloc

import "sync"

// CriticalSection brackets every allocator operation that reads or writes
// the occupancy bitmap: Allocate, Deallocate, Free, Size and Stats.
// Enter is called exactly once before the bitmap is touched and Exit exactly
// once after. The allocator never blocks between the two calls.
//
// The allocator has no locking of its own. A host running it from several
// goroutines supplies a section that gives real mutual exclusion.
type CriticalSection interface {
	Enter(a *Allocator)
	Exit(a *Allocator)
}

// NopSection does nothing. Suitable for single-goroutine use only.
type NopSection struct{}

func (NopSection) Enter(*Allocator) {}
func (NopSection) Exit(*Allocator)  {}

// LockerSection adapts a host-supplied sync.Locker.
type LockerSection struct {
	L sync.Locker
}

func (s LockerSection) Enter(*Allocator) { s.L.Lock() }
func (s LockerSection) Exit(*Allocator)  { s.L.Unlock() }

// SectionFuncs builds a CriticalSection from a pair of functions.
// A nil function is skipped.
type SectionFuncs struct {
	EnterFunc func(*Allocator)
	ExitFunc  func(*Allocator)
}

func (s SectionFuncs) Enter(a *Allocator) {
	if s.EnterFunc != nil {
		s.EnterFunc(a)
	}
}

func (s SectionFuncs) Exit(a *Allocator) {
	if s.ExitFunc != nil {
		s.ExitFunc(a)
	}
}

// NewSafe creates an allocator guarded by its own mutex.
// It is New with cfg.Section set to a LockerSection over a fresh sync.Mutex;
// any Section already in cfg is replaced.
func NewSafe(cfg Config) (*Allocator, error) {
	cfg.Section = LockerSection{L: new(sync.Mutex)}
	return New(cfg)
}

// EnterCritical runs the configured section's Enter hook.
func (a *Allocator) EnterCritical() {
	a.section.Enter(a)
}

// ExitCritical runs the configured section's Exit hook.
func (a *Allocator) ExitCritical() {
	a.section.Exit(a)
}
