package registry

import (
	"sync"
	"sync/atomic"
)

// Slot holds at most one value shared across goroutines.
//
// Contract:
// - Concurrency: safe for concurrent use; reads share a read lock and
//   installs take the write lock.
// - Callbacks: the lock is held while a Read or Write callback runs, so
//   callbacks must not touch the same slot.
type Slot[T any] struct {
	role Role
	def  func() T

	mu  sync.RWMutex
	val T
	ok  bool

	scoped atomic.Bool
}

// NewSlot returns an empty global slot. def builds the value used by the
// OrDefault methods; it may be nil if those are never called.
func NewSlot[T any](role Role, def func() T) *Slot[T] {
	return &Slot[T]{role: role, def: def}
}

// Install stores v, discarding any previous occupant.
func (s *Slot[T]) Install(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val, s.ok = v, true
}

// Replace stores v and returns the previous occupant.
func (s *Slot[T]) Replace(v T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.val, s.ok
	s.val, s.ok = v, true
	return prev, ok
}

// Take empties the slot and returns what it held.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.val, s.ok
	var zero T
	s.val, s.ok = zero, false
	return prev, ok
}

// Uninstall empties the slot.
func (s *Slot[T]) Uninstall() {
	s.Take()
}

// Loaded reports whether the slot is occupied.
func (s *Slot[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ok
}

// Get returns a snapshot of the occupant.
func (s *Slot[T]) Get() (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		var zero T
		return zero, s.uninit()
	}
	return s.val, nil
}

// TryRead calls fn with the occupant under the read lock.
func (s *Slot[T]) TryRead(fn func(T)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return s.uninit()
	}
	fn(s.val)
	return nil
}

// Read is TryRead but panics if the slot is empty.
func (s *Slot[T]) Read(fn func(T)) {
	if err := s.TryRead(fn); err != nil {
		panic(err)
	}
}

// TryWrite calls fn with a pointer to the occupant under the write lock.
func (s *Slot[T]) TryWrite(fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return s.uninit()
	}
	fn(&s.val)
	return nil
}

// Write is TryWrite but panics if the slot is empty.
func (s *Slot[T]) Write(fn func(*T)) {
	if err := s.TryWrite(fn); err != nil {
		panic(err)
	}
}

// GetOrDefault returns the occupant, installing the default first if the
// slot is empty. The default is built at most once per empty period.
func (s *Slot[T]) GetOrDefault() T {
	for {
		if v, err := s.Get(); err == nil {
			return v
		}
		s.fillDefault()
	}
}

// ReadOrDefault is TryRead on a slot that is filled with the default first
// if it is empty.
func (s *Slot[T]) ReadOrDefault(fn func(T)) {
	for {
		if s.TryRead(fn) == nil {
			return
		}
		s.fillDefault()
	}
}

// WriteOrDefault is TryWrite on a slot that is filled with the default first
// if it is empty.
func (s *Slot[T]) WriteOrDefault(fn func(*T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		s.val, s.ok = s.mustDefault(), true
	}
	fn(&s.val)
}

func (s *Slot[T]) fillDefault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		s.val, s.ok = s.mustDefault(), true
	}
}

func (s *Slot[T]) mustDefault() T {
	if s.def == nil {
		panic("registry: the global " + s.role.String() + " slot has no default")
	}
	return s.def()
}

// TryScope installs v until the returned guard is released, then restores
// whatever the slot held before. A second live guard on the same slot fails
// with a NestedScopeError.
func (s *Slot[T]) TryScope(v T) (*Guard, error) {
	if !s.scoped.CompareAndSwap(false, true) {
		return nil, &NestedScopeError{Scope: Global, Role: s.role}
	}

	prev, had := s.Replace(v)
	return newGuard(func() {
		if had {
			s.Install(prev)
		} else {
			s.Uninstall()
		}
		s.scoped.Store(false)
	}), nil
}

// Scope is TryScope but panics on nesting.
func (s *Slot[T]) Scope(v T) *Guard {
	g, err := s.TryScope(v)
	if err != nil {
		panic(err)
	}
	return g
}

func (s *Slot[T]) uninit() error {
	return &UninitializedError{Scope: Global, Role: s.role}
}
