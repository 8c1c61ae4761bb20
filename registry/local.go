package registry

// LocalSlot holds at most one value owned by a single goroutine.
//
// A LocalSlot takes no lock. Any access from inside one of its own Read or
// Write callbacks panics.
type LocalSlot[T any] struct {
	role Role
	def  func() T

	val      T
	ok       bool
	borrowed bool
	scoped   bool
}

// NewLocalSlot returns an empty local slot.
func NewLocalSlot[T any](role Role, def func() T) *LocalSlot[T] {
	return &LocalSlot[T]{role: role, def: def}
}

func (s *LocalSlot[T]) borrow() func() {
	if s.borrowed {
		panic("registry: the local " + s.role.String() + " slot was accessed from inside its own callback")
	}
	s.borrowed = true
	return func() { s.borrowed = false }
}

// Install stores v, discarding any previous occupant.
func (s *LocalSlot[T]) Install(v T) {
	defer s.borrow()()
	s.val, s.ok = v, true
}

// Replace stores v and returns the previous occupant.
func (s *LocalSlot[T]) Replace(v T) (T, bool) {
	defer s.borrow()()
	prev, ok := s.val, s.ok
	s.val, s.ok = v, true
	return prev, ok
}

// Take empties the slot and returns what it held.
func (s *LocalSlot[T]) Take() (T, bool) {
	defer s.borrow()()
	prev, ok := s.val, s.ok
	var zero T
	s.val, s.ok = zero, false
	return prev, ok
}

// Uninstall empties the slot.
func (s *LocalSlot[T]) Uninstall() {
	s.Take()
}

// Loaded reports whether the slot is occupied.
func (s *LocalSlot[T]) Loaded() bool {
	defer s.borrow()()
	return s.ok
}

// Get returns the occupant.
func (s *LocalSlot[T]) Get() (T, error) {
	defer s.borrow()()
	if !s.ok {
		var zero T
		return zero, s.uninit()
	}
	return s.val, nil
}

// TryRead calls fn with the occupant.
func (s *LocalSlot[T]) TryRead(fn func(T)) error {
	defer s.borrow()()
	if !s.ok {
		return s.uninit()
	}
	fn(s.val)
	return nil
}

// Read is TryRead but panics if the slot is empty.
func (s *LocalSlot[T]) Read(fn func(T)) {
	if err := s.TryRead(fn); err != nil {
		panic(err)
	}
}

// TryWrite calls fn with a pointer to the occupant.
func (s *LocalSlot[T]) TryWrite(fn func(*T)) error {
	defer s.borrow()()
	if !s.ok {
		return s.uninit()
	}
	fn(&s.val)
	return nil
}

// Write is TryWrite but panics if the slot is empty.
func (s *LocalSlot[T]) Write(fn func(*T)) {
	if err := s.TryWrite(fn); err != nil {
		panic(err)
	}
}

// GetOrDefault returns the occupant, installing the default first if the
// slot is empty.
func (s *LocalSlot[T]) GetOrDefault() T {
	defer s.borrow()()
	s.fillDefault()
	return s.val
}

// ReadOrDefault is TryRead on a slot filled with the default if empty.
func (s *LocalSlot[T]) ReadOrDefault(fn func(T)) {
	defer s.borrow()()
	s.fillDefault()
	fn(s.val)
}

// WriteOrDefault is TryWrite on a slot filled with the default if empty.
func (s *LocalSlot[T]) WriteOrDefault(fn func(*T)) {
	defer s.borrow()()
	s.fillDefault()
	fn(&s.val)
}

func (s *LocalSlot[T]) fillDefault() {
	if s.ok {
		return
	}
	if s.def == nil {
		panic("registry: the local " + s.role.String() + " slot has no default")
	}
	s.val, s.ok = s.def(), true
}

// TryScope installs v until the returned guard is released.
func (s *LocalSlot[T]) TryScope(v T) (*Guard, error) {
	if s.scoped {
		return nil, &NestedScopeError{Scope: Local, Role: s.role}
	}

	prev, had := s.Replace(v)
	s.scoped = true
	return newGuard(func() {
		if had {
			s.Install(prev)
		} else {
			s.Uninstall()
		}
		s.scoped = false
	}), nil
}

// Scope is TryScope but panics on nesting.
func (s *LocalSlot[T]) Scope(v T) *Guard {
	g, err := s.TryScope(v)
	if err != nil {
		panic(err)
	}
	return g
}

func (s *LocalSlot[T]) uninit() error {
	return &UninitializedError{Scope: Local, Role: s.role}
}
