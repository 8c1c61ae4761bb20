package registry

import "sync"

// Guard undoes a scoped install. Release it with defer.
type Guard struct {
	once    sync.Once
	release func()
}

func newGuard(release func()) *Guard {
	return &Guard{release: release}
}

// Release restores the slot's previous occupant, or empties the slot if it
// had none, and unlocks the slot for new guards. Calls after the first are
// no-ops.
func (g *Guard) Release() {
	g.once.Do(g.release)
}
