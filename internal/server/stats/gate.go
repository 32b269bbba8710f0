package stats

import "sync"

// Gate coordinates the two levels of locking the engine needs: per-user
// serialization of time-series appends, and mutual exclusion between
// administrative operations (reset, retirement, multiplier recalculation)
// and in-flight ingestion.
//
// Ingestion holds the shared admin lock plus the user's lock; administrative
// operations hold the exclusive admin lock, which drains the whole cycle.
type Gate struct {
	admin sync.RWMutex

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewGate() *Gate {
	return &Gate{users: make(map[string]*sync.Mutex)}
}

// EnterIngest takes the shared admin lock and the per-user lock. The
// returned function releases both.
func (g *Gate) EnterIngest(userID string) func() {
	g.admin.RLock()
	ul := g.userLock(userID)
	ul.Lock()
	return func() {
		ul.Unlock()
		g.admin.RUnlock()
	}
}

// EnterAdmin takes the exclusive admin lock. The returned function releases it.
func (g *Gate) EnterAdmin() func() {
	g.admin.Lock()
	return g.admin.Unlock
}

func (g *Gate) userLock(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	ul, ok := g.users[userID]
	if !ok {
		ul = &sync.Mutex{}
		g.users[userID] = ul
	}
	return ul
}

// Forget drops the lock entry of a removed user.
func (g *Gate) Forget(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.users, userID)
}
