package stock

import (
	"context"
	"sync"
)

type unitKey struct{}

// Unit binds propagation to a transaction the caller already opened.
// Event handlers that find a Unit in the context apply their changes through
// its repositories instead of starting their own transaction, so the source
// document and the stock records commit together.
type Unit struct {
	mu       sync.Mutex
	repos    TransactionalRepositories
	changes  Changes
	registry *Registry
}

// BeginUnit returns a context carrying a Unit over repos
func BeginUnit(ctx context.Context, repos TransactionalRepositories) (context.Context, *Unit) {
	u := &Unit{repos: repos}
	return context.WithValue(ctx, unitKey{}, u), u
}

func unitFrom(ctx context.Context) *Unit {
	u, _ := ctx.Value(unitKey{}).(*Unit)
	return u
}

func (u *Unit) record(registry *Registry, changes Changes) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.changes = append(u.changes, changes...)
	if registry != nil {
		u.registry = registry
	}
}

// Changes returns the records written through the unit so far
func (u *Unit) Changes() Changes {
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(Changes, len(u.changes))
	copy(out, u.changes)
	return out
}

// Committed pushes the unit's changes into the registry. Call it only after
// the transaction committed. Safe on a nil unit.
func (u *Unit) Committed(ctx context.Context) {
	if u == nil {
		return
	}
	u.mu.Lock()
	registry, changes := u.registry, u.changes
	u.changes = nil
	u.mu.Unlock()

	if len(changes) > 0 {
		registry.Update(ctx, changes...)
	}
}
