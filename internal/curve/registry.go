package curve

import (
	"context"
	"sort"
	"sync"
)

// Registry creates pools and looks them up by id. Pools share the registry's
// sink, observer, clock and logger.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*Pool
	deps  Deps
}

// NewRegistry returns an empty registry. Asset and Minter in deps are ignored.
func NewRegistry(deps Deps) *Registry {
	return &Registry{pools: make(map[string]*Pool), deps: deps}
}

// Create seeds a new pool. The id must be unused.
func (r *Registry) Create(ctx context.Context, cfg Config, asset FungibleAsset, minter TokenMinter) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pools[cfg.ID]; exists {
		return nil, validationErr("create", "id", "already registered: "+cfg.ID)
	}
	deps := r.deps
	deps.Asset = asset
	deps.Minter = minter
	pool, err := NewPool(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}
	r.pools[cfg.ID] = pool
	return pool, nil
}

// Get returns the pool registered under id.
func (r *Registry) Get(id string) (*Pool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool, ok := r.pools[id]
	return pool, ok
}

// List returns registered pool ids in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
