package service

import (
	"hash/maphash"
	"sync"
)

const guardStripes = 64

type guardStripe struct {
	mu  sync.RWMutex
	gen uint64
}

// fillGuard orders cache fills against invalidations of the same id.
// A fill whose read began before an invalidation is dropped, so a slow
// read can never put a pre-update value back after Update/Delete cleared it.
type fillGuard struct {
	seed    maphash.Seed
	stripes [guardStripes]guardStripe
}

func newFillGuard() *fillGuard {
	return &fillGuard{seed: maphash.MakeSeed()}
}

func (g *fillGuard) stripe(id string) *guardStripe {
	return &g.stripes[maphash.String(g.seed, id)%guardStripes]
}

// snapshot must be taken before reading the store.
func (g *fillGuard) snapshot(id string) uint64 {
	s := g.stripe(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// fill runs set unless id was invalidated since gen. It reports whether set ran.
func (g *fillGuard) fill(id string, gen uint64, set func()) bool {
	s := g.stripe(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen != gen {
		return false
	}
	set()
	return true
}

// invalidate bumps the generation and runs del with fills for the stripe excluded.
func (g *fillGuard) invalidate(id string, del func()) {
	s := g.stripe(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	del()
}
