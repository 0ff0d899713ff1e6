package variation

import (
	"sync"
	"sync/atomic"

	"github.com/motifvae/motif"
)

type (
	// VectorPool recycles latent vectors between generation requests, so
	// that repeated requests do not keep allocating new buffers. Every vector
	// taken from the pool is counted until it is put back; Outstanding
	// reports the count.
	VectorPool struct {
		pool        sync.Pool
		outstanding atomic.Int64
	}

	// Scope owns the vectors taken through it until Release returns them all
	// to the pool. A Scope is not safe for concurrent use.
	Scope struct {
		pool *VectorPool
		held []*motif.Vector
	}
)

func NewVectorPool() *VectorPool {
	return &VectorPool{pool: sync.Pool{New: func() any { return new(motif.Vector) }}}
}

// Get returns a zeroed vector of length dim. It should be returned to the
// pool with Put.
func (p *VectorPool) Get(dim int) *motif.Vector {
	v := p.pool.Get().(*motif.Vector)
	if cap(*v) < dim {
		*v = make(motif.Vector, dim)
	} else {
		*v = (*v)[:dim]
		clear(*v)
	}
	p.outstanding.Add(1)
	return v
}

// Put returns a vector to the pool. The caller must not use the vector
// afterwards.
func (p *VectorPool) Put(v *motif.Vector) {
	*v = (*v)[:0]
	p.outstanding.Add(-1)
	p.pool.Put(v)
}

// Outstanding returns the number of vectors taken but not yet returned.
func (p *VectorPool) Outstanding() int { return int(p.outstanding.Load()) }

func (p *VectorPool) Scope() *Scope { return &Scope{pool: p} }

// Get takes a zeroed vector of length dim from the pool and holds it until
// Release.
func (s *Scope) Get(dim int) motif.Vector {
	v := s.pool.Get(dim)
	s.held = append(s.held, v)
	return *v
}

// Batch takes n vectors of length dim.
func (s *Scope) Batch(n, dim int) []motif.Vector {
	ret := make([]motif.Vector, n)
	for i := range ret {
		ret[i] = s.Get(dim)
	}
	return ret
}

// Release returns every vector held by the scope to the pool. Calling it
// more than once is harmless.
func (s *Scope) Release() {
	for _, v := range s.held {
		s.pool.Put(v)
	}
	s.held = s.held[:0]
}
