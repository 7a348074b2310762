package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// forcePool recycles the per-step net force buffers.
type forcePool struct {
	pool sync.Pool
	size int
}

func newForcePool(n int) *forcePool {
	return &forcePool{
		size: n,
		pool: sync.Pool{
			New: func() any {
				buf := make([]r2.Vec, n)
				return &buf
			},
		},
	}
}

func (p *forcePool) Get() *[]r2.Vec {
	return p.pool.Get().(*[]r2.Vec)
}

func (p *forcePool) Put(buf *[]r2.Vec) {
	if len(*buf) != p.size {
		return
	}
	clear(*buf)
	p.pool.Put(buf)
}
