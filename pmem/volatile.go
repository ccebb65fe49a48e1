package pmem

import (
	"fmt"
	"sync"
)

var _ Region = (*VolatileRegion)(nil)

// VolatileRegion is an in-memory Region for tests. Barrier is a no-op;
// the data does not survive the process.
type VolatileRegion struct {
	mu   *sync.RWMutex
	data []byte
}

func NewVolatileRegion(size uint64) *VolatileRegion {
	return &VolatileRegion{
		mu:   new(sync.RWMutex),
		data: make([]byte, size),
	}
}

func (r *VolatileRegion) Load(off uint64, p []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if off+uint64(len(p)) > uint64(len(r.data)) {
		panic(fmt.Errorf("out-of-bounds load at %v", off))
	}
	copy(p, r.data[off:])
}

func (r *VolatileRegion) Store(off uint64, p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if off+uint64(len(p)) > uint64(len(r.data)) {
		panic(fmt.Errorf("out-of-bounds store at %v", off))
	}
	copy(r.data[off:], p)
}

func (r *VolatileRegion) Barrier() {}

func (r *VolatileRegion) Size() uint64 {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(r.data))
}

func (r *VolatileRegion) Close() {}
