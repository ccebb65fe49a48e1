// Package pmem provides the raw persistent-memory primitives the log
// manager is built on: a byte-addressable Region with an explicit
// durability barrier, and Window views over sub-ranges of a region.
//
// A Region is the moral equivalent of a block disk, but byte-granular:
// slot metadata records are much smaller than a page, so callers
// address bytes and the implementation decides what a barrier costs.
package pmem

// Region is a fixed-size range of persistent memory.
//
// Load and Store panic on out-of-bounds access; a bad offset is a
// layout bug, not a runtime condition.
type Region interface {
	// Load copies len(p) bytes at off into p.
	Load(off uint64, p []byte)

	// Store copies p into the region at off. The write is not
	// guaranteed durable until a subsequent Barrier.
	Store(off uint64, p []byte)

	// Barrier ensures all preceding Stores are crash-visible before
	// any later Store proceeds.
	Barrier()

	// Size reports the region size in bytes.
	Size() uint64

	// Close releases the region and makes it unusable.
	Close()
}

// Window is a sub-range view of a Region. Offsets are relative to the
// window start; accesses outside the window panic.
type Window struct {
	r    Region
	off  uint64
	size uint64
}

func MkWindow(r Region, off uint64, size uint64) Window {
	if off+size > r.Size() {
		panic("pmem: window out of range")
	}
	return Window{r: r, off: off, size: size}
}

func (w Window) check(off uint64, n uint64) {
	if off+n > w.size {
		panic("pmem: access outside window")
	}
}

func (w Window) Load(off uint64, p []byte) {
	w.check(off, uint64(len(p)))
	w.r.Load(w.off+off, p)
}

func (w Window) Store(off uint64, p []byte) {
	w.check(off, uint64(len(p)))
	w.r.Store(w.off+off, p)
}

func (w Window) Barrier() {
	w.r.Barrier()
}

func (w Window) Size() uint64 {
	return w.size
}
