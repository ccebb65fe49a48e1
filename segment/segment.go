// Package segment is the address-space service the log manager uses to
// obtain its pool: it answers "does a mapping already exist at this
// address" and "map at this fixed address". Each segment is backed by
// a file named after its base address, so a segment created by a prior
// run is found and reattached at the same address.
package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mit-pdos/pmlog/pmem"
	"github.com/mit-pdos/pmlog/util"
)

// Table tracks the segments mapped into this process and the directory
// holding their backing files.
type Table struct {
	mu   *sync.Mutex
	dir  string
	segs map[uintptr]*pmem.MappedRegion
}

func MkTable(dir string) *Table {
	return &Table{
		mu:   new(sync.Mutex),
		dir:  dir,
		segs: make(map[uintptr]*pmem.MappedRegion),
	}
}

func (t *Table) path(base uintptr) string {
	return filepath.Join(t.dir, fmt.Sprintf("seg-%016x", uintptr(base)))
}

// Find reports whether a segment exists at base, reattaching its
// backing file if a prior run created it.
func (t *Table) Find(base uintptr, size uint64) (pmem.Region, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.segs[base]; ok {
		return r, true
	}
	path := t.path(base)
	if _, err := os.Stat(path); err != nil {
		return nil, false
	}
	// Backing file survives from a prior run; adopt it as-is.
	r, err := pmem.MapRegion(path, base, size)
	if err != nil {
		panic("segment: could not reattach segment: " + err.Error())
	}
	util.DPrintf(1, "segment: reattached %#x size %d\n", base, size)
	t.segs[base] = r
	return r, true
}

// Map creates a segment at the fixed address base. The caller must
// have checked Find first; mapping over a live segment would destroy
// persisted data.
func (t *Table) Map(base uintptr, size uint64) (pmem.Region, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.segs[base]; ok {
		panic("segment: mapping over an existing segment")
	}
	r, err := pmem.MapRegion(t.path(base), base, size)
	if err != nil {
		return nil, err
	}
	util.DPrintf(1, "segment: mapped %#x size %d\n", base, size)
	t.segs[base] = r
	return r, nil
}
