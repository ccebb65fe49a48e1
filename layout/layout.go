// Package layout partitions the fixed-size log pool into a metadata
// section followed by page-aligned physical log regions.
//
// The layout of the pool:
//
//	[ slot metadata records | pad | log 0 | log 1 | ... | log N-1 ]
//	 ^                             ^
//	 0                             MetaBytes (page aligned)
//
// Every offset is computed from a slot index; nothing in the pool is
// addressed by raw pointers.
package layout

import (
	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/util"
)

type Layout struct {
	Start    uintptr // fixed virtual address of the pool
	PoolSize uint64

	NumSlots uint64
	LogBytes uint64 // size of one physical log region, page aligned

	// MetaBytes is the page-aligned size of the metadata section.
	MetaBytes uint64
}

// MkLayout computes the pool partitioning. Panics if the metadata
// section plus the log regions do not fit in poolSize; the geometry is
// a configuration invariant, not a runtime condition.
func MkLayout(start uintptr, poolSize uint64, numSlots uint64, logBytes uint64) Layout {
	ly := Layout{
		Start:     start,
		PoolSize:  poolSize,
		NumSlots:  numSlots,
		LogBytes:  util.PageAlign(logBytes),
		MetaBytes: util.PageAlign(numSlots * common.NvmdSize),
	}
	if ly.MetaBytes+numSlots*ly.LogBytes > poolSize {
		panic("layout: pool too small for configured slots")
	}
	return ly
}

// DefaultLayout is the process-wide pool geometry.
func DefaultLayout() Layout {
	return MkLayout(common.PoolStart, common.PoolSize,
		common.LogNum, common.PhysicalLogSize)
}

// MetaOff is the pool offset of slot i's metadata record.
func (ly Layout) MetaOff(i uint64) uint64 {
	if i >= ly.NumSlots {
		panic("layout: slot index out of range")
	}
	return i * common.NvmdSize
}

// LogOff is the pool offset of slot i's physical log region.
func (ly Layout) LogOff(i uint64) uint64 {
	if i >= ly.NumSlots {
		panic("layout: slot index out of range")
	}
	return ly.MetaBytes + i*ly.LogBytes
}
