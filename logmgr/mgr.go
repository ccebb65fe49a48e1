// Package logmgr manages a fixed pool of persistent-memory log slots.
//
// The manager owns a descriptor per slot, a registry of log types, and
// three worklists (free, pending, active). Construction adopts or
// creates the pool at its fixed address, classifies every slot from
// its persisted type tag, registers the compile-time-known log types,
// and runs a dependency-ordered recovery pass. Clients then allocate
// slots for registered types; the type's own operations drive the
// slot's contents from there.
package logmgr

import (
	"sync"
	"sync/atomic"

	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/layout"
	"github.com/mit-pdos/pmlog/pmem"
	"github.com/mit-pdos/pmlog/util"
)

// LogMgr is the process-wide log manager. Construct one with MkLogMgr
// and share the handle; all methods are safe for concurrent use.
type LogMgr struct {
	as AddrSpace
	ly layout.Layout

	// initMu guards only the one-time check-and-construct window;
	// initialized is published last, after every other field is
	// fully constructed.
	initMu      sync.Mutex
	initialized atomic.Bool

	// mu protects the registry and the worklists.
	mu      sync.Mutex
	pool    pmem.Region
	dscs    []*LogDsc
	types   map[common.LogType]LogOps
	free    []uint64
	pending []uint64
	active  []uint64
}

func MkLogMgr(as AddrSpace, ly layout.Layout) *LogMgr {
	return &LogMgr{
		as:    as,
		ly:    ly,
		types: make(map[common.LogType]LogOps),
	}
}

// Init reincarnates the pool and recovers the log types known so far.
// It is idempotent and thread-safe; every other operation calls it
// implicitly, so clients only need it to control when the recovery
// pass runs.
func (mgr *LogMgr) Init() {
	if mgr.initialized.Load() {
		return
	}
	mgr.initMu.Lock()
	defer mgr.initMu.Unlock()
	if mgr.initialized.Load() {
		return
	}
	mgr.createPool()
	mgr.registerStaticTypes()
	mgr.doRecovery()
	// Published last: a caller that observes the flag set also
	// observes a fully constructed manager.
	mgr.initialized.Store(true)
}

// createPool adopts the pool mapping if a prior run (or a crash during
// creation) left one at the fixed address, creates it otherwise, and
// builds the descriptor table by classifying every slot's persisted
// type tag. Runs exactly once, at manager initialization.
func (mgr *LogMgr) createPool() {
	r, ok := mgr.as.Find(mgr.ly.Start, mgr.ly.PoolSize)
	if !ok {
		var err error
		r, err = mgr.as.Map(mgr.ly.Start, mgr.ly.PoolSize)
		if err != nil {
			panic("logmgr: could not map log pool segment: " + err.Error())
		}
		// The pool must exist durably before any slot tag does.
		r.Barrier()
	}
	if r.Size() < mgr.ly.PoolSize {
		panic("logmgr: pool segment smaller than layout")
	}
	mgr.pool = r

	mgr.dscs = make([]*LogDsc, mgr.ly.NumSlots)
	for i := uint64(0); i < mgr.ly.NumSlots; i++ {
		dsc := &LogDsc{
			Slot:  i,
			Nvmd:  mkNvmd(pmem.MkWindow(r, mgr.ly.MetaOff(i), common.NvmdSize)),
			Data:  pmem.MkWindow(r, mgr.ly.LogOff(i), mgr.ly.LogBytes),
			Order: common.InvLogOrder,
		}
		mgr.dscs[i] = dsc
		if dsc.Type() == common.TypeFree {
			dsc.state = stateFree
			mgr.free = append(mgr.free, i)
		} else {
			// Tag is known numerically; the implementation may be
			// registered later.
			dsc.state = statePending
			mgr.pending = append(mgr.pending, i)
		}
	}
	util.DPrintf(1, "createPool: %d slots, %d pending\n",
		mgr.ly.NumSlots, len(mgr.pending))
}

// Dsc returns slot i's descriptor.
func (mgr *LogMgr) Dsc(i uint64) *LogDsc {
	return mgr.dscs[i]
}

func removeSlot(list []uint64, slot uint64) []uint64 {
	for j, i := range list {
		if i == slot {
			return append(list[:j], list[j+1:]...)
		}
	}
	panic("logmgr: slot not on expected list")
}

// Alloc takes a free slot for a log of the given type, preferring a
// slot already tagged with that type over an untyped one. The returned
// descriptor is active and its physical log region belongs to the
// caller until Release.
func (mgr *LogMgr) Alloc(t common.LogType) (*LogDsc, error) {
	mgr.Init()
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	var sameType *LogDsc
	var untyped *LogDsc
	for _, i := range mgr.free {
		dsc := mgr.dscs[i]
		if sameType == nil && dsc.Type() == t {
			sameType = dsc
		}
		if untyped == nil && dsc.Type() == common.TypeFree {
			untyped = dsc
		}
	}

	var dsc *LogDsc
	if sameType != nil {
		// Operations were bound on a previous cycle; no rebinding.
		dsc = sameType
	} else if untyped != nil {
		dsc = untyped
		ops, ok := mgr.types[t]
		if !ok {
			return nil, ErrUnknownLogType
		}
		dsc.Ops = ops
		if err := ops.Alloc(dsc); err != nil {
			panic("logmgr: alloc failed on a registered type")
		}
	} else {
		// A free slot tagged with a different type cannot be
		// reclaimed; there is no retagging path.
		return nil, ErrNoFreeLog
	}

	mgr.free = removeSlot(mgr.free, dsc.Slot)
	dsc.state = stateActive
	mgr.active = append(mgr.active, dsc.Slot)

	if dsc.Ops == nil {
		panic("logmgr: allocating a slot with no operations bound")
	}
	if err := dsc.Ops.Init(dsc); err != nil {
		panic("logmgr: init failed on a registered type")
	}
	// After the crash point below, the slot is observed as owned by t
	// with its structure already initialized.
	dsc.Nvmd.SetLogType(t)
	dsc.Nvmd.Barrier()

	util.DPrintf(1, "Alloc: slot %d type %d\n", dsc.Slot, t)
	return dsc, nil
}

// Release returns an active descriptor to the free list. The persisted
// tag and the bound operations stay in place so a later Alloc of the
// same type can reuse the slot directly.
func (mgr *LogMgr) Release(dsc *LogDsc) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if dsc.state != stateActive {
		panic("logmgr: releasing a log that is not active")
	}
	mgr.active = removeSlot(mgr.active, dsc.Slot)
	dsc.state = stateFree
	mgr.free = append(mgr.free, dsc.Slot)
	util.DPrintf(1, "Release: slot %d\n", dsc.Slot)
}
