package logmgr

import (
	"errors"

	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/pmem"
)

// Operational failures returned by Alloc. Invariant violations are not
// errors; they panic.
var (
	// ErrNoFreeLog means no free descriptor can satisfy the request.
	// A free slot tagged with a different concrete type does not
	// count; reclaiming one is unsupported.
	ErrNoFreeLog = errors.New("logmgr: no free log descriptor")

	// ErrUnknownLogType means an untyped free slot was available but
	// the requested type has never been registered.
	ErrUnknownLogType = errors.New("logmgr: log type not registered")
)

// LogOps is the contract every concrete log type implements to
// participate in allocation.
//
// Both operations must succeed on any descriptor the type claims; a
// failure is a contract violation and the manager panics on it.
type LogOps interface {
	// Alloc prepares the descriptor's persistent state for use and
	// materializes the volatile log structure in dsc.Log.
	Alloc(dsc *LogDsc) error

	// Init constructs the volatile log structure for a freshly
	// allocated slot, discarding any previous contents.
	Init(dsc *LogDsc) error
}

// LogRecovery is the optional recovery side of a log type. Types that
// do not implement it are skipped by the recovery engine and their
// descriptors stay pending.
type LogRecovery interface {
	// RecoveryInit inspects persisted state and sets dsc.Order to the
	// first recovery step's order, or leaves common.InvLogOrder if
	// there is nothing to recover.
	RecoveryInit(dsc *LogDsc)

	// RecoveryDo applies the recovery step dsc.Order refers to.
	RecoveryDo(dsc *LogDsc)

	// RecoveryPrepareNext recomputes dsc.Order for the next step, or
	// sets common.InvLogOrder when recovery of this log is complete.
	RecoveryPrepareNext(dsc *LogDsc)
}

// AddrSpace is the address-space service the manager obtains its pool
// from (see the segment package for the file-backed implementation).
type AddrSpace interface {
	// Find reports an existing mapping at base, if any.
	Find(base uintptr, size uint64) (pmem.Region, bool)

	// Map establishes a new mapping at the fixed address base.
	Map(base uintptr, size uint64) (pmem.Region, error)
}

type slotState int

const (
	stateFree slotState = iota
	statePending
	stateRecovering
	stateActive
)

// LogDsc is the volatile descriptor of one slot: its bindings into the
// persistent pool plus runtime state. A descriptor is on exactly one
// of the manager's lists (the recovery working set counts as one)
// and moves between them only under the manager mutex.
type LogDsc struct {
	// Slot is the index of this descriptor in the pool layout.
	Slot uint64

	// Nvmd is the slot's persistent metadata record.
	Nvmd Nvmd

	// Data is the slot's physical log region, owned exclusively by
	// whichever log occupies the slot.
	Data pmem.Window

	// Log is the volatile log structure, constructed lazily by the
	// type's own Alloc/Init.
	Log interface{}

	// Ops is the bound operations of the slot's type; nil until the
	// type is registered.
	Ops LogOps

	// Order is the recovery order reported by the type;
	// common.InvLogOrder when no step is due.
	Order uint64

	state slotState
}

// Type reads the slot's persisted type tag.
func (dsc *LogDsc) Type() common.LogType {
	return dsc.Nvmd.LogType()
}
