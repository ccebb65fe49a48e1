// Package common holds types and constants shared across the log
// manager: the log-type tag stored in each slot's persistent metadata
// and the default geometry of the log pool.
package common

// LogType identifies a registered log implementation. The value is
// persisted in each slot's metadata record, so it must be stable
// across restarts.
type LogType uint64

const (
	// TypeFree is the persisted tag of a slot that belongs to no log.
	TypeFree LogType = 0

	// TypeMask extracts the type tag from a metadata flags word.
	TypeMask uint64 = 0xffff
)

// InvLogOrder is the recovery-order sentinel: a descriptor carrying it
// has no recovery step due.
const InvLogOrder uint64 = ^uint64(0)

const (
	PageSize uint64 = 4096

	// NvmdSize is the size of one persistent slot metadata record.
	NvmdSize uint64 = 64

	// LogNum is the number of slots in the pool.
	LogNum uint64 = 32

	// PhysicalLogSize is the size of one physical log region, before
	// page alignment.
	PhysicalLogSize uint64 = 64 * PageSize
)

// PoolStart is the fixed virtual address the pool is mapped at, so
// persisted internal references stay valid without relocation.
const PoolStart uintptr = 0x0000_1000_0000_0000

// PoolSize is the fixed total size of the pool region.
const PoolSize uint64 = 16 * 1024 * 1024
