// Package redolog is a concrete log type for the log manager: a
// fixed-capacity redo log of (seq, key, val) records living inside one
// physical log region.
//
// The layout of a slot's region:
//
//	[ hdr: magic | count ] [ rec 0 | rec 1 | ... ]
//
// Records are appended with a store-barrier, then the header count is
// advanced with a second store-barrier, so a crash between the two
// loses at most the record being appended. Sequence numbers are
// assigned by the client and are global across logs; recovery replays
// records one at a time in global sequence order, which is how
// interdependent logs end up recovered in the right interleaving.
package redolog

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/logmgr"
	"github.com/mit-pdos/pmlog/util"
)

// Type is the built-in type tag of redo logs.
const Type common.LogType = 1

const (
	logMagic = uint64(0x7265646f6c6f6701)

	hdrBytes = uint64(64)
	recBytes = uint64(24)
)

// RedoLog is the volatile structure of one redo log slot.
type RedoLog struct {
	dsc *logmgr.LogDsc

	tbl   map[uint64]uint64
	count uint64 // records durably in the log
	next  uint64 // recovery cursor
}

type redoOps struct {
	apply func(key uint64, val uint64)
}

// MkOps builds the operations for redo logs. apply, if non-nil, is
// invoked for every record replayed during recovery, in global
// sequence order across all redo logs.
func MkOps(apply func(key uint64, val uint64)) logmgr.LogOps {
	return redoOps{apply: apply}
}

func (l *RedoLog) writeHdr(count uint64) {
	enc := marshal.NewEnc(hdrBytes)
	enc.PutInt(logMagic)
	enc.PutInt(count)
	l.dsc.Data.Store(0, enc.Finish())
	l.dsc.Data.Barrier()
}

func (l *RedoLog) readHdr() (uint64, bool) {
	buf := make([]byte, hdrBytes)
	l.dsc.Data.Load(0, buf)
	dec := marshal.NewDec(buf)
	magic := dec.GetInt()
	count := dec.GetInt()
	return count, magic == logMagic
}

func (l *RedoLog) capacity() uint64 {
	return (l.dsc.Data.Size() - hdrBytes) / recBytes
}

func (l *RedoLog) readRec(i uint64) (uint64, uint64, uint64) {
	buf := make([]byte, recBytes)
	l.dsc.Data.Load(hdrBytes+i*recBytes, buf)
	dec := marshal.NewDec(buf)
	return dec.GetInt(), dec.GetInt(), dec.GetInt()
}

// orderAt reports record i's sequence number, or the invalid-order
// sentinel past the end of the log.
func (l *RedoLog) orderAt(i uint64) uint64 {
	if i >= l.count {
		return common.InvLogOrder
	}
	seq, _, _ := l.readRec(i)
	return seq
}

// Append durably adds a record. Returns false when the log is full.
func (l *RedoLog) Append(seq uint64, key uint64, val uint64) bool {
	if l.count >= l.capacity() {
		return false
	}
	enc := marshal.NewEnc(recBytes)
	enc.PutInt(seq)
	enc.PutInt(key)
	enc.PutInt(val)
	l.dsc.Data.Store(hdrBytes+l.count*recBytes, enc.Finish())
	l.dsc.Data.Barrier()
	// The record is in place; advancing the count commits it.
	l.writeHdr(l.count + 1)
	l.count += 1
	l.tbl[key] = val
	util.DPrintf(5, "Append: slot %d seq %d key %d\n", l.dsc.Slot, seq, key)
	return true
}

// Lookup reads a key from the volatile table.
func (l *RedoLog) Lookup(key uint64) (uint64, bool) {
	val, ok := l.tbl[key]
	return val, ok
}

// Len reports the number of committed records.
func (l *RedoLog) Len() uint64 {
	return l.count
}

// Open returns the volatile redo log attached to dsc.
func Open(dsc *logmgr.LogDsc) *RedoLog {
	return dsc.Log.(*RedoLog)
}

func mkRedoLog(dsc *logmgr.LogDsc) *RedoLog {
	l := &RedoLog{
		dsc: dsc,
		tbl: make(map[uint64]uint64),
	}
	count, ok := l.readHdr()
	if ok {
		l.count = count
	}
	dsc.Log = l
	return l
}

func (redoOps) Alloc(dsc *logmgr.LogDsc) error {
	// Adopt whatever the slot holds; a fresh slot has no valid header
	// and reads as empty.
	mkRedoLog(dsc)
	return nil
}

func (redoOps) Init(dsc *logmgr.LogDsc) error {
	l, ok := dsc.Log.(*RedoLog)
	if !ok {
		l = mkRedoLog(dsc)
	}
	// Fresh use: discard any previous contents.
	l.writeHdr(0)
	l.count = 0
	l.next = 0
	l.tbl = make(map[uint64]uint64)
	return nil
}

func (redoOps) RecoveryInit(dsc *logmgr.LogDsc) {
	l := Open(dsc)
	l.next = 0
	dsc.Order = l.orderAt(0)
}

func (ops redoOps) RecoveryDo(dsc *logmgr.LogDsc) {
	l := Open(dsc)
	seq, key, val := l.readRec(l.next)
	l.tbl[key] = val
	if ops.apply != nil {
		ops.apply(key, val)
	}
	util.DPrintf(5, "RecoveryDo: slot %d seq %d key %d\n", dsc.Slot, seq, key)
	l.next += 1
}

func (redoOps) RecoveryPrepareNext(dsc *logmgr.LogDsc) {
	l := Open(dsc)
	dsc.Order = l.orderAt(l.next)
}
