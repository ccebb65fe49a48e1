package logmgr

import (
	"github.com/tchajed/goose/machine"

	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/pmem"
)

const flagsOff = uint64(0)

// Nvmd accesses one slot's persistent metadata record: a generic flags
// word carrying the type tag in its low bits, with the rest of the
// record reserved. The tag is the only durable record of slot
// ownership, so updates go through Store followed by Barrier.
type Nvmd struct {
	w pmem.Window
}

func mkNvmd(w pmem.Window) Nvmd {
	return Nvmd{w: w}
}

func (md Nvmd) Flags() uint64 {
	buf := make([]byte, 8)
	md.w.Load(flagsOff, buf)
	return machine.UInt64Get(buf)
}

func (md Nvmd) LogType() common.LogType {
	return common.LogType(md.Flags() & common.TypeMask)
}

// SetLogType stores a new type tag, preserving the other flag bits.
// The store is not durable until Barrier.
func (md Nvmd) SetLogType(t common.LogType) {
	flags := md.Flags()&^common.TypeMask | uint64(t)
	buf := make([]byte, 8)
	machine.UInt64Put(buf, flags)
	md.w.Store(flagsOff, buf)
}

func (md Nvmd) Barrier() {
	md.w.Barrier()
}
