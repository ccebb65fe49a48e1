package logmgr

import (
	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/util"
)

// Recover re-runs the recovery pass against the current pending list.
// Pending descriptors whose type has been registered since the last
// pass are recovered and freed; the rest stay pending. Safe to call
// with nothing pending.
func (mgr *LogMgr) Recover() {
	mgr.Init()
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.doRecovery()
}

// doRecovery merges the recovery of heterogeneous, possibly
// interdependent logs into one global order. Each log reports only a
// type-local order; the order of the next step is recomputed after
// every step because one log's next step may depend on the effects of
// another's.
func (mgr *LogMgr) doRecovery() {
	// Collect the logs to be recovered and prepare each one. A
	// prepared log reports its recovery order through dsc.Order.
	var work []*LogDsc
	var still []uint64
	for _, i := range mgr.pending {
		dsc := mgr.dscs[i]
		rec, ok := dsc.Ops.(LogRecovery)
		if dsc.Ops != nil && ok {
			rec.RecoveryInit(dsc)
			dsc.state = stateRecovering
			work = append(work, dsc)
		} else {
			// Type not registered yet; a later pass picks it up.
			still = append(still, i)
		}
	}
	mgr.pending = still

	// Find the next log to recover, recover one step, recompute its
	// order, and repeat until no log has a step due.
	for {
		var next *LogDsc
		for _, dsc := range work {
			if dsc.Order == common.InvLogOrder {
				continue
			}
			if next == nil || next.Order > dsc.Order {
				next = dsc
			}
		}
		if next == nil {
			break
		}
		util.DPrintf(5, "doRecovery: slot %d order %d\n",
			next.Slot, next.Order)
		rec := next.Ops.(LogRecovery)
		rec.RecoveryDo(next)
		rec.RecoveryPrepareNext(next)
	}

	// Make the recovered logs available for reuse.
	for _, dsc := range work {
		dsc.state = stateFree
		mgr.free = append(mgr.free, dsc.Slot)
	}
	util.DPrintf(1, "doRecovery: recovered %d logs, %d still pending\n",
		len(work), len(mgr.pending))
}
