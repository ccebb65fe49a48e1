package logmgr

import (
	"sync"

	"github.com/mit-pdos/pmlog/common"
	"github.com/mit-pdos/pmlog/util"
)

// Compile-time-known log types, registered by every manager during
// Init before the initial recovery pass.
var (
	staticMu    sync.Mutex
	staticTypes []staticEntry
)

type staticEntry struct {
	t   common.LogType
	ops LogOps
}

// RegisterStatic records a built-in log type. Call it from a package
// init function; managers constructed afterwards register the type
// during their own Init.
func RegisterStatic(t common.LogType, ops LogOps) {
	staticMu.Lock()
	defer staticMu.Unlock()
	for _, e := range staticTypes {
		if e.t == t {
			return
		}
	}
	staticTypes = append(staticTypes, staticEntry{t: t, ops: ops})
}

// registerStaticTypes runs during the single-threaded bootstrap, so it
// skips the manager mutex.
func (mgr *LogMgr) registerStaticTypes() {
	staticMu.Lock()
	entries := make([]staticEntry, len(staticTypes))
	copy(entries, staticTypes)
	staticMu.Unlock()
	for _, e := range entries {
		mgr.registerLogType(e.t, e.ops, false)
	}
}

// RegisterType makes a log type known to the manager. Registering an
// already-registered type is a no-op. Pending descriptors carrying the
// type's tag get their operations bound and their volatile structure
// materialized right away; they stay pending until the next recovery
// pass schedules them.
func (mgr *LogMgr) RegisterType(t common.LogType, ops LogOps) {
	mgr.Init()
	mgr.registerLogType(t, ops, true)
}

func (mgr *LogMgr) registerLogType(t common.LogType, ops LogOps, lock bool) {
	if t == common.TypeFree {
		panic("logmgr: cannot register the free type tag")
	}
	if uint64(t)&^common.TypeMask != 0 {
		panic("logmgr: log type does not fit the tag mask")
	}
	if lock {
		mgr.mu.Lock()
		defer mgr.mu.Unlock()
	}
	if _, ok := mgr.types[t]; ok {
		// already registered, nothing to be done
		return
	}
	mgr.types[t] = ops
	for _, i := range mgr.pending {
		dsc := mgr.dscs[i]
		if dsc.Type() == t {
			dsc.Ops = ops
			if err := ops.Alloc(dsc); err != nil {
				panic("logmgr: alloc failed on a registered type")
			}
		}
	}
	util.DPrintf(1, "RegisterType: type %d\n", t)
}
