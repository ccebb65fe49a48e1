// Package pmlog wires the log manager to its collaborators: the
// segment table provides the pool's fixed-address mapping, the layout
// partitions it, and the manager recovers whatever a prior run left
// behind.
package pmlog

import (
	"github.com/mit-pdos/pmlog/layout"
	"github.com/mit-pdos/pmlog/logmgr"
	"github.com/mit-pdos/pmlog/segment"
)

// Open initializes a log manager over the segment directory dir with
// the default pool geometry. Static log types registered before Open
// are recovered during initialization; other types can be registered
// on the returned manager afterwards.
func Open(dir string) *logmgr.LogMgr {
	tbl := segment.MkTable(dir)
	mgr := logmgr.MkLogMgr(tbl, layout.DefaultLayout())
	mgr.Init()
	return mgr
}
