package logmgr

import (
	"github.com/mit-pdos/pmlog/common"
)

func (suite *MgrSuite) TestRecoverEmptyPending() {
	suite.mgr.Recover()
	suite.mgr.Recover()
	suite.Len(suite.mgr.free, testSlots)
	suite.checkSlotInvariant()
}

func (suite *MgrSuite) TestRecoverUnknownTypeStaysPending() {
	suite.tagSlot(1, 7)
	suite.restart()
	suite.Len(suite.mgr.pending, 1)

	// No type 7 registered: the slot is untouched.
	suite.mgr.Recover()
	suite.Len(suite.mgr.pending, 1)
	suite.Nil(suite.mgr.dscs[1].Ops)
	suite.checkSlotInvariant()

	// Late registration, then another pass moves it to free.
	trace := []recStep{}
	ops := mkFakeOps(&trace)
	ops.script[1] = []uint64{3}
	suite.mgr.RegisterType(7, ops)
	suite.Len(suite.mgr.pending, 1)
	suite.mgr.Recover()
	suite.Empty(suite.mgr.pending)
	suite.Len(suite.mgr.free, testSlots)
	suite.Equal([]recStep{{slot: 1, order: 3}}, trace)
	suite.checkSlotInvariant()
}

func (suite *MgrSuite) TestRecoverSkipsTypesWithoutRecovery() {
	suite.tagSlot(1, 7)
	suite.restart()

	// plainOps has no recovery side: binding happens, scheduling
	// does not.
	ops := &plainOps{}
	suite.mgr.RegisterType(7, ops)
	suite.Equal(1, ops.allocs)
	suite.mgr.Recover()
	suite.Len(suite.mgr.pending, 1)
	suite.checkSlotInvariant()
}

func (suite *MgrSuite) TestRecoverNothingToRecover() {
	// RecoveryInit leaves the sentinel: the log is collected and
	// freed without a single recovery step.
	suite.tagSlot(1, 7)
	suite.restart()
	trace := []recStep{}
	suite.mgr.RegisterType(7, mkFakeOps(&trace))
	suite.mgr.Recover()
	suite.Empty(suite.mgr.pending)
	suite.Len(suite.mgr.free, testSlots)
	suite.Empty(trace)
}

func (suite *MgrSuite) TestRecoverIndependentLogs() {
	// Each log reports one distinct order and then the sentinel; all
	// of them must end up free with one step each.
	suite.tagSlot(0, 7)
	suite.tagSlot(1, 7)
	suite.tagSlot(2, 7)
	suite.restart()

	trace := []recStep{}
	ops := mkFakeOps(&trace)
	ops.script[0] = []uint64{30}
	ops.script[1] = []uint64{10}
	ops.script[2] = []uint64{20}
	suite.mgr.RegisterType(7, ops)
	suite.mgr.Recover()

	suite.Len(suite.mgr.free, testSlots)
	suite.Equal([]recStep{
		{slot: 1, order: 10},
		{slot: 2, order: 20},
		{slot: 0, order: 30},
	}, trace)
	suite.checkSlotInvariant()
}

func (suite *MgrSuite) TestRecoverInterleavedOrders() {
	// Cross-log dependency: type A's second step becomes due only
	// after type B's first step, expressed as interleaved orders
	// recomputed after every step.
	suite.tagSlot(0, 7)
	suite.tagSlot(1, 8)
	suite.restart()

	trace := []recStep{}
	opsA := mkFakeOps(&trace)
	opsA.script[0] = []uint64{10, 30}
	opsB := mkFakeOps(&trace)
	opsB.script[1] = []uint64{20, 40}
	suite.mgr.RegisterType(7, opsA)
	suite.mgr.RegisterType(8, opsB)
	suite.mgr.Recover()

	suite.Equal([]recStep{
		{slot: 0, order: 10},
		{slot: 1, order: 20},
		{slot: 0, order: 30},
		{slot: 1, order: 40},
	}, trace)
	suite.Len(suite.mgr.free, testSlots)
	suite.checkSlotInvariant()
}

func (suite *MgrSuite) TestRecoveredSlotKeepsTag() {
	suite.tagSlot(1, 7)
	suite.restart()
	trace := []recStep{}
	suite.mgr.RegisterType(7, mkFakeOps(&trace))
	suite.mgr.Recover()
	suite.Equal(common.LogType(7), suite.mgr.dscs[1].Type())
	suite.NotNil(suite.mgr.dscs[1].Ops)
}
