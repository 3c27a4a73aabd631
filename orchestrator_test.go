package netsim

import (
	"bytes"
	"testing"
)

func TestAutonomousReconcileNoOpWhenSyncMatches(t *testing.T) {
	o, _, _ := newTestOrchestrator(AutonomousProxy, WithSyncEquality[testInput, testSync, testAux](func(a, b *testSync) bool {
		return *a == *b
	}))
	o.ReceiveInput(testInput{DX: 1, Dt: SimTimeFromSeconds(0.1)})
	o.Tick(TickParams{Role: AutonomousProxy, LocalDeltaTimeSeconds: 0.1})

	local, ok := o.buffers.FindSync(1)
	if !ok {
		t.Fatalf("expected local Sync[1] to exist after the first tick")
	}
	o.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 1, Sync: *local}

	if err := o.Reconcile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.tick.LastProcessedInputKeyframe != 1 {
		t.Fatalf("expected no rollback bookkeeping change on a matching reconcile, got %d", o.tick.LastProcessedInputKeyframe)
	}
}

func TestAutonomousReconcileRollsBackOnDivergence(t *testing.T) {
	o, _, _ := newTestOrchestrator(AutonomousProxy, WithSyncEquality[testInput, testSync, testAux](func(a, b *testSync) bool {
		return *a == *b
	}))
	o.ReceiveInput(testInput{DX: 1, Dt: SimTimeFromSeconds(0.1)})
	o.Tick(TickParams{Role: AutonomousProxy, LocalDeltaTimeSeconds: 0.1})

	// Authority disagrees with the local prediction at keyframe 1.
	authoritative := testSync{X: 999}
	o.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 1, Sync: authoritative}

	if err := o.Reconcile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	corrected, ok := o.buffers.FindSync(1)
	if !ok || *corrected != authoritative {
		t.Fatalf("expected Sync[1] overwritten with authoritative state, got %+v ok=%v", corrected, ok)
	}
	if o.tick.LastProcessedInputKeyframe != 1 {
		t.Fatalf("expected LastProcessedInputKeyframe reset to 1 for replay, got %d", o.tick.LastProcessedInputKeyframe)
	}
}

func TestAutonomousReconcileReturnsEvictedWhenKeyframeUnknown(t *testing.T) {
	o, _, _ := newTestOrchestrator(AutonomousProxy)
	o.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 50, Sync: testSync{X: 1}}

	err := o.Reconcile()
	if err != ErrRollbackEvicted {
		t.Fatalf("expected ErrRollbackEvicted, got %v", err)
	}
}

func TestReconcileDependentPropagation(t *testing.T) {
	parent, _, _ := newTestOrchestrator(AutonomousProxy, WithSyncEquality[testInput, testSync, testAux](func(a, b *testSync) bool {
		return *a == *b
	}))
	child, _, _ := newTestOrchestrator(Authority)
	parent.AddDependent(child)

	parent.ReceiveInput(testInput{DX: 1, Dt: SimTimeFromSeconds(0.1)})
	parent.Tick(TickParams{Role: AutonomousProxy, LocalDeltaTimeSeconds: 0.1})

	parent.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 1, Sync: testSync{X: 999}}
	if err := parent.Reconcile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The parent rewinds to keyframe 1 with one input (its own produced
	// Input[2]) left to replay, so the child gets one BeginRollback and one
	// final StepRollback: one tick, after which its rollback origin is
	// cleared again.
	if child.globalFrame != 1 {
		t.Fatalf("expected one step_rollback tick on the child, got %d", child.globalFrame)
	}
	if child.rollbackOrigin != 0 {
		t.Fatalf("expected child's rollback origin cleared by the final step_rollback, got %d", child.rollbackOrigin)
	}
}

// TestReconcileDependentPropagationReplaysInLockstep exercises spec.md
// §8 scenario 5: a parent's reconcile issues begin_rollback followed by
// one step_rollback per replayed keyframe, culminating in is_final=true,
// and the dependent's resulting Sync must match what a fresh, uninterrupted
// run over the same inputs would have produced (the Replay-equivalence
// law of §8 applied to a dependent's own resimulation).
func TestReconcileDependentPropagationReplaysInLockstep(t *testing.T) {
	runThreeKeyframes := func() *Orchestrator[testInput, testSync, testAux] {
		o, _, _ := newTestOrchestrator(Authority)
		for i := 0; i < 3; i++ {
			o.ReceiveInput(testInput{DX: 1, DY: 2, Dt: SimTimeFromSeconds(0.1)})
			o.Tick(TickParams{Role: Authority, LocalDeltaTimeSeconds: 0.1})
		}
		return o
	}

	freshChild := runThreeKeyframes()
	freshHead, ok := freshChild.buffers.Sync.HeadKeyframe()
	if !ok {
		t.Fatalf("expected fresh child to have a Sync head")
	}
	freshFinal, ok := freshChild.buffers.Sync.Find(freshHead)
	if !ok {
		t.Fatalf("expected fresh child's final Sync state to be retained")
	}

	child := runThreeKeyframes()

	parent, _, _ := newTestOrchestrator(AutonomousProxy, WithSyncEquality[testInput, testSync, testAux](func(a, b *testSync) bool {
		return *a == *b
	}))
	parent.AddDependent(child)
	for i := 0; i < 3; i++ {
		parent.ReceiveInput(testInput{DX: 3, DY: 4, Dt: SimTimeFromSeconds(0.1)})
		parent.Tick(TickParams{Role: AutonomousProxy, LocalDeltaTimeSeconds: 0.1})
	}

	parent.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 1, Sync: testSync{X: 999}}
	if err := parent.Reconcile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if child.rollbackOrigin != 0 || child.rollbackDepth != 0 {
		t.Fatalf("expected child's rollback bookkeeping to be finalized by the last step_rollback call, got origin=%d depth=%d", child.rollbackOrigin, child.rollbackDepth)
	}

	childHead, ok := child.buffers.Sync.HeadKeyframe()
	if !ok || childHead != freshHead {
		t.Fatalf("expected child's Sync head to match the fresh replay's head %d, got %d (ok=%v)", freshHead, childHead, ok)
	}
	childFinal, ok := child.buffers.Sync.Find(childHead)
	if !ok {
		t.Fatalf("expected child's final Sync state to be retained")
	}
	if *childFinal != *freshFinal {
		t.Fatalf("expected dependent rollback-replay to match a fresh run: got %+v, want %+v", *childFinal, *freshFinal)
	}
}

func TestServerReceiverSerializeRoundTrip(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	o.ReceiveInput(testInput{DX: 1, Dt: SimTimeFromSeconds(0.1)})
	o.Tick(TickParams{Role: Authority, LocalDeltaTimeSeconds: 0.1})

	if o.DirtyCount(TargetAutonomousProxy) != 1 {
		t.Fatalf("expected dirty count 1 after a tick advanced Sync, got %d", o.DirtyCount(TargetAutonomousProxy))
	}

	var buf bytes.Buffer
	if err := o.Serialize(TargetAutonomousProxy, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty serialized envelope")
	}
	if o.DirtyCount(TargetAutonomousProxy) != 0 {
		t.Fatalf("expected dirty count reset to 0 after Serialize")
	}
}

func TestSerializeUnknownTargetWhenDebugDisabled(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	var buf bytes.Buffer
	err := o.Serialize(TargetDebug, &buf)
	if err == nil {
		t.Fatalf("expected an error serializing the debug target when debug capture is disabled")
	}
}

func TestShouldSendServerRPCUsesConfiguredFrequency(t *testing.T) {
	o, _, _ := newTestOrchestrator(AutonomousProxy, WithServerRPCSendFrequency[testInput, testSync, testAux](10))
	if o.ShouldSendServerRPC(0.05) {
		t.Fatalf("expected no send before threshold at 10Hz")
	}
	if !o.ShouldSendServerRPC(0.05) {
		t.Fatalf("expected send once accumulated time reaches 100ms")
	}
}
