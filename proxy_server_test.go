package netsim

import "testing"

func TestServerReceiverMarksDirtyAfterTick(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	if o.serverReceiver.DirtyCount(o) != 0 {
		t.Fatalf("expected no dirty state before any Tick")
	}

	o.ReceiveInput(testInput{DX: 1, Dt: 1})
	o.Tick(TickParams{Role: Authority})

	if o.serverReceiver.DirtyCount(o) != 1 {
		t.Fatalf("expected Sync head advance to mark dirty")
	}
}

func TestServerReceiverSerializeResetsDirtyFlag(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	o.ReceiveInput(testInput{DX: 1, Dt: 1})
	o.Tick(TickParams{Role: Authority})

	if err := o.Serialize(TargetAutonomousProxy, discardWriter{}); err != nil {
		t.Fatalf("unexpected serialize error: %v", err)
	}
	if o.serverReceiver.DirtyCount(o) != 0 {
		t.Fatalf("expected Serialize to clear the dirty flag")
	}
}

func TestServerReceivePreSimTickRefillsBudgetFromBufferedDeltas(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	o.ReceiveInput(testInput{DX: 1, Dt: 1})
	o.ReceiveInput(testInput{DX: 1, Dt: 2})

	o.serverReceiver.PreSimTick(o, TickParams{Role: Authority})

	if o.tick.MaxAllowedInputKeyframe != 2 {
		t.Fatalf("expected MaxAllowedInputKeyframe=2, got %d", o.tick.MaxAllowedInputKeyframe)
	}
	if o.tick.RemainingAllowedSimulationTime != 3 {
		t.Fatalf("expected budget to sum both buffered deltas (1+2=3), got %d", o.tick.RemainingAllowedSimulationTime)
	}
}

func TestServerReceiverReconcileIsNoOp(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	if err := o.serverReceiver.Reconcile(o); err != nil {
		t.Fatalf("expected no-op Reconcile, got %v", err)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
