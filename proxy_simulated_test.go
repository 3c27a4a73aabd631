package netsim

import "testing"

func TestSimulatedInterpolateNeverAdvancesSyncHead(t *testing.T) {
	o, driver, _ := newTestOrchestrator(SimulatedProxy)
	before, _ := o.buffers.Sync.HeadKeyframe()

	o.pendingAuthoritative = &authoritativeUpdate[testSync, testAux]{Keyframe: 3, Sync: testSync{X: 5}}
	if err := o.Reconcile(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o.Tick(TickParams{Role: SimulatedProxy, LocalDeltaTimeSeconds: 0.05})

	after, _ := o.buffers.Sync.HeadKeyframe()
	if after != before {
		t.Fatalf("expected interpolate mode to never advance Sync head: before=%d after=%d", before, after)
	}
	if len(driver.finalized) == 0 {
		t.Fatalf("expected a presentation frame to have been finalized")
	}
}

func TestSimulatedExtrapolateAdvancesSyncHead(t *testing.T) {
	o, _, sim := newTestOrchestrator(SimulatedProxy, WithSimulatedUpdateMode[testInput, testSync, testAux](SimulatedUpdateExtrapolate))

	o.Tick(TickParams{Role: SimulatedProxy, LocalDeltaTimeSeconds: 0.1})

	if sim.updates != 1 {
		t.Fatalf("expected one Update call under extrapolation, got %d", sim.updates)
	}
	head, ok := o.buffers.Sync.HeadKeyframe()
	if !ok || head != 1 {
		t.Fatalf("expected Sync head to advance to 1 under extrapolation, got %d ok=%v", head, ok)
	}
}

func TestSimulatedGetUpdateModeReportsConfigured(t *testing.T) {
	o, _, _ := newTestOrchestrator(SimulatedProxy, WithSimulatedUpdateMode[testInput, testSync, testAux](SimulatedUpdateExtrapolate))
	if o.simulated.GetSimulatedUpdateMode() != SimulatedUpdateExtrapolate {
		t.Fatalf("expected configured mode to be reported")
	}
}
