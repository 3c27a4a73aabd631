package netsim

import "testing"

func TestTickStateIncrementProcessedTracksCumulativeTotal(t *testing.T) {
	ts := NewTickState(8)

	ts.IncrementProcessed(1, SimTimeFromSeconds(0.1))
	ts.IncrementProcessed(2, SimTimeFromSeconds(0.2))

	if ts.LastProcessedInputKeyframe != 2 {
		t.Fatalf("expected LastProcessedInputKeyframe 2, got %d", ts.LastProcessedInputKeyframe)
	}
	if !ts.HasProcessed() {
		t.Fatalf("expected HasProcessed true after any IncrementProcessed call")
	}
	want := SimTimeFromSeconds(0.3)
	if ts.TotalProcessedSimulationTime != want {
		t.Fatalf("expected total %v, got %v", want, ts.TotalProcessedSimulationTime)
	}

	total1, ok := ts.SimTimeAt(1)
	if !ok || total1 != SimTimeFromSeconds(0.1) {
		t.Fatalf("expected SimTimeAt(1) = 0.1s, got %v ok=%v", total1, ok)
	}
	total2, ok := ts.SimTimeAt(2)
	if !ok || total2 != want {
		t.Fatalf("expected SimTimeAt(2) = 0.3s, got %v ok=%v", total2, ok)
	}
}

func TestTickStateRemainingBudgetClampsAtZero(t *testing.T) {
	ts := NewTickState(8)
	ts.RemainingAllowedSimulationTime = SimTimeFromSeconds(0.05)

	ts.IncrementProcessed(1, SimTimeFromSeconds(0.1))

	if ts.RemainingAllowedSimulationTime != 0 {
		t.Fatalf("expected remaining budget to clamp at 0, got %v", ts.RemainingAllowedSimulationTime)
	}
}

func TestTickStateResetRollbackRewindsBookkeeping(t *testing.T) {
	ts := NewTickState(8)
	ts.IncrementProcessed(1, SimTimeFromSeconds(0.1))
	ts.IncrementProcessed(2, SimTimeFromSeconds(0.1))
	ts.IncrementProcessed(3, SimTimeFromSeconds(0.1))

	ts.ResetRollback(1, SimTimeFromSeconds(0.1))

	if ts.LastProcessedInputKeyframe != 1 {
		t.Fatalf("expected LastProcessedInputKeyframe 1 after rollback, got %d", ts.LastProcessedInputKeyframe)
	}
	if ts.TotalProcessedSimulationTime != SimTimeFromSeconds(0.1) {
		t.Fatalf("expected total rewound to 0.1s, got %v", ts.TotalProcessedSimulationTime)
	}
}

func TestTickStateHasProcessedDistinguishesColdStartFromKeyframeZero(t *testing.T) {
	ts := NewTickState(8)
	if ts.HasProcessed() {
		t.Fatalf("expected HasProcessed false before any IncrementProcessed call")
	}
	ts.IncrementProcessed(0, SimTimeFromSeconds(0.1))
	if !ts.HasProcessed() {
		t.Fatalf("expected HasProcessed true once keyframe 0 itself has been processed")
	}
}
