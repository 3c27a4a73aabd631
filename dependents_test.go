package netsim

import "testing"

func TestAddDependentLinksBothSides(t *testing.T) {
	parent, _, _ := newTestOrchestrator(Authority)
	child, _, _ := newTestOrchestrator(Authority)

	parent.AddDependent(child)

	if child.GetParent() != Dependent(parent) {
		t.Fatalf("expected child's parent to be set")
	}
	found := false
	for _, d := range parent.dependents {
		if d == Dependent(child) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected parent's dependents to contain child")
	}
}

func TestAddDependentDetectsCycle(t *testing.T) {
	a, _, _ := newTestOrchestrator(Authority)
	b, _, _ := newTestOrchestrator(Authority)
	a.AddDependent(b)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when a cycle would be introduced")
		}
	}()
	b.AddDependent(a)
}

func TestSetParentReplacesExistingParent(t *testing.T) {
	oldParent, _, _ := newTestOrchestrator(Authority)
	newParent, _, _ := newTestOrchestrator(Authority)
	child, _, _ := newTestOrchestrator(Authority)

	oldParent.AddDependent(child)
	child.SetParent(newParent)

	if child.GetParent() != Dependent(newParent) {
		t.Fatalf("expected child's parent to be newParent")
	}
	for _, d := range oldParent.dependents {
		if d == Dependent(child) {
			t.Fatalf("expected child to be unlinked from oldParent's dependents")
		}
	}
}

func TestClearAllDependentsUnlinksSymmetrically(t *testing.T) {
	parent, _, _ := newTestOrchestrator(Authority)
	childA, _, _ := newTestOrchestrator(Authority)
	childB, _, _ := newTestOrchestrator(Authority)
	parent.AddDependent(childA)
	parent.AddDependent(childB)

	parent.ClearAllDependents()

	if len(parent.dependents) != 0 {
		t.Fatalf("expected no dependents after ClearAllDependents, got %d", len(parent.dependents))
	}
	if childA.GetParent() != nil || childB.GetParent() != nil {
		t.Fatalf("expected both children's parent links cleared")
	}
}

func TestBeginRollbackRewindsTotalProcessedWhenKeyframeRetained(t *testing.T) {
	o, _, _ := newTestOrchestrator(Authority)
	o.tick.IncrementProcessed(1, SimTimeFromSeconds(0.1))
	*o.buffers.Sync.WriteNext() = testSync{X: 1}

	o.BeginRollback(SimTimeFromSeconds(0.1), 1)

	if o.tick.LastProcessedInputKeyframe != 1 {
		t.Fatalf("expected LastProcessedInputKeyframe reset to parent keyframe 1, got %d", o.tick.LastProcessedInputKeyframe)
	}
	if o.tick.TotalProcessedSimulationTime != 0 {
		t.Fatalf("expected total rewound to 0, got %v", o.tick.TotalProcessedSimulationTime)
	}
}
