package netsim

import "netsim/logging/reconcile"

// Dependent is the type-erased side of the parent/child rollback-
// propagation graph (spec.md §4.G). It lets an Orchestrator[A,B,C] take
// on dependents instantiated over entirely different TInput/TSync/TAux
// triples, since the only thing a parent ever does to a dependent is
// drive its rollback replay — never touch its buffers directly.
type Dependent interface {
	// BeginRollback is called once per parent reconcile, before any
	// StepRollback, announcing how much simulation time the parent rewound
	// (delta) and the parent keyframe it rewound to.
	BeginRollback(delta SimTime, parentKeyframe Keyframe)
	// StepRollback is called once per replayed parent keyframe, in
	// order, with isFinal true on the last call.
	StepRollback(step int, parentKeyframe Keyframe, isFinal bool)

	parentRaw() Dependent
	setParentRaw(p Dependent)
	addDependentRaw(child Dependent)
	removeDependentRaw(child Dependent)
}

// SetParent links o under parent p, replacing any existing parent. A nil
// p clears the link. Panics if p would introduce a cycle (p is already a
// descendant of o, or p == o) — spec.md §9 asks implementations to assert
// acyclicity since the source does not guard against it.
func (o *Orchestrator[TInput, TSync, TAux]) SetParent(p Dependent) {
	if p == nil {
		if o.parent != nil {
			o.parent.removeDependentRaw(o)
			o.parent = nil
		}
		return
	}
	for ancestor := p; ancestor != nil; ancestor = ancestor.parentRaw() {
		if ancestor == Dependent(o) {
			invariantViolation("SetParent: %s would introduce a cycle", o.DebugName())
		}
	}
	if o.parent != nil {
		o.parent.removeDependentRaw(o)
	}
	o.parent = p
	p.addDependentRaw(o)
}

// GetParent returns the current parent, or nil.
func (o *Orchestrator[TInput, TSync, TAux]) GetParent() Dependent {
	return o.parent
}

// AddDependent links child under o, equivalent to calling SetParent(o) on
// the child, expressed from the parent's side since spec.md names it that
// way.
func (o *Orchestrator[TInput, TSync, TAux]) AddDependent(child Dependent) {
	if current := child.parentRaw(); current != nil {
		if current == Dependent(o) {
			return
		}
		current.removeDependentRaw(child)
	}
	for ancestor := Dependent(o); ancestor != nil; ancestor = ancestor.parentRaw() {
		if ancestor == child {
			invariantViolation("AddDependent: would introduce a cycle")
		}
	}
	child.setParentRaw(o)
	o.addDependentRaw(child)
}

// RemoveDependent unlinks child from o's dependents, if present.
func (o *Orchestrator[TInput, TSync, TAux]) RemoveDependent(child Dependent) {
	o.removeDependentRaw(child)
	if child.parentRaw() == Dependent(o) {
		child.setParentRaw(nil)
	}
}

// ClearAllDependents unlinks every dependent from o, clearing their
// parent pointers symmetrically. Orchestrator teardown must call this
// (and SetParent(nil)) before the instance is discarded, per spec.md §5's
// "parent and dependents must be cleared before the pointed-to simulation
// is destroyed".
func (o *Orchestrator[TInput, TSync, TAux]) ClearAllDependents() {
	children := o.dependents
	o.dependents = nil
	for _, child := range children {
		if child.parentRaw() == Dependent(o) {
			child.setParentRaw(nil)
		}
	}
}

func (o *Orchestrator[TInput, TSync, TAux]) parentRaw() Dependent {
	return o.parent
}

func (o *Orchestrator[TInput, TSync, TAux]) setParentRaw(p Dependent) {
	o.parent = p
}

func (o *Orchestrator[TInput, TSync, TAux]) addDependentRaw(child Dependent) {
	for _, existing := range o.dependents {
		if existing == child {
			return
		}
	}
	o.dependents = append(o.dependents, child)
}

func (o *Orchestrator[TInput, TSync, TAux]) removeDependentRaw(child Dependent) {
	for i, existing := range o.dependents {
		if existing == child {
			o.dependents = append(o.dependents[:i], o.dependents[i+1:]...)
			return
		}
	}
}

// BeginRollback implements Dependent: it is invoked on o by o's parent
// when the parent's own Reconcile rewound. o rewinds its local bookkeeping
// to mirror the parent's new origin; the actual replay happens via the
// following StepRollback calls, each of which re-runs o's own tick logic
// for one replayed parent keyframe.
func (o *Orchestrator[TInput, TSync, TAux]) BeginRollback(delta SimTime, parentKeyframe Keyframe) {
	o.rollbackDepth = 0
	o.rollbackOrigin = parentKeyframe
	if existing, ok := o.buffers.FindSync(parentKeyframe); ok {
		preserved := *existing
		*o.buffers.Sync.ResetNextHeadKeyframe(parentKeyframe) = preserved
		o.tick.ResetRollback(parentKeyframe, o.tick.TotalProcessedSimulationTime-delta)
	}
}

// StepRollback runs one ordinary Tick of o (zero local delta) per replayed
// parent keyframe. How many of o's already-buffered Input keyframes that
// tick consumes is decided by o's role proxy, as in any Tick;
// parentKeyframe is not used to select them. Dependents do not receive the
// parent's Sync directly (that coupling belongs to the user's
// Simulation.Update, which can read parent state through the driver if it
// needs to).
func (o *Orchestrator[TInput, TSync, TAux]) StepRollback(step int, parentKeyframe Keyframe, isFinal bool) {
	o.rollbackDepth = step
	o.Tick(TickParams{Role: o.role, LocalDeltaTimeSeconds: 0})
	if isFinal {
		o.rollbackOrigin = 0
		o.rollbackDepth = 0
	}
}

// propagateRollback drives spec.md §4.G's dependent-propagation sequence:
// one BeginRollback announcing the rewound origin, then one StepRollback
// per replayed parent keyframe, isFinal true on the last call, so every
// dependent resimulates in lockstep with the parent's own replay rather
// than catching up whenever its own host next happens to call Tick.
func (o *Orchestrator[TInput, TSync, TAux]) propagateRollback(delta SimTime, k Keyframe, replayed int) {
	for _, dep := range o.dependents {
		dep.BeginRollback(delta, k)
	}
	for step := 1; step <= replayed; step++ {
		parentKeyframe := k + Keyframe(step)
		isFinal := step == replayed
		for _, dep := range o.dependents {
			dep.StepRollback(step, parentKeyframe, isFinal)
			reconcile.DependentPropagated(o.publishCtx(), o.deps.Publisher, o.globalFrame, o.actorRef(), reconcile.DependentPropagatedPayload{
				Step:           step,
				ParentKeyframe: uint32(parentKeyframe),
				IsFinal:        isFinal,
			})
		}
	}
}
