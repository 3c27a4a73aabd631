package netsim

import "netsim/internal/ringbuffer"

// TickState tracks the bookkeeping spec.md §4.D's tick algorithm needs
// across calls: which input keyframe was last consumed, how far ahead the
// Autonomous-Predictor is allowed to run, and the simulation-time budget
// remaining this frame. It is grounded on the teacher's fixed-timestep
// loop's clamped-delta accounting, generalized from wall-clock seconds to
// SimTime ticks of variable per-keyframe length.
type TickState struct {
	LastProcessedInputKeyframe    ringbuffer.Keyframe
	MaxAllowedInputKeyframe       ringbuffer.Keyframe
	RemainingAllowedSimulationTime SimTime
	TotalProcessedSimulationTime  SimTime

	hasProcessed bool
	perKeyframe  *ringbuffer.RingBuffer[SimTime]
}

// NewTickState allocates a TickState whose per-keyframe SimTime history
// mirrors the Input buffer's capacity, so SimTimeAt can answer for any
// keyframe still reachable through Input.Find.
func NewTickState(inputBufferSize int) *TickState {
	return &TickState{
		perKeyframe: ringbuffer.New[SimTime](inputBufferSize),
	}
}

// IncrementProcessed records that keyframe k was consumed with the given
// delta time, advancing LastProcessedInputKeyframe and the running
// totals, and stamping the per-keyframe buffer with the *cumulative*
// TotalProcessedSimulationTime as of k — not the delta — so SimTimeAt can
// directly answer "what was total simulation time at Sync[k]?" as §4.C
// describes, with no replay-time resummation needed.
func (ts *TickState) IncrementProcessed(k ringbuffer.Keyframe, dt SimTime) {
	ts.LastProcessedInputKeyframe = k
	ts.hasProcessed = true
	ts.TotalProcessedSimulationTime += dt
	if ts.RemainingAllowedSimulationTime > dt {
		ts.RemainingAllowedSimulationTime -= dt
	} else {
		ts.RemainingAllowedSimulationTime = 0
	}
	if head, ok := ts.perKeyframe.HeadKeyframe(); ok && k == head+1 {
		*ts.perKeyframe.WriteNext() = ts.TotalProcessedSimulationTime
	} else {
		*ts.perKeyframe.ResetNextHeadKeyframe(k) = ts.TotalProcessedSimulationTime
	}
}

// SetTotalProcessed overwrites the running total without touching
// LastProcessedInputKeyframe. Reconcile paths use ResetRollback, which
// sets both.
func (ts *TickState) SetTotalProcessed(total SimTime) {
	ts.TotalProcessedSimulationTime = total
}

// SimTimeAt returns the cumulative TotalProcessedSimulationTime as of
// keyframe k, if k is still within the per-keyframe history window.
func (ts *TickState) SimTimeAt(k ringbuffer.Keyframe) (SimTime, bool) {
	v, ok := ts.perKeyframe.Find(k)
	if !ok {
		return 0, false
	}
	return *v, true
}

// HasProcessed reports whether any keyframe has been consumed yet. Before
// the first tick, LastProcessedInputKeyframe's zero value is ambiguous
// with "keyframe 0 was processed", so callers needing to distinguish cold
// start from a genuine keyframe 0 should check this first.
func (ts *TickState) HasProcessed() bool {
	return ts.hasProcessed
}

// ResetRollback rewinds bookkeeping to the reconciliation point k, ready
// for the engine to resimulate keyframes (k+1) onward. It does not touch
// perKeyframe history; entries above k remain, and SimTimeAt returns their
// stale values, until the first IncrementProcessed of the resimulation
// re-seeds the history at k+1 and drops everything above it.
func (ts *TickState) ResetRollback(k ringbuffer.Keyframe, totalProcessed SimTime) {
	ts.LastProcessedInputKeyframe = k
	ts.hasProcessed = true
	ts.TotalProcessedSimulationTime = totalProcessed
}
