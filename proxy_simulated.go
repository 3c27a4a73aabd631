package netsim

import "io"

// SimulatedObserverProxy runs on clients observing another peer's
// simulation. Under SimulatedUpdateInterpolate, it never writes new Sync
// keyframes itself — it blends the most recently received authoritative
// state toward a presentation value handed straight to the driver, so
// the Advance Condition (Input.head > Sync.head) stays false and the
// generic consumption loop is skipped entirely for this role. Under
// SimulatedUpdateExtrapolate, it synthesizes an Input Command each tick
// so the ordinary Update loop keeps the local Sync buffer advancing.
type SimulatedObserverProxy[TInput Input, TSync any, TAux any] struct {
	mode      SimulatedUpdateMode
	blend     func(from, to *TSync, alpha float64) TSync
	syncEqual func(a, b *TSync) bool

	received         *TSync
	receivedKeyframe Keyframe
	blendElapsed     SimTime
	blendWindow      SimTime
}

func newSimulatedObserverProxy[TInput Input, TSync any, TAux any](mode SimulatedUpdateMode) *SimulatedObserverProxy[TInput, TSync, TAux] {
	return &SimulatedObserverProxy[TInput, TSync, TAux]{
		mode:        mode,
		blendWindow: SimTimeFromSeconds(0.1),
	}
}

// GetSimulatedUpdateMode reports which smoothing strategy this proxy is
// configured for, named in spec.md §4.E.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) GetSimulatedUpdateMode() SimulatedUpdateMode {
	return p.mode
}

// SetBlend installs the linear-interpolation function used under
// SimulatedUpdateInterpolate. Without one, the proxy snaps directly to
// the latest received value instead of blending — still correct, just
// visually abrupt.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) SetBlend(blend func(from, to *TSync, alpha float64) TSync) {
	p.blend = blend
}

func (p *SimulatedObserverProxy[TInput, TSync, TAux]) PreSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	switch p.mode {
	case SimulatedUpdateExtrapolate:
		p.presentExtrapolated(o, params)
	default:
		p.presentInterpolated(o, params)
	}
}

func (p *SimulatedObserverProxy[TInput, TSync, TAux]) presentInterpolated(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	if p.received == nil {
		return
	}
	p.blendElapsed += SimTimeFromSeconds(params.LocalDeltaTimeSeconds)
	alpha := 1.0
	if p.blendWindow > 0 {
		alpha = float64(p.blendElapsed) / float64(p.blendWindow)
		if alpha > 1 {
			alpha = 1
		}
	}
	presented := *p.received
	if p.blend != nil {
		if base, ok := o.buffers.FindSync(p.receivedKeyframe); ok {
			presented = p.blend(base, p.received, alpha)
		}
	}
	o.driver.FinalizeFrame(&presented)
}

// presentExtrapolated synthesizes the next Input Command by repeating
// whatever was last buffered (a deliberately minimal reference
// synthesis — a real implementation might extrapolate velocity), so the
// shared consumption loop in engine.go advances Sync via a genuine
// Update call.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) presentExtrapolated(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	var synthesized TInput
	if head, ok := o.buffers.Input.HeadKeyframe(); ok {
		if prev, ok := o.buffers.Input.Find(head); ok {
			synthesized = *prev
		}
	}
	*o.buffers.Input.WriteNext() = synthesized
	head, _ := o.buffers.Input.HeadKeyframe()
	o.tick.MaxAllowedInputKeyframe = head
	o.tick.RemainingAllowedSimulationTime += synthesized.DeltaTime()
}

// PostSimTick has no outbound obligations for an observer.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) PostSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
}

// Reconcile updates the smoothing target from a newly received
// authoritative update. Under extrapolation, if the local prediction
// disagreed materially, it also rewrites the local Sync trajectory and
// schedules dependent-simulation rollback.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) Reconcile(o *Orchestrator[TInput, TSync, TAux]) error {
	update := o.pendingAuthoritative
	if update == nil {
		return nil
	}
	o.pendingAuthoritative = nil

	if p.mode == SimulatedUpdateExtrapolate {
		if local, ok := o.buffers.FindSync(update.Keyframe); ok {
			diverged := p.syncEqual == nil || !p.syncEqual(local, &update.Sync)
			if diverged {
				totalBefore := o.tick.TotalProcessedSimulationTime
				if update.Keyframe > 0 {
					o.buffers.Sync.ResetNextHeadKeyframe(update.Keyframe - 1)
				}
				*o.buffers.Sync.WriteNext() = update.Sync
				totalAtK, _ := o.tick.SimTimeAt(update.Keyframe)
				o.tick.ResetRollback(update.Keyframe, totalAtK)

				replayed := 0
				if inputHead, ok := o.buffers.Input.HeadKeyframe(); ok && inputHead > update.Keyframe {
					replayed = int(inputHead - update.Keyframe)
				}
				o.propagateRollback(totalBefore-o.tick.TotalProcessedSimulationTime, update.Keyframe, replayed)
			}
		}
	}

	received := update.Sync
	p.received = &received
	p.receivedKeyframe = update.Keyframe
	p.blendElapsed = 0
	return nil
}

// Serialize is a no-op: observers have no outbound replication stream.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) Serialize(o *Orchestrator[TInput, TSync, TAux], w io.Writer) error {
	return nil
}

// DirtyCount is always 0: observers never originate replicated data.
func (p *SimulatedObserverProxy[TInput, TSync, TAux]) DirtyCount(o *Orchestrator[TInput, TSync, TAux]) int {
	return 0
}
