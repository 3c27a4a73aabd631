package netsim

import (
	"context"
	"fmt"
	"io"

	"netsim/logging/reconcile"
)

// AutonomousPredictorProxy runs on the locally controlled client. It
// produces local Input each tick, tracks which inputs remain
// unacknowledged for resend on the Server-RPC channel, and on Reconcile
// compares authoritative Sync/Aux against local prediction, rolling back
// and replaying on divergence.
type AutonomousPredictorProxy[TInput Input, TSync any, TAux any] struct {
	syncEqual func(a, b *TSync) bool
	auxEqual  func(a, b *TAux) bool

	unackedFrom Keyframe
}

func newAutonomousPredictorProxy[TInput Input, TSync any, TAux any](syncEqual func(a, b *TSync) bool, auxEqual func(a, b *TAux) bool) *AutonomousPredictorProxy[TInput, TSync, TAux] {
	return &AutonomousPredictorProxy[TInput, TSync, TAux]{
		syncEqual: syncEqual,
		auxEqual:  auxEqual,
	}
}

// PreSimTick asks the driver to produce a new Input Command, appends it,
// refills the time budget from the local delta, and sets
// MaxAllowedInputKeyframe to the new Input head.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) PreSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	var cmd TInput
	localTime := SimTimeFromSeconds(params.LocalDeltaTimeSeconds)
	o.driver.ProduceInput(localTime, &cmd)
	*o.buffers.Input.WriteNext() = cmd

	head, _ := o.buffers.Input.HeadKeyframe()
	o.tick.MaxAllowedInputKeyframe = head
	o.tick.RemainingAllowedSimulationTime += cmd.DeltaTime()
}

// PostSimTick does nothing. The unacknowledged input window starts at
// unackedFrom, which Reconcile advances past every authoritative keyframe
// it observes; Serialize and DirtyCount read it from there.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) PostSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
}

// Reconcile compares any pending authoritative update against local
// prediction. If they differ beyond the configured tolerance (or no
// tolerance function was supplied, in which case every update is treated
// as authoritative), it rewinds Sync and replays retained inputs.
// Idempotent: applying the same already-matching update twice performs
// no buffer churn.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) Reconcile(o *Orchestrator[TInput, TSync, TAux]) error {
	update := o.pendingAuthoritative
	if update == nil {
		return nil
	}
	o.pendingAuthoritative = nil
	if update.Keyframe >= p.unackedFrom {
		p.unackedFrom = update.Keyframe + 1
	}

	local, ok := o.buffers.FindSync(update.Keyframe)
	if !ok {
		if _, evicted := o.buffers.Historic.TailKeyframe(); evicted {
			reconcile.Evicted(context.Background(), o.deps.Publisher, o.globalFrame, o.actorRef(), reconcile.EvictedPayload{
				RequestedKeyframe: uint32(update.Keyframe),
			})
		}
		return p.reseedFromAuthority(o, update)
	}

	syncDiverged := p.syncEqual == nil || !p.syncEqual(local, &update.Sync)
	auxDiverged := false
	if update.HasAux && p.auxEqual != nil {
		if auxLocal, ok := o.buffers.Aux.Find(update.Keyframe); ok {
			auxDiverged = !p.auxEqual(auxLocal, &update.Aux)
		}
	}
	if !syncDiverged && !auxDiverged {
		return nil
	}

	totalBefore := o.tick.TotalProcessedSimulationTime
	replayed := p.rollback(o, update)
	reconcile.Rollback(context.Background(), o.deps.Publisher, o.globalFrame, o.actorRef(), reconcile.RollbackPayload{
		Keyframe:     uint32(update.Keyframe),
		ReplayCount:  replayed,
		SyncDiverged: syncDiverged,
		AuxDiverged:  auxDiverged,
	})

	o.propagateRollback(totalBefore-o.tick.TotalProcessedSimulationTime, update.Keyframe, replayed)
	return nil
}

func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) reseedFromAuthority(o *Orchestrator[TInput, TSync, TAux], update *authoritativeUpdate[TSync, TAux]) error {
	*o.buffers.Sync.ResetNextHeadKeyframe(update.Keyframe) = update.Sync
	o.tick.ResetRollback(update.Keyframe, 0)
	return ErrRollbackEvicted
}

// rollback performs spec.md §4.E's reconcile sequence:
// Sync.reset_next_head_keyframe(K-1), write authoritative state at K via
// re-seed, set LastProcessedInputKeyframe=K, TickState.set_total_processed,
// then let the next tick replay retained inputs K+1..Input.head. It
// returns the number of inputs left available to replay.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) rollback(o *Orchestrator[TInput, TSync, TAux], update *authoritativeUpdate[TSync, TAux]) int {
	k := update.Keyframe
	if k > 0 {
		o.buffers.Sync.ResetNextHeadKeyframe(k - 1)
	}
	*o.buffers.Sync.WriteNext() = update.Sync
	if update.HasAux {
		*o.buffers.Aux.ResetNextHeadKeyframe(k) = update.Aux
	}

	totalAtK, _ := o.tick.SimTimeAt(k)
	o.tick.ResetRollback(k, totalAtK)

	inputHead, _ := o.buffers.Input.HeadKeyframe()
	if inputHead > k {
		return int(inputHead - k)
	}
	return 0
}

// Serialize emits a window of recent unacknowledged Input Commands on
// the client's Server-RPC channel.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) Serialize(o *Orchestrator[TInput, TSync, TAux], w io.Writer) error {
	head, ok := o.buffers.Input.HeadKeyframe()
	if !ok {
		return nil
	}
	from := p.unackedFrom
	if from == 0 {
		from = 1
	}
	if tail, ok := o.buffers.Input.TailKeyframe(); ok && from < tail {
		from = tail
	}
	var window inputWindow[TInput]
	for k := from; k <= head; k++ {
		in, ok := o.buffers.Input.Find(k)
		if !ok {
			continue
		}
		window.Keyframes = append(window.Keyframes, k)
		window.Commands = append(window.Commands, *in)
	}
	if err := o.deps.Codec.Encode(w, window); err != nil {
		return fmt.Errorf("netsim: serialize input window: %w", err)
	}
	o.lastSentInputKeyframe = head
	return nil
}

// DirtyCount reports the number of unacknowledged input keyframes.
func (p *AutonomousPredictorProxy[TInput, TSync, TAux]) DirtyCount(o *Orchestrator[TInput, TSync, TAux]) int {
	head, ok := o.buffers.Input.HeadKeyframe()
	if !ok {
		return 0
	}
	from := p.unackedFrom
	if from == 0 {
		from = 1
	}
	if head < from {
		return 0
	}
	return int(head-from) + 1
}

// inputWindow is the wire envelope an Autonomous-Predictor emits on its
// Server-RPC channel, decoded by the authority's transport into
// individual ReceiveInput calls.
type inputWindow[TInput any] struct {
	Keyframes []Keyframe `json:"keyframes"`
	Commands  []TInput   `json:"commands"`
}
