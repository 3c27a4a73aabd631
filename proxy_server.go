package netsim

import (
	"fmt"
	"io"
)

// ServerReceiverProxy runs on Authority. It consumes client-sent inputs
// (already appended to Input by the host's transport layer before Tick is
// called), marks the Sync head dirty for outbound replication, and has no
// reconcile obligations of its own.
type ServerReceiverProxy[TInput Input, TSync any, TAux any] struct {
	dirtySinceLastSerialize bool
}

func newServerReceiverProxy[TInput Input, TSync any, TAux any]() *ServerReceiverProxy[TInput, TSync, TAux] {
	return &ServerReceiverProxy[TInput, TSync, TAux]{}
}

// PreSimTick sets MaxAllowedInputKeyframe to the highest received Input
// keyframe and refills the time budget from the received per-input
// deltas, per spec.md §4.E.
func (p *ServerReceiverProxy[TInput, TSync, TAux]) PreSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	head, ok := o.buffers.Input.HeadKeyframe()
	if !ok {
		return
	}
	o.tick.MaxAllowedInputKeyframe = head

	var budget SimTime
	for k := o.tick.LastProcessedInputKeyframe + 1; k <= head; k++ {
		in, ok := o.buffers.Input.Find(k)
		if !ok {
			break
		}
		budget += (*in).DeltaTime()
	}
	o.tick.RemainingAllowedSimulationTime = budget
}

// PostSimTick marks the current Sync head dirty for outbound replication
// to all observers.
func (p *ServerReceiverProxy[TInput, TSync, TAux]) PostSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	if _, ok := o.buffers.Sync.HeadKeyframe(); ok {
		p.dirtySinceLastSerialize = true
	}
}

// Reconcile is a no-op on authority in normal operation: the authority is
// the source of truth, so there is nothing to reconcile against.
func (p *ServerReceiverProxy[TInput, TSync, TAux]) Reconcile(o *Orchestrator[TInput, TSync, TAux]) error {
	return nil
}

// Serialize emits the authoritative Sync[head] (and current Aux) to
// autonomous and simulated targets.
func (p *ServerReceiverProxy[TInput, TSync, TAux]) Serialize(o *Orchestrator[TInput, TSync, TAux], w io.Writer) error {
	head, ok := o.buffers.Sync.HeadKeyframe()
	if !ok {
		return nil
	}
	sync, ok := o.buffers.Sync.Find(head)
	if !ok {
		invariantViolation("ServerReceiverProxy.Serialize: Sync head %d missing from its own buffer", head)
	}
	var aux *TAux
	if auxHead, ok := o.buffers.Aux.HeadKeyframe(); ok {
		aux, _ = o.buffers.Aux.Find(auxHead)
	}
	envelope := authoritativeUpdate[TSync, TAux]{
		Keyframe: head,
		Sync:     *sync,
	}
	if aux != nil {
		envelope.Aux = *aux
		envelope.HasAux = true
	}
	if err := o.deps.Codec.Encode(w, envelope); err != nil {
		return fmt.Errorf("netsim: serialize authoritative update: %w", err)
	}
	p.dirtySinceLastSerialize = false
	return nil
}

// DirtyCount reports 1 if the Sync head has changed since the last
// Serialize, 0 otherwise — the authority replicates whole states, not a
// per-field diff count.
func (p *ServerReceiverProxy[TInput, TSync, TAux]) DirtyCount(o *Orchestrator[TInput, TSync, TAux]) int {
	if p.dirtySinceLastSerialize {
		return 1
	}
	return 0
}

// authoritativeUpdate is the wire envelope a Server-Receiver emits and an
// Autonomous-Predictor or Simulated-Observer decodes.
type authoritativeUpdate[TSync any, TAux any] struct {
	Keyframe Keyframe `json:"keyframe"`
	Sync     TSync    `json:"sync"`
	Aux      TAux     `json:"aux,omitempty"`
	HasAux   bool     `json:"hasAux,omitempty"`
}
