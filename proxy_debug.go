package netsim

import (
	"fmt"
	"io"
)

// DebugProxy ships the Debug buffer server-to-client for diagnostic
// replay. Every Orchestrator constructs one, but it only records entries
// when debug capture is enabled; the orchestrator's targetProxy dispatch
// refuses TargetDebug entirely otherwise, matching spec.md §4.E's "when absent, all debug
// getters return nothing".
type DebugProxy[TInput Input, TSync any, TAux any] struct {
	unserialized int
}

func newDebugProxy[TInput Input, TSync any, TAux any]() *DebugProxy[TInput, TSync, TAux] {
	return &DebugProxy[TInput, TSync, TAux]{}
}

func (p *DebugProxy[TInput, TSync, TAux]) PreSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
}

func (p *DebugProxy[TInput, TSync, TAux]) PostSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
	p.unserialized++
}

// Reconcile is a no-op: debug capture is a passive recorder.
func (p *DebugProxy[TInput, TSync, TAux]) Reconcile(o *Orchestrator[TInput, TSync, TAux]) error {
	return nil
}

// Serialize emits every DebugState currently retained in the buffer.
func (p *DebugProxy[TInput, TSync, TAux]) Serialize(o *Orchestrator[TInput, TSync, TAux], w io.Writer) error {
	if o.buffers.Debug == nil {
		return nil
	}
	head, ok := o.buffers.Debug.HeadKeyframe()
	if !ok {
		return nil
	}
	tail, _ := o.buffers.Debug.TailKeyframe()
	states := make([]DebugState, 0, o.buffers.Debug.Len())
	for k := tail; k <= head; k++ {
		v, ok := o.buffers.Debug.Find(k)
		if !ok {
			continue
		}
		states = append(states, *v)
	}
	if err := o.deps.Codec.Encode(w, states); err != nil {
		return fmt.Errorf("netsim: serialize debug buffer: %w", err)
	}
	p.unserialized = 0
	return nil
}

// DirtyCount reports how many debug entries have been recorded since the
// last Serialize.
func (p *DebugProxy[TInput, TSync, TAux]) DirtyCount(o *Orchestrator[TInput, TSync, TAux]) int {
	return p.unserialized
}
