package netsim

import (
	"fmt"
	"io"

	"netsim/internal/ringbuffer"
)

// ReplayProxy records a rolling window of Sync states for replay and
// scrubbing tools. It has no effect on live simulation: nothing reads
// from it except Serialize/DirtyCount, and nothing here ever mutates the
// live Sync buffer.
type ReplayProxy[TInput Input, TSync any, TAux any] struct {
	window      *ringbuffer.RingBuffer[TSync]
	unserialized int
}

func newReplayProxy[TInput Input, TSync any, TAux any](capacity int) *ReplayProxy[TInput, TSync, TAux] {
	if capacity < 1 {
		capacity = 3
	}
	return &ReplayProxy[TInput, TSync, TAux]{window: ringbuffer.New[TSync](capacity)}
}

// Capture appends sync to the replay window. Called by the engine once
// per tick, after Sync has advanced.
func (p *ReplayProxy[TInput, TSync, TAux]) Capture(sync *TSync) {
	*p.window.WriteNext() = *sync
	if p.unserialized < p.window.Capacity() {
		p.unserialized++
	}
}

func (p *ReplayProxy[TInput, TSync, TAux]) PreSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
}

func (p *ReplayProxy[TInput, TSync, TAux]) PostSimTick(o *Orchestrator[TInput, TSync, TAux], params TickParams) {
}

// Reconcile is a no-op: the replay window is diagnostic only and never
// corrected against authority.
func (p *ReplayProxy[TInput, TSync, TAux]) Reconcile(o *Orchestrator[TInput, TSync, TAux]) error {
	return nil
}

// Serialize emits every Sync state currently retained in the window,
// oldest first.
func (p *ReplayProxy[TInput, TSync, TAux]) Serialize(o *Orchestrator[TInput, TSync, TAux], w io.Writer) error {
	head, ok := p.window.HeadKeyframe()
	if !ok {
		return nil
	}
	tail, _ := p.window.TailKeyframe()
	states := make([]TSync, 0, p.window.Len())
	for k := tail; k <= head; k++ {
		v, ok := p.window.Find(k)
		if !ok {
			continue
		}
		states = append(states, *v)
	}
	if err := o.deps.Codec.Encode(w, states); err != nil {
		return fmt.Errorf("netsim: serialize replay window: %w", err)
	}
	p.unserialized = 0
	return nil
}

// DirtyCount reports how many replay entries have been captured since
// the last Serialize.
func (p *ReplayProxy[TInput, TSync, TAux]) DirtyCount(o *Orchestrator[TInput, TSync, TAux]) int {
	return p.unserialized
}
