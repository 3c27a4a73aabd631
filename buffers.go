package netsim

import "netsim/internal/ringbuffer"

const (
	inputBufferOccupancyMetricKey  = "netsim_input_buffer_occupancy"
	syncBufferOccupancyMetricKey   = "netsim_sync_buffer_occupancy"
	auxBufferOccupancyMetricKey    = "netsim_aux_buffer_occupancy"
	debugBufferOccupancyMetricKey  = "netsim_debug_buffer_occupancy"
	historicBufferEvictionMetricKey = "netsim_historic_buffer_evictions_total"
)

// BufferContainer owns the four keyframed ring buffers spec.md §3
// describes (Input, Sync, Aux, Debug) plus the historic buffer used to
// satisfy rollback requests after the live Sync window has moved on.
// TAux is stored even when the host never varies it; a constant Aux value
// still needs a home for Update's signature to stay uniform across ticks.
type BufferContainer[TInput Input, TSync any, TAux any] struct {
	Input    *ringbuffer.RingBuffer[TInput]
	Sync     *ringbuffer.RingBuffer[TSync]
	Aux      *ringbuffer.RingBuffer[TAux]
	Debug    *ringbuffer.RingBuffer[DebugState] // nil when debug capture is disabled
	Historic *ringbuffer.RingBuffer[TSync]

	metrics metricsSink
}

type metricsSink interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// NewBufferContainer allocates all four live buffers plus the historic
// buffer, sized per InitParams. debugCapture controls whether the Debug
// buffer is allocated at all; when false, proxies must skip DebugState
// bookkeeping entirely rather than writing into a nil buffer.
func NewBufferContainer[TInput Input, TSync any, TAux any](params InitParams, debugCapture bool, metrics metricsSink) *BufferContainer[TInput, TSync, TAux] {
	params = params.Defaults()
	bc := &BufferContainer[TInput, TSync, TAux]{
		Input:    ringbuffer.New[TInput](params.InputBufferSize),
		Sync:     ringbuffer.New[TSync](params.SyncedBufferSize),
		Aux:      ringbuffer.New[TAux](params.AuxBufferSize),
		Historic: ringbuffer.New[TSync](params.HistoricBufferSize),
		metrics:  metrics,
	}
	if debugCapture {
		bc.Debug = ringbuffer.New[DebugState](params.DebugBufferSize)
	}
	bc.reportOccupancy()
	return bc
}

// ArchiveSync copies the keyframe currently at Sync's head into the
// historic buffer, so a later rollback request that has already scrolled
// out of the live window can still be served. Call once per tick, after
// the live Sync head has been finalized.
func (bc *BufferContainer[TInput, TSync, TAux]) ArchiveSync() {
	head, ok := bc.Sync.HeadKeyframe()
	if !ok {
		return
	}
	live, ok := bc.Sync.Find(head)
	if !ok {
		return
	}
	_, hadTail := bc.Historic.TailKeyframe()
	wasFull := hadTail && bc.Historic.Len() == bc.Historic.Capacity()
	*bc.Historic.WriteNext() = *live
	if wasFull && bc.metrics != nil {
		bc.metrics.Add(historicBufferEvictionMetricKey, 1)
	}
	bc.reportOccupancy()
}

// FindSync looks in the live Sync window first, falling back to the
// historic buffer. It reports ErrRollbackEvicted only via its bool
// return; callers that need to distinguish "not written yet" from
// "evicted from both windows" should check TailKeyframe against k
// themselves.
func (bc *BufferContainer[TInput, TSync, TAux]) FindSync(k ringbuffer.Keyframe) (*TSync, bool) {
	if v, ok := bc.Sync.Find(k); ok {
		return v, true
	}
	return bc.Historic.Find(k)
}

func (bc *BufferContainer[TInput, TSync, TAux]) reportOccupancy() {
	if bc.metrics == nil {
		return
	}
	bc.metrics.Store(inputBufferOccupancyMetricKey, uint64(bc.Input.Len()))
	bc.metrics.Store(syncBufferOccupancyMetricKey, uint64(bc.Sync.Len()))
	bc.metrics.Store(auxBufferOccupancyMetricKey, uint64(bc.Aux.Len()))
	if bc.Debug != nil {
		bc.metrics.Store(debugBufferOccupancyMetricKey, uint64(bc.Debug.Len()))
	}
}
