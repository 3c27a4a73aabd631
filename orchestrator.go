package netsim

import (
	"context"
	"fmt"
	"io"

	"netsim/logging"
)

// Orchestrator is the top-level object a host constructs once per
// simulation instance: it owns the typed buffers, tick state, the five
// replication proxies, and the dependent-simulation graph edges. A
// single instance is single-threaded (spec.md §5); a parent and its
// dependents must share a calling thread.
type Orchestrator[TInput Input, TSync any, TAux any] struct {
	driver Driver[TInput, TSync, TAux]
	sim    Simulation[TInput, TSync, TAux]
	role   Role

	buffers *BufferContainer[TInput, TSync, TAux]
	tick    *TickState
	deps    Deps

	debugCapture bool
	globalFrame  uint64

	lastSentInputKeyframe     Keyframe
	lastReceivedInputKeyframe Keyframe

	serverReceiver *ServerReceiverProxy[TInput, TSync, TAux]
	autonomous     *AutonomousPredictorProxy[TInput, TSync, TAux]
	simulated      *SimulatedObserverProxy[TInput, TSync, TAux]
	replay         *ReplayProxy[TInput, TSync, TAux]
	debug          *DebugProxy[TInput, TSync, TAux]

	pacer rpcPacer

	parent     Dependent
	dependents []Dependent

	rollbackDepth  int
	rollbackOrigin Keyframe

	initParamsPending InitParams

	pendingAuthoritative *authoritativeUpdate[TSync, TAux]
}

// NewOrchestrator constructs an Orchestrator for the given driver and
// Simulation, applying options in order. Buffers are NOT allocated here;
// call InitializeForRole once the host knows which role this instance
// plays.
func NewOrchestrator[TInput Input, TSync any, TAux any](driver Driver[TInput, TSync, TAux], sim Simulation[TInput, TSync, TAux], opts ...OrchestratorOption[TInput, TSync, TAux]) *Orchestrator[TInput, TSync, TAux] {
	if driver == nil {
		invariantViolation("NewOrchestrator: driver must not be nil")
	}
	if sim == nil {
		invariantViolation("NewOrchestrator: simulation must not be nil")
	}
	cfg := &orchestratorConfig[TInput, TSync, TAux]{
		replayCapacity:   3,
		rpcSendFrequency: 999,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	o := &Orchestrator[TInput, TSync, TAux]{
		driver:       driver,
		sim:          sim,
		deps:         cfg.deps.withDefaults(),
		debugCapture: cfg.debugCapture,
	}
	o.pacer.SetDesiredServerRPCSendFrequency(cfg.rpcSendFrequency)
	o.serverReceiver = newServerReceiverProxy[TInput, TSync, TAux]()
	o.autonomous = newAutonomousPredictorProxy[TInput](cfg.syncEqual, cfg.auxEqual)
	o.simulated = newSimulatedObserverProxy[TInput, TSync, TAux](cfg.simulatedMode)
	o.simulated.syncEqual = cfg.syncEqual
	o.replay = newReplayProxy[TInput, TSync, TAux](cfg.replayCapacity)
	o.debug = newDebugProxy[TInput, TSync, TAux]()
	o.initParamsPending = cfg.initParams
	return o
}

// InitializeForRole sizes all buffers for role, seeds Input[0] with the
// empty sentinel, and seeds Sync[0] via the driver. Must be called before
// the first Tick. A zero-value params falls back to whatever
// WithInitParams supplied at construction (or spec.md §6's defaults, if
// neither was given).
func (o *Orchestrator[TInput, TSync, TAux]) InitializeForRole(role Role, params InitParams) {
	o.role = role
	if params == (InitParams{}) {
		params = o.initParamsPending
	}
	o.buffers = NewBufferContainer[TInput, TSync, TAux](params, o.debugCapture, metricsAdapterFor(o.deps.Metrics))
	o.tick = NewTickState(o.buffers.Input.Capacity())

	var zeroInput TInput
	*o.buffers.Input.WriteNext() = zeroInput

	sync := o.buffers.Sync.WriteNext()
	o.driver.InitSyncState(sync)
}

type metricsSinkAdapter struct {
	m *logging.Metrics
}

func (a metricsSinkAdapter) Add(key string, delta uint64)   { a.m.TelemetryAdd(key, delta) }
func (a metricsSinkAdapter) Store(key string, value uint64) { a.m.TelemetryStore(key, value) }

func metricsAdapterFor(m *logging.Metrics) metricsSink {
	return metricsSinkAdapter{m: m}
}

// DebugName forwards to the driver, for logging.
func (o *Orchestrator[TInput, TSync, TAux]) DebugName() string {
	return o.driver.DebugName()
}

// Role reports the role this instance was initialized for.
func (o *Orchestrator[TInput, TSync, TAux]) Role() Role {
	return o.role
}

// Buffers exposes the underlying buffer container to proxies and to
// hosts that need direct read access (e.g. for UI presentation).
func (o *Orchestrator[TInput, TSync, TAux]) Buffers() *BufferContainer[TInput, TSync, TAux] {
	return o.buffers
}

// TickState exposes the tick bookkeeping to proxies.
func (o *Orchestrator[TInput, TSync, TAux]) TickState() *TickState {
	return o.tick
}

// Driver exposes the host driver to proxies.
func (o *Orchestrator[TInput, TSync, TAux]) Driver() Driver[TInput, TSync, TAux] {
	return o.driver
}

// Deps exposes shared infrastructure to proxies.
func (o *Orchestrator[TInput, TSync, TAux]) Deps() Deps {
	return o.deps
}

// ShouldSendServerRPC asks the RPC pacer whether this frame should trigger
// a Server-RPC send.
func (o *Orchestrator[TInput, TSync, TAux]) ShouldSendServerRPC(dtSeconds float64) bool {
	return o.pacer.ShouldSendServerRPC(dtSeconds)
}

// SetDesiredServerRPCSendFrequency re-tunes the RPC pacer threshold.
func (o *Orchestrator[TInput, TSync, TAux]) SetDesiredServerRPCSendFrequency(hz float64) {
	o.pacer.SetDesiredServerRPCSendFrequency(hz)
}

// proxyFor returns the Pre/Post/Reconcile proxy for the instance's
// current role, per spec.md §4.D step 3's dispatch table.
func (o *Orchestrator[TInput, TSync, TAux]) proxyFor() Proxy[TInput, TSync, TAux] {
	switch o.role {
	case Authority:
		return o.serverReceiver
	case AutonomousProxy:
		return o.autonomous
	case SimulatedProxy:
		return o.simulated
	default:
		invariantViolation("proxyFor: unknown role %v", o.role)
		return nil
	}
}

// Reconcile applies any pending authoritative update for the current
// role's proxy. For the AutonomousProxy role it returns ErrRollbackEvicted
// if the reconcile target keyframe is in neither the live nor the historic
// Sync window; the other roles' proxies return nil.
func (o *Orchestrator[TInput, TSync, TAux]) Reconcile() error {
	return o.proxyFor().Reconcile(o)
}

// Serialize dispatches to the proxy matching target and writes its
// role-specific byte stream via the configured Codec-backed writer.
// Unknown targets are a programming error, per spec.md §4.F.
func (o *Orchestrator[TInput, TSync, TAux]) Serialize(target ReplicationTarget, w io.Writer) error {
	proxy, err := o.targetProxy(target)
	if err != nil {
		return err
	}
	return proxy.Serialize(o, w)
}

// DirtyCount dispatches to the proxy matching target.
func (o *Orchestrator[TInput, TSync, TAux]) DirtyCount(target ReplicationTarget) int {
	proxy, err := o.targetProxy(target)
	if err != nil {
		invariantViolation("DirtyCount: %v", err)
	}
	return proxy.DirtyCount(o)
}

func (o *Orchestrator[TInput, TSync, TAux]) targetProxy(target ReplicationTarget) (Proxy[TInput, TSync, TAux], error) {
	switch target {
	case TargetServerRPC:
		return o.autonomous, nil
	case TargetAutonomousProxy, TargetSimulatedProxy:
		return o.serverReceiver, nil
	case TargetReplay:
		return o.replay, nil
	case TargetDebug:
		if !o.debugCapture {
			return nil, fmt.Errorf("%w: debug capture disabled", ErrUnknownReplicationTarget)
		}
		return o.debug, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownReplicationTarget, target)
	}
}

func (o *Orchestrator[TInput, TSync, TAux]) publishCtx() context.Context {
	return context.Background()
}

func (o *Orchestrator[TInput, TSync, TAux]) actorRef() logging.EntityRef {
	return logging.EntityRef{ID: o.driver.DebugName(), Kind: logging.EntityKindSimulation}
}

// ReceiveInput appends an externally-arrived Input Command (e.g. decoded
// from the wire by a transport collaborator) to the Input buffer. Authority
// calls this for each client-sent command before Tick; it is the
// counterpart to the Autonomous-Predictor's own PreSimTick-driven
// production.
func (o *Orchestrator[TInput, TSync, TAux]) ReceiveInput(in TInput) {
	*o.buffers.Input.WriteNext() = in
	if head, ok := o.buffers.Input.HeadKeyframe(); ok {
		o.lastReceivedInputKeyframe = head
	}
}

// ReceiveAuthoritativeUpdate decodes a Server-Receiver's serialized
// envelope and stages it for the next Reconcile call. Only meaningful on
// Autonomous-Predictor and Simulated-Observer instances.
func (o *Orchestrator[TInput, TSync, TAux]) ReceiveAuthoritativeUpdate(r io.Reader) error {
	var update authoritativeUpdate[TSync, TAux]
	if err := o.deps.Codec.Decode(r, &update); err != nil {
		return fmt.Errorf("netsim: decode authoritative update: %w", err)
	}
	o.pendingAuthoritative = &update
	return nil
}

// ReceiveInputWindow decodes an inputWindow envelope an
// Autonomous-Predictor's Serialize(TargetServerRPC, ...) produced and
// feeds only the keyframes past what's already buffered into
// ReceiveInput, in order — so redelivering a window that overlaps
// already-received keyframes (the client resends its unacknowledged tail
// every frame) is idempotent. Only meaningful on Authority instances.
func (o *Orchestrator[TInput, TSync, TAux]) ReceiveInputWindow(r io.Reader) error {
	var window inputWindow[TInput]
	if err := o.deps.Codec.Decode(r, &window); err != nil {
		return fmt.Errorf("netsim: decode input window: %w", err)
	}
	head, _ := o.buffers.Input.HeadKeyframe()
	for i, k := range window.Keyframes {
		if k <= head {
			continue
		}
		o.ReceiveInput(window.Commands[i])
		head = k
	}
	return nil
}
