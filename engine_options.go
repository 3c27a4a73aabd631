package netsim

// OrchestratorOption configures NewOrchestrator. The option surface
// mirrors the teacher's EngineOption pattern so hosts can thread
// dependencies, buffer sizing, and feature flags without reshaping the
// constructor's positional signature every time a new knob is added.
type OrchestratorOption[TInput Input, TSync any, TAux any] interface {
	apply(*orchestratorConfig[TInput, TSync, TAux])
}

type orchestratorOptionFunc[TInput Input, TSync any, TAux any] func(*orchestratorConfig[TInput, TSync, TAux])

func (f orchestratorOptionFunc[TInput, TSync, TAux]) apply(cfg *orchestratorConfig[TInput, TSync, TAux]) {
	if f != nil {
		f(cfg)
	}
}

type orchestratorConfig[TInput Input, TSync any, TAux any] struct {
	deps             Deps
	initParams       InitParams
	debugCapture     bool
	replayCapacity   int
	simulatedMode    SimulatedUpdateMode
	syncEqual        func(a, b *TSync) bool
	auxEqual         func(a, b *TAux) bool
	rpcSendFrequency float64
}

// WithDeps supplies the orchestrator's shared infrastructure (logger,
// metrics, clock, RNG, codec).
func WithDeps[TInput Input, TSync any, TAux any](deps Deps) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.deps = deps
	})
}

// WithInitParams overrides buffer capacities from InitParams.Defaults().
func WithInitParams[TInput Input, TSync any, TAux any](params InitParams) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.initParams = params
	})
}

// WithDebugCapture enables the Debug replication target's buffer and
// proxy. Disabled by default, matching spec.md §9's feature-flag design
// note: all debug accessors return nothing when this is off.
func WithDebugCapture[TInput Input, TSync any, TAux any](enabled bool) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.debugCapture = enabled
	})
}

// WithReplayCapacity overrides the Replay channel's rolling window size.
// Defaults to 3, per spec.md §4.E.
func WithReplayCapacity[TInput Input, TSync any, TAux any](capacity int) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.replayCapacity = capacity
	})
}

// WithSimulatedUpdateMode selects the Simulated-Observer's smoothing
// strategy (interpolate or extrapolate). Defaults to interpolate.
func WithSimulatedUpdateMode[TInput Input, TSync any, TAux any](mode SimulatedUpdateMode) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.simulatedMode = mode
	})
}

// WithSyncEquality supplies the per-state equality tolerance check the
// Autonomous-Predictor's Reconcile uses to decide whether authoritative
// Sync has diverged from local prediction. Without one, Reconcile falls
// back to treating every authoritative update as a correction.
func WithSyncEquality[TInput Input, TSync any, TAux any](equal func(a, b *TSync) bool) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.syncEqual = equal
	})
}

// WithAuxEquality supplies the Aux-state equality check used alongside
// WithSyncEquality, per SPEC_FULL.md's fully-plumbed Aux reconcile.
func WithAuxEquality[TInput Input, TSync any, TAux any](equal func(a, b *TAux) bool) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.auxEqual = equal
	})
}

// WithServerRPCSendFrequency sets the initial RPC pacer threshold in Hz.
// Defaults to 999 Hz, matching NetworkSimulationModel.h's default.
func WithServerRPCSendFrequency[TInput Input, TSync any, TAux any](hz float64) OrchestratorOption[TInput, TSync, TAux] {
	return orchestratorOptionFunc[TInput, TSync, TAux](func(cfg *orchestratorConfig[TInput, TSync, TAux]) {
		cfg.rpcSendFrequency = hz
	})
}
