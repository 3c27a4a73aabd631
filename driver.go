package netsim

import "io"

// Driver is the host object wrapping a simulation instance. It supplies
// initial state, produces local input, and is notified when a frame is
// finalized. netsim never constructs a Driver; the host owns it exclusively
// and passes it into NewOrchestrator.
type Driver[TInput Input, TSync any, TAux any] interface {
	// DebugName identifies this driver instance for logging.
	DebugName() string
	// InitSyncState must fully initialize a fresh Sync value. Called for
	// keyframe 0 at startup and again whenever Sync is re-seeded after a
	// continuity break.
	InitSyncState(sync *TSync)
	// ProduceInput fills a new Input Command for the current local frame.
	// Only called on the Autonomous-Predictor proxy.
	ProduceInput(localTime SimTime, cmd *TInput)
	// FinalizeFrame is called after the engine advances the Sync head, so
	// the host can present the new state.
	FinalizeFrame(sync *TSync)
}

// Simulation is the user-supplied deterministic state transition. It must
// not read any state outside of its arguments: given identical driver
// behavior, PrevSync, Input, and Aux, two independent calls must produce
// byte-identical NextSync.
type Simulation[TInput Input, TSync any, TAux any] interface {
	// Update computes NextSync from PrevSync, the Input Command for this
	// keyframe, and the Aux value valid at that keyframe.
	Update(driver Driver[TInput, TSync, TAux], deltaSeconds float64, in *TInput, prevSync *TSync, nextSync *TSync, aux *TAux)
	// GroupName identifies the simulation's update group to a host
	// scheduler that orders multiple simulations within a frame.
	GroupName() string
}

// Codec is the wire encoder/decoder external collaborator spec.md names:
// netsim never chooses bytes-on-the-wire itself, only what logical fields a
// proxy's Serialize emits. The default implementation is JSONCodec.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
}
