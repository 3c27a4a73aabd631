// Package netsim implements a deterministic, client-authoritative-prediction
// and server-reconciliation simulation model: the keyframed input/sync/aux
// buffers, the tick scheduler, the per-role pre-tick/post-tick/reconcile
// protocol, rollback-and-resimulate, and dependent-simulation rollback
// propagation that keep a locally predicted simulation in sync with an
// authoritative one running on another peer.
//
// netsim does not define the physics or gameplay of any particular
// simulation, the transport layer's wire framing, or UI/tooling. It assumes
// the user-supplied Update function is deterministic given identical inputs
// and prior state.
package netsim

import (
	"time"

	"netsim/internal/ringbuffer"
)

// Keyframe identifies a discrete simulation step. Keyframe 0 is reserved as
// the seed slot: it holds the initial Sync state and an empty Input.
type Keyframe = ringbuffer.Keyframe

// SimTime is a fixed-point integer duration, expressed in microseconds, so
// that cross-peer arithmetic (summing per-frame deltas, comparing totals) is
// bit-exact instead of accumulating floating-point error.
type SimTime int64

// SimTimeFromSeconds converts a floating-point second count (as produced by
// a host frame loop) into a SimTime.
func SimTimeFromSeconds(seconds float64) SimTime {
	return SimTime(seconds * float64(time.Second/time.Microsecond))
}

// Seconds converts a SimTime back to floating-point seconds, for passing to
// driver callbacks and Update, which operate on real time.
func (t SimTime) Seconds() float64 {
	return float64(t) / float64(time.Second/time.Microsecond)
}

// Role enumerates the three perspectives a tick can be driven from.
type Role int

const (
	// Authority is the server role: it receives client input and produces
	// the canonical Sync stream.
	Authority Role = iota
	// AutonomousProxy is the locally controlled client: it predicts ahead
	// of the authority and reconciles against corrections.
	AutonomousProxy
	// SimulatedProxy is a client observing another actor's simulation: it
	// smooths toward a lower-rate authoritative stream.
	SimulatedProxy
)

// String renders the role for logging.
func (r Role) String() string {
	switch r {
	case Authority:
		return "Authority"
	case AutonomousProxy:
		return "AutonomousProxy"
	case SimulatedProxy:
		return "SimulatedProxy"
	default:
		return "Role(unknown)"
	}
}

// ReplicationTarget enumerates the five serialization/deserialization
// channels a peer's proxies can be asked to produce or consume.
type ReplicationTarget int

const (
	// TargetServerRPC carries the client's recent unacknowledged Input
	// Commands up to the authority.
	TargetServerRPC ReplicationTarget = iota
	// TargetAutonomousProxy carries authoritative Sync/Aux state down to a
	// predicting client.
	TargetAutonomousProxy
	// TargetSimulatedProxy carries authoritative Sync/Aux state down to an
	// observing client.
	TargetSimulatedProxy
	// TargetReplay carries a rolling window of Sync states for
	// replay/scrubbing tooling.
	TargetReplay
	// TargetDebug carries the Debug buffer from server to client for
	// diagnostic replay. Only produces data when debug capture is enabled.
	TargetDebug
)

// String renders the target for logging.
func (t ReplicationTarget) String() string {
	switch t {
	case TargetServerRPC:
		return "ServerRPC"
	case TargetAutonomousProxy:
		return "AutonomousProxy"
	case TargetSimulatedProxy:
		return "SimulatedProxy"
	case TargetReplay:
		return "Replay"
	case TargetDebug:
		return "Debug"
	default:
		return "ReplicationTarget(unknown)"
	}
}

// SimulatedUpdateMode describes how a Simulated-Observer proxy advances
// toward the last received authoritative Sync state between updates.
type SimulatedUpdateMode int

const (
	// SimulatedUpdateInterpolate blends toward the latest received Sync
	// using a small delay window, trading latency for smoothness.
	SimulatedUpdateInterpolate SimulatedUpdateMode = iota
	// SimulatedUpdateExtrapolate runs Update forward using a synthesized
	// input, trading correctness for responsiveness.
	SimulatedUpdateExtrapolate
)

// Input is the constraint every user-supplied Input Command type must
// satisfy: it must expose the per-frame delta time it carries, so the tick
// engine can consume its simulation-time budget without knowing anything
// else about the payload.
type Input interface {
	DeltaTime() SimTime
}

// DebugState is a per-frame diagnostic record. It is not user-generic: its
// fields are fixed by spec. A Debug ring buffer only exists when debug
// capture is enabled on the Orchestrator.
type DebugState struct {
	LocalDeltaTime            SimTime
	GlobalFrame               uint64
	ProcessedKeyframes        []Keyframe
	RemainingBudget           SimTime
	LastSentInputKeyframe     Keyframe
	LastReceivedInputKeyframe Keyframe
}

// TickParams are the per-call arguments to Orchestrator.Tick.
type TickParams struct {
	Role                Role
	LocalDeltaTimeSeconds float64
}

// InitParams size the buffers an Orchestrator allocates for a role.
// Capacities are expressed in keyframes; the zero value of any field falls
// back to the documented default.
type InitParams struct {
	InputBufferSize   int
	SyncedBufferSize  int
	AuxBufferSize     int
	DebugBufferSize   int
	HistoricBufferSize int
}

// Defaults applies the typical capacities spec.md §6 documents to any zero
// fields.
func (p InitParams) Defaults() InitParams {
	if p.InputBufferSize <= 0 {
		p.InputBufferSize = 32
	}
	if p.SyncedBufferSize <= 0 {
		p.SyncedBufferSize = 32
	}
	if p.AuxBufferSize <= 0 {
		p.AuxBufferSize = 32
	}
	if p.DebugBufferSize <= 0 {
		p.DebugBufferSize = 64
	}
	if p.HistoricBufferSize <= 0 {
		p.HistoricBufferSize = 256
	}
	return p
}
