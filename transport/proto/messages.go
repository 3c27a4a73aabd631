// Package proto defines the outer wire envelope transport/ws exchanges
// over a websocket connection. It deliberately knows nothing about
// Input/Sync/Aux shapes: the Payload field carries whatever bytes an
// Orchestrator's own Serialize/ReceiveAuthoritativeUpdate/
// ReceiveInputWindow methods already produce or expect, verbatim.
// Grounded on the teacher's internal/net/proto and internal/net/ws
// clientMessage/commandAckMessage/heartbeatMessage "type"-tagged
// envelope style.
package proto

import "encoding/json"

// FrameType discriminates the outer envelope, mirroring the teacher's
// clientMessage.Type / server message "type" dispatch.
type FrameType string

const (
	// FrameInputWindow carries an Autonomous-Predictor's recent
	// unacknowledged Input Commands, decoded via
	// Orchestrator.ReceiveInputWindow.
	FrameInputWindow FrameType = "inputWindow"
	// FrameAuthoritative carries a Server-Receiver's authoritative
	// Sync/Aux update, decoded via Orchestrator.ReceiveAuthoritativeUpdate.
	FrameAuthoritative FrameType = "authoritative"
	// FrameAck acknowledges input keyframes received up to Seq.
	FrameAck FrameType = "ack"
	// FrameHeartbeat carries round-trip timing, independent of any
	// simulation state.
	FrameHeartbeat FrameType = "heartbeat"
)

// Envelope is the outer wire frame exchanged over the websocket
// connection. Payload is the raw bytes of whatever Orchestrator.Serialize
// (or the client's own encoding of an input window) produced for Type;
// transport/ws routes on Type without ever decoding Payload itself.
type Envelope struct {
	Type    FrameType       `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckFrame acknowledges input keyframes received up to Seq, matching the
// teacher's commandAckMessage.
type AckFrame struct {
	Type FrameType `json:"type"`
	Seq  uint64    `json:"seq"`
}

// HeartbeatFrame carries round-trip timing, matching the teacher's
// heartbeatMessage.
type HeartbeatFrame struct {
	Type       FrameType `json:"type"`
	ServerTime int64     `json:"serverTime"`
	ClientTime int64     `json:"clientTime"`
	RTTMillis  int64     `json:"rtt"`
}
