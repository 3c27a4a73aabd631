// Package ws pumps an Orchestrator's wire traffic over a websocket
// connection. It owns no simulation semantics of its own: every Envelope
// it receives is routed straight to the matching Orchestrator method, and
// every outbound send is whatever Orchestrator.Serialize produced for a
// ReplicationTarget. Grounded on the teacher's internal/net/ws
// handler.go/session.go read-loop and per-connection Upgrader setup.
package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"netsim"
	"netsim/transport/proto"
)

// Handler coordinates one Orchestrator's websocket session. A Handler is
// single-use: construct one per connection via NewHandler.
type Handler[TInput netsim.Input, TSync any, TAux any] struct {
	orchestrator *netsim.Orchestrator[TInput, TSync, TAux]
	target       netsim.ReplicationTarget
	logger       *log.Logger
	upgrader     websocket.Upgrader
}

// Config configures NewHandler.
type Config struct {
	Logger *log.Logger
	// CheckOrigin overrides the upgrader's origin check. Defaults to
	// accepting any origin, matching the teacher's development-mode
	// upgrader; production hosts should supply their own.
	CheckOrigin func(r *http.Request) bool
}

// NewHandler constructs a Handler driving orchestrator and replicating
// target's serialized stream to the peer. target should be
// TargetAutonomousProxy/TargetSimulatedProxy for a server-side Handler
// serving a client, or TargetServerRPC for a client-side Handler talking
// to Authority.
func NewHandler[TInput netsim.Input, TSync any, TAux any](orchestrator *netsim.Orchestrator[TInput, TSync, TAux], target netsim.ReplicationTarget, cfg Config) *Handler[TInput, TSync, TAux] {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler[TInput, TSync, TAux]{
		orchestrator: orchestrator,
		target:       target,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Serve upgrades the connection and runs the read loop until the peer
// disconnects or sends a malformed frame severe enough to kill the
// session. It blocks; callers typically invoke it from an
// http.HandlerFunc in its own goroutine per request.
func (h *Handler[TInput, TSync, TAux]) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("netsim/ws: upgrade: %w", err)
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return nil
		}

		var env proto.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			h.logger.Printf("netsim/ws: discarding malformed envelope: %v", err)
			continue
		}

		switch env.Type {
		case proto.FrameInputWindow:
			if err := h.orchestrator.ReceiveInputWindow(bytes.NewReader(env.Payload)); err != nil {
				h.logger.Printf("netsim/ws: decode input window: %v", err)
			}
		case proto.FrameAuthoritative:
			if err := h.orchestrator.ReceiveAuthoritativeUpdate(bytes.NewReader(env.Payload)); err != nil {
				h.logger.Printf("netsim/ws: decode authoritative update: %v", err)
			}
		case proto.FrameHeartbeat:
			var hb proto.HeartbeatFrame
			if err := json.Unmarshal(env.Payload, &hb); err == nil {
				hb.ServerTime = time.Now().UnixMilli()
				hb.RTTMillis = hb.ServerTime - hb.ClientTime
				if data, err := json.Marshal(hb); err == nil {
					_ = conn.WriteMessage(websocket.TextMessage, data)
				}
			}
		default:
			h.logger.Printf("netsim/ws: unknown frame type %q", env.Type)
		}
	}
}

// PushOnce serializes target's current state and writes it to conn as an
// Envelope, if the proxy reports anything dirty. Callers drive this from
// their own tick loop (after Orchestrator.Tick, per spec.md §4.D step 7),
// since only the host knows its own send cadence.
func (h *Handler[TInput, TSync, TAux]) PushOnce(conn *websocket.Conn) error {
	if h.orchestrator.DirtyCount(h.target) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := h.orchestrator.Serialize(h.target, &buf); err != nil {
		return fmt.Errorf("netsim/ws: serialize %v: %w", h.target, err)
	}
	env := proto.Envelope{Type: frameTypeFor(h.target), Payload: buf.Bytes()}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("netsim/ws: marshal envelope: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func frameTypeFor(target netsim.ReplicationTarget) proto.FrameType {
	switch target {
	case netsim.TargetServerRPC:
		return proto.FrameInputWindow
	default:
		return proto.FrameAuthoritative
	}
}
