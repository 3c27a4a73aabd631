// Package schema generates JSON Schema documents for netsim's
// wire-adjacent types, so external tooling (replay viewers, a host's own
// config validation) can validate InitParams/TickParams/DebugState and
// the transport/proto envelope shapes without importing netsim's Go
// types directly. Grounded on the teacher's
// effects/catalog/schema_generate.go and cmd/schema/main.go reflector
// setup.
package schema

import (
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"netsim"
	"netsim/transport/proto"
)

// BuildInitParams reflects netsim.InitParams into a JSON Schema document,
// describing the buffer-sizing knobs a host configures per Orchestrator.
func BuildInitParams() (*jsonschema.Schema, error) {
	return reflectNamed(reflect.TypeOf(netsim.InitParams{}), "Init Params",
		"Buffer capacities an Orchestrator is sized with via InitializeForRole.")
}

// BuildTickParams reflects netsim.TickParams into a JSON Schema document.
func BuildTickParams() (*jsonschema.Schema, error) {
	return reflectNamed(reflect.TypeOf(netsim.TickParams{}), "Tick Params",
		"Per-call arguments to Orchestrator.Tick.")
}

// BuildDebugState reflects netsim.DebugState into a JSON Schema document,
// describing the per-frame diagnostic record the Debug replication
// target emits when debug capture is enabled.
func BuildDebugState() (*jsonschema.Schema, error) {
	return reflectNamed(reflect.TypeOf(netsim.DebugState{}), "Debug State",
		"Per-frame diagnostic record captured when debug capture is enabled.")
}

// BuildTransportEnvelope reflects the transport/proto wire envelope
// types into a single schema document describing the outer frame shapes
// a websocket peer exchanges with an Orchestrator-backed host.
func BuildTransportEnvelope() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{RequiredFromJSONSchemaTags: true}

	envelope := reflector.ReflectFromType(reflect.TypeOf(proto.Envelope{}))
	ack := reflector.ReflectFromType(reflect.TypeOf(proto.AckFrame{}))
	heartbeat := reflector.ReflectFromType(reflect.TypeOf(proto.HeartbeatFrame{}))
	if envelope == nil || ack == nil || heartbeat == nil {
		return nil, fmt.Errorf("schema: failed to reflect transport/proto frame types")
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Transport Envelope",
		Description: "Outer wire frames exchanged between a netsim Orchestrator and a websocket peer.",
		OneOf:       []*jsonschema.Schema{envelope, ack, heartbeat},
	}
	return root, nil
}

func reflectNamed(t reflect.Type, title, description string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	s := reflector.ReflectFromType(t)
	if s == nil {
		return nil, fmt.Errorf("schema: failed to reflect %s", t.Name())
	}
	s.Title = title
	s.Description = description
	return s, nil
}
