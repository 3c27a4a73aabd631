package observability

// Config captures opt-in observability toggles that wire into the engine.
type Config struct {
	// EnableDebugCapture turns on the Debug replication target: per-tick
	// DebugState snapshots are recorded into the debug ring buffer and
	// surfaced to hosts for tools like replay scrubbing and desync triage.
	EnableDebugCapture bool
}
