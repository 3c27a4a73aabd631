package netsim

// rpcPacer paces outbound Server-RPC sends to a desired frequency. It is
// grounded on NetworkSimulationModel.h's ShouldSendServerRPC: a copy of
// the delta time is capped at the threshold, to avoid a single large
// frame hitch inflating the accumulator, but the capped value is never
// used — the raw, uncapped delta is what gets added to the accumulator
// and compared against the threshold. That asymmetry looks like a bug in the
// source and is flagged as such, but preserved literally rather than
// "fixed", since callers already tuned their send frequencies around its
// real behavior.
type rpcPacer struct {
	thresholdSeconds   float64
	accumulatedSeconds float64
}

// SetDesiredServerRPCSendFrequency sets the threshold window from a
// desired send rate in Hz.
func (p *rpcPacer) SetDesiredServerRPCSendFrequency(desiredHz float64) {
	if desiredHz <= 0 {
		invariantViolation("SetDesiredServerRPCSendFrequency: desiredHz must be positive, got %v", desiredHz)
	}
	p.thresholdSeconds = 1.0 / desiredHz
}

// ShouldSendServerRPC accumulates dtSeconds and reports whether a
// Server-RPC send is due this frame, subtracting one threshold's worth
// from the accumulator when it fires.
func (p *rpcPacer) ShouldSendServerRPC(dtSeconds float64) bool {
	if p.thresholdSeconds <= 0 {
		p.thresholdSeconds = 1.0 / 999.0
	}
	// Computed for parity with the source's intent (avoid a large delta
	// polluting the accumulator) but, matching the source, never actually
	// used below — the accumulation stays uncapped.
	cappedDeltaTimeSeconds := dtSeconds
	if cappedDeltaTimeSeconds > p.thresholdSeconds {
		cappedDeltaTimeSeconds = p.thresholdSeconds
	}
	_ = cappedDeltaTimeSeconds

	p.accumulatedSeconds += dtSeconds
	if p.accumulatedSeconds >= p.thresholdSeconds {
		p.accumulatedSeconds -= p.thresholdSeconds
		return true
	}
	return false
}
