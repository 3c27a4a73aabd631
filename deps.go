package netsim

import (
	"log"
	"math/rand"
	"time"

	"netsim/logging"
)

// Deps carries the shared infrastructure an Orchestrator needs but never
// constructs itself: logging, metrics, a clock (for the publisher's event
// timestamps, not for SimTime), a deterministic RNG seed source, and the
// wire codec. A zero-value Deps is valid; missing fields fall back to
// defaults: a logger on the standard logger's writer, a fresh Metrics,
// time.Now, an RNG seeded with 1, JSONCodec, and a no-op Publisher.
type Deps struct {
	Logger    *log.Logger
	Metrics   *logging.Metrics
	Clock     logging.Clock
	RNG       *rand.Rand
	Codec     Codec
	Publisher logging.Publisher
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	if d.Metrics == nil {
		d.Metrics = &logging.Metrics{}
	}
	if d.Clock == nil {
		d.Clock = logging.ClockFunc(time.Now)
	}
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(1))
	}
	if d.Codec == nil {
		d.Codec = JSONCodec{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}
