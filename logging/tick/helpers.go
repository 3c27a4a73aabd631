package tick

import (
	"context"

	"netsim/logging"
)

const (
	// EventContinuityBreak is emitted when the tick engine detects Sync.head
	// misaligned with LastProcessedInputKeyframe at tick start and re-seeds.
	EventContinuityBreak logging.EventType = "tick.continuity_break"
	// EventBudgetExhausted is emitted when the input consumption loop stops
	// because RemainingAllowedSimulationTime ran out before MaxAllowedInputKeyframe.
	EventBudgetExhausted logging.EventType = "tick.budget_exhausted"
)

// ContinuityBreakPayload captures the mismatch the engine recovered from.
type ContinuityBreakPayload struct {
	SyncHead                   uint32 `json:"syncHead"`
	LastProcessedInputKeyframe uint32 `json:"lastProcessedInputKeyframe"`
	FirstRun                   bool   `json:"firstRun"`
}

// BudgetExhaustedPayload captures how far the loop got before stopping.
type BudgetExhaustedPayload struct {
	LastProcessedInputKeyframe uint32 `json:"lastProcessedInputKeyframe"`
	MaxAllowedInputKeyframe    uint32 `json:"maxAllowedInputKeyframe"`
	RemainingAllowedSeconds    float64 `json:"remainingAllowedSeconds"`
}

// ContinuityBreak publishes a continuity-break recovery event.
func ContinuityBreak(ctx context.Context, pub logging.Publisher, frame uint64, actor logging.EntityRef, payload ContinuityBreakPayload) {
	if pub == nil {
		return
	}
	severity := logging.SeverityWarn
	if payload.FirstRun {
		severity = logging.SeverityDebug
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventContinuityBreak,
		Tick:     frame,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryTick,
		Payload:  payload,
	})
}

// BudgetExhausted publishes a budget-exhaustion event.
func BudgetExhausted(ctx context.Context, pub logging.Publisher, frame uint64, actor logging.EntityRef, payload BudgetExhaustedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventBudgetExhausted,
		Tick:     frame,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryTick,
		Payload:  payload,
	})
}
