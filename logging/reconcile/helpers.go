package reconcile

import (
	"context"

	"netsim/logging"
)

const (
	// EventRollback is emitted when the Autonomous-Predictor's Reconcile
	// detects divergence from authority and rewinds Sync to replay.
	EventRollback logging.EventType = "reconcile.rollback"
	// EventEvicted is emitted when a rollback references a keyframe no
	// longer retained by either the live or historic Sync buffer.
	EventEvicted logging.EventType = "reconcile.evicted"
	// EventDependentPropagated is emitted for each step_rollback call a
	// parent drives on a dependent simulation.
	EventDependentPropagated logging.EventType = "reconcile.dependent_propagated"
)

// RollbackPayload captures the keyframe the predictor rewound to.
type RollbackPayload struct {
	Keyframe     uint32 `json:"keyframe"`
	ReplayCount  int    `json:"replayCount"`
	SyncDiverged bool   `json:"syncDiverged"`
	AuxDiverged  bool   `json:"auxDiverged"`
}

// EvictedPayload captures the requested-but-unavailable keyframe.
type EvictedPayload struct {
	RequestedKeyframe uint32 `json:"requestedKeyframe"`
	OldestRetained    uint32 `json:"oldestRetained"`
}

// DependentPropagatedPayload describes a single step of parent-driven replay.
type DependentPropagatedPayload struct {
	Step           int    `json:"step"`
	ParentKeyframe uint32 `json:"parentKeyframe"`
	IsFinal        bool   `json:"isFinal"`
}

// Rollback publishes a rollback event.
func Rollback(ctx context.Context, pub logging.Publisher, frame uint64, actor logging.EntityRef, payload RollbackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRollback,
		Tick:     frame,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryReconcile,
		Payload:  payload,
	})
}

// Evicted publishes a rollback-to-evicted-keyframe event.
func Evicted(ctx context.Context, pub logging.Publisher, frame uint64, actor logging.EntityRef, payload EvictedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEvicted,
		Tick:     frame,
		Actor:    actor,
		Severity: logging.SeverityError,
		Category: logging.CategoryReconcile,
		Payload:  payload,
	})
}

// DependentPropagated publishes one step of parent-driven dependent replay.
func DependentPropagated(ctx context.Context, pub logging.Publisher, frame uint64, actor logging.EntityRef, payload DependentPropagatedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDependentPropagated,
		Tick:     frame,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryReconcile,
		Payload:  payload,
	})
}
