package netsim

import (
	"context"

	"netsim/logging/tick"
)

// Tick drives one simulation step in exactly the order spec.md §4.D
// requires: debug pre-record, debug new slot, PreSimTick dispatch,
// advance condition, Sync continuity check, input consumption loop,
// PostSimTick dispatch, debug finalize and historic/replay merge.
func (o *Orchestrator[TInput, TSync, TAux]) Tick(params TickParams) TickReport {
	if o.buffers == nil {
		invariantViolation("Tick called before InitializeForRole")
	}
	o.globalFrame++

	o.debugPreRecord()
	o.debugNewSlot(params)

	proxy := o.proxyFor()
	proxy.PreSimTick(o, params)

	report := TickReport{Role: o.role}

	if o.advanceCondition() {
		report.ContinuityBreak = o.syncContinuity()
		report.ConsumedKeyframes, report.BudgetExhausted = o.consumeInputs()
	}

	proxy.PostSimTick(o, params)

	o.debugFinalizeAndMerge()

	report.LastProcessedKeyframe = o.tick.LastProcessedInputKeyframe
	return report
}

// debugPreRecord implements step 1: stamp the previous debug entry with
// whichever input keyframe was most recently sent by the role's sending
// proxy, now that a send may have happened since that entry was opened.
func (o *Orchestrator[TInput, TSync, TAux]) debugPreRecord() {
	if o.buffers.Debug == nil {
		return
	}
	head, ok := o.buffers.Debug.HeadKeyframe()
	if !ok {
		return
	}
	if prev, ok := o.buffers.Debug.Find(head); ok {
		prev.LastSentInputKeyframe = o.lastSentInputKeyframe
	}
}

// debugNewSlot implements step 2: allocate the current frame's debug
// entry and stamp what's known at tick start.
func (o *Orchestrator[TInput, TSync, TAux]) debugNewSlot(params TickParams) {
	if o.buffers.Debug == nil {
		return
	}
	entry := o.buffers.Debug.WriteNext()
	entry.LocalDeltaTime = SimTimeFromSeconds(params.LocalDeltaTimeSeconds)
	entry.GlobalFrame = o.globalFrame
	entry.LastReceivedInputKeyframe = o.lastReceivedInputKeyframe
	entry.RemainingBudget = o.tick.RemainingAllowedSimulationTime
	o.debug.PostSimTick(o, params)
}

// advanceCondition implements step 4: proceed only if Input has advanced
// past Sync.
func (o *Orchestrator[TInput, TSync, TAux]) advanceCondition() bool {
	inputHead, ok := o.buffers.Input.HeadKeyframe()
	if !ok {
		return false
	}
	syncHead, ok := o.buffers.Sync.HeadKeyframe()
	if !ok {
		return true
	}
	return inputHead > syncHead
}

// syncContinuity implements step 5: if Sync.head has drifted from
// LastProcessedInputKeyframe, re-seed Sync at LastProcessedInputKeyframe
// via the driver and reset the per-keyframe time stamp. Returns whether a
// break was detected (false on the very first tick, which is expected,
// not a warning-worthy event).
func (o *Orchestrator[TInput, TSync, TAux]) syncContinuity() bool {
	syncHead, hasSyncHead := o.buffers.Sync.HeadKeyframe()
	if hasSyncHead && syncHead == o.tick.LastProcessedInputKeyframe {
		return false
	}
	firstRun := !o.tick.HasProcessed()

	tick.ContinuityBreak(context.Background(), o.deps.Publisher, o.globalFrame, o.actorRef(), tick.ContinuityBreakPayload{
		SyncHead:                   uint32(syncHead),
		LastProcessedInputKeyframe: uint32(o.tick.LastProcessedInputKeyframe),
		FirstRun:                   firstRun,
	})
	if !firstRun {
		o.deps.Logger.Printf("[netsim] continuity break: sync.head=%d last_processed=%d, re-seeding", syncHead, o.tick.LastProcessedInputKeyframe)
	}

	seed := o.buffers.Sync.ResetNextHeadKeyframe(o.tick.LastProcessedInputKeyframe)
	o.driver.InitSyncState(seed)
	totalAtK, _ := o.tick.SimTimeAt(o.tick.LastProcessedInputKeyframe)
	o.tick.ResetRollback(o.tick.LastProcessedInputKeyframe, totalAtK)
	return true
}

// consumeInputs implements step 6: repeatedly process the next input
// keyframe while budget and availability allow, calling Simulation.Update
// for each. A missing intermediate keyframe is treated as
// end-of-available-input, never skipped over.
func (o *Orchestrator[TInput, TSync, TAux]) consumeInputs() ([]Keyframe, bool) {
	var consumed []Keyframe
	budgetExhausted := false

	for k := o.tick.LastProcessedInputKeyframe + 1; k <= o.tick.MaxAllowedInputKeyframe; k++ {
		in, ok := o.buffers.Input.Find(k)
		if !ok {
			break
		}
		dt := (*in).DeltaTime()
		if o.tick.RemainingAllowedSimulationTime < dt {
			budgetExhausted = true
			break
		}

		prevSync, ok := o.buffers.Sync.Find(o.tick.LastProcessedInputKeyframe)
		if !ok {
			invariantViolation("consumeInputs: missing PrevSync at keyframe %d", o.tick.LastProcessedInputKeyframe)
		}
		nextSync := o.buffers.Sync.WriteNext()

		var aux *TAux
		if auxHead, ok := o.buffers.Aux.HeadKeyframe(); ok {
			aux, _ = o.buffers.Aux.Find(auxHead)
		}
		var auxZero TAux
		if aux == nil {
			aux = &auxZero
		}

		o.sim.Update(o.driver, dt.Seconds(), in, prevSync, nextSync, aux)
		o.driver.FinalizeFrame(nextSync)

		if o.buffers.Debug != nil {
			if debugHead, ok := o.buffers.Debug.HeadKeyframe(); ok {
				if entry, ok := o.buffers.Debug.Find(debugHead); ok {
					entry.ProcessedKeyframes = append(entry.ProcessedKeyframes, k)
				}
			}
		}

		o.tick.IncrementProcessed(k, dt)
		consumed = append(consumed, k)
	}

	if budgetExhausted {
		tick.BudgetExhausted(context.Background(), o.deps.Publisher, o.globalFrame, o.actorRef(), tick.BudgetExhaustedPayload{
			LastProcessedInputKeyframe: uint32(o.tick.LastProcessedInputKeyframe),
			MaxAllowedInputKeyframe:    uint32(o.tick.MaxAllowedInputKeyframe),
			RemainingAllowedSeconds:    o.tick.RemainingAllowedSimulationTime.Seconds(),
		})
	}
	return consumed, budgetExhausted
}

// debugFinalizeAndMerge implements step 8: stamp the current debug
// entry's remaining budget after consumption, archive the new Sync head
// into the historic buffer, and capture it into the replay window.
func (o *Orchestrator[TInput, TSync, TAux]) debugFinalizeAndMerge() {
	if o.buffers.Debug != nil {
		if head, ok := o.buffers.Debug.HeadKeyframe(); ok {
			if entry, ok := o.buffers.Debug.Find(head); ok {
				entry.RemainingBudget = o.tick.RemainingAllowedSimulationTime
			}
		}
	}
	o.buffers.ArchiveSync()
	if head, ok := o.buffers.Sync.HeadKeyframe(); ok {
		if sync, ok := o.buffers.Sync.Find(head); ok {
			o.replay.Capture(sync)
		}
	}
}
