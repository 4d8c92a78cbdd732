package gameevents

import (
	"github.com/sessamekesh/multiplayer-lan-client/pkg/handlers"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/objects"
)

// LogicCounter is the host's signal counter as the side screen sees it.
type LogicCounter struct {
	Instance     *objects.Instance
	CurrentCount int32
	MaxCount     int32
	AdvancedMode bool
}

// LogicCounterState is a snapshot of a counter after a side screen edit,
// addressed by its multiplayer id.
type LogicCounterState struct {
	Target       objects.Id
	CurrentCount int32
	MaxCount     int32
	AdvancedMode bool
}

type CounterSideScreenEvents struct {
	patches  *PatchControl
	registry *objects.Registry
	updated  handlers.List[LogicCounterState]
}

// CreateCounterSideScreenEvents reports counters by the id registry assigns
// them, registering counters that have none yet.
func CreateCounterSideScreenEvents(patches *PatchControl, registry *objects.Registry) *CounterSideScreenEvents {
	return &CounterSideScreenEvents{
		patches:  patches,
		registry: registry,
	}
}

func (e *CounterSideScreenEvents) OnUpdateLogicCounter(fn func(state LogicCounterState)) func() {
	return e.updated.Add(fn)
}

// SetMaxCount reports counter with its new maximum. The current count never
// exceeds the maximum.
func (e *CounterSideScreenEvents) SetMaxCount(counter LogicCounter, maxCount int32) {
	counter.MaxCount = maxCount
	counter.CurrentCount = min(counter.CurrentCount, maxCount)
	e.notify(counter)
}

func (e *CounterSideScreenEvents) ToggleAdvanced(counter LogicCounter) {
	counter.AdvancedMode = !counter.AdvancedMode
	e.notify(counter)
}

func (e *CounterSideScreenEvents) notify(counter LogicCounter) {
	if counter.Instance == nil {
		return
	}
	e.patches.RunIfEnabled(func() {
		e.updated.Notify(LogicCounterState{
			Target:       e.registry.Register(counter.Instance),
			CurrentCount: counter.CurrentCount,
			MaxCount:     counter.MaxCount,
			AdvancedMode: counter.AdvancedMode,
		}, nil)
	})
}
