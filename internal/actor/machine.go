package actor

import (
	"github.com/roach88/tetra/internal/ir"
)

// State is a slot-machine state.
type State string

const (
	StateLoading                State = "loading"
	StateReadyToEnterNormalSpin State = "ready_to_enter_normal_spin"
	StateReadyToEnterFreeSpin   State = "ready_to_enter_free_spin"
	StateIdle                   State = "idle"
	StateSpinning               State = "spinning"
	StateFreeSpinIdle           State = "free_spin_idle"
)

// Status is the coarse view of State used by layout containers to decide
// when to reposition.
type Status string

const (
	StatusLoading      Status = "LOADING"
	StatusIdle         Status = "IDLE"
	StatusFreeSpinIdle Status = "FREE_SPIN_IDLE"
	StatusOther        Status = "OTHER"
)

// Status collapses s to a Status.
func (s State) Status() Status {
	switch s {
	case StateLoading:
		return StatusLoading
	case StateIdle:
		return StatusIdle
	case StateFreeSpinIdle:
		return StatusFreeSpinIdle
	default:
		return StatusOther
	}
}

// Ready reports whether s is one of the two ready-to-enter states.
func (s State) Ready() bool {
	return s == StateReadyToEnterNormalSpin || s == StateReadyToEnterFreeSpin
}

// EventType names an actor event.
type EventType string

const (
	EventUpdateElementStatus  EventType = "UPDATE_ELEMENT_STATUS"
	EventForceReady           EventType = "FORCE_READY"
	EventInitToNormalSpinIdle EventType = "INIT_TO_NORMAL_SPIN_IDLE"
	EventInitToFreeSpinIdle   EventType = "INIT_TO_FREE_SPIN_IDLE"
	EventSpin                 EventType = "SPIN"
	EventSpinEnd              EventType = "SPIN_END"
	EventTriggerFreeSpin      EventType = "TRIGGER_FREE_SPIN"
	EventEndFreeSpin          EventType = "END_FREE_SPIN"
	EventTurnSoundOn          EventType = "TURN_SOUND_ON"
	EventTurnSoundOff         EventType = "TURN_SOUND_OFF"
	EventToggleSound          EventType = "TOGGLE_SOUND"
)

// EventTypes lists every event type, for parsers.
var EventTypes = []EventType{
	EventUpdateElementStatus,
	EventForceReady,
	EventInitToNormalSpinIdle,
	EventInitToFreeSpinIdle,
	EventSpin,
	EventSpinEnd,
	EventTriggerFreeSpin,
	EventEndFreeSpin,
	EventTurnSoundOn,
	EventTurnSoundOff,
	EventToggleSound,
}

// ParseEventType accepts an event name as written in scenarios and layouts.
func ParseEventType(raw string) (EventType, bool) {
	for _, t := range EventTypes {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

// Event is sent to the actor.
type Event struct {
	Type EventType
	// Status is the payload of UPDATE_ELEMENT_STATUS.
	Status ir.LoadStatusMap
}

// UpdateElementStatus builds an UPDATE_ELEMENT_STATUS event.
func UpdateElementStatus(m ir.LoadStatusMap) Event {
	return Event{Type: EventUpdateElementStatus, Status: m}
}

// Context is the actor's extended state.
type Context struct {
	ElementLoadStatus ir.LoadStatusMap `json:"element_load_status"`
	IsFreeSpin        bool             `json:"is_free_spin"`
	SoundOn           bool             `json:"sound_on"`
}

func (c Context) clone() Context {
	c.ElementLoadStatus = c.ElementLoadStatus.Clone()
	return c
}

// Snapshot is an immutable view of the actor.
type Snapshot struct {
	State   State   `json:"state"`
	Context Context `json:"context"`
	// Seq is the sequence number of the event that produced this snapshot,
	// 0 for the initial snapshot.
	Seq int64 `json:"seq"`
}

// Progress returns the load progress of the snapshot.
func (s Snapshot) Progress() float64 {
	return s.Context.ElementLoadStatus.Progress()
}

// readyState is where loading ends for the given mode.
func readyState(isFreeSpin bool) State {
	if isFreeSpin {
		return StateReadyToEnterFreeSpin
	}
	return StateReadyToEnterNormalSpin
}

// transition applies ev to (state, ctx). It returns the next state and
// context, and false when the event is not accepted in state.
//
// ctx is never mutated; the returned context is a copy.
func transition(state State, ctx Context, ev Event) (State, Context, bool) {
	next := ctx.clone()

	switch ev.Type {
	case EventUpdateElementStatus:
		next.ElementLoadStatus = ctx.ElementLoadStatus.Merge(ev.Status)
		if state == StateLoading && next.ElementLoadStatus.AllLoaded() {
			return readyState(next.IsFreeSpin), next, true
		}
		return state, next, true

	case EventForceReady:
		if state != StateLoading {
			return state, ctx, false
		}
		return readyState(next.IsFreeSpin), next, true

	case EventInitToNormalSpinIdle:
		if state != StateReadyToEnterNormalSpin {
			return state, ctx, false
		}
		return StateIdle, next, true

	case EventInitToFreeSpinIdle:
		if state != StateReadyToEnterFreeSpin {
			return state, ctx, false
		}
		return StateFreeSpinIdle, next, true

	case EventSpin:
		if state != StateIdle && state != StateFreeSpinIdle {
			return state, ctx, false
		}
		return StateSpinning, next, true

	case EventSpinEnd:
		if state != StateSpinning {
			return state, ctx, false
		}
		if next.IsFreeSpin {
			return StateFreeSpinIdle, next, true
		}
		return StateIdle, next, true

	case EventTriggerFreeSpin:
		switch state {
		case StateIdle:
			next.IsFreeSpin = true
			return StateFreeSpinIdle, next, true
		case StateSpinning:
			// Takes effect at SPIN_END.
			next.IsFreeSpin = true
			return state, next, true
		case StateLoading:
			// Resumed session: loading ends in the free-spin ready state.
			next.IsFreeSpin = true
			return state, next, true
		default:
			return state, ctx, false
		}

	case EventEndFreeSpin:
		if !ctx.IsFreeSpin {
			return state, ctx, false
		}
		next.IsFreeSpin = false
		if state == StateFreeSpinIdle {
			return StateIdle, next, true
		}
		return state, next, true

	case EventTurnSoundOn:
		next.SoundOn = true
		return state, next, true

	case EventTurnSoundOff:
		next.SoundOn = false
		return state, next, true

	case EventToggleSound:
		next.SoundOn = !ctx.SoundOn
		return state, next, true

	default:
		return state, ctx, false
	}
}
