package controller

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/icco/midikeys/internal/state"
)

// EventKind identifies an inbound operation.
type EventKind int

const (
	EventChannel EventKind = iota
	EventKeyDown
	EventKeyUp
	EventProgramDelta
	EventProgramSend
	EventProgramSet
	EventWait
)

// ErrBadEvent is wrapped by ParseEvent failures.
var ErrBadEvent = errors.New("bad event")

// Event is one inbound operation in data form, as read from a script.
type Event struct {
	Kind  EventKind
	Value int
	Wait  time.Duration
}

// ParseEvent reads one script token:
//
//	ch=N      select channel N
//	on=K      key K down
//	off=K     key K up
//	prog=+D   adjust program by D (sign required)
//	set=P     record program P without sending
//	send      send the active program
//	wait=DUR  pause, e.g. wait=250ms
func ParseEvent(token string) (Event, error) {
	if token == "send" {
		return Event{Kind: EventProgramSend}, nil
	}

	key, val, ok := strings.Cut(token, "=")
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrBadEvent, token)
	}

	if key == "wait" {
		d, err := time.ParseDuration(val)
		if err != nil || d < 0 {
			return Event{}, fmt.Errorf("%w: %q: invalid duration", ErrBadEvent, token)
		}
		return Event{Kind: EventWait, Wait: d}, nil
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %q: %v", ErrBadEvent, token, err)
	}

	switch key {
	case "ch":
		return Event{Kind: EventChannel, Value: n}, nil
	case "on":
		return Event{Kind: EventKeyDown, Value: n}, nil
	case "off":
		return Event{Kind: EventKeyUp, Value: n}, nil
	case "prog":
		if !strings.HasPrefix(val, "+") && !strings.HasPrefix(val, "-") {
			return Event{}, fmt.Errorf("%w: %q: program delta needs a sign", ErrBadEvent, token)
		}
		return Event{Kind: EventProgramDelta, Value: n}, nil
	case "set":
		if n < 0 || n > state.MaxProgram {
			return Event{}, fmt.Errorf("%w: %q: program out of range", ErrBadEvent, token)
		}
		return Event{Kind: EventProgramSet, Value: n}, nil
	}
	return Event{}, fmt.Errorf("%w: unknown event %q", ErrBadEvent, key)
}

// ParseScript parses whitespace-separated tokens.
func ParseScript(script string) ([]Event, error) {
	var events []Event
	for _, tok := range strings.Fields(script) {
		ev, err := ParseEvent(tok)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// Apply performs ev. Wait events are left to the caller.
func (c *Controller) Apply(ev Event) {
	switch ev.Kind {
	case EventChannel:
		c.ChannelSelected(ev.Value)
	case EventKeyDown:
		c.KeyDown(ev.Value)
	case EventKeyUp:
		c.KeyUp(ev.Value)
	case EventProgramDelta:
		c.ProgramDelta(ev.Value)
	case EventProgramSend:
		c.ProgramSend()
	case EventProgramSet:
		c.ProgramConfirmed(state.Program(ev.Value)) //nolint:gosec // range checked by ParseEvent
	}
}
