// Package encoder packs logical keyboard events into MIDI wire messages.
//
// The functions do not validate their input. Channels are expected in [0,15]
// and data values in [0,127]; anything wider is truncated to a byte.
package encoder

import (
	"fmt"

	"github.com/icco/midikeys/internal/state"
	"gitlab.com/gomidi/midi/v2"
)

// Status nibbles for the channel messages this package emits.
const (
	NoteOffStatus       = 0x80
	NoteOnStatus        = 0x90
	ControlChangeStatus = 0xB0
	ProgramChangeStatus = 0xC0
)

// AllNotesOff is the channel-mode controller that silences a channel.
const AllNotesOff = 123

// NoteOn returns [0x90|channel, pitch, velocity].
func NoteOn(channel state.Channel, pitch, velocity int) midi.Message {
	return midi.Message{NoteOnStatus | byte(channel), byte(pitch), byte(velocity)}
}

// NoteOff returns [0x80|channel, pitch, velocity].
func NoteOff(channel state.Channel, pitch, velocity int) midi.Message {
	return midi.Message{NoteOffStatus | byte(channel), byte(pitch), byte(velocity)}
}

// ProgramChange returns [0xC0|channel, program].
func ProgramChange(channel state.Channel, program state.Program) midi.Message {
	return midi.Message{ProgramChangeStatus | byte(channel), byte(program)}
}

// ControlChange returns [0xB0|channel, controller, value].
func ControlChange(channel state.Channel, controller, value int) midi.Message {
	return midi.Message{ControlChangeStatus | byte(channel), byte(controller), byte(value)}
}

// Describe renders msg as hex bytes followed by its decoded form.
func Describe(msg midi.Message) string {
	if len(msg) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("% X  %s", []byte(msg), msg.String())
}
