// Package state tracks the selected MIDI channel and the program chosen on
// each of the 16 channels.
package state

import "sync"

const (
	NumChannels = 16
	MaxProgram  = 127
)

// Channel is a MIDI channel in [0,15].
type Channel uint8

// Program is a MIDI program (instrument) number in [0,127].
type Program uint8

// Store holds the active channel and one program per channel. It is safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	channel  Channel
	programs [NumChannels]Program
}

// NewStore returns a store with channel 0 selected and every program at 0.
func NewStore() *Store {
	return &Store{}
}

// SelectChannel makes raw&0x0F the active channel. Out-of-range input wraps.
func (s *Store) SelectChannel(raw int) Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channel = Channel(raw & 0x0F)
	return s.channel
}

// Channel returns the active channel.
func (s *Store) Channel() Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// ActiveProgram returns the program recorded for the active channel.
func (s *Store) ActiveProgram() Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programs[s.channel]
}

// AdjustProgram adds delta to the active channel's program, saturating at 0
// and MaxProgram, and returns the stored result.
func (s *Store) AdjustProgram(delta int) Program {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Bound delta so the sum cannot overflow.
	if delta > MaxProgram {
		delta = MaxProgram + 1
	} else if delta < -MaxProgram {
		delta = -MaxProgram - 1
	}

	program := int(s.programs[s.channel]) + delta
	if program < 0 {
		program = 0
	} else if program > MaxProgram {
		program = MaxProgram
	}

	s.programs[s.channel] = Program(program)
	return s.programs[s.channel]
}

// SetProgram stores p for the active channel. Values above MaxProgram are
// clamped.
func (s *Store) SetProgram(p Program) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p > MaxProgram {
		p = MaxProgram
	}
	s.programs[s.channel] = p
}

// ProgramFor returns the program stored for ch.
func (s *Store) ProgramFor(ch Channel) Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programs[ch&0x0F]
}

// Programs returns a copy of the per-channel program table.
func (s *Store) Programs() [NumChannels]Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.programs
}
