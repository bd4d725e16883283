package encoder

import (
	"bytes"
	"strings"
	"testing"

	"github.com/icco/midikeys/internal/state"
	"gitlab.com/gomidi/midi/v2"
)

func TestEncodeExamples(t *testing.T) {
	tests := []struct {
		name string
		got  midi.Message
		want []byte
	}{
		{"note on", NoteOn(5, 60, 64), []byte{0x95, 60, 64}},
		{"note off", NoteOff(5, 60, 64), []byte{0x85, 60, 64}},
		{"program change", ProgramChange(5, 12), []byte{0xC5, 12}},
		{"control change", ControlChange(5, AllNotesOff, 0), []byte{0xB5, 123, 0}},
		{"channel 0", NoteOn(0, 0, 0), []byte{0x90, 0, 0}},
		{"channel 15", ProgramChange(15, 127), []byte{0xCF, 127}},
		{"scenario", ProgramChange(3, 5), []byte{0xC3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("Expected % X, got % X", tt.want, []byte(tt.got))
			}
		})
	}
}

func TestEncodeLengths(t *testing.T) {
	if n := len(NoteOn(1, 2, 3)); n != 3 {
		t.Errorf("NoteOn length = %d, want 3", n)
	}
	if n := len(NoteOff(1, 2, 3)); n != 3 {
		t.Errorf("NoteOff length = %d, want 3", n)
	}
	if n := len(ProgramChange(1, 2)); n != 2 {
		t.Errorf("ProgramChange length = %d, want 2", n)
	}
}

func TestEncodeMatchesGomidi(t *testing.T) {
	for ch := 0; ch < state.NumChannels; ch++ {
		c := uint8(ch) //nolint:gosec // ch is bounded by NumChannels
		for _, v := range []uint8{0, 1, 60, 64, 127} {
			if got, want := NoteOn(state.Channel(c), int(v), 64), midi.NoteOn(c, v, 64); !bytes.Equal(got, want) {
				t.Errorf("NoteOn(%d, %d): got % X, gomidi % X", c, v, []byte(got), []byte(want))
			}
			if got, want := NoteOff(state.Channel(c), int(v), 64), midi.NoteOffVelocity(c, v, 64); !bytes.Equal(got, want) {
				t.Errorf("NoteOff(%d, %d): got % X, gomidi % X", c, v, []byte(got), []byte(want))
			}
			if got, want := ProgramChange(state.Channel(c), state.Program(v)), midi.ProgramChange(c, v); !bytes.Equal(got, want) {
				t.Errorf("ProgramChange(%d, %d): got % X, gomidi % X", c, v, []byte(got), []byte(want))
			}
		}
	}
}

func TestEncodeDecodesWithGomidi(t *testing.T) {
	var channel, key, velocity, program uint8

	if !NoteOn(9, 36, 100).GetNoteOn(&channel, &key, &velocity) {
		t.Fatal("Expected gomidi to read a note on")
	}
	if channel != 9 || key != 36 || velocity != 100 {
		t.Errorf("Decoded note on = (%d, %d, %d), want (9, 36, 100)", channel, key, velocity)
	}

	if !ProgramChange(2, 41).GetProgramChange(&channel, &program) {
		t.Fatal("Expected gomidi to read a program change")
	}
	if channel != 2 || program != 41 {
		t.Errorf("Decoded program change = (%d, %d), want (2, 41)", channel, program)
	}
}

func TestEncodeTruncatesToByte(t *testing.T) {
	got := NoteOn(1, 256+60, 512+64)
	want := []byte{0x91, 60, 64}
	if !bytes.Equal(got, want) {
		t.Errorf("Expected % X, got % X", want, []byte(got))
	}

	got = NoteOff(1, -1, 64)
	if got[1] != 0xFF {
		t.Errorf("Expected pitch -1 to truncate to 0xFF, got %#x", got[1])
	}
}

func TestDescribe(t *testing.T) {
	d := Describe(NoteOn(5, 60, 64))
	if !strings.HasPrefix(d, "95 3C 40") {
		t.Errorf("Expected hex prefix, got %q", d)
	}
	if Describe(nil) != "(empty)" {
		t.Errorf("Expected (empty) for nil message, got %q", Describe(nil))
	}
}
