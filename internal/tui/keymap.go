package tui

import "fmt"

// pianoKeys maps the home row to naturals and the row above to accidentals,
// starting at C. The index is the semitone offset from the octave's C.
var pianoKeys = []string{"a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k", "o", "l", "p", ";", "'"}

const (
	minOctave      = -1
	maxOctave      = 8
	notesPerOctave = 12
	maxMIDINote    = 127
)

var noteOffsets = func() map[string]int {
	m := make(map[string]int, len(pianoKeys))
	for i, k := range pianoKeys {
		m[k] = i
	}
	return m
}()

// octaveBase returns the MIDI note of C in octave, with C4 = 60.
func octaveBase(octave int) int {
	return (octave + 1) * notesPerOctave
}

// keyNote returns the note bound to key in octave.
func keyNote(key string, octave int) (int, bool) {
	offset, ok := noteOffsets[key]
	if !ok {
		return 0, false
	}
	note := octaveBase(octave) + offset
	if note < 0 || note > maxMIDINote {
		return 0, false
	}
	return note, true
}

func noteName(note int) string {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%s%d", names[note%notesPerOctave], note/notesPerOctave-1)
}
