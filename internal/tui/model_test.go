package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/midikeys/internal/controller"
	"github.com/icco/midikeys/internal/transport"
	"gitlab.com/gomidi/midi/v2"
)

type fakePorts struct {
	names []string
	out   *bytes.Buffer
	err   error
}

func (f *fakePorts) Names() []string { return f.names }

func (f *fakePorts) Open(name string) (transport.Transport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return transport.NewHexDump(f.out), nil
}

// harness wires a model to a monitor that records every message.
type harness struct {
	model Model
	sent  [][]byte
	ports *fakePorts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{ports: &fakePorts{names: []string{"Port A", "Port B"}, out: &bytes.Buffer{}}}

	log := NewMessageLog()
	monitor := transport.NewMonitor(func(msg midi.Message) {
		h.sent = append(h.sent, append([]byte(nil), msg...))
		log.Add(msg)
	})
	output := transport.NewSwitch()
	ctrl := controller.New(transport.NewFanout(output, monitor))

	h.model = New(Options{
		Controller: ctrl,
		Output:     output,
		Ports:      h.ports,
		Log:        log,
		Octave:     4,
		Hold:       time.Second,
	})
	return h
}

func (h *harness) key(t *testing.T, k tea.KeyMsg) tea.Cmd {
	t.Helper()
	next, cmd := h.model.Update(k)
	h.model = next.(Model)
	return cmd
}

func (h *harness) msg(t *testing.T, m tea.Msg) {
	t.Helper()
	next, _ := h.model.Update(m)
	h.model = next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyNote(t *testing.T) {
	tests := []struct {
		key    string
		octave int
		note   int
		ok     bool
	}{
		{"a", 4, 60, true},
		{"w", 4, 61, true},
		{"k", 4, 72, true},
		{"'", 4, 77, true},
		{"a", -1, 0, true},
		{"'", 8, 125, true},
		{"l", 9, 0, false}, // 134 is out of range
		{"q", 4, 0, false},
	}
	for _, tt := range tests {
		note, ok := keyNote(tt.key, tt.octave)
		if ok != tt.ok || (ok && note != tt.note) {
			t.Errorf("keyNote(%q, %d) = (%d, %v), want (%d, %v)", tt.key, tt.octave, note, ok, tt.note, tt.ok)
		}
	}
}

func TestNoteName(t *testing.T) {
	for note, want := range map[int]string{60: "C4", 61: "C#4", 69: "A4", 0: "C-1", 127: "G9"} {
		if got := noteName(note); got != want {
			t.Errorf("noteName(%d) = %q, want %q", note, got, want)
		}
	}
}

func TestPressAndRelease(t *testing.T) {
	h := newHarness(t)

	if cmd := h.key(t, runes("a")); cmd == nil {
		t.Fatal("Expected a release to be scheduled")
	}
	if len(h.sent) != 1 || !bytes.Equal(h.sent[0], []byte{0x90, 60, 64}) {
		t.Fatalf("Expected note on, got %v", h.sent)
	}

	// A repeat extends the hold without a second note on.
	h.key(t, runes("a"))
	if len(h.sent) != 1 {
		t.Fatalf("Expected repeat to be absorbed, got %v", h.sent)
	}

	// The first release is stale.
	h.msg(t, releaseMsg{note: 60, seq: 1})
	if len(h.sent) != 1 {
		t.Fatalf("Expected stale release to be ignored, got %v", h.sent)
	}

	h.msg(t, releaseMsg{note: 60, seq: 2})
	if len(h.sent) != 2 || !bytes.Equal(h.sent[1], []byte{0x80, 60, 64}) {
		t.Fatalf("Expected note off, got %v", h.sent)
	}
	if len(h.model.held) != 0 {
		t.Errorf("Expected no held notes, got %v", h.model.held)
	}
}

func TestChannelKeysWrapAndReleaseHeldNotes(t *testing.T) {
	h := newHarness(t)

	h.key(t, runes("s")) // D4 on channel 0
	h.key(t, runes("["))

	if got := h.model.ctrl.Channel(); got != 15 {
		t.Errorf("Expected channel to wrap to 15, got %d", got)
	}
	if len(h.sent) != 2 || !bytes.Equal(h.sent[1], []byte{0x80, 62, 64}) {
		t.Fatalf("Expected note off on channel 0 before switching, got %v", h.sent)
	}

	h.key(t, runes("]"))
	if got := h.model.ctrl.Channel(); got != 0 {
		t.Errorf("Expected channel to wrap to 0, got %d", got)
	}
}

func TestProgramKeys(t *testing.T) {
	h := newHarness(t)
	h.key(t, runes("]"))
	h.key(t, runes("]"))
	h.key(t, runes("]")) // channel 3

	h.key(t, runes("+"))
	h.key(t, runes("="))
	h.key(t, runes("-"))
	h.key(t, runes("_"))
	h.key(t, runes("_"))

	if got := h.model.ctrl.Program(); got != 0 {
		t.Errorf("Expected program clamped at 0, got %d", got)
	}

	for i := 0; i < 5; i++ {
		h.key(t, runes("="))
	}
	h.sent = nil
	h.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if len(h.sent) != 1 || !bytes.Equal(h.sent[0], []byte{0xC3, 5}) {
		t.Errorf("Expected C3 05, got %v", h.sent)
	}
}

func TestOctaveKeysClamp(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 20; i++ {
		h.key(t, runes("x"))
	}
	if h.model.octave != maxOctave {
		t.Errorf("Expected octave %d, got %d", maxOctave, h.model.octave)
	}
	for i := 0; i < 20; i++ {
		h.key(t, runes("z"))
	}
	if h.model.octave != minOctave {
		t.Errorf("Expected octave %d, got %d", minOctave, h.model.octave)
	}
}

func TestPortSelection(t *testing.T) {
	h := newHarness(t)

	h.key(t, tea.KeyMsg{Type: tea.KeyTab})
	if h.model.mode != portMode {
		t.Fatal("Expected port mode")
	}
	if !strings.Contains(h.model.View(), "Port B") {
		t.Error("Expected port list in view")
	}

	h.key(t, tea.KeyMsg{Type: tea.KeyDown})
	h.key(t, tea.KeyMsg{Type: tea.KeyEnter})
	if h.model.mode != keyboardMode {
		t.Error("Expected keyboard mode after connecting")
	}
	if h.model.output.Current() == nil {
		t.Fatal("Expected an output to be connected")
	}
	if h.model.message != "Connected to: Port B" {
		t.Errorf("Unexpected message %q", h.model.message)
	}

	h.key(t, runes("a"))
	if got := h.ports.out.String(); got != "90 3C 40\n" {
		t.Errorf("Expected note on at the port, got %q", got)
	}

	h.key(t, tea.KeyMsg{Type: tea.KeyTab})
	h.key(t, runes("d"))
	if h.model.output.Current() != nil {
		t.Error("Expected output to be disconnected")
	}
	if !strings.HasSuffix(h.ports.out.String(), "80 3C 40\n") {
		t.Errorf("Expected held note released before disconnect, got %q", h.ports.out.String())
	}
}

func TestPortOpenFailure(t *testing.T) {
	h := newHarness(t)
	h.ports.err = errors.New("port busy")

	h.key(t, tea.KeyMsg{Type: tea.KeyTab})
	h.key(t, tea.KeyMsg{Type: tea.KeyEnter})

	if h.model.output.Current() != nil {
		t.Error("Expected no output after a failed open")
	}
	if !strings.Contains(h.model.message, "port busy") {
		t.Errorf("Expected error message, got %q", h.model.message)
	}
}

func TestQuitReleasesHeldNotes(t *testing.T) {
	h := newHarness(t)
	h.key(t, runes("a"))
	h.key(t, runes("d"))

	cmd := h.key(t, runes("q"))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if len(h.sent) != 4 {
		t.Errorf("Expected two note ons and two note offs, got %v", h.sent)
	}
}

func TestViewKeyboard(t *testing.T) {
	h := newHarness(t)
	h.key(t, runes("a"))

	view := h.model.View()
	for _, want := range []string{"MIDIKEYS", "Not connected", "C4", "Message Log: [1 total]", "90 3C 40"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}
}

func TestMessageLogCapsHistory(t *testing.T) {
	l := NewMessageLog()
	for i := 0; i < maxMessageHistory+5; i++ {
		l.Add(midi.Message{0x90, byte(i), 64})
	}
	if l.Count() != maxMessageHistory+5 {
		t.Errorf("Count() = %d", l.Count())
	}
	if n := len(l.Entries(100)); n != maxMessageHistory {
		t.Errorf("Expected %d entries, got %d", maxMessageHistory, n)
	}
	if !strings.HasPrefix(l.Entries(1)[0], "90 18 40") {
		t.Errorf("Expected newest entry first, got %q", l.Entries(1)[0])
	}
}

func TestRenderKeyboardLayout(t *testing.T) {
	out := renderKeyboard(60, map[int]int{})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(lines))
	}
	for _, k := range []string{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'"} {
		if !strings.Contains(lines[1], k) {
			t.Errorf("Expected white key %q on bottom row", k)
		}
	}
	for _, k := range []string{"w", "e", "t", "y", "u", "o", "p"} {
		if !strings.Contains(lines[0], k) {
			t.Errorf("Expected black key %q on top row", k)
		}
	}
}
