// Package tui is a terminal front end that turns key presses into
// controller events.
package tui

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/icco/midikeys/internal/controller"
	"github.com/icco/midikeys/internal/encoder"
	"github.com/icco/midikeys/internal/transport"
	"gitlab.com/gomidi/midi/v2"
)

// View modes
type viewMode int

const (
	keyboardMode viewMode = iota
	portMode
)

const maxMessageHistory = 20

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	logStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	logHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
)

// PortOpener lists and opens MIDI outputs for the port picker.
type PortOpener interface {
	Names() []string
	Open(name string) (transport.Transport, error)
}

// MessageLog keeps the most recent outgoing messages for display. Add is
// safe to call from a transport.
type MessageLog struct {
	mu      sync.Mutex
	entries []string
	count   int
}

func NewMessageLog() *MessageLog {
	return &MessageLog{entries: make([]string, 0, maxMessageHistory)}
}

// Add records msg, newest first.
func (l *MessageLog) Add(msg midi.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]string{encoder.Describe(msg)}, l.entries...)
	if len(l.entries) > maxMessageHistory {
		l.entries = l.entries[:maxMessageHistory]
	}
	l.count++
}

// Entries returns up to n entries, newest first.
func (l *MessageLog) Entries(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]string, n)
	copy(out, l.entries[:n])
	return out
}

// Count returns the number of messages seen.
func (l *MessageLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Options configures a Model.
type Options struct {
	Controller *controller.Controller
	Output     *transport.Switch
	Ports      PortOpener
	Log        *MessageLog
	Octave     int
	Hold       time.Duration
}

// releaseMsg ends a held note unless the key was pressed again since.
type releaseMsg struct {
	note int
	seq  int
}

// Model is the bubbletea model.
type Model struct {
	mode   viewMode
	ctrl   *controller.Controller
	output *transport.Switch
	ports  PortOpener
	log    *MessageLog

	octave int
	hold   time.Duration
	held   map[int]int // note -> press sequence
	seq    int

	portNames  []string
	portCursor int

	message string
	width   int
	height  int
}

// New returns a model driving opts.Controller.
func New(opts Options) Model {
	if opts.Log == nil {
		opts.Log = NewMessageLog()
	}
	if opts.Hold <= 0 {
		opts.Hold = 400 * time.Millisecond
	}
	if opts.Output == nil {
		opts.Output = transport.NewSwitch()
	}
	return Model{
		mode:   keyboardMode,
		ctrl:   opts.Controller,
		output: opts.Output,
		ports:  opts.Ports,
		log:    opts.Log,
		octave: clampOctave(opts.Octave),
		hold:   opts.Hold,
		held:   make(map[int]int),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case releaseMsg:
		if seq, ok := m.held[msg.note]; ok && seq == msg.seq {
			delete(m.held, msg.note)
			m.ctrl.KeyUp(msg.note)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.releaseAll()
			return m, tea.Quit
		}

		switch m.mode {
		case keyboardMode:
			return m.updateKeyboard(msg)
		case portMode:
			return m.updatePorts(msg)
		}
	}

	return m, nil
}

// releaseAll sends note-off for every held note.
func (m *Model) releaseAll() {
	for note := range m.held {
		m.ctrl.KeyUp(note)
		delete(m.held, note)
	}
}

func (m Model) View() string {
	switch m.mode {
	case portMode:
		return m.viewPorts()
	default:
		return m.viewKeyboard()
	}
}

func clampOctave(o int) int {
	if o < minOctave {
		return minOctave
	}
	if o > maxOctave {
		return maxOctave
	}
	return o
}

func (m *Model) refreshPorts() {
	m.portNames = nil
	if m.ports != nil {
		m.portNames = m.ports.Names()
	}
	if m.portCursor >= len(m.portNames) {
		m.portCursor = 0
	}
	m.message = fmt.Sprintf("Found %d MIDI output(s)", len(m.portNames))
}
