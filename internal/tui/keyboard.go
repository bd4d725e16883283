package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	keyUp   = "up"
	keyDown = "down"
)

func (m Model) updateKeyboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if note, ok := keyNote(key, m.octave); ok {
		return m, m.press(note)
	}

	switch key {
	case "q", "esc":
		m.releaseAll()
		return m, tea.Quit
	case "z":
		m.octave = clampOctave(m.octave - 1)
	case "x":
		m.octave = clampOctave(m.octave + 1)
	case "[":
		m.selectChannel(int(m.ctrl.Channel()) - 1)
	case "]":
		m.selectChannel(int(m.ctrl.Channel()) + 1)
	case "-":
		m.ctrl.ProgramDelta(-1)
	case "=":
		m.ctrl.ProgramDelta(1)
	case "_":
		m.ctrl.ProgramDelta(-10)
	case "+":
		m.ctrl.ProgramDelta(10)
	case "enter":
		m.ctrl.ProgramSend()
	case "tab":
		m.mode = portMode
		m.refreshPorts()
	}

	return m, nil
}

// press starts note, or extends it if the key is repeating, and schedules
// its release.
func (m *Model) press(note int) tea.Cmd {
	m.seq++
	if _, ok := m.held[note]; !ok {
		m.ctrl.KeyDown(note)
	}
	m.held[note] = m.seq

	rel := releaseMsg{note: note, seq: m.seq}
	return tea.Tick(m.hold, func(time.Time) tea.Msg {
		return rel
	})
}

// selectChannel releases held notes first so their note-offs reach the
// channel that started them.
func (m *Model) selectChannel(index int) {
	m.releaseAll()
	m.ctrl.ChannelSelected(index)
}

func (m Model) updatePorts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyUp, "k":
		if m.portCursor > 0 {
			m.portCursor--
		}
	case keyDown, "j":
		if m.portCursor < len(m.portNames)-1 {
			m.portCursor++
		}
	case "enter":
		if m.portCursor < len(m.portNames) {
			m.connect(m.portNames[m.portCursor])
		}
		m.mode = keyboardMode
	case "d":
		m.releaseAll()
		if err := m.output.Set(nil); err != nil {
			m.message = fmt.Sprintf("Error: %v", err)
		} else {
			m.message = "Disconnected"
		}
		m.mode = keyboardMode
	case "r":
		m.refreshPorts()
	case "esc", "q", "tab":
		m.mode = keyboardMode
	}
	return m, nil
}

func (m *Model) connect(name string) {
	m.releaseAll()
	t, err := m.ports.Open(name)
	if err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	if err := m.output.Set(t); err != nil {
		m.message = fmt.Sprintf("Error: %v", err)
		return
	}
	m.message = fmt.Sprintf("Connected to: %s", name)
}

func (m Model) viewKeyboard() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MIDIKEYS - MIDI Keyboard") + "\n\n")

	b.WriteString(subtitleStyle.Render("MIDI Out: "))
	if m.output.Current() != nil {
		b.WriteString(statusStyle.Render(m.output.String()) + "\n")
	} else {
		b.WriteString("Not connected (press tab to select)\n")
	}

	ch := m.ctrl.Channel()
	b.WriteString(subtitleStyle.Render("Channel: ") + selectedStyle.Render(fmt.Sprintf("%d", ch+1)))
	b.WriteString(subtitleStyle.Render("   Program: ") + selectedStyle.Render(fmt.Sprintf("%d", m.ctrl.Program())))
	b.WriteString(subtitleStyle.Render("   Octave: ") + selectedStyle.Render(fmt.Sprintf("%d", m.octave)) + "\n\n")

	b.WriteString(subtitleStyle.Render("Held Notes:") + "\n")
	if len(m.held) == 0 {
		b.WriteString("  (no notes playing)\n")
	} else {
		notes := make([]int, 0, len(m.held))
		for n := range m.held {
			notes = append(notes, n)
		}
		sort.Ints(notes)
		names := make([]string, len(notes))
		for i, n := range notes {
			names[i] = noteName(n)
		}
		b.WriteString("  " + noteStyle.Render(strings.Join(names, " ")) + "\n")
	}

	b.WriteString("\n" + subtitleStyle.Render(fmt.Sprintf("Message Log: [%d total]", m.log.Count())) + "\n")
	entries := m.log.Entries(10)
	if len(entries) == 0 {
		b.WriteString("  " + logStyle.Render("(waiting for input)") + "\n")
	}
	for i, e := range entries {
		if i == 0 {
			b.WriteString("  " + logHighlightStyle.Render("▶ "+e) + "\n")
		} else {
			b.WriteString("  " + logStyle.Render("  "+e) + "\n")
		}
	}

	b.WriteString("\n" + renderKeyboard(octaveBase(m.octave), m.held) + "\n")

	if m.message != "" {
		b.WriteString("\n" + errorStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("a w s e d f t g y h u j k o l p ; ': play • z/x: octave • [/]: channel"))
	b.WriteString("\n" + helpStyle.Render("-/=: program ±1 • _/+: program ±10 • enter: send program • tab: MIDI output • q: quit"))

	return b.String()
}

func (m Model) viewPorts() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select MIDI Output") + "\n\n")

	if len(m.portNames) == 0 {
		b.WriteString("No MIDI output ports found.\n\n")
		b.WriteString("Make sure your MIDI interface is connected.\n")
	}
	current := m.output.String()
	for i, name := range m.portNames {
		cursor := "  "
		if i == m.portCursor {
			cursor = "> "
		}

		connected := ""
		if m.output.Current() != nil && current == name {
			connected = " (connected)"
		}

		line := fmt.Sprintf("%s%s%s", cursor, name, connected)
		if i == m.portCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	if m.message != "" {
		b.WriteString(errorStyle.Render(m.message) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("↑/k: up • ↓/j: down • enter: connect • d: disconnect • r: refresh • q/esc/tab: cancel"))

	return b.String()
}

var (
	whiteKeyStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#FFFFFF")).Foreground(lipgloss.Color("#000000"))
	blackKeyStyle  = lipgloss.NewStyle().Background(lipgloss.Color("#000000")).Foreground(lipgloss.Color("#FFFFFF"))
	activeWhiteKey = lipgloss.NewStyle().Background(lipgloss.Color("#00FF00")).Foreground(lipgloss.Color("#000000"))
	activeBlackKey = lipgloss.NewStyle().Background(lipgloss.Color("#00AA00")).Foreground(lipgloss.Color("#FFFFFF"))
)

// renderKeyboard draws the playable range starting at base, black keys on
// the top row between the white keys below, lighting the held notes.
func renderKeyboard(base int, held map[int]int) string {
	var top, bottom strings.Builder

	key := func(offset int, idle, active lipgloss.Style) string {
		if _, on := held[base+offset]; on {
			return active.Render(pianoKeys[offset])
		}
		return idle.Render(pianoKeys[offset])
	}

	for offset := range pianoKeys {
		note := base + offset
		if isBlack(note) {
			continue
		}
		bottom.WriteString(key(offset, whiteKeyStyle, activeWhiteKey) + " ")

		top.WriteString(" ")
		if offset+1 < len(pianoKeys) && isBlack(note+1) {
			top.WriteString(key(offset+1, blackKeyStyle, activeBlackKey))
		} else {
			top.WriteString(" ")
		}
	}

	return top.String() + "\n" + bottom.String()
}

func isBlack(note int) bool {
	switch ((note % notesPerOctave) + notesPerOctave) % notesPerOctave {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}
