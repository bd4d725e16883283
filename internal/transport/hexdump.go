package transport

import (
	"fmt"
	"io"
	"sync"

	"gitlab.com/gomidi/midi/v2"
)

// HexDump writes each message as a line of upper-case hex bytes.
type HexDump struct {
	mu      sync.Mutex
	w       io.Writer
	started bool
}

// NewHexDump returns a transport writing to w.
func NewHexDump(w io.Writer) *HexDump {
	return &HexDump{w: w}
}

func (h *HexDump) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
	return nil
}

func (h *HexDump) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	return nil
}

func (h *HexDump) Send(msg midi.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return ErrNotStarted
	}
	if _, err := fmt.Fprintf(h.w, "% X\n", []byte(msg)); err != nil {
		return fmt.Errorf("writing hex dump: %w", err)
	}
	return nil
}

func (h *HexDump) String() string { return "hex dump" }
