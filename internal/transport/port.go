package transport

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"go.uber.org/multierr"
)

// Port sends messages to a MIDI output port.
type Port struct {
	mu       sync.Mutex
	out      drivers.Out
	sendFunc func(msg midi.Message) error
	onClose  func() error
}

// NewPort wraps an output port. The port is opened by Start.
func NewPort(out drivers.Out) *Port {
	return &Port{out: out}
}

// OutPortNames lists the available MIDI output ports.
func OutPortNames() []string {
	var names []string
	for _, out := range midi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// OpenPort finds the output port called name.
func OpenPort(name string) (*Port, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("finding MIDI output %q: %w", name, err)
	}
	return NewPort(out), nil
}

// OpenVirtual creates a virtual output port that other applications can
// read from. The driver is released when the port stops.
func OpenVirtual(name string) (*Port, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}

	out, err := driver.OpenVirtualOut(name)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create virtual MIDI port: %w", err)
	}

	p := NewPort(out)
	p.onClose = driver.Close
	return p, nil
}

func (p *Port) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendFunc != nil {
		return nil
	}
	send, err := midi.SendTo(p.out)
	if err != nil {
		// A port that never opened is never stopped, so release its driver now.
		if p.onClose != nil {
			err = multierr.Append(err, p.onClose())
			p.onClose = nil
		}
		return fmt.Errorf("failed to open port %s: %w", p.out.String(), err)
	}
	p.sendFunc = send
	return nil
}

// Stop closes the port. It waits for an in-flight Send to finish.
func (p *Port) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendFunc == nil {
		return nil
	}
	p.sendFunc = nil

	err := p.out.Close()
	if p.onClose != nil {
		if cerr := p.onClose(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("closing %s: %w", p.out.String(), err)
	}
	return nil
}

func (p *Port) Send(msg midi.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sendFunc == nil {
		return ErrNotStarted
	}
	return p.sendFunc(msg)
}

func (p *Port) String() string {
	return p.out.String()
}

// SystemPorts lists and opens the ports of the registered MIDI driver.
type SystemPorts struct{}

func (SystemPorts) Names() []string { return OutPortNames() }

func (SystemPorts) Open(name string) (Transport, error) {
	p, err := OpenPort(name)
	if err != nil {
		return nil, err
	}
	return p, nil
}
