// Package transport delivers encoded MIDI messages to output sinks: hardware
// and virtual ports, SMF recordings, hex dumps and in-process monitors.
package transport

import (
	"errors"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/multierr"
)

// ErrNotStarted is returned by Send when the transport has not been started
// or has already been stopped.
var ErrNotStarted = errors.New("transport not started")

// Transport is a MIDI output sink. Start must be called before the first
// Send; Stop must not return while a Send is in progress.
type Transport interface {
	Start() error
	Stop() error
	Send(msg midi.Message) error
	String() string
}

// Fanout forwards every message to each of its transports.
type Fanout struct {
	sinks []Transport
}

// NewFanout returns a transport that forwards to all sinks. Nil sinks are
// skipped.
func NewFanout(sinks ...Transport) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Start starts every sink, stopping the ones already started if any fails.
func (f *Fanout) Start() error {
	for i, s := range f.sinks {
		if err := s.Start(); err != nil {
			for _, started := range f.sinks[:i] {
				err = multierr.Append(err, started.Stop())
			}
			return err
		}
	}
	return nil
}

// Stop stops every sink and reports all failures.
func (f *Fanout) Stop() error {
	var err error
	for _, s := range f.sinks {
		err = multierr.Append(err, s.Stop())
	}
	return err
}

// Send delivers msg to every sink, even after one of them fails.
func (f *Fanout) Send(msg midi.Message) error {
	var err error
	for _, s := range f.sinks {
		err = multierr.Append(err, s.Send(msg))
	}
	return err
}

func (f *Fanout) String() string {
	if len(f.sinks) == 0 {
		return "none"
	}
	s := f.sinks[0].String()
	for _, sink := range f.sinks[1:] {
		s += ", " + sink.String()
	}
	return s
}

// Switch is a slot whose transport can be replaced while running.
type Switch struct {
	mu      sync.Mutex
	current Transport
}

// NewSwitch returns an empty switch. Sends fail with ErrNotStarted until Set
// installs a transport.
func NewSwitch() *Switch {
	return &Switch{}
}

// Set stops the current transport, starts t and makes it current. A nil t
// leaves the switch empty.
func (s *Switch) Set(t Transport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.current != nil {
		err = s.current.Stop()
		s.current = nil
	}
	if t == nil {
		return err
	}
	if startErr := t.Start(); startErr != nil {
		return multierr.Append(err, startErr)
	}
	s.current = t
	return err
}

// Current returns the installed transport, or nil.
func (s *Switch) Current() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Start is a no-op; transports are started by Set.
func (s *Switch) Start() error { return nil }

// Stop stops and removes the current transport.
func (s *Switch) Stop() error {
	return s.Set(nil)
}

func (s *Switch) Send(msg midi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNotStarted
	}
	return s.current.Send(msg)
}

func (s *Switch) String() string {
	if t := s.Current(); t != nil {
		return t.String()
	}
	return "not connected"
}

// Monitor reports every message to a callback. It never fails.
type Monitor struct {
	fn func(msg midi.Message)
}

// NewMonitor returns a transport that calls fn for each message.
func NewMonitor(fn func(msg midi.Message)) *Monitor {
	return &Monitor{fn: fn}
}

func (m *Monitor) Start() error { return nil }
func (m *Monitor) Stop() error { return nil }

func (m *Monitor) Send(msg midi.Message) error {
	if m.fn != nil {
		m.fn(msg)
	}
	return nil
}

func (m *Monitor) String() string { return "monitor" }
