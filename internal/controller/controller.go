// Package controller turns keyboard input events into MIDI messages while
// tracking the channel and per-channel program in a state.Store.
package controller

import (
	"sync"

	"github.com/icco/midikeys/internal/encoder"
	"github.com/icco/midikeys/internal/state"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// DefaultVelocity is used for every note-on and note-off.
const DefaultVelocity = 64

// Input is the set of events an input layer delivers.
type Input interface {
	ChannelSelected(index int) state.Channel
	KeyDown(key int)
	KeyUp(key int)
	ProgramDelta(delta int) state.Program
	ProgramSend()
}

// Sender transmits one encoded message.
type Sender interface {
	Send(msg midi.Message) error
}

// Controller implements Input. Each event is handled atomically.
type Controller struct {
	mu       sync.Mutex
	store    *state.Store
	out      Sender
	velocity int
	log      *zap.Logger
}

var _ Input = (*Controller)(nil)

// Option configures a Controller.
type Option func(*Controller)

// WithVelocity sets the fixed note velocity.
func WithVelocity(v int) Option {
	return func(c *Controller) {
		c.velocity = v
	}
}

// WithLogger sets the logger. Dropped messages are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithStore uses an existing store instead of a fresh one.
func WithStore(s *state.Store) Option {
	return func(c *Controller) {
		c.store = s
	}
}

// New returns a controller sending to out. A nil out drops every message.
func New(out Sender, opts ...Option) *Controller {
	c := &Controller{
		out:      out,
		velocity: DefaultVelocity,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = state.NewStore()
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// ChannelSelected makes index&0x0F the active channel.
func (c *Controller) ChannelSelected(index int) state.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := c.store.SelectChannel(index)
	c.log.Debug("channel selected", zap.Int("index", index), zap.Uint8("channel", uint8(ch)))
	return ch
}

// KeyDown sends a note-on for key on the active channel.
func (c *Controller) KeyDown(key int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transmit(encoder.NoteOn(c.store.Channel(), key, c.velocity))
}

// KeyUp sends a note-off for key on the active channel.
func (c *Controller) KeyUp(key int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transmit(encoder.NoteOff(c.store.Channel(), key, c.velocity))
}

// ProgramDelta moves the active channel's program by delta, clamped to
// [0,127], and sends the resulting program change.
func (c *Controller) ProgramDelta(delta int) state.Program {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.store.AdjustProgram(delta)
	c.transmit(encoder.ProgramChange(c.store.Channel(), p))
	return p
}

// ProgramSend resends the active channel's program.
func (c *Controller) ProgramSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transmit(encoder.ProgramChange(c.store.Channel(), c.store.ActiveProgram()))
}

// ProgramConfirmed records p as the active channel's program without
// sending anything.
func (c *Controller) ProgramConfirmed(p state.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.SetProgram(p)
}

// AllNotesOff silences every channel.
func (c *Controller) AllNotesOff() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for ch := 0; ch < state.NumChannels; ch++ {
		c.transmit(encoder.ControlChange(state.Channel(ch), encoder.AllNotesOff, 0)) //nolint:gosec // ch is bounded by NumChannels
	}
}

// Channel returns the active channel.
func (c *Controller) Channel() state.Channel {
	return c.store.Channel()
}

// Program returns the active channel's program.
func (c *Controller) Program() state.Program {
	return c.store.ActiveProgram()
}

// Programs returns the per-channel program table.
func (c *Controller) Programs() [state.NumChannels]state.Program {
	return c.store.Programs()
}

// transmit hands msg to the output. Failures are dropped; no caller can act
// on them.
func (c *Controller) transmit(msg midi.Message) {
	if c.out == nil {
		c.log.Debug("no output, message dropped", zap.String("msg", encoder.Describe(msg)))
		return
	}
	if err := c.out.Send(msg); err != nil {
		c.log.Debug("message dropped", zap.String("msg", encoder.Describe(msg)), zap.Error(err))
	}
}
