// Package audio provides a small built-in tone generator that can stand in
// for an external MIDI device.
package audio

import (
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/icco/midikeys/internal/encoder"
	"github.com/icco/midikeys/internal/state"
	"github.com/icco/midikeys/internal/transport"
	"gitlab.com/gomidi/midi/v2"
)

const (
	sampleRate   = 44100
	channelCount = 2 // stereo
	bitDepth     = 2 // 16-bit
	frameSize    = channelCount * bitDepth

	maxVoices    = 64
	voiceGain    = 0.2
	masterVolume = 0.3
	attackStep   = 0.001
	releaseDecay = 0.9995
	silence      = 0.001
)

// WaveType is an oscillator shape. Program changes cycle through them.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
	numWaveTypes
)

func waveForProgram(program uint8) WaveType {
	return WaveType(program % uint8(numWaveTypes))
}

// oscillate returns the wave's amplitude at phase in [0,1).
func (w WaveType) oscillate(phase float64) float64 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 0.8
		}
		return -0.8
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// voice is one sounding note.
type voice struct {
	note      uint8
	channel   uint8
	velocity  uint8
	step      float64 // phase increment per sample
	phase     float64
	envelope  float64
	order     uint64 // trigger sequence, lowest is oldest
	releasing bool
	active    bool
}

func (v *voice) trigger(channel, note, velocity uint8, order uint64) {
	*v = voice{
		note:     note,
		channel:  channel,
		velocity: velocity,
		step:     noteFrequency(note) / sampleRate,
		order:    order,
		active:   true,
	}
}

// next renders one sample with wave w and advances the voice.
func (v *voice) next(w WaveType) float64 {
	out := w.oscillate(v.phase) * float64(v.velocity) / 127 * v.envelope * voiceGain

	v.phase += v.step
	if v.phase >= 1 {
		v.phase--
	}

	switch {
	case v.releasing:
		v.envelope *= releaseDecay
		if v.envelope < silence {
			v.active = false
		}
	case v.envelope < 1:
		v.envelope = math.Min(1, v.envelope+attackStep)
	}
	return out
}

// Synth is a polyphonic tone generator that plays the messages sent to it.
type Synth struct {
	mu        sync.Mutex
	player    *oto.Player
	voices    []*voice
	waveTypes [state.NumChannels]WaveType
	triggers  uint64
	running   bool
}

var _ transport.Transport = (*Synth)(nil)

// oto allows one context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if otoErr == nil {
			<-ready
		}
	})
	return otoCtx, otoErr
}

// NewSynth returns an idle synth. Audio output begins on Start.
func NewSynth() *Synth {
	return &Synth{}
}

// Start opens the audio device and begins streaming.
func (s *Synth) Start() error {
	ctx, err := audioContext()
	if err != nil {
		return fmt.Errorf("failed to initialize audio: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.player == nil {
		s.player = ctx.NewPlayer(&synthReader{synth: s})
	}
	s.player.Play()
	s.running = true
	return nil
}

// Stop silences every voice and pauses the stream.
func (s *Synth) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	for _, v := range s.voices {
		v.active = false
	}
	if s.player != nil {
		s.player.Pause()
	}
	s.running = false
	return nil
}

// Send plays msg. Note on, note off, program change and all-notes-off are
// understood; other messages are ignored.
func (s *Synth) Send(msg midi.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return transport.ErrNotStarted
	}
	s.handle(msg)
	return nil
}

func (s *Synth) String() string { return "built-in synth" }

// handle applies msg. The caller holds s.mu.
func (s *Synth) handle(msg midi.Message) {
	var channel, key, velocity, program, controller, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			s.release(channel, key)
			return
		}
		s.triggers++
		s.allocate().trigger(channel, key, velocity, s.triggers)
	case msg.GetNoteOff(&channel, &key, &velocity):
		s.release(channel, key)
	case msg.GetProgramChange(&channel, &program):
		s.waveTypes[channel%state.NumChannels] = waveForProgram(program)
	case msg.GetControlChange(&channel, &controller, &value):
		if controller == encoder.AllNotesOff {
			for _, v := range s.voices {
				if v.active && v.channel == channel {
					v.releasing = true
				}
			}
		}
	}
}

// allocate reuses an idle voice, grows the pool, or steals the oldest.
func (s *Synth) allocate() *voice {
	for _, v := range s.voices {
		if !v.active {
			return v
		}
	}
	if len(s.voices) < maxVoices {
		v := &voice{}
		s.voices = append(s.voices, v)
		return v
	}
	oldest := s.voices[0]
	for _, v := range s.voices[1:] {
		if v.order < oldest.order {
			oldest = v
		}
	}
	return oldest
}

func (s *Synth) release(channel, note uint8) {
	for _, v := range s.voices {
		if v.active && !v.releasing && v.note == note && v.channel == channel {
			v.releasing = true
			return
		}
	}
}

// mix renders one mono sample from every active voice.
func (s *Synth) mix() float64 {
	var sample float64
	for _, v := range s.voices {
		if v.active {
			sample += v.next(s.waveTypes[v.channel%state.NumChannels])
		}
	}
	return math.Max(-1, math.Min(1, sample*masterVolume))
}

// synthReader streams the synth's output to oto.
type synthReader struct {
	synth *Synth
}

func (r *synthReader) Read(buf []byte) (int, error) {
	r.synth.mu.Lock()
	defer r.synth.mu.Unlock()

	for i := 0; i+frameSize <= len(buf); i += frameSize {
		pcm := int16(r.synth.mix() * 32767)
		lo, hi := byte(pcm), byte(pcm>>8)
		buf[i], buf[i+1] = lo, hi   // left
		buf[i+2], buf[i+3] = lo, hi // right
	}
	return len(buf), nil
}

// noteFrequency converts a MIDI note number to Hz, with A4 (69) at 440.
func noteFrequency(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}
