package transport

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarterNote = 960
	recordBPM           = 120.0
)

type recordedEvent struct {
	at  time.Duration
	msg midi.Message
}

// Recorder captures messages with their arrival time and writes them to a
// Standard MIDI File when stopped.
type Recorder struct {
	mu      sync.Mutex
	path    string
	now     func() time.Time
	start   time.Time
	events  []recordedEvent
	started bool
}

// NewRecorder returns a recorder that writes to path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path, now: time.Now}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return fmt.Errorf("no file path set")
	}
	r.start = r.now()
	r.events = nil
	r.started = true
	return nil
}

func (r *Recorder) Send(msg midi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}
	// The caller may reuse msg's backing array.
	cp := make(midi.Message, len(msg))
	copy(cp, msg)
	r.events = append(r.events, recordedEvent{at: r.now().Sub(r.start), msg: cp})
	return nil
}

// Stop writes the recording. Stopping an idle recorder does nothing.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}
	r.started = false
	return r.write()
}

func (r *Recorder) write() error {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	// Track 0: Tempo track
	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(recordBPM))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return fmt.Errorf("error adding tempo track: %w", err)
	}

	var track smf.Track
	var lastTick uint32
	for _, ev := range r.events {
		tick := durationToTicks(ev.at)
		if tick < lastTick {
			tick = lastTick
		}
		track.Add(tick-lastTick, ev.msg)
		lastTick = tick
	}
	track.Close(0)
	if err := sm.Add(track); err != nil {
		return fmt.Errorf("error adding event track: %w", err)
	}

	if err := sm.WriteFile(r.path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

func (r *Recorder) String() string { return "recording " + r.path }

func durationToTicks(d time.Duration) uint32 {
	if d < 0 {
		return 0
	}
	beats := d.Seconds() * recordBPM / 60
	return uint32(beats * ticksPerQuarterNote)
}
