package controller

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		token string
		want  Event
	}{
		{"ch=3", Event{Kind: EventChannel, Value: 3}},
		{"ch=20", Event{Kind: EventChannel, Value: 20}},
		{"on=60", Event{Kind: EventKeyDown, Value: 60}},
		{"off=60", Event{Kind: EventKeyUp, Value: 60}},
		{"prog=+5", Event{Kind: EventProgramDelta, Value: 5}},
		{"prog=-10", Event{Kind: EventProgramDelta, Value: -10}},
		{"set=42", Event{Kind: EventProgramSet, Value: 42}},
		{"send", Event{Kind: EventProgramSend}},
		{"wait=250ms", Event{Kind: EventWait, Wait: 250 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseEvent(tt.token)
			if err != nil {
				t.Fatalf("ParseEvent(%q): %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseEvent(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseEventErrors(t *testing.T) {
	for _, token := range []string{"", "ch", "ch=x", "prog=5", "set=200", "set=-1", "wait=soon", "wait=-1s", "volume=3"} {
		if _, err := ParseEvent(token); !errors.Is(err, ErrBadEvent) {
			t.Errorf("ParseEvent(%q): expected ErrBadEvent, got %v", token, err)
		}
	}
}

func TestParseScriptAndApply(t *testing.T) {
	events, err := ParseScript("ch=3  prog=+5 send\non=60 wait=1ms off=60")
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	if len(events) != 6 {
		t.Fatalf("Expected 6 events, got %d", len(events))
	}

	out := &recorder{}
	c := New(out)
	for _, ev := range events {
		c.Apply(ev)
	}

	want := [][]byte{
		{0xC3, 5},
		{0xC3, 5},
		{0x93, 60, 64},
		{0x83, 60, 64},
	}
	if len(out.msgs) != len(want) {
		t.Fatalf("Expected %d messages, got %d: %v", len(want), len(out.msgs), out.msgs)
	}
	for i := range want {
		if !bytes.Equal(out.msgs[i], want[i]) {
			t.Errorf("Message %d: expected % X, got % X", i, want[i], out.msgs[i])
		}
	}
}

func TestParseScriptStopsAtFirstError(t *testing.T) {
	if _, err := ParseScript("ch=1 bogus on=60"); !errors.Is(err, ErrBadEvent) {
		t.Errorf("Expected ErrBadEvent, got %v", err)
	}
}

func TestApplyProgramSet(t *testing.T) {
	out := &recorder{}
	c := New(out)
	c.Apply(Event{Kind: EventProgramSet, Value: 99})
	c.Apply(Event{Kind: EventWait, Wait: time.Second})

	if c.Program() != 99 {
		t.Errorf("Program() = %d, want 99", c.Program())
	}
	if len(out.msgs) != 0 {
		t.Errorf("Expected no messages, got %v", out.msgs)
	}
}
