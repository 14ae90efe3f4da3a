package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/schedtrace/schedtrace/internal/model"
)

func TestExtractEvent(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected model.Event
		ok       bool
	}{
		{
			name:     "plain record",
			line:     "1200,START,Task1",
			expected: model.Event{Timestamp: 1200, Kind: model.KindStart, Task: "Task1"},
			ok:       true,
		},
		{
			name:     "record with extra field",
			line:     "1500,MISS,Task2,deadline_3",
			expected: model.Event{Timestamp: 1500, Kind: model.KindMiss, Task: "Task2", Extra: "deadline_3"},
			ok:       true,
		},
		{
			name:     "trailing comma, empty extra",
			line:     "10,COMPLETE,T1,",
			expected: model.Event{Timestamp: 10, Kind: model.KindComplete, Task: "T1"},
			ok:       true,
		},
		{
			name:     "record embedded in serial noise",
			line:     "\x00\xffgarbage 900,WDT_PET,WDT,ok trailing",
			expected: model.Event{Timestamp: 900, Kind: model.KindWDTPet, Task: "WDT", Extra: "ok"},
			ok:       true,
		},
		{
			name:     "timestamp glued to preceding text",
			line:     "boot42,RELEASE,T3",
			expected: model.Event{Timestamp: 42, Kind: model.KindRelease, Task: "T3"},
			ok:       true,
		},
		{
			name:     "record after failed earlier candidate",
			line:     "7,FOO,123,START,T1",
			expected: model.Event{Timestamp: 123, Kind: model.KindStart, Task: "T1"},
			ok:       true,
		},
		{name: "empty line", line: "", ok: false},
		{name: "plotter output", line: "0 1 0", ok: false},
		{name: "unknown kind", line: "100,PAUSE,T1", ok: false},
		{name: "kind not followed by comma", line: "100,STARTED,T1", ok: false},
		{name: "missing task", line: "100,START,", ok: false},
		{name: "no timestamp", line: "START,T1", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEvent([]byte(tt.line))
			if ok != tt.ok {
				t.Fatalf("ExtractEvent(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.expected {
				t.Errorf("ExtractEvent(%q) = %+v, want %+v", tt.line, got, tt.expected)
			}
		})
	}
}

func TestSerialParser_Parse(t *testing.T) {
	input := strings.Join([]string{
		"RTS demo booting...",
		"0,INFO,Supervisor,init",
		"100,RELEASE,Task1",
		"105,START,Task1",
		"not an event line",
		"160,COMPLETE,Task1",
		"500,WDT_PET,WDT",
		"",
	}, "\n")

	events := collect(t, input)

	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d: %+v", len(events), events)
	}
	if events[0].Kind != model.KindInfo || events[0].Task != "Supervisor" {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[3].Kind != model.KindComplete || events[3].Timestamp != 160 {
		t.Errorf("Unexpected complete event: %+v", events[3])
	}
}

func TestSerialParser_NoTrailingNewline(t *testing.T) {
	events := collect(t, "100,START,Task1\n200,COMPLETE,Task1")
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
}

func TestSerialParser_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewSerialParser(DefaultConfig())
	out := make(chan model.Event, 1)
	err := p.Parse(ctx, strings.NewReader("100,START,Task1\n"), out)
	if err != ErrContextCanceled {
		t.Errorf("Expected ErrContextCanceled, got %v", err)
	}
}

func collect(t *testing.T, input string) []model.Event {
	t.Helper()

	p := NewSerialParser(DefaultConfig())
	out := make(chan model.Event, 64)
	done := make(chan []model.Event)

	go func() {
		var events []model.Event
		for e := range out {
			events = append(events, e)
		}
		done <- events
	}()

	if err := p.Parse(context.Background(), strings.NewReader(input), out); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	close(out)
	return <-done
}
