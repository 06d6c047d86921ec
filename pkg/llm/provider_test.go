package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/pkg/errors"
)

type recordingExecutor struct {
	calls []string
}

func (r *recordingExecutor) Invoke(_ context.Context, name string, _ json.RawMessage) (output json.RawMessage, err error) {
	r.calls = append(r.calls, name)
	if name == "broken" {
		err = errors.New("tool exploded")
		return output, err
	}
	output = json.RawMessage(fmt.Sprintf(`{"tool":%q}`, name))
	return output, err
}

// scriptedSession replays one list of tool calls per step.
type scriptedSession struct {
	turns     [][]ToolCall
	n         int
	responses [][]json.RawMessage
	failAt    int
}

func (s *scriptedSession) step(ctx context.Context, out chan<- Event) (calls []ToolCall, err error) {
	if s.failAt > 0 && s.n+1 == s.failAt {
		err = errors.New("upstream failed")
		return calls, err
	}

	err = Emit(ctx, out, Event{Type: EventTextDelta, Text: fmt.Sprintf("step %d", s.n)})
	if err != nil {
		return calls, err
	}

	if s.n < len(s.turns) {
		calls = s.turns[s.n]
	}
	s.n++
	return calls, err
}

func (s *scriptedSession) respond(_ []ToolCall, outputs []json.RawMessage) {
	s.responses = append(s.responses, outputs)
}

func collect(t *testing.T, fn func(out chan<- Event) error) (events []Event, err error) {
	t.Helper()
	out := make(chan Event)
	done := make(chan error, 1)

	go func() {
		done <- fn(out)
		close(out)
	}()

	for ev := range out {
		events = append(events, ev)
	}
	err = <-done
	return events, err
}

func countType(events []Event, typ EventType) (n int) {
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestRunStepsToolLoop(t *testing.T) {
	executor := &recordingExecutor{}
	s := &scriptedSession{
		turns: [][]ToolCall{
			{{ID: "1", Name: "getContact"}, {ID: "2", Name: "getSkills"}},
			{},
		},
	}

	events, err := collect(t, func(out chan<- Event) error {
		return runSteps(context.Background(), s, Request{Executor: executor}, out)
	})
	if err != nil {
		t.Fatalf("runSteps failed: %v", err)
	}

	if strings.Join(executor.calls, ",") != "getContact,getSkills" {
		t.Errorf("Expected tools in model order, got %v", executor.calls)
	}

	if countType(events, EventStepFinish) != 2 {
		t.Errorf("Expected 2 step-finish events, got %d", countType(events, EventStepFinish))
	}

	if countType(events, EventToolResult) != 2 {
		t.Errorf("Expected 2 tool results, got %d", countType(events, EventToolResult))
	}

	if len(s.responses) != 1 || string(s.responses[0][0]) != `{"tool":"getContact"}` {
		t.Errorf("Expected tool outputs fed back once, got %v", s.responses)
	}

	// text, call, result, call, result, finish, text, finish
	if events[1].Type != EventToolCall || events[2].Type != EventToolResult {
		t.Errorf("Expected call then result, got %s then %s", events[1].Type, events[2].Type)
	}
}

func TestRunStepsMaxSteps(t *testing.T) {
	call := []ToolCall{{ID: "x", Name: "getContact"}}
	s := &scriptedSession{turns: [][]ToolCall{call, call, call, call}}

	events, err := collect(t, func(out chan<- Event) error {
		return runSteps(context.Background(), s, Request{Executor: &recordingExecutor{}, MaxSteps: 2}, out)
	})
	if err != nil {
		t.Fatalf("runSteps failed: %v", err)
	}

	if s.n != 2 {
		t.Errorf("Expected 2 steps, got %d", s.n)
	}

	if countType(events, EventStepFinish) != 2 {
		t.Errorf("Expected 2 step-finish events, got %d", countType(events, EventStepFinish))
	}
}

func TestRunStepsToolError(t *testing.T) {
	s := &scriptedSession{turns: [][]ToolCall{{{ID: "1", Name: "broken"}}}}

	events, err := collect(t, func(out chan<- Event) error {
		return runSteps(context.Background(), s, Request{Executor: &recordingExecutor{}}, out)
	})
	if err != nil {
		t.Fatalf("runSteps failed: %v", err)
	}

	for _, ev := range events {
		if ev.Type == EventToolResult && string(ev.Output) != `{"error":"tool exploded"}` {
			t.Errorf("Expected error object, got %s", ev.Output)
		}
	}
}

func TestRunStepsProviderError(t *testing.T) {
	s := &scriptedSession{failAt: 1}

	_, err := collect(t, func(out chan<- Event) error {
		return runSteps(context.Background(), s, Request{}, out)
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestEmitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Emit(ctx, make(chan Event), Event{Type: EventTextDelta})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestObjectArgs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "{}"},
		{in: "null", want: "{}"},
		{in: `{"a":1}`, want: `{"a":1}`},
	}

	for _, tt := range tests {
		got := objectArgs(json.RawMessage(tt.in))
		if string(got) != tt.want {
			t.Errorf("objectArgs(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "deadline", err: errors.Wrap(context.DeadlineExceeded, "stream"), want: KindTimeout},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "refused", err: errors.Wrap(syscall.ECONNREFUSED, "dial"), want: KindNetwork},
		{name: "reset", err: &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, want: KindNetwork},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "example.invalid"}, want: KindNetwork},
		{name: "url", err: &url.Error{Op: "Post", URL: "https://x", Err: errors.New("boom")}, want: KindNetwork},
		{name: "message", err: errors.New("Network is unreachable"), want: KindNetwork},
		{name: "url deadline", err: &url.Error{Op: "Post", URL: "https://x", Err: context.DeadlineExceeded}, want: KindTimeout},
		{name: "generic", err: errors.New("quota exceeded"), want: KindGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
