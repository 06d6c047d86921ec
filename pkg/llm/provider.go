// Package llm adapts hosted language models to a single streaming interface
// with tool calling.
package llm

import (
	"context"
	"encoding/json"

	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/tidwall/sjson"
)

const (
	// DefaultMaxSteps bounds the number of model turns per request.
	DefaultMaxSteps = 5
	// DefaultMaxTokens bounds the output of one model turn.
	DefaultMaxTokens = 2048
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one conversation turn in plain text.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Executor runs a tool call issued by the model.
type Executor interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (output json.RawMessage, err error)
}

// Request is everything a provider needs to answer one chat request.
type Request struct {
	System    string
	Messages  []Message
	Tools     []tools.Definition
	Executor  Executor
	MaxSteps  int
	MaxTokens int
}

// EventType discriminates Event.
type EventType string

const (
	EventTextDelta  EventType = "text-delta"
	EventToolCall   EventType = "tool-call"
	EventToolResult EventType = "tool-result"
	EventStepFinish EventType = "step-finish"
)

// Event is one item produced by a provider stream.
type Event struct {
	Type       EventType
	Text       string
	ToolCallID string
	ToolName   string
	Input      json.RawMessage
	Output     json.RawMessage
}

// Provider streams a model answer as Events. Stream must not close out; the
// caller closes it after Stream returns.
type Provider interface {
	Name() (name string)
	Stream(ctx context.Context, req Request, out chan<- Event) (err error)
}

// Emit sends an event unless the context ends first.
func Emit(ctx context.Context, out chan<- Event, ev Event) (err error) {
	select {
	case out <- ev:
		return err
	case <-ctx.Done():
		err = ctx.Err()
		return err
	}
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// session is one provider conversation. step runs a single model turn,
// streaming its text and returning the tool calls it made. respond feeds the
// tool outputs back for the next turn.
type session interface {
	step(ctx context.Context, out chan<- Event) (calls []ToolCall, err error)
	respond(calls []ToolCall, outputs []json.RawMessage)
}

// runSteps drives a session until a turn makes no tool calls or the step
// budget runs out. Tool calls run sequentially in model order.
func runSteps(ctx context.Context, s session, req Request, out chan<- Event) (err error) {
	maxSteps := req.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	for i := 0; i < maxSteps; i++ {
		var calls []ToolCall
		calls, err = s.step(ctx, out)
		if err != nil {
			return err
		}

		outputs := make([]json.RawMessage, 0, len(calls))
		for _, call := range calls {
			err = Emit(ctx, out, Event{Type: EventToolCall, ToolCallID: call.ID, ToolName: call.Name, Input: call.Input})
			if err != nil {
				return err
			}

			output := execute(ctx, req.Executor, call)
			outputs = append(outputs, output)

			err = Emit(ctx, out, Event{Type: EventToolResult, ToolCallID: call.ID, ToolName: call.Name, Output: output})
			if err != nil {
				return err
			}
		}

		err = Emit(ctx, out, Event{Type: EventStepFinish})
		if err != nil {
			return err
		}

		if len(calls) == 0 {
			return err
		}

		s.respond(calls, outputs)
	}

	return err
}

// execute runs one call. Failures are reported to the model as an error object.
func execute(ctx context.Context, executor Executor, call ToolCall) (output json.RawMessage) {
	if executor == nil {
		output = errorOutput("no tools available")
		return output
	}

	result, err := executor.Invoke(ctx, call.Name, call.Input)
	if err != nil {
		output = errorOutput(err.Error())
		return output
	}

	output = result
	return output
}

func errorOutput(msg string) (output json.RawMessage) {
	raw, err := sjson.SetBytes([]byte(`{}`), "error", msg)
	if err != nil {
		output = json.RawMessage(`{"error":"tool failed"}`)
		return output
	}
	output = raw
	return output
}

// objectArgs returns raw, or an empty object when raw is absent.
func objectArgs(raw json.RawMessage) (args json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		args = json.RawMessage(`{}`)
		return args
	}
	args = raw
	return args
}
