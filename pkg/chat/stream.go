package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-assistant/pkg/llm"
	"github.com/pkg/errors"
	"github.com/tidwall/sjson"
)

// StreamHeader marks a response as a UI message stream.
const StreamHeader = "x-vercel-ai-ui-message-stream"

// StreamWriter writes llm.Events as UI message stream chunks over
// Server-Sent Events. Nothing is written until Begin.
type StreamWriter struct {
	w        http.ResponseWriter
	flusher  http.Flusher
	started  bool
	stepOpen bool
	textID   string
}

// NewStreamWriter wraps a response writer.
func NewStreamWriter(w http.ResponseWriter) (sw *StreamWriter) {
	flusher, _ := w.(http.Flusher)
	sw = &StreamWriter{w: w, flusher: flusher}
	return sw
}

// Started reports whether the status line has been committed.
func (s *StreamWriter) Started() (started bool) {
	started = s.started
	return started
}

// Begin commits a 200 response and writes the start chunk.
func (s *StreamWriter) Begin() (err error) {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set(StreamHeader, "v1")
	s.w.WriteHeader(http.StatusOK)
	s.started = true

	err = s.send("start", "messageId", "msg_"+uuid.NewString())
	return err
}

// Write translates one provider event into chunks.
func (s *StreamWriter) Write(ev llm.Event) (err error) {
	if ev.Type != llm.EventStepFinish && !s.stepOpen {
		err = s.send("start-step")
		if err != nil {
			return err
		}
		s.stepOpen = true
	}

	switch ev.Type {
	case llm.EventTextDelta:
		if s.textID == "" {
			s.textID = "text_" + uuid.NewString()
			err = s.send("text-start", "id", s.textID)
			if err != nil {
				return err
			}
		}
		err = s.send("text-delta", "id", s.textID, "delta", ev.Text)

	case llm.EventToolCall:
		err = s.endText()
		if err != nil {
			return err
		}
		err = s.send("tool-input-available",
			"toolCallId", ev.ToolCallID,
			"toolName", ev.ToolName,
			"input", rawOrEmpty(ev.Input))

	case llm.EventToolResult:
		err = s.send("tool-output-available",
			"toolCallId", ev.ToolCallID,
			"output", rawOrEmpty(ev.Output))

	case llm.EventStepFinish:
		err = s.endStep()

	default:
		err = errors.Errorf("unknown event type %q", ev.Type)
	}

	return err
}

// Error writes an error chunk and terminates the stream.
func (s *StreamWriter) Error(msg string) (err error) {
	err = s.endText()
	if err != nil {
		return err
	}

	err = s.send("error", "errorText", msg)
	if err != nil {
		return err
	}

	err = s.done()
	return err
}

// Finish closes any open step and terminates the stream.
func (s *StreamWriter) Finish() (err error) {
	err = s.endStep()
	if err != nil {
		return err
	}

	err = s.send("finish")
	if err != nil {
		return err
	}

	err = s.done()
	return err
}

func (s *StreamWriter) endText() (err error) {
	if s.textID == "" {
		return err
	}
	err = s.send("text-end", "id", s.textID)
	s.textID = ""
	return err
}

func (s *StreamWriter) endStep() (err error) {
	if !s.stepOpen {
		return err
	}

	err = s.endText()
	if err != nil {
		return err
	}

	err = s.send("finish-step")
	s.stepOpen = false
	return err
}

// send encodes a chunk from alternating key/value pairs. json.RawMessage
// values are spliced in unchanged.
func (s *StreamWriter) send(chunkType string, pairs ...any) (err error) {
	data := []byte(`{}`)
	data, err = sjson.SetBytes(data, "type", chunkType)
	if err != nil {
		err = errors.Wrap(err, "failed to encode chunk")
		return err
	}

	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		switch value := pairs[i+1].(type) {
		case json.RawMessage:
			data, err = sjson.SetRawBytes(data, key, value)
		default:
			data, err = sjson.SetBytes(data, key, value)
		}
		if err != nil {
			err = errors.Wrapf(err, "failed to encode chunk field %s", key)
			return err
		}
	}

	err = s.writeLine(data)
	return err
}

func (s *StreamWriter) done() (err error) {
	err = s.writeLine([]byte("[DONE]"))
	return err
}

func (s *StreamWriter) writeLine(data []byte) (err error) {
	_, err = fmt.Fprintf(s.w, "data: %s\n\n", data)
	if err != nil {
		err = errors.Wrap(err, "failed to write stream chunk")
		return err
	}

	if s.flusher != nil {
		s.flusher.Flush()
	}

	return err
}

func rawOrEmpty(raw json.RawMessage) (out json.RawMessage) {
	if len(raw) == 0 || !json.Valid(raw) {
		out = json.RawMessage(`{}`)
		return out
	}
	out = raw
	return out
}
