package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
	"google.golang.org/genai"
)

// GeminiModel is the default Gemini model.
const GeminiModel = "gemini-2.5-flash-lite"

// Gemini streams answers from the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini creates a Gemini provider. baseURL overrides the API endpoint and
// may be empty.
func NewGemini(ctx context.Context, apiKey, model, baseURL string, logger *slog.Logger) (provider *Gemini, err error) {
	if apiKey == "" {
		err = errors.Wrap(ErrMissingAPIKey, "gemini")
		return provider, err
	}

	if model == "" {
		model = GeminiModel
	}

	if logger == nil {
		logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	var client *genai.Client
	client, err = genai.NewClient(ctx, cc)
	if err != nil {
		err = errors.Wrap(err, "failed to create gemini client")
		return provider, err
	}

	provider = &Gemini{
		client: client,
		model:  model,
		logger: logger,
	}

	return provider, err
}

// Name returns "gemini".
func (g *Gemini) Name() (name string) {
	name = "gemini"
	return name
}

// Stream runs the tool loop against GenerateContentStream.
func (g *Gemini) Stream(ctx context.Context, req Request, out chan<- Event) (err error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens), //nolint:gosec // bounded by settings validation
	}

	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if len(req.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: geminiFunctions(req.Tools)}}
	}

	s := &geminiSession{
		models:   g.client.Models,
		model:    g.model,
		config:   config,
		contents: geminiContents(req.Messages),
		logger:   g.logger,
	}

	err = runSteps(ctx, s, req, out)
	if err != nil {
		err = errors.Wrap(err, "gemini stream failed")
		return err
	}

	return err
}

type geminiSession struct {
	models   *genai.Models
	model    string
	config   *genai.GenerateContentConfig
	contents []*genai.Content
	logger   *slog.Logger
}

func (s *geminiSession) step(ctx context.Context, out chan<- Event) (calls []ToolCall, err error) {
	var text strings.Builder
	var callParts []*genai.Part

	for resp, streamErr := range s.models.GenerateContentStream(ctx, s.model, s.contents, s.config) {
		if streamErr != nil {
			err = streamErr
			return calls, err
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}

		for _, part := range resp.Candidates[0].Content.Parts {
			switch {
			case part.FunctionCall != nil:
				callParts = append(callParts, part)
				calls = append(calls, geminiToolCall(part.FunctionCall))
			case part.Text != "" && !part.Thought:
				text.WriteString(part.Text)
				err = Emit(ctx, out, Event{Type: EventTextDelta, Text: part.Text})
				if err != nil {
					return calls, err
				}
			}
		}
	}

	parts := make([]*genai.Part, 0, len(callParts)+1)
	if text.Len() > 0 {
		parts = append(parts, genai.NewPartFromText(text.String()))
	}
	parts = append(parts, callParts...)

	if len(parts) > 0 {
		s.contents = append(s.contents, genai.NewContentFromParts(parts, genai.RoleModel))
	}

	s.logger.Debug("gemini step finished", "model", s.model, "tool_calls", len(calls), "text_bytes", text.Len())

	return calls, err
}

func (s *geminiSession) respond(calls []ToolCall, outputs []json.RawMessage) {
	parts := make([]*genai.Part, 0, len(calls))
	for i, call := range calls {
		part := genai.NewPartFromFunctionResponse(call.Name, responseMap(outputs[i]))
		part.FunctionResponse.ID = call.ID
		parts = append(parts, part)
	}
	s.contents = append(s.contents, genai.NewContentFromParts(parts, genai.RoleUser))
}

// geminiToolCall converts a function call. Gemini may omit call IDs.
func geminiToolCall(fc *genai.FunctionCall) (call ToolCall) {
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}

	input := json.RawMessage(`{}`)
	if len(fc.Args) > 0 {
		raw, err := json.Marshal(fc.Args)
		if err == nil {
			input = raw
		}
	}

	call = ToolCall{ID: id, Name: fc.Name, Input: input}
	return call
}

// responseMap converts tool output into the object form function responses require.
func responseMap(output json.RawMessage) (m map[string]any) {
	err := json.Unmarshal(output, &m)
	if err != nil || m == nil {
		m = map[string]any{"output": string(output)}
	}
	return m
}

// geminiContents converts the conversation. Gemini calls the assistant "model"
// and rejects empty parts.
func geminiContents(messages []Message) (contents []*genai.Content) {
	contents = make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}

		switch msg.Role {
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}
	return contents
}

// geminiFunctions declares the tools without parameter schemas. Every tool
// takes no arguments, and Gemini rejects OBJECT schemas with no properties.
func geminiFunctions(defs []tools.Definition) (decls []*genai.FunctionDeclaration) {
	decls = make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        string(def.Name),
			Description: def.Description,
		})
	}
	return decls
}
