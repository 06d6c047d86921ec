package llm

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nikogura/portfolio-assistant/pkg/tools"
	"github.com/pkg/errors"
)

// ClaudeModel is the default Claude model.
const ClaudeModel = "claude-sonnet-4-20250514"

// Anthropic streams answers from the Claude Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropic creates a Claude provider. baseURL overrides the API endpoint
// and may be empty.
func NewAnthropic(apiKey, model, baseURL string, logger *slog.Logger) (provider *Anthropic, err error) {
	if apiKey == "" {
		err = errors.Wrap(ErrMissingAPIKey, "anthropic")
		return provider, err
	}

	if model == "" {
		model = ClaudeModel
	}

	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	provider = &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger,
	}

	return provider, err
}

// Name returns "anthropic".
func (a *Anthropic) Name() (name string) {
	name = "anthropic"
	return name
}

// Stream runs the tool loop against the streaming Messages API.
func (a *Anthropic) Stream(ctx context.Context, req Request, out chan<- Event) (err error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
	}

	if len(req.Tools) > 0 {
		params.Tools = anthropicTools(req.Tools)
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	s := &anthropicSession{
		messages: a.client.Messages,
		params:   params,
		history:  anthropicMessages(req.Messages),
		logger:   a.logger,
	}

	err = runSteps(ctx, s, req, out)
	if err != nil {
		err = errors.Wrap(err, "anthropic stream failed")
		return err
	}

	return err
}

type anthropicSession struct {
	messages anthropic.MessageService
	params   anthropic.MessageNewParams
	history  []anthropic.MessageParam
	logger   *slog.Logger
}

func (s *anthropicSession) step(ctx context.Context, out chan<- Event) (calls []ToolCall, err error) {
	params := s.params
	params.Messages = s.history

	stream := s.messages.NewStreaming(ctx, params)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()

		err = message.Accumulate(event)
		if err != nil {
			err = errors.Wrap(err, "failed to accumulate stream event")
			return calls, err
		}

		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}

		text, ok := delta.Delta.AsAny().(anthropic.TextDelta)
		if !ok || text.Text == "" {
			continue
		}

		err = Emit(ctx, out, Event{Type: EventTextDelta, Text: text.Text})
		if err != nil {
			return calls, err
		}
	}

	err = stream.Err()
	if err != nil {
		return calls, err
	}

	for _, block := range message.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}
		calls = append(calls, ToolCall{ID: toolUse.ID, Name: toolUse.Name, Input: objectArgs(toolUse.Input)})
	}

	if len(message.Content) > 0 {
		s.history = append(s.history, message.ToParam())
	}

	s.logger.Debug("anthropic step finished", "model", s.params.Model, "tool_calls", len(calls),
		"stop_reason", message.StopReason)

	return calls, err
}

func (s *anthropicSession) respond(calls []ToolCall, outputs []json.RawMessage) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
	for i, call := range calls {
		blocks = append(blocks, anthropic.NewToolResultBlock(call.ID, string(outputs[i]), false))
	}
	s.history = append(s.history, anthropic.NewUserMessage(blocks...))
}

// anthropicMessages converts the conversation, skipping empty turns.
func anthropicMessages(messages []Message) (params []anthropic.MessageParam) {
	params = make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}

		switch msg.Role {
		case RoleUser:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return params
}

func anthropicTools(defs []tools.Definition) (params []anthropic.ToolUnionParam) {
	params = make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        string(def.Name),
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: map[string]any{},
				},
			},
		})
	}
	return params
}
