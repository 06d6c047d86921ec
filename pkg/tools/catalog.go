// Package tools exposes the portfolio as a closed set of named, argument-free
// queries that a language model can call mid-conversation.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nikogura/portfolio-assistant/pkg/portfolio"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Name identifies a tool. Names are part of the external contract: the model
// selects tools by these exact strings.
type Name string

const (
	GetContact      Name = "getContact"
	GetPresentation Name = "getPresentation"
	GetProjects     Name = "getProjects"
	GetSkills       Name = "getSkills"
	GetEntryLevel   Name = "getEntryLevel"
	GetResume       Name = "getResume"
)

var (
	// ErrUnknownTool is returned for a name outside the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when tool arguments are not a JSON object.
	ErrInvalidArguments = errors.New("tool arguments must be a JSON object")
)

// Names returns every tool name in catalog order.
func Names() (names []Name) {
	names = []Name{GetProjects, GetPresentation, GetResume, GetContact, GetSkills, GetEntryLevel}
	return names
}

// Parse converts a string into a catalog name.
func Parse(s string) (name Name, err error) {
	for _, n := range Names() {
		if string(n) == s {
			name = n
			return name, err
		}
	}
	err = errors.Wrapf(ErrUnknownTool, "%q", s)
	return name, err
}

// EmptyArgsSchema is the argument schema shared by every tool.
const EmptyArgsSchema = `{"type":"object","properties":{},"additionalProperties":true}`

// Definition describes a tool to a model provider.
type Definition struct {
	Name        Name            `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type handlerFunc func(cfg *portfolio.Config) any

type entry struct {
	description string
	handler     handlerFunc
}

// Catalog binds every Name to a handler over one immutable portfolio.
// It is safe for concurrent use.
type Catalog struct {
	cfg     *portfolio.Config
	entries map[Name]entry
	logger  *slog.Logger
}

// NewCatalog builds the catalog over a normalized copy of cfg. It fails if any
// enumerated name lacks a handler.
func NewCatalog(cfg *portfolio.Config, logger *slog.Logger) (catalog *Catalog, err error) {
	if cfg == nil {
		err = errors.New("portfolio config is required")
		return catalog, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	entries := map[Name]entry{
		GetContact: {
			description: "This tool provides professional contact information and social media profiles.",
			handler:     func(c *portfolio.Config) any { return Contact(c) },
		},
		GetPresentation: {
			description: "This tool provides a comprehensive professional introduction and personal background, suitable for interviews and formal presentations.",
			handler:     func(c *portfolio.Config) any { return Presentation(c) },
		},
		GetProjects: {
			description: "This tool showcases a comprehensive project portfolio, highlighting technical achievements and real-world impact.",
			handler:     func(c *portfolio.Config) any { return Projects(c) },
		},
		GetSkills: {
			description: "This tool provides a comprehensive overview of technical skills, expertise, and professional qualifications.",
			handler:     func(c *portfolio.Config) any { return Skills(c) },
		},
		GetEntryLevel: {
			description: "Provides comprehensive information about current professional experience, career preferences, and professional availability for recruiters and HR professionals.",
			handler:     func(c *portfolio.Config) any { return EntryLevel(c) },
		},
		GetResume: {
			description: "This tool provides the downloadable resume with its title, description, file type, size and download link.",
			handler:     func(c *portfolio.Config) any { return c.Resume },
		},
	}

	for _, name := range Names() {
		if _, ok := entries[name]; !ok {
			err = errors.Errorf("tool %s has no handler", name)
			return catalog, err
		}
	}

	catalog = &Catalog{
		cfg:     portfolio.Normalized(cfg),
		entries: entries,
		logger:  logger,
	}

	return catalog, err
}

// Definitions returns the tool declarations in catalog order.
func (c *Catalog) Definitions() (defs []Definition) {
	defs = make([]Definition, 0, len(c.entries))
	for _, name := range Names() {
		defs = append(defs, Definition{
			Name:        name,
			Description: c.entries[name].description,
			Parameters:  json.RawMessage(EmptyArgsSchema),
		})
	}
	return defs
}

// Call runs a tool and returns its typed result.
func (c *Catalog) Call(name Name) (result any, err error) {
	e, ok := c.entries[name]
	if !ok {
		err = errors.Wrapf(ErrUnknownTool, "%q", name)
		return result, err
	}

	result = e.handler(c.cfg)
	return result, err
}

// Invoke dispatches a model-issued call by string name and returns the JSON result.
// Extra argument keys are ignored.
func (c *Catalog) Invoke(ctx context.Context, name string, args json.RawMessage) (output json.RawMessage, err error) {
	err = ctx.Err()
	if err != nil {
		return output, err
	}

	var toolName Name
	toolName, err = Parse(name)
	if err != nil {
		return output, err
	}

	if len(args) > 0 {
		parsed := gjson.ParseBytes(args)
		if parsed.Type != gjson.Null && !parsed.IsObject() {
			err = errors.Wrapf(ErrInvalidArguments, "%s", name)
			return output, err
		}
	}

	start := time.Now()

	var result any
	result, err = c.Call(toolName)
	if err != nil {
		return output, err
	}

	output, err = json.Marshal(result)
	if err != nil {
		err = errors.Wrapf(err, "failed to encode %s result", name)
		return output, err
	}

	c.logger.Debug("tool invoked", "tool", name, "duration", time.Since(start), "bytes", len(output))

	return output, err
}
