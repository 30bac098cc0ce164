package ai

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema describes the structured reply expected from a model. It is the subset of
// JSON Schema both Gemini and the local validator understand.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	Items       *Schema
	Required    []string
	Enum        []string
}

// JSONSchema renders the schema as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return map[string]any{}
	}

	doc := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		doc["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		doc["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.JSONSchema()
		}
		doc["properties"] = props
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	if s.Items != nil {
		doc["items"] = s.Items.JSONSchema()
	}
	return doc
}

// Request is a single structured-completion call.
type Request struct {
	Prompt            string
	SystemInstruction string
	Temperature       *float32
	// Schema asks for a JSON reply matching it. Nil means free text.
	Schema *Schema
	// WebSearch lets the model ground its reply in web search results.
	WebSearch bool
}

type Response struct {
	Text string
	// JSON holds the decoded reply when the request carried a schema.
	JSON map[string]any
}

// Decode copies the structured reply into target using its json tags.
func (r *Response) Decode(target any) error {
	if r == nil || r.JSON == nil {
		return fmt.Errorf("response carries no structured data")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(r.JSON); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	return nil
}

// Completer produces a completion for a request. Implementations own retries.
type Completer interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

func Temperature(v float32) *float32 {
	return &v
}
