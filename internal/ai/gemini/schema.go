package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"

	"github.com/worxstance/worxstance/internal/ai"
)

var genaiTypes = map[ai.Type]genai.Type{
	ai.TypeObject:  genai.TypeObject,
	ai.TypeArray:   genai.TypeArray,
	ai.TypeString:  genai.TypeString,
	ai.TypeNumber:  genai.TypeNumber,
	ai.TypeInteger: genai.TypeInteger,
	ai.TypeBoolean: genai.TypeBoolean,
}

func toGenaiSchema(s *ai.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

// schemaInstruction spells the schema out for requests that cannot use JSON mode.
func schemaInstruction(s *ai.Schema) (string, error) {
	doc, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal response schema: %w", err)
	}
	return "Respond with ONLY a JSON object, no commentary before or after it, matching this JSON Schema:\n" + string(doc), nil
}

// parseStructured extracts the JSON object from raw and validates it against the schema.
func parseStructured(raw string, s *ai.Schema) (map[string]any, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("gemini response contains no JSON object")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.JSONSchema()),
		gojsonschema.NewStringLoader(cleaned),
	)
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("gemini response does not match schema: %s", strings.Join(problems, "; "))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return data, nil
}

// extractJSON strips code fences and any prose around the outermost JSON object.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(raw[start : end+1])
}
