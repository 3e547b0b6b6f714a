package agent

import (
	"context"

	"github.com/sqltoolkit/mysql-agent/internal/llm/openai"
)

// Tool is a capability exposed to the model runtime: a name, a description
// for model context, a JSON Schema for parameters, and an executor.
type Tool interface {
	Name() string
	Description() string
	InputSchema() *Schema
	Execute(ctx context.Context, params map[string]any) (string, error)
}

// Schema is the declared parameter shape of a tool, following the JSON
// Schema vocabulary the model runtime expects.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Default     any                `json:"default,omitempty"`
}

// NewObjectSchema creates an object schema with the given properties.
func NewObjectSchema(properties map[string]*Schema, required []string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// NewStringSchema creates a string schema.
func NewStringSchema(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// NewBooleanSchema creates a boolean schema with a default.
func NewBooleanSchema(description string, def bool) *Schema {
	return &Schema{Type: "boolean", Description: description, Default: def}
}

// toFunctionDef converts a tool declaration to the wire format.
func toFunctionDef(t Tool) openai.Tool {
	def := openai.Tool{
		Type: "function",
		Function: openai.FunctionDef{
			Name:        t.Name(),
			Description: t.Description(),
		},
	}

	schema := t.InputSchema()
	if schema == nil {
		schema = NewObjectSchema(nil, nil)
	}
	params := map[string]any{"type": schema.Type}
	if schema.Properties != nil {
		props := make(map[string]any, len(schema.Properties))
		for key, p := range schema.Properties {
			prop := map[string]any{"type": p.Type}
			if p.Description != "" {
				prop["description"] = p.Description
			}
			if p.Default != nil {
				prop["default"] = p.Default
			}
			props[key] = prop
		}
		params["properties"] = props
	}
	if len(schema.Required) > 0 {
		params["required"] = schema.Required
	}
	def.Function.Parameters = params

	return def
}
