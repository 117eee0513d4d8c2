package tools

import (
	"encoding/json"
	"slices"
	"sort"
)

// JSON schema type names used by tool inputs.
const (
	TypeObject  = "object"
	TypeString  = "string"
	TypeInteger = "integer"
)

// Property describes one tool input parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Schema is the JSON schema of a tool's input object.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// ObjectSchema returns an object schema over props with the given required
// parameter names.
func ObjectSchema(props map[string]Property, required ...string) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	return Schema{
		Type:       TypeObject,
		Properties: props,
		Required:   required,
	}
}

// IsRequired reports whether name is listed as required.
func (s Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}

// PropertyNames returns the property names in lexical order.
func (s Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalRaw returns the schema as JSON.
func (s Schema) MarshalRaw() (json.RawMessage, error) {
	return json.Marshal(s)
}

func (s Schema) clone() Schema {
	props := make(map[string]Property, len(s.Properties))
	for k, v := range s.Properties {
		props[k] = v
	}
	return Schema{
		Type:       s.Type,
		Properties: props,
		Required:   slices.Clone(s.Required),
	}
}
