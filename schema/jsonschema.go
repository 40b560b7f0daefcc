package schema

import (
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ToJSONSchema renders s as a JSON Schema object for introspection and
// API reference output. Field order follows declaration order.
func ToJSONSchema(s *Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Title:       s.Name(),
		Description: s.Description(),
		Type:        "object",
		Properties:  orderedmap.New[string, *jsonschema.Schema](),
	}

	var required []string
	for f := range s.Fields() {
		prop := typeToJSONSchema(f.Type)
		prop.Description = f.Description
		if f.HasDefault && f.Default != nil {
			prop.Default = f.Default
		}
		if len(f.Providers) > 0 {
			if prop.Extras == nil {
				prop.Extras = make(map[string]any)
			}
			prop.Extras["x-providers"] = append([]string(nil), f.Providers...)
		}
		attachHints(prop, f.Hints)
		out.Properties.Set(f.Name, prop)
		if f.Required() {
			required = append(required, f.Name)
		}
	}
	if len(required) > 0 {
		out.Required = required
	}

	if extra := s.Extra(); len(extra) > 0 {
		out.Extras = make(map[string]any, len(extra))
		for k, v := range extra {
			out.Extras[k] = v
		}
	}
	return out
}

func typeToJSONSchema(t FieldType) *jsonschema.Schema {
	prop := &jsonschema.Schema{}
	switch t.Kind {
	case String:
		prop.Type = "string"
	case Int:
		prop.Type = "integer"
	case Float:
		prop.Type = "number"
	case Bool:
		prop.Type = "boolean"
	case Date:
		prop.Type = "string"
		prop.Format = "date"
	case DateTime:
		prop.Type = "string"
		prop.Format = "date-time"
	case Decimal:
		prop.Type = "string"
		prop.Format = "decimal"
	case Enum:
		prop.Type = "string"
		for _, c := range t.Choices {
			prop.Enum = append(prop.Enum, c)
		}
	case List:
		prop.Type = "array"
		if t.Elem != nil {
			prop.Items = typeToJSONSchema(*t.Elem)
		}
	case Object:
		prop.Type = "object"
		if t.Obj != nil {
			nested := ToJSONSchema(t.Obj)
			prop.Properties = nested.Properties
			prop.Required = nested.Required
		}
	case Union:
		for _, m := range t.Members {
			prop.AnyOf = append(prop.AnyOf, typeToJSONSchema(m))
		}
	}
	if t.Nullable && prop.Type != "" {
		// JSON Schema draft 2020 spells nullability as a type union;
		// keep the simple wire-friendly anyOf form instead.
		prop.AnyOf = []*jsonschema.Schema{
			{Type: prop.Type, Format: prop.Format, Enum: prop.Enum, Items: prop.Items},
			{Type: "null"},
		}
		prop.Type = ""
		prop.Format = ""
		prop.Enum = nil
		prop.Items = nil
	}
	return prop
}

func attachHints(prop *jsonschema.Schema, h Hints) {
	if len(h.Choices) == 0 && !h.MultipleItemsAllowed && h.UnitMeasurement == "" && h.FrontendMultiply == 0 {
		return
	}
	if prop.Extras == nil {
		prop.Extras = make(map[string]any)
	}
	if len(h.Choices) > 0 {
		prop.Extras["x-choices"] = append([]string(nil), h.Choices...)
	}
	if h.MultipleItemsAllowed {
		prop.Extras["x-multiple-items-allowed"] = true
	}
	if h.UnitMeasurement != "" {
		prop.Extras["x-unit-measurement"] = strings.ToLower(h.UnitMeasurement)
	}
	if h.FrontendMultiply != 0 {
		prop.Extras["x-frontend-multiply"] = h.FrontendMultiply
	}
}
