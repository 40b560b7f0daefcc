package schema

// Hints carries provider-local metadata attached to a field. The core
// only interprets MultipleItemsAllowed (list collapsing at the router);
// the rest travels untouched into introspection output.
type Hints struct {
	Choices              []string `json:"choices,omitempty" yaml:"choices,omitempty"`
	MultipleItemsAllowed bool     `json:"multiple_items_allowed,omitempty" yaml:"multiple_items_allowed,omitempty"`
	UnitMeasurement      string   `json:"unit_measurement,omitempty" yaml:"unit_measurement,omitempty"`
	FrontendMultiply     float64  `json:"frontend_multiply,omitempty" yaml:"frontend_multiply,omitempty"`
}

// Field is one named descriptor inside a schema. Fields are identified
// by their public snake-case name; Alias, when set, is the name used in
// the provider's wire payload.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Alias       string

	// Default applies when the caller omits the field. A field with no
	// default is required.
	Default    any
	HasDefault bool

	Hints Hints

	// Providers lists which providers accept this field. Populated only
	// on merged schemas produced by the interface builder; empty on
	// per-provider schemas.
	Providers []string
}

// Required reports whether the field must be supplied by the caller.
func (f Field) Required() bool { return !f.HasDefault }

// WireName is the name used when marshalling to the provider payload.
func (f Field) WireName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// NewField builds a required field.
func NewField(name string, t FieldType, description string) Field {
	return Field{Name: name, Type: t, Description: description}
}

// NewFieldDefault builds an optional field with a default value.
func NewFieldDefault(name string, t FieldType, def any, description string) Field {
	return Field{Name: name, Type: t, Default: def, HasDefault: true, Description: description}
}

// WithAlias sets the provider wire name.
func (f Field) WithAlias(alias string) Field {
	f.Alias = alias
	return f
}

// WithHints attaches provider-local hints.
func (f Field) WithHints(h Hints) Field {
	f.Hints = h
	return f
}
