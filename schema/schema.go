package schema

import (
	"fmt"
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Values is a validated, coerced parameter map keyed by public field
// name.
type Values map[string]any

// Row is one record of transformed provider data keyed by public field
// name.
type Row map[string]any

// Schema is a named, ordered collection of field descriptors. Field order
// is declaration order and is preserved through cloning and merging.
type Schema struct {
	name        string
	description string
	fields      *orderedmap.OrderedMap[string, Field]
	extra       map[string]any
}

// New builds an empty schema.
func New(name, description string) *Schema {
	return &Schema{
		name:        name,
		description: description,
		fields:      orderedmap.New[string, Field](),
	}
}

// Build assembles a schema from a field list, panicking on declaration
// mistakes. Intended for provider packages declaring schemas at init.
func Build(name, description string, fields ...Field) *Schema {
	s := New(name, description)
	for _, f := range fields {
		if err := s.Add(f); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *Schema) Name() string        { return s.name }
func (s *Schema) Description() string { return s.description }
func (s *Schema) Len() int            { return s.fields.Len() }

// SetExtra attaches free-form schema-level hints carried into
// introspection output.
func (s *Schema) SetExtra(key string, value any) {
	if s.extra == nil {
		s.extra = make(map[string]any)
	}
	s.extra[key] = value
}

// Extra returns the schema-level hints map, possibly nil.
func (s *Schema) Extra() map[string]any { return s.extra }

// Add appends a field. It rejects duplicates and names containing the
// nested-alias separator, which is reserved for the flatten encoding.
func (s *Schema) Add(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("schema %s: field name cannot be empty", s.name)
	}
	if strings.Contains(f.Name, Separator) {
		return fmt.Errorf("schema %s: field name %q contains reserved separator %q", s.name, f.Name, Separator)
	}
	if _, exists := s.fields.Get(f.Name); exists {
		return fmt.Errorf("schema %s: duplicate field %q", s.name, f.Name)
	}
	s.fields.Set(f.Name, f)
	return nil
}

// Set inserts or replaces a field without the duplicate check. Used by
// the interface builder when merging.
func (s *Schema) Set(f Field) {
	s.fields.Set(f.Name, f)
}

// Field returns the descriptor for name.
func (s *Schema) Field(name string) (Field, bool) {
	return s.fields.Get(name)
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields.Get(name)
	return ok
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, 0, s.fields.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Fields iterates the descriptors in declaration order.
func (s *Schema) Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Value) {
				return
			}
		}
	}
}

// Clone returns a deep copy sharing no mutable state with s.
func (s *Schema) Clone() *Schema {
	out := New(s.name, s.description)
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.fields.Set(pair.Key, pair.Value)
	}
	if s.extra != nil {
		out.extra = make(map[string]any, len(s.extra))
		for k, v := range s.extra {
			out.extra[k] = v
		}
	}
	return out
}

// Rename returns a copy of s under a new name and description.
func (s *Schema) Rename(name, description string) *Schema {
	out := s.Clone()
	out.name = name
	out.description = description
	return out
}

// Validate checks raw against the schema: unknown names are an error,
// required fields must be present, defaults fill in omissions, and every
// value is coerced to its canonical representation. The returned error
// names the offending field path.
func (s *Schema) Validate(raw map[string]any) (Values, error) {
	for name := range raw {
		if !s.Has(name) {
			return nil, &FieldError{Schema: s.name, Path: name, Err: fmt.Errorf("unknown field")}
		}
	}

	out := make(Values, s.fields.Len())
	for pair := s.fields.Oldest(); pair != nil; pair = pair.Next() {
		f := pair.Value
		v, present := raw[f.Name]
		if !present {
			if f.Required() {
				return nil, &FieldError{Schema: s.name, Path: f.Name, Err: fmt.Errorf("required field is missing")}
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		coerced, err := f.Type.Coerce(v)
		if err != nil {
			return nil, &FieldError{Schema: s.name, Path: f.Name, Err: err}
		}
		out[f.Name] = coerced
	}
	return out, nil
}

// FieldError attributes a validation failure to one field path within a
// named schema.
type FieldError struct {
	Schema string
	Path   string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Schema, e.Path, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
