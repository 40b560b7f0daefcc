// Package schema holds the declarative field model shared by every
// provider: named fields with semantic types, defaults, descriptions and
// provider hints, collected into ordered schemas. Schemas describe data,
// they never fetch it.
package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/shopspring/decimal"
)

// Kind is the semantic type of a field value.
type Kind uint8

const (
	Invalid Kind = iota
	String
	Int
	Float
	Bool
	Date
	DateTime
	Decimal
	Enum
	List
	Object
	Union
)

var kindNames = map[Kind]string{
	Invalid:  "invalid",
	String:   "string",
	Int:      "int",
	Float:    "float",
	Bool:     "bool",
	Date:     "date",
	DateTime: "datetime",
	Decimal:  "decimal",
	Enum:     "enum",
	List:     "list",
	Object:   "object",
	Union:    "union",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// FieldType is the full semantic type of a field: a kind plus the kind's
// payload (element type for lists, choices for enums, member schemas for
// objects, alternatives for unions) and nullability.
type FieldType struct {
	Kind     Kind
	Elem     *FieldType  // List element type
	Choices  []string    // Enum members
	Members  []FieldType // Union alternatives
	Obj      *Schema     // Object shape
	Nullable bool
}

func (t FieldType) String() string {
	switch t.Kind {
	case List:
		if t.Elem != nil {
			return "list[" + t.Elem.String() + "]"
		}
		return "list"
	case Enum:
		return "enum{" + strings.Join(t.Choices, ",") + "}"
	case Union:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return "union(" + strings.Join(parts, "|") + ")"
	case Object:
		if t.Obj != nil {
			return "object[" + t.Obj.Name() + "]"
		}
		return "object"
	default:
		return t.Kind.String()
	}
}

// Type constructors, used by providers when declaring schemas.

func StringType() FieldType   { return FieldType{Kind: String} }
func IntType() FieldType      { return FieldType{Kind: Int} }
func FloatType() FieldType    { return FieldType{Kind: Float} }
func BoolType() FieldType     { return FieldType{Kind: Bool} }
func DateType() FieldType     { return FieldType{Kind: Date} }
func DateTimeType() FieldType { return FieldType{Kind: DateTime} }
func DecimalType() FieldType  { return FieldType{Kind: Decimal} }

func EnumType(choices ...string) FieldType {
	return FieldType{Kind: Enum, Choices: choices}
}

func ListOf(elem FieldType) FieldType {
	return FieldType{Kind: List, Elem: &elem}
}

func ObjectOf(shape *Schema) FieldType {
	return FieldType{Kind: Object, Obj: shape}
}

// Nullable returns a copy of t that also admits nil.
func Nullable(t FieldType) FieldType {
	t.Nullable = true
	return t
}

// UnionOf builds the tagged union of the given alternatives, flattening
// nested unions and dropping duplicates.
func UnionOf(members ...FieldType) FieldType {
	var flat []FieldType
	for _, m := range members {
		if m.Kind == Union {
			flat = append(flat, m.Members...)
			continue
		}
		flat = append(flat, m)
	}
	var uniq []FieldType
	for _, m := range flat {
		dup := slices.ContainsFunc(uniq, func(u FieldType) bool { return u.Equal(m) })
		if !dup {
			uniq = append(uniq, m)
		}
	}
	if len(uniq) == 1 {
		return uniq[0]
	}
	return FieldType{Kind: Union, Members: uniq}
}

// Equal reports structural equality of two field types, ignoring
// nullability. Union membership comparison is order-insensitive.
func (t FieldType) Equal(other FieldType) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case List:
		if (t.Elem == nil) != (other.Elem == nil) {
			return false
		}
		return t.Elem == nil || t.Elem.Equal(*other.Elem)
	case Enum:
		a := slices.Clone(t.Choices)
		b := slices.Clone(other.Choices)
		slices.Sort(a)
		slices.Sort(b)
		return slices.Equal(a, b)
	case Union:
		if len(t.Members) != len(other.Members) {
			return false
		}
		for _, m := range t.Members {
			found := slices.ContainsFunc(other.Members, func(u FieldType) bool { return u.Equal(m) })
			if !found {
				return false
			}
		}
		return true
	case Object:
		if (t.Obj == nil) != (other.Obj == nil) {
			return false
		}
		return t.Obj == nil || t.Obj.Name() == other.Obj.Name()
	default:
		return true
	}
}

// Coerce converts v to the canonical Go representation for t: string
// dates become strfmt values, numeric payloads become decimals where the
// type asks for them, enum membership is enforced. It returns an error
// when v cannot represent a value of t.
func (t FieldType) Coerce(v any) (any, error) {
	if v == nil {
		if t.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("value is required, got null")
	}

	switch t.Kind {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, typeMismatch(t, v)

	case Int:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			if n == float64(int(n)) {
				return int(n), nil
			}
			return nil, fmt.Errorf("expected integer, got %v", n)
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("expected integer, got %q", n)
			}
			return i, nil
		}
		return nil, typeMismatch(t, v)

	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("expected number, got %q", n)
			}
			return f, nil
		}
		return nil, typeMismatch(t, v)

	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", b)
			}
			return parsed, nil
		}
		return nil, typeMismatch(t, v)

	case Date:
		switch d := v.(type) {
		case strfmt.Date:
			return d, nil
		case time.Time:
			return strfmt.Date(d), nil
		case string:
			var parsed strfmt.Date
			if err := parsed.UnmarshalText([]byte(d)); err != nil {
				return nil, fmt.Errorf("expected date (YYYY-MM-DD), got %q", d)
			}
			return parsed, nil
		}
		return nil, typeMismatch(t, v)

	case DateTime:
		switch d := v.(type) {
		case strfmt.DateTime:
			return d, nil
		case time.Time:
			return strfmt.DateTime(d), nil
		case string:
			parsed, err := strfmt.ParseDateTime(d)
			if err != nil {
				return nil, fmt.Errorf("expected datetime (RFC3339), got %q", d)
			}
			return parsed, nil
		}
		return nil, typeMismatch(t, v)

	case Decimal:
		switch n := v.(type) {
		case decimal.Decimal:
			return n, nil
		case float64:
			return decimal.NewFromFloat(n), nil
		case int:
			return decimal.NewFromInt(int64(n)), nil
		case int64:
			return decimal.NewFromInt(n), nil
		case string:
			d, err := decimal.NewFromString(n)
			if err != nil {
				return nil, fmt.Errorf("expected decimal, got %q", n)
			}
			return d, nil
		}
		return nil, typeMismatch(t, v)

	case Enum:
		s, ok := v.(string)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		if !swag.ContainsStrings(t.Choices, s) {
			return nil, fmt.Errorf("%q is not one of %s", s, strings.Join(t.Choices, ", "))
		}
		return s, nil

	case List:
		elem := StringType()
		if t.Elem != nil {
			elem = *t.Elem
		}
		items, ok := v.([]any)
		if !ok {
			// a bare element is accepted as a one-item list
			coerced, err := elem.Coerce(v)
			if err != nil {
				return nil, err
			}
			return []any{coerced}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			coerced, err := elem.Coerce(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = coerced
		}
		return out, nil

	case Object:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		if t.Obj == nil {
			return m, nil
		}
		return t.Obj.Validate(m)

	case Union:
		var firstErr error
		for _, m := range t.Members {
			coerced, err := m.Coerce(v)
			if err == nil {
				return coerced, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr == nil {
			firstErr = typeMismatch(t, v)
		}
		return nil, fmt.Errorf("no union member matched: %w", firstErr)
	}

	return nil, fmt.Errorf("cannot coerce into %s", t)
}

func typeMismatch(t FieldType, v any) error {
	return fmt.Errorf("expected %s, got %T", t, v)
}
