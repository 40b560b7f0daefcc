package schema

import (
	"sort"
	"strings"
)

// Separator joins nested field names when a structured query schema is
// exposed through a flat parameter surface. It is reserved: plain field
// names may not contain it, which makes the encoding lossless.
const Separator = "__"

// Flatten encodes a nested parameter map into a single level, joining
// path segments with Separator. Nested maps are recursed into; every
// other value is kept as-is.
//
//	{"options": {"granularity": "1d"}} => {"options__granularity": "1d"}
func Flatten(nested map[string]any) map[string]any {
	out := make(map[string]any, len(nested))
	flattenInto(out, "", nested)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + Separator + k
		}
		if child, ok := v.(map[string]any); ok && len(child) > 0 {
			flattenInto(out, key, child)
			continue
		}
		out[key] = v
	}
}

// Unflatten reverses Flatten: keys containing Separator are split into
// nested maps. Keys are processed in sorted order so the result is
// deterministic when a prefix collides with a scalar.
func Unflatten(flat map[string]any) map[string]any {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(flat))
	for _, k := range keys {
		segments := strings.Split(k, Separator)
		cursor := out
		for i, seg := range segments {
			if i == len(segments)-1 {
				cursor[seg] = flat[k]
				break
			}
			next, ok := cursor[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cursor[seg] = next
			}
			cursor = next
		}
	}
	return out
}

// FlattenSchema rewrites object-typed fields into top-level fields whose
// names join the object name and the member name with Separator. The
// member descriptors keep their own defaults, descriptions and hints.
// Non-object fields pass through unchanged.
func FlattenSchema(s *Schema) *Schema {
	out := New(s.Name(), s.Description())
	for f := range s.Fields() {
		if f.Type.Kind != Object || f.Type.Obj == nil {
			out.Set(f)
			continue
		}
		for member := range f.Type.Obj.Fields() {
			flatField := member
			flatField.Name = f.Name + Separator + member.Name
			out.Set(flatField)
		}
	}
	if extra := s.Extra(); extra != nil {
		for k, v := range extra {
			out.SetExtra(k, v)
		}
	}
	return out
}
