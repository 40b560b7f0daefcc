// Package jsonx converts between typed values and dynamic JSON maps.
package jsonx

import json "github.com/goccy/go-json"

// ToDynamicJSON converts any Go value to a dynamic JSON object
// represented as a map[string]any, by way of a marshal/unmarshal round
// trip. Introspection output uses this to turn schema objects into
// plain maps.
func ToDynamicJSON(val any) (map[string]any, error) {
	result := make(map[string]any)
	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// FromDynamicJSON decodes a dynamic JSON map into dst, which must be a
// pointer.
func FromDynamicJSON(src map[string]any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
