package api

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Warning categories emitted by the build and execute phases.
const (
	WarnEmptyData  = "empty_data"
	WarnTypeUnion  = "type_union"
	WarnHintMerge  = "hint_merge"
	WarnDescMerge  = "description_merge"
	WarnParamDrop  = "param_drop"
	WarnValidation = "validation"
)

// Warning is a non-fatal observation accumulated on the envelope or on
// the built provider interface. Warnings never raise.
type Warning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Category, w.Message)
}

// OBBject is the uniform result envelope returned by every route. It is
// created once per call by the executor and must be treated as read-only
// afterwards.
type OBBject struct {
	// Results holds the transformed data payload: a single row, a slice
	// of rows, or nil when the provider had nothing for the query.
	Results any `json:"results"`

	// Provider names the provider that served the call. Empty when the
	// call failed before a provider was selected.
	Provider string `json:"provider,omitempty"`

	// Warnings accumulated during the call, in occurrence order.
	Warnings []Warning `json:"warnings"`

	// Chart is an opaque visualization payload set by outer layers.
	Chart any `json:"chart,omitempty"`

	// Extra is free-form provenance: resolved parameters, elapsed wall
	// clock time, the run id.
	Extra map[string]any `json:"extra,omitempty"`
}

// IsEmpty reports whether the envelope carries no rows.
func (o *OBBject) IsEmpty() bool {
	if o.Results == nil {
		return true
	}
	rv := reflect.ValueOf(o.Results)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}

var obbjectJSON = []byte(`{"results":null,"warnings":[]}`)

// MarshalJSON keeps a stable field layout regardless of which optional
// members are set.
func (o OBBject) MarshalJSON() ([]byte, error) {
	result := obbjectJSON

	var err error
	if o.Results != nil {
		raw, merr := json.Marshal(o.Results)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal results: %w", merr)
		}
		result, err = sjson.SetRawBytes(result, "results", raw)
		if err != nil {
			return nil, err
		}
	}

	if o.Provider != "" {
		result, err = sjson.SetBytes(result, "provider", o.Provider)
		if err != nil {
			return nil, err
		}
	}

	if len(o.Warnings) > 0 {
		raw, merr := json.Marshal(o.Warnings)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal warnings: %w", merr)
		}
		result, err = sjson.SetRawBytes(result, "warnings", raw)
		if err != nil {
			return nil, err
		}
	}

	if o.Chart != nil {
		raw, merr := json.Marshal(o.Chart)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal chart: %w", merr)
		}
		result, err = sjson.SetRawBytes(result, "chart", raw)
		if err != nil {
			return nil, err
		}
	}

	if len(o.Extra) > 0 {
		raw, merr := json.Marshal(o.Extra)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal extra: %w", merr)
		}
		result, err = sjson.SetRawBytes(result, "extra", raw)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// UnmarshalJSON accepts the layout produced by MarshalJSON.
func (o *OBBject) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	if results := gjson.GetBytes(data, "results"); results.Exists() && results.Type != gjson.Null {
		var v any
		if err := json.Unmarshal([]byte(results.Raw), &v); err != nil {
			return fmt.Errorf("invalid results: %w", err)
		}
		o.Results = v
	}

	o.Provider = gjson.GetBytes(data, "provider").String()

	if warnings := gjson.GetBytes(data, "warnings"); warnings.Exists() {
		if err := json.Unmarshal([]byte(warnings.Raw), &o.Warnings); err != nil {
			return fmt.Errorf("invalid warnings: %w", err)
		}
	}

	if chart := gjson.GetBytes(data, "chart"); chart.Exists() && chart.Type != gjson.Null {
		var v any
		if err := json.Unmarshal([]byte(chart.Raw), &v); err != nil {
			return fmt.Errorf("invalid chart: %w", err)
		}
		o.Chart = v
	}

	if extra := gjson.GetBytes(data, "extra"); extra.Exists() {
		if err := json.Unmarshal([]byte(extra.Raw), &o.Extra); err != nil {
			return fmt.Errorf("invalid extra: %w", err)
		}
	}

	return nil
}
