package api

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestOBBjectMarshalJSON(t *testing.T) {
	o := OBBject{
		Results:  []map[string]any{{"close": "185.64"}},
		Provider: "alpha",
		Warnings: []Warning{{Category: WarnEmptyData, Message: "nothing for range"}},
		Extra:    map[string]any{"elapsed_ms": 12},
	}

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	assert.Equal(t, "alpha", gjson.GetBytes(raw, "provider").String())
	assert.Equal(t, "185.64", gjson.GetBytes(raw, "results.0.close").String())
	assert.Equal(t, WarnEmptyData, gjson.GetBytes(raw, "warnings.0.category").String())
	assert.Equal(t, int64(12), gjson.GetBytes(raw, "extra.elapsed_ms").Int())
}

func TestOBBjectMarshalEmpty(t *testing.T) {
	raw, err := json.Marshal(OBBject{})
	require.NoError(t, err)

	assert.True(t, gjson.GetBytes(raw, "results").Type == gjson.Null)
	assert.False(t, gjson.GetBytes(raw, "provider").Exists())
	assert.True(t, gjson.GetBytes(raw, "warnings").IsArray())
}

func TestOBBjectRoundTrip(t *testing.T) {
	in := OBBject{
		Results:  []any{map[string]any{"close": "185.64"}},
		Provider: "beta",
		Warnings: []Warning{{Category: WarnTypeUnion, Message: "merged"}},
		Extra:    map[string]any{"run_id": "abc"},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out OBBject
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "beta", out.Provider)
	assert.Equal(t, in.Warnings, out.Warnings)
	assert.Equal(t, "abc", out.Extra["run_id"])
}

func TestOBBjectUnmarshalRejectsGarbage(t *testing.T) {
	var out OBBject
	require.Error(t, out.UnmarshalJSON([]byte("{not json")))
}

func TestOBBjectIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		results any
		want    bool
	}{
		{name: "nil results", results: nil, want: true},
		{name: "empty slice", results: []map[string]any{}, want: true},
		{name: "rows present", results: []map[string]any{{"a": 1}}, want: false},
		{name: "scalar payload", results: "x", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := OBBject{Results: tt.results}
			assert.Equal(t, tt.want, o.IsEmpty())
		})
	}
}
