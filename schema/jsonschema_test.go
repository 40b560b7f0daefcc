package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToJSONSchema(t *testing.T) {
	s := Build("EquityQuery", "Historical price query.",
		NewField("symbol", StringType(), "Ticker symbol."),
		NewField("start_date", DateType(), "Range start."),
		NewFieldDefault("adjustment", EnumType("raw", "split"), "split", "Adjustment mode."),
	)
	require.NoError(t, s.Add(Field{
		Name:        "tickers",
		Type:        ListOf(StringType()),
		HasDefault:  true,
		Description: "Additional tickers.",
		Hints:       Hints{MultipleItemsAllowed: true},
		Providers:   []string{"alpha", "beta"},
	}))

	js := ToJSONSchema(s)
	assert.Equal(t, "EquityQuery", js.Title)
	assert.Equal(t, "Historical price query.", js.Description)
	assert.Equal(t, "object", js.Type)
	assert.Equal(t, []string{"symbol", "start_date"}, js.Required)

	symbol, ok := js.Properties.Get("symbol")
	require.True(t, ok)
	assert.Equal(t, "string", symbol.Type)

	start, ok := js.Properties.Get("start_date")
	require.True(t, ok)
	assert.Equal(t, "date", start.Format)

	adj, ok := js.Properties.Get("adjustment")
	require.True(t, ok)
	assert.Len(t, adj.Enum, 2)
	assert.Equal(t, "split", adj.Default)

	tickers, ok := js.Properties.Get("tickers")
	require.True(t, ok)
	assert.Equal(t, "array", tickers.Type)
	assert.Equal(t, true, tickers.Extras["x-multiple-items-allowed"])
	assert.Equal(t, []string{"alpha", "beta"}, tickers.Extras["x-providers"])
}

func TestToJSONSchemaUnionAndNullable(t *testing.T) {
	s := Build("Q", "",
		NewFieldDefault("window", UnionOf(IntType(), StringType()), nil, "Window size."),
		NewFieldDefault("note", Nullable(StringType()), nil, "Optional note."),
	)

	js := ToJSONSchema(s)

	window, ok := js.Properties.Get("window")
	require.True(t, ok)
	assert.Len(t, window.AnyOf, 2)

	note, ok := js.Properties.Get("note")
	require.True(t, ok)
	require.Len(t, note.AnyOf, 2)
	assert.Equal(t, "null", note.AnyOf[1].Type)
}
