package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/schema"
)

func testPair(t *testing.T) (*schema.Schema, *schema.Schema) {
	t.Helper()
	query := schema.Build("Query", "",
		schema.NewField("symbol", schema.StringType(), "Ticker."),
	)
	data := schema.Build("Data", "",
		schema.NewField("close", schema.DecimalType(), "Close."),
	)
	return query, data
}

func TestSchemasRegister(t *testing.T) {
	query, data := testPair(t)

	t.Run("accepts and looks up", func(t *testing.T) {
		s := NewSchemas()
		require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))

		q, d, err := s.Lookup("alpha", "EquityHistorical")
		require.NoError(t, err)
		assert.Same(t, query, q)
		assert.Same(t, data, d)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		s := NewSchemas()
		require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))
		err := s.Register("alpha", "EquityHistorical", query, data)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindSchema))
	})

	t.Run("rejects nil schemas", func(t *testing.T) {
		s := NewSchemas()
		require.Error(t, s.Register("alpha", "EquityHistorical", query, nil))
		require.Error(t, s.Register("alpha", "EquityHistorical", nil, data))
	})

	t.Run("rejects empty names", func(t *testing.T) {
		s := NewSchemas()
		require.Error(t, s.Register("", "EquityHistorical", query, data))
		require.Error(t, s.Register("alpha", "", query, data))
	})

	t.Run("rejects registration after freeze", func(t *testing.T) {
		s := NewSchemas()
		s.Freeze()
		err := s.Register("alpha", "EquityHistorical", query, data)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindSchema))
		assert.True(t, s.Frozen())
	})

	t.Run("lookup of unknown pair fails", func(t *testing.T) {
		s := NewSchemas()
		_, _, err := s.Lookup("alpha", "EquityHistorical")
		require.Error(t, err)
	})
}

func TestSchemasProvidersFor(t *testing.T) {
	query, data := testPair(t)
	s := NewSchemas()

	require.NoError(t, s.Register(provider.Standard, "EquityHistorical", query, data))
	require.NoError(t, s.Register("beta", "EquityHistorical", query, data))
	require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))

	// insertion order, standard handle excluded
	assert.Equal(t, []string{"beta", "alpha"}, s.ProvidersFor("EquityHistorical"))
	assert.Empty(t, s.ProvidersFor("Unknown"))
}

func TestSchemasModels(t *testing.T) {
	query, data := testPair(t)
	s := NewSchemas()

	require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))
	require.NoError(t, s.Register("alpha", "BalanceSheet", query, data))

	assert.Equal(t, []string{"BalanceSheet", "EquityHistorical"}, s.Models())
}

func noopFetcher(requiresCreds bool) provider.Fetcher {
	return provider.Funcs{
		Credentials: requiresCreds,
		Extract: func(context.Context, schema.Values, api.Credentials) (any, error) {
			return nil, nil
		},
	}
}

func TestFetchersRegister(t *testing.T) {
	query, data := testPair(t)

	t.Run("requires schemas first", func(t *testing.T) {
		f := NewFetchers(NewSchemas())
		err := f.Register("alpha", "EquityHistorical", noopFetcher(false))
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindSchema))
	})

	t.Run("accepts with schemas present", func(t *testing.T) {
		s := NewSchemas()
		require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))
		f := NewFetchers(s)
		require.NoError(t, f.Register("alpha", "EquityHistorical", noopFetcher(true)))

		got, err := f.Lookup("alpha", "EquityHistorical")
		require.NoError(t, err)
		assert.True(t, got.RequiresCredentials())
		assert.True(t, f.RequiresCredentials("alpha", "EquityHistorical"))
		assert.True(t, f.Has("alpha", "EquityHistorical"))
	})

	t.Run("rejects duplicates and nil", func(t *testing.T) {
		s := NewSchemas()
		require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))
		f := NewFetchers(s)
		require.NoError(t, f.Register("alpha", "EquityHistorical", noopFetcher(false)))
		require.Error(t, f.Register("alpha", "EquityHistorical", noopFetcher(false)))
		require.Error(t, f.Register("alpha", "EquityHistorical", nil))
	})

	t.Run("rejects registration after freeze", func(t *testing.T) {
		s := NewSchemas()
		require.NoError(t, s.Register("alpha", "EquityHistorical", query, data))
		f := NewFetchers(s)
		f.Freeze()
		require.Error(t, f.Register("alpha", "EquityHistorical", noopFetcher(false)))
	})

	t.Run("unknown pair", func(t *testing.T) {
		f := NewFetchers(NewSchemas())
		_, err := f.Lookup("alpha", "EquityHistorical")
		require.Error(t, err)
		assert.False(t, f.RequiresCredentials("alpha", "EquityHistorical"))
	})
}
