package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/registry"
	"github.com/finquery/finquery/schema"
	"github.com/finquery/finquery/surface"
)

// capturingInvoker records the resolved call instead of executing it.
type capturingInvoker struct {
	model    string
	provider string
	params   map[string]any
}

func (c *capturingInvoker) Execute(_ context.Context, model, providerName string, params map[string]any, _ *api.CommandContext) (*api.OBBject, error) {
	c.model = model
	c.provider = providerName
	c.params = params
	return &api.OBBject{Provider: providerName}, nil
}

type staticReporter map[string]bool

func (s staticReporter) RequiresCredentials(providerName, _ string) bool {
	return s[providerName]
}

func testInterface(t *testing.T) *surface.Interface {
	t.Helper()

	query := func() *schema.Schema {
		return schema.Build("EquityHistoricalQuery", "Historical price query.",
			schema.NewField("symbol", schema.StringType(), "Ticker symbol."),
			schema.NewFieldDefault("start_date", schema.Nullable(schema.DateType()), nil, "Range start."),
		)
	}
	data := schema.Build("EquityHistoricalData", "Historical price candles.",
		schema.NewField("date", schema.DateType(), "Trading day."),
		schema.NewField("close", schema.DecimalType(), "Close."),
	)

	symbols := schema.NewFieldDefault("symbols", schema.ListOf(schema.StringType()), nil, "Additional symbols.")
	symbols.Hints.MultipleItemsAllowed = true

	betaQuery := query()
	require.NoError(t, betaQuery.Add(symbols))
	require.NoError(t, betaQuery.Add(
		schema.NewFieldDefault("adjustment", schema.EnumType("raw", "split"), "split", "Adjustment mode."),
	))

	reg := registry.NewSchemas()
	require.NoError(t, reg.Register(provider.Standard, "EquityHistorical", query(), data))
	require.NoError(t, reg.Register("alpha", "EquityHistorical", query(), data))
	require.NoError(t, reg.Register("beta", "EquityHistorical", betaQuery, data))

	iface, err := surface.Build(reg)
	require.NoError(t, err)
	return iface
}

func newTestRouter(t *testing.T) (*Router, *capturingInvoker) {
	t.Helper()
	inv := &capturingInvoker{}
	rt := New(testInterface(t), inv, WithCredentialReporter(staticReporter{"beta": true}))
	require.NoError(t, rt.Add("/equity/price/historical", "EquityHistorical"))
	return rt, inv
}

func TestRouterAdd(t *testing.T) {
	rt, _ := newTestRouter(t)

	t.Run("duplicate path", func(t *testing.T) {
		err := rt.Add("/equity/price/historical", "EquityHistorical")
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindSchema))
	})

	t.Run("unknown model", func(t *testing.T) {
		err := rt.Add("/crypto/price", "CryptoHistorical")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CryptoHistorical")
	})

	t.Run("relative path", func(t *testing.T) {
		require.Error(t, rt.Add("equity/price", "EquityHistorical"))
	})

	t.Run("bad segment", func(t *testing.T) {
		require.Error(t, rt.Add("/equity/Price", "EquityHistorical"))
		require.Error(t, rt.Add("/equity/1d", "EquityHistorical"))
	})

	t.Run("nesting under a command", func(t *testing.T) {
		err := rt.Add("/equity/price/historical/adjusted", "EquityHistorical")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already a command")
	})

	t.Run("binding a menu", func(t *testing.T) {
		err := rt.Add("/equity/price", "EquityHistorical")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "menu")
	})

	t.Run("custom description", func(t *testing.T) {
		require.NoError(t, rt.Add("/equity/quote", "EquityHistorical", Description("Latest quote.")))
		route, ok := rt.Lookup("/equity/quote")
		require.True(t, ok)
		assert.Equal(t, "Latest quote.", route.Description)
	})
}

func TestRouterInvoke(t *testing.T) {
	ctx := context.Background()
	cc, err := api.NewCommandContext()
	require.NoError(t, err)

	t.Run("forwards standard params", func(t *testing.T) {
		rt, inv := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical", map[string]any{"symbol": "AAPL"}, cc)
		require.NoError(t, err)
		assert.Equal(t, "EquityHistorical", inv.model)
		assert.Equal(t, "", inv.provider)
		assert.Equal(t, map[string]any{"symbol": "AAPL"}, inv.params)
	})

	t.Run("extracts the provider selector", func(t *testing.T) {
		rt, inv := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "provider": "beta"}, cc)
		require.NoError(t, err)
		assert.Equal(t, "beta", inv.provider)
		assert.NotContains(t, inv.params, "provider")
	})

	t.Run("unknown route", func(t *testing.T) {
		rt, _ := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/latest", nil, cc)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
	})

	t.Run("unknown parameter names it", func(t *testing.T) {
		rt, _ := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "lookback": 20}, cc)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
		apiErr := api.AsError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, "lookback", apiErr.Path)
	})

	t.Run("provider extras pass the merged gate", func(t *testing.T) {
		rt, inv := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "adjustment": "raw"}, cc)
		require.NoError(t, err)
		assert.Equal(t, "raw", inv.params["adjustment"])
	})

	t.Run("unknown provider lists the valid ones", func(t *testing.T) {
		rt, _ := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "provider": "gamma"}, cc)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
		assert.Contains(t, err.Error(), "alpha, beta")
	})

	t.Run("provider selector must be a string", func(t *testing.T) {
		rt, _ := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "provider": 3}, cc)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
	})

	t.Run("collapses csv strings for multi-item fields", func(t *testing.T) {
		rt, inv := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "symbols": "MSFT,GOOG"}, cc)
		require.NoError(t, err)
		assert.Equal(t, []any{"MSFT", "GOOG"}, inv.params["symbols"])
	})

	t.Run("leaves plain strings alone", func(t *testing.T) {
		rt, inv := newTestRouter(t)
		_, err := rt.Invoke(ctx, "/equity/price/historical",
			map[string]any{"symbol": "AAPL", "symbols": "MSFT"}, cc)
		require.NoError(t, err)
		assert.Equal(t, "MSFT", inv.params["symbols"])
	})
}

func TestRouterTree(t *testing.T) {
	rt, inv := newTestRouter(t)
	require.NoError(t, rt.Add("/equity/quote", "EquityHistorical"))

	root := rt.Tree()
	assert.Equal(t, "/", root.Path())
	assert.False(t, root.IsCommand())
	assert.Equal(t, []string{"equity"}, root.Children())

	equity, ok := root.Child("equity")
	require.True(t, ok)
	assert.Equal(t, "/equity", equity.Path())
	assert.Equal(t, []string{"price", "quote"}, equity.Children())

	price, ok := equity.Child("price")
	require.True(t, ok)
	historical, ok := price.Child("historical")
	require.True(t, ok)
	assert.True(t, historical.IsCommand())
	assert.Equal(t, "/equity/price/historical", historical.Route().Path)

	_, ok = equity.Child("fundamental")
	assert.False(t, ok)

	cc, err := api.NewCommandContext()
	require.NoError(t, err)

	t.Run("invoking a menu fails", func(t *testing.T) {
		_, err := equity.Invoke(context.Background(), nil, cc)
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
	})

	t.Run("invoking a leaf forwards", func(t *testing.T) {
		_, err := historical.Invoke(context.Background(), map[string]any{"symbol": "AAPL"}, cc)
		require.NoError(t, err)
		assert.Equal(t, "EquityHistorical", inv.model)
	})
}

func TestRouterIntrospection(t *testing.T) {
	rt, _ := newTestRouter(t)
	require.NoError(t, rt.Add("/equity/quote", "EquityHistorical"))

	t.Run("routes listing is sorted", func(t *testing.T) {
		routes := rt.Routes()
		require.Len(t, routes, 2)
		assert.Equal(t, "/equity/price/historical", routes[0].Path)
		assert.Equal(t, "/equity/quote", routes[1].Path)
		assert.Equal(t, []string{"alpha", "beta"}, routes[0].Providers)
	})

	t.Run("describe is idempotent", func(t *testing.T) {
		first, err := rt.Describe("/equity/price/historical")
		require.NoError(t, err)
		second, err := rt.Describe("/equity/price/historical")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		assert.Equal(t, "EquityHistorical", first.Model)
		assert.NotNil(t, first.StandardQuery)
		assert.NotNil(t, first.MergedQuery)
		assert.Contains(t, first.ExtraQuery, "beta")
	})

	t.Run("describe unknown route", func(t *testing.T) {
		_, err := rt.Describe("/nope")
		require.Error(t, err)
		assert.True(t, api.IsKind(err, api.KindValidation))
	})

	t.Run("provider records carry credential needs", func(t *testing.T) {
		records := rt.Providers()
		require.Len(t, records, 2)
		assert.Equal(t, "alpha", records[0].Name)
		assert.Empty(t, records[0].RequiresCredentialsFor)
		assert.Equal(t, "beta", records[1].Name)
		assert.Equal(t, []string{"EquityHistorical"}, records[1].RequiresCredentialsFor)
	})
}

func TestRouterPaths(t *testing.T) {
	rt, _ := newTestRouter(t)
	require.NoError(t, rt.Add("/equity/quote", "EquityHistorical"))
	assert.Equal(t, []string{"/equity/price/historical", "/equity/quote"}, rt.Paths())
}
