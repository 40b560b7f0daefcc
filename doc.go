// Package finquery assembles the provider interface core: declarative
// schemas registered per (provider, model), a derived standard surface,
// a command tree of routes, and an executor that dispatches each call to
// the right provider's fetcher and wraps the answer in a uniform
// envelope.
//
// The lifecycle has two phases. During registration, provider plugins
// declare their query/data schemas and fetchers and the application
// declares its routes. Build then derives the standard surface, wires
// the router and the executor, and freezes the registries; from that
// point the platform is read-only and any number of calls may run
// concurrently.
//
//	p, _ := finquery.New()
//	_ = p.RegisterSchemas("alpha", "EquityHistorical", querySchema, dataSchema)
//	_ = p.RegisterFetcher("alpha", "EquityHistorical", alphaFetcher)
//	p.AddRoute("/equity/price/historical", "EquityHistorical")
//	if err := p.Build(); err != nil { ... }
//
//	cc, _ := p.Context()
//	res, err := p.Invoke(ctx, "/equity/price/historical", map[string]any{
//	    "symbol":     "AAPL",
//	    "start_date": "2024-01-02",
//	    "end_date":   "2024-01-03",
//	}, cc)
package finquery
