// Package demo wires a small in-memory platform with two equity price
// providers and one fundamentals provider. The examples and the routes
// CLI build on it; it also doubles as a reference for writing provider
// plugins.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/shopspring/decimal"

	"github.com/finquery/finquery"
	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/schema"
)

// Model names served by the demo providers.
const (
	EquityHistorical = "EquityHistorical"
	BalanceSheet     = "BalanceSheet"
)

func equityQuerySchema(name, description string) *schema.Schema {
	return schema.Build(name, description,
		schema.NewField("symbol", schema.StringType(), "Ticker symbol to fetch."),
		schema.NewField("start_date", schema.DateType(), "Start of the date range, inclusive."),
		schema.NewField("end_date", schema.DateType(), "End of the date range, inclusive."),
	)
}

func equityDataSchema(name string) *schema.Schema {
	return schema.Build(name, "Historical equity price candles.",
		schema.NewField("date", schema.DateType(), "Trading day."),
		schema.NewField("open", schema.DecimalType(), "Opening price."),
		schema.NewField("high", schema.DecimalType(), "Session high."),
		schema.NewField("low", schema.DecimalType(), "Session low."),
		schema.NewField("close", schema.DecimalType(), "Closing price."),
		schema.NewField("volume", schema.IntType(), "Shares traded."),
	)
}

func balanceQuerySchema(name string) *schema.Schema {
	return schema.Build(name, "Balance sheet statement query.",
		schema.NewField("symbol", schema.StringType(), "Ticker symbol to fetch."),
		schema.NewFieldDefault("period", schema.EnumType("annual", "quarter"), "annual", "Reporting period."),
	)
}

func balanceDataSchema(name string) *schema.Schema {
	return schema.Build(name, "Balance sheet statement.",
		schema.NewField("period_ending", schema.DateType(), "Fiscal period end."),
		schema.NewField("total_assets", schema.DecimalType(), "Total assets."),
		schema.NewField("total_liabilities", schema.DecimalType(), "Total liabilities."),
	)
}

// NewPlatform registers the demo providers and routes and builds the
// platform.
func NewPlatform(options ...finquery.Option) (*finquery.Platform, error) {
	p, err := finquery.New(options...)
	if err != nil {
		return nil, err
	}
	if p.Config.CredentialKeys == nil {
		p.Config.CredentialKeys = make(map[string][]string)
	}
	if _, ok := p.Config.CredentialKeys["gamma"]; !ok {
		p.Config.CredentialKeys["gamma"] = []string{"gamma_api_key"}
	}

	// standard pair under the reference handle
	if err := p.RegisterSchemas(provider.Standard, EquityHistorical,
		equityQuerySchema("EquityHistoricalQuery", "Historical equity price query."),
		equityDataSchema("EquityHistoricalData"),
	); err != nil {
		return nil, err
	}

	if err := registerAlpha(p); err != nil {
		return nil, err
	}
	if err := registerBeta(p); err != nil {
		return nil, err
	}

	if err := p.RegisterSchemas(provider.Standard, BalanceSheet,
		balanceQuerySchema("BalanceSheetQuery"),
		balanceDataSchema("BalanceSheetData"),
	); err != nil {
		return nil, err
	}
	if err := registerGamma(p); err != nil {
		return nil, err
	}

	p.AddRoute("/equity/price/historical", EquityHistorical)
	p.AddRoute("/equity/fundamental/balance", BalanceSheet)

	if err := p.Build(); err != nil {
		return nil, err
	}
	return p, nil
}

// registerAlpha wires the credential-free reference price source. It
// serves exactly the standard shape.
func registerAlpha(p *finquery.Platform) error {
	query := equityQuerySchema("AlphaEquityQuery", "Alpha historical price query.")
	data := equityDataSchema("AlphaEquityData")
	if err := p.RegisterSchemas("alpha", EquityHistorical, query, data); err != nil {
		return err
	}
	return p.RegisterFetcher("alpha", EquityHistorical, provider.Funcs{
		Query: func(raw map[string]any) (schema.Values, error) {
			return query.Validate(raw)
		},
		Extract: func(ctx context.Context, q schema.Values, _ api.Credentials) (any, error) {
			return candles(ctx, q, decimal.NewFromInt(1))
		},
		Transform: candleRows,
	})
}

// registerBeta wires a second source with provider extras: an
// adjustment enum and a nested options object that surfaces through the
// flat parameter names.
func registerBeta(p *finquery.Platform) error {
	options := schema.Build("BetaOptions", "Candle shaping options.",
		schema.NewFieldDefault("granularity", schema.EnumType("1d", "1w"), "1d", "Candle granularity."),
	)
	query := equityQuerySchema("BetaEquityQuery", "Beta historical price query.")
	for _, f := range []schema.Field{
		schema.NewFieldDefault("adjustment", schema.EnumType("raw", "split", "total"), "split", "Price adjustment mode."),
		schema.NewFieldDefault("options", schema.ObjectOf(options), nil, "Candle shaping options."),
	} {
		if err := query.Add(f); err != nil {
			return err
		}
	}
	data := equityDataSchema("BetaEquityData")
	if err := data.Add(schema.NewField("vwap", schema.DecimalType(), "Volume weighted average price.")); err != nil {
		return err
	}

	if err := p.RegisterSchemas("beta", EquityHistorical, query, data); err != nil {
		return err
	}
	return p.RegisterFetcher("beta", EquityHistorical, provider.Funcs{
		Query: func(raw map[string]any) (schema.Values, error) {
			flat := schema.Flatten(raw)
			return schema.FlattenSchema(query).Validate(flat)
		},
		Extract: func(ctx context.Context, q schema.Values, _ api.Credentials) (any, error) {
			factor := decimal.NewFromInt(1)
			if adj, _ := q["adjustment"].(string); adj == "total" {
				factor = decimal.RequireFromString("0.98")
			}
			return candles(ctx, q, factor)
		},
		Transform: func(q schema.Values, raw any) ([]schema.Row, error) {
			rows, err := candleRows(q, raw)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				o := row["open"].(decimal.Decimal)
				c := row["close"].(decimal.Decimal)
				row["vwap"] = o.Add(c).Div(decimal.NewFromInt(2))
			}
			return rows, nil
		},
	})
}

// registerGamma wires the fundamentals source, which refuses to serve
// without an api key.
func registerGamma(p *finquery.Platform) error {
	query := balanceQuerySchema("GammaBalanceQuery")
	data := balanceDataSchema("GammaBalanceData")
	if err := p.RegisterSchemas("gamma", BalanceSheet, query, data); err != nil {
		return err
	}
	return p.RegisterFetcher("gamma", BalanceSheet, provider.Funcs{
		Credentials: true,
		Query: func(raw map[string]any) (schema.Values, error) {
			return query.Validate(raw)
		},
		Extract: func(_ context.Context, q schema.Values, creds api.Credentials) (any, error) {
			if creds["gamma_api_key"] == "" {
				return nil, api.TranslateStatus("gamma", 401, fmt.Errorf("missing api key"))
			}
			return q["symbol"], nil
		},
		Transform: func(q schema.Values, _ any) ([]schema.Row, error) {
			return []schema.Row{{
				"period_ending":     strfmt.Date(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
				"total_assets":      decimal.NewFromInt(352_755_000_000),
				"total_liabilities": decimal.NewFromInt(290_437_000_000),
			}}, nil
		},
	})
}

type candle struct {
	day    time.Time
	open   decimal.Decimal
	close  decimal.Decimal
	volume int
}

// candles generates one deterministic synthetic candle per calendar day
// in the query range. It reports EmptyData when the range is empty.
func candles(ctx context.Context, q schema.Values, factor decimal.Decimal) ([]candle, error) {
	start := time.Time(q["start_date"].(strfmt.Date))
	end := time.Time(q["end_date"].(strfmt.Date))
	if end.Before(start) {
		return nil, api.EmptyDataf("", "no sessions between %s and %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	base := decimal.NewFromInt(100)
	var out []candle
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drift := decimal.NewFromInt(int64(day.YearDay() % 7))
		open := base.Add(drift).Mul(factor)
		out = append(out, candle{
			day:    day,
			open:   open,
			close:  open.Add(decimal.RequireFromString("0.5")),
			volume: 1_000_000 + day.YearDay(),
		})
	}
	return out, nil
}

func candleRows(_ schema.Values, raw any) ([]schema.Row, error) {
	cs, ok := raw.([]candle)
	if !ok {
		return nil, fmt.Errorf("unexpected payload %T", raw)
	}
	rows := make([]schema.Row, 0, len(cs))
	for _, c := range cs {
		spread := decimal.RequireFromString("0.25")
		rows = append(rows, schema.Row{
			"date":   strfmt.Date(c.day),
			"open":   c.open,
			"high":   c.close.Add(spread),
			"low":    c.open.Sub(spread),
			"close":  c.close,
			"volume": c.volume,
		})
	}
	return rows, nil
}
