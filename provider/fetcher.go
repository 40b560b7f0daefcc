package provider

import (
	"context"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/schema"
)

// Standard is the reference provider handle. Schemas registered under it
// define the uniform query/data shape for a model; it is synthetic and
// never serves a fetch.
const Standard = "openbb"

// Fetcher services one (provider, model) pair. Implementations must be
// safe for concurrent use: the registries are frozen after the build
// phase and a single Fetcher value serves every in-flight call.
type Fetcher interface {
	// TransformQuery validates and converts the filtered, unflattened
	// parameter map into the provider's query shape. It is pure; a
	// failure must attribute the offending field path.
	TransformQuery(raw map[string]any) (schema.Values, error)

	// ExtractData performs the provider I/O for the query. It must
	// honour ctx for cancellation and deadline. Transport failures
	// should be translated through api.TranslateStatus; an upstream
	// answer with no matching rows is reported with api.EmptyDataf.
	ExtractData(ctx context.Context, query schema.Values, creds api.Credentials) (any, error)

	// TransformData converts the raw extraction result into rows shaped
	// by the provider's data schema. It is pure.
	TransformData(query schema.Values, raw any) ([]schema.Row, error)

	// RequiresCredentials reports whether ExtractData needs secret
	// material to succeed.
	RequiresCredentials() bool
}

// Funcs adapts three functions into a Fetcher, the way http.HandlerFunc
// adapts a function into a Handler. Nil members yield zero values.
type Funcs struct {
	Query       func(raw map[string]any) (schema.Values, error)
	Extract     func(ctx context.Context, query schema.Values, creds api.Credentials) (any, error)
	Transform   func(query schema.Values, raw any) ([]schema.Row, error)
	Credentials bool
}

var _ Fetcher = Funcs{}

func (f Funcs) TransformQuery(raw map[string]any) (schema.Values, error) {
	if f.Query == nil {
		return schema.Values{}, nil
	}
	return f.Query(raw)
}

func (f Funcs) ExtractData(ctx context.Context, query schema.Values, creds api.Credentials) (any, error) {
	if f.Extract == nil {
		return nil, nil
	}
	return f.Extract(ctx, query, creds)
}

func (f Funcs) TransformData(query schema.Values, raw any) ([]schema.Row, error) {
	if f.Transform == nil {
		return nil, nil
	}
	return f.Transform(query, raw)
}

func (f Funcs) RequiresCredentials() bool { return f.Credentials }
