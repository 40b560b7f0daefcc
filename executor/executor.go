// Package executor runs a single call end to end: provider resolution,
// parameter filtering against the chosen provider's schema, the fetcher
// pipeline under a deadline, and packaging of the uniform result
// envelope. Executors hold no per-call state; any number of calls may be
// in flight at once.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fogfish/opts"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/pkg/jsonx"
	"github.com/finquery/finquery/pkg/slogx"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/registry"
	"github.com/finquery/finquery/schema"
	"github.com/finquery/finquery/surface"
)

// DefaultTimeout bounds a call when neither the context nor the
// configuration says otherwise.
const DefaultTimeout = 30 * time.Second

// Executor dispatches validated calls to fetchers.
type Executor struct {
	// Timeout is the default per-call deadline.
	Timeout time.Duration

	// Priorities overrides the default provider order per model. A
	// model absent from the map falls back to registration order.
	Priorities map[string][]string

	// CredentialKeys names, per provider, the credential map keys a
	// caller must supply. Used to build actionable unauthorized errors.
	CredentialKeys map[string][]string

	iface    *surface.Interface
	fetchers *registry.Fetchers
}

// Option configures an Executor under construction.
type Option = opts.Option[Executor]

var (
	// WithTimeout sets the default call deadline.
	WithTimeout = opts.ForName[Executor, time.Duration]("Timeout")

	// WithPriorities sets the per-model provider priority lists.
	WithPriorities = opts.ForName[Executor, map[string][]string]("Priorities")

	// WithCredentialKeys names per-provider credential keys.
	WithCredentialKeys = opts.ForName[Executor, map[string][]string]("CredentialKeys")
)

// New builds an executor over a derived interface and its fetchers.
func New(iface *surface.Interface, fetchers *registry.Fetchers, options ...Option) (*Executor, error) {
	e := Executor{Timeout: DefaultTimeout, iface: iface, fetchers: fetchers}
	if err := opts.Apply(&e, options); err != nil {
		return nil, err
	}
	if e.Timeout <= 0 {
		e.Timeout = DefaultTimeout
	}
	return &e, nil
}

// SelectProvider resolves the provider for a call. An explicit choice
// must be a member of the model's choices. An omitted choice walks the
// priority list and picks the first provider that either needs no
// credentials or has credentials available in the context.
func (e *Executor) SelectProvider(m *surface.Model, explicit string, cc *api.CommandContext) (string, error) {
	if explicit != "" {
		if !m.HasProvider(explicit) {
			return "", api.ValidationErrorf("provider", "unknown provider %q for model %s, valid providers: %s",
				explicit, m.Name, strings.Join(m.Providers, ", "))
		}
		return explicit, nil
	}

	candidates := m.Providers
	if configured, ok := e.Priorities[m.Name]; ok {
		var filtered []string
		for _, p := range configured {
			if m.HasProvider(p) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	for _, p := range candidates {
		if !e.fetchers.RequiresCredentials(p, m.Name) {
			return p, nil
		}
		if _, ok := cc.CredentialsFor(p); ok {
			return p, nil
		}
	}

	first := candidates[0]
	return "", api.Unauthorizedf(first, "no usable provider for model %s: provider %s requires credentials %s and none were supplied",
		m.Name, first, e.credentialNames(first))
}

func (e *Executor) credentialNames(providerName string) string {
	keys := e.CredentialKeys[providerName]
	if len(keys) == 0 {
		return fmt.Sprintf("(%s_api_key)", providerName)
	}
	return "(" + strings.Join(keys, ", ") + ")"
}

// Execute runs one call. providerName may be empty, in which case the
// provider is resolved by priority. params is the merged standard+extra
// parameter map with flattened names; values belonging to providers
// other than the chosen one are dropped silently.
func (e *Executor) Execute(ctx context.Context, model, providerName string, params map[string]any, cc *api.CommandContext) (*api.OBBject, error) {
	start := time.Now()
	if cc == nil {
		var err error
		if cc, err = api.NewCommandContext(); err != nil {
			return nil, err
		}
	}

	m, ok := e.iface.Model(model)
	if !ok {
		return nil, api.ValidationErrorf("", "unknown model %q", model)
	}

	chosen, err := e.SelectProvider(m, providerName, cc)
	if err != nil {
		return nil, err
	}

	log := slog.With(
		slog.String("model", model),
		slogx.Provider(chosen),
		slogx.Stringer("run_id", cc.RunID),
	)

	resolved, err := e.resolveParams(m, chosen, params)
	if err != nil {
		return nil, err
	}

	fetcher, err := e.fetchers.Lookup(chosen, model)
	if err != nil {
		return nil, err
	}

	creds, haveCreds := cc.CredentialsFor(chosen)
	if fetcher.RequiresCredentials() && !haveCreds {
		return nil, api.Unauthorizedf(chosen, "model %s requires credentials %s and none were supplied",
			model, e.credentialNames(chosen))
	}

	query, err := fetcher.TransformQuery(schema.Unflatten(resolved))
	if err != nil {
		return nil, asValidationError(chosen, err)
	}

	timeout := e.Timeout
	if cc.Timeout > 0 {
		timeout = cc.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var warnings []api.Warning

	raw, err := e.extract(callCtx, fetcher, chosen, query, creds)
	if err != nil {
		if empty, w := e.emptyData(chosen, resolved, cc, err); empty {
			return envelope(nil, chosen, append(warnings, w), resolved, cc, start), nil
		}
		log.Error("extract_data failed", slogx.Error(err))
		return nil, err
	}

	rows, err := fetcher.TransformData(query, raw)
	if err != nil {
		if empty, w := e.emptyData(chosen, resolved, cc, err); empty {
			return envelope(nil, chosen, append(warnings, w), resolved, cc, start), nil
		}
		return nil, e.translate(chosen, err)
	}

	log.Debug("call served", slog.Int("rows", len(rows)), slog.Duration("elapsed", time.Since(start)))
	return envelope(rows, chosen, warnings, resolved, cc, start), nil
}

// resolveParams filters the merged parameter map down to the names the
// chosen provider accepts, then validates and coerces against the
// provider's flattened query schema. Names belonging to other providers'
// extras are dropped silently; names unknown to every provider are a
// ValidationError.
func (e *Executor) resolveParams(m *surface.Model, chosen string, params map[string]any) (schema.Values, error) {
	flat := m.FlatQuery[chosen]
	filtered := make(map[string]any, len(params))
	for name, value := range params {
		if name == "provider" {
			continue
		}
		if flat.Has(name) {
			filtered[name] = value
			continue
		}
		if !m.MergedQuery.Has(name) {
			return nil, api.ValidationErrorf(name, "unknown parameter %q for model %s", name, m.Name)
		}
		// belongs to another provider's extras
	}

	resolved, err := flat.Validate(filtered)
	if err != nil {
		return nil, asValidationError(chosen, err)
	}
	return resolved, nil
}

type extractResult struct {
	raw any
	err error
}

// extract runs the fetcher's I/O phase under the call deadline. When the
// context fires first the in-flight operation is abandoned; the fetcher
// sees the cancellation through its own ctx.
func (e *Executor) extract(ctx context.Context, fetcher provider.Fetcher, chosen string, query schema.Values, creds api.Credentials) (any, error) {
	results := make(chan extractResult, 1)
	go func() {
		raw, err := fetcher.ExtractData(ctx, query, creds)
		results <- extractResult{raw: raw, err: err}
	}()

	select {
	case res := <-results:
		if res.err != nil {
			return nil, e.translate(chosen, res.err)
		}
		return res.raw, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, api.TimeoutError(chosen, ctx.Err())
		}
		return nil, api.CancelledError(chosen, ctx.Err())
	}
}

// translate maps arbitrary fetcher failures onto the platform taxonomy,
// preserving causes and attributing the provider.
func (e *Executor) translate(chosen string, err error) error {
	var pe *api.Error
	if errors.As(err, &pe) {
		if pe.Provider == "" {
			pe.Provider = chosen
		}
		return pe
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return api.TimeoutError(chosen, err)
	case errors.Is(err, context.Canceled):
		return api.CancelledError(chosen, err)
	default:
		return api.ProviderErrorf(chosen, err, "provider call failed")
	}
}

// emptyData reports whether err is the provider saying "nothing matched"
// and, when it is and strict mode is off, the warning to put on the
// envelope.
func (e *Executor) emptyData(chosen string, resolved schema.Values, cc *api.CommandContext, err error) (bool, api.Warning) {
	translated := e.translate(chosen, err)
	if !api.IsKind(translated, api.KindEmptyData) || cc.StrictEmptyData {
		return false, api.Warning{}
	}
	return true, api.Warning{
		Category: api.WarnEmptyData,
		Message:  fmt.Sprintf("provider %s returned no results for query %v", chosen, resolved),
	}
}

func asValidationError(chosen string, err error) error {
	var pe *api.Error
	if errors.As(err, &pe) {
		return pe
	}
	var fe *schema.FieldError
	if errors.As(err, &fe) {
		ve := api.ValidationErrorf(fe.Path, "%v", fe.Err)
		ve.Provider = chosen
		return ve
	}
	ve := api.ValidationErrorf("", "%v", err)
	ve.Provider = chosen
	return ve
}

func envelope(rows []schema.Row, chosen string, warnings []api.Warning, resolved schema.Values, cc *api.CommandContext, start time.Time) *api.OBBject {
	if rows == nil {
		rows = []schema.Row{}
	}
	if warnings == nil {
		warnings = []api.Warning{}
	}
	params, err := jsonx.ToDynamicJSON(resolved)
	if err != nil {
		params = map[string]any(resolved)
	}
	return &api.OBBject{
		Results:  rows,
		Provider: chosen,
		Warnings: warnings,
		Extra: map[string]any{
			"elapsed_ms":      time.Since(start).Milliseconds(),
			"resolved_params": params,
			"run_id":          cc.RunID.String(),
		},
	}
}
