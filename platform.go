package finquery

import (
	"context"
	"fmt"
	"sync"

	"github.com/fogfish/opts"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/config"
	"github.com/finquery/finquery/executor"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/registry"
	"github.com/finquery/finquery/router"
	"github.com/finquery/finquery/schema"
	"github.com/finquery/finquery/surface"
)

// Platform ties the registries, the derived interface, the router and
// the executor together behind one registration-then-build lifecycle.
type Platform struct {
	// Config carries priorities, the default timeout, build strictness
	// and credential key names.
	Config *config.Config

	schemas  *registry.Schemas
	fetchers *registry.Fetchers

	mu      sync.Mutex
	pending []pendingRoute
	iface   *surface.Interface
	exec    *executor.Executor
	router  *router.Router
}

type pendingRoute struct {
	path    string
	model   string
	options []router.RouteOption
}

// Option configures a Platform under construction.
type Option = opts.Option[Platform]

// WithConfig replaces the default configuration.
var WithConfig = opts.ForName[Platform, *config.Config]("Config")

// New builds an empty platform in the registration phase.
func New(options ...Option) (*Platform, error) {
	schemas := registry.NewSchemas()
	p := Platform{
		Config:   config.Default(),
		schemas:  schemas,
		fetchers: registry.NewFetchers(schemas),
	}
	if err := opts.Apply(&p, options); err != nil {
		return nil, err
	}
	return &p, nil
}

// RegisterSchemas declares the query/data pair for (provider, model).
func (p *Platform) RegisterSchemas(providerName, model string, query, data *schema.Schema) error {
	return p.schemas.Register(providerName, model, query, data)
}

// RegisterFetcher declares the fetcher serving (provider, model).
func (p *Platform) RegisterFetcher(providerName, model string, fetcher provider.Fetcher) error {
	return p.fetchers.Register(providerName, model, fetcher)
}

// AddRoute binds path to model. Routes are queued and materialized by
// Build, after the interface derivation has validated the model.
func (p *Platform) AddRoute(path, model string, options ...router.RouteOption) {
	p.mu.Lock()
	p.pending = append(p.pending, pendingRoute{path: path, model: model, options: options})
	p.mu.Unlock()
}

// Build derives the provider interface, freezes both registries, and
// wires the executor and the command tree. Schema invariant violations
// abort with a SchemaError.
func (p *Platform) Build() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.iface != nil {
		return fmt.Errorf("platform is already built")
	}

	iface, err := surface.Build(p.schemas,
		surface.WithFatalWarnings(p.Config.FatalBuildWarnings),
	)
	if err != nil {
		return err
	}
	p.fetchers.Freeze()

	exec, err := executor.New(iface, p.fetchers,
		executor.WithTimeout(p.Config.Timeout.Std()),
		executor.WithPriorities(p.Config.Priorities),
		executor.WithCredentialKeys(p.Config.CredentialKeys),
	)
	if err != nil {
		return err
	}

	rt := router.New(iface, exec, router.WithCredentialReporter(p.fetchers))
	for _, pr := range p.pending {
		if err := rt.Add(pr.path, pr.model, pr.options...); err != nil {
			return err
		}
	}

	p.iface = iface
	p.exec = exec
	p.router = rt
	p.pending = nil
	return nil
}

// Router returns the built command tree, nil before Build.
func (p *Platform) Router() *router.Router {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.router
}

// Interface returns the derived provider interface, nil before Build.
func (p *Platform) Interface() *surface.Interface {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.iface
}

// Invoke runs the route at path. The platform must be built.
func (p *Platform) Invoke(ctx context.Context, path string, params map[string]any, cc *api.CommandContext) (*api.OBBject, error) {
	rt := p.Router()
	if rt == nil {
		return nil, fmt.Errorf("platform is not built, call Build first")
	}
	return rt.Invoke(ctx, path, params, cc)
}

// ListProviders summarizes every provider reachable through the command
// tree, including the credential key names the configuration expects for
// each. The platform must be built.
func (p *Platform) ListProviders() []provider.Record {
	rt := p.Router()
	if rt == nil {
		return nil
	}
	records := rt.Providers()
	for i := range records {
		records[i].CredentialKeys = append([]string(nil), p.Config.CredentialKeys[records[i].Name]...)
	}
	return records
}

// Context builds a per-call CommandContext preloaded with the
// credentials resolved from the environment per the configured key
// names. Additional options apply on top.
func (p *Platform) Context(options ...api.Option) (*api.CommandContext, error) {
	merged := make([]api.Option, 0, len(options)+4)
	for providerName, creds := range p.Config.CredentialsFromEnv() {
		merged = append(merged, api.WithCredentials(providerName, creds))
	}
	merged = append(merged, options...)
	return api.NewCommandContext(merged...)
}
