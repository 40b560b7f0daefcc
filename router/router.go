// Package router exposes the derived provider interface as a callable
// tree of commands. Paths live here, not in the schemas: a route binds a
// path like /equity/price/historical to one model and forwards validated
// calls to the executor.
package router

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/fogfish/opts"
	"github.com/go-openapi/swag"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/schema"
	"github.com/finquery/finquery/surface"
)

// Invoker executes one resolved call. The executor implements it; tests
// may substitute their own.
type Invoker interface {
	Execute(ctx context.Context, model, providerName string, params map[string]any, cc *api.CommandContext) (*api.OBBject, error)
}

// CredentialReporter answers whether a (provider, model) pair needs
// credentials. The fetcher registry implements it.
type CredentialReporter interface {
	RequiresCredentials(providerName, model string) bool
}

// Route is one leaf in the command tree.
type Route struct {
	Path        string
	Model       string
	Description string

	surface *surface.Model
}

type node struct {
	name     string
	children map[string]*node
	order    []string
	route    *Route
}

func newNode(name string) *node {
	return &node{name: name, children: make(map[string]*node)}
}

// Router holds the command tree. Routes are added during startup; after
// that the tree is read-only and safe for concurrent invocation.
type Router struct {
	iface   *surface.Interface
	invoker Invoker
	creds   CredentialReporter

	mu     sync.Mutex
	root   *node
	routes map[string]*Route
}

// New builds an empty router over a derived interface.
func New(iface *surface.Interface, invoker Invoker, options ...RouterOption) *Router {
	r := &Router{
		iface:   iface,
		invoker: invoker,
		root:    newNode(""),
		routes:  make(map[string]*Route),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// RouterOption configures a Router under construction.
type RouterOption func(*Router)

// WithCredentialReporter lets introspection report per-model credential
// requirements.
func WithCredentialReporter(creds CredentialReporter) RouterOption {
	return func(r *Router) { r.creds = creds }
}

var segmentRx = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// RouteConfig carries the per-route options.
type RouteConfig struct {
	Description string

	// Prevents unkeyed literals
	_ struct{}
}

// RouteOption configures one route.
type RouteOption = opts.Option[RouteConfig]

// Description overrides the description taken from the bound model.
var Description = opts.ForName[RouteConfig, string]("Description")

// Add binds path to model. The path must be unique, absolute, and made
// of lowercase snake-case segments; the model must exist in the derived
// interface. Violations are SchemaErrors since routes are declared at
// startup.
func (r *Router) Add(path, model string, options ...RouteOption) error {
	var cfg RouteConfig
	if err := opts.Apply(&cfg, options); err != nil {
		return err
	}

	segments, err := splitPath(path)
	if err != nil {
		return err
	}

	m, ok := r.iface.Model(model)
	if !ok {
		return api.SchemaErrorf("route %s: unknown model %q", path, model)
	}

	description := cfg.Description
	if description == "" {
		description = m.Description
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[path]; exists {
		return api.SchemaErrorf("route %s is already registered", path)
	}

	cursor := r.root
	for i, seg := range segments {
		child, ok := cursor.children[seg]
		if !ok {
			child = newNode(seg)
			cursor.children[seg] = child
			cursor.order = append(cursor.order, seg)
		}
		if i < len(segments)-1 && child.route != nil {
			return api.SchemaErrorf("route %s: %q is already a command, cannot nest under it", path, seg)
		}
		cursor = child
	}
	if len(cursor.children) > 0 {
		return api.SchemaErrorf("route %s: already a menu with children", path)
	}
	if cursor.route != nil {
		return api.SchemaErrorf("route %s is already registered", path)
	}

	route := &Route{Path: path, Model: model, Description: description, surface: m}
	cursor.route = route
	r.routes[path] = route
	return nil
}

func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, api.SchemaErrorf("route %q must start with /", path)
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return nil, api.SchemaErrorf("route %q has no segments", path)
	}
	for _, seg := range segments {
		if !segmentRx.MatchString(seg) {
			return nil, api.SchemaErrorf("route %q: invalid segment %q", path, seg)
		}
	}
	return segments, nil
}

// Lookup returns the route bound to path.
func (r *Router) Lookup(path string) (*Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[path]
	return route, ok
}

// Invoke runs the route at path with the given parameter map. The map
// holds standard parameters, an optional "provider" selector, and any
// provider extras under their flattened names. Unknown names fail with a
// ValidationError naming the parameter.
func (r *Router) Invoke(ctx context.Context, path string, params map[string]any, cc *api.CommandContext) (*api.OBBject, error) {
	route, ok := r.Lookup(path)
	if !ok {
		return nil, api.ValidationErrorf("", "unknown route %q", path)
	}

	providerName, cleaned, err := prepareParams(route.surface, params)
	if err != nil {
		return nil, err
	}

	return r.invoker.Execute(ctx, route.Model, providerName, cleaned, cc)
}

// prepareParams applies the leaf contract: pull out the provider
// selector, reject names unknown to every provider, and collapse
// CSV-style strings into lists where the field allows multiple items.
// Date coercion and defaults happen later against the chosen provider's
// schema.
func prepareParams(m *surface.Model, params map[string]any) (string, map[string]any, error) {
	var providerName string
	cleaned := make(map[string]any, len(params))

	for name, value := range params {
		if name == "provider" {
			s, ok := value.(string)
			if !ok {
				return "", nil, api.ValidationErrorf("provider", "provider must be a string, got %T", value)
			}
			providerName = s
			continue
		}

		field, known := m.MergedQuery.Field(name)
		if !known {
			return "", nil, api.ValidationErrorf(name, "unknown parameter %q for model %s", name, m.Name)
		}

		cleaned[name] = collapseList(field, value)
	}

	if providerName != "" && !m.HasProvider(providerName) {
		return "", nil, api.ValidationErrorf("provider", "unknown provider %q for model %s, valid providers: %s",
			providerName, m.Name, strings.Join(m.Providers, ", "))
	}

	return providerName, cleaned, nil
}

// collapseList splits a comma-separated string into a list when the
// field declares multiple_items_allowed and expects a list.
func collapseList(field schema.Field, value any) any {
	if !field.Hints.MultipleItemsAllowed {
		return value
	}
	s, ok := value.(string)
	if !ok || !strings.Contains(s, ",") {
		return value
	}
	parts := swag.SplitByFormat(s, "csv")
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

// Paths returns every registered route path, sorted.
func (r *Router) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (r *Router) String() string {
	return fmt.Sprintf("router(%d routes)", len(r.routes))
}
