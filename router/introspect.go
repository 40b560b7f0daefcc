package router

import (
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/schema"
)

// RouteInfo is one entry of the route listing.
type RouteInfo struct {
	Path        string   `json:"path"`
	Model       string   `json:"model"`
	Providers   []string `json:"providers"`
	Description string   `json:"description,omitempty"`
}

// Routes lists every registered route with its model, providers and
// description, sorted by path.
func (r *Router) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RouteInfo, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, RouteInfo{
			Path:        route.Path,
			Model:       route.Model,
			Providers:   append([]string(nil), route.surface.Providers...),
			Description: route.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// RouteDescription is the full introspection payload for one route.
type RouteDescription struct {
	Path          string                        `json:"path"`
	Model         string                        `json:"model"`
	Description   string                        `json:"description,omitempty"`
	Providers     []string                      `json:"providers"`
	StandardQuery *jsonschema.Schema            `json:"standard_query"`
	ExtraQuery    map[string]*jsonschema.Schema `json:"extra_query_per_provider"`
	DataSchema    *jsonschema.Schema            `json:"data_schema"`
	MergedQuery   *jsonschema.Schema            `json:"merged_query"`
}

// Describe renders the schemas bound to path as JSON Schema. Calling it
// twice returns structurally equal output; nothing is cached or mutated.
func (r *Router) Describe(path string) (*RouteDescription, error) {
	route, ok := r.Lookup(path)
	if !ok {
		return nil, api.ValidationErrorf("", "unknown route %q", path)
	}

	m := route.surface
	extras := make(map[string]*jsonschema.Schema, len(m.ExtraQuery))
	for providerName, extra := range m.ExtraQuery {
		extras[providerName] = schema.ToJSONSchema(extra)
	}

	return &RouteDescription{
		Path:          route.Path,
		Model:         route.Model,
		Description:   route.Description,
		Providers:     append([]string(nil), m.Providers...),
		StandardQuery: schema.ToJSONSchema(m.StandardQuery),
		ExtraQuery:    extras,
		DataSchema:    schema.ToJSONSchema(m.StandardData),
		MergedQuery:   schema.ToJSONSchema(m.MergedQuery),
	}, nil
}

// Providers summarizes every provider reachable through the tree: the
// models it serves and, when a credential reporter was configured, which
// of those require credentials.
func (r *Router) Providers() []provider.Record {
	r.mu.Lock()
	routes := make([]*Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	r.mu.Unlock()

	byName := make(map[string]*provider.Record)
	for _, route := range routes {
		for _, p := range route.surface.Providers {
			rec, ok := byName[p]
			if !ok {
				rec = &provider.Record{Name: p}
				byName[p] = rec
			}
			if !containsString(rec.Models, route.Model) {
				rec.Models = append(rec.Models, route.Model)
				if r.creds != nil && r.creds.RequiresCredentials(p, route.Model) {
					rec.RequiresCredentialsFor = append(rec.RequiresCredentialsFor, route.Model)
				}
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]provider.Record, 0, len(names))
	for _, name := range names {
		rec := byName[name]
		sort.Strings(rec.Models)
		sort.Strings(rec.RequiresCredentialsFor)
		out = append(out, *rec)
	}
	return out
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
