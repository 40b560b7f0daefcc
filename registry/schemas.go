// Package registry holds the two process-wide registries: provider
// schemas per model, and fetchers per (provider, model). Registration
// happens at plugin load; the build phase freezes both registries, after
// which they are read-only and safe to share across calls.
package registry

import (
	"sort"
	"sync"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/internal/registry"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/schema"
)

// SchemaPair is the declarative surface one provider registers for one
// model.
type SchemaPair struct {
	Provider string
	Model    string
	Query    *schema.Schema
	Data     *schema.Schema
}

// Schemas maps (provider, model) to the registered schema pair and keeps
// the per-model provider order (insertion order, deduplicated), which is
// the default priority when none is configured.
type Schemas struct {
	pairs registry.Registry[SchemaPair]

	mu      sync.Mutex
	byModel map[string][]string // model -> providers in registration order
	frozen  bool
}

// NewSchemas builds an empty schema registry.
func NewSchemas() *Schemas {
	return &Schemas{
		pairs:   registry.New[SchemaPair](),
		byModel: make(map[string][]string),
	}
}

func key(providerName, model string) string {
	return providerName + "/" + model
}

// Register stores the query/data pair for (provider, model). Duplicate
// registrations, registrations after freeze, and field names containing
// the reserved nested-alias separator are SchemaErrors.
func (s *Schemas) Register(providerName, model string, query, data *schema.Schema) error {
	if providerName == "" || model == "" {
		return api.SchemaErrorf("provider and model names cannot be empty")
	}
	if query == nil || data == nil {
		return api.SchemaErrorf("%s/%s: query and data schemas are both required", providerName, model)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.frozen {
		return api.SchemaErrorf("registry is frozen, cannot register %s/%s", providerName, model)
	}
	if _, exists := s.pairs.Get(key(providerName, model)); exists {
		return api.SchemaErrorf("duplicate registration for %s/%s", providerName, model)
	}

	s.pairs.Add(key(providerName, model), SchemaPair{
		Provider: providerName,
		Model:    model,
		Query:    query,
		Data:     data,
	})
	s.byModel[model] = append(s.byModel[model], providerName)
	return nil
}

// Lookup returns the schema pair registered for (provider, model).
func (s *Schemas) Lookup(providerName, model string) (*schema.Schema, *schema.Schema, error) {
	pair, ok := s.pairs.Get(key(providerName, model))
	if !ok {
		return nil, nil, api.SchemaErrorf("no schemas registered for %s/%s", providerName, model)
	}
	return pair.Query, pair.Data, nil
}

// Has reports whether (provider, model) is registered.
func (s *Schemas) Has(providerName, model string) bool {
	_, ok := s.pairs.Get(key(providerName, model))
	return ok
}

// ProvidersFor returns the providers registered for model in insertion
// order, excluding the synthetic standard handle.
func (s *Schemas) ProvidersFor(model string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, p := range s.byModel[model] {
		if p != provider.Standard {
			out = append(out, p)
		}
	}
	return out
}

// Models returns every registered model name, sorted.
func (s *Schemas) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.byModel))
	for m := range s.byModel {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Freeze ends the registration phase. After Freeze the registry is
// read-only; further Register calls fail.
func (s *Schemas) Freeze() {
	s.mu.Lock()
	s.frozen = true
	s.mu.Unlock()
}

// Frozen reports whether the registration phase has ended.
func (s *Schemas) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}
