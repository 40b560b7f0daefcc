package registry

import (
	"sync"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/internal/registry"
	"github.com/finquery/finquery/provider"
)

// Fetchers maps (provider, model) to the Fetcher serving it. Every
// registration must be backed by a schema pair already present in the
// schema registry.
type Fetchers struct {
	schemas  *Schemas
	fetchers registry.Registry[provider.Fetcher]

	mu     sync.Mutex
	frozen bool
}

// NewFetchers builds a fetcher registry validated against schemas.
func NewFetchers(schemas *Schemas) *Fetchers {
	return &Fetchers{
		schemas:  schemas,
		fetchers: registry.New[provider.Fetcher](),
	}
}

// Register stores the fetcher for (provider, model). A fetcher without
// matching schemas is a SchemaError, as is a duplicate or a registration
// after freeze.
func (f *Fetchers) Register(providerName, model string, fetcher provider.Fetcher) error {
	if fetcher == nil {
		return api.SchemaErrorf("%s/%s: fetcher cannot be nil", providerName, model)
	}
	if !f.schemas.Has(providerName, model) {
		return api.SchemaErrorf("no schemas registered for %s/%s, register schemas before the fetcher", providerName, model)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.frozen {
		return api.SchemaErrorf("registry is frozen, cannot register fetcher for %s/%s", providerName, model)
	}
	if _, exists := f.fetchers.Get(key(providerName, model)); exists {
		return api.SchemaErrorf("duplicate fetcher registration for %s/%s", providerName, model)
	}
	f.fetchers.Add(key(providerName, model), fetcher)
	return nil
}

// Lookup returns the fetcher registered for (provider, model).
func (f *Fetchers) Lookup(providerName, model string) (provider.Fetcher, error) {
	fetcher, ok := f.fetchers.Get(key(providerName, model))
	if !ok {
		return nil, api.ProviderErrorf(providerName, nil, "no fetcher registered for model %s", model)
	}
	return fetcher, nil
}

// RequiresCredentials reports whether the fetcher for (provider, model)
// declares a credential requirement. Unknown pairs report false.
func (f *Fetchers) RequiresCredentials(providerName, model string) bool {
	fetcher, ok := f.fetchers.Get(key(providerName, model))
	return ok && fetcher.RequiresCredentials()
}

// Has reports whether a fetcher is registered for (provider, model).
func (f *Fetchers) Has(providerName, model string) bool {
	_, ok := f.fetchers.Get(key(providerName, model))
	return ok
}

// Freeze ends the registration phase.
func (f *Fetchers) Freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}
