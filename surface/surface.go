// Package surface derives the provider-agnostic typed interface from the
// schema registry: per model the standard query/data schemas, the
// per-provider extras, the merged introspection schemas and the provider
// choices. It runs once at startup; the result is immutable and consumed
// by the router and the executor.
package surface

import (
	"slices"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/schema"
)

// Model is the derived surface for one model name.
type Model struct {
	// Name is the stable model name, e.g. EquityHistorical.
	Name string

	// Description comes from the standard schemas and is what routes
	// bound to this model report.
	Description string

	// StandardQuery and StandardData are the schemas registered under
	// the reference handle, with nested query objects flattened.
	StandardQuery *schema.Schema
	StandardData  *schema.Schema

	// FlatQuery holds each provider's full query schema with nested
	// objects flattened. The executor validates the filtered parameter
	// map against it before handing off to the fetcher.
	FlatQuery map[string]*schema.Schema

	// ExtraQuery and ExtraData hold, per provider, the fields above the
	// standard schemas.
	ExtraQuery map[string]*schema.Schema
	ExtraData  map[string]*schema.Schema

	// Providers is the finite choice set for the model, in registration
	// order. The first entry is the default when no priority is
	// configured.
	Providers []string

	// MergedQuery is StandardQuery plus the union of all extras, each
	// extra field annotated with the providers accepting it. Used for
	// introspection and for call-surface validation before a provider
	// is chosen.
	MergedQuery *schema.Schema

	// MergedData is StandardData plus the union of all data extras.
	// Descriptive only; it never validates a call.
	MergedData *schema.Schema
}

// HasProvider reports whether name serves this model.
func (m *Model) HasProvider(name string) bool {
	return slices.Contains(m.Providers, name)
}

// Interface is the full derived surface, one entry per model.
type Interface struct {
	models   map[string]*Model
	order    []string
	warnings []api.Warning
}

// Model returns the derived surface for name.
func (i *Interface) Model(name string) (*Model, bool) {
	m, ok := i.models[name]
	return m, ok
}

// Models returns the model names, sorted.
func (i *Interface) Models() []string {
	return slices.Clone(i.order)
}

// Warnings returns the observations recorded while merging, such as
// extra fields that required a type union. Build-time warnings are not
// fatal unless the builder was configured strict.
func (i *Interface) Warnings() []api.Warning {
	return slices.Clone(i.warnings)
}
