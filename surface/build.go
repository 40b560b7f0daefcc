package surface

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/fogfish/opts"
	"golang.org/x/sync/errgroup"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/registry"
	"github.com/finquery/finquery/schema"
)

// Builder holds the build-phase configuration.
type Builder struct {
	// FatalWarnings promotes merge warnings to SchemaErrors.
	FatalWarnings bool

	// Concurrency bounds how many models are derived at once. Zero
	// means one goroutine per model.
	Concurrency int

	// Prevents unkeyed literals
	_ struct{}
}

// Option configures the builder.
type Option = opts.Option[Builder]

var (
	// WithFatalWarnings aborts the build on the first merge warning.
	WithFatalWarnings = opts.ForName[Builder, bool]("FatalWarnings")

	// WithConcurrency bounds the build parallelism.
	WithConcurrency = opts.ForName[Builder, int]("Concurrency")
)

// Build derives the full provider interface from the schema registry and
// freezes the registry. Violations of the standard-schema invariants are
// SchemaErrors and abort startup.
func Build(reg *registry.Schemas, options ...Option) (*Interface, error) {
	var b Builder
	if err := opts.Apply(&b, options); err != nil {
		return nil, err
	}

	models := reg.Models()
	out := &Interface{models: make(map[string]*Model, len(models))}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if b.Concurrency > 0 {
		g.SetLimit(b.Concurrency)
	}

	for _, name := range models {
		g.Go(func() error {
			derived, warnings, err := deriveModel(reg, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out.models[name] = derived
			out.warnings = append(out.warnings, warnings...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.order = models
	sort.Slice(out.warnings, func(i, j int) bool {
		if out.warnings[i].Category != out.warnings[j].Category {
			return out.warnings[i].Category < out.warnings[j].Category
		}
		return out.warnings[i].Message < out.warnings[j].Message
	})

	if b.FatalWarnings && len(out.warnings) > 0 {
		w := out.warnings[0]
		return nil, api.SchemaErrorf("strict build: %s", w)
	}

	for _, w := range out.warnings {
		slog.Warn("provider interface merge", slog.String("category", w.Category), slog.String("detail", w.Message))
	}

	reg.Freeze()
	return out, nil
}

func deriveModel(reg *registry.Schemas, name string) (*Model, []api.Warning, error) {
	providers := reg.ProvidersFor(name)
	if len(providers) == 0 {
		return nil, nil, api.SchemaErrorf("model %s has no providers", name)
	}

	stdQuery, stdData, err := reg.Lookup(provider.Standard, name)
	if err != nil {
		return nil, nil, api.SchemaErrorf("model %s has no standard schemas under %q", name, provider.Standard)
	}
	flatStdQuery := schema.FlattenSchema(stdQuery)

	m := &Model{
		Name:          name,
		Description:   modelDescription(stdQuery, stdData),
		StandardQuery: flatStdQuery,
		StandardData:  stdData.Clone(),
		FlatQuery:     make(map[string]*schema.Schema, len(providers)),
		ExtraQuery:    make(map[string]*schema.Schema, len(providers)),
		ExtraData:     make(map[string]*schema.Schema, len(providers)),
		Providers:     providers,
	}

	queryExtras := make([]providerSchema, 0, len(providers))
	dataExtras := make([]providerSchema, 0, len(providers))

	for _, p := range providers {
		query, data, err := reg.Lookup(p, name)
		if err != nil {
			return nil, nil, err
		}
		flatQuery := schema.FlattenSchema(query)
		m.FlatQuery[p] = flatQuery

		if err := checkStandardQuery(name, p, flatStdQuery, flatQuery); err != nil {
			return nil, nil, err
		}
		if err := checkDataIntersection(name, p, stdData, data); err != nil {
			return nil, nil, err
		}

		extraQ := subtract(flatQuery, flatStdQuery, fmt.Sprintf("%s.%s.ExtraQuery", name, p))
		extraD := subtract(data, stdData, fmt.Sprintf("%s.%s.ExtraData", name, p))
		m.ExtraQuery[p] = extraQ
		m.ExtraData[p] = extraD
		queryExtras = append(queryExtras, providerSchema{provider: p, schema: extraQ})
		dataExtras = append(dataExtras, providerSchema{provider: p, schema: extraD})
	}

	var warnings []api.Warning
	m.MergedQuery, warnings = mergeExtras(name, flatStdQuery.Rename(name+".MergedQuery", flatStdQuery.Description()), queryExtras)

	var dataWarnings []api.Warning
	m.MergedData, dataWarnings = mergeExtras(name, stdData.Rename(name+".MergedData", stdData.Description()), dataExtras)
	warnings = append(warnings, dataWarnings...)

	return m, warnings, nil
}

func modelDescription(query, data *schema.Schema) string {
	if data.Description() != "" {
		return data.Description()
	}
	return query.Description()
}

// checkStandardQuery enforces that every standard query field appears in
// the provider's query schema with the same semantic type and default.
func checkStandardQuery(model, providerName string, std, prov *schema.Schema) error {
	for f := range std.Fields() {
		pf, ok := prov.Field(f.Name)
		if !ok {
			return api.SchemaErrorf("model %s: provider %s is missing standard query field %q", model, providerName, f.Name)
		}
		if !pf.Type.Equal(f.Type) {
			return api.SchemaErrorf("model %s: provider %s declares standard query field %q as %s, standard says %s",
				model, providerName, f.Name, pf.Type, f.Type)
		}
		if pf.HasDefault != f.HasDefault || !reflect.DeepEqual(pf.Default, f.Default) {
			return api.SchemaErrorf("model %s: provider %s declares standard query field %q with default %v, standard says %v",
				model, providerName, f.Name, pf.Default, f.Default)
		}
	}
	return nil
}

// checkDataIntersection enforces the intersection rule: every field of
// the declared standard data schema must exist in the provider's data
// schema.
func checkDataIntersection(model, providerName string, std, prov *schema.Schema) error {
	for f := range std.Fields() {
		if !prov.Has(f.Name) {
			return api.SchemaErrorf("model %s: provider %s is missing standard data field %q", model, providerName, f.Name)
		}
	}
	return nil
}

// subtract returns the fields of a that are not declared in b.
func subtract(a, b *schema.Schema, name string) *schema.Schema {
	out := schema.New(name, a.Description())
	for f := range a.Fields() {
		if !b.Has(f.Name) {
			out.Set(f)
		}
	}
	return out
}
