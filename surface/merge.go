package surface

import (
	"fmt"
	"strings"

	"github.com/finquery/finquery/api"
	"github.com/finquery/finquery/schema"
)

type providerSchema struct {
	provider string
	schema   *schema.Schema
}

type mergeEntry struct {
	field     schema.Field
	providers []string
	descs     []string
}

// mergeExtras folds the per-provider extra schemas into base. Fields that
// appear under the same name for several providers keep their type when
// the types agree; disagreeing types become a tagged union and record a
// warning. Descriptions concatenate per provider. Conflicting
// multiple_items_allowed hints resolve to the permissive value with a
// warning.
func mergeExtras(model string, base *schema.Schema, extras []providerSchema) (*schema.Schema, []api.Warning) {
	var (
		warnings []api.Warning
		order    []string
		index    = make(map[string]*mergeEntry)
	)

	for _, ps := range extras {
		for f := range ps.schema.Fields() {
			entry, seen := index[f.Name]
			if !seen {
				e := &mergeEntry{
					field:     f,
					providers: []string{ps.provider},
					descs:     []string{ps.provider + ": " + f.Description},
				}
				index[f.Name] = e
				order = append(order, f.Name)
				continue
			}

			if !entry.field.Type.Equal(f.Type) {
				warnings = append(warnings, api.Warning{
					Category: api.WarnTypeUnion,
					Message: fmt.Sprintf("model %s: field %q is %s for %s but %s for %s, merged as a union",
						model, f.Name, entry.field.Type, strings.Join(entry.providers, ","), f.Type, ps.provider),
				})
				entry.field.Type = schema.UnionOf(entry.field.Type, f.Type)
			}

			if f.Hints.MultipleItemsAllowed != entry.field.Hints.MultipleItemsAllowed {
				// prefer the permissive value
				entry.field.Hints.MultipleItemsAllowed = true
				warnings = append(warnings, api.Warning{
					Category: api.WarnHintMerge,
					Message: fmt.Sprintf("model %s: field %q has conflicting multiple_items_allowed hints across %s and %s, using true",
						model, f.Name, strings.Join(entry.providers, ","), ps.provider),
				})
			}
			if f.Hints.UnitMeasurement != "" && entry.field.Hints.UnitMeasurement == "" {
				entry.field.Hints.UnitMeasurement = f.Hints.UnitMeasurement
			}
			if len(f.Hints.Choices) > 0 {
				entry.field.Hints.Choices = unionStrings(entry.field.Hints.Choices, f.Hints.Choices)
			}

			entry.providers = append(entry.providers, ps.provider)
			entry.descs = append(entry.descs, ps.provider+": "+f.Description)
		}
	}

	merged := base.Clone()
	for _, name := range order {
		entry := index[name]
		f := entry.field
		f.Providers = entry.providers
		f.Description = "Available for providers: " + strings.Join(entry.descs, "; ")
		merged.Set(f)
	}
	return merged, warnings
}

func unionStrings(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, s := range b {
		found := false
		for _, existing := range out {
			if existing == s {
				found = true
				break
			}
		}
		if !found {
			out = append(out, s)
		}
	}
	return out
}
