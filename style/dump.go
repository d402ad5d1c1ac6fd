package style

import (
	"sort"

	"github.com/maruel/natural"

	"folio/css"
)

// Property is a formatted property value.
type Property struct {
	Name  string
	Value string
}

// Get formats the value of a longhand or custom property held by sv.
func (r *Registry) Get(sv *SpecifiedValues, name string) (string, bool) {
	reg := r.Lookup(name)
	if reg.Is(Bogus) || reg.Is(Shorthand) {
		return "", false
	}
	v := reg.Load(sv)
	if v == nil {
		return "", false
	}
	return reg.Format(v), true
}

// Diff lists the longhands whose value in sv differs from base, followed by
// the custom properties of sv. A nil base compares against initial values.
func (r *Registry) Diff(sv, base *SpecifiedValues) []Property {
	if base == nil {
		base = initialValues()
	}
	var out []Property
	for _, name := range r.longhands {
		reg := r.byName[name]
		if v := reg.Load(sv); v != reg.Load(base) {
			out = append(out, Property{Name: name, Value: reg.Format(v)})
		}
	}
	names := sv.CustomNames()
	sort.Sort(natural.StringSlice(names))
	for _, name := range names {
		out = append(out, Property{Name: name, Value: css.Normalize(sv.custom[name])})
	}
	return out
}
