package style

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"folio/css"
)

// Flags describe a property registration.
type Flags uint16

const (
	Inherited Flags = 1 << iota
	Shorthand
	Custom
	// PresentationAttribute marks properties settable from SVG attributes.
	PresentationAttribute
	// Bogus marks synthesized registrations of unknown properties.
	Bogus
	// AllExcluded marks properties the all shorthand does not reset.
	AllExcluded
)

// Longhand is one declaration produced by expanding a shorthand.
type Longhand struct {
	Name  string
	Value []css.Token
}

// Registration describes how one property is parsed, stored and inherited.
// Registrations are immutable.
type Registration struct {
	Name  string
	Flags Flags
	// Err is the reason a bogus registration was synthesized.
	Err error
	// Longhands lists the properties a shorthand sets.
	Longhands []string

	initial func() any
	load    func(*SpecifiedValues) any
	store   func(*SpecifiedValues, any)
	inherit func(parent, child *SpecifiedValues)
	parse   func([]css.Token) (any, error)
	expand  func([]css.Token) ([]Longhand, error)
	format  func(any) string
}

// Is reports whether all flags in f are set.
func (r *Registration) Is(f Flags) bool { return r.Flags&f == f }

// Initial returns the initial value.
func (r *Registration) Initial() any {
	if r.initial == nil {
		return nil
	}
	return r.initial()
}

// Load returns the value currently held by sv.
func (r *Registration) Load(sv *SpecifiedValues) any {
	if r.load == nil {
		return nil
	}
	return r.load(sv)
}

// Inherit copies the parent's value into child.
func (r *Registration) Inherit(parent, child *SpecifiedValues) {
	if r.inherit != nil {
		r.inherit(parent, child)
	}
}

// Parse interprets declaration value tokens. CSS-wide keywords are handled
// by the cascade and never reach Parse.
func (r *Registration) Parse(toks []css.Token) (any, error) {
	if r.Is(Bogus) {
		return nil, r.Err
	}
	if r.parse == nil {
		return nil, fmt.Errorf("%s: cannot be parsed as a longhand", r.Name)
	}
	return r.parse(toks)
}

// Apply stores a parsed value. Only the group holding the property is
// cloned, and only if the value differs.
func (r *Registration) Apply(sv *SpecifiedValues, v any) {
	if r.Is(Shorthand) {
		panic("style: Apply called on shorthand " + r.Name)
	}
	if r.store != nil {
		r.store(sv, v)
	}
}

// Expand splits a shorthand value into longhand declarations. Longhands the
// value does not mention are reset to their initial value.
func (r *Registration) Expand(toks []css.Token) ([]Longhand, error) {
	if !r.Is(Shorthand) {
		panic("style: Expand called on longhand " + r.Name)
	}
	return r.expand(toks)
}

// Format renders a value of this property as CSS text.
func (r *Registration) Format(v any) string {
	if r.format == nil || v == nil {
		return ""
	}
	return r.format(v)
}

// longhand builds a registration for a property stored in field of group.
// V must be comparable so that Apply can skip cloning when nothing changes.
func longhand[G any, V comparable](
	name string, flags Flags,
	group func(*SpecifiedValues) *Cow[G], field func(*G) *V,
	initial V, parse func([]css.Token) (V, error), format func(V) string,
) *Registration {
	return &Registration{
		Name:    name,
		Flags:   flags,
		initial: func() any { return initial },
		load:    func(sv *SpecifiedValues) any { return *field(group(sv).Get()) },
		store:   func(sv *SpecifiedValues, v any) { setField(sv, group, field, v.(V)) },
		inherit: func(parent, child *SpecifiedValues) {
			pg, cg := group(parent), group(child)
			if cg.SameInstance(*pg) {
				return
			}
			setField(child, group, field, *field(pg.Get()))
		},
		parse: func(toks []css.Token) (any, error) {
			v, err := parse(toks)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
		format: func(v any) string { return format(v.(V)) },
	}
}

func setField[G any, V comparable](sv *SpecifiedValues, group func(*SpecifiedValues) *Cow[G], field func(*G) *V, v V) {
	g := group(sv)
	if *field(g.Get()) == v {
		return
	}
	*field(g.Mut()) = v
}

func stringer[V fmt.Stringer](v V) string { return v.String() }

// Registry maps property names to registrations.
type Registry struct {
	byName    map[string]*Registration
	aliases   map[string]string
	longhands []string
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := &Registry{byName: make(map[string]*Registration), aliases: legacyAliases}
	for _, reg := range longhandRegistrations() {
		r.add(reg)
		r.longhands = append(r.longhands, reg.Name)
	}
	slices.Sort(r.longhands)
	for _, reg := range shorthandRegistrations(r) {
		r.add(reg)
	}
	return r
})

// DefaultRegistry returns the process-wide registry of supported
// properties.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

func (r *Registry) add(reg *Registration) {
	if _, dup := r.byName[reg.Name]; dup {
		panic("style: duplicate registration of " + reg.Name)
	}
	r.byName[reg.Name] = reg
}

// legacy and vendor names rewritten to standard ones
var legacyAliases = map[string]string{
	"word-wrap":               "overflow-wrap",
	"grid-gap":                "gap",
	"grid-row-gap":            "row-gap",
	"grid-column-gap":         "column-gap",
	"-webkit-hyphens":         "hyphens",
	"-epub-hyphens":           "hyphens",
	"-moz-hyphens":            "hyphens",
	"-webkit-box-sizing":      "box-sizing",
	"-moz-box-sizing":         "box-sizing",
	"-webkit-text-fill-color": "color",
}

// Lookup returns the registration for name. Custom properties get a
// registration of their own; unknown names get a bogus one recording why.
func (r *Registry) Lookup(name string) *Registration {
	if strings.HasPrefix(name, "--") {
		return customRegistration(name)
	}
	name = strings.ToLower(name)
	if alias, ok := r.aliases[name]; ok {
		name = alias
	}
	if reg, ok := r.byName[name]; ok {
		return reg
	}
	return &Registration{Name: name, Flags: Bogus, Err: fmt.Errorf("unknown property %q", name)}
}

// Longhands returns the names of all longhand properties in sorted order.
func (r *Registry) Longhands() []string {
	return slices.Clone(r.longhands)
}

func customRegistration(name string) *Registration {
	return &Registration{
		Name:  name,
		Flags: Custom | Inherited | AllExcluded,
		load: func(sv *SpecifiedValues) any {
			v, ok := sv.custom[name]
			if !ok {
				return nil
			}
			return v
		},
		store: func(sv *SpecifiedValues, v any) {
			toks, _ := v.([]css.Token)
			if toks == nil {
				if _, ok := sv.custom[name]; ok {
					delete(sv.mutCustom(), name)
				}
				return
			}
			sv.mutCustom()[name] = toks
		},
		inherit: func(parent, child *SpecifiedValues) {
			if v, ok := parent.custom[name]; ok {
				child.mutCustom()[name] = v
			} else if _, ok := child.custom[name]; ok {
				delete(child.mutCustom(), name)
			}
		},
		parse: func(toks []css.Token) (any, error) {
			return append([]css.Token{}, css.Trim(toks)...), nil
		},
		format: func(v any) string {
			toks, _ := v.([]css.Token)
			return css.Normalize(toks)
		},
	}
}
