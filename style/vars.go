package style

import (
	"slices"

	"folio/css"
)

// maxVarDepth bounds fallback nesting in var() substitution.
const maxVarDepth = 32

func containsVar(toks []css.Token) bool {
	return slices.ContainsFunc(toks, func(t css.Token) bool {
		return t.Kind == css.Function && t.FuncName() == "var"
	})
}

// substitute replaces var() references using lookup. It fails when a
// reference has neither a value nor a fallback.
func substitute(toks []css.Token, lookup func(string) ([]css.Token, bool), depth int) ([]css.Token, bool) {
	if depth > maxVarDepth {
		return nil, false
	}
	out := make([]css.Token, 0, len(toks))
	for i := 0; i < len(toks); {
		t := toks[i]
		if t.Kind != css.Function || t.FuncName() != "var" {
			out = append(out, t)
			i++
			continue
		}
		args, next := funcArgs(toks, i)
		i = next
		name, fallback, hasFallback := splitVarArgs(args)
		if name == "" {
			return nil, false
		}
		if v, ok := lookup(name); ok {
			out = append(out, v...)
			continue
		}
		if !hasFallback {
			return nil, false
		}
		v, ok := substitute(fallback, lookup, depth+1)
		if !ok {
			return nil, false
		}
		out = append(out, v...)
	}
	return out, true
}

func splitVarArgs(args []css.Token) (name string, fallback []css.Token, ok bool) {
	for i, t := range args {
		if t.Kind == css.Comma {
			fallback, ok = css.Trim(args[i+1:]), true
			args = args[:i]
			break
		}
	}
	first, err := single(args)
	if err != nil || first.Kind != css.Ident || len(first.Text) < 3 || first.Text[:2] != "--" {
		return "", nil, false
	}
	return first.Text, fallback, ok
}

// resolveCustom substitutes var() inside custom property values. Properties
// taking part in a reference cycle, or referring to missing properties
// without fallback, become guaranteed-invalid and are removed.
func (c *Computer) resolveCustom(sv *SpecifiedValues) {
	var pending []string
	for name, v := range sv.custom {
		if containsVar(v) {
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return
	}
	slices.Sort(pending)

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(pending))
	var visit func(name string) bool
	visit = func(name string) bool {
		switch state[name] {
		case visiting:
			return false
		case done:
			_, ok := sv.custom[name]
			return ok
		}
		v, ok := sv.custom[name]
		if !ok {
			return false
		}
		if !containsVar(v) {
			state[name] = done
			return true
		}
		state[name] = visiting
		out, ok := substitute(v, func(ref string) ([]css.Token, bool) {
			if !visit(ref) {
				return nil, false
			}
			return sv.custom[ref], true
		}, 0)
		state[name] = done
		if !ok {
			delete(sv.mutCustom(), name)
			return false
		}
		sv.mutCustom()[name] = out
		return true
	}
	for _, name := range pending {
		visit(name)
	}
}
