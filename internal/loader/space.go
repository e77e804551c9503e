package loader

import (
	"slices"
	"strings"

	"cuelang.org/go/cue"

	"github.com/afcarl/mcdp/internal/poset"
)

// topLiterals spell ⊤ in documents.
var topLiterals = []string{"top", "⊤"}

// parseSpace reads a space description.
func parseSpace(v cue.Value) (poset.Poset, error) {
	if !v.Exists() {
		return nil, loadErr(ErrCodeInvalidSpace, v.Pos(), "space is required")
	}
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidSpace, err)
		}
		return namedSpace(v, s)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidSpace, err)
		}
		var components []poset.Poset
		for iter.Next() {
			c, err := parseSpace(iter.Value())
			if err != nil {
				return nil, err
			}
			components = append(components, c)
		}
		return poset.NewProduct(components...), nil
	case cue.StructKind:
		return finiteSpace(v)
	}
	return nil, loadErr(ErrCodeInvalidSpace, v.Pos(), "space must be a name, a list or a finite poset")
}

func namedSpace(v cue.Value, s string) (poset.Poset, error) {
	switch s = strings.TrimSpace(s); s {
	case "Nat":
		return poset.Nat{}, nil
	case "Int":
		return poset.Int{}, nil
	case "Rcomp":
		return poset.Rcomp{}, nil
	}
	if unit, ok := strings.CutPrefix(s, "Rcomp["); ok && strings.HasSuffix(unit, "]") {
		sp, err := poset.NewRcompUnits(strings.TrimSuffix(unit, "]"))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidSpace, Message: err.Error(), Pos: v.Pos(), Err: err}
		}
		return sp, nil
	}
	return nil, loadErr(ErrCodeInvalidSpace, v.Pos(), "unknown space %q", s)
}

func finiteSpace(v cue.Value) (poset.Poset, error) {
	elements, err := stringList(v.LookupPath(cue.ParsePath("elements")), ErrCodeInvalidSpace)
	if err != nil {
		return nil, err
	}
	var relations [][2]string
	rels := v.LookupPath(cue.ParsePath("relations"))
	if rels.Exists() {
		iter, err := rels.List()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidSpace, err)
		}
		for iter.Next() {
			pair, err := stringList(iter.Value(), ErrCodeInvalidSpace)
			if err != nil {
				return nil, err
			}
			if len(pair) != 2 {
				return nil, loadErr(ErrCodeInvalidSpace, iter.Value().Pos(), "relation must be a pair [a, b]")
			}
			relations = append(relations, [2]string{pair[0], pair[1]})
		}
	}
	p, err := poset.NewFinitePoset(elements, relations)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidSpace, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return p, nil
}

// parsePoint reads a point of space p.
func parsePoint(p poset.Poset, v cue.Value) (poset.Point, error) {
	if !v.Exists() {
		return nil, loadErr(ErrCodeInvalidPoint, v.Pos(), "value is required")
	}
	if s, err := v.String(); err == nil && slices.Contains(topLiterals, s) {
		if _, err := p.Top(); err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidPoint, Message: err.Error(), Pos: v.Pos(), Err: err}
		}
		return poset.Top, nil
	}

	var x poset.Point
	var err error
	switch sp := p.(type) {
	case poset.Nat, poset.Int:
		x, err = v.Int64()
	case poset.Rcomp, poset.RcompUnits:
		x, err = v.Float64()
	case *poset.FinitePoset:
		x, err = v.String()
	case poset.Product:
		x, err = tuple(sp, v)
	default:
		return nil, loadErr(ErrCodeInvalidPoint, v.Pos(), "cannot read points of %s", p)
	}
	if err != nil {
		return nil, fromCUE(ErrCodeInvalidPoint, err)
	}
	if err := p.Belongs(x); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidPoint, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return x, nil
}

func tuple(p poset.Product, v cue.Value) (poset.Point, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	out := poset.Tuple{}
	i := 0
	for iter.Next() {
		if i >= p.Len() {
			return nil, loadErr(ErrCodeInvalidPoint, v.Pos(), "expected %d components", p.Len())
		}
		x, err := parsePoint(p.Components[i], iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, x)
		i++
	}
	if i != p.Len() {
		return nil, loadErr(ErrCodeInvalidPoint, v.Pos(), "expected %d components, got %d", p.Len(), i)
	}
	return out, nil
}

func stringList(v cue.Value, code string) ([]string, error) {
	if !v.Exists() {
		return nil, loadErr(code, v.Pos(), "list of names is required")
	}
	iter, err := v.List()
	if err != nil {
		return nil, fromCUE(code, err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, fromCUE(code, err)
		}
		out = append(out, s)
	}
	return out, nil
}
