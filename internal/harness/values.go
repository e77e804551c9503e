package harness

import (
	"fmt"
	"math"

	"github.com/afcarl/mcdp/internal/poset"
)

// toPoint converts a decoded YAML value into a point of p.
func toPoint(p poset.Poset, v any) (poset.Point, error) {
	if s, ok := v.(string); ok && (s == "top" || s == "⊤") {
		if err := p.Belongs(poset.Top); err != nil {
			return nil, err
		}
		return poset.Top, nil
	}
	var x poset.Point
	switch sp := p.(type) {
	case poset.Nat, poset.Int:
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("%s expects an integer, got %v", p, v)
		}
		x = int64(n)
	case poset.Rcomp, poset.RcompUnits:
		switch f := v.(type) {
		case int:
			x = float64(f)
		case float64:
			if math.IsInf(f, 1) {
				return poset.Top, nil
			}
			x = f
		default:
			return nil, fmt.Errorf("%s expects a number, got %v", p, v)
		}
	case *poset.FinitePoset:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s expects an element name, got %v", p, v)
		}
		x = s
	case poset.Product:
		list, ok := v.([]any)
		if !ok || len(list) != sp.Len() {
			return nil, fmt.Errorf("%s expects a list of %d values, got %v", p, sp.Len(), v)
		}
		t := make(poset.Tuple, len(list))
		for i, item := range list {
			c, err := toPoint(sp.Components[i], item)
			if err != nil {
				return nil, err
			}
			t[i] = c
		}
		x = t
	default:
		return nil, fmt.Errorf("cannot read points of %s", p)
	}
	if err := p.Belongs(x); err != nil {
		return nil, err
	}
	return x, nil
}

func toPoints(p poset.Poset, vs []any) ([]poset.Point, error) {
	out := make([]poset.Point, len(vs))
	for i, v := range vs {
		x, err := toPoint(p, v)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}
