package loader

import (
	"cuelang.org/go/cue"

	"github.com/afcarl/mcdp/internal/dp"
	"github.com/afcarl/mcdp/internal/poset"
)

// leafBuilder compiles the parameters of one leaf type.
type leafBuilder func(v cue.Value, u *poset.TypesUniverse) (dp.DP, error)

var leafBuilders = map[string]leafBuilder{
	"Identity":   buildIdentity,
	"Constant":   buildConstant,
	"Limit":      buildLimit,
	"Catalogue":  buildCatalogue,
	"SumNat":     buildSumNat,
	"ScaleNat":   buildScaleNat,
	"SplitNat":   buildSplitNat,
	"Conversion": buildConversion,
}

// compileLeaf reads a {type: ..., ...} leaf description.
func compileLeaf(v cue.Value, u *poset.TypesUniverse) (dp.DP, error) {
	typ, err := field(v, "type").String()
	if err != nil {
		return nil, fromCUE(ErrCodeUnknownDP, err)
	}
	build, ok := leafBuilders[typ]
	if !ok {
		return nil, loadErr(ErrCodeUnknownDP, v.Pos(), "unknown dp type %q", typ)
	}
	d, err := build(v, u)
	if err != nil {
		if IsLoadError(err, "") {
			return nil, err
		}
		return nil, &LoadError{Code: ErrCodeInvalidDP, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return d, nil
}

func field(v cue.Value, name string) cue.Value {
	return v.LookupPath(cue.ParsePath(name))
}

func buildIdentity(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	p, err := parseSpace(field(v, "space"))
	if err != nil {
		return nil, err
	}
	return dp.NewIdentity(p), nil
}

func buildConstant(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	p, err := parseSpace(field(v, "space"))
	if err != nil {
		return nil, err
	}
	x, err := parsePoint(p, field(v, "value"))
	if err != nil {
		return nil, err
	}
	return dp.NewConstant(p, x)
}

func buildLimit(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	p, err := parseSpace(field(v, "space"))
	if err != nil {
		return nil, err
	}
	x, err := parsePoint(p, field(v, "value"))
	if err != nil {
		return nil, err
	}
	return dp.NewLimit(p, x)
}

func buildCatalogue(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	f, err := parseSpace(field(v, "fun"))
	if err != nil {
		return nil, err
	}
	r, err := parseSpace(field(v, "res"))
	if err != nil {
		return nil, err
	}
	iter, err := field(v, "entries").List()
	if err != nil {
		return nil, fromCUE(ErrCodeInvalidDP, err)
	}
	var entries []dp.Entry
	for iter.Next() {
		ev := iter.Value()
		name, err := field(ev, "name").String()
		if err != nil {
			return nil, fromCUE(ErrCodeInvalidDP, err)
		}
		fx, err := parsePoint(f, field(ev, "f"))
		if err != nil {
			return nil, err
		}
		rx, err := parsePoint(r, field(ev, "r"))
		if err != nil {
			return nil, err
		}
		entries = append(entries, dp.Entry{Name: name, F: fx, R: rx})
	}
	return dp.NewCatalogue(f, r, entries)
}

func buildSumNat(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	n, err := field(v, "n").Int64()
	if err != nil {
		return nil, fromCUE(ErrCodeInvalidDP, err)
	}
	return dp.NewSumNat(int(n))
}

func buildScaleNat(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	k, err := field(v, "k").Int64()
	if err != nil {
		return nil, fromCUE(ErrCodeInvalidDP, err)
	}
	return dp.NewScaleNat(k)
}

func buildSplitNat(v cue.Value, _ *poset.TypesUniverse) (dp.DP, error) {
	n, err := field(v, "n").Int64()
	if err != nil {
		return nil, fromCUE(ErrCodeInvalidDP, err)
	}
	return dp.NewSplitNat(int(n))
}

func buildConversion(v cue.Value, u *poset.TypesUniverse) (dp.DP, error) {
	from, err := parseSpace(field(v, "from"))
	if err != nil {
		return nil, err
	}
	to, err := parseSpace(field(v, "to"))
	if err != nil {
		return nil, err
	}
	return dp.NewConversion(u, from, to)
}
