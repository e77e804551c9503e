package dp

import (
	"fmt"

	"github.com/afcarl/mcdp/internal/poset"
)

// Entry is one named implementation in a Catalogue: it provides up to F and
// requires R.
type Entry struct {
	Name string
	F    poset.Point
	R    poset.Point
}

// Catalogue is a finite table of implementations.
type Catalogue struct {
	F, R    poset.Poset
	entries []Entry
	names   poset.FiniteSet
}

// NewCatalogue validates entries and builds the catalogue. Names must be
// unique and non-empty.
func NewCatalogue(f, r poset.Poset, entries []Entry) (*Catalogue, error) {
	names := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		where := "Catalogue/" + e.Name
		if e.Name == "" {
			return nil, NewStructureError(ErrCodeInvalidValue, "Catalogue", "entry with empty name", nil)
		}
		if seen[e.Name] {
			return nil, NewStructureError(ErrCodeInvalidValue, where, "duplicate entry name", nil)
		}
		seen[e.Name] = true
		if err := f.Belongs(e.F); err != nil {
			return nil, NewStructureError(ErrCodeInvalidValue, where, "functionality outside F", err)
		}
		if err := r.Belongs(e.R); err != nil {
			return nil, NewStructureError(ErrCodeInvalidValue, where, "resource outside R", err)
		}
		names = append(names, e.Name)
	}
	return &Catalogue{
		F:       f,
		R:       r,
		entries: append([]Entry(nil), entries...),
		names:   poset.NewFiniteSet(names...),
	}, nil
}

func (d *Catalogue) String() string {
	return fmt.Sprintf("Catalogue(%s→%s, %d entries)", d.F, d.R, len(d.entries))
}

func (d *Catalogue) FunSpace() poset.Poset { return d.F }
func (d *Catalogue) ResSpace() poset.Poset { return d.R }
func (d *Catalogue) ImpSpace() poset.Space { return d.names }

// Entries returns a copy of the table.
func (d *Catalogue) Entries() []Entry { return append([]Entry(nil), d.entries...) }

func (d *Catalogue) Solve(_ *Context, f poset.Point) (poset.UpperSet, error) {
	var out []poset.Point
	for _, e := range d.entries {
		if d.F.Leq(f, e.F) {
			out = append(out, e.R)
		}
	}
	return poset.UpperSetFrom(d.R, out), nil
}

func (d *Catalogue) SolveR(_ *Context, r poset.Point) (poset.LowerSet, error) {
	var out []poset.Point
	for _, e := range d.entries {
		if d.R.Leq(e.R, r) {
			out = append(out, e.F)
		}
	}
	return poset.LowerSetFrom(d.F, out), nil
}

func (d *Catalogue) Evaluate(_ *Context, m poset.Point) (poset.LowerSet, poset.UpperSet, error) {
	if err := d.names.Belongs(m); err != nil {
		return poset.LowerSet{}, poset.UpperSet{}, err
	}
	for _, e := range d.entries {
		if e.Name == m {
			return poset.PrincipalLower(d.F, e.F), poset.Principal(d.R, e.R), nil
		}
	}
	return poset.LowerSet{}, poset.UpperSet{}, fmt.Errorf("%s: no entry %v", d, m)
}

func (d *Catalogue) Implementations(_ *Context, f, r poset.Point) ([]poset.Point, error) {
	ws := NewWitnessSet()
	for _, e := range d.entries {
		if d.F.Leq(f, e.F) && d.R.Leq(e.R, r) {
			ws.Add(e.Name)
		}
	}
	if ws.Len() == 0 {
		return nil, notFeasible(d, f, r)
	}
	return ws.Points(), nil
}

func (d *Catalogue) NormalForm(*Context) (NormalForm, error) {
	return StatelessNormalForm(d), nil
}
