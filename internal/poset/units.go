package poset

import (
	"fmt"
	"sort"
	"strings"
)

// Dimension holds the exponents of the base quantities of a unit.
type Dimension struct {
	Length, Time, Mass, Current, Currency int8
}

// Dimensionless is the zero dimension.
var Dimensionless = Dimension{}

func (d Dimension) String() string {
	var parts []string
	add := func(name string, e int8) {
		switch e {
		case 0:
		case 1:
			parts = append(parts, name)
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", name, e))
		}
	}
	add("L", d.Length)
	add("T", d.Time)
	add("M", d.Mass)
	add("I", d.Current)
	add("$", d.Currency)
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "·")
}

// Unit is a named multiple of a dimension. Factor converts one unit into the
// coherent base unit of its dimension (e.g. km has factor 1000).
type Unit struct {
	Symbol string
	Dim    Dimension
	Factor float64
}

var (
	dimLength   = Dimension{Length: 1}
	dimTime     = Dimension{Time: 1}
	dimMass     = Dimension{Mass: 1}
	dimEnergy   = Dimension{Mass: 1, Length: 2, Time: -2}
	dimPower    = Dimension{Mass: 1, Length: 2, Time: -3}
	dimSpeed    = Dimension{Length: 1, Time: -1}
	dimCharge   = Dimension{Current: 1, Time: 1}
	dimCurrency = Dimension{Currency: 1}
)

var unitTable = map[string]Unit{
	"":     {Symbol: "", Dim: Dimensionless, Factor: 1},
	"mm":   {Symbol: "mm", Dim: dimLength, Factor: 1e-3},
	"cm":   {Symbol: "cm", Dim: dimLength, Factor: 1e-2},
	"m":    {Symbol: "m", Dim: dimLength, Factor: 1},
	"km":   {Symbol: "km", Dim: dimLength, Factor: 1e3},
	"s":    {Symbol: "s", Dim: dimTime, Factor: 1},
	"min":  {Symbol: "min", Dim: dimTime, Factor: 60},
	"h":    {Symbol: "h", Dim: dimTime, Factor: 3600},
	"g":    {Symbol: "g", Dim: dimMass, Factor: 1e-3},
	"kg":   {Symbol: "kg", Dim: dimMass, Factor: 1},
	"J":    {Symbol: "J", Dim: dimEnergy, Factor: 1},
	"kJ":   {Symbol: "kJ", Dim: dimEnergy, Factor: 1e3},
	"Wh":   {Symbol: "Wh", Dim: dimEnergy, Factor: 3600},
	"kWh":  {Symbol: "kWh", Dim: dimEnergy, Factor: 3.6e6},
	"W":    {Symbol: "W", Dim: dimPower, Factor: 1},
	"kW":   {Symbol: "kW", Dim: dimPower, Factor: 1e3},
	"m/s":  {Symbol: "m/s", Dim: dimSpeed, Factor: 1},
	"km/h": {Symbol: "km/h", Dim: dimSpeed, Factor: 1e3 / 3600},
	"C":    {Symbol: "C", Dim: dimCharge, Factor: 1},
	"Ah":   {Symbol: "Ah", Dim: dimCharge, Factor: 3600},
	"USD":  {Symbol: "USD", Dim: dimCurrency, Factor: 1},
}

// ParseUnit looks up a unit symbol.
func ParseUnit(symbol string) (Unit, error) {
	u, ok := unitTable[strings.TrimSpace(symbol)]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q (known: %s)", symbol, strings.Join(KnownUnits(), ", "))
	}
	return u, nil
}

// MustUnit is ParseUnit for unit symbols known at compile time.
func MustUnit(symbol string) Unit {
	u, err := ParseUnit(symbol)
	if err != nil {
		panic(err)
	}
	return u
}

// KnownUnits returns the sorted unit symbols.
func KnownUnits() []string {
	out := make([]string, 0, len(unitTable))
	for s := range unitTable {
		if s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// RcompUnits is Rcomp measured in a unit. Two RcompUnits spaces with the same
// dimension are order-isomorphic through a scale conversion; see TypesUniverse.
type RcompUnits struct {
	Unit Unit
}

// NewRcompUnits returns Rcomp measured in the named unit.
func NewRcompUnits(symbol string) (RcompUnits, error) {
	u, err := ParseUnit(symbol)
	if err != nil {
		return RcompUnits{}, err
	}
	return RcompUnits{Unit: u}, nil
}

func (r RcompUnits) String() string {
	if r.Unit.Symbol == "" {
		return "Rcomp[]"
	}
	return "Rcomp[" + r.Unit.Symbol + "]"
}

func (r RcompUnits) Belongs(x Point) error { return belongsRcomp(r, x) }

func (r RcompUnits) Format(x Point) string {
	if r.Unit.Symbol == "" || IsTop(x) {
		return formatRcomp(x)
	}
	return formatRcomp(x) + " " + r.Unit.Symbol
}

func (RcompUnits) Leq(a, b Point) bool { return leqRcomp(a, b) }

func (RcompUnits) Join(a, b Point) (Point, error) { return Rcomp{}.Join(a, b) }
func (RcompUnits) Meet(a, b Point) (Point, error) { return Rcomp{}.Meet(a, b) }

func (RcompUnits) Top() (Point, error)    { return Top, nil }
func (RcompUnits) Bottom() (Point, error) { return 0.0, nil }

func (RcompUnits) Chain(n int) []Point { return chainRcomp(n) }
