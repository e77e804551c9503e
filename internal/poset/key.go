package poset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Tuple is an element of a Product or SpaceProduct.
type Tuple []Point

// Tagged is an element of a Coproduct: a value together with the index of
// the branch it came from.
type Tagged struct {
	Branch int
	Value  Point
}

// Key returns the canonical identity of a point.
//
// Two points with the same key are the same point. Keys are canonical JSON:
// strings are NFC normalized and never HTML escaped, tuples are arrays, and
// the elements of upper/lower sets are sorted by key so that the encoding
// does not depend on construction order.
func Key(x Point) string {
	var buf bytes.Buffer
	writeKey(&buf, x)
	return buf.String()
}

func writeKey(buf *bytes.Buffer, x Point) {
	switch v := x.(type) {
	case nil:
		buf.WriteString("null")
	case topElement:
		buf.WriteString(`{"top":true}`)
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case float64:
		writeFloat(buf, v)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case string:
		writeString(buf, v)
	case Tuple:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeKey(buf, elem)
		}
		buf.WriteByte(']')
	case Tagged:
		buf.WriteString(`{"branch":`)
		buf.WriteString(strconv.Itoa(v.Branch))
		buf.WriteString(`,"value":`)
		writeKey(buf, v.Value)
		buf.WriteByte('}')
	case UpperSet:
		writeSetKey(buf, "upper", v.points)
	case LowerSet:
		writeSetKey(buf, "lower", v.points)
	default:
		writeString(buf, fmt.Sprintf("%T(%v)", x, x))
	}
}

func writeSetKey(buf *bytes.Buffer, tag string, points []Point) {
	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = Key(p)
	}
	slices.Sort(keys)
	buf.WriteString(`{"`)
	buf.WriteString(tag)
	buf.WriteString(`":[`)
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(k)
	}
	buf.WriteString("]}")
}

// writeFloat writes the shortest representation that round-trips.
// Integral floats keep a trailing ".0" so they never collide with int64 keys.
func writeFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsInf(f, 1):
		buf.WriteString(`{"top":true}`)
		return
	case math.IsNaN(f):
		buf.WriteString(`"NaN"`)
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	buf.WriteString(s)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		buf.WriteString(".0")
	}
}

// writeString writes a canonical JSON string: NFC normalized, no HTML escaping.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(norm.NFC.String(s))
	out := tmp.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	buf.Write(out)
}

// SortByKey sorts points in place by canonical key.
func SortByKey(points []Point) {
	slices.SortStableFunc(points, func(a, b Point) int {
		ka, kb := Key(a), Key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}
