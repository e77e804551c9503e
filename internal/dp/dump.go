package dp

import (
	"fmt"
	"strings"
)

// Dump renders the structure of d as an indented tree, one DP per line,
// with its functionality and resource spaces.
func Dump(d DP) string {
	var b strings.Builder
	dump(&b, d, 0)
	return b.String()
}

func dump(b *strings.Builder, d DP, depth int) {
	label := d.String()
	if comp, ok := d.(Composite); ok {
		label = kind(d)
		fmt.Fprintf(b, "%s%s %s → %s\n", strings.Repeat("  ", depth), label, d.FunSpace(), d.ResSpace())
		for _, child := range comp.Children() {
			dump(b, child, depth+1)
		}
		return
	}
	fmt.Fprintf(b, "%s%s %s → %s\n", strings.Repeat("  ", depth), label, d.FunSpace(), d.ResSpace())
}

// kind is the label of a composite without its children.
func kind(d DP) string {
	if k, ok := d.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	s := d.String()
	if i := strings.IndexByte(s, '('); i > 0 {
		return s[:i]
	}
	return s
}
