package rocq

import "strings"

// Fragment is a trimmed leaf together with the dotted module path enclosing it.
type Fragment struct {
	Prefix string
	Text   string
}

// Flatten walks the tree depth-first and returns its leaves in source order.
// Module names only ever appear as prefixes, never as fragments themselves.
func Flatten(nodes []Node) []Fragment {
	return flattenInto(nil, nodes, "")
}

func flattenInto(out []Fragment, nodes []Node, prefix string) []Fragment {
	for _, n := range nodes {
		if n.IsModule() {
			out = flattenInto(out, n.Children, Qualify(prefix, n.Name))
			continue
		}
		out = append(out, Fragment{Prefix: prefix, Text: strings.TrimSpace(n.Text)})
	}
	return out
}

// Concat joins fragment texts in order. This is the rewritten unit that
// extracted line numbers refer to.
func Concat(fragments []Fragment) string {
	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Qualify joins a module prefix and a name with a dot.
func Qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
