package rocq

import (
	"regexp"
	"strings"
)

// Module headers: "Module [Export |Import ]Name." followed by whitespace.
// Inside a unit the header must also be preceded by whitespace; at the very
// start of a unit it may open the text.
var (
	moduleOpen        = regexp.MustCompile(`\s(Module\s(?:Export\s|Import\s)?([_'a-zA-Z0-9]+)\.)\s`)
	leadingModuleOpen = regexp.MustCompile(`^(Module\s(?:Export\s|Import\s)?([_'a-zA-Z0-9]+)\.)\s`)
)

// Node is one element of a parsed unit. A leaf carries a fragment of source
// text. A module carries its name and the nodes between its header and its
// End marker; the header is kept at the front of the first child leaf and the
// End marker at the back of the last one, so no text is lost.
type Node struct {
	Name     string
	Text     string
	Children []Node
}

// IsModule reports whether n is a module rather than a leaf.
func (n Node) IsModule() bool {
	return n.Name != ""
}

// Parse splits text into a sibling sequence of leaves and modules.
// The sequence always starts and ends with a leaf (possibly empty).
// A module header without a matching "End <name>." fails with a *ModuleError.
func Parse(text string) ([]Node, error) {
	return parseSiblings(text, 0, true)
}

func parseSiblings(text string, base int, atStart bool) ([]Node, error) {
	var nodes []Node
	for {
		loc := findModule(text, atStart)
		atStart = false
		if loc == nil {
			return append(nodes, Node{Text: text}), nil
		}

		headerStart, headerEnd := loc[2], loc[3]
		name := text[loc[4]:loc[5]]
		footer := "End " + name + "."

		closeIdx := strings.Index(text[headerEnd:], footer)
		if closeIdx < 0 {
			return nil, &ModuleError{Module: name, Offset: base + headerStart}
		}
		bodyEnd := headerEnd + closeIdx

		children, err := parseSiblings(text[headerEnd:bodyEnd], base+headerEnd, false)
		if err != nil {
			return nil, err
		}
		children[0].Text = text[headerStart:headerEnd] + children[0].Text
		children[len(children)-1].Text += footer

		nodes = append(nodes,
			Node{Text: text[:headerStart]},
			Node{Name: name, Children: children},
		)

		rest := bodyEnd + len(footer)
		text = text[rest:]
		base += rest
	}
}

func findModule(text string, atStart bool) []int {
	if atStart {
		if loc := leadingModuleOpen.FindStringSubmatchIndex(text); loc != nil {
			return loc
		}
	}
	return moduleOpen.FindStringSubmatchIndex(text)
}

// Modules returns the names of the top-level modules in nodes, in order.
func Modules(nodes []Node) []string {
	var names []string
	for _, n := range nodes {
		if n.IsModule() {
			names = append(names, n.Name)
		}
	}
	return names
}

// Reassemble concatenates every leaf of the tree in order. For the output of
// Parse this is the original text.
func Reassemble(nodes []Node) string {
	var b strings.Builder
	var walk func([]Node)
	walk = func(ns []Node) {
		for _, n := range ns {
			if n.IsModule() {
				walk(n.Children)
				continue
			}
			b.WriteString(n.Text)
		}
	}
	walk(nodes)
	return b.String()
}
