package composedql

import (
	"strings"
)

// Format renders a query back into composed query syntax.
// The output carries no whitespace, so Parse(Format(q)) reproduces q
// whenever q was parsed from whitespace-free input.
func Format(q Query) string {
	var b strings.Builder
	writeList(&b, q)
	return b.String()
}

// FormatNode renders a single node in composed query syntax.
func FormatNode(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeList(b *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(',')
		}
		writeNode(b, n)
	}
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Resource:
		b.WriteByte('~')
		b.WriteString(v.Name)
		if v.Scoped {
			b.WriteByte('(')
			writeList(b, v.Fields)
			b.WriteByte(')')
		}
	case *Function:
		b.WriteString(v.Name)
		b.WriteByte('(')
		writeList(b, v.Args)
		b.WriteByte(')')
	default:
		b.WriteString(n.Ident())
	}
	for _, link := range PropertiesOf(n) {
		b.WriteByte('.')
		writeNode(b, link)
	}
}

// FormatCompact formats a query as an indented outline, one node per line:
//
//	~photos resource
//	  url field
//	  .filter function
//	    recent arg
//
// Chain links are prefixed with '.', resources with '~'.
// A nil query formats as an empty outline.
func FormatCompact(q Query) []byte {
	var b strings.Builder
	outlineList(&b, q, 0, false)
	return []byte(b.String())
}

func outlineList(b *strings.Builder, nodes []Node, depth int, links bool) {
	for _, n := range nodes {
		outlineNode(b, n, depth, links)
	}
}

func outlineNode(b *strings.Builder, n Node, depth int, link bool) {
	b.WriteString(strings.Repeat("  ", depth))
	if link {
		b.WriteByte('.')
	}
	if n.Kind() == KindResource {
		b.WriteByte('~')
	}
	b.WriteString(escapeKV(n.Ident()))
	b.WriteByte(' ')
	b.WriteString(string(n.Kind()))
	b.WriteByte('\n')

	switch v := n.(type) {
	case *Resource:
		outlineList(b, v.Fields, depth+1, false)
	case *Function:
		outlineList(b, v.Args, depth+1, false)
	}
	outlineList(b, PropertiesOf(n), depth+1, true)
}

// escapeKV escapes embedded newlines so each node stays on one line.
func escapeKV(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
