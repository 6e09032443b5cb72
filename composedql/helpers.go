package composedql

// Walk visits every node of q depth-first in source order: a node, then its
// resource fields or function arguments, then its chain links. The children
// of a node are visited only when fn returns true.
func Walk(q Query, fn func(n Node, depth int) bool) {
	walkList(q, 0, fn)
}

func walkList(nodes []Node, depth int, fn func(Node, int) bool) {
	for _, n := range nodes {
		walkNode(n, depth, fn)
	}
}

func walkNode(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	switch v := n.(type) {
	case *Resource:
		walkList(v.Fields, depth+1, fn)
	case *Function:
		walkList(v.Args, depth+1, fn)
	}
	walkList(PropertiesOf(n), depth+1, fn)
}

// Collect returns every node in q, at any depth, for which pred returns true.
func Collect(q Query, pred func(Node) bool) []Node {
	var result []Node
	Walk(q, func(n Node, _ int) bool {
		if pred(n) {
			result = append(result, n)
		}
		return true
	})
	return result
}

// Names returns the distinct top-level identifiers of q in first-seen order.
func Names(q Query) []string {
	seen := make(map[string]bool, len(q))
	var result []string
	for _, n := range q {
		if !seen[n.Ident()] {
			seen[n.Ident()] = true
			result = append(result, n.Ident())
		}
	}
	return result
}

// CountKinds returns the number of nodes of each kind in q, at any depth.
func CountKinds(q Query) map[Kind]int {
	counts := make(map[Kind]int)
	Walk(q, func(n Node, _ int) bool {
		counts[n.Kind()]++
		return true
	})
	return counts
}

// OfKind returns a predicate matching nodes of the given kind, for use with Collect.
func OfKind(k Kind) func(Node) bool {
	return func(n Node) bool { return n.Kind() == k }
}
