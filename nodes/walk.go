package nodes

// WalkStatus controls traversal from a visit function.
type WalkStatus int

const (
	// Continue descends into the visited node's children.
	Continue WalkStatus = iota
	// SkipChildren moves on without descending.
	SkipChildren
	// Stop ends the traversal.
	Stop
)

// VisitFunc is called for each node during a walk. parent is nil for the
// root node.
type VisitFunc func(n Node, parent Parent) WalkStatus

// Walk traverses the tree rooted at n in document order.
func Walk(n Node, fn VisitFunc) WalkStatus {
	return walk(n, nil, fn)
}

func walk(n Node, parent Parent, fn VisitFunc) WalkStatus {
	switch fn(n, parent) {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}
	p, ok := n.(Parent)
	if !ok {
		return Continue
	}
	// Children may be replaced mid-walk; snapshot the slice.
	children := append([]Node(nil), n.Children()...)
	for _, c := range children {
		if walk(c, p, fn) == Stop {
			return Stop
		}
	}
	return Continue
}

// Each calls fn for every descendant of root (root included) that has
// type T, in document order.
func Each[T Node](root Node, fn func(n T, parent Parent)) {
	Walk(root, func(n Node, parent Parent) WalkStatus {
		if t, ok := n.(T); ok {
			fn(t, parent)
		}
		return Continue
	})
}

// Replace substitutes old with replacement in parent's children. It
// reports whether old was found.
func Replace(parent Parent, old Node, replacement ...Node) bool {
	children := parent.Children()
	for i, c := range children {
		if c == old {
			updated := make([]Node, 0, len(children)-1+len(replacement))
			updated = append(updated, children[:i]...)
			updated = append(updated, replacement...)
			updated = append(updated, children[i+1:]...)
			parent.SetChildren(updated)
			return true
		}
	}
	return false
}
