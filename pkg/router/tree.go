package router

import "net/url"

// routeNode is a node in the segment tree.
type routeNode struct {
	// segment is the literal this node matches (static children only)
	segment string

	// key is the shape key of a parameter child (":" or ":int")
	key string

	// children are static segment children
	children []*routeNode

	// paramChildren are parameter children, one per constraint
	paramChildren []*routeNode

	// wildcardChild is the wildcard tail child (*rest)
	wildcardChild *routeNode

	// routes are the table indexes of routes ending at this node
	routes []int
}

func newRouteNode(segment string) *routeNode {
	return &routeNode{segment: segment}
}

// findChild finds a static child with an exact segment match.
func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a static child node for the given segment.
func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

// addParamChild adds or retrieves the parameter child for a shape key.
func (n *routeNode) addParamChild(key string) *routeNode {
	for _, child := range n.paramChildren {
		if child.key == key {
			return child
		}
	}
	child := newRouteNode("")
	child.key = key
	n.paramChildren = append(n.paramChildren, child)
	return child
}

// addWildcardChild sets the wildcard child node.
func (n *routeNode) addWildcardChild() *routeNode {
	if n.wildcardChild == nil {
		n.wildcardChild = newRouteNode("")
	}
	return n.wildcardChild
}

// insert adds a pattern to the tree and records the route index at its end.
func (n *routeNode) insert(p *pattern, index int) {
	current := n
	for _, seg := range p.segments {
		switch seg.kind {
		case segLiteral:
			current = current.addChild(seg.value)
		case segParam:
			current = current.addParamChild(seg.key())
		case segWildcard:
			current = current.addWildcardChild()
		}
	}
	current.routes = append(current.routes, index)
}

// collect appends to out the indexes of every route whose shape matches
// the remaining segments. Constraints are checked later, per route.
// Unlike first-match traversal, all branches are explored so that
// candidates can be ranked as a whole.
func (n *routeNode) collect(segments []string, out []int) []int {
	if len(segments) == 0 {
		return append(out, n.routes...)
	}

	segment := segments[0]
	remaining := segments[1:]

	literal := segment
	if decoded, err := url.PathUnescape(segment); err == nil {
		literal = decoded
	}
	if child := n.findChild(literal); child != nil {
		out = child.collect(remaining, out)
	}

	for _, child := range n.paramChildren {
		out = child.collect(remaining, out)
	}

	// Wildcard consumes the rest of the path, at least one segment.
	if n.wildcardChild != nil {
		out = append(out, n.wildcardChild.routes...)
	}

	return out
}
