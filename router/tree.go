package router

import (
	"context"
	"slices"

	"github.com/finquery/finquery/api"
)

// Node is a read-only view over one position in the command tree:
// internal nodes are menus enumerating their children, leaves are
// invocable commands. Navigating the tree is syntactic sugar over
// Router.Invoke with the full path.
type Node struct {
	router *Router
	node   *node
	path   string
}

// Tree returns the root of the command tree.
func (r *Router) Tree() *Node {
	return &Node{router: r, node: r.root}
}

// Name is the last path segment, empty for the root.
func (n *Node) Name() string { return n.node.name }

// Path is the full route path down to this node.
func (n *Node) Path() string {
	if n.path == "" {
		return "/"
	}
	return n.path
}

// IsCommand reports whether this node is an invocable leaf.
func (n *Node) IsCommand() bool { return n.node.route != nil }

// Children lists the child segment names in registration order.
func (n *Node) Children() []string {
	return slices.Clone(n.node.order)
}

// Child descends one segment.
func (n *Node) Child(name string) (*Node, bool) {
	child, ok := n.node.children[name]
	if !ok {
		return nil, false
	}
	return &Node{router: n.router, node: child, path: n.path + "/" + name}, true
}

// Route returns the bound route for a command node, nil for menus.
func (n *Node) Route() *Route { return n.node.route }

// Invoke runs the command bound to this leaf.
func (n *Node) Invoke(ctx context.Context, params map[string]any, cc *api.CommandContext) (*api.OBBject, error) {
	if n.node.route == nil {
		return nil, api.ValidationErrorf("", "%s is a menu, not a command", n.Path())
	}
	return n.router.Invoke(ctx, n.node.route.Path, params, cc)
}
