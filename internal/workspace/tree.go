package workspace

import (
	"fmt"
	"strings"
)

// Composition is the identity of a possibly-nested set of builds.
type Composition struct {
	root   *Build
	builds []*Build
}

// Build is one build inside a composition, with its own root node.
type Build struct {
	name        string
	root        *Node
	parent      *Build
	composition *Composition
	included    []*Build
}

// Node is a single module in a build's tree.
type Node struct {
	name     string
	path     string
	dir      string
	parent   *Node
	children []*Node
	build    *Build
}

// NewComposition creates a composition whose outermost build is named
// rootName and rooted at dir. The returned composition's root node is the
// real root.
func NewComposition(rootName, dir string) *Composition {
	c := &Composition{}
	c.root = newBuild(c, nil, rootName, dir)
	return c
}

func newBuild(c *Composition, parent *Build, name, dir string) *Build {
	b := &Build{name: name, parent: parent, composition: c}
	b.root = &Node{name: name, path: ":", dir: dir, build: b}
	c.builds = append(c.builds, b)
	return b
}

// Root returns the outermost build.
func (c *Composition) Root() *Build { return c.root }

// RealRoot returns the single real-root node of the composition.
func (c *Composition) RealRoot() *Node { return c.root.root }

// Builds returns every build in inclusion order, the outermost first.
func (c *Composition) Builds() []*Build {
	out := make([]*Build, len(c.builds))
	copy(out, c.builds)
	return out
}

// Walk visits every node of every build in pre-order, the outermost build
// first, then included builds in inclusion order. Returning false from fn
// stops the walk.
func (c *Composition) Walk(fn func(*Node) bool) {
	for _, b := range c.builds {
		if !b.root.walk(fn) {
			return
		}
	}
}

// Nodes returns the nodes visited by Walk.
func (c *Composition) Nodes() []*Node {
	var nodes []*Node
	c.Walk(func(n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// Find looks up a node by its composition-wide ID.
func (c *Composition) Find(id string) (*Node, bool) {
	var found *Node
	c.Walk(func(n *Node) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Name returns the build's name.
func (b *Build) Name() string { return b.name }

// Root returns the build's root node.
func (b *Build) Root() *Node { return b.root }

// Parent returns the build that included this one, or nil for the
// outermost build.
func (b *Build) Parent() *Build { return b.parent }

// Composition returns the composition the build belongs to.
func (b *Build) Composition() *Composition { return b.composition }

// Included returns the builds this build includes directly.
func (b *Build) Included() []*Build {
	out := make([]*Build, len(b.included))
	copy(out, b.included)
	return out
}

// IsOutermost reports whether b is the ultimate root build.
func (b *Build) IsOutermost() bool { return b.parent == nil }

// IncludeBuild adds a nested build named name, rooted at dir. Build names are
// unique across the composition.
func (b *Build) IncludeBuild(name, dir string) (*Build, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	for _, other := range b.composition.builds {
		if other.name == name {
			return nil, fmt.Errorf("build %q is already part of the composition", name)
		}
	}
	if _, clash := b.composition.Find(":" + name); clash {
		return nil, fmt.Errorf("included build %q clashes with module path :%s", name, name)
	}
	nested := newBuild(b.composition, b, name, dir)
	b.included = append(b.included, nested)
	return nested, nil
}

// AddChild appends a child module named name, located at dir.
func (n *Node) AddChild(name, dir string) (*Node, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	for _, c := range n.children {
		if c.name == name {
			return nil, fmt.Errorf("module %s already has a child named %q", n.ID(), name)
		}
	}
	child := &Node{
		name:   name,
		path:   joinPath(n.path, name),
		dir:    dir,
		parent: n,
		build:  n.build,
	}
	n.children = append(n.children, child)
	return child, nil
}

// Child returns the direct child named name.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Name returns the module name.
func (n *Node) Name() string { return n.name }

// Path returns the build-local path.
func (n *Node) Path() string { return n.path }

// Dir returns the module's directory on disk.
func (n *Node) Dir() string { return n.dir }

// Parent returns the parent node, or nil for a build root.
func (n *Node) Parent() *Node { return n.parent }

// Build returns the build that owns the node.
func (n *Node) Build() *Build { return n.build }

// Children returns the ordered children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ID returns the composition-wide identifier of the node.
func (n *Node) ID() string {
	if n.build.IsOutermost() {
		return n.path
	}
	prefix := ":" + n.build.name
	if n.path == ":" {
		return prefix
	}
	return prefix + n.path
}

// String implements fmt.Stringer.
func (n *Node) String() string { return n.ID() }

// IsBuildRoot reports whether n is the root of its build.
func (n *Node) IsBuildRoot() bool { return n.build.root == n }

// IsRealRoot reports whether n is the root of the outermost build of its
// composition. It is meant as a guard, not a general predicate.
func (n *Node) IsRealRoot() bool {
	return n.build.IsOutermost() && n.IsBuildRoot()
}

// Walk visits n and its descendants in pre-order. Included builds are not
// descendants. Returning false from fn stops the walk.
func (n *Node) Walk(fn func(*Node) bool) {
	n.walk(fn)
}

func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Subtree returns n and its descendants in pre-order.
func (n *Node) Subtree() []*Node {
	var nodes []*Node
	n.Walk(func(m *Node) bool {
		nodes = append(nodes, m)
		return true
	})
	return nodes
}

func joinPath(parent, name string) string {
	if parent == ":" {
		return ":" + name
	}
	return parent + ":" + name
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if strings.ContainsAny(name, ":/\\ ") {
		return fmt.Errorf("invalid module name %q", name)
	}
	return nil
}
