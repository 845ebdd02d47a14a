// Package scanner lists the types available to the container.
//
// Go cannot enumerate a package's types at runtime, so packages publish their
// definitions into a Catalog from init(), the way database/sql drivers
// register themselves. The catalog arranges definitions in a namespace tree
// that Scan walks like a directory hierarchy.
//
//	func init() {
//	    scanner.Register(DemoActionDef, DemoServiceDef)
//	}
//
//	seq, err := scanner.Default.Scan("github.com.km-arc.go-mvc.app")
//	for fqn := range seq { ... }
package scanner

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/km-arc/go-mvc/framework/meta"
)

// ResourceNotFoundError is returned when a namespace has no node in the
// catalog. It is fatal to startup.
type ResourceNotFoundError struct {
	Namespace string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("scanner: namespace %q not found", e.Namespace)
}

// node is one namespace segment; types holds simple names declared in it.
type node struct {
	children map[string]*node
	types    []string
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Catalog is the registry of definitions, keyed by fully-qualified name.
// Writes happen during init(); after Lock the catalog is read-only.
type Catalog struct {
	mu     sync.RWMutex
	root   *node
	defs   map[string]meta.Definition
	locked bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		root: newNode(),
		defs: make(map[string]meta.Definition),
	}
}

// Default is the process-wide catalog application packages register into.
var Default = NewCatalog()

// Register adds definitions to Default. Call from init().
func Register(defs ...meta.Definition) {
	for _, d := range defs {
		Default.Add(d)
	}
}

// Add inserts a definition. It panics on a duplicate name or after Lock,
// since both are programming errors caught at process start.
func (c *Catalog) Add(def meta.Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		panic("scanner: catalog locked (register only during init)")
	}
	if def.Name == "" {
		panic("scanner: definition without a name")
	}
	if _, exists := c.defs[def.Name]; exists {
		panic(fmt.Sprintf("scanner: type %q registered twice", def.Name))
	}

	segments := strings.Split(def.Name, ".")
	n := c.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	n.types = append(n.types, segments[len(segments)-1])
	c.defs[def.Name] = def
}

// Lock freezes the catalog.
func (c *Catalog) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

// Locked reports whether Lock has been called.
func (c *Catalog) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// Lookup returns the definition registered under fqn.
func (c *Catalog) Lookup(fqn string) (meta.Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.defs[fqn]
	return d, ok
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

// ── Scanning ─────────────────────────────────────────────────────────────────

// Scan returns the fully-qualified names of every type under namespace,
// recursing into sub-namespaces. Within a namespace, types come first in
// name order, then sub-namespaces in name order. An empty namespace scans
// the whole catalog.
//
// The sequence is lazy; ranging over it again walks the tree again.
func (c *Catalog) Scan(namespace string) (iter.Seq[string], error) {
	c.mu.RLock()
	start := c.root
	if namespace != "" {
		for _, seg := range strings.Split(namespace, ".") {
			next, ok := start.children[seg]
			if !ok {
				c.mu.RUnlock()
				return nil, &ResourceNotFoundError{Namespace: namespace}
			}
			start = next
		}
	}
	c.mu.RUnlock()

	return func(yield func(string) bool) {
		c.walk(start, namespace, yield)
	}, nil
}

func (c *Catalog) walk(n *node, prefix string, yield func(string) bool) bool {
	c.mu.RLock()
	types := slices.Clone(n.types)
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	c.mu.RUnlock()

	slices.Sort(types)
	slices.Sort(names)

	for _, t := range types {
		if !yield(join(prefix, t)) {
			return false
		}
	}
	for _, name := range names {
		c.mu.RLock()
		child := n.children[name]
		c.mu.RUnlock()
		if !c.walk(child, join(prefix, name), yield) {
			return false
		}
	}
	return true
}

// Definitions resolves scanned names back to their definitions, preserving
// scan order. Names unknown to the catalog are skipped.
func (c *Catalog) Definitions(names iter.Seq[string]) iter.Seq[meta.Definition] {
	return func(yield func(meta.Definition) bool) {
		for fqn := range names {
			d, ok := c.Lookup(fqn)
			if !ok {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
