// Package hierarchy provides the read-only type hierarchy table used to
// expand requested item types into every type that satisfies them.
package hierarchy

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/discover/internal/domain"
)

// Edge declares that Child is a direct subtype of Parent.
// An empty Parent declares Child as a root type.
type Edge struct {
	Parent string
	Child  string
}

// Table maps every known type to its reflexive descendant set.
// It is immutable after New and safe for concurrent reads.
type Table struct {
	descendants map[string]Set
	byLocalName map[string]string
	localNames  []string // longest first
}

// IsRoot reports whether the edge only registers Child.
func (e Edge) IsRoot() bool { return e.Parent == "" }

// New builds the table from direct subtype edges, computing the transitive closure.
func New(edges []Edge) (*Table, error) {
	children := make(map[string][]string)
	nodes := make(map[string]struct{})
	for _, e := range edges {
		if e.Child == "" {
			return nil, fmt.Errorf("edge %q -> %q: empty type identifier", e.Parent, e.Child)
		}
		nodes[e.Child] = struct{}{}
		if e.IsRoot() {
			continue
		}
		nodes[e.Parent] = struct{}{}
		if !slices.Contains(children[e.Parent], e.Child) {
			children[e.Parent] = append(children[e.Parent], e.Child)
		}
	}

	t := &Table{
		descendants: make(map[string]Set, len(nodes)),
		byLocalName: make(map[string]string, len(nodes)),
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(nodes))

	var visit func(n string) error
	visit = func(n string) error {
		switch state[n] {
		case visiting:
			return domain.NewCycleError(n)
		case done:
			return nil
		}
		state[n] = visiting
		set := Set{n: {}}
		for _, c := range children[n] {
			if err := visit(c); err != nil {
				return err
			}
			for d := range t.descendants[c] {
				set[d] = struct{}{}
			}
		}
		t.descendants[n] = set
		state[n] = done
		return nil
	}

	for _, n := range sortedKeys(nodes) {
		if err := visit(n); err != nil {
			return nil, err
		}
	}

	for n := range nodes {
		local := LocalName(n)
		if prev, ok := t.byLocalName[local]; ok && prev != n {
			return nil, fmt.Errorf("types %q and %q share local name %q", prev, n, local)
		}
		t.byLocalName[local] = n
		t.localNames = append(t.localNames, local)
	}
	slices.SortFunc(t.localNames, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	return t, nil
}

// Has reports whether typeID is a node of the hierarchy.
func (t *Table) Has(typeID string) bool {
	_, ok := t.descendants[typeID]
	return ok
}

// Descendants returns the reflexive descendant set of typeID.
// Unknown types yield a set containing only typeID.
func (t *Table) Descendants(typeID string) Set {
	if d, ok := t.descendants[typeID]; ok {
		return d
	}
	return Set{typeID: {}}
}

// IsA reports whether typeID equals ancestor or descends from it.
func (t *Table) IsA(typeID, ancestor string) bool {
	return t.Descendants(ancestor).Contains(typeID)
}

// Expand returns the union of the descendant sets of every requested type.
func (t *Table) Expand(types []string) Set {
	out := make(Set)
	for _, typ := range types {
		for d := range t.Descendants(typ) {
			out[d] = struct{}{}
		}
	}
	return out
}

// Types returns every known type identifier, sorted.
func (t *Table) Types() []string {
	return sortedKeys(t.descendants)
}

// LocalNames returns the local names of all known types, longest first.
func (t *Table) LocalNames() []string {
	return slices.Clone(t.localNames)
}

// ByLocalName maps a local name such as "SmartphoneItem" to its type identifier.
func (t *Table) ByLocalName(local string) (string, bool) {
	id, ok := t.byLocalName[local]
	return id, ok
}

// Len returns the number of known types.
func (t *Table) Len() int { return len(t.descendants) }

// LocalName strips a compact-IRI prefix: "beckn:SmartphoneItem" -> "SmartphoneItem".
func LocalName(typeID string) string {
	if i := strings.LastIndexByte(typeID, ':'); i >= 0 {
		return typeID[i+1:]
	}
	return typeID
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
