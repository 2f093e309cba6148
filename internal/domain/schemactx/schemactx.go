// Package schemactx resolves schema-context URIs to registered item types
// and produces the per-item context URI stamped on responses.
package schemactx

import (
	"strings"

	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
)

// TypePlaceholder is replaced by a type's local name in item context templates.
const TypePlaceholder = "{type}"

// DefaultBaseContext is the JSON-LD context every request may reference.
const DefaultBaseContext = "https://becknprotocol.io/schema/context.jsonld"

// DefaultItemContextTemplate locates an item type's schema context.
const DefaultItemContextTemplate = "https://becknprotocol.io/schema/items/{type}/schema-context.jsonld"

// Resolution is the outcome of resolving one schema-context URI.
type Resolution struct {
	URI    string
	Type   string // empty for the base context
	IsBase bool
}

// Resolver matches URIs against the types registered in a hierarchy.
type Resolver struct {
	types        *hierarchy.Table
	baseContext  string
	itemTemplate string
}

// NewResolver creates a resolver. Empty base or template fall back to defaults.
func NewResolver(types *hierarchy.Table, baseContext, itemTemplate string) *Resolver {
	if baseContext == "" {
		baseContext = DefaultBaseContext
	}
	if itemTemplate == "" {
		itemTemplate = DefaultItemContextTemplate
	}
	return &Resolver{types: types, baseContext: baseContext, itemTemplate: itemTemplate}
}

// BaseContext returns the base context URI.
func (r *Resolver) BaseContext() string { return r.baseContext }

// Resolve maps uri to a registered type. The base context resolves with IsBase set.
// Names are compared longest first so "TelevisionItem" wins over "Item".
func (r *Resolver) Resolve(uri string) (Resolution, bool) {
	if uri == r.baseContext {
		return Resolution{URI: uri, IsBase: true}, true
	}

	segments := pathSegments(uri)
	trimmed := strings.TrimRight(uri, "/")
	for _, name := range r.types.LocalNames() {
		if !matchesName(segments, trimmed, name) {
			continue
		}
		id, _ := r.types.ByLocalName(name)
		return Resolution{URI: uri, Type: id}, true
	}
	return Resolution{}, false
}

// ContextFor returns the context URI for an item of the given type.
// Unregistered types get the base context.
func (r *Resolver) ContextFor(typeID string) string {
	if typeID == "" || !r.types.Has(typeID) {
		return r.baseContext
	}
	return strings.ReplaceAll(r.itemTemplate, TypePlaceholder, hierarchy.LocalName(typeID))
}

func matchesName(segments []string, uri, name string) bool {
	for _, seg := range segments {
		if seg == name {
			return true
		}
	}
	if !strings.HasSuffix(uri, name) {
		return false
	}
	// The suffix must start at a word boundary: "WorkOpportunityItem" is not "Item".
	rest := uri[:len(uri)-len(name)]
	if rest == "" {
		return true
	}
	last := rest[len(rest)-1]
	return !isWordByte(last)
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// pathSegments splits a URI on path, fragment and query delimiters,
// dropping a trailing .jsonld/.json extension from each segment.
func pathSegments(uri string) []string {
	parts := strings.FieldsFunc(uri, func(r rune) bool {
		return r == '/' || r == '#' || r == '?' || r == '&' || r == '='
	})
	for i, p := range parts {
		p = strings.TrimSuffix(p, ".jsonld")
		parts[i] = strings.TrimSuffix(p, ".json")
	}
	return parts
}
