// Package hierarchy persists the type hierarchy edges in a store hash so a
// server can start without access to the schema-definition files.
package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/discover/internal/domain"
	domhier "github.com/kailas-cloud/discover/internal/domain/hierarchy"
)

// store is the consumer interface for hierarchy persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
}

// Repo stores edges as child -> JSON array of direct parents. A root type
// is stored with an empty array.
type Repo struct {
	store store
	key   string
}

// New creates a hierarchy repository under prefix (domain.KeyPrefix when empty).
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, key: prefix + "hierarchy"}
}

// Save replaces the stored hierarchy with edges.
func (r *Repo) Save(ctx context.Context, edges []domhier.Edge) error {
	parents := make(map[string][]string)
	for _, e := range edges {
		if _, ok := parents[e.Child]; !ok {
			parents[e.Child] = []string{}
		}
		if e.IsRoot() {
			continue
		}
		if !slices.Contains(parents[e.Child], e.Parent) {
			parents[e.Child] = append(parents[e.Child], e.Parent)
		}
	}

	fields := make(map[string]string, len(parents))
	for child, ps := range parents {
		slices.Sort(ps)
		data, err := json.Marshal(ps)
		if err != nil {
			return fmt.Errorf("marshal parents of %s: %w", child, err)
		}
		fields[child] = string(data)
	}

	if err := r.store.Del(ctx, r.key); err != nil {
		return fmt.Errorf("clear hierarchy: %w", err)
	}
	if err := r.store.HSet(ctx, r.key, fields); err != nil {
		return fmt.Errorf("save hierarchy: %w", err)
	}
	return nil
}

// Load returns the stored edges ordered by child then parent.
// An absent hierarchy yields no edges.
func (r *Repo) Load(ctx context.Context) ([]domhier.Edge, error) {
	fields, err := r.store.HGetAll(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("%w: load hierarchy: %w", domain.ErrCorpusUnavailable, err)
	}

	children := make([]string, 0, len(fields))
	for child := range fields {
		children = append(children, child)
	}
	slices.Sort(children)

	var edges []domhier.Edge
	for _, child := range children {
		var ps []string
		if err := json.Unmarshal([]byte(fields[child]), &ps); err != nil {
			return nil, fmt.Errorf("%w: parents of %s: %w", domain.ErrInvalidSchemaDefinition, child, err)
		}
		if len(ps) == 0 {
			edges = append(edges, domhier.Edge{Child: child})
		}
		for _, p := range ps {
			edges = append(edges, domhier.Edge{Parent: p, Child: child})
		}
	}
	return edges, nil
}
