// Package schema discovers the item type hierarchy from schema-definition
// documents laid out as <dir>/<TypeName>/schema-definition.jsonld.
package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/discover/internal/domain"
	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
)

// DefinitionFile is the file read from each type directory.
const DefinitionFile = "schema-definition.jsonld"

// JSON-LD keys read from a definition.
const (
	keyID         = "@id"
	keySubClassOf = "rdfs:subClassOf"
)

// definitionSchema is the minimal shape a definition must have to contribute an edge.
const definitionSchema = `{
	"type": "object",
	"required": ["@id"],
	"properties": {
		"@id": {"type": "string", "minLength": 1},
		"rdfs:subClassOf": {"type": "string", "minLength": 1}
	}
}`

// DefaultAliases rewrites the namespaces used by published definitions to
// the compact "beckn:" form carried by items.
var DefaultAliases = map[string]string{
	"https://becknprotocol.io/schema/": "beckn:",
	"electronic:":                      "beckn:",
	"grocery:":                         "beckn:",
}

// Loader reads schema definitions.
type Loader struct {
	schema  *jsonschema.Schema
	aliases map[string]string
	log     *zap.Logger
}

// NewLoader compiles the definition schema. aliases maps identifier prefixes
// to their replacement; nil uses DefaultAliases.
func NewLoader(aliases map[string]string, log *zap.Logger) (*Loader, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(definitionSchema))
	if err != nil {
		return nil, fmt.Errorf("parse definition schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("definition.json", doc); err != nil {
		return nil, fmt.Errorf("add definition schema: %w", err)
	}
	sch, err := c.Compile("definition.json")
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Loader{schema: sch, aliases: aliases, log: log}, nil
}

// Edges returns one edge per definition in directory-name order. A
// definition without a parent yields a root edge so the type stays known. Definitions that are unreadable or invalid are
// logged and skipped; a missing or unreadable root directory is an error.
func (l *Loader) Edges(ctx context.Context, dir string) ([]hierarchy.Edge, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schemas directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name(), DefinitionFile)
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		paths = append(paths, p)
	}

	found := make([]*hierarchy.Edge, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			edge, err := l.readDefinition(p)
			if err != nil {
				l.log.Warn("skipping schema definition", zap.String("file", p), zap.Error(err))
				return nil
			}
			found[i] = edge
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var edges []hierarchy.Edge
	for _, e := range found {
		if e != nil {
			edges = append(edges, *e)
		}
	}
	l.log.Info("type hierarchy discovered", zap.Int("definitions", len(paths)), zap.Int("edges", len(edges)))
	return edges, nil
}

// Table discovers edges and builds the hierarchy table. A cycle is fatal.
func (l *Loader) Table(ctx context.Context, dir string) (*hierarchy.Table, error) {
	edges, err := l.Edges(ctx, dir)
	if err != nil {
		return nil, err
	}
	return hierarchy.New(edges)
}

func (l *Loader) readDefinition(path string) (*hierarchy.Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchemaDefinition, err)
	}
	if err := l.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSchemaDefinition, err)
	}

	obj := doc.(map[string]any)
	edge := &hierarchy.Edge{Child: l.normalize(obj[keyID].(string))}
	if parent, _ := obj[keySubClassOf].(string); parent != "" {
		edge.Parent = l.normalize(parent)
	}
	return edge, nil
}

// normalize rewrites the longest matching alias prefix.
func (l *Loader) normalize(id string) string {
	best := ""
	for from := range l.aliases {
		if len(from) > len(best) && strings.HasPrefix(id, from) {
			best = from
		}
	}
	if best == "" {
		return id
	}
	return l.aliases[best] + id[len(best):]
}
