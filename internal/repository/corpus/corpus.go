// Package corpus is the in-memory item source: a fixed catalog loaded from
// JSON-LD files, indexed by item type.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/discover/internal/domain"
	"github.com/kailas-cloud/discover/internal/domain/item"
)

// ItemsKey is the catalog property holding the item array in a data file.
const ItemsKey = "beckn:items"

// Corpus holds items in load order. It is immutable and safe for concurrent reads.
type Corpus struct {
	items  []item.Item
	byType map[string]*roaring.Bitmap
}

// New indexes items, keeping their order.
func New(items []item.Item) *Corpus {
	c := &Corpus{
		items:  items,
		byType: make(map[string]*roaring.Bitmap),
	}
	for i, it := range items {
		bm, ok := c.byType[it.Type()]
		if !ok {
			bm = roaring.New()
			c.byType[it.Type()] = bm
		}
		bm.Add(uint32(i))
	}
	for _, bm := range c.byType {
		bm.RunOptimize()
	}
	return c
}

// Load reads every *.jsonld file in dir in file-name order. Files that cannot
// be read or parsed are logged and skipped, as are array entries that are not
// objects. A missing directory is an error.
func Load(ctx context.Context, dir string, log *zap.Logger) (*Corpus, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("%w: data directory: %w", domain.ErrCorpusUnavailable, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonld"))
	if err != nil {
		return nil, fmt.Errorf("glob data files: %w", err)
	}
	slices.Sort(files)

	perFile := make([][]item.Item, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items, err := readFile(path, log)
			if err != nil {
				log.Warn("skipping data file", zap.String("file", path), zap.Error(err))
				return nil
			}
			perFile[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []item.Item
	for _, items := range perFile {
		all = append(all, items...)
	}
	log.Info("corpus loaded", zap.Int("files", len(files)), zap.Int("items", len(all)))
	return New(all), nil
}

func readFile(path string, log *zap.Logger) ([]item.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	raw, ok := doc[ItemsKey]
	if !ok {
		return nil, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%s is not an array: %w", ItemsKey, err)
	}

	out := make([]item.Item, 0, len(entries))
	for i, e := range entries {
		it, err := item.FromJSON(e)
		if err != nil {
			log.Warn("skipping item", zap.String("file", path), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// ListItems returns items whose type is in types (every item when types is
// nil), in load order. The corpus does no text matching; text is ignored.
func (c *Corpus) ListItems(ctx context.Context, types []string, _ string) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if types == nil {
		return slices.Clone(c.items), nil
	}

	ids := roaring.New()
	for _, t := range types {
		if bm, ok := c.byType[t]; ok {
			ids.Or(bm)
		}
	}
	out := make([]item.Item, 0, ids.GetCardinality())
	it := ids.Iterator()
	for it.HasNext() {
		out = append(out, c.items[it.Next()])
	}
	return out, nil
}

// SupportsTextSearch is always false for the in-memory corpus.
func (c *Corpus) SupportsTextSearch(context.Context) bool { return false }

// Count returns the number of items.
func (c *Corpus) Count(context.Context) (int, error) { return len(c.items), nil }

// Items returns the items in load order.
func (c *Corpus) Items() []item.Item { return slices.Clone(c.items) }

// Types returns the distinct item types present, sorted.
func (c *Corpus) Types() []string {
	out := make([]string, 0, len(c.byType))
	for t := range c.byType {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
