// Package items stores catalog items as JSON documents in Redis or Valkey
// and lists them with type and text pre-filtering.
package items

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/discover/internal/db"
	"github.com/kailas-cloud/discover/internal/domain"
	"github.com/kailas-cloud/discover/internal/domain/item"
	"github.com/kailas-cloud/discover/internal/domain/search/filter"
)

// DefaultBatchSize is the page size for listing and the pipeline size for loading.
const DefaultBatchSize = 500

// store is the consumer interface for item documents (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SupportsTextSearch(ctx context.Context) bool
	SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error)
}

// Repo implements usecase/discovery.ItemSource over a db store.
type Repo struct {
	store     store
	prefix    string
	batchSize int
}

// Option configures a Repo.
type Option func(*Repo)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(r *Repo) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithKeyPrefix overrides domain.KeyPrefix as the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(r *Repo) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// New creates an item repository.
func New(s store, opts ...Option) *Repo {
	r := &Repo{store: s, prefix: domain.KeyPrefix, batchSize: DefaultBatchSize}
	for _, o := range opts {
		o(r)
	}
	return r
}

// SupportsTextSearch proxies the capability check from the store.
func (r *Repo) SupportsTextSearch(ctx context.Context) bool {
	return r.store.SupportsTextSearch(ctx)
}

// delegableTerm matches terms whose store-side text match is a superset of
// whole-word matching: a single ASCII word.
var delegableTerm = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Values of the text marker written by Replace. The store tokenizer keeps
// accented words whole while \b splits them, so text is delegated only over
// an ASCII corpus.
const (
	textASCII = "ascii"
	textMixed = "mixed"
)

// ListItems returns items in load order. types restricts @type to the given
// identifiers (nil means any type). text, when the backend can evaluate it,
// the term is a single word and the corpus is ASCII, narrows the candidates
// server-side. Both are pre-filters: callers must still apply their own type
// and text matching.
func (r *Repo) ListItems(ctx context.Context, types []string, text string) ([]item.Item, error) {
	if len(types) > filter.MaxValuesPerCondition {
		// Too wide for one TAG clause; the caller filters by type anyway.
		types = nil
	}
	filters, err := filter.TypeIn(fieldType, types)
	if err != nil {
		return nil, fmt.Errorf("type filter: %w", err)
	}

	q := &db.ListQuery{
		IndexName:    r.indexName(),
		Filters:      filters,
		SortBy:       fieldSeq,
		Order:        db.SortAsc,
		Limit:        r.batchSize,
		ReturnFields: []string{"$"},
	}
	if text != "" && delegableTerm.MatchString(text) && r.store.SupportsTextSearch(ctx) && r.asciiCorpus(ctx) {
		q.Text = &db.TextMatch{Fields: textFields, Query: text}
	}

	// Pages resume from the last seq so no query exceeds the store's
	// result window.
	var out []item.Item
	for {
		res, err := r.store.SearchList(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: list items: %w", domain.ErrCorpusUnavailable, err)
		}
		for _, e := range res.Entries {
			it, seq, err := parseDocument(e.Key, e.Fields["$"])
			if err != nil {
				return nil, err
			}
			out = append(out, it)
			q.After = &db.Cursor{Key: e.Key, Field: fieldSeq, Value: int64(seq)}
		}
		if len(res.Entries) == 0 || len(res.Entries) >= res.Total {
			break
		}
	}
	return out, nil
}

// asciiCorpus reports whether the last Replace recorded an ASCII-only corpus.
func (r *Repo) asciiCorpus(ctx context.Context) bool {
	raw, err := r.store.Get(ctx, r.metaTextKey())
	return err == nil && string(raw) == textASCII
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Replace removes every stored item and writes items in order, recreating
// the index. It returns the number of items written.
func (r *Repo) Replace(ctx context.Context, items []item.Item) (int, error) {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index: %w", err)
	}

	if err := r.clear(ctx); err != nil {
		return 0, err
	}

	def, err := r.buildIndex(r.store.SupportsTextSearch(ctx))
	if err != nil {
		return 0, fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return 0, fmt.Errorf("create index: %w", err)
	}

	batch := make([]db.JSONSetItem, 0, r.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.store.JSONSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("write items: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	marker := textASCII
	for i, it := range items {
		for _, field := range it.SearchableText() {
			if !isASCII(field) {
				marker = textMixed
			}
		}
		seq := i + 1
		data, err := buildDocument(seq, it)
		if err != nil {
			return 0, err
		}
		batch = append(batch, db.JSONSetItem{Key: r.itemKey(seq), Path: "$", Data: data})
		if len(batch) == r.batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}

	if err := r.store.Set(ctx, r.metaTextKey(), []byte(marker)); err != nil {
		return 0, fmt.Errorf("write text marker: %w", err)
	}
	if err := r.store.Set(ctx, r.metaCountKey(), []byte(strconv.Itoa(len(items)))); err != nil {
		return 0, fmt.Errorf("write item count: %w", err)
	}
	return len(items), nil
}

// Count returns the number of items recorded by the last Replace.
func (r *Repo) Count(ctx context.Context) (int, error) {
	raw, err := r.store.Get(ctx, r.metaCountKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read item count: %w", err)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("parse item count %q: %w", raw, err)
	}
	return n, nil
}

func (r *Repo) clear(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, r.itemsPrefix()+"*")
	if err != nil {
		return fmt.Errorf("scan items: %w", err)
	}
	for start := 0; start < len(keys); start += r.batchSize {
		end := min(start+r.batchSize, len(keys))
		if err := r.store.Del(ctx, keys[start:end]...); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
	}
	return nil
}
