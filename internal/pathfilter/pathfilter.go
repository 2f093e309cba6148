// Package pathfilter compiles structured item filters. A filter is applied
// to the array of candidate items and yields the values it selects.
package pathfilter

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Language selects the filter dialect.
type Language string

const (
	// JSONPath filters are JSONPath expressions rooted at the item array,
	// e.g. "$[?(@.price.value < 500)]".
	JSONPath Language = "jsonpath"
	// JQ filters are jq programs whose input is the item array,
	// e.g. ".[] | select(.price.value < 500)".
	JQ Language = "jq"
)

// DefaultCacheSize is the number of compiled filters kept.
const DefaultCacheSize = 256

// Filter is a compiled, reusable filter. Implementations are safe for concurrent use.
type Filter interface {
	// Apply evaluates the filter over items and returns the selected values
	// in evaluation order. Values are not necessarily objects.
	Apply(ctx context.Context, items []any) ([]any, error)
}

// Compiler parses filter expressions of one language, caching the results.
type Compiler struct {
	lang    Language
	compile func(expr string) (Filter, error)
	cache   *lru.Cache[string, Filter]
}

// New creates a compiler for lang. cacheSize <= 0 uses DefaultCacheSize.
func New(lang Language, cacheSize int) (*Compiler, error) {
	c := &Compiler{lang: lang}
	switch lang {
	case JSONPath, "":
		c.lang = JSONPath
		c.compile = compileJSONPath
	case JQ:
		c.compile = compileJQ
	default:
		return nil, fmt.Errorf("unknown filter language %q", lang)
	}

	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, Filter](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create filter cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Language returns the display name of the dialect used in error messages.
func (c *Compiler) Language() string {
	if c.lang == JQ {
		return "jq"
	}
	return "JSONPath"
}

// Compile parses expr. Successful compilations are cached by expression text.
func (c *Compiler) Compile(expr string) (Filter, error) {
	if f, ok := c.cache.Get(expr); ok {
		return f, nil
	}
	f, err := c.compile(expr)
	if err != nil {
		return nil, err
	}
	c.cache.Add(expr, f)
	return f, nil
}

// CacheLen returns the number of cached filters.
func (c *Compiler) CacheLen() int { return c.cache.Len() }
