package discovery

import (
	"context"

	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/domain/item"
	"github.com/kailas-cloud/discover/internal/pathfilter"
)

// ItemSource lists candidate items in a stable order. types restricts the
// result to items whose @type is listed (nil means any type). text is a hint
// the source may use to narrow candidates; it is never authoritative.
type ItemSource interface {
	ListItems(ctx context.Context, types []string, text string) ([]item.Item, error)
}

// TypeExpander expands types into themselves plus all descendants.
type TypeExpander interface {
	Expand(types []string) hierarchy.Set
}

// FilterCompiler compiles structured filter expressions.
type FilterCompiler interface {
	Compile(expr string) (pathfilter.Filter, error)
	Language() string
}
