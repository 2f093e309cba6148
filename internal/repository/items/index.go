package items

import (
	"fmt"

	"github.com/kailas-cloud/discover/internal/db"
)

// Index attribute names.
const (
	fieldSeq       = "seq"
	fieldType      = "type"
	fieldName      = "name"
	fieldShortDesc = "short_desc"
	fieldLongDesc  = "long_desc"
	fieldTypeText  = "type_text"
)

// textFields are searched by store-side text pre-filtering, mirroring the
// fields of in-process text search.
var textFields = []string{fieldName, fieldShortDesc, fieldLongDesc, fieldTypeText}

func (r *Repo) itemsPrefix() string { return r.prefix + "items:" }

func (r *Repo) indexName() string { return r.prefix + "items:idx" }

func (r *Repo) metaCountKey() string { return r.prefix + "meta:items" }

// metaTextKey records whether every searchable field of the corpus is ASCII.
func (r *Repo) metaTextKey() string { return r.prefix + "meta:text" }

// itemKey zero-pads seq so lexical key order equals load order.
func (r *Repo) itemKey(seq int) string { return fmt.Sprintf("%s%08d", r.itemsPrefix(), seq) }

// buildIndex creates the item index. TEXT fields are added only when the
// backend supports them (valkey-search 1.0 does not).
func (r *Repo) buildIndex(textSearchEnabled bool) (*db.IndexDefinition, error) {
	b := db.NewIndex(r.indexName()).
		OnJSON().
		Prefix(r.itemsPrefix()).
		Numeric("$.seq").As(fieldSeq).Sortable().
		TagWithOpts("$.type", ",", true).As(fieldType)

	if textSearchEnabled {
		b = b.NoStopwords().
			Text("$.name").As(fieldName).
			Text("$.short_desc").As(fieldShortDesc).
			Text("$.long_desc").As(fieldLongDesc).
			Text("$.type").As(fieldTypeText)
	}

	return b.Build()
}
