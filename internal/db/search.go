package db

import "github.com/kailas-cloud/discover/internal/domain/search/filter"

// SortOrder of a list query.
type SortOrder string

const (
	// SortAsc sorts ascending.
	SortAsc SortOrder = "ASC"
	// SortDesc sorts descending.
	SortDesc SortOrder = "DESC"
)

// TextMatch restricts a list query to documents whose TEXT fields contain
// every term of Query. Stores without TEXT support reject it.
type TextMatch struct {
	Fields []string
	Query  string
}

// Cursor resumes an ascending listing after the last entry of the previous
// page. Stores that sort by Field skip values up to Value; stores that list
// in key order skip keys up to Key.
type Cursor struct {
	Key   string
	Field string
	Value int64
}

// ListQuery is the input for a filtered, ordered FT.SEARCH listing.
// With After set, Offset counts from the cursor and Total counts the
// matches remaining after it.
type ListQuery struct {
	IndexName    string
	Filters      filter.Expression
	Text         *TextMatch
	After        *Cursor
	SortBy       string
	Order        SortOrder
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
