package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/discover/internal/db"
	redisstore "github.com/kailas-cloud/discover/internal/db/redis"
	"github.com/kailas-cloud/discover/internal/domain/search/filter"
)

// SearchList lists documents in key order. Without filters it falls back to
// SCAN + JSON.MGET; with filters it fetches every match and pages client-side,
// since valkey-search cannot SORTBY. A cursor resumes after q.After.Key.
// Text restrictions are rejected.
func (s *Store) SearchList(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Text != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrTextSearchNotSupported}
	}

	if q.Filters.IsEmpty() {
		return s.scanList(ctx, q.IndexName, q.After, q.Offset, q.Limit)
	}
	return s.searchAll(ctx, q)
}

// SearchCount returns document count. Falls back to SCAN without filters
// because valkey-search does not support a bare wildcard query.
func (s *Store) SearchCount(ctx context.Context, index string, filters filter.Expression) (int, error) {
	if filters.IsEmpty() {
		keys, err := s.Scan(ctx, indexToKeyPrefix(index)+"*")
		if err != nil {
			return 0, fmt.Errorf("scan for count: %w", err)
		}
		return len(keys), nil
	}
	return s.Store.SearchCount(ctx, index, filters)
}

func (s *Store) searchAll(ctx context.Context, q *db.ListQuery) (*db.SearchResult, error) {
	total, err := s.Store.SearchCount(ctx, q.IndexName, q.Filters)
	if err != nil {
		return nil, err
	}
	if total == 0 || q.Offset >= total {
		return &db.SearchResult{Total: total}, nil
	}

	args := []string{q.IndexName, redisstore.BuildFilter(q.Filters)}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	args = append(args, "LIMIT", "0", strconv.Itoa(total), "DIALECT", "2")

	c := s.Client()
	raw, err := c.Do(ctx, c.B().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	res, err := redisstore.ParseListResult(raw)
	if err != nil {
		return nil, err
	}

	// keys embed a zero-padded sequence number, so key order is load order
	sort.Slice(res.Entries, func(i, j int) bool { return res.Entries[i].Key < res.Entries[j].Key })
	entries := res.Entries
	if q.After != nil {
		start := sort.Search(len(entries), func(i int) bool { return entries[i].Key > q.After.Key })
		entries = entries[start:]
	}

	end := min(q.Offset+q.Limit, len(entries))
	if q.Offset >= end {
		return &db.SearchResult{Total: len(entries)}, nil
	}
	return &db.SearchResult{Total: len(entries), Entries: entries[q.Offset:end]}, nil
}

// scanList implements listing via SCAN + JSON.MGET for valkey-search
// which does not support bare FT.SEARCH without KNN.
func (s *Store) scanList(ctx context.Context, index string, after *db.Cursor, offset, limit int) (*db.SearchResult, error) {
	prefix := indexToKeyPrefix(index)
	keys, err := s.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}

	sort.Strings(keys) // deterministic ordering
	if after != nil {
		keys = keys[sort.Search(len(keys), func(i int) bool { return keys[i] > after.Key }):]
	}

	total := len(keys)
	if offset >= total {
		return &db.SearchResult{Total: total}, nil
	}

	end := min(offset+limit, total)
	pageKeys := keys[offset:end]

	docs, err := s.JSONMGet(ctx, pageKeys, "$")
	if err != nil {
		return nil, fmt.Errorf("fetch list page: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(pageKeys))
	for i, key := range pageKeys {
		if docs[i] == nil {
			continue // key may have been deleted between SCAN and MGET
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: map[string]string{"$": unwrapRoot(docs[i])},
		})
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// unwrapRoot turns a JSON.GET "$" reply ([doc]) into the bare document,
// the shape FT.SEARCH returns.
func unwrapRoot(raw []byte) string {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
		return string(raw)
	}
	return string(arr[0])
}

// indexToKeyPrefix converts index name to a SCAN prefix.
// "discover:items:idx" -> "discover:items:"
func indexToKeyPrefix(index string) string {
	if strings.HasSuffix(index, ":idx") {
		return index[:len(index)-3]
	}
	return index + ":"
}
