package items

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/discover/internal/domain"
	"github.com/kailas-cloud/discover/internal/domain/item"
)

// document is the stored JSON shape. Searchable fields are lifted to the top
// level so the FT index can address them without JSON-LD key escaping.
type document struct {
	Seq       int             `json:"seq"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	ShortDesc string          `json:"short_desc"`
	LongDesc  string          `json:"long_desc"`
	Item      json.RawMessage `json:"item"`
}

func buildDocument(seq int, it item.Item) ([]byte, error) {
	raw, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("marshal item %d: %w", seq, err)
	}
	return json.Marshal(document{
		Seq:       seq,
		Type:      it.Type(),
		Name:      it.Name(),
		ShortDesc: it.ShortDesc(),
		LongDesc:  it.LongDesc(),
		Item:      raw,
	})
}

// parseDocument returns the stored item and its load sequence.
func parseDocument(key, data string) (item.Item, int, error) {
	var doc document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return item.Item{}, 0, fmt.Errorf("%w: %s: %w", domain.ErrMalformedItem, key, err)
	}
	if len(doc.Item) == 0 {
		return item.Item{}, 0, fmt.Errorf("%w: %s: no item payload", domain.ErrMalformedItem, key)
	}
	it, err := item.FromJSON(doc.Item)
	if err != nil {
		return item.Item{}, 0, fmt.Errorf("%w: %s: %w", domain.ErrMalformedItem, key, err)
	}
	return it, doc.Seq, nil
}
