// Package item holds the catalog item aggregate: an opaque JSON-LD record
// that the discovery engine reads but never mutates.
package item

import (
	"encoding/json"
	"fmt"
	"maps"
)

// JSON-LD keys the engine reads.
const (
	KeyType       = "@type"
	KeyContext    = "@context"
	KeyDescriptor = "beckn:descriptor"
	KeyName       = "schema:name"
	KeyShortDesc  = "beckn:shortDesc"
	KeyLongDesc   = "beckn:longDesc"
)

// Item is a single catalog entry.
type Item struct {
	raw map[string]any
}

// New wraps a decoded JSON object. The map is owned by the Item from now on.
func New(raw map[string]any) (Item, error) {
	if raw == nil {
		return Item{}, fmt.Errorf("item is nil")
	}
	return Item{raw: raw}, nil
}

// FromJSON decodes a single JSON-LD item object.
func FromJSON(data []byte) (Item, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Item{}, fmt.Errorf("decode item: %w", err)
	}
	return New(raw)
}

// Type returns the item type identifier, e.g. "beckn:SmartphoneItem".
func (i Item) Type() string {
	s, _ := i.raw[KeyType].(string)
	return s
}

// Name returns the descriptor display name.
func (i Item) Name() string { return i.descriptorField(KeyName) }

// ShortDesc returns the descriptor short description.
func (i Item) ShortDesc() string { return i.descriptorField(KeyShortDesc) }

// LongDesc returns the descriptor long description.
func (i Item) LongDesc() string { return i.descriptorField(KeyLongDesc) }

// SearchableText returns the fields matched by text search, in match order.
func (i Item) SearchableText() []string {
	return []string{i.Name(), i.ShortDesc(), i.LongDesc(), i.Type()}
}

// Raw exposes the underlying record for read-only evaluation (path filters).
// Callers must not mutate the returned map.
func (i Item) Raw() map[string]any { return i.raw }

// Annotate returns a shallow copy of the record with "@context" set.
func (i Item) Annotate(contextURI string) map[string]any {
	out := make(map[string]any, len(i.raw)+1)
	maps.Copy(out, i.raw)
	out[KeyContext] = contextURI
	return out
}

// MarshalJSON encodes the underlying record unchanged.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.raw)
}

func (i Item) descriptorField(key string) string {
	d, ok := i.raw[KeyDescriptor].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := d[key].(string)
	return s
}
