// Package response builds the catalog envelope returned by discover.
package response

import (
	"time"

	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/item"
)

// JSON-LD type names of the envelope.
const (
	TypeCatalog    = "beckn:Catalog"
	TypeDescriptor = "beckn:Descriptor"
	TypeTimePeriod = "beckn:TimePeriod"
)

// TimestampLayout is the server timestamp format (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Response is a successful discover result.
type Response struct {
	Context  Context   `json:"context"`
	Catalogs []Catalog `json:"catalogs"`
}

// Context echoes the request context with a server-generated timestamp.
type Context struct {
	Timestamp     string   `json:"ts"`
	MessageID     string   `json:"msgid"`
	TraceID       string   `json:"traceid"`
	NetworkID     string   `json:"network_id"`
	SchemaContext []string `json:"schema_context"`
}

// Catalog groups one page of items under a descriptive header.
type Catalog struct {
	Type       string           `json:"@type"`
	Descriptor Descriptor       `json:"beckn:descriptor"`
	ProviderID string           `json:"beckn:providerId"`
	TimePeriod TimePeriod       `json:"beckn:timePeriod"`
	Items      []map[string]any `json:"beckn:items"`
}

// Descriptor names a catalog.
type Descriptor struct {
	Type      string `json:"@type"`
	Name      string `json:"schema:name"`
	ShortDesc string `json:"beckn:shortDesc"`
}

// TimePeriod is the catalog validity window.
type TimePeriod struct {
	Type      string `json:"@type"`
	StartDate string `json:"schema:startDate"`
	EndDate   string `json:"schema:endDate"`
}

// Family maps every type descending from Root to a catalog descriptor.
type Family struct {
	Root      string
	Name      string
	ShortDesc string
}

// Settings configures the envelope.
type Settings struct {
	ProviderID string
	StartDate  string
	EndDate    string
	// Families are tested in order; the first one matching any page type wins.
	Families []Family
	Fallback Family
}

// DefaultSettings returns the envelope used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ProviderID: "tech-store-001",
		StartDate:  "2025-01-27",
		EndDate:    "2026-12-31",
		Families: []Family{
			{Root: "beckn:ElectronicItem", Name: "Electronic Catalog", ShortDesc: "Latest elecronics, smartphones and telivisons"},
			{Root: "beckn:GroceryItem", Name: "Grocery Catalog", ShortDesc: "Fresh groceries and organic products"},
		},
		Fallback: Family{Name: "Beckn Catalog", ShortDesc: "Items catalog"},
	}
}

// TypeTable answers hierarchy membership.
type TypeTable interface {
	IsA(typeID, ancestor string) bool
}

// ContextLocator returns the context URI for an item type.
type ContextLocator interface {
	ContextFor(typeID string) string
}

// Synthesizer turns a page of items into a Response.
type Synthesizer struct {
	types    TypeTable
	contexts ContextLocator
	settings Settings
	now      func() time.Time
}

// NewSynthesizer creates a synthesizer. now defaults to time.Now.
func NewSynthesizer(types TypeTable, contexts ContextLocator, settings Settings, now func() time.Time) *Synthesizer {
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{types: types, contexts: contexts, settings: settings, now: now}
}

// Synthesize wraps page in a single catalog. Each item is a shallow copy
// carrying the context URI of its own type.
func (s *Synthesizer) Synthesize(page []item.Item, rc request.Context) Response {
	items := make([]map[string]any, 0, len(page))
	for _, it := range page {
		items = append(items, it.Annotate(s.contexts.ContextFor(it.Type())))
	}

	schemaContext := rc.SchemaContext
	if schemaContext == nil {
		schemaContext = []string{}
	}

	return Response{
		Context: Context{
			Timestamp:     s.now().UTC().Format(TimestampLayout),
			MessageID:     rc.MessageID,
			TraceID:       rc.TraceID,
			NetworkID:     rc.NetworkID,
			SchemaContext: schemaContext,
		},
		Catalogs: []Catalog{{
			Type:       TypeCatalog,
			Descriptor: s.describe(page),
			ProviderID: s.settings.ProviderID,
			TimePeriod: TimePeriod{
				Type:      TypeTimePeriod,
				StartDate: s.settings.StartDate,
				EndDate:   s.settings.EndDate,
			},
			Items: items,
		}},
	}
}

func (s *Synthesizer) describe(page []item.Item) Descriptor {
	present := make(map[string]struct{}, len(page))
	for _, it := range page {
		if t := it.Type(); t != "" {
			present[t] = struct{}{}
		}
	}

	chosen := s.settings.Fallback
	for _, fam := range s.settings.Families {
		if s.anyIsA(present, fam.Root) {
			chosen = fam
			break
		}
	}
	return Descriptor{Type: TypeDescriptor, Name: chosen.Name, ShortDesc: chosen.ShortDesc}
}

func (s *Synthesizer) anyIsA(types map[string]struct{}, root string) bool {
	for t := range types {
		if s.types.IsA(t, root) {
			return true
		}
	}
	return false
}
