package discover

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Context is the request context block.
type Context struct {
	Timestamp     string   `json:"ts"`
	MessageID     string   `json:"msgid"`
	TraceID       string   `json:"traceid"`
	NetworkID     string   `json:"network_id"`
	SchemaContext []string `json:"schema_context"`
}

// NewContext fills ts with the current time and fresh message and trace ids.
func NewContext(networkID string, schemaContext ...string) Context {
	if schemaContext == nil {
		schemaContext = []string{}
	}
	return Context{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		MessageID:     uuid.NewString(),
		TraceID:       uuid.NewString(),
		NetworkID:     networkID,
		SchemaContext: schemaContext,
	}
}

// Pagination selects a page. Zero fields use the server defaults.
type Pagination struct {
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Request is a POST discover request.
type Request struct {
	Context    Context     `json:"context"`
	TextSearch string      `json:"text_search,omitempty"`
	Filters    string      `json:"filters,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// BrowserQuery is a GET browser-search request.
type BrowserQuery struct {
	SchemaContext []string
	Query         string
	Filters       string
	Page          int
	Limit         int
}

// Response is a discover result page.
type Response struct {
	Context  ResponseContext `json:"context"`
	Catalogs []Catalog       `json:"catalogs"`
}

// ResponseContext echoes the request with the server timestamp.
type ResponseContext struct {
	Timestamp     string   `json:"ts"`
	MessageID     string   `json:"msgid"`
	TraceID       string   `json:"traceid"`
	NetworkID     string   `json:"network_id"`
	SchemaContext []string `json:"schema_context"`
}

// Catalog holds one page of items.
type Catalog struct {
	Type       string     `json:"@type"`
	Descriptor Descriptor `json:"beckn:descriptor"`
	ProviderID string     `json:"beckn:providerId"`
	TimePeriod TimePeriod `json:"beckn:timePeriod"`
	Items      []Item     `json:"beckn:items"`
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

// Item is a JSON-LD catalog item as returned by the server.
type Item map[string]any

// Type returns the item's @type.
func (i Item) Type() string {
	s, _ := i["@type"].(string)
	return s
}

// Context returns the item's @context.
func (i Item) Context() string {
	s, _ := i["@context"].(string)
	return s
}

// Name returns beckn:descriptor.schema:name.
func (i Item) Name() string {
	d, _ := i["beckn:descriptor"].(map[string]any)
	s, _ := d["schema:name"].(string)
	return s
}

// Decode unmarshals the item into v.
func (i Item) Decode(v any) error {
	data, err := json.Marshal(i)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Items returns the items of every catalog in the response.
func (r *Response) Items() []Item {
	var out []Item
	for _, c := range r.Catalogs {
		out = append(out, c.Items...)
	}
	return out
}
