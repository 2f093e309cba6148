package discovery

import (
	"context"
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/discovery/response"
	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/domain/item"
	"github.com/kailas-cloud/discover/internal/domain/schemactx"
	"github.com/kailas-cloud/discover/internal/pathfilter"
)

const (
	baseContext       = "https://becknprotocol.io/schema/context.jsonld"
	electronicContext = "https://becknprotocol.io/schema/items/ElectronicItem/schema-context.jsonld"
	smartphoneContext = "https://becknprotocol.io/schema/items/SmartphoneItem/schema-context.jsonld"
	groceryContext    = "https://becknprotocol.io/schema/items/GroceryItem/schema-context.jsonld"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// listCall records one ListItems invocation.
type listCall struct {
	types []string
	text  string
}

// mockSource is an in-memory ItemSource honouring the type hint.
type mockSource struct {
	items  []item.Item
	err    error
	calls  []listCall
	listFn func(ctx context.Context, types []string, text string) ([]item.Item, error)
}

func (m *mockSource) ListItems(ctx context.Context, types []string, text string) ([]item.Item, error) {
	m.calls = append(m.calls, listCall{types: types, text: text})
	if m.listFn != nil {
		return m.listFn(ctx, types, text)
	}
	if m.err != nil {
		return nil, m.err
	}
	if types == nil {
		return slices.Clone(m.items), nil
	}
	var out []item.Item
	for _, it := range m.items {
		if slices.Contains(types, it.Type()) {
			out = append(out, it)
		}
	}
	return out, nil
}

func testTable(t *testing.T) *hierarchy.Table {
	t.Helper()
	tbl, err := hierarchy.New([]hierarchy.Edge{
		{Parent: "beckn:Item", Child: "beckn:ElectronicItem"},
		{Parent: "beckn:Item", Child: "beckn:GroceryItem"},
		{Parent: "beckn:ElectronicItem", Child: "beckn:SmartphoneItem"},
		{Parent: "beckn:ElectronicItem", Child: "beckn:TelevisionItem"},
	})
	if err != nil {
		t.Fatalf("hierarchy.New: %v", err)
	}
	return tbl
}

func mkItem(t *testing.T, typ, name, shortDesc string, price float64) item.Item {
	t.Helper()
	it, err := item.New(map[string]any{
		"@type": typ,
		"beckn:descriptor": map[string]any{
			"schema:name":     name,
			"beckn:shortDesc": shortDesc,
		},
		"price": map[string]any{"value": price},
	})
	if err != nil {
		t.Fatalf("item.New: %v", err)
	}
	return it
}

func testItems(t *testing.T) []item.Item {
	t.Helper()
	return []item.Item{
		mkItem(t, "beckn:SmartphoneItem", "Pixel 9", "Smart phone deals", 699),
		mkItem(t, "beckn:SmartphoneItem", "Galaxy S", "Smartphone deals", 999),
		mkItem(t, "beckn:TelevisionItem", "OLED 55", "Big screen", 1499),
		mkItem(t, "beckn:GroceryItem", "Organic Milk", "Fresh milk", 3),
	}
}

func newTestService(t *testing.T, items []item.Item) (*Service, *mockSource) {
	t.Helper()
	tbl := testTable(t)
	resolver := schemactx.NewResolver(tbl, baseContext, "")
	compiler, err := pathfilter.New(pathfilter.JSONPath, 0)
	if err != nil {
		t.Fatalf("pathfilter.New: %v", err)
	}
	synth := response.NewSynthesizer(tbl, resolver, response.DefaultSettings(), func() time.Time { return testNow })
	src := &mockSource{items: items}
	return New(src, tbl, resolver, compiler, synth, request.DefaultLimits()), src
}

func validContext(schemaContext ...string) map[string]any {
	if schemaContext == nil {
		schemaContext = []string{}
	}
	return map[string]any{
		"ts":             "2025-06-01T11:59:59Z",
		"msgid":          "msg-1",
		"traceid":        "trace-1",
		"network_id":     "net-1",
		"schema_context": schemaContext,
	}
}

// makeBody encodes a request the way the HTTP layer receives it.
func makeBody(t *testing.T, fields map[string]any) request.Body {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var b request.Body
	if err := json.Unmarshal(data, &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return b
}

func itemNames(resp response.Response) []string {
	out := []string{}
	for _, it := range resp.Catalogs[0].Items {
		d, _ := it["beckn:descriptor"].(map[string]any)
		name, _ := d["schema:name"].(string)
		out = append(out, name)
	}
	return out
}
