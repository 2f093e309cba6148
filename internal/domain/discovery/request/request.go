// Package request validates discover requests into an immutable Request.
package request

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/kailas-cloud/discover/internal/domain/discovery"
	"github.com/kailas-cloud/discover/internal/domain/schemactx"
)

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Required context fields, in the order they are checked.
const (
	FieldTimestamp     = "ts"
	FieldMessageID     = "msgid"
	FieldTraceID       = "traceid"
	FieldNetworkID     = "network_id"
	FieldSchemaContext = "schema_context"
)

var requiredFields = []string{FieldTimestamp, FieldMessageID, FieldTraceID, FieldNetworkID, FieldSchemaContext}

// Body is the undecoded wire form of a discover request. Fields stay raw so
// that validation can report problems in a fixed order regardless of JSON types.
type Body struct {
	Context    json.RawMessage `json:"context"`
	TextSearch json.RawMessage `json:"text_search,omitempty"`
	Filters    json.RawMessage `json:"filters,omitempty"`
	Pagination json.RawMessage `json:"pagination,omitempty"`
}

// Context is the validated request context.
type Context struct {
	Timestamp     string
	MessageID     string
	TraceID       string
	NetworkID     string
	SchemaContext []string
}

// Resolver maps schema-context URIs to registered types.
type Resolver interface {
	Resolve(uri string) (schemactx.Resolution, bool)
}

// Limits bounds pagination for an entry point.
type Limits struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultLimits returns {page 1, limit 20, max 100}.
func DefaultLimits() Limits {
	return Limits{DefaultPage: DefaultPage, DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// Options enables checks that only some entry points require.
type Options struct {
	RequireSchemaContext    bool
	RequireSearchParameters bool
}

// Request is a validated discover request.
type Request struct {
	context     Context
	textSearch  string
	filter      string
	page        int
	limit       int
	resolutions []schemactx.Resolution
}

// Parse validates body and resolves its schema contexts. The first violation
// is returned as a *discovery.Error; later checks are not run.
func Parse(body Body, resolver Resolver, limits Limits, opts Options) (Request, error) {
	limits = limits.withDefaults()

	rawCtx, ok := decodeObject(body.Context)
	if !ok {
		return Request{}, discovery.MissingContext()
	}

	for _, f := range requiredFields {
		if isAbsent(rawCtx[f]) {
			return Request{}, discovery.MissingContextField(f)
		}
	}

	schemaContext, ok := decodeStringList(rawCtx[FieldSchemaContext])
	if !ok {
		return Request{}, discovery.SchemaContextNotArray()
	}
	if opts.RequireSchemaContext && len(schemaContext) == 0 {
		return Request{}, discovery.MissingSchemaContext()
	}

	page, limit, verr := parsePagination(body.Pagination, limits)
	if verr != nil {
		return Request{}, verr
	}

	resolutions := make([]schemactx.Resolution, 0, len(schemaContext))
	for _, uri := range schemaContext {
		res, ok := resolver.Resolve(uri)
		if !ok {
			return Request{}, discovery.InvalidSchemaContext(uri)
		}
		resolutions = append(resolutions, res)
	}

	textSearch := scalarText(body.TextSearch)
	filter := scalarText(body.Filters)
	if opts.RequireSearchParameters && textSearch == "" && filter == "" {
		return Request{}, discovery.MissingSearchParameters()
	}

	return Request{
		context: Context{
			Timestamp:     scalarText(rawCtx[FieldTimestamp]),
			MessageID:     scalarText(rawCtx[FieldMessageID]),
			TraceID:       scalarText(rawCtx[FieldTraceID]),
			NetworkID:     scalarText(rawCtx[FieldNetworkID]),
			SchemaContext: schemaContext,
		},
		textSearch:  textSearch,
		filter:      filter,
		page:        page,
		limit:       limit,
		resolutions: resolutions,
	}, nil
}

// Context returns the validated context block.
func (r *Request) Context() Context { return r.context }

// TextSearch returns the search term, empty when none was supplied.
func (r *Request) TextSearch() string { return r.textSearch }

// Filter returns the structured filter expression, empty when none was supplied.
func (r *Request) Filter() string { return r.filter }

// Page returns the 1-based page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the zero-based index of the first item of the page.
func (r *Request) Offset() int { return (r.page - 1) * r.limit }

// HasTypeConstraint reports whether the caller listed any schema context.
// An empty list means "no constraint", which differs from a list whose
// entries resolve to no concrete type.
func (r *Request) HasTypeConstraint() bool { return len(r.context.SchemaContext) > 0 }

// RequestedTypes returns the concrete types named by the schema contexts,
// in request order, without duplicates. The base context contributes none.
func (r *Request) RequestedTypes() []string {
	seen := make(map[string]struct{}, len(r.resolutions))
	out := make([]string, 0, len(r.resolutions))
	for _, res := range r.resolutions {
		if res.IsBase || res.Type == "" {
			continue
		}
		if _, dup := seen[res.Type]; dup {
			continue
		}
		seen[res.Type] = struct{}{}
		out = append(out, res.Type)
	}
	return out
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPage <= 0 {
		l.DefaultPage = DefaultPage
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}

func parsePagination(raw json.RawMessage, limits Limits) (int, int, *discovery.Error) {
	page, limit := limits.DefaultPage, limits.DefaultLimit

	p, ok := decodeObject(raw)
	if !ok {
		return page, limit, nil
	}

	if v, supplied := p["page"]; supplied && !isNull(v) {
		n, ok := decodeInteger(v)
		if !ok || n < 1 {
			return 0, 0, discovery.InvalidPage()
		}
		page = n
	}
	if v, supplied := p["limit"]; supplied && !isNull(v) {
		n, ok := decodeInteger(v)
		if !ok || n < 1 || n > limits.MaxLimit {
			return 0, 0, discovery.InvalidLimit(limits.MaxLimit)
		}
		limit = n
	}
	return page, limit, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if isNull(raw) {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func decodeStringList(raw json.RawMessage) ([]string, bool) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, el := range list {
		out = append(out, scalarText(el))
	}
	return out, true
}

// decodeInteger accepts JSON numbers with an integral value (2 and 2.0 alike).
func decodeInteger(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// scalarText returns a JSON string's value, or the literal JSON text of any
// other non-null value.
func scalarText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// isAbsent treats a missing key, null and the empty string as absent.
func isAbsent(raw json.RawMessage) bool {
	if isNull(raw) {
		return true
	}
	return bytes.Equal(bytes.TrimSpace(raw), []byte(`""`))
}
