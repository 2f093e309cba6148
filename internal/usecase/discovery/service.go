package discovery

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	domdisc "github.com/kailas-cloud/discover/internal/domain/discovery"
	"github.com/kailas-cloud/discover/internal/domain/discovery/request"
	"github.com/kailas-cloud/discover/internal/domain/discovery/response"
	"github.com/kailas-cloud/discover/internal/domain/hierarchy"
	"github.com/kailas-cloud/discover/internal/domain/item"
	"github.com/kailas-cloud/discover/internal/logger"
	"github.com/kailas-cloud/discover/internal/metrics"
	"github.com/kailas-cloud/discover/internal/pathfilter"
)

// Pipeline stage names used in logs and metrics.
const (
	StageFetch  = "fetch"
	StageType   = "type"
	StageText   = "text"
	StageFilter = "filter"
	StagePage   = "page"
)

// Service runs discover requests: validate, expand types, fetch candidates,
// filter by type, text and structured filter, paginate and wrap in a catalog.
type Service struct {
	items    ItemSource
	types    TypeExpander
	resolver request.Resolver
	filters  FilterCompiler
	synth    *response.Synthesizer
	limits   request.Limits
}

// New creates a discovery service.
func New(
	items ItemSource, types TypeExpander, resolver request.Resolver,
	filters FilterCompiler, synth *response.Synthesizer, limits request.Limits,
) *Service {
	return &Service{
		items:    items,
		types:    types,
		resolver: resolver,
		filters:  filters,
		synth:    synth,
		limits:   limits,
	}
}

// Discover validates body and returns one catalog page. Caller errors are
// *domdisc.Error; any other error is an internal failure.
func (s *Service) Discover(ctx context.Context, body request.Body, opts request.Options) (response.Response, error) {
	resp, err := s.discover(ctx, body, opts)
	metrics.DiscoverRequestsTotal.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return response.Response{}, err
	}
	metrics.DiscoverItemsReturned.Observe(float64(len(resp.Catalogs[0].Items)))
	return resp, nil
}

func (s *Service) discover(ctx context.Context, body request.Body, opts request.Options) (response.Response, error) {
	req, err := request.Parse(body, s.resolver, s.limits, opts)
	if err != nil {
		return response.Response{}, err
	}
	ctx = logger.WithMessage(ctx, req.Context().MessageID, req.Context().TraceID)

	// Compiled up front so a malformed filter fails before any data is read.
	var f pathfilter.Filter
	if req.Filter() != "" {
		f, err = s.filters.Compile(req.Filter())
		if err != nil {
			return response.Response{}, domdisc.InvalidFilter(s.filters.Language(), req.Filter(), err)
		}
	}

	constrained := req.HasTypeConstraint()
	expanded := s.types.Expand(req.RequestedTypes())
	text := ""
	if req.TextSearch() != "" && len(expanded) > 0 {
		text = req.TextSearch()
	}

	log := logger.FromContext(ctx)

	var candidates []item.Item
	if !constrained || len(expanded) > 0 {
		var types []string
		if constrained {
			types = expanded.Sorted()
		}
		candidates, err = s.items.ListItems(ctx, types, text)
		if err != nil {
			return response.Response{}, fmt.Errorf("list items: %w", err)
		}
	}
	observe(log, StageFetch, len(candidates), len(candidates))

	if constrained {
		before := len(candidates)
		candidates = filterByType(candidates, expanded)
		observe(log, StageType, before, len(candidates))
	}

	if text != "" {
		before := len(candidates)
		candidates = filterByText(candidates, text)
		observe(log, StageText, before, len(candidates))
	}

	if f != nil {
		before := len(candidates)
		candidates, err = applyFilter(ctx, f, candidates)
		if err != nil {
			return response.Response{}, domdisc.InvalidFilter(s.filters.Language(), req.Filter(), err)
		}
		observe(log, StageFilter, before, len(candidates))
	}

	page := paginate(candidates, req.Offset(), req.Limit())
	observe(log, StagePage, len(candidates), len(page))

	return s.synth.Synthesize(page, req.Context()), nil
}

func filterByType(items []item.Item, types hierarchy.Set) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		if types.Contains(it.Type()) {
			out = append(out, it)
		}
	}
	return out
}

// wordPattern matches term as a whole word, case-insensitively.
func wordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
}

func filterByText(items []item.Item, term string) []item.Item {
	re := wordPattern(term)
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		for _, field := range it.SearchableText() {
			if re.MatchString(field) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// applyFilter evaluates f over the item array. Only object results are kept.
func applyFilter(ctx context.Context, f pathfilter.Filter, items []item.Item) ([]item.Item, error) {
	values := make([]any, len(items))
	for i, it := range items {
		values[i] = it.Raw()
	}
	selected, err := f.Apply(ctx, values)
	if err != nil {
		return nil, err
	}

	out := make([]item.Item, 0, len(selected))
	for _, v := range selected {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		it, err := item.New(m)
		if err != nil {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func paginate(items []item.Item, offset, limit int) []item.Item {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func observe(log *zap.Logger, stage string, before, after int) {
	metrics.DiscoverStageItems.WithLabelValues(stage).Observe(float64(after))
	log.Debug("discover stage",
		zap.String("stage", stage),
		zap.Int("before", before),
		zap.Int("after", after),
	)
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	de, ok := domdisc.AsError(err)
	switch {
	case !ok:
		return metrics.OutcomeInternalError
	case de.Code == domdisc.CodeInvalidFilter:
		return metrics.OutcomeFilterError
	default:
		return metrics.OutcomeValidationError
	}
}
