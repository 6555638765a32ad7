package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"mediashelf/internal/content"
	"mediashelf/internal/logging"
	"mediashelf/internal/matching"
	"mediashelf/internal/services"
)

const defaultPageSize = 10

// ErrUnavailable marks a search that could not reach any provider. An empty
// result is never reported with this error.
var ErrUnavailable = errors.New("search provider unavailable")

// ErrQueryFailed marks a search whose providers were reached but rejected or
// failed this query, for example with an HTTP 429 or 500. It concerns one
// query only.
var ErrQueryFailed = errors.New("search query failed")

// Query describes one content search.
type Query struct {
	Type content.Type
	Text string
	// Page is 1-based; values below 1 are treated as 1.
	Page     int
	PageSize int
	// PreferProvider restricts the search to one provider tag when that
	// provider supports Type.
	PreferProvider string
	// Language is a BCP 47 tag such as "ko-KR"; providers that cannot filter
	// by language ignore it.
	Language string
}

// Page is one page of merged candidates.
type Page struct {
	Items   []content.MatchCandidate
	Total   int
	HasMore bool
}

// Provider is one external content source.
type Provider interface {
	Name() string
	Supports(t content.Type) bool
	Search(ctx context.Context, q Query) (Page, error)
}

// Searcher is the search contract consumed by matching and manual override.
type Searcher interface {
	Search(ctx context.Context, q Query) (Page, error)
}

// Service fans a query out to the providers registered for its content type.
type Service struct {
	providers []Provider
	limiters  map[string]*rate.Limiter
	cache     *cache.Cache
	pageSize  int
	rps       float64
	logger    *slog.Logger
}

var _ Searcher = (*Service)(nil)

// Option customizes the service.
type Option func(*Service)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logging.NewComponentLogger(logger, "search") }
}

// WithCacheTTL enables result caching. A zero or negative TTL disables it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New(ttl, 2*ttl)
	}
}

// WithRequestsPerSecond limits calls per provider. Zero disables limiting.
func WithRequestsPerSecond(rps float64) Option {
	return func(s *Service) { s.rps = rps }
}

// WithPageSize sets the page size used when a query leaves it unset.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// New builds a service over providers, queried in the order given.
func New(providers []Provider, opts ...Option) *Service {
	s := &Service{
		pageSize: defaultPageSize,
		logger:   logging.NewComponentLogger(nil, "search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiters = make(map[string]*rate.Limiter, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		s.providers = append(s.providers, p)
		limit := rate.Inf
		if s.rps > 0 {
			limit = rate.Limit(s.rps)
		}
		s.limiters[p.Name()] = rate.NewLimiter(limit, 1)
	}
	return s
}

// Providers returns the registered provider tags in query order.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// ProvidersFor returns the provider tags that serve t.
func (s *Service) ProvidersFor(t content.Type) []string {
	var names []string
	for _, p := range s.providers {
		if p.Supports(t) {
			names = append(names, p.Name())
		}
	}
	return names
}

// Search queries the providers for q.Type and concatenates their pages. A type
// no provider serves yields an empty page. Provider failures are tolerated as
// long as one provider answers. When all fail the error wraps ErrUnavailable
// if none of them could be reached, and ErrQueryFailed otherwise.
func (s *Service) Search(ctx context.Context, q Query) (Page, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Page{}, services.Wrap(services.ErrValidation, "search", "query", "search text must not be empty", nil)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}

	targets := s.targets(q)
	if len(targets) == 0 {
		s.logger.Debug("no provider for content type",
			logging.String(logging.FieldContentType, q.Type.String()),
		)
		return Page{}, nil
	}

	var (
		merged   Page
		failures []error
	)
	for _, provider := range targets {
		page, err := s.searchProvider(ctx, provider, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Page{}, ctxErr
			}
			logging.WarnWithContext(s.logger, "provider search failed", "search_provider_failed",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.String(logging.FieldContentType, q.Type.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check provider credentials and connectivity"),
				logging.String(logging.FieldImpact, "results from this provider are missing"),
			)
			failures = append(failures, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}
		merged.Items = append(merged.Items, page.Items...)
		merged.Total += page.Total
		merged.HasMore = merged.HasMore || page.HasMore
	}
	if len(failures) == len(targets) {
		marker := ErrUnavailable
		for _, failure := range failures {
			if !unreachable(failure) {
				marker = ErrQueryFailed
				break
			}
		}
		return Page{}, fmt.Errorf("%w: %w", marker, errors.Join(failures...))
	}
	return merged, nil
}

// unreachable reports a transport failure: the provider never answered.
func unreachable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (s *Service) targets(q Query) []Provider {
	if prefer := strings.ToLower(strings.TrimSpace(q.PreferProvider)); prefer != "" {
		for _, p := range s.providers {
			if p.Name() == prefer && p.Supports(q.Type) {
				return []Provider{p}
			}
		}
	}
	var out []Provider
	for _, p := range s.providers {
		if p.Supports(q.Type) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) searchProvider(ctx context.Context, provider Provider, q Query) (Page, error) {
	key := cacheKey(provider.Name(), q)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.logger.Debug("search cache hit",
				logging.String(logging.FieldProvider, provider.Name()),
				logging.String("query", q.Text),
			)
			return clonePage(cached.(Page)), nil
		}
	}
	if limiter := s.limiters[provider.Name()]; limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return Page{}, err
		}
	}
	start := time.Now()
	page, err := provider.Search(ctx, q)
	if err != nil {
		return Page{}, err
	}
	for i := range page.Items {
		if page.Items[i].ExternalSource == "" {
			page.Items[i].ExternalSource = provider.Name()
		}
	}
	s.logger.Debug("provider search complete",
		logging.String(logging.FieldProvider, provider.Name()),
		logging.String(logging.FieldContentType, q.Type.String()),
		logging.String("query", q.Text),
		logging.Int("results", len(page.Items)),
		logging.Duration("latency", time.Since(start)),
	)
	if s.cache != nil {
		s.cache.Set(key, clonePage(page), cache.DefaultExpiration)
	}
	return page, nil
}

func cacheKey(provider string, q Query) string {
	var b strings.Builder
	b.WriteString(provider)
	b.WriteString("|")
	b.WriteString(string(q.Type))
	b.WriteString("|")
	b.WriteString(strings.ToLower(q.Language))
	b.WriteString("|p=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("|n=")
	b.WriteString(strconv.Itoa(q.PageSize))
	b.WriteString("|")
	b.WriteString(matching.Normalize(q.Text))
	return b.String()
}

func clonePage(p Page) Page {
	out := Page{Total: p.Total, HasMore: p.HasMore}
	if p.Items != nil {
		out.Items = make([]content.MatchCandidate, len(p.Items))
		for i, item := range p.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}
