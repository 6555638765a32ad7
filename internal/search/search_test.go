package search_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediashelf/internal/content"
	"mediashelf/internal/search"
	"mediashelf/internal/search/books"
	"mediashelf/internal/search/rawg"
	"mediashelf/internal/search/tmdb"
	"mediashelf/internal/services"
	"mediashelf/internal/testsupport"
)

type fakeProvider struct {
	name    string
	types   []content.Type
	page    search.Page
	err     error
	calls   int
	queries []search.Query
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Supports(t content.Type) bool {
	for _, candidate := range f.types {
		if candidate == t {
			return true
		}
	}
	return false
}

func (f *fakeProvider) Search(_ context.Context, q search.Query) (search.Page, error) {
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return search.Page{}, f.err
	}
	return f.page, nil
}

func pageOf(total int, more bool, titles ...string) search.Page {
	page := search.Page{Total: total, HasMore: more}
	for i, title := range titles {
		page.Items = append(page.Items, content.MatchCandidate{ExternalID: title + "-" + string(rune('a'+i)), Title: title})
	}
	return page
}

func TestSearchConcatenatesProvidersInOrder(t *testing.T) {
	first := &fakeProvider{name: "one", types: []content.Type{content.TypeBook}, page: pageOf(3, false, "A")}
	second := &fakeProvider{name: "two", types: []content.Type{content.TypeBook}, page: pageOf(5, true, "B", "C")}
	svc := search.New([]search.Provider{first, second})

	page, err := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "x"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].Title != "A" || page.Items[2].Title != "C" {
		t.Fatalf("unexpected items: %#v", page.Items)
	}
	if page.Total != 8 || !page.HasMore {
		t.Fatalf("expected summed totals and OR-ed hasMore, got %#v", page)
	}
	if page.Items[0].ExternalSource != "one" || page.Items[1].ExternalSource != "two" {
		t.Fatalf("expected provider tags filled in, got %#v", page.Items)
	}
	if first.queries[0].Page != 1 || first.queries[0].PageSize != 10 {
		t.Fatalf("expected page defaults, got %#v", first.queries[0])
	}
}

func TestSearchPreferProvider(t *testing.T) {
	first := &fakeProvider{name: "one", types: []content.Type{content.TypeBook}, page: pageOf(1, false, "A")}
	second := &fakeProvider{name: "two", types: []content.Type{content.TypeBook}, page: pageOf(1, false, "B")}
	svc := search.New([]search.Provider{first, second})

	page, err := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "x", PreferProvider: "TWO"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if first.calls != 0 || len(page.Items) != 1 || page.Items[0].Title != "B" {
		t.Fatalf("expected only preferred provider, got %#v (first calls=%d)", page.Items, first.calls)
	}

	// A preferred provider that cannot serve the type is ignored.
	page, err = svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "y", PreferProvider: "missing"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected fallback to all providers, got %#v", page.Items)
	}
}

func TestSearchPartialFailureKeepsResults(t *testing.T) {
	broken := &fakeProvider{name: "broken", types: []content.Type{content.TypeGame}, err: errors.New("boom")}
	ok := &fakeProvider{name: "ok", types: []content.Type{content.TypeGame}, page: pageOf(1, false, "Hades")}
	svc := search.New([]search.Provider{broken, ok})

	page, err := svc.Search(context.Background(), search.Query{Type: content.TypeGame, Text: "hades"})
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("unexpected items: %#v", page.Items)
	}
}

func TestSearchAllProvidersUnreachableIsUnavailable(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	broken := &fakeProvider{name: "broken", types: []content.Type{content.TypeGame}, err: fmt.Errorf("execute request: %w", refused)}
	svc := search.New([]search.Provider{broken})

	_, err := svc.Search(context.Background(), search.Query{Type: content.TypeGame, Text: "hades"})
	if !errors.Is(err, search.ErrUnavailable) || errors.Is(err, search.ErrQueryFailed) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSearchProviderStatusErrorIsQueryFailure(t *testing.T) {
	broken := &fakeProvider{name: "broken", types: []content.Type{content.TypeGame}, err: errors.New("rawg games search returned 500")}
	svc := search.New([]search.Provider{broken})

	_, err := svc.Search(context.Background(), search.Query{Type: content.TypeGame, Text: "hades"})
	if !errors.Is(err, search.ErrQueryFailed) || errors.Is(err, search.ErrUnavailable) {
		t.Fatalf("expected ErrQueryFailed, got %v", err)
	}
}

func TestSearchClosedServerIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client, err := rawg.New("key", server.URL)
	if err != nil {
		t.Fatalf("rawg.New: %v", err)
	}
	svc := search.New([]search.Provider{search.NewRAWGProvider(client, nil)})

	_, err = svc.Search(context.Background(), search.Query{Type: content.TypeGame, Text: "hades"})
	if !errors.Is(err, search.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for a closed server, got %v", err)
	}
}

func TestSearchUnservedTypeIsEmpty(t *testing.T) {
	svc := search.New([]search.Provider{&fakeProvider{name: "one", types: []content.Type{content.TypeBook}}})
	page, err := svc.Search(context.Background(), search.Query{Type: content.TypeCertificate, Text: "AWS"})
	if err != nil {
		t.Fatalf("expected empty page, got error %v", err)
	}
	if len(page.Items) != 0 || page.HasMore {
		t.Fatalf("expected empty page, got %#v", page)
	}
}

func TestSearchEmptyTextIsValidationError(t *testing.T) {
	svc := search.New(nil)
	if _, err := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "  "}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchCachesByNormalizedQuery(t *testing.T) {
	provider := &fakeProvider{name: "one", types: []content.Type{content.TypeBook}, page: pageOf(1, false, "A")}
	svc := search.New([]search.Provider{provider}, search.WithCacheTTL(time.Minute))

	for _, text := range []string{"Demian", " demian ", "DEMIAN"} {
		page, err := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: text})
		if err != nil {
			t.Fatalf("Search returned error: %v", err)
		}
		page.Items[0].Title = "mutated"
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.calls)
	}
	page, _ := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "demian"})
	if page.Items[0].Title != "A" {
		t.Fatalf("cached page was mutated through a returned copy: %#v", page.Items)
	}
	if _, err := svc.Search(context.Background(), search.Query{Type: content.TypeBook, Text: "demian", Page: 2}); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected a different page to miss the cache, got %d calls", provider.calls)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	provider := &fakeProvider{name: "one", types: []content.Type{content.TypeBook}, err: context.Canceled}
	svc := search.New([]search.Provider{provider})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Search(ctx, search.Query{Type: content.TypeBook, Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestTMDBProviderFillsDirector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/multi":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"total_results":1,"results":[{"id":496243,"title":"기생충","original_title":"기생충","media_type":"movie","release_date":"2019-05-30"}]}`))
		case "/movie/496243/credits":
			_, _ = w.Write([]byte(`{"crew":[{"name":"Bong Joon-ho","job":"Director"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	provider := search.NewTMDBProvider(client, nil)
	page, err := provider.Search(context.Background(), search.Query{Type: content.TypeVideo, Text: "기생충", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("unexpected items: %#v", page.Items)
	}
	got := page.Items[0]
	if got.ExternalID != "movie:496243" || got.Creator != "Bong Joon-ho" || got.Metadata["year"] != "2019" {
		t.Fatalf("unexpected candidate: %#v", got)
	}
	if page.HasMore {
		t.Fatal("did not expect more pages")
	}
}

func TestBooksAndRAWGProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/volumes":
			_, _ = w.Write([]byte(`{"totalItems":25,"items":[{"id":"v1","volumeInfo":{"title":"데미안","authors":["헤르만 헤세"]}}]}`))
		case "/games":
			_, _ = w.Write([]byte(`{"count":1,"results":[{"id":7,"name":"Hades","genres":[{"name":"Action"}]}]}`))
		case "/games/7":
			_, _ = w.Write([]byte(`{"id":7,"developers":[{"name":"Supergiant Games"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	booksClient, err := books.New("", server.URL)
	if err != nil {
		t.Fatalf("books.New: %v", err)
	}
	page, err := search.NewBooksProvider(booksClient).Search(context.Background(), search.Query{Type: content.TypeBook, Text: "데미안", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("books search: %v", err)
	}
	if !page.HasMore || page.Items[0].Creator != "헤르만 헤세" {
		t.Fatalf("unexpected books page: %#v", page)
	}

	rawgClient, err := rawg.New("key", server.URL)
	if err != nil {
		t.Fatalf("rawg.New: %v", err)
	}
	page, err = search.NewRAWGProvider(rawgClient, nil).Search(context.Background(), search.Query{Type: content.TypeGame, Text: "Hades", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("rawg search: %v", err)
	}
	if page.HasMore || page.Items[0].Creator != "Supergiant Games" || page.Items[0].ExternalID != "7" {
		t.Fatalf("unexpected rawg page: %#v", page)
	}
}

func TestNewFromConfigRegistersConfiguredProviders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TMDB.APIKey = "tmdb-key"
	cfg.RAWG.APIKey = ""
	cfg.Spotify.ClientID = ""

	svc, err := search.NewFromConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	got := svc.Providers()
	if len(got) != 2 || got[0] != "tmdb" || got[1] != "books" {
		t.Fatalf("unexpected providers %v", got)
	}
	if names := svc.ProvidersFor(content.TypeVideo); len(names) != 1 || names[0] != "tmdb" {
		t.Fatalf("unexpected video providers %v", names)
	}
}
