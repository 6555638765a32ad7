package extraction_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mediashelf/internal/content"
	"mediashelf/internal/extraction"
	"mediashelf/internal/services"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _ string, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	return s.response, s.err
}

type stubFetcher struct {
	page  extraction.Page
	err   error
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (extraction.Page, error) {
	s.calls = append(s.calls, rawURL)
	return s.page, s.err
}

func TestExtractFromTextNormalizesItems(t *testing.T) {
	completer := &stubCompleter{response: "```json\n" + `{"items":[
		{"type":"book","title":"Demian","titleLocalized":"데미안","creator":"Hermann Hesse","rating":"4.3"},
		{"type":"PODCAST","title":"Nope"},
		{"type":"VIDEO","title":"","titleLocalized":"기생충"}
	]}` + "\n```"}
	svc := extraction.New(completer)

	result, err := svc.ExtractFromText(context.Background(), "read demian, watched parasite", "")
	if err != nil {
		t.Fatalf("ExtractFromText returned error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	book := result.Items[0]
	if book.Type != content.TypeBook || book.Title != "Demian" || book.TitleLocalized != "데미안" {
		t.Fatalf("unexpected book: %+v", book)
	}
	if book.Rating == nil || *book.Rating != 4.5 {
		t.Fatalf("expected rating rounded to 4.5, got %v", book.Rating)
	}
	if book.ID == "" || book.ID == result.Items[1].ID {
		t.Fatal("expected distinct item ids")
	}
	video := result.Items[1]
	if video.Title != "기생충" || video.TitleLocalized != "" {
		t.Fatalf("expected localized title promoted, got %+v", video)
	}
}

func TestExtractFromTextSurfacesModelError(t *testing.T) {
	completer := &stubCompleter{response: `{"items":[],"error":"I could not find any titles in this text."}`}
	svc := extraction.New(completer)

	_, err := svc.ExtractFromText(context.Background(), "hello there", "")
	var extractionErr *extraction.Error
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *extraction.Error, got %v", err)
	}
	if extractionErr.Error() != "I could not find any titles in this text." {
		t.Fatalf("expected verbatim message, got %q", extractionErr.Error())
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatal("expected ErrExtraction marker")
	}
	if got := services.UserMessage(err); got != "I could not find any titles in this text." {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestExtractFromTextTransportFailure(t *testing.T) {
	svc := extraction.New(&stubCompleter{err: errors.New("connection refused")})
	_, err := svc.ExtractFromText(context.Background(), "something", "BOOK")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractFromTextRejectsBlank(t *testing.T) {
	completer := &stubCompleter{}
	svc := extraction.New(completer)
	if _, err := svc.ExtractFromText(context.Background(), "   ", ""); err == nil {
		t.Fatal("expected error for blank text")
	}
	if len(completer.prompts) != 0 {
		t.Fatal("expected no model call for blank text")
	}
}

func TestExtractFromURLRoutesYouTube(t *testing.T) {
	completer := &stubCompleter{response: `{"items":[{"type":"MUSIC","title":"Hype Boy","creator":"NewJeans"}]}`}
	web := &stubFetcher{}
	video := &stubFetcher{page: extraction.Page{Title: "NewJeans - Hype Boy", Author: "HYBE LABELS"}}
	svc := extraction.New(completer, extraction.WithWebFetcher(web), extraction.WithVideoFetcher(video))

	result, err := svc.ExtractFromURL(context.Background(), "https://www.youtube.com/watch?v=abc123", "MUSIC")
	if err != nil {
		t.Fatalf("ExtractFromURL returned error: %v", err)
	}
	if len(video.calls) != 1 || len(web.calls) != 0 {
		t.Fatalf("expected video fetcher only, got web=%v video=%v", web.calls, video.calls)
	}
	if result.SourceURL != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected source url %q", result.SourceURL)
	}
	if result.Items[0].SourceURL != result.SourceURL {
		t.Fatalf("expected item source url to default to page url")
	}
	if !strings.Contains(completer.prompts[0], "HYBE LABELS") || !strings.Contains(completer.prompts[0], "Expected content type: MUSIC") {
		t.Fatalf("expected page summary in prompt, got %q", completer.prompts[0])
	}
}

func TestExtractFromURLInvalidAddress(t *testing.T) {
	svc := extraction.New(&stubCompleter{})
	_, err := svc.ExtractFromURL(context.Background(), "ftp://example.com/file", "")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestExtractFromURLFetchFailure(t *testing.T) {
	web := &stubFetcher{err: errors.New("http 404")}
	svc := extraction.New(&stubCompleter{}, extraction.WithWebFetcher(web))
	_, err := svc.ExtractFromURL(context.Background(), "https://blog.example.com/post", "")
	if err == nil || !strings.Contains(services.UserMessage(err), "http 404") {
		t.Fatalf("expected fetch failure surfaced, got %v", err)
	}
}

func TestWebFetcherParsesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "mediashelf-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>My 2025 reading log</title>
			<meta name="description" content="Books I finished this year">
			<meta name="author" content="Jiwoo"></head>
			<body><nav>Home | About</nav><script>var x = 1;</script>
			<h1>Reading log</h1><p>데미안(헤르만 헤세) - loved it</p><ul><li>채식주의자</li></ul>
			<footer>copyright</footer></body></html>`))
	}))
	defer server.Close()

	fetcher := extraction.NewWebFetcher(server.Client(), "mediashelf-test")
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if page.Title != "My 2025 reading log" || page.Description != "Books I finished this year" || page.Author != "Jiwoo" {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	for _, want := range []string{"Reading log", "데미안(헤르만 헤세) - loved it", "채식주의자"} {
		if !strings.Contains(page.Text, want) {
			t.Fatalf("expected %q in page text %q", want, page.Text)
		}
	}
	for _, unwanted := range []string{"var x", "Home | About", "copyright"} {
		if strings.Contains(page.Text, unwanted) {
			t.Fatalf("did not expect %q in page text %q", unwanted, page.Text)
		}
	}
}

func TestWebFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := extraction.NewWebFetcher(server.Client(), "").Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestIsYouTubeURL(t *testing.T) {
	cases := map[string]bool{
		"https://www.youtube.com/watch?v=abc": true,
		"https://youtu.be/abc":                true,
		"https://m.youtube.com/shorts/abc":    true,
		"https://music.youtube.com/watch?v=x": true,
		"https://www.youtube.com/feed":        false,
		"https://youtu.be/":                   false,
		"https://vimeo.com/123":               false,
	}
	for raw, want := range cases {
		parsed, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if got := extraction.IsYouTubeURL(parsed); got != want {
			t.Fatalf("IsYouTubeURL(%s) = %v, want %v", raw, got, want)
		}
	}
}
