package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediashelf/internal/search/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchMultiDropsPeopleAndPassesLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if q.Get("language") != "ko-KR" || q.Get("page") != "2" || q.Get("query") != "기생충" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[
			{"id":1,"title":"기생충","media_type":"movie","release_date":"2019-05-30","poster_path":"/p.jpg"},
			{"id":2,"name":"Song Kang-ho","media_type":"person"},
			{"id":3,"name":"Parasite","media_type":"tv","first_air_date":"2023-01-01"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.SearchMulti(context.Background(), "기생충", tmdb.SearchOptions{Page: 2, Language: "ko-KR"})
	if err != nil {
		t.Fatalf("SearchMulti returned error: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected person result dropped, got %#v", resp.Results)
	}
	if resp.TotalResults != 41 || resp.TotalPages != 3 {
		t.Fatalf("unexpected totals: %#v", resp)
	}
	first := resp.Results[0]
	if first.DisplayTitle() != "기생충" || first.Year() != "2019" || first.PosterURL() != tmdb.ImageBaseURL+"/p.jpg" {
		t.Fatalf("unexpected first result: %#v", first)
	}
	if resp.Results[1].DisplayTitle() != "Parasite" || resp.Results[1].Year() != "2023" {
		t.Fatalf("unexpected series result: %#v", resp.Results[1])
	}
}

func TestSearchMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.SearchMovie(context.Background(), "fail", tmdb.SearchOptions{})
	var statusErr *tmdb.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchTV(context.Background(), "  ", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestGetCreditsDirectorAndCreator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/10/credits":
			_, _ = w.Write([]byte(`{"id":10,"crew":[{"name":"Someone","job":"Writer"},{"name":"Bong Joon-ho","job":"Director"}]}`))
		case "/tv/20/credits":
			_, _ = w.Write([]byte(`{"id":20,"crew":[]}`))
		case "/tv/20":
			_, _ = w.Write([]byte(`{"id":20,"created_by":[{"name":"Hwang Dong-hyuk"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	movie, err := client.GetCredits(context.Background(), "movie", 10)
	if err != nil {
		t.Fatalf("GetCredits(movie) returned error: %v", err)
	}
	if got := movie.Director(); got != "Bong Joon-ho" {
		t.Fatalf("expected director, got %q", got)
	}
	series, err := client.GetCredits(context.Background(), "tv", 20)
	if err != nil {
		t.Fatalf("GetCredits(tv) returned error: %v", err)
	}
	if got := series.Director(); got != "Hwang Dong-hyuk" {
		t.Fatalf("expected series creator, got %q", got)
	}
	if _, err := client.GetCredits(context.Background(), "person", 1); err == nil {
		t.Fatal("expected error for unsupported media type")
	}
}
