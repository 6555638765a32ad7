package rawg_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediashelf/internal/search/rawg"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "key" {
			t.Fatalf("expected key query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/games":
			if r.URL.Query().Get("search") != "Hades" || r.URL.Query().Get("page_size") != "5" {
				t.Fatalf("unexpected query %q", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"count":7,"next":"https://next","results":[
				{"id":42,"name":"Hades","released":"2020-09-17","background_image":"https://img/h.jpg",
				 "platforms":[{"platform":{"name":"PC"}},{"platform":{"name":"Nintendo Switch"}}],
				 "genres":[{"name":"Action"}]}]}`))
		case "/games/42":
			_, _ = w.Write([]byte(`{"id":42,"name":"Hades","developers":[],"publishers":[{"name":"Supergiant Games"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearchGames(t *testing.T) {
	server := newServer(t)
	client, err := rawg.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.SearchGames(context.Background(), "Hades", 1, 5)
	if err != nil {
		t.Fatalf("SearchGames returned error: %v", err)
	}
	if resp.Count != 7 || resp.Next == "" || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if got := strings.Join(resp.Results[0].PlatformNames(), "/"); got != "PC/Nintendo Switch" {
		t.Fatalf("unexpected platforms %q", got)
	}
}

func TestGetGameDeveloperFallsBackToPublisher(t *testing.T) {
	server := newServer(t)
	client, err := rawg.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	game, err := client.GetGame(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetGame returned error: %v", err)
	}
	if game.Developer() != "Supergiant Games" {
		t.Fatalf("expected publisher fallback, got %q", game.Developer())
	}
	if _, err := client.GetGame(context.Background(), 404); err == nil {
		t.Fatal("expected error for missing game")
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := rawg.New(" ", "https://api.rawg.io/api"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}
