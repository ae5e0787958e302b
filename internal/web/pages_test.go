package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/anihub/anihub-web/internal/models"
	"github.com/anihub/anihub-web/internal/roulette"
	"github.com/anihub/anihub-web/internal/testutil"
)

func TestHome_RendersRows(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/home", http.StatusOK, testutil.HomeData(3))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	for _, want := range []string{"Trending Now", "Most Popular", "Sports", "Anime 100", "Anime 602", `href="/watch/Anime%20100"`} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected home page to contain %q", want)
		}
	}
	if strings.Contains(html, "unavailable") {
		t.Error("Did not expect the unavailable notice")
	}
}

func TestHome_HeroTrailerLink(t *testing.T) {
	fake, h := newTestServer(t)
	home := testutil.HomeData(2)
	home.Trending.Media[0].Trailer = &models.Trailer{ID: "dQw4w9WgXcQ", Site: "youtube"}
	fake.JSON(http.MethodGet, "/home", http.StatusOK, home)

	html := body(t, serve(h, httptest.NewRequest(http.MethodGet, "/", nil)))
	if !strings.Contains(html, `href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"`) {
		t.Error("Expected the hero to link the trailer")
	}

	fake.JSON(http.MethodGet, "/home", http.StatusOK, testutil.HomeData(2))
	if html := body(t, serve(h, httptest.NewRequest(http.MethodGet, "/", nil))); strings.Contains(html, ">Trailer<") {
		t.Error("Did not expect a trailer link without a trailer")
	}
}

func TestHome_DegradesWhenBackendFails(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/home", http.StatusInternalServerError, map[string]string{"detail": "boom"})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	if !strings.Contains(html, "The home feed is unavailable right now.") {
		t.Error("Expected the unavailable notice")
	}
	if !strings.Contains(html, "Nothing here yet.") {
		t.Error("Expected empty rows")
	}
}

func TestHome_ExpiredSessionServedAnonymously(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/home", http.StatusOK, testutil.HomeData(1))

	req := withSession(httptest.NewRequest(http.MethodGet, "/", nil), testutil.Token("mika", fixedPast()), "mika")
	rec := serve(h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if cleared := clearedCookies(rec); !cleared["anihub_token"] {
		t.Errorf("Expected the expired token to be cleared, got %v", cleared)
	}
	if !strings.Contains(body(t, rec), `href="/login"`) {
		t.Error("Expected the anonymous navigation")
	}
}

func TestCatalog_SendsExactFilters(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(4, 3, 9))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog?genre=action&format=movie&sort=SCORE_DESC&page=3", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	calls := fake.RequestsTo(http.MethodGet, "/catalog")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 catalog call, got %d", len(calls))
	}
	want := map[string][]string{
		"genre":  {"Action"},
		"format": {"MOVIE"},
		"sort":   {"SCORE_DESC"},
		"page":   {"3"},
	}
	if !reflect.DeepEqual(calls[0].Query, want) {
		t.Errorf("Expected params %v, got %v", want, calls[0].Query)
	}

	html := body(t, rec)
	if !strings.Contains(html, "Anime 1300") {
		t.Error("Expected the catalog grid")
	}
	if !strings.Contains(html, `<span class="pager-page current">3</span>`) {
		t.Error("Expected page 3 marked current")
	}
}

func TestCatalog_DefaultsOmitAllFilters(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(2, 1, 1))

	serve(h, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	calls := fake.RequestsTo(http.MethodGet, "/catalog")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 catalog call, got %d", len(calls))
	}
	want := map[string][]string{"sort": {"POPULARITY_DESC"}, "page": {"1"}}
	if !reflect.DeepEqual(calls[0].Query, want) {
		t.Errorf("Expected params %v, got %v", want, calls[0].Query)
	}
}

func TestCatalog_Empty(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, models.CatalogPage{Media: []models.Anime{}})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog?genre=Mecha", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "No anime matches these filters.") {
		t.Error("Expected the empty state")
	}
}

func TestCatalog_BackendFailure(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusBadGateway, map[string]string{"detail": "down"})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "could not be loaded") {
		t.Error("Expected the failure notice")
	}
}

func TestCatalog_HTMXReturnsGridOnly(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(2, 1, 3))

	req := httptest.NewRequest(http.MethodGet, "/catalog?sort=TRENDING_DESC", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(h, req)

	html := body(t, rec)
	if !strings.Contains(html, `id="catalog-grid"`) {
		t.Error("Expected the grid fragment")
	}
	if strings.Contains(html, "<html") || strings.Contains(html, "Browse anime") {
		t.Error("Did not expect the full page")
	}
}

func TestCatalog_Jump(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		location string
	}{
		{"within range", "jump=3&genre=Action", "/catalog?genre=Action&page=3&sort=POPULARITY_DESC"},
		{"last page", "jump=5", "/catalog?page=5&sort=POPULARITY_DESC"},
		{"beyond last stays put", "jump=7&page=2", "/catalog?page=2&sort=POPULARITY_DESC"},
		{"stale last field is ignored", "jump=500&last=1000", "/catalog?page=1&sort=POPULARITY_DESC"},
		{"not a number", "jump=abc", "/catalog?page=1&sort=POPULARITY_DESC"},
		{"zero", "jump=0", "/catalog?page=1&sort=POPULARITY_DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, h := newTestServer(t)
			fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(2, 1, 5))

			rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog?"+tt.query, nil))
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("Expected 303, got %d", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Errorf("Expected Location %q, got %q", tt.location, got)
			}
			if got := len(fake.RequestsTo(http.MethodGet, "/catalog")); got != 1 {
				t.Errorf("Expected the jump to be checked against one catalog call, got %d", got)
			}
		})
	}
}

func TestCatalog_Jump_BackendFailureStaysPut(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusBadGateway, map[string]string{"detail": "down"})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog?jump=2&page=4", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/catalog?page=4&sort=POPULARITY_DESC" {
		t.Errorf("Expected redirect to the current page, got %q", got)
	}
}

func TestCatalog_PagePastEndRedirectsToLast(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(0, 500, 3))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/catalog?page=500&genre=Action", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/catalog?genre=Action&page=3&sort=POPULARITY_DESC" {
		t.Errorf("Expected redirect to the last page, got %q", got)
	}
}

func TestWatch_Anonymous(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/anime/Naruto", http.StatusOK, testutil.AnimeDetail(20, "Naruto", 12))
	fake.JSON(http.MethodGet, "/watch/Naruto/2", http.StatusOK, models.StreamLink{StreamURL: testutil.StringPtr("https://cdn.example/naruto/2.m3u8")})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/watch/Naruto?ep=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	for _, want := range []string{`data-hls="https://cdn.example/naruto/2.m3u8"`, "Episode 2 of 12", "<b>story</b>", "Naruto Season 2", "Naruto Picture Drama"} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected watch page to contain %q", want)
		}
	}
	if strings.Contains(html, "alert(1)") {
		t.Error("Expected scripts stripped from the description")
	}
	if got := len(fake.RequestsTo(http.MethodPost, "/users/history")); got != 0 {
		t.Errorf("Expected no history for anonymous viewers, got %d", got)
	}
}

func TestWatch_EpisodePickerIsCapped(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/anime/Naruto", http.StatusOK, testutil.AnimeDetail(20, "Naruto", 2_000_000_000))
	fake.JSON(http.MethodGet, "/watch/Naruto/3000", http.StatusOK, models.StreamLink{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/watch/Naruto?ep=5000", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if got := strings.Count(body(t, rec), `<a class="episode`); got != models.MaxEpisodes {
		t.Errorf("Expected %d episode links, got %d", models.MaxEpisodes, got)
	}
	if got := len(fake.RequestsTo(http.MethodGet, "/watch/Naruto/3000")); got != 1 {
		t.Errorf("Expected the episode clamped to the picker, got %d lookups", got)
	}
}

func TestWatch_NoStream(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/anime/Naruto", http.StatusOK, testutil.AnimeDetail(20, "Naruto", 12))
	fake.JSON(http.MethodGet, "/watch/Naruto/1", http.StatusOK, models.StreamLink{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/watch/Naruto", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "Episode 1 is not available yet.") {
		t.Error("Expected the placeholder")
	}
}

func TestWatch_NotFound(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/anime/Nothing", http.StatusOK, map[string]string{"error": "Anime not found"})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/watch/Nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if got := len(fake.RequestsTo(http.MethodGet, "/watch/Nothing/1")); got != 0 {
		t.Errorf("Expected no stream lookup, got %d", got)
	}
}

func TestWatch_LoggedInRecordsHistory(t *testing.T) {
	fake, h := newTestServer(t)
	token := liveToken("mika")
	detail := testutil.AnimeDetail(20, "Naruto", 12)
	fake.JSON(http.MethodGet, "/anime/Naruto", http.StatusOK, detail)
	fake.JSON(http.MethodGet, "/watch/Naruto/4", http.StatusOK, models.StreamLink{StreamURL: testutil.StringPtr("https://cdn.example/4.mp4")})
	fake.JSON(http.MethodGet, "/users/me/favorites", http.StatusOK, []models.ListItem{detail.ListItem()})
	fake.JSON(http.MethodGet, "/users/me/watchlist", http.StatusOK, []models.ListItem{})
	fake.JSON(http.MethodPost, "/users/history", http.StatusOK, models.Message{Message: "ok"})

	rec := serve(h, withSession(httptest.NewRequest(http.MethodGet, "/watch/Naruto?ep=4", nil), token, "mika"))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	if !strings.Contains(html, "Favorited") || !strings.Contains(html, "+ My List") {
		t.Error("Expected favorite set and watchlist unset")
	}

	calls := fake.RequestsTo(http.MethodPost, "/users/history")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 history call, got %d", len(calls))
	}
	if got := calls[0].Header.Get("Authorization"); got != "Bearer "+token {
		t.Errorf("Expected the session token, got %q", got)
	}
	var entry models.HistoryEntry
	if err := json.Unmarshal(calls[0].Body, &entry); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if entry.AnimeID != 20 || entry.Episode != 4 || entry.Title != "Naruto" {
		t.Errorf("Unexpected history entry %+v", entry)
	}
}

func TestToggleFavorite(t *testing.T) {
	fake, h := newTestServer(t)
	token := liveToken("mika")
	fake.JSON(http.MethodGet, "/anime/Naruto", http.StatusOK, testutil.AnimeDetail(20, "Naruto", 12))
	fake.JSON(http.MethodPost, "/users/favorites", http.StatusOK, models.Message{Message: "added"})
	fake.JSON(http.MethodDelete, "/users/watchlist/20", http.StatusOK, models.Message{Message: "removed"})

	rec := serve(h, withSession(postForm("/watch/Naruto/favorite", url.Values{"action": {"add"}, "ep": {"3"}}), token, "mika"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/watch/Naruto?ep=3" {
		t.Errorf("Expected redirect back to the episode, got %q", got)
	}
	calls := fake.RequestsTo(http.MethodPost, "/users/favorites")
	if len(calls) != 1 {
		t.Fatalf("Expected 1 favorite call, got %d", len(calls))
	}
	var item models.ListItem
	if err := json.Unmarshal(calls[0].Body, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.AnimeID != 20 || item.Format != "TV" {
		t.Errorf("Unexpected favorite %+v", item)
	}

	rec = serve(h, withSession(postForm("/watch/Naruto/watchlist", url.Values{"action": {"remove"}}), token, "mika"))
	if got := rec.Header().Get("Location"); got != "/watch/Naruto" {
		t.Errorf("Expected redirect to the first episode, got %q", got)
	}
	if got := len(fake.RequestsTo(http.MethodDelete, "/users/watchlist/20")); got != 1 {
		t.Errorf("Expected 1 watchlist removal, got %d", got)
	}
}

func TestToggle_RejectsUnknownAction(t *testing.T) {
	fake, h := newTestServer(t)

	rec := serve(h, withSession(postForm("/watch/Naruto/favorite", url.Values{"action": {"flip"}}), liveToken("mika"), "mika"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if got := len(fake.Requests()); got != 0 {
		t.Errorf("Expected no backend calls, got %d", got)
	}
}

var (
	winnerIDAttr    = regexp.MustCompile(`data-winner-id="(\d+)"`)
	winnerIndexAttr = regexp.MustCompile(`data-winner-index="(\d+)"`)
)

func TestSurprise_WinnerIsOnTheReel(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, testutil.CatalogPage(10, 1, 20))

	rec := serve(h, postForm("/surprise", url.Values{"genre": {"Action"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)

	id := winnerIDAttr.FindStringSubmatch(html)
	index := winnerIndexAttr.FindStringSubmatch(html)
	if id == nil || index == nil {
		t.Fatal("Expected the winner attributes")
	}
	card := `data-index="` + index[1] + `" data-id="` + id[1] + `"`
	if !strings.Contains(html, card) {
		t.Errorf("Expected reel card %s", card)
	}
	if got := strings.Count(html, `class="roulette-card"`); got != 10*roulette.Copies {
		t.Errorf("Expected %d reel cards, got %d", 10*roulette.Copies, got)
	}

	calls := fake.RequestsTo(http.MethodGet, "/catalog")
	if len(calls) != 1 || calls[0].Query["genre"][0] != "Action" {
		t.Errorf("Expected one catalog call for Action, got %+v", calls)
	}
}

func TestSurprise_EmptyPool(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusOK, models.CatalogPage{Media: []models.Anime{}})

	rec := serve(h, postForm("/surprise", url.Values{"genre": {"Mecha"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	html := body(t, rec)
	if !strings.Contains(html, roulette.EmptyPoolMessage) {
		t.Error("Expected the empty pool alert")
	}
	if strings.Contains(html, "data-roulette") {
		t.Error("Did not expect a reel")
	}
}

func TestSurprise_BackendFailure(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/catalog", http.StatusInternalServerError, map[string]string{"detail": "down"})

	rec := serve(h, postForm("/surprise", url.Values{"genre": {"All"}}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "could not reach the catalog") {
		t.Error("Expected the failure alert")
	}
}
