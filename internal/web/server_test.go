package web

import (
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anihub/anihub-web/internal/backend"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/roulette"
	"github.com/anihub/anihub-web/internal/session"
	"github.com/anihub/anihub-web/internal/testutil"
)

// newTestServer wires a Server to a fake backend with caching and retries off.
func newTestServer(t *testing.T) (*testutil.FakeBackend, http.Handler) {
	t.Helper()
	fake := testutil.NewFakeBackend(t)

	cfg := &config.Config{BackendURL: fake.URL, ClientTimeout: "5s", UserAgent: "AniHubWeb-Test/1.0"}
	cfg.Cache.Provider = "none"
	client := backend.NewClient(cfg)
	t.Cleanup(func() { _ = client.Close() })

	srv, err := NewServer(client, Options{
		Sessions:        session.NewStore(false, time.Hour),
		Spinner:         roulette.NewSpinner(client, rand.New(rand.NewPCG(7, 11))),
		AllowedOrigins:  []string{"http://localhost:3000"},
		SuggestDebounce: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return fake, srv.Routes()
}

// serve runs req through h and returns the recorded response.
func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// withSession attaches session cookies for username holding token.
func withSession(req *http.Request, token, username string) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: token})
	req.AddCookie(&http.Cookie{Name: session.UserCookie, Value: url.QueryEscape(username)})
	return req
}

func liveToken(username string) string {
	return testutil.Token(username, time.Now().Add(time.Hour))
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

// clearedCookies returns the names of cookies the response expires.
func clearedCookies(rec *httptest.ResponseRecorder) map[string]bool {
	out := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			out[c.Name] = true
		}
	}
	return out
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil || got["status"] != "ok" {
		t.Errorf("Expected {status: ok}, got %v (%v)", got, err)
	}
}

func TestRequestID_ForwardedToBackend(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/home", http.StatusOK, testutil.HomeData(1))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(backend.RequestIDHeader, "req-42")
	rec := serve(h, req)

	if got := rec.Header().Get(backend.RequestIDHeader); got != "req-42" {
		t.Errorf("Expected request id echoed, got %q", got)
	}
	calls := fake.RequestsTo(http.MethodGet, "/home")
	if len(calls) != 1 || calls[0].Header.Get(backend.RequestIDHeader) != "req-42" {
		t.Fatalf("Expected backend call carrying the request id, got %+v", calls)
	}
}

func TestRequestID_Generated(t *testing.T) {
	_, h := newTestServer(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(backend.RequestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}
}

func TestNotFoundPage(t *testing.T) {
	_, h := newTestServer(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(body(t, rec), "Page not found") {
		t.Error("Expected the error page")
	}
}

func TestStaticAssets(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/static/app.css", "/static/search.js", "/static/roulette.js"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCORS_OnAPI(t *testing.T) {
	fake, h := newTestServer(t)
	fake.JSON(http.MethodGet, "/search/suggest/naruto", http.StatusOK, testutil.AnimeList(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/suggest?q=naruto", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := serve(h, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected CORS origin echoed, got %q", got)
	}
}
