package roulette

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"testing"

	"github.com/anihub/anihub-web/internal/models"
	"github.com/anihub/anihub-web/internal/testutil"
)

type stubCatalog struct {
	page  *models.CatalogPage
	err   error
	calls []url.Values
}

func (s *stubCatalog) Catalog(_ context.Context, params url.Values) (*models.CatalogPage, error) {
	s.calls = append(s.calls, params)
	return s.page, s.err
}

func TestBuild_WinnerMatchesReel(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, n := range []int{1, 2, 3, 7, 20, 50} {
		pool := testutil.AnimeList(1, n)
		for i := 0; i < 200; i++ {
			plan, err := Build(pool, rng)
			if err != nil {
				t.Fatalf("Build(%d): %v", n, err)
			}

			if len(plan.Reel) != Copies*n {
				t.Fatalf("n=%d: expected reel of %d, got %d", n, Copies*n, len(plan.Reel))
			}
			minIndex := len(plan.Reel) * 6 / 10
			if plan.WinnerIndex < minIndex || plan.WinnerIndex > len(plan.Reel)-2 {
				t.Fatalf("n=%d: winner index %d outside [%d, %d]", n, plan.WinnerIndex, minIndex, len(plan.Reel)-2)
			}
			if plan.Winner().ID != plan.Reel[plan.WinnerIndex].ID {
				t.Fatalf("n=%d: revealed winner differs from reel entry", n)
			}
			if plan.Winner().ID != pool[plan.WinnerIndex%n].ID {
				t.Fatalf("n=%d: reel is not the pool repeated", n)
			}
			if plan.Jitter < -56 || plan.Jitter >= 56 {
				t.Fatalf("jitter %d outside [-56, 56)", plan.Jitter)
			}
			if want := plan.WinnerIndex*ItemSize + CardWidth/2 + plan.Jitter; plan.Anchor != want {
				t.Fatalf("anchor %d, want %d", plan.Anchor, want)
			}
		}
	}
}

func TestBuild_SingleEntryPool(t *testing.T) {
	plan, err := Build(testutil.AnimeList(9, 1), rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if plan.WinnerIndex != 3 {
		t.Errorf("Expected the only possible index 3, got %d", plan.WinnerIndex)
	}
}

func TestBuild_EmptyPool(t *testing.T) {
	if _, err := Build(nil, rand.New(rand.NewPCG(1, 1))); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("Expected ErrEmptyPool, got %v", err)
	}
}

func TestPlan_Offset(t *testing.T) {
	plan := &Plan{WinnerIndex: 10, Jitter: -20}
	plan.Anchor = plan.WinnerIndex*ItemSize + CardWidth/2 + plan.Jitter // 1610

	tests := []struct {
		width float64
		want  float64
	}{
		{1000, -1110},
		{1280, -970},
		{0, -1610},
	}
	for _, tt := range tests {
		if got := plan.Offset(tt.width); got != tt.want {
			t.Errorf("Offset(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestSpinner_Spin(t *testing.T) {
	page := testutil.CatalogPage(4, 1, 20)
	source := &stubCatalog{page: &page}
	s := NewSpinner(source, rand.New(rand.NewPCG(7, 8)))

	plan, err := s.Spin(context.Background(), "Action")
	if err != nil {
		t.Fatalf("Spin: %v", err)
	}
	if plan.Genre != "Action" {
		t.Errorf("Expected genre Action, got %q", plan.Genre)
	}
	if plan.Page < 1 || plan.Page > MaxPage {
		t.Errorf("Expected page in [1, %d], got %d", MaxPage, plan.Page)
	}
	if len(plan.Reel) != 20 {
		t.Errorf("Expected 20 reel entries, got %d", len(plan.Reel))
	}

	params := source.calls[0]
	if params.Get("sort") != Sort || params.Get("genre") != "Action" || params.Get("page") == "" {
		t.Errorf("Unexpected catalog parameters: %v", params)
	}
	if params.Has("format") {
		t.Errorf("Expected no format filter, got %v", params)
	}
}

func TestSpinner_AllGenresOmitsGenre(t *testing.T) {
	page := testutil.CatalogPage(2, 1, 1)
	source := &stubCatalog{page: &page}
	s := NewSpinner(source, nil)

	for _, genre := range []string{"All", "", "Underwater Basket Weaving"} {
		plan, err := s.Spin(context.Background(), genre)
		if err != nil {
			t.Fatalf("Spin(%q): %v", genre, err)
		}
		if plan.Genre != "All" {
			t.Errorf("Spin(%q): expected genre All, got %q", genre, plan.Genre)
		}
	}
	for _, params := range source.calls {
		if params.Has("genre") {
			t.Errorf("Expected genre to be omitted, got %v", params)
		}
	}
}

func TestSpinner_EmptyPage(t *testing.T) {
	source := &stubCatalog{page: &models.CatalogPage{}}
	s := NewSpinner(source, rand.New(rand.NewPCG(1, 1)))

	if _, err := s.Spin(context.Background(), "Mecha"); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("Expected ErrEmptyPool, got %v", err)
	}
	if len(source.calls) != 1 {
		t.Errorf("Expected a single catalog call without retry, got %d", len(source.calls))
	}
}

func TestSpinner_BackendError(t *testing.T) {
	boom := errors.New("backend down")
	s := NewSpinner(&stubCatalog{err: boom}, nil)

	_, err := s.Spin(context.Background(), "All")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped backend error, got %v", err)
	}
	if errors.Is(err, ErrEmptyPool) {
		t.Error("Backend failure must not look like an empty pool")
	}
}
