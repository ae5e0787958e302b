// Package roulette picks a random anime and lays out the spinning reel that lands on it.
package roulette

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/anihub/anihub-web/internal/catalog"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/metrics"
	"github.com/anihub/anihub-web/internal/models"
)

// Reel geometry and animation, in CSS pixels and wall time.
const (
	CardWidth  = 140
	CardGap    = 16
	ItemSize   = CardWidth + CardGap
	Copies     = 5  // the pool is repeated this many times on the reel
	MaxPage    = 20 // random pages are drawn from [1, MaxPage]
	Duration   = 6 * time.Second
	StartDelay = 100 * time.Millisecond
	Easing     = "cubic-bezier(0.1, 0, 0.2, 1)"
	Sort       = "POPULARITY_DESC"
)

// jitterSpan is 80% of a card: the reel stops up to 40% of a card off center.
const jitterSpan = CardWidth * 8 / 10

// EmptyPoolMessage is shown when the chosen genre has no anime on the drawn page.
const EmptyPoolMessage = "No anime found for that genre!"

// ErrEmptyPool is returned when the catalog page drawn for a spin has no entries.
var ErrEmptyPool = errors.New("roulette: no anime in pool")

// CatalogSource is the part of the backend client the roulette needs.
type CatalogSource interface {
	Catalog(ctx context.Context, params url.Values) (*models.CatalogPage, error)
}

// Plan is one spin: the reel to render and where it must stop.
type Plan struct {
	Genre       string
	Page        int
	Reel        []models.Anime
	WinnerIndex int
	Jitter      int
	// Anchor is the reel x coordinate that must end up under the center marker.
	Anchor int
}

// Winner returns the anime the reel stops on.
func (p *Plan) Winner() models.Anime {
	return p.Reel[p.WinnerIndex]
}

// Offset is the final translateX of the reel inside a container width pixels wide.
func (p *Plan) Offset(width float64) float64 {
	return -(float64(p.Anchor) - width/2)
}

// Build lays out a reel for pool and draws the winner and the stop jitter from rng.
// The winner lies in the back 40% of the reel and is never the last card.
func Build(pool []models.Anime, rng *rand.Rand) (*Plan, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	reel := make([]models.Anime, 0, len(pool)*Copies)
	for range Copies {
		reel = append(reel, pool...)
	}

	minIndex := len(reel) * 6 / 10
	maxIndex := len(reel) - 2
	winner := minIndex + rng.IntN(maxIndex-minIndex+1)
	jitter := rng.IntN(jitterSpan) - jitterSpan/2

	return &Plan{
		Reel:        reel,
		WinnerIndex: winner,
		Jitter:      jitter,
		Anchor:      winner*ItemSize + CardWidth/2 + jitter,
	}, nil
}

// Spinner draws a random popular catalog page and builds a Plan from it.
type Spinner struct {
	source CatalogSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSpinner creates a spinner. A nil rng is replaced by a randomly seeded one.
func NewSpinner(source CatalogSource, rng *rand.Rand) *Spinner {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Spinner{source: source, rng: rng}
}

// Spin fetches a random page for genre ("All" or unknown means any genre) and lays out the reel.
func (s *Spinner) Spin(ctx context.Context, genre string) (*Plan, error) {
	logger := config.GetLogger()

	if !slices.Contains(catalog.Genres, genre) {
		genre = catalog.All
	}

	s.mu.Lock()
	page := 1 + s.rng.IntN(MaxPage)
	s.mu.Unlock()

	q := catalog.Query{Genre: genre, Format: catalog.All, Sort: Sort, Page: page}
	result, err := s.source.Catalog(ctx, q.Values())
	if err != nil {
		metrics.RouletteSpinsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("roulette: fetch catalog page %d: %w", page, err)
	}

	s.mu.Lock()
	plan, err := Build(result.Media, s.rng)
	s.mu.Unlock()
	if err != nil {
		metrics.RouletteSpinsTotal.WithLabelValues("empty").Inc()
		logger.Info().Str("genre", genre).Int("page", page).Msg("Roulette drew an empty page")
		return nil, err
	}

	plan.Genre = genre
	plan.Page = page
	metrics.RouletteSpinsTotal.WithLabelValues("ok").Inc()
	logger.Debug().
		Str("genre", genre).
		Int("page", page).
		Int("reel", len(plan.Reel)).
		Int("winner_index", plan.WinnerIndex).
		Msg("Roulette spin planned")
	return plan, nil
}
