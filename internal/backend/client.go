package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/anihub/anihub-web/internal/cache"
	"github.com/anihub/anihub-web/internal/config"
	"github.com/anihub/anihub-web/internal/models"
)

// Client defines the interface for talking to the AniHub backend.
// Public lookups may be served from the read cache; calls taking a token never are.
type Client interface {
	Home(ctx context.Context) (*models.HomeData, error)
	Suggest(ctx context.Context, query string) ([]models.Anime, error)
	Catalog(ctx context.Context, params url.Values) (*models.CatalogPage, error)
	AnimeDetail(ctx context.Context, name string) (*models.AnimeDetail, error)
	Stream(ctx context.Context, name string, episode int) (*models.StreamLink, error)

	Login(ctx context.Context, creds models.Credentials) (*models.Token, error)
	Register(ctx context.Context, reg models.Registration) error
	Me(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) error

	Favorites(ctx context.Context, token string) ([]models.ListItem, error)
	AddFavorite(ctx context.Context, token string, item models.ListItem) error
	RemoveFavorite(ctx context.Context, token string, animeID int) error
	Watchlist(ctx context.Context, token string) ([]models.ListItem, error)
	AddWatchlist(ctx context.Context, token string, item models.ListItem) error
	RemoveWatchlist(ctx context.Context, token string, animeID int) error
	History(ctx context.Context, token string) ([]models.HistoryEntry, error)
	RecordHistory(ctx context.Context, token string, entry models.HistoryEntry) error

	// Ping performs an uncached GET /home and reports whether the backend answered.
	Ping(ctx context.Context) error

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// client implements the Client interface
type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string

	store   cache.Cache
	home    *cache.JSON[models.HomeData]
	suggest *cache.JSON[[]models.Anime]
	catalog *cache.JSON[models.CatalogPage]
	anime   *cache.JSON[models.AnimeDetail]
}

// NewClient creates a new client instance with proxy, retry and cache configuration
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	timeout := parseDuration(cfg.ClientTimeout, 30*time.Second, "client_timeout")

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	// Retries sit outside decompression so every attempt gets a fresh decoder.
	transport := newRetryTransport(newCompressionTransport(baseTransport), retrySettings{
		MaxRetries: cfg.Retry.MaxRetries,
		Delay:      parseDuration(cfg.Retry.Delay, 200*time.Millisecond, "retry.delay"),
		MaxDelay:   parseDuration(cfg.Retry.MaxDelay, 2*time.Second, "retry.max_delay"),
	})

	store := newStore(cfg)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	return &client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    cfg.BackendURL,
		userAgent:  userAgent,
		store:      store,
		home:       cache.NewJSON[models.HomeData](store, "home:"),
		suggest:    cache.NewJSON[[]models.Anime](store, "suggest:"),
		catalog:    cache.NewJSON[models.CatalogPage](store, "catalog:"),
		anime:      cache.NewJSON[models.AnimeDetail](store, "anime:"),
	}
}

// newStore builds the configured read cache, falling back to no caching on bad settings.
func newStore(cfg *config.Config) cache.Cache {
	logger := config.GetLogger()

	provider := cfg.Cache.Provider
	if provider == "" {
		provider = "none"
	}

	store, err := cache.New(provider, cache.ProviderConfig{
		Size:          cfg.Cache.Size,
		TTL:           parseDuration(cfg.Cache.TTL, 2*time.Minute, "cache.ttl"),
		Logger:        cache.NewZerologLogger(logger),
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Group:         "backend",
	})
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("Failed to create read cache, caching disabled")
		store, _ = cache.New("none", cache.ProviderConfig{})
	}
	return store
}

func parseDuration(raw string, fallback time.Duration, key string) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("key", key).Str("value", raw).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	return c.store.Close()
}
