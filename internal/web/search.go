package web

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/anihub/anihub-web/internal/metrics"
	"github.com/anihub/anihub-web/internal/models"
)

// suggestion is one live search hit as sent to the browser.
type suggestion struct {
	Title string `json:"title"`
	Cover string `json:"cover"`
	URL   string `json:"url"`
}

func toSuggestions(media []models.Anime) []suggestion {
	out := make([]suggestion, 0, len(media))
	for _, a := range media {
		title := a.Title.DisplayTitle()
		out = append(out, suggestion{
			Title: title,
			Cover: firstNonEmpty(a.CoverImage.Medium, a.CoverImage.Large),
			URL:   watchURL(title),
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	media, err := s.client.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.report(r, err, "Suggest failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "search unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, toSuggestions(media))
}

type suggestRequest struct {
	Seq int64  `json:"seq"`
	Q   string `json:"q"`
}

type suggestReply struct {
	Seq     int64        `json:"seq"`
	Results []suggestion `json:"results"`
	Error   string       `json:"error,omitempty"`
}

const (
	socketWriteWait = 5 * time.Second
	socketReadLimit = 4 << 10
)

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts same-host pages and the configured cross-origin front ends.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// handleSuggestSocket answers live search queries over a WebSocket. Queries are
// debounced per connection and only the latest one is answered, tagged with its
// seq so the page can drop anything older than what it last sent.
func (s *Server) handleSuggestSocket(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.LiveSearchConnections.Inc()
	defer metrics.LiveSearchConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	incoming := make(chan suggestRequest)
	go func() {
		defer close(incoming)
		conn.SetReadLimit(socketReadLimit)
		for {
			var req suggestRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			select {
			case incoming <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	timer := time.NewTimer(s.suggestDebounce)
	timer.Stop()
	var pending *suggestRequest

	for {
		select {
		case req, ok := <-incoming:
			if !ok {
				return
			}
			pending = &req
			timer.Reset(s.suggestDebounce)

		case <-timer.C:
			if pending == nil {
				continue
			}
			reply := suggestReply{Seq: pending.Seq, Results: []suggestion{}}
			media, err := s.client.Suggest(ctx, pending.Q)
			if err != nil {
				logger.Warn().Err(err).Msg("Live suggest failed")
				reply.Error = "search unavailable"
			} else {
				reply.Results = toSuggestions(media)
			}
			pending = nil

			_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
			if err := conn.WriteJSON(reply); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
