package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"quiz-economy-service/internal/app"
)

// Deps are the collaborators served by the router.
type Deps struct {
	Histories *app.HistoryService
	Rewards   *app.RewardService
	Exchange  *app.ExchangeService
	Auth      *Authenticator
	Metrics   http.Handler
	Logger    *slog.Logger
}

type Handler struct {
	histories *app.HistoryService
	rewards   *app.RewardService
	exchange  *app.ExchangeService
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		histories: d.Histories,
		rewards:   d.Rewards,
		exchange:  d.Exchange,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// NewRouter mounts every route of the service.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(h.logRequests)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics)
	}

	mux.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireAuth)

		r.Route("/histories", func(r chi.Router) {
			r.Post("/", h.recordHistory)
			r.Get("/", h.listHistories)
			r.Get("/player/{playerID}", h.listPlayerHistories)
			r.Get("/{id}", h.getHistory)
			r.Put("/{id}", h.amendHistory)
			r.Delete("/{id}", h.deleteHistory)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Post("/collect", h.collectReward)
			r.Get("/", h.listRewards)
			r.Get("/player/{playerID}", h.listPlayerRewards)
			r.Get("/{id}", h.getReward)
			r.Put("/{id}", h.updateReward)
			r.Delete("/{id}", h.deleteReward)
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/", h.listListings)
			r.Get("/{id}", h.getListing)
			r.Post("/sell", h.sell)
			r.Post("/buy", h.buy)
		})

		r.Get("/players/me", h.me)
		r.Get("/ws/shop", h.ServeShopWS)
	})
	return mux
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
