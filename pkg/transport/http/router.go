package httptransport

import (
	"net/http"
	"sort"
	"strings"

	"github.com/fadedpez/placebo/internal/games"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/pkg/services/rewards"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/fadedpez/placebo/pkg/services/statistics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the services the API serves
type Deps struct {
	Sessions   *session.Registry
	Lobby      *games.Registry
	Rewards    *rewards.Service
	Statistics *statistics.Service
	Logger     *logging.Logger
}

func NewRouter(deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = logging.Default.With("http")
	}
	if deps.Lobby == nil {
		deps.Lobby = games.DefaultLobby()
	}
	if deps.Rewards == nil {
		deps.Rewards = rewards.NewService(nil)
	}
	if deps.Statistics == nil {
		deps.Statistics = statistics.NewService(nil)
	}

	sessionHandlers := NewSessionHandlers(deps.Sessions)
	gameHandlers := NewGameHandlers(deps.Lobby, deps.Rewards, deps.Statistics)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	health := func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": deps.Sessions.Len()})
	}
	r.Get("/healthz", health)

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware(deps.Logger))
		r.Get("/healthz", health)
		r.Post("/session/login", sessionHandlers.Login())
		r.Post("/session/register", sessionHandlers.Register())
		r.Post("/session/restore", sessionHandlers.Restore())
		r.Get("/games", gameHandlers.Games())
		r.Get("/rewards", gameHandlers.Rewards())
		r.Get("/leaderboard", gameHandlers.Leaderboard())

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(deps.Sessions))
			r.Post("/session/logout", sessionHandlers.Logout())
			r.Post("/session/welcome", sessionHandlers.Welcome())
			r.Get("/me", sessionHandlers.Me())
			r.Get("/history", sessionHandlers.History())
			r.Get("/transactions", sessionHandlers.Transactions())
			r.Get("/stats", gameHandlers.Stats())

			r.Get("/blackjack", gameHandlers.Table())
			r.Post("/blackjack/bet", gameHandlers.Bet())
			r.Post("/blackjack/hit", gameHandlers.Hit())
			r.Post("/blackjack/stand", gameHandlers.Stand())
			r.Post("/blackjack/new-round", gameHandlers.NewRound())

			r.Post("/rewards/{id}/redeem", gameHandlers.Redeem())
			r.Post("/events/game-end", sessionHandlers.GameEnd())
		})
	})

	return r
}

// LogRoutes prints every registered route at debug level
func LogRoutes(r chi.Routes, log *logging.Logger) {
	var routes []string
	_ = chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	sort.Strings(routes)
	log.Debug("Routes:\n  %s", strings.Join(routes, "\n  "))
}
