package httptransport

import (
	"net/http"

	"github.com/fadedpez/placebo/internal/games"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/rewards"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/fadedpez/placebo/pkg/services/statistics"
	"github.com/go-chi/chi/v5"
)

type tableResponse struct {
	blackjack.Snapshot
	Balance int64    `json:"balance"`
	Perks   []string `json:"perks"`
}

func newTableResponse(sess *session.Session, snap blackjack.Snapshot) tableResponse {
	return tableResponse{Snapshot: snap, Balance: sess.Ledger().Balance(), Perks: sess.Perks()}
}

type betRequest struct {
	Amount int64 `json:"amount"`
}

// GameHandlers serve the blackjack table, rewards, statistics and the lobby
type GameHandlers struct {
	lobby   *games.Registry
	rewards *rewards.Service
	stats   *statistics.Service
}

func NewGameHandlers(lobby *games.Registry, rewardSvc *rewards.Service, stats *statistics.Service) *GameHandlers {
	return &GameHandlers{lobby: lobby, rewards: rewardSvc, stats: stats}
}

func (h *GameHandlers) Games() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"games": h.lobby.List(r.URL.Query().Get("category"))})
	}
}

func (h *GameHandlers) Table() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, newTableResponse(sess, sess.Round().Snapshot()))
	}
}

func (h *GameHandlers) Bet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		var req betRequest
		if !decodeBody(w, r, &req) {
			return
		}
		snap, err := sess.Round().PlaceBet(r.Context(), req.Amount)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTableResponse(sess, snap))
	}
}

func (h *GameHandlers) Hit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		snap, err := sess.Round().Hit(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTableResponse(sess, snap))
	}
}

func (h *GameHandlers) Stand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		snap, err := sess.Round().Stand(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTableResponse(sess, snap))
	}
}

func (h *GameHandlers) NewRound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if err := sess.Round().NewRound(); err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newTableResponse(sess, sess.Round().Snapshot()))
	}
}

func (h *GameHandlers) Rewards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"rewards": h.rewards.Catalog()})
	}
}

func (h *GameHandlers) Redeem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		out, err := h.rewards.Redeem(r.Context(), sess, chi.URLParam(r, "id"))
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *GameHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		stats, err := h.stats.PlayerStatistics(r.Context(), sess)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"statistics": stats,
			"winRate":    stats.WinRate(),
			"netProfit":  stats.NetProfit(),
		})
	}
}

func (h *GameHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := ParsePagination(r)
		board, err := h.stats.GetLeaderboard(r.Context(), page, perPage)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}
