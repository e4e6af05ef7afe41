package httptransport

import (
	"net/http"

	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/services/session"
)

type sessionResponse struct {
	SessionID string                  `json:"sessionId"`
	Mode      backend.Mode            `json:"mode"`
	User      entities.User           `json:"user"`
	History   []entities.HistoryEntry `json:"history"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	return sessionResponse{
		SessionID: sess.ID,
		Mode:      sess.Mode(),
		User:      sess.User(),
		History:   sess.History().Entries(),
	}
}

// SessionHandlers serve login, registration and the player's own state
type SessionHandlers struct {
	registry *session.Registry
}

func NewSessionHandlers(registry *session.Registry) *SessionHandlers {
	return &SessionHandlers{registry: registry}
}

func (h *SessionHandlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		sess, err := h.registry.Login(r.Context(), creds)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(sess))
	}
}

func (h *SessionHandlers) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds backend.Credentials
		if !decodeBody(w, r, &creds) {
			return
		}
		sess, err := h.registry.Register(r.Context(), creds)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newSessionResponse(sess))
	}
}

func (h *SessionHandlers) Restore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.registry.Restore(r.Context())
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionResponse(sess))
	}
}

func (h *SessionHandlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if err := h.registry.Logout(r.Context(), sess.ID); err != nil {
			WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *SessionHandlers) Welcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		if err := sess.MarkWelcomed(r.Context()); err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.User())
	}
}

func (h *SessionHandlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{
			"user":        sess.User(),
			"mode":        sess.Mode(),
			"perks":       sess.Perks(),
			"discrepancy": sess.Ledger().Discrepancy(),
		})
	}
}

func (h *SessionHandlers) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"history": sess.History().Entries()})
	}
}

func (h *SessionHandlers) Transactions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		_, limit := ParsePagination(r)
		txs, err := sess.Ledger().Transactions(r.Context(), limit)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
	}
}

func (h *SessionHandlers) GameEnd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := SessionFromContext(r.Context())
		var event session.ExternalGameEnd
		if !decodeBody(w, r, &event) {
			return
		}
		out, err := sess.ApplyExternalGameEnd(r.Context(), event)
		if err != nil {
			WriteError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
