package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

type sessionContextKey struct{}

// SessionFromContext returns the session SessionMiddleware attached
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// APILogMiddleware logs one line per request through the casino logger
func APILogMiddleware(log *logging.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(log.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
			},
		},
	)
}

// SessionMiddleware resolves the bearer token to a live session
func SessionMiddleware(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := bearerToken(r)
			if !ok {
				WriteHTTPError(w, http.StatusUnauthorized, string(types.ErrNotLoggedIn), "missing session token")
				return
			}
			sess, err := registry.Get(id)
			if err != nil {
				WriteError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	prefix := "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

// WriteHTTPError writes a JSON error body
func WriteHTTPError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code, "message": message})
}

// WriteError maps err to a status by its GameError code
func WriteError(w http.ResponseWriter, err error) {
	var gameErr *types.GameError
	if !errors.As(err, &gameErr) {
		WriteHTTPError(w, http.StatusInternalServerError, string(types.ErrInternalError), "internal error")
		return
	}
	WriteHTTPError(w, statusFor(gameErr.Code), string(gameErr.Code), gameErr.Message)
}

func statusFor(code types.ErrorCode) int {
	switch code {
	case types.ErrInvalidBet, types.ErrInvalidArgument, types.ErrInvalidAction:
		return http.StatusBadRequest
	case types.ErrInvalidCredentials, types.ErrNotLoggedIn:
		return http.StatusUnauthorized
	case types.ErrGameNotFound, types.ErrRewardNotFound:
		return http.StatusNotFound
	case types.ErrBetInProgress, types.ErrInvalidState, types.ErrUserExists:
		return http.StatusConflict
	case types.ErrInsufficientFunds:
		return http.StatusUnprocessableEntity
	case types.ErrNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON request body of at most 64KiB
func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		WriteHTTPError(w, http.StatusBadRequest, string(types.ErrInvalidArgument), "invalid request body")
		return false
	}
	return true
}

// ParsePagination reads page and perPage query parameters
func ParsePagination(r *http.Request) (int, int) {
	page, perPage := 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := r.URL.Query().Get("perPage"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			perPage = n
		}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
