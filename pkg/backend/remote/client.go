package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/entities"
)

var (
	ErrNotLoggedIn = types.NewGameError(types.ErrNotLoggedIn, "not logged in")
	ErrExpired     = types.NewGameError(types.ErrNotLoggedIn, "session expired, please log in again")
)

// Backend talks to the casino HTTP API. It implements backend.Backend.
type Backend struct {
	baseURL string
	client  *http.Client
	tokens  TokenStore
	log     *logging.Logger
	now     func() time.Time
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend
type Option func(*Backend)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) { b.client = c }
}

// WithTimeout sets the request timeout. Zero leaves it to the transport.
func WithTimeout(d time.Duration) Option {
	return func(b *Backend) { b.client.Timeout = d }
}

// WithTokenStore shares a token store
func WithTokenStore(s TokenStore) Option {
	return func(b *Backend) { b.tokens = s }
}

// WithClock sets the time source used to check token expiry
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Backend {
	b := &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		tokens:  NewMemoryTokenStore(),
		log:     logging.Default.With("remote"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode implements backend.Backend
func (b *Backend) Mode() backend.Mode {
	return backend.ModeRemote
}

// Login posts the credentials and keeps the returned token
func (b *Backend) Login(ctx context.Context, creds backend.Credentials) (*backend.AuthResult, error) {
	return b.authenticate(ctx, "/auth/login", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
		Email:    creds.Email,
	})
}

// Register creates the account and keeps the returned token
func (b *Backend) Register(ctx context.Context, creds backend.Credentials) (*backend.AuthResult, error) {
	if creds.Email == "" {
		return nil, types.NewGameError(types.ErrInvalidArgument, "email is required to register")
	}
	return b.authenticate(ctx, "/auth/register", loginRequest{
		Username: creds.Username,
		Password: creds.Password,
		Email:    creds.Email,
	})
}

func (b *Backend) authenticate(ctx context.Context, path string, req loginRequest) (*backend.AuthResult, error) {
	var resp authResponse
	if err := b.do(ctx, http.MethodPost, path, req, &resp, false); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "login failed"
		}
		return nil, types.NewGameError(types.ErrInvalidCredentials, msg)
	}

	userID := string(resp.User.ID)
	if userID == "" {
		userID = tokenSubject(resp.AccessToken)
	}
	name := resp.User.Name
	if name == "" {
		name = req.Username
	}
	firstLogin := resp.User.IsFirstLogin
	if resp.IsFirstLogin != nil {
		firstLogin = *resp.IsFirstLogin
	}

	b.tokens.Set(TokenKey, resp.AccessToken)
	b.tokens.Set(UserIDKey, userID)
	b.tokens.Set(UsernameKey, name)

	history := make([]entities.HistoryEntry, 0, len(resp.User.GameHistory))
	for _, item := range resp.User.GameHistory {
		history = append(history, item.entry())
	}

	return &backend.AuthResult{
		User: entities.User{
			ID:           userID,
			Name:         name,
			Email:        resp.User.Email,
			Points:       resp.User.Points,
			IsLoggedIn:   true,
			IsFirstLogin: firstLogin,
		},
		History: history,
		Token:   resp.AccessToken,
	}, nil
}

// Logout tells the API and always forgets the token
func (b *Backend) Logout(ctx context.Context) error {
	defer b.tokens.Clear()
	if b.tokens.Get(TokenKey) == "" {
		return nil
	}
	return b.do(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
}

// SyncPoints applies delta on the server and returns the server balance
func (b *Backend) SyncPoints(ctx context.Context, delta int64, roundRef string) (int64, error) {
	userID, err := b.userID()
	if err != nil {
		return 0, err
	}

	var resp pointsResponse
	path := "/user/" + url.PathEscape(userID) + "/points"
	if err := b.do(ctx, http.MethodPut, path, pointsRequest{RoundID: roundRef, PointsChange: delta}, &resp, true); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, types.NewGameError(types.ErrSyncFailed, fmt.Sprintf("server refused points update: %s", resp.Error))
	}
	return resp.Points, nil
}

// CreateGameRound posts a settled round
func (b *Backend) CreateGameRound(ctx context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error) {
	userID, err := b.userID()
	if err != nil {
		return nil, err
	}

	req := roundRequest{
		UserID:       userID,
		GameID:       strings.ToLower(record.GameID),
		PointsUsed:   record.PointsUsed,
		Result:       record.Result,
		PointsChange: record.PointsChange,
		RoundData:    record,
	}
	var resp roundResponse
	if err := b.do(ctx, http.MethodPost, "/game/round", req, &resp, true); err != nil {
		return nil, err
	}
	return &entities.RoundReceipt{RoundID: string(resp.RoundID), NewBalance: resp.NewBalance}, nil
}

// MarkWelcomed is a no-op: the server clears its own first-login flag
func (b *Backend) MarkWelcomed(ctx context.Context) error {
	return nil
}

// Health checks GET /health
func (b *Backend) Health(ctx context.Context) error {
	return b.do(ctx, http.MethodGet, "/health", nil, nil, false)
}

// History fetches a page of the player's server-side history
func (b *Backend) History(ctx context.Context, limit, offset int) ([]entities.HistoryEntry, error) {
	userID, err := b.userID()
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	path := fmt.Sprintf("/user/%s/history?limit=%d&offset=%d", url.PathEscape(userID), limit, offset)
	if err := b.do(ctx, http.MethodGet, path, nil, &resp, true); err != nil {
		return nil, err
	}

	entries := make([]entities.HistoryEntry, 0, len(resp.GameHistory))
	for _, item := range resp.GameHistory {
		entries = append(entries, item.entry())
	}
	return entries, nil
}

// PlayerStatistics fetches the server's aggregate for the logged-in player
func (b *Backend) PlayerStatistics(ctx context.Context) (*entities.PlayerStatistics, error) {
	userID, err := b.userID()
	if err != nil {
		return nil, err
	}

	var resp statsResponse
	if err := b.do(ctx, http.MethodGet, "/user/"+url.PathEscape(userID)+"/stats", nil, &resp, true); err != nil {
		return nil, err
	}

	s := resp.Stats
	stats := &entities.PlayerStatistics{
		PlayerID:        userID,
		GamesPlayed:     s.GamesPlayed,
		Wins:            s.Wins,
		Losses:          s.Losses,
		Pushes:          s.GamesPlayed - s.Wins - s.Losses,
		TotalPointsWon:  s.TotalPointsWon,
		TotalPointsLost: s.TotalPointsLost,
	}
	if stats.Pushes < 0 {
		stats.Pushes = 0
	}
	if ts, err := time.Parse(time.RFC3339Nano, s.LastLogin); err == nil {
		stats.LastPlayed = ts
	}
	return stats, nil
}

// userID returns the logged-in id, failing fast on a missing or expired token
func (b *Backend) userID() (string, error) {
	token := b.tokens.Get(TokenKey)
	if token == "" {
		return "", ErrNotLoggedIn
	}
	if tokenExpired(token, b.now()) {
		b.tokens.Clear()
		return "", ErrExpired
	}

	userID := b.tokens.Get(UserIDKey)
	if userID == "" {
		userID = tokenSubject(token)
	}
	if userID == "" {
		return "", ErrNotLoggedIn
	}
	return userID, nil
}

// do sends a JSON request and decodes a JSON response into out.
// Non-2xx responses become GameErrors carrying the API's error message.
func (b *Backend) do(ctx context.Context, method, path string, body, out interface{}, auth bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return types.WrapError(types.ErrInternalError, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return types.WrapError(types.ErrInternalError, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if token := b.tokens.Get(TokenKey); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return types.WrapError(types.ErrNetworkError, "casino API unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, auth)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.WrapError(types.ErrNetworkError, "decode response from "+path, err)
	}
	return nil
}

func statusError(resp *http.Response, auth bool) error {
	var body apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
		if msg == "" {
			msg = body.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		return types.NewGameError(types.ErrUserExists, msg)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if auth {
			return types.NewGameError(types.ErrNotLoggedIn, msg)
		}
		return types.NewGameError(types.ErrInvalidCredentials, msg)
	case resp.StatusCode >= 500:
		return types.NewGameError(types.ErrNetworkError, fmt.Sprintf("%d: %s", resp.StatusCode, msg))
	case !auth:
		// login and register answer bad input with 400
		return types.NewGameError(types.ErrInvalidCredentials, msg)
	default:
		return types.NewGameError(types.ErrInvalidArgument, msg)
	}
}
