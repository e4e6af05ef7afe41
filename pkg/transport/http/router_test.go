package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/backend/local"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/repositories/profile"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/session"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type selectorFunc func(ctx context.Context) (backend.Backend, error)

func (f selectorFunc) Select(ctx context.Context) (backend.Backend, error) {
	return f(ctx)
}

// natural deals the player A+K against a dealer 9+7
func natural() *entities.Shoe {
	return entities.NewShoeFromCards([]entities.Card{
		entities.NewCard(entities.Spades, entities.Ace),
		entities.NewCard(entities.Hearts, entities.Nine),
		entities.NewCard(entities.Diamonds, entities.King),
		entities.NewCard(entities.Clubs, entities.Seven),
	})
}

type RouterTestSuite struct {
	suite.Suite
	server   *httptest.Server
	registry *session.Registry
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	repo := profile.NewMemoryRepository()
	manager := session.NewManager(
		selectorFunc(func(context.Context) (backend.Backend, error) {
			return local.New(repo, local.WithBcryptCost(bcrypt.MinCost)), nil
		}),
		session.WithRoundOptions(blackjack.WithShoeFactory(natural)),
	)
	s.registry = session.NewRegistry(manager, 0)
	s.server = httptest.NewServer(NewRouter(Deps{Sessions: s.registry}))
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
	s.registry.Stop(context.Background())
}

func (s *RouterTestSuite) do(method, path, token string, body any, out any) int {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *RouterTestSuite) login(name string) sessionResponse {
	var res sessionResponse
	status := s.do(http.MethodPost, "/api/session/login", "", backend.Credentials{Username: name, Password: "pw"}, &res)
	s.Require().Equal(http.StatusOK, status)
	return res
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *RouterTestSuite) TestHealth() {
	var body map[string]any
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/healthz", "", nil, &body))
	s.Equal(true, body["ok"])
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/healthz", "", nil, &body))
}

func (s *RouterTestSuite) TestLoginCreatesLocalProfile() {
	res := s.login("ada")

	s.NotEmpty(res.SessionID)
	s.Equal(backend.ModeLocal, res.Mode)
	s.Equal(int64(1000), res.User.Points)
	s.True(res.User.IsFirstLogin)
	s.Equal(1, s.registry.Len())
}

func (s *RouterTestSuite) TestWrongPasswordIsUnauthorized() {
	s.login("ada")

	var body errorBody
	status := s.do(http.MethodPost, "/api/session/login", "", backend.Credentials{Username: "ada", Password: "nope"}, &body)

	s.Equal(http.StatusUnauthorized, status)
	s.Equal(string(types.ErrInvalidCredentials), body.Error)
}

func (s *RouterTestSuite) TestRegisterConflict() {
	s.login("ada")

	var body errorBody
	status := s.do(http.MethodPost, "/api/session/register", "", backend.Credentials{Username: "ada", Password: "pw"}, &body)

	s.Equal(http.StatusConflict, status)
	s.Equal(string(types.ErrUserExists), body.Error)
}

func (s *RouterTestSuite) TestBadBody() {
	req, _ := http.NewRequest(http.MethodPost, s.server.URL+"/api/session/login", bytes.NewBufferString("{"))
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RouterTestSuite) TestSessionRequired() {
	var body errorBody
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", "", nil, &body))
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", "unknown", nil, &body))
	s.Equal(string(types.ErrNotLoggedIn), body.Error)
}

func (s *RouterTestSuite) TestBlackjackRound() {
	token := s.login("ada").SessionID

	var table tableResponse
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/blackjack/bet", token, betRequest{Amount: 50}, &table))
	s.Equal(entities.StateEnded, table.State)
	s.Require().NotNil(table.Settlement)
	s.True(table.Settlement.Blackjack)
	s.Equal(int64(1075), table.Balance)

	var body errorBody
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/blackjack/hit", token, nil, &body))
	s.Equal(string(types.ErrInvalidState), body.Error)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/blackjack/new-round", token, nil, &table))
	s.Equal(entities.StateBetting, table.State)

	var history struct {
		History []entities.HistoryEntry `json:"history"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/history", token, nil, &history))
	s.Require().Len(history.History, 1)
	s.Equal(int64(75), history.History[0].PointsChange)
	s.Equal(int64(50), history.History[0].Stake)
}

func (s *RouterTestSuite) TestInvalidBet() {
	token := s.login("ada").SessionID

	var body errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/blackjack/bet", token, betRequest{Amount: 0}, &body))
	s.Equal(string(types.ErrInvalidBet), body.Error)

	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/blackjack/bet", token, betRequest{Amount: 5000}, &body))
	s.Equal(string(types.ErrInsufficientFunds), body.Error)
}

func (s *RouterTestSuite) TestRewards() {
	token := s.login("ada").SessionID

	var catalog struct {
		Rewards []map[string]any `json:"rewards"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/rewards", "", nil, &catalog))
	s.Len(catalog.Rewards, 6)

	var redemption struct {
		Balance int64 `json:"balance"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rewards/bonus-100/redeem", token, nil, &redemption))
	s.Equal(int64(600), redemption.Balance)

	var body errorBody
	s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPost, "/api/rewards/bonus-1000/redeem", token, nil, &body))
	s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/api/rewards/jackpot/redeem", token, nil, &body))
	s.Equal(string(types.ErrRewardNotFound), body.Error)
}

func (s *RouterTestSuite) TestTableListsRedeemedPerks() {
	token := s.login("ada").SessionID

	var table struct {
		Balance int64    `json:"balance"`
		Perks   []string `json:"perks"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/blackjack", token, nil, &table))
	s.Empty(table.Perks)

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/rewards/free-games/redeem", token, nil, nil))
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/blackjack", token, nil, &table))
	s.Equal([]string{"free-games"}, table.Perks)
	s.Equal(int64(400), table.Balance)
}

func (s *RouterTestSuite) TestGameEndAndStats() {
	token := s.login("ada").SessionID

	var outcome session.ExternalOutcome
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/events/game-end", token,
		session.ExternalGameEnd{PointsWon: -25, GameResult: entities.ResultLoss}, &outcome))
	s.Equal(int64(975), outcome.Balance)
	s.Equal(session.ExternalGameName, outcome.Entry.GameName)

	var body errorBody
	s.Equal(http.StatusBadRequest, s.do(http.MethodPost, "/api/events/game-end", token,
		map[string]any{"pointsWon": 10, "gameResult": "draw"}, &body))

	var stats struct {
		Statistics entities.PlayerStatistics `json:"statistics"`
		NetProfit  int64                     `json:"netProfit"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/stats", token, nil, &stats))
	s.Equal(1, stats.Statistics.GamesPlayed)
	s.Equal(int64(-25), stats.NetProfit)
}

func (s *RouterTestSuite) TestWelcomeAndLogout() {
	token := s.login("ada").SessionID

	var user entities.User
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, "/api/session/welcome", token, nil, &user))
	s.False(user.IsFirstLogin)

	s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/session/logout", token, nil, nil))
	s.Equal(0, s.registry.Len())

	var body errorBody
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/me", token, nil, &body))

	again := s.login("ada")
	s.False(again.User.IsFirstLogin)
}

func (s *RouterTestSuite) TestGamesAndLeaderboard() {
	var lobby struct {
		Games []map[string]any `json:"games"`
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/api/games?category=blackjack", "", nil, &lobby))
	s.Len(lobby.Games, 2)

	var board map[string]any
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/leaderboard?page=1&perPage=5", "", nil, &board))
	s.Equal(float64(5), board["players_per_page"])
}
