package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/backend"
	"github.com/fadedpez/placebo/pkg/backend/local"
	mock_backend "github.com/fadedpez/placebo/pkg/backend/mock"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/fadedpez/placebo/pkg/repositories/journal"
	"github.com/fadedpez/placebo/pkg/repositories/profile"
	"github.com/fadedpez/placebo/pkg/services/blackjack"
	"github.com/fadedpez/placebo/pkg/services/ledger"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
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

type SessionTestSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	backend *mock_backend.MockBackend
	now     time.Time
	journal journal.Repository
	manager *Manager
}

func (s *SessionTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.backend = mock_backend.NewMockBackend(s.ctrl)
	s.backend.EXPECT().Mode().Return(backend.ModeRemote).AnyTimes()
	s.now = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	s.journal = journal.NewMemoryRepository()

	s.manager = NewManager(
		selectorFunc(func(context.Context) (backend.Backend, error) { return s.backend, nil }),
		WithJournal(s.journal),
		WithClock(func() time.Time { return s.now }),
		WithRoundOptions(blackjack.WithShoeFactory(natural)),
	)
}

func (s *SessionTestSuite) login() *Session {
	s.backend.EXPECT().Login(gomock.Any(), backend.Credentials{Username: "ada", Password: "pw"}).Return(&backend.AuthResult{
		User: entities.User{ID: "42", Name: "ada", Points: 1000, IsLoggedIn: true, IsFirstLogin: true},
		History: []entities.HistoryEntry{
			{ID: "old", GameName: "Blackjack", Result: entities.ResultLoss, PointsChange: -10},
		},
	}, nil)

	sess, err := s.manager.Authenticate(s.ctx, " ada ", "pw", "")
	s.Require().NoError(err)
	return sess
}

func (s *SessionTestSuite) TestLoginAdoptsBackendState() {
	sess := s.login()

	s.NotEmpty(sess.ID)
	s.Equal(backend.ModeRemote, sess.Mode())
	s.Equal("42", sess.User().ID)
	s.Equal(int64(1000), sess.Ledger().Balance())
	s.Require().Len(sess.History().Entries(), 1)
	s.Equal(entities.StateBetting, sess.Round().State())
}

func (s *SessionTestSuite) TestLoginFailureIsReturned() {
	rejected := types.NewGameError(types.ErrInvalidCredentials, "Invalid username or password")
	s.backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil, rejected)

	sess, err := s.manager.Login(s.ctx, backend.Credentials{Username: "ada", Password: "nope"})
	s.Nil(sess)
	s.True(types.IsGameError(err, types.ErrInvalidCredentials))
}

func (s *SessionTestSuite) TestSelectorFailure() {
	m := NewManager(selectorFunc(func(context.Context) (backend.Backend, error) {
		return nil, errors.New("no backend available")
	}))
	_, err := m.Login(s.ctx, backend.Credentials{Username: "ada", Password: "pw"})
	s.True(types.IsGameError(err, types.ErrInternalError))
}

func (s *SessionTestSuite) TestRoundSyncsThroughBackend() {
	sess := s.login()

	gomock.InOrder(
		s.backend.EXPECT().SyncPoints(gomock.Any(), int64(-50), gomock.Any()).Return(int64(950), nil),
		s.backend.EXPECT().SyncPoints(gomock.Any(), int64(125), gomock.Any()).Return(int64(1075), nil),
		s.backend.EXPECT().CreateGameRound(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error) {
				s.Equal("42", record.UserID)
				s.Equal(int64(50), record.PointsUsed)
				s.Equal(int64(75), record.PointsChange)
				return &entities.RoundReceipt{RoundID: "1", NewBalance: 1075}, nil
			}),
	)

	snap, err := sess.Round().PlaceBet(s.ctx, 50)
	s.Require().NoError(err)
	s.Require().NotNil(snap.Settlement)
	s.Empty(snap.Settlement.Warning)

	s.Equal(int64(1075), sess.User().Points)
	s.Equal(int64(0), sess.Ledger().Discrepancy())
	s.Len(sess.History().Entries(), 2)

	txs, err := sess.Ledger().Transactions(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(txs, 2)
	s.Equal(entities.TransactionTypePayout, txs[0].Type)
}

func (s *SessionTestSuite) TestLogoutDisposesEvenWhenBackendFails() {
	sess := s.login()
	s.backend.EXPECT().Logout(gomock.Any()).Return(errors.New("503"))

	s.NoError(s.manager.Logout(s.ctx, sess))
	s.True(sess.Closed())

	_, err := sess.Ledger().Adjust(s.ctx, 10, "late")
	s.ErrorIs(err, ledger.ErrClosed)
	_, err = sess.ApplyExternalGameEnd(s.ctx, ExternalGameEnd{PointsWon: 10, GameResult: entities.ResultWin})
	s.ErrorIs(err, ErrClosed)

	// a second logout does not reach the backend again
	s.NoError(s.manager.Logout(s.ctx, sess))
}

func (s *SessionTestSuite) TestMarkWelcomedOnce() {
	sess := s.login()
	s.backend.EXPECT().MarkWelcomed(gomock.Any()).Return(nil).Times(1)

	s.True(sess.User().IsFirstLogin)
	s.NoError(sess.MarkWelcomed(s.ctx))
	s.NoError(sess.MarkWelcomed(s.ctx))
	s.False(sess.User().IsFirstLogin)
}

func (s *SessionTestSuite) TestExternalGameEnd() {
	sess := s.login()
	s.backend.EXPECT().SyncPoints(gomock.Any(), int64(150), gomock.Any()).Return(int64(1150), nil).Times(1)
	s.backend.EXPECT().CreateGameRound(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error) {
			s.Equal(ExternalGameName, record.GameID)
			s.Equal(entities.ResultWin, record.Result)
			s.Equal(int64(1150), record.BalanceAfter)
			s.Equal(int64(150), record.PointsUsed)
			return &entities.RoundReceipt{}, nil
		}).Times(1)

	out, err := sess.ApplyExternalGameEnd(s.ctx, ExternalGameEnd{PointsWon: 150, GameResult: entities.ResultWin})
	s.Require().NoError(err)
	s.Empty(out.Warnings)
	s.Equal(int64(1150), out.Balance)
	s.Equal(ExternalGameName, out.Entry.GameName)
	s.Equal(int64(150), out.Entry.PointsChange)

	entries := sess.History().Entries()
	s.Require().Len(entries, 2)
	s.Equal(out.Entry, entries[0])

	txs, err := sess.Ledger().Transactions(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal(entities.TransactionTypeExternal, txs[0].Type)
}

func (s *SessionTestSuite) TestExternalGameEndSyncFailuresWarn() {
	sess := s.login()
	s.backend.EXPECT().SyncPoints(gomock.Any(), int64(-30), gomock.Any()).Return(int64(0), errors.New("offline"))
	s.backend.EXPECT().CreateGameRound(gomock.Any(), gomock.Any()).Return(nil, errors.New("offline"))

	out, err := sess.ApplyExternalGameEnd(s.ctx, ExternalGameEnd{PointsWon: -30, GameResult: entities.ResultLoss})
	s.Require().NoError(err)
	s.Len(out.Warnings, 2)
	s.Equal(int64(970), sess.Ledger().Balance())
	s.Len(sess.History().Entries(), 2)
}

func (s *SessionTestSuite) TestExternalGameEndRejectsBadInput() {
	sess := s.login()

	_, err := sess.ApplyExternalGameEnd(s.ctx, ExternalGameEnd{PointsWon: 10, GameResult: "jackpot"})
	s.True(types.IsGameError(err, types.ErrInvalidArgument))

	s.Len(sess.History().Entries(), 1)
}

func (s *SessionTestSuite) TestExternalLossBeyondBalanceEmptiesIt() {
	sess := s.login()
	s.backend.EXPECT().SyncPoints(gomock.Any(), int64(-1000), gomock.Any()).Return(int64(0), nil).Times(1)
	s.backend.EXPECT().CreateGameRound(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, record *entities.RoundRecord) (*entities.RoundReceipt, error) {
			s.Equal(int64(5000), record.PointsUsed)
			s.Equal(int64(-1000), record.PointsChange)
			s.Equal(int64(0), record.BalanceAfter)
			return &entities.RoundReceipt{}, nil
		}).Times(1)

	out, err := sess.ApplyExternalGameEnd(s.ctx, ExternalGameEnd{PointsWon: -5000, GameResult: entities.ResultLoss})
	s.Require().NoError(err)
	s.Empty(out.Warnings)
	s.Equal(int64(0), out.Balance)
	s.Equal(int64(0), sess.Ledger().Balance())
	s.Equal(int64(-1000), out.Entry.PointsChange)
	s.Equal(int64(5000), out.Entry.Stake)

	entries := sess.History().Entries()
	s.Require().Len(entries, 2)
	s.Equal(entities.ResultLoss, entries[0].Result)
}

func (s *SessionTestSuite) TestRestoreNeedsRestorer() {
	_, err := s.manager.Restore(s.ctx)
	s.ErrorIs(err, ErrRestoreUnsupported)
}

func (s *SessionTestSuite) TestRestoreLocalProfile() {
	repo := profile.NewMemoryRepository()
	newLocal := func() backend.Backend { return local.New(repo, local.WithBcryptCost(bcrypt.MinCost)) }
	m := NewManager(backend.NewSelector("local", nil, newLocal))

	first, err := m.Login(s.ctx, backend.Credentials{Username: "ada", Password: "pw"})
	s.Require().NoError(err)
	_, err = first.Ledger().Adjust(s.ctx, 200, "gift")
	s.Require().NoError(err)

	restored, err := m.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1200), restored.User().Points)
	s.Equal(backend.ModeLocal, restored.Mode())
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
