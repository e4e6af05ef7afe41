package blackjack

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeBank is an in-memory Bank whose sync can be made to fail
type fakeBank struct {
	mu          sync.Mutex
	balance     int64
	failSync    bool
	debitGate   chan struct{}
	credits     []int64
	creditTypes []entities.TransactionType
}

func (b *fakeBank) Balance() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balance
}

func (b *fakeBank) Debit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error) {
	if b.debitGate != nil {
		<-b.debitGate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount > b.balance {
		return b.balance, types.NewGameError(types.ErrInsufficientFunds, "insufficient")
	}
	b.balance -= amount
	if b.failSync {
		return b.balance, types.WrapError(types.ErrSyncFailed, "sync", errors.New("offline"))
	}
	return b.balance, nil
}

func (b *fakeBank) Credit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance += amount
	b.credits = append(b.credits, amount)
	b.creditTypes = append(b.creditTypes, txType)
	if b.failSync {
		return b.balance, types.WrapError(types.ErrSyncFailed, "sync", errors.New("offline"))
	}
	return b.balance, nil
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) AppendRound(ctx context.Context, entry entities.HistoryEntry, record *entities.RoundRecord) (entities.HistoryEntry, error) {
	args := m.Called(ctx, entry, record)
	if fn, ok := args.Get(0).(func(context.Context, entities.HistoryEntry, *entities.RoundRecord) entities.HistoryEntry); ok {
		return fn(ctx, entry, record), args.Error(1)
	}
	return args.Get(0).(entities.HistoryEntry), args.Error(1)
}

// stacked returns a shoe factory dealing the given ranks in order
func stacked(ranks ...entities.Rank) func() *entities.Shoe {
	return func() *entities.Shoe {
		return entities.NewShoeFromCards(cards(ranks...))
	}
}

type RoundTestSuite struct {
	suite.Suite
	ctx      context.Context
	bank     *fakeBank
	recorder *mockRecorder
	now      time.Time
}

func (s *RoundTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.bank = &fakeBank{balance: 1000}
	s.recorder = new(mockRecorder)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RoundTestSuite) newRound(ranks ...entities.Rank) *Round {
	return NewRound(s.bank, s.recorder,
		WithShoeFactory(stacked(ranks...)),
		WithClock(func() time.Time { return s.now }),
		WithUserID("player-1"),
	)
}

// expectEntry records the history entry the round writes and echoes it back
func (s *RoundTestSuite) expectEntry() *entities.HistoryEntry {
	var got entities.HistoryEntry
	s.recorder.On("AppendRound", mock.Anything, mock.AnythingOfType("entities.HistoryEntry"), mock.AnythingOfType("*entities.RoundRecord")).
		Run(func(args mock.Arguments) {
			got = args.Get(1).(entities.HistoryEntry)
		}).
		Return(func(_ context.Context, e entities.HistoryEntry, _ *entities.RoundRecord) entities.HistoryEntry { return e }, nil).
		Once()
	return &got
}

func (s *RoundTestSuite) TestNaturalPaysThreeToTwo() {
	entry := s.expectEntry()
	// player A,K dealer 9,7
	r := s.newRound(entities.Ace, entities.Nine, entities.King, entities.Seven)

	snap, err := r.PlaceBet(s.ctx, 50)
	s.Require().NoError(err)

	s.Equal(entities.StateEnded, snap.State)
	s.False(snap.DealerHidden)
	s.Len(snap.DealerCards, 2)
	s.Require().NotNil(snap.Settlement)
	s.Equal(entities.ResultWin, snap.Settlement.Outcome)
	s.Equal(int64(125), snap.Settlement.Payout)
	s.Equal(int64(75), snap.Settlement.PointsChange)
	s.True(snap.Settlement.Blackjack)
	s.Equal(int64(1075), s.bank.Balance())
	s.Equal(int64(75), entry.PointsChange)
	s.Equal(int64(50), entry.Stake)
	s.Equal(GameName, entry.GameName)
	s.recorder.AssertExpectations(s.T())
}

func (s *RoundTestSuite) TestNaturalAgainstDealerTwentyOneIsPush() {
	s.expectEntry()
	// player A,K dealer A,Q
	r := s.newRound(entities.Ace, entities.Ace, entities.King, entities.Queen)

	snap, err := r.PlaceBet(s.ctx, 40)
	s.Require().NoError(err)
	s.Equal(entities.ResultPush, snap.Settlement.Outcome)
	s.Equal(int64(40), snap.Settlement.Payout)
	s.Equal(int64(0), snap.Settlement.PointsChange)
	s.Equal(int64(1000), s.bank.Balance())
	s.Equal([]entities.TransactionType{entities.TransactionTypePushReturn}, s.bank.creditTypes)
}

func (s *RoundTestSuite) TestStandAtEighteenLosesToNineteen() {
	entry := s.expectEntry()
	// player 10,8 dealer 10,6 then dealer draws 3
	r := s.newRound(entities.Ten, entities.Ten, entities.Eight, entities.Six, entities.Three)

	snap, err := r.PlaceBet(s.ctx, 20)
	s.Require().NoError(err)
	s.Equal(entities.StatePlaying, snap.State)

	snap, err = r.Stand(s.ctx)
	s.Require().NoError(err)
	s.Equal(entities.StateEnded, snap.State)
	s.Equal(19, snap.DealerValue)
	s.Equal(entities.ResultLoss, snap.Settlement.Outcome)
	s.Equal(int64(0), snap.Settlement.Payout)
	s.Equal(int64(-20), snap.Settlement.PointsChange)
	s.Equal(int64(-20), entry.PointsChange)
	s.Equal(int64(980), s.bank.Balance())
	s.Empty(s.bank.credits)
}

func (s *RoundTestSuite) TestStandClosesPlayerHand() {
	s.expectEntry()
	var logs bytes.Buffer
	// player 10,8 dealer 10,7
	r := NewRound(s.bank, s.recorder,
		WithShoeFactory(stacked(entities.Ten, entities.Ten, entities.Eight, entities.Seven)),
		WithLogger(logging.NewLoggerWithWriter(logging.ERROR, &logs)),
	)

	_, err := r.PlaceBet(s.ctx, 20)
	s.Require().NoError(err)
	_, err = r.Stand(s.ctx)
	s.Require().NoError(err)

	s.Equal(StatusStand, r.player.Status)
	s.Empty(logs.String())
}

func (s *RoundTestSuite) TestEqualTotalsPushReturnsStake() {
	s.expectEntry()
	// player K,Q dealer 10,J
	r := s.newRound(entities.King, entities.Ten, entities.Queen, entities.Jack)

	_, err := r.PlaceBet(s.ctx, 30)
	s.Require().NoError(err)
	snap, err := r.Stand(s.ctx)
	s.Require().NoError(err)

	s.Equal(entities.ResultPush, snap.Settlement.Outcome)
	s.Equal(int64(30), snap.Settlement.Payout)
	s.Equal(int64(0), snap.Settlement.PointsChange)
	s.Equal(int64(1000), s.bank.Balance())
}

func (s *RoundTestSuite) TestHitBustRevealsHoleCard() {
	entry := s.expectEntry()
	// player 10,5 dealer 9,8 then player draws 7
	r := s.newRound(entities.Ten, entities.Nine, entities.Five, entities.Eight, entities.Seven)

	snap, err := r.PlaceBet(s.ctx, 25)
	s.Require().NoError(err)
	s.True(snap.DealerHidden)
	s.Len(snap.DealerCards, 1)
	s.Equal(9, snap.DealerValue)

	snap, err = r.Hit(s.ctx)
	s.Require().NoError(err)
	s.Equal(22, snap.PlayerValue)
	s.Equal(entities.StateEnded, snap.State)
	s.False(snap.DealerHidden)
	s.Len(snap.DealerCards, 2)
	s.Equal(entities.ResultLoss, snap.Settlement.Outcome)
	s.Equal(int64(0), snap.Settlement.Payout)
	s.Equal(int64(-25), entry.PointsChange)
}

func (s *RoundTestSuite) TestHitToTwentyOneStands() {
	s.expectEntry()
	// player 5,6 dealer 10,7 then player draws K
	r := s.newRound(entities.Five, entities.Ten, entities.Six, entities.Seven, entities.King)

	_, err := r.PlaceBet(s.ctx, 10)
	s.Require().NoError(err)
	snap, err := r.Hit(s.ctx)
	s.Require().NoError(err)

	s.Equal(entities.StateEnded, snap.State)
	s.Equal(entities.ResultWin, snap.Settlement.Outcome)
	s.Equal(int64(20), snap.Settlement.Payout)
	s.Equal(int64(10), snap.Settlement.PointsChange)
	s.False(snap.Settlement.Blackjack)
}

func (s *RoundTestSuite) TestDealerBustPaysDouble() {
	s.expectEntry()
	// player 10,2 dealer 10,6 then dealer draws K
	r := s.newRound(entities.Ten, entities.Ten, entities.Two, entities.Six, entities.King)

	_, err := r.PlaceBet(s.ctx, 100)
	s.Require().NoError(err)
	snap, err := r.Stand(s.ctx)
	s.Require().NoError(err)

	s.Equal(26, snap.DealerValue)
	s.Equal(entities.ResultWin, snap.Settlement.Outcome)
	s.Equal(int64(200), snap.Settlement.Payout)
	s.Equal(int64(1100), s.bank.Balance())
}

func (s *RoundTestSuite) TestDealerStopsWhenShoeRunsOut() {
	s.expectEntry()
	// player 10,9 dealer 10,2 and nothing left to draw
	r := s.newRound(entities.Ten, entities.Ten, entities.Nine, entities.Two)

	_, err := r.PlaceBet(s.ctx, 10)
	s.Require().NoError(err)
	snap, err := r.Stand(s.ctx)
	s.Require().NoError(err)

	s.Len(snap.DealerCards, 2)
	s.Equal(entities.ResultWin, snap.Settlement.Outcome)
}

func (s *RoundTestSuite) TestHitOnEmptyShoeIsNoOp() {
	r := s.newRound(entities.Five, entities.Ten, entities.Six, entities.Seven)

	_, err := r.PlaceBet(s.ctx, 10)
	s.Require().NoError(err)
	snap, err := r.Hit(s.ctx)
	s.Require().NoError(err)

	s.Equal(entities.StatePlaying, snap.State)
	s.Len(snap.PlayerCards, 2)
	s.recorder.AssertNotCalled(s.T(), "AppendRound", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RoundTestSuite) TestNewRoundResets() {
	s.expectEntry()
	r := s.newRound(entities.Ten, entities.Nine, entities.Five, entities.Eight, entities.Seven)

	_, err := r.PlaceBet(s.ctx, 25)
	s.Require().NoError(err)
	_, err = r.Hit(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(r.NewRound())
	snap := r.Snapshot()
	s.Equal(entities.StateBetting, snap.State)
	s.Empty(snap.PlayerCards)
	s.Empty(snap.DealerCards)
	s.Nil(snap.Settlement)
	s.Equal(int64(0), snap.Bet)

	// a no-op while already betting
	s.NoError(r.NewRound())
}

func (s *RoundTestSuite) TestWrongStateCalls() {
	r := s.newRound(entities.Ten, entities.Ten, entities.Nine, entities.Seven)

	_, err := r.Hit(s.ctx)
	s.ErrorIs(err, ErrInvalidState)
	_, err = r.Stand(s.ctx)
	s.ErrorIs(err, ErrInvalidState)

	_, err = r.PlaceBet(s.ctx, 10)
	s.Require().NoError(err)

	_, err = r.PlaceBet(s.ctx, 10)
	s.ErrorIs(err, ErrInvalidState)
	s.ErrorIs(r.NewRound(), ErrInvalidState)
}

func (s *RoundTestSuite) TestRejectsInvalidBets() {
	r := s.newRound(entities.Ten, entities.Ten, entities.Nine, entities.Seven)

	for _, amount := range []int64{0, -5} {
		_, err := r.PlaceBet(s.ctx, amount)
		s.ErrorIs(err, ErrInvalidBet)
	}

	_, err := r.PlaceBet(s.ctx, 1001)
	s.ErrorIs(err, ErrInsufficientFunds)

	s.Equal(int64(1000), s.bank.Balance())
	s.Equal(entities.StateBetting, r.State())
}

func (s *RoundTestSuite) TestMinimumBet() {
	r := NewRound(s.bank, nil, WithMinBet(10), WithShoeFactory(stacked(entities.Ten, entities.Ten, entities.Nine, entities.Seven)))

	_, err := r.PlaceBet(s.ctx, 5)
	s.True(types.IsGameError(err, types.ErrInvalidBet))
	_, err = r.PlaceBet(s.ctx, 10)
	s.NoError(err)
}

func (s *RoundTestSuite) TestPayoutSyncFailureIsAWarning() {
	s.expectEntry()
	s.bank.failSync = true
	r := s.newRound(entities.Ace, entities.Nine, entities.King, entities.Seven)

	snap, err := r.PlaceBet(s.ctx, 50)
	s.Require().NoError(err)

	s.Equal(entities.ResultWin, snap.Settlement.Outcome)
	s.NotEmpty(snap.Settlement.Warning)
	s.Equal(int64(1075), s.bank.Balance())
}

func (s *RoundTestSuite) TestHistoryFailureDoesNotBlockSettlement() {
	s.recorder.On("AppendRound", mock.Anything, mock.Anything, mock.Anything).
		Return(entities.HistoryEntry{ID: "kept"}, types.NewGameError(types.ErrSyncFailed, "offline"))
	r := s.newRound(entities.Ten, entities.Ten, entities.Eight, entities.Six, entities.Three)

	_, err := r.PlaceBet(s.ctx, 20)
	s.Require().NoError(err)
	snap, err := r.Stand(s.ctx)
	s.Require().NoError(err)
	s.Equal(entities.StateEnded, snap.State)
	s.Equal("kept", snap.Settlement.Entry.ID)
	s.Empty(snap.Settlement.Warning)
}

func (s *RoundTestSuite) TestRoundRecord() {
	var record *entities.RoundRecord
	s.recorder.On("AppendRound", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			record = args.Get(2).(*entities.RoundRecord)
		}).
		Return(entities.HistoryEntry{}, nil)
	r := s.newRound(entities.Ten, entities.Ten, entities.Eight, entities.Six, entities.Three)

	snap, err := r.PlaceBet(s.ctx, 20)
	s.Require().NoError(err)
	_, err = r.Stand(s.ctx)
	s.Require().NoError(err)

	s.Require().NotNil(record)
	s.Equal(snap.RoundID, record.ID)
	s.Equal("player-1", record.UserID)
	s.Equal(int64(20), record.PointsUsed)
	s.Equal(int64(980), record.BalanceAfter)
	s.Equal(18, record.PlayerScore)
	s.Equal(19, record.DealerScore)
	s.Len(record.DealerCards, 3)
	s.Equal(s.now, record.CompletedAt)
}

func TestRoundTestSuite(t *testing.T) {
	suite.Run(t, new(RoundTestSuite))
}

func TestPlaceBetRejectsDuplicateWhileDebiting(t *testing.T) {
	bank := &fakeBank{balance: 100, debitGate: make(chan struct{})}
	r := NewRound(bank, nil, WithShoeFactory(stacked(entities.Ten, entities.Ten, entities.Nine, entities.Seven)))

	done := make(chan error, 1)
	go func() {
		_, err := r.PlaceBet(context.Background(), 10)
		done <- err
	}()

	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.placing
	}, time.Second, time.Millisecond)

	_, err := r.PlaceBet(context.Background(), 10)
	assert.ErrorIs(t, err, ErrBetInProgress)
	assert.ErrorIs(t, r.NewRound(), ErrBetInProgress)

	close(bank.debitGate)
	require.NoError(t, <-done)
	assert.Equal(t, int64(90), bank.Balance())
	assert.Equal(t, entities.StatePlaying, r.State())
}

func TestDebitSyncFailureStillDeals(t *testing.T) {
	bank := &fakeBank{balance: 100, failSync: true}
	r := NewRound(bank, nil, WithShoeFactory(stacked(entities.Ten, entities.Ten, entities.Nine, entities.Seven)))

	snap, err := r.PlaceBet(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, entities.StatePlaying, snap.State)
	assert.Equal(t, int64(90), bank.Balance())
}

func TestBuildShoeRound(t *testing.T) {
	bank := &fakeBank{balance: 100}
	r := NewRound(bank, nil)

	snap, err := r.PlaceBet(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, snap.PlayerCards, 2)
	if snap.State == entities.StatePlaying {
		assert.True(t, snap.DealerHidden)
		assert.Len(t, snap.DealerCards, 1)
	}
}
