package blackjack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fadedpez/placebo/internal/ids"
	"github.com/fadedpez/placebo/internal/logging"
	"github.com/fadedpez/placebo/internal/types"
	"github.com/fadedpez/placebo/pkg/entities"
)

// GameName is the history label for rounds played natively
const GameName = "Blackjack"

var (
	ErrInvalidBet        = types.NewGameError(types.ErrInvalidBet, "bet must be a positive amount")
	ErrInsufficientFunds = types.NewGameError(types.ErrInsufficientFunds, "not enough points for this bet")
	ErrBetInProgress     = types.NewGameError(types.ErrBetInProgress, "a bet is already being placed")
	ErrInvalidState      = types.NewGameError(types.ErrInvalidState, "action not allowed in the current round state")
)

// Bank is the points ledger a round debits the bet from and credits payouts to
type Bank interface {
	Balance() int64
	Debit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error)
	Credit(ctx context.Context, amount int64, ref string, txType entities.TransactionType) (int64, error)
}

// Recorder receives one history entry per settled round, with the round's full record
type Recorder interface {
	AppendRound(ctx context.Context, entry entities.HistoryEntry, record *entities.RoundRecord) (entities.HistoryEntry, error)
}

// Settlement is the outcome of a round once it has ended
type Settlement struct {
	RoundID      string                `json:"roundId"`
	Outcome      entities.Result       `json:"outcome"`
	Bet          int64                 `json:"bet"`
	Payout       int64                 `json:"payout"`
	PointsChange int64                 `json:"pointsChange"`
	Blackjack    bool                  `json:"blackjack"`
	Warning      string                `json:"warning,omitempty"`
	Entry        entities.HistoryEntry `json:"entry"`
}

// Snapshot is a read-only view of a round. The dealer's hole card is left out while hidden.
type Snapshot struct {
	RoundID      string              `json:"roundId,omitempty"`
	State        entities.RoundState `json:"state"`
	Bet          int64               `json:"bet"`
	PlayerCards  []entities.Card     `json:"playerCards"`
	DealerCards  []entities.Card     `json:"dealerCards"`
	DealerHidden bool                `json:"dealerHidden"`
	PlayerValue  int                 `json:"playerValue"`
	DealerValue  int                 `json:"dealerValue"`
	Settlement   *Settlement         `json:"settlement,omitempty"`
}

// Option configures a Round
type Option func(*Round)

// WithShoeFactory replaces the shuffled shoe built for every bet
func WithShoeFactory(f func() *entities.Shoe) Option {
	return func(r *Round) { r.newShoe = f }
}

// WithGameName sets the name written to history entries
func WithGameName(name string) Option {
	return func(r *Round) { r.gameName = name }
}

// WithMinBet sets the table minimum
func WithMinBet(min int64) Option {
	return func(r *Round) {
		if min > 0 {
			r.minBet = min
		}
	}
}

// WithClock sets the time source for round records
func WithClock(now func() time.Time) Option {
	return func(r *Round) { r.now = now }
}

// WithUserID tags round records with the player's id
func WithUserID(id string) Option {
	return func(r *Round) { r.userID = id }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(r *Round) { r.log = l }
}

// Round drives one blackjack round at a time for a single player
type Round struct {
	mu sync.Mutex

	bank     Bank
	recorder Recorder
	newShoe  func() *entities.Shoe
	gameName string
	minBet   int64
	userID   string
	now      func() time.Time
	log      *logging.Logger

	id           string
	state        entities.RoundState
	placing      bool
	bet          int64
	shoe         *entities.Shoe
	player       *Hand
	dealer       *Hand
	dealerHidden bool
	settlement   *Settlement
}

// NewRound creates a round in the betting state. recorder may be nil.
func NewRound(bank Bank, recorder Recorder, opts ...Option) *Round {
	r := &Round{
		bank:     bank,
		recorder: recorder,
		newShoe:  entities.BuildShoe,
		gameName: GameName,
		minBet:   DefaultMinBet,
		now:      time.Now,
		log:      logging.Default.With("blackjack"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.reset()
	return r
}

func (r *Round) reset() {
	r.id = ""
	r.state = entities.StateBetting
	r.bet = 0
	r.shoe = nil
	r.player = NewHand()
	r.dealer = NewHand()
	r.dealerHidden = false
	r.settlement = nil
}

// State returns the current phase
func (r *Round) State() entities.RoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlaceBet debits the bet, deals player, dealer, player, dealer from a fresh
// shoe and moves to playing. A natural settles the round immediately.
func (r *Round) PlaceBet(ctx context.Context, amount int64) (Snapshot, error) {
	r.mu.Lock()
	if r.placing {
		r.mu.Unlock()
		return Snapshot{}, ErrBetInProgress
	}
	if r.state != entities.StateBetting {
		r.mu.Unlock()
		return Snapshot{}, ErrInvalidState
	}
	if amount <= 0 || amount < r.minBet {
		r.mu.Unlock()
		return Snapshot{}, types.NewGameError(types.ErrInvalidBet,
			fmt.Sprintf("bet must be at least %d", r.minBet))
	}
	if amount > r.bank.Balance() {
		r.mu.Unlock()
		return Snapshot{}, types.NewGameError(types.ErrInsufficientFunds,
			fmt.Sprintf("bet of %d exceeds your balance of %d", amount, r.bank.Balance()))
	}
	r.placing = true
	roundID := ids.NewID()
	r.mu.Unlock()

	_, err := r.bank.Debit(ctx, amount, roundID, entities.TransactionTypeBet)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.placing = false
	if err != nil {
		if !types.IsGameError(err, types.ErrSyncFailed) {
			return Snapshot{}, err
		}
		r.log.Warn("Bet of %d for round %s not synced: %v", amount, roundID, err)
	}

	r.id = roundID
	r.bet = amount
	r.shoe = r.newShoe()
	r.player = NewHand()
	r.dealer = NewHand()
	for i := 0; i < 2; i++ {
		r.deal(r.player)
		r.deal(r.dealer)
	}
	r.dealerHidden = true
	r.state = entities.StatePlaying

	if r.player.IsBlackjack() {
		r.dealerHidden = false
		if r.dealer.Value() == BlackjackTotal {
			r.settle(ctx, entities.ResultPush, r.bet, false)
		} else {
			r.settle(ctx, entities.ResultWin, BlackjackPayout(r.bet), true)
		}
	}

	return r.snapshot(), nil
}

// Hit draws one card for the player. An empty shoe makes it a no-op.
func (r *Round) Hit(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != entities.StatePlaying {
		return Snapshot{}, ErrInvalidState
	}
	if !r.deal(r.player) {
		return r.snapshot(), nil
	}

	switch {
	case r.player.Status == StatusBust:
		r.dealerHidden = false
		r.settle(ctx, entities.ResultLoss, 0, false)
	case r.player.Value() == BlackjackTotal:
		r.stand(ctx)
	}
	return r.snapshot(), nil
}

// Stand reveals the hole card, plays the dealer and settles
func (r *Round) Stand(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != entities.StatePlaying {
		return Snapshot{}, ErrInvalidState
	}
	r.stand(ctx)
	return r.snapshot(), nil
}

// NewRound discards an ended round and returns to betting
func (r *Round) NewRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.placing:
		return ErrBetInProgress
	case r.state == entities.StateBetting:
		return nil
	case r.state != entities.StateEnded:
		return ErrInvalidState
	}
	r.reset()
	return nil
}

// Snapshot returns the current view of the round
func (r *Round) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Round) stand(ctx context.Context) {
	if err := r.player.Stand(); err != nil {
		r.log.Error("Round %s stood on a finished hand: %v", r.id, err)
	}
	r.dealerHidden = false
	r.state = entities.StateDealer

	for ShouldDealerDraw(r.dealer.Cards) {
		if !r.deal(r.dealer) {
			break
		}
	}

	switch Compare(r.player.Cards, r.dealer.Cards) {
	case 1:
		r.settle(ctx, entities.ResultWin, WinPayout(r.bet), false)
	case -1:
		r.settle(ctx, entities.ResultLoss, 0, false)
	default:
		r.settle(ctx, entities.ResultPush, r.bet, false)
	}
}

// deal moves the top card of the shoe into hand, reporting false when the shoe is empty
func (r *Round) deal(hand *Hand) bool {
	card, ok := r.shoe.Draw()
	if !ok {
		return false
	}
	return hand.AddCard(card) == nil
}

// settle credits the payout, writes history and ends the round.
// Credit and history failures never undo the outcome.
func (r *Round) settle(ctx context.Context, outcome entities.Result, payout int64, natural bool) {
	r.state = entities.StateEnded
	r.dealerHidden = false

	s := &Settlement{
		RoundID:   r.id,
		Outcome:   outcome,
		Bet:       r.bet,
		Payout:    payout,
		Blackjack: natural,
	}

	switch outcome {
	case entities.ResultWin:
		s.PointsChange = payout - r.bet
	case entities.ResultLoss:
		s.PointsChange = -r.bet
	}

	if payout > 0 {
		txType := entities.TransactionTypePayout
		if outcome == entities.ResultPush {
			txType = entities.TransactionTypePushReturn
		}
		if _, err := r.bank.Credit(ctx, payout, r.id, txType); err != nil {
			s.Warning = fmt.Sprintf("%d points were credited locally but could not be saved to the server", payout)
			r.log.Warn("Payout of %d for round %s: %v", payout, r.id, err)
		}
	}

	entry := entities.HistoryEntry{
		GameName:     r.gameName,
		Result:       outcome,
		PointsChange: s.PointsChange,
		Stake:        r.bet,
	}
	if r.recorder != nil {
		appended, err := r.recorder.AppendRound(ctx, entry, r.record(s))
		if err != nil {
			r.log.Warn("History for round %s not synced: %v", r.id, err)
		}
		entry = appended
	}
	s.Entry = entry

	r.settlement = s
}

func (r *Round) record(s *Settlement) *entities.RoundRecord {
	return &entities.RoundRecord{
		ID:           r.id,
		UserID:       r.userID,
		GameID:       r.gameName,
		PointsUsed:   r.bet,
		Result:       s.Outcome,
		PointsChange: s.PointsChange,
		BalanceAfter: r.bank.Balance(),
		PlayerCards:  entities.CardStrings(r.player.Cards),
		DealerCards:  entities.CardStrings(r.dealer.Cards),
		PlayerScore:  r.player.Value(),
		DealerScore:  r.dealer.Value(),
		CompletedAt:  r.now(),
	}
}

func (r *Round) snapshot() Snapshot {
	snap := Snapshot{
		RoundID:      r.id,
		State:        r.state,
		Bet:          r.bet,
		PlayerCards:  r.player.copyCards(),
		DealerCards:  r.dealer.copyCards(),
		DealerHidden: r.dealerHidden,
		PlayerValue:  r.player.Value(),
	}
	if r.dealerHidden && len(snap.DealerCards) > 1 {
		snap.DealerCards = snap.DealerCards[:1]
	}
	snap.DealerValue = HandValue(snap.DealerCards)
	if r.settlement != nil {
		s := *r.settlement
		snap.Settlement = &s
	}
	return snap
}
