package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
	"github.com/rocketscienceinc/tictactoe-variants/internal/tictactoe"
)

var ErrManagerClosed = errors.New("game manager is closed")

const (
	defaultIdleTTL   = 24 * time.Hour
	subscriberBuffer = 4
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game entity.Game) error
	GetByID(ctx context.Context, id string) (entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type subscriber struct {
	ch        chan entity.Game
	done      chan struct{}
	closeOnce sync.Once
}

func newSubscriber() *subscriber {
	return &subscriber{
		ch:   make(chan entity.Game, subscriberBuffer),
		done: make(chan struct{}),
	}
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		close(s.ch)
	})
}

// publish delivers game without blocking; a slow subscriber only keeps the latest state.
func (s *subscriber) publish(game entity.Game) {
	select {
	case s.ch <- game:
		return
	default:
	}

	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- game:
	default:
	}
}

// session is the live state of one game. Its mutex serialises everything that
// touches the game; epoch grows on every change so a scheduled bot move can
// tell that the board it was planned for is gone.
type session struct {
	mu         sync.Mutex
	game       entity.Game
	epoch      uint64
	cancelBot  context.CancelFunc
	subs       map[*subscriber]struct{}
	lastActive time.Time
	// gone is set once the session left the manager; holders must look it up again.
	gone bool
}

func newSession(game entity.Game) *session {
	return &session{
		game:       game,
		subs:       make(map[*subscriber]struct{}),
		lastActive: time.Now(),
	}
}

func (s *session) closeSubsLocked() {
	for sub := range s.subs {
		sub.close()
		delete(s.subs, sub)
	}
}

// lockedRandomizer lets bot turns of different games share one source.
type lockedRandomizer struct {
	mu  sync.Mutex
	rnd tictactoe.Randomizer
}

func (that *lockedRandomizer) Intn(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rnd.Intn(n)
}

type Option func(*GameManager)

// WithRandomizer replaces the source of the bot's random fallback.
func WithRandomizer(rnd tictactoe.Randomizer) Option {
	return func(that *GameManager) { that.rnd = rnd }
}

// WithIdleTTL sets how long an untouched game stays in memory.
func WithIdleTTL(ttl time.Duration) Option {
	return func(that *GameManager) { that.idleTTL = ttl }
}

// GameManager runs games: it applies moves and power-ups, plays the bot with a
// delay, persists every state and notifies subscribers.
type GameManager struct {
	logger        *slog.Logger
	gameRepo      gameRepo
	opponentDelay time.Duration
	idleTTL       time.Duration
	rnd           tictactoe.Randomizer

	closed atomic.Bool

	// mu guards the sessions map only, never a game.
	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, opponentDelay time.Duration, opts ...Option) *GameManager {
	manager := &GameManager{
		logger:        logger.With("component", "game_manager"),
		gameRepo:      gameRepo,
		opponentDelay: opponentDelay,
		idleTTL:       defaultIdleTTL,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // it's ok
		sessions:      make(map[string]*session),
	}

	for _, opt := range opts {
		opt(manager)
	}

	manager.rnd = &lockedRandomizer{rnd: manager.rnd}

	return manager
}

func (that *GameManager) NewGame(ctx context.Context, variant entity.Variant) (entity.Game, error) {
	if that.closed.Load() {
		return entity.Game{}, ErrManagerClosed
	}

	game, err := tictactoe.NewGame(uuid.NewString(), variant)
	if err != nil {
		return entity.Game{}, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return entity.Game{}, fmt.Errorf("failed to save game: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed.Load() {
		return entity.Game{}, ErrManagerClosed
	}

	that.evictIdleLocked(time.Now())
	that.sessions[game.ID] = newSession(game)

	that.logger.Info("game created", "gameID", game.ID, "variant", variant)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (entity.Game, error) {
	var game entity.Game

	err := that.withSession(ctx, id, func(s *session) error {
		game = s.game
		return nil
	})

	return game, err
}

// MakeTurn places the human's mark at cell. In the bot variant the bot answers after the opponent delay.
func (that *GameManager) MakeTurn(ctx context.Context, id string, cell int) (entity.Game, error) {
	var game entity.Game

	err := that.withSession(ctx, id, func(s *session) error {
		game = s.game

		next, err := tictactoe.MakeTurn(s.game, humanMark(s.game), cell)
		if err != nil {
			return fmt.Errorf("failed to make turn: %w", err)
		}

		if err = that.commitLocked(ctx, s, next); err != nil {
			return err
		}

		game = next
		that.scheduleBotTurnLocked(s)

		return nil
	})

	return game, err
}

func (that *GameManager) UsePowerUp(ctx context.Context, id string, kind entity.PowerUp) (entity.Game, error) {
	var game entity.Game

	err := that.withSession(ctx, id, func(s *session) error {
		game = s.game

		next, err := tictactoe.ApplyPowerUp(s.game, kind)
		if err != nil {
			return fmt.Errorf("failed to use power-up: %w", err)
		}

		if err = that.commitLocked(ctx, s, next); err != nil {
			return err
		}

		game = next
		that.logger.Info("power-up used", "gameID", id, "kind", kind)

		return nil
	})

	return game, err
}

// Restart replaces the game with a fresh one and drops a pending bot move.
func (that *GameManager) Restart(ctx context.Context, id string) (entity.Game, error) {
	var game entity.Game

	err := that.withSession(ctx, id, func(s *session) error {
		game = s.game

		that.cancelBotTurnLocked(s)

		fresh := tictactoe.Restart(s.game)
		if err := that.commitLocked(ctx, s, fresh); err != nil {
			return err
		}

		game = fresh
		that.logger.Info("game restarted", "gameID", id)

		return nil
	})

	return game, err
}

// Leave ends the game for good: the pending bot move, subscriptions and the stored state are dropped.
func (that *GameManager) Leave(ctx context.Context, id string) error {
	that.mu.Lock()
	s, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if ok {
		s.mu.Lock()
		s.gone = true
		that.cancelBotTurnLocked(s)
		s.closeSubsLocked()
		s.mu.Unlock()
	}

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game left", "gameID", id)

	return nil
}

// Subscribe streams every later state of the game until ctx is done or the returned func is called.
func (that *GameManager) Subscribe(ctx context.Context, id string) (<-chan entity.Game, func(), error) {
	sub := newSubscriber()

	var target *session
	err := that.withSession(ctx, id, func(s *session) error {
		s.subs[sub] = struct{}{}
		target = s
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	unsubscribe := func() {
		target.mu.Lock()
		delete(target.subs, sub)
		target.mu.Unlock()
		sub.close()
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-sub.done:
		}
	}()

	return sub.ch, unsubscribe, nil
}

// Close cancels pending bot moves, closes all subscriptions and waits for background work.
func (that *GameManager) Close() {
	that.mu.Lock()
	that.closed.Store(true)
	sessions := make([]*session, 0, len(that.sessions))
	for _, s := range that.sessions {
		sessions = append(sessions, s)
	}
	that.mu.Unlock()

	for _, s := range sessions {
		s.mu.Lock()
		that.cancelBotTurnLocked(s)
		s.closeSubsLocked()
		s.mu.Unlock()
	}

	that.wg.Wait()
}

func humanMark(game entity.Game) entity.Mark {
	if game.IsWithBot() {
		return entity.HumanMark
	}
	return game.Turn
}

// withSession runs fn with the game's session locked. A session dropped while
// fn waited for its lock is looked up again.
func (that *GameManager) withSession(ctx context.Context, id string, fn func(s *session) error) error {
	for {
		s, err := that.session(ctx, id)
		if err != nil {
			return err
		}

		s.mu.Lock()
		if s.gone {
			s.mu.Unlock()
			continue
		}

		if that.closed.Load() {
			s.mu.Unlock()
			return ErrManagerClosed
		}

		s.lastActive = time.Now()
		err = fn(s)
		s.mu.Unlock()

		return err
	}
}

// session returns the live session, resuming it from the repository when needed.
func (that *GameManager) session(ctx context.Context, id string) (*session, error) {
	if that.closed.Load() {
		return nil, ErrManagerClosed
	}

	that.mu.Lock()
	s, ok := that.sessions[id]
	that.mu.Unlock()

	if ok {
		return s, nil
	}

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if _, err = game.Variant.Rules(); err != nil {
		return nil, fmt.Errorf("stored game %s: %w", id, err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed.Load() {
		return nil, ErrManagerClosed
	}

	// another caller resumed it first
	if s, ok = that.sessions[id]; ok {
		return s, nil
	}

	s = newSession(game)
	that.sessions[id] = s

	that.logger.Info("game resumed", "gameID", id)

	// the bot move may have been pending when the game was saved
	s.mu.Lock()
	that.scheduleBotTurnLocked(s)
	s.mu.Unlock()

	return s, nil
}

func (that *GameManager) commitLocked(ctx context.Context, s *session, next entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, next); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	// a move planned for the previous board must not land on this one
	that.cancelBotTurnLocked(s)

	s.game = next
	s.epoch++
	s.lastActive = time.Now()

	for sub := range s.subs {
		sub.publish(next)
	}

	if next.IsFinished() {
		that.logger.Info("game finished", "gameID", next.ID, "winner", next.Winner)
	}

	return nil
}

func (that *GameManager) scheduleBotTurnLocked(s *session) {
	game := s.game
	if that.closed.Load() || s.gone || s.cancelBot != nil ||
		!game.IsWithBot() || !game.IsOngoing() || game.Turn != entity.BotMark {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancelBot = cancel
	epoch := s.epoch

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()
		defer cancel()

		timer := time.NewTimer(that.opponentDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		that.playBotTurn(ctx, s, epoch)
	}()
}

func (that *GameManager) cancelBotTurnLocked(s *session) {
	if s.cancelBot != nil {
		s.cancelBot()
		s.cancelBot = nil
	}
}

func (that *GameManager) playBotTurn(ctx context.Context, s *session, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := that.logger.With("method", "playBotTurn", "gameID", s.game.ID)

	if s.gone || ctx.Err() != nil || s.epoch != epoch {
		log.Debug("bot turn dropped, game changed while waiting")
		return
	}

	s.cancelBot = nil

	next, err := tictactoe.MakeBotTurn(s.game, that.rnd)
	if err != nil {
		log.Error("bot failed to make turn", "error", err)
		return
	}

	if err = that.commitLocked(ctx, s, next); err != nil {
		// the board is unchanged, so the same turn is tried again after another delay
		log.Error("failed to save bot turn, retrying", "error", err)
		that.scheduleBotTurnLocked(s)
		return
	}

	log.Debug("bot made turn", "status", next.Status)
}

// evictIdleLocked drops untouched sessions from memory; they stay in the repository.
func (that *GameManager) evictIdleLocked(now time.Time) {
	for id, s := range that.sessions {
		// a busy session is not idle
		if !s.mu.TryLock() {
			continue
		}

		idle := len(s.subs) == 0 && s.cancelBot == nil && now.Sub(s.lastActive) >= that.idleTTL
		if idle {
			s.gone = true
			delete(that.sessions, id)
		}
		s.mu.Unlock()

		if idle {
			that.logger.Debug("idle game evicted", "gameID", id)
		}
	}
}
