package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

// ApplyPowerUp uses a power-up of the exclusive variant. The turn does not pass.
func ApplyPowerUp(game entity.Game, kind entity.PowerUp) (entity.Game, error) {
	switch kind {
	case entity.BombPowerUp:
		return UseBomb(game)
	case entity.SwapPowerUp:
		return UseSwap(game)
	default:
		return game, fmt.Errorf("invalid power-up: %w: %q", apperror.ErrUnknownPowerUp, kind)
	}
}

// UseBomb empties the 3x3 area around the last placed mark.
func UseBomb(game entity.Game) (entity.Game, error) {
	if err := confirmPowerUp(game, entity.BombPowerUp); err != nil {
		return game, err
	}

	anchor := game.PowerUps.LastPlaced
	if anchor == entity.NoCell {
		return game, fmt.Errorf("invalid power-up: %w: no mark placed yet", apperror.ErrPowerUpUnavailable)
	}

	next := game
	next.Board = game.Board.Clear(game.Board.Neighborhood(anchor)...)
	next.PowerUps = game.PowerUps.Consume(entity.BombPowerUp)

	return advance(next, false), nil
}

// UseSwap exchanges the first two occupied cells in index order.
// With fewer than two marks on the board the charge is kept.
func UseSwap(game entity.Game) (entity.Game, error) {
	if err := confirmPowerUp(game, entity.SwapPowerUp); err != nil {
		return game, err
	}

	occupied := game.Board.OccupiedCells()
	if len(occupied) < 2 {
		return game, fmt.Errorf("invalid power-up: %w: need two marks, have %d", apperror.ErrPowerUpUnavailable, len(occupied))
	}

	next := game
	next.Board = game.Board.Swap(occupied[0], occupied[1])
	next.PowerUps = game.PowerUps.Consume(entity.SwapPowerUp)

	return advance(next, false), nil
}

func confirmPowerUp(game entity.Game, kind entity.PowerUp) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return fmt.Errorf("invalid power-up: %w", err)
	}

	if !game.PowerUps.Available(kind) {
		return fmt.Errorf("invalid power-up: %w: %s", apperror.ErrPowerUpUnavailable, kind)
	}

	return nil
}
