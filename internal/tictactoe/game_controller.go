package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

// NewGame creates an empty game of the variant with X to move.
func NewGame(id string, variant entity.Variant) (entity.Game, error) {
	rules, err := variant.Rules()
	if err != nil {
		return entity.Game{}, err
	}

	game := entity.Game{
		ID:      id,
		Variant: variant,
		Board:   entity.NewBoard(rules.Side),
		Turn:    entity.PlayerX,
		Status:  entity.StatusOngoing,
	}

	if rules.PowerUps {
		game.PowerUps = entity.NewPowerUpLedger()
	}

	return game, nil
}

// Restart discards the game and returns a fresh one with the same id and variant.
func Restart(game entity.Game) entity.Game {
	fresh, err := NewGame(game.ID, game.Variant)
	if err != nil {
		panic(fmt.Errorf("restart of game %s: %w", game.ID, err))
	}
	return fresh
}

func CurrentOutcome(game entity.Game) entity.Outcome {
	return game.Outcome()
}

// ValidateMove checks if mark may be placed at cell.
func ValidateMove(game entity.Game, mark entity.Mark, cell int) error {
	if err := game.ConfirmOngoingState(); err != nil {
		return err
	}

	if !game.Board.InBounds(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if game.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if !game.Board.IsEmpty(cell) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return nil
}

// MakeTurn places mark at cell and returns the next state. On error the game is returned unchanged.
func MakeTurn(game entity.Game, mark entity.Mark, cell int) (entity.Game, error) {
	if err := ValidateMove(game, mark, cell); err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	board, err := game.Board.PlaceMark(cell, mark)
	if err != nil {
		return game, fmt.Errorf("invalid turn: %w", err)
	}

	next := game
	next.Board = board
	if next.PowerUps != nil {
		next.PowerUps = next.PowerUps.Placed(cell)
	}

	return advance(next, true), nil
}

// advance settles the game after its board changed. Moves pass the turn, power-ups do not.
func advance(game entity.Game, passTurn bool) entity.Game {
	switch outcome := DetectOutcome(game.Board, game.Rules().RunLength); {
	case outcome.IsOngoing():
		game.Status = entity.StatusOngoing
		game.Winner = entity.EmptyCell
		if passTurn {
			game.Turn = game.Turn.Opponent()
		}
	default:
		game.Status = entity.StatusFinished
		game.Winner = outcome.Winner
		game.Turn = entity.EmptyCell
	}

	return game
}
