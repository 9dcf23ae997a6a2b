package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

// Randomizer picks the fallback move. *rand.Rand satisfies it.
type Randomizer interface {
	Intn(n int) int
}

// ChooseMove picks a cell for self: a winning cell, else a cell that blocks rival, else a random empty cell.
// It is greedy on purpose and looks only one move ahead.
func ChooseMove(board entity.Board, runLength int, self, rival entity.Mark, rnd Randomizer) (int, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.NoCell, apperror.ErrNoAvailableMoves
	}

	if cell, ok := firstWinningCell(board, runLength, self, availableCells); ok {
		return cell, nil
	}

	if cell, ok := firstWinningCell(board, runLength, rival, availableCells); ok {
		return cell, nil
	}

	return availableCells[rnd.Intn(len(availableCells))], nil
}

func firstWinningCell(board entity.Board, runLength int, mark entity.Mark, cells []int) (int, bool) {
	for _, cell := range cells {
		if DetectOutcome(board.WithMark(cell, mark), runLength) == entity.WinOutcome(mark) {
			return cell, true
		}
	}
	return entity.NoCell, false
}

// MakeBotTurn lets the opponent of the bot variant play its move.
func MakeBotTurn(game entity.Game, rnd Randomizer) (entity.Game, error) {
	if !game.IsWithBot() {
		return game, fmt.Errorf("game %s has no bot", game.ID)
	}

	if err := game.ConfirmOngoingState(); err != nil {
		return game, fmt.Errorf("bot failed to make turn: %w", err)
	}

	cell, err := ChooseMove(game.Board, game.Rules().RunLength, entity.BotMark, entity.HumanMark, rnd)
	if err != nil {
		return game, fmt.Errorf("bot failed to choose turn: %w", err)
	}

	next, err := MakeTurn(game, entity.BotMark, cell)
	if err != nil {
		return game, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return next, nil
}
