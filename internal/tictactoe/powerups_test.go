package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExclusiveGame(t *testing.T, cells map[int]entity.Mark) entity.Game {
	t.Helper()

	game, err := NewGame("ex", entity.ExclusiveVariant)
	require.NoError(t, err)

	for cell, mark := range cells {
		game.Board = game.Board.WithMark(cell, mark)
	}

	return game
}

func fullMarks(side int, mark entity.Mark) map[int]entity.Mark {
	cells := make(map[int]entity.Mark, side*side)
	for i := 0; i < side*side; i++ {
		cells[i] = mark
	}
	return cells
}

func TestUseBomb(t *testing.T) {
	t.Run("Clears the 3x3 area around the centre", func(t *testing.T) {
		// Given: a board full of marks with the last mark placed in the centre
		game := newExclusiveGame(t, fullMarks(5, x))
		game.Status = entity.StatusOngoing
		game.PowerUps = game.PowerUps.Placed(12)

		// When: using the bomb
		next, err := ApplyPowerUp(game, entity.BombPowerUp)
		require.NoError(t, err)

		// Then: exactly the neighbourhood is empty
		assert.Equal(t, []int{6, 7, 8, 11, 12, 13, 16, 17, 18}, next.Board.EmptyCells())
		assert.False(t, next.PowerUps.Available(entity.BombPowerUp))
		assert.True(t, next.PowerUps.Available(entity.SwapPowerUp))
	})

	t.Run("Corner anchor clears only cells on the board", func(t *testing.T) {
		game := newExclusiveGame(t, fullMarks(5, o))
		game.PowerUps = game.PowerUps.Placed(0)

		next, err := UseBomb(game)
		require.NoError(t, err)

		assert.Equal(t, []int{0, 1, 5, 6}, next.Board.EmptyCells())
		assert.Equal(t, 25, next.Board.Len())
	})

	t.Run("Does not pass the turn", func(t *testing.T) {
		// Given: X played 7, so it is O's turn
		game := newExclusiveGame(t, nil)
		game, err := MakeTurn(game, x, 7)
		require.NoError(t, err)
		require.Equal(t, o, game.Turn)

		// When: O uses the bomb
		next, err := UseBomb(game)
		require.NoError(t, err)

		// Then: it is still O's turn and X's mark is gone
		assert.Equal(t, o, next.Turn)
		assert.Empty(t, next.Board.OccupiedCells())
	})

	t.Run("Empty neighbourhood still consumes the charge", func(t *testing.T) {
		game := newExclusiveGame(t, map[int]entity.Mark{24: x})
		game.PowerUps = game.PowerUps.Placed(0)

		next, err := UseBomb(game)
		require.NoError(t, err)

		assert.False(t, next.PowerUps.Available(entity.BombPowerUp))
		assert.Equal(t, []int{24}, next.Board.OccupiedCells())
	})

	t.Run("Rejected before any mark was placed", func(t *testing.T) {
		game := newExclusiveGame(t, nil)

		next, err := UseBomb(game)

		require.ErrorIs(t, err, apperror.ErrPowerUpUnavailable)
		assert.Equal(t, game, next)
	})

	t.Run("Rejected the second time", func(t *testing.T) {
		game := newExclusiveGame(t, map[int]entity.Mark{3: x})
		game.PowerUps = game.PowerUps.Placed(3)

		used, err := UseBomb(game)
		require.NoError(t, err)

		again, err := UseBomb(used)
		require.ErrorIs(t, err, apperror.ErrPowerUpUnavailable)
		assert.Equal(t, used, again)
	})
}

func TestUseSwap(t *testing.T) {
	t.Run("Swaps the first two occupied cells", func(t *testing.T) {
		// Given: marks on 2, 7 and 9
		game := newExclusiveGame(t, map[int]entity.Mark{2: x, 7: o, 9: x})

		// When: using swap
		next, err := ApplyPowerUp(game, entity.SwapPowerUp)
		require.NoError(t, err)

		// Then: 2 and 7 are exchanged, 9 is untouched
		assert.Equal(t, o, next.Board.At(2))
		assert.Equal(t, x, next.Board.At(7))
		assert.Equal(t, x, next.Board.At(9))
		assert.False(t, next.PowerUps.Available(entity.SwapPowerUp))
		assert.Equal(t, game.Turn, next.Turn)
	})

	t.Run("Rejected with fewer than two marks and keeps the charge", func(t *testing.T) {
		game := newExclusiveGame(t, map[int]entity.Mark{4: x})

		next, err := UseSwap(game)

		require.ErrorIs(t, err, apperror.ErrPowerUpUnavailable)
		assert.Equal(t, game, next)
		assert.True(t, next.PowerUps.Available(entity.SwapPowerUp))
	})

	t.Run("Swap can complete a line and finish the game", func(t *testing.T) {
		// Given: O in the corner and X on 5, 6, 12 and 18
		game := newExclusiveGame(t, map[int]entity.Mark{0: o, 5: x, 6: x, 12: x, 18: x})
		require.True(t, game.IsOngoing())

		// When: swap exchanges cells 0 and 5
		next, err := UseSwap(game)
		require.NoError(t, err)

		// Then: X owns the diagonal 0, 6, 12, 18 and wins
		assert.Equal(t, x, next.Board.At(0))
		assert.Equal(t, o, next.Board.At(5))
		assert.Equal(t, entity.WinOutcome(x), CurrentOutcome(next))
		assert.Equal(t, entity.EmptyCell, next.Turn)
	})
}

func TestApplyPowerUp(t *testing.T) {
	t.Run("Classic game has no power-ups", func(t *testing.T) {
		game, err := NewGame("c", entity.ClassicVariant)
		require.NoError(t, err)
		game.Board = game.Board.WithMark(0, x).WithMark(1, o)

		_, err = ApplyPowerUp(game, entity.SwapPowerUp)

		assert.ErrorIs(t, err, apperror.ErrPowerUpUnavailable)
	})

	t.Run("Unknown power-up", func(t *testing.T) {
		game := newExclusiveGame(t, nil)

		_, err := ApplyPowerUp(game, "freeze")

		assert.ErrorIs(t, err, apperror.ErrUnknownPowerUp)
	})

	t.Run("Finished game rejects power-ups", func(t *testing.T) {
		game := newExclusiveGame(t, map[int]entity.Mark{0: x, 1: x, 2: x, 3: x})
		game.Status = entity.StatusFinished
		game.Winner = x

		_, err := ApplyPowerUp(game, entity.SwapPowerUp)

		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})
}
