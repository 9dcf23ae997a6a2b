package tictactoe

import (
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPick always picks the same position among the candidates.
type fixedPick int

func (that fixedPick) Intn(n int) int { return int(that) % n }

func TestChooseMove(t *testing.T) {
	t.Run("Blocks the open row of the human", func(t *testing.T) {
		// Given: X on 0 and 1, O in the centre
		board := entity.MustBoard(3, []entity.Mark{x, x, e, e, o, e, e, e, e})

		// When: the bot chooses its move
		cell, err := ChooseMove(board, 3, o, x, fixedPick(0))

		// Then: it takes cell 2
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Winning beats blocking", func(t *testing.T) {
		// Given: X threatens 2 while O can complete the middle row at 5
		board := entity.MustBoard(3, []entity.Mark{x, x, e, o, o, e, x, e, e})

		// When: the bot chooses its move
		cell, err := ChooseMove(board, 3, o, x, fixedPick(0))

		// Then: it wins instead of blocking
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("First winning cell in index order", func(t *testing.T) {
		// Given: O can win on 2 (top row) and on 6 (left column)
		board := entity.MustBoard(3, []entity.Mark{o, o, e, o, x, x, e, x, e})

		cell, err := ChooseMove(board, 3, o, x, fixedPick(0))

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("First blocking cell in index order", func(t *testing.T) {
		// Given: X threatens 2 and 6, O has nothing
		board := entity.MustBoard(3, []entity.Mark{x, x, e, x, o, e, e, e, e})

		cell, err := ChooseMove(board, 3, o, x, fixedPick(0))

		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Random fallback picks an empty cell", func(t *testing.T) {
		// Given: a board without threats
		board := entity.MustBoard(3, []entity.Mark{x, e, e, e, o, e, e, e, e})
		rnd := rand.New(rand.NewSource(42)) //nolint: gosec // it's ok

		for i := 0; i < 50; i++ {
			// When: the bot has to guess
			cell, err := ChooseMove(board, 3, o, x, rnd)

			// Then: the guess is always one of the empty cells
			require.NoError(t, err)
			assert.Contains(t, board.EmptyCells(), cell)
		}
	})

	t.Run("Random fallback uses the randomizer over empty cells", func(t *testing.T) {
		board := entity.MustBoard(3, []entity.Mark{x, e, e, e, o, e, e, e, e})

		cell, err := ChooseMove(board, 3, o, x, fixedPick(3))

		require.NoError(t, err)
		assert.Equal(t, board.EmptyCells()[3], cell)
	})

	t.Run("Full board", func(t *testing.T) {
		board := entity.MustBoard(3, []entity.Mark{x, o, x, o, x, o, o, x, o})

		_, err := ChooseMove(board, 3, o, x, fixedPick(0))

		assert.ErrorIs(t, err, apperror.ErrNoAvailableMoves)
	})
}

func TestMakeBotTurn(t *testing.T) {
	t.Run("Bot answers the human", func(t *testing.T) {
		// Given: a bot game where the human opened with two in a row
		game, err := NewGame("bot", entity.BotVariant)
		require.NoError(t, err)
		game, err = MakeTurn(game, entity.HumanMark, 0)
		require.NoError(t, err)
		game.Board = game.Board.WithMark(4, o).WithMark(1, x)

		// When: the bot plays
		next, err := MakeBotTurn(game, fixedPick(0))
		require.NoError(t, err)

		// Then: it blocked and handed the turn back
		assert.Equal(t, o, next.Board.At(2))
		assert.Equal(t, entity.HumanMark, next.Turn)
	})

	t.Run("Bot cannot move on the human's turn", func(t *testing.T) {
		game, err := NewGame("bot", entity.BotVariant)
		require.NoError(t, err)

		_, err = MakeBotTurn(game, fixedPick(0))

		assert.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Classic game has no bot", func(t *testing.T) {
		game, err := NewGame("classic", entity.ClassicVariant)
		require.NoError(t, err)

		_, err = MakeBotTurn(game, fixedPick(0))

		assert.Error(t, err)
	})
}
