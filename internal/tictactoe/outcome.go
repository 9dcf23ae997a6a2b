package tictactoe

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-variants/internal/entity"
)

type geometry struct {
	side      int
	runLength int
}

var lineCache sync.Map // geometry -> [][]int

// Lines returns every window of runLength consecutive cells on a side x side board.
// Windows come in scan order: rows, columns, then down-right and down-left diagonals.
func Lines(side, runLength int) [][]int {
	key := geometry{side: side, runLength: runLength}
	if cached, ok := lineCache.Load(key); ok {
		return cached.([][]int) //nolint: forcetypeassert // only this package stores values
	}

	lines := buildLines(side, runLength)
	lineCache.Store(key, lines)

	return lines
}

func buildLines(side, runLength int) [][]int {
	if side <= 0 || runLength <= 0 || runLength > side {
		return nil
	}

	var lines [][]int

	// rows
	for row := 0; row < side; row++ {
		lines = appendWindows(lines, walk(row*side, 1, side), runLength)
	}

	// columns
	for col := 0; col < side; col++ {
		lines = appendWindows(lines, walk(col, side, side), runLength)
	}

	// down-right diagonals, starting on the top row and then on the left column
	for col := 0; col < side; col++ {
		lines = appendWindows(lines, walk(col, side+1, side-col), runLength)
	}
	for row := 1; row < side; row++ {
		lines = appendWindows(lines, walk(row*side, side+1, side-row), runLength)
	}

	// down-left diagonals, starting on the top row and then on the right column
	for col := side - 1; col >= 0; col-- {
		lines = appendWindows(lines, walk(col, side-1, col+1), runLength)
	}
	for row := 1; row < side; row++ {
		lines = appendWindows(lines, walk(row*side+side-1, side-1, side-row), runLength)
	}

	return lines
}

func walk(start, step, length int) []int {
	cells := make([]int, length)
	for i := range cells {
		cells[i] = start + i*step
	}
	return cells
}

func appendWindows(lines [][]int, line []int, runLength int) [][]int {
	for start := 0; start+runLength <= len(line); start++ {
		lines = append(lines, line[start:start+runLength])
	}
	return lines
}

// DetectOutcome reports the first winning window in scan order, a draw on a full board, or ongoing.
func DetectOutcome(board entity.Board, runLength int) entity.Outcome {
	for _, line := range Lines(board.Side(), runLength) {
		if mark := lineOwner(board, line); mark != entity.EmptyCell {
			return entity.WinOutcome(mark)
		}
	}

	// the game will continue until all the squares are full
	if board.IsFull() {
		return entity.DrawOutcome()
	}

	return entity.OngoingOutcome()
}

func lineOwner(board entity.Board, line []int) entity.Mark {
	first := board.At(line[0])
	if first == entity.EmptyCell {
		return entity.EmptyCell
	}

	for _, cell := range line[1:] {
		if board.At(cell) != first {
			return entity.EmptyCell
		}
	}

	return first
}
