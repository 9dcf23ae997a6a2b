package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
)

type Mark string

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	PlayerTie Mark = "-"

	EmptyCell Mark = ""
)

// NoCell marks the absence of a cell index.
const NoCell = -1

var ErrMalformedBoard = errors.New("malformed board")

// Opponent returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Board is an immutable square grid stored row-major: index i is row i/side, column i%side.
// Every change produces a new snapshot.
type Board struct {
	side  int
	cells []Mark
}

// NewBoard creates an empty board with side*side cells.
func NewBoard(side int) Board {
	if side <= 0 {
		panic(fmt.Sprintf("board side must be positive, got %d", side))
	}

	return Board{side: side, cells: make([]Mark, side*side)}
}

// MustBoard creates a board from explicit cells and panics when they do not form a side*side grid.
func MustBoard(side int, cells []Mark) Board {
	if err := checkShape(side, len(cells)); err != nil {
		panic(err)
	}

	return Board{side: side, cells: slices.Clone(cells)}
}

func checkShape(side, length int) error {
	if side <= 0 || length != side*side {
		return fmt.Errorf("%w: side %d with %d cells", ErrMalformedBoard, side, length)
	}
	return nil
}

func (that Board) Side() int { return that.side }

func (that Board) Len() int { return len(that.cells) }

func (that Board) At(cell int) Mark { return that.cells[cell] }

// Cells returns a copy of the cells.
func (that Board) Cells() []Mark { return slices.Clone(that.cells) }

func (that Board) InBounds(cell int) bool {
	return cell >= 0 && cell < len(that.cells)
}

func (that Board) IsEmpty(cell int) bool {
	return that.cells[cell] == EmptyCell
}

func (that Board) IsFull() bool {
	return !slices.Contains(that.cells, EmptyCell)
}

// EmptyCells returns the indices of empty cells in ascending order.
func (that Board) EmptyCells() []int {
	return that.collect(func(m Mark) bool { return m == EmptyCell })
}

// OccupiedCells returns the indices of marked cells in ascending order.
func (that Board) OccupiedCells() []int {
	return that.collect(func(m Mark) bool { return m != EmptyCell })
}

func (that Board) collect(match func(Mark) bool) []int {
	indices := make([]int, 0, len(that.cells))
	for i, cell := range that.cells {
		if match(cell) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (that Board) Coords(cell int) (int, int) {
	return cell / that.side, cell % that.side
}

func (that Board) Index(row, col int) int {
	return row*that.side + col
}

// Neighborhood returns the cells of the 3x3 square centred on cell, clipped to the board edges.
func (that Board) Neighborhood(cell int) []int {
	row, col := that.Coords(cell)

	cells := make([]int, 0, 9)
	for r := max(row-1, 0); r <= min(row+1, that.side-1); r++ {
		for c := max(col-1, 0); c <= min(col+1, that.side-1); c++ {
			cells = append(cells, that.Index(r, c))
		}
	}

	return cells
}

// PlaceMark returns a new board with mark at cell.
func (that Board) PlaceMark(cell int, mark Mark) (Board, error) {
	if !that.InBounds(cell) {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if !that.IsEmpty(cell) {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	return that.WithMark(cell, mark), nil
}

// WithMark returns a new board with cell set to mark without any checks.
func (that Board) WithMark(cell int, mark Mark) Board {
	next := that.clone()
	next.cells[cell] = mark
	return next
}

// Clear returns a new board with the given cells emptied.
func (that Board) Clear(cells ...int) Board {
	next := that.clone()
	for _, cell := range cells {
		next.cells[cell] = EmptyCell
	}
	return next
}

// Swap returns a new board with the contents of a and b exchanged.
func (that Board) Swap(a, b int) Board {
	next := that.clone()
	next.cells[a], next.cells[b] = next.cells[b], next.cells[a]
	return next
}

func (that Board) clone() Board {
	return Board{side: that.side, cells: slices.Clone(that.cells)}
}

type boardJSON struct {
	Side  int    `json:"side"`
	Cells []Mark `json:"cells"`
}

func (that Board) MarshalJSON() ([]byte, error) {
	cells := that.cells
	if cells == nil {
		cells = []Mark{}
	}
	return json.Marshal(boardJSON{Side: that.side, Cells: cells})
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("could not unmarshal board: %w", err)
	}

	if err := checkShape(raw.Side, len(raw.Cells)); err != nil {
		return err
	}

	for i, cell := range raw.Cells {
		if cell != EmptyCell && cell != PlayerX && cell != PlayerO {
			return fmt.Errorf("%w: cell %d holds %q", ErrMalformedBoard, i, cell)
		}
	}

	that.side = raw.Side
	that.cells = raw.Cells

	return nil
}
