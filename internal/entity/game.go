package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Outcome is the result of a board: ongoing, won by a mark, or drawn.
type Outcome struct {
	Status string `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
}

func OngoingOutcome() Outcome { return Outcome{Status: StatusOngoing} }

func WinOutcome(mark Mark) Outcome { return Outcome{Status: StatusFinished, Winner: mark} }

func DrawOutcome() Outcome { return Outcome{Status: StatusFinished, Winner: PlayerTie} }

func (that Outcome) IsOngoing() bool { return that.Status == StatusOngoing }

func (that Outcome) IsDraw() bool { return that.Status == StatusFinished && that.Winner == PlayerTie }

func (that Outcome) IsWin() bool {
	return that.Status == StatusFinished && (that.Winner == PlayerX || that.Winner == PlayerO)
}

type Game struct {
	ID       string         `json:"id"`
	Variant  Variant        `json:"variant"`
	Board    Board          `json:"board"`
	Winner   Mark           `json:"winner"`
	Status   string         `json:"status"`
	Turn     Mark           `json:"player_turn"`
	PowerUps *PowerUpLedger `json:"power_ups,omitempty"`
}

func (that Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that Game) Outcome() Outcome {
	if that.IsFinished() {
		return Outcome{Status: StatusFinished, Winner: that.Winner}
	}
	return OngoingOutcome()
}

func (that Game) Rules() Rules {
	return that.Variant.MustRules()
}

func (that Game) IsWithBot() bool {
	return that.Rules().Opponent
}

// CanUse reports whether the power-up may be used right now.
func (that Game) CanUse(kind PowerUp) bool {
	if !that.IsOngoing() || !that.PowerUps.Available(kind) {
		return false
	}

	switch kind {
	case BombPowerUp:
		return that.PowerUps.LastPlaced != NoCell
	case SwapPowerUp:
		return len(that.Board.OccupiedCells()) >= 2
	default:
		return false
	}
}

// StatusText is the headline shown above the board.
func (that Game) StatusText() string {
	switch {
	case that.IsFinished() && that.Winner == PlayerTie:
		return "It's a Draw!"
	case that.IsFinished():
		return fmt.Sprintf("Winner: %s", that.Winner)
	default:
		return fmt.Sprintf("Next player: %s", that.Turn)
	}
}

// GameView is the game as clients see it, with the headline and power-up buttons precomputed.
type GameView struct {
	Game
	StatusText string `json:"status_text"`
	CanBomb    bool   `json:"can_bomb"`
	CanSwap    bool   `json:"can_swap"`
}

func (that Game) View() GameView {
	return GameView{
		Game:       that,
		StatusText: that.StatusText(),
		CanBomb:    that.CanUse(BombPowerUp),
		CanSwap:    that.CanUse(SwapPowerUp),
	}
}
