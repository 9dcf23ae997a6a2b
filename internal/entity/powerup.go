package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
)

type PowerUp string

const (
	BombPowerUp PowerUp = "bomb"
	SwapPowerUp PowerUp = "swap"
)

func ParsePowerUp(kind string) (PowerUp, error) {
	switch PowerUp(kind) {
	case BombPowerUp, SwapPowerUp:
		return PowerUp(kind), nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnknownPowerUp, kind)
	}
}

// PowerUpLedger tracks the single-use power-ups of a game and the cell the bomb is anchored to.
type PowerUpLedger struct {
	Bomb       bool `json:"bomb"`
	Swap       bool `json:"swap"`
	LastPlaced int  `json:"last_placed"`
}

func NewPowerUpLedger() *PowerUpLedger {
	return &PowerUpLedger{
		Bomb:       true,
		Swap:       true,
		LastPlaced: NoCell,
	}
}

func (that *PowerUpLedger) Available(kind PowerUp) bool {
	if that == nil {
		return false
	}

	switch kind {
	case BombPowerUp:
		return that.Bomb
	case SwapPowerUp:
		return that.Swap
	default:
		return false
	}
}

// Consume returns a copy of the ledger with kind marked as used.
func (that PowerUpLedger) Consume(kind PowerUp) *PowerUpLedger {
	switch kind {
	case BombPowerUp:
		that.Bomb = false
	case SwapPowerUp:
		that.Swap = false
	}
	return &that
}

// Placed returns a copy of the ledger anchored at cell.
func (that PowerUpLedger) Placed(cell int) *PowerUpLedger {
	that.LastPlaced = cell
	return &that
}
