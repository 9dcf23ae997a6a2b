package apperror

import "errors"

var (
	ErrGameFinished       = errors.New("game is already finished")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrInvalidCell        = errors.New("invalid cell index")
	ErrPowerUpUnavailable = errors.New("power-up is not available")
	ErrUnknownPowerUp     = errors.New("unknown power-up")
	ErrUnknownVariant     = errors.New("unknown game variant")
	ErrNoAvailableMoves   = errors.New("no available moves")
	ErrGameNotFound       = errors.New("game not found")
)

// Reason codes sent to clients alongside a rejected request.
const (
	ReasonGameFinished       = "game_finished"
	ReasonNotYourTurn        = "not_your_turn"
	ReasonCellOccupied       = "cell_occupied"
	ReasonInvalidCell        = "invalid_cell"
	ReasonPowerUpUnavailable = "power_up_unavailable"
	ReasonUnknownPowerUp     = "unknown_power_up"
	ReasonUnknownVariant     = "unknown_variant"
	ReasonGameNotFound       = "game_not_found"
	ReasonInternal           = "internal"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrGameFinished, ReasonGameFinished},
	{ErrNotYourTurn, ReasonNotYourTurn},
	{ErrCellOccupied, ReasonCellOccupied},
	{ErrInvalidCell, ReasonInvalidCell},
	{ErrPowerUpUnavailable, ReasonPowerUpUnavailable},
	{ErrUnknownPowerUp, ReasonUnknownPowerUp},
	{ErrUnknownVariant, ReasonUnknownVariant},
	{ErrGameNotFound, ReasonGameNotFound},
}

// Reason returns the reason code of the first known error in err's chain.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}

	return ReasonInternal
}

// IsRejection reports whether err is an expected, caller-visible rejection
// rather than an infrastructure failure.
func IsRejection(err error) bool {
	switch Reason(err) {
	case ReasonInternal, ReasonGameNotFound:
		return false
	default:
		return true
	}
}
