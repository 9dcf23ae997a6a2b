package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-variants/internal/apperror"
)

type Variant string

const (
	ClassicVariant   Variant = "classic"
	ExclusiveVariant Variant = "exclusive"
	BotVariant       Variant = "bot"
)

// In the bot variant the human always plays X and moves first.
const (
	HumanMark = PlayerX
	BotMark   = PlayerO
)

// Rules describe the geometry and extras of a variant.
type Rules struct {
	Side      int
	RunLength int
	PowerUps  bool
	Opponent  bool
}

var variantRules = map[Variant]Rules{
	ClassicVariant:   {Side: 3, RunLength: 3},
	ExclusiveVariant: {Side: 5, RunLength: 4, PowerUps: true},
	BotVariant:       {Side: 3, RunLength: 3, Opponent: true},
}

func (that Variant) Rules() (Rules, error) {
	rules, ok := variantRules[that]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %q", apperror.ErrUnknownVariant, that)
	}
	return rules, nil
}

// MustRules is Rules for variants that were already validated.
func (that Variant) MustRules() Rules {
	rules, err := that.Rules()
	if err != nil {
		panic(err)
	}
	return rules
}
