package engine

import "github.com/aresgrid/ares-engine/internal/hex"

// MaxValuableAmount caps any single pile.
const MaxValuableAmount = 5000

// Valuable is a depletable resource pile. The engine owns all piles
// and arbitrates mining; a pile at zero is swept and destroyed at the
// end of the tick.
type Valuable struct {
	ID     int64
	Coord  hex.Coord
	Kind   string
	Amount int32
}

// Mine extracts up to amount, returning what actually came out.
func (v *Valuable) Mine(amount int32) int32 {
	if v.Amount < amount {
		amount = v.Amount
	}
	v.Amount -= amount
	return amount
}

// AddToAmount grows the pile, clamped to the cap. Explosion drops
// land here.
func (v *Valuable) AddToAmount(amount int32) {
	v.Amount += amount
	if v.Amount > MaxValuableAmount {
		v.Amount = MaxValuableAmount
	}
}
