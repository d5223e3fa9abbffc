package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Prices must fit a Decimal128 exactly and stay cheap to format.
const (
	MaxPriceDigits   = 34
	MaxPriceExponent = 28
)

var maxPriceCoefficient = new(big.Int).Sub(
	new(big.Int).Exp(big.NewInt(10), big.NewInt(MaxPriceDigits), nil),
	big.NewInt(1),
)

// CheckPrice returns ErrInvalidPrice when d has more than MaxPriceDigits significant
// digits or an exponent outside ±MaxPriceExponent. It never formats d.
func CheckPrice(d decimal.Decimal) error {
	if e := d.Exponent(); e < -MaxPriceExponent || e > MaxPriceExponent {
		return ErrInvalidPrice
	}
	if d.Coefficient().CmpAbs(maxPriceCoefficient) > 0 {
		return ErrInvalidPrice
	}
	return nil
}
