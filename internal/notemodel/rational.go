package notemodel

import "math/big"

// FormatRational serializes an exact quarter-length canonically: a bare
// integer string when the denominator is 1 ("num"), otherwise "num/den"
// in lowest terms. Naive float equality is not sufficient for stem
// identity, so rhythm stemmers must compare and print through this
// function rather than r.String() or a float conversion.
func FormatRational(r *big.Rat) string {
	return r.RatString()
}
