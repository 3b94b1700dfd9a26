package money

import "math"

// Round2 rounds to two decimal places, the precision every stored and
// displayed price uses. Discount math is defined in terms of this:
// discountPrice == Round2(originalPrice * (1 - percent/100)).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
