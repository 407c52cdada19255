package analytics

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// roundedPercent returns round(100 * part / whole), rounding halves away from zero.
// The arithmetic is done in decimal so results such as 12.5 are never nudged by
// binary floating point error and 100*part cannot overflow. Results outside the
// int64 range saturate. A zero whole returns 0; callers guard against it.
func roundedPercent(part, whole int64) int64 {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp

	var scaled, quotient, rounded apd.Decimal
	_, err := ctx.Mul(&scaled, apd.New(part, 0), apd.New(100, 0))
	if err == nil {
		_, err = ctx.Quo(&quotient, &scaled, apd.New(whole, 0))
	}
	if err == nil {
		_, err = ctx.RoundToIntegralValue(&rounded, &quotient)
	}
	if err != nil {
		// 34 digits hold any int64 product exactly, so only division by zero lands here.
		return 0
	}

	result, err := rounded.Int64()
	if err != nil {
		if rounded.Negative {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return result
}
