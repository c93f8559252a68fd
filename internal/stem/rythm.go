package stem

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/axiomabsolute/firms-go/internal/notemodel"
)

func windowMaxQuarterLength(notes []*notemodel.GeneralNote) *big.Rat {
	max := big.NewRat(0, 1)
	for _, n := range notes {
		if n.QuarterLength.Cmp(max) > 0 {
			max = n.QuarterLength
		}
	}
	return max
}

// formatNormalized formats ql/max as a decimal string, always showing at
// least one fractional digit (e.g. "1.0", not "1"). A zero max divides by
// 1.0 instead.
func formatNormalized(ql, max *big.Rat) string {
	divisor := max
	if max.Sign() == 0 {
		divisor = big.NewRat(1, 1)
	}
	ratio := new(big.Rat).Quo(ql, divisor)
	f, _ := ratio.Float64()
	formatted := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}
