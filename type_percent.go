package trackfolio

import (
	"fmt"
	"strconv"
)

// Percent is a rate expressed in percent units, so 1.5 means 1.5%.
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Fixed returns the bare figure with n fractional digits, no sign or
// percent mark. Used for stable tabular output.
func (p Percent) Fixed(n int) string {
	return strconv.FormatFloat(float64(p), 'f', n, 64)
}
