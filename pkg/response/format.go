package response

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatMoney renders an amount as US dollars with cents and thousands
// separators, e.g. 1234.5 -> "$1,234.50".
func FormatMoney(amount float64) string {
	sign := ""
	if amount <= -0.005 {
		sign = "-"
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", math.Abs(amount))
}
