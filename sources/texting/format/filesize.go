package format

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var units = []string{"B", "KB", "MB", "GB"}

// FileSize renders a byte count for user-facing file cards, one decimal
// place, largest fitting unit.
func FileSize(bytes int64) string {
	size := decimal.NewFromInt(bytes)
	kilo := decimal.NewFromInt(1024)

	unit := 0
	for unit < len(units)-1 && size.GreaterThanOrEqual(kilo) {
		size = size.Div(kilo)
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%s %s", size.String(), units[unit])
	}
	return fmt.Sprintf("%s %s", size.Round(1).String(), units[unit])
}
