package utils

import (
	"fmt"
	"strconv"

	"golang.org/x/exp/constraints"
)

var humanUnits = []struct {
	size   uint64
	suffix string
}{
	{1000000000, "B"},
	{1000000, "M"},
	{1000, "K"},
}

// HumanInteger returns the number in a short human readable format like "1.5 K".
// A single decimal is only shown for values below 10 of a unit
func HumanInteger[N constraints.Integer](input N) string {
	if input < 0 {
		return "-" + HumanInteger(uint64(-int64(input)))
	}
	num := uint64(input)
	for _, unit := range humanUnits {
		if num < unit.size {
			continue
		}
		if num < 10*unit.size && num%unit.size != 0 {
			tenths := num * 10 / unit.size
			return fmt.Sprintf("%d.%d %s", tenths/10, tenths%10, unit.suffix)
		}
		return fmt.Sprintf("%d %s", num/unit.size, unit.suffix)
	}
	return strconv.FormatUint(num, 10)
}
