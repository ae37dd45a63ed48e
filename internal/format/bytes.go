package format

import (
	"strconv"
	"strings"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Bytes renders a size with 1024-based units and at most one decimal.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	value := float64(n)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	s := strconv.FormatFloat(value, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	return s + " " + byteUnits[unit]
}
