package utils

import (
	"strconv"
	"strings"
)

const sizeStep = 1024

var sizeUnits = [...]string{"B", "KiB", "MiB", "GiB", "TiB"}

// FormatFileSize renders a byte count with a binary unit, e.g. "1.5 KiB".
// Values below ten units keep one decimal.
func FormatFileSize(bytes int64) string {
	if bytes < sizeStep {
		return strconv.FormatInt(max(bytes, 0), 10) + " " + sizeUnits[0]
	}
	value := float64(bytes)
	unit := 0
	for value >= sizeStep && unit < len(sizeUnits)-1 {
		value /= sizeStep
		unit++
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0")
	return formatted + " " + sizeUnits[unit]
}
