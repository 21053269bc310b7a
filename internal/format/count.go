package format

import (
	"fmt"
	"strings"
)

// FormatCount renders a counter compactly: "999", "1.2k", "3.4m".
func FormatCount(n int) string {
	switch {
	case n < 0:
		return "-" + FormatCount(-n)
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000)) + "k"
	default:
		return trimZero(fmt.Sprintf("%.1f", float64(n)/1000000)) + "m"
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
