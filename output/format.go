package output

import (
	"strconv"
	"strings"
)

// FormatNumber adds thousand separators to numbers
func FormatNumber(n int) string {
	str := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
