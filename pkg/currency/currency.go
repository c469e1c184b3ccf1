// Package currency formats fare amounts for display. Fares travel as
// integer paise; display uses rupees with Indian digit grouping.
package currency

import (
	"fmt"
	"strings"
)

// FormatPaise renders paise as rupees, e.g. 12345678 -> "₹1,23,456.78".
func FormatPaise(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := paise / 100
	fraction := paise % 100
	return fmt.Sprintf("%s₹%s.%02d", sign, groupIndian(rupees), fraction)
}

// FormatPaiseWhole renders paise as whole rupees, rounding half up,
// e.g. 12345678 -> "₹1,23,457".
func FormatPaiseWhole(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	rupees := (paise + 50) / 100
	return sign + "₹" + groupIndian(rupees)
}

// groupIndian applies lakh/crore grouping: the last three digits form one
// group, every two digits after that another.
func groupIndian(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
