package core

import (
	"strings"

	"golang.org/x/text/currency"
)

// NormalizeCurrency returns the canonical ISO 4217 code for a provider
// currency string. Unrecognized codes are returned trimmed and upper-cased.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return unit.String()
}
