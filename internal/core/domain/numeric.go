// internal/core/domain/numeric.go
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseQuantity parses a stock quantity as the ERP emits it. The remote
// system formats numbers for pt-BR locales: "." groups thousands and ","
// marks the decimal. Plain machine-formatted numbers ("1234.56") are accepted
// too. Priority when both separators appear: the rightmost separator is the
// decimal mark.
//
// This is the single place locale-formatted numbers are interpreted; callers
// must not do their own replace chains.
func ParseQuantity(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}

	comma := strings.LastIndex(trimmed, ",")
	dot := strings.LastIndex(trimmed, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// "1.234,56" — dots group, comma is decimal
			trimmed = strings.ReplaceAll(trimmed, ".", "")
			trimmed = strings.Replace(trimmed, ",", ".", 1)
		} else {
			// "1,234.56" — commas group, dot is decimal
			trimmed = strings.ReplaceAll(trimmed, ",", "")
		}
	case comma >= 0:
		// single comma is always a decimal mark
		if strings.Count(trimmed, ",") > 1 {
			return decimal.Zero, fmt.Errorf("unparseable quantity %q", s)
		}
		trimmed = strings.Replace(trimmed, ",", ".", 1)
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable quantity %q: %w", s, err)
	}
	return d, nil
}
