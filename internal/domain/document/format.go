package document

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DateLayout is the canonical storage format of DATE fields
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006/01/02",
}

var currencySymbols = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", "₱", "", "₹", "", "₩", "", ",", "", " ", "", "\u00a0", "",
)

// ParseAmount parses a user-entered money or measurement value.
// Currency symbols, spaces, thousands separators and a leading or trailing
// three-letter currency code are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = trimCurrencyCode(s)
	s = currencySymbols.Replace(s)
	if s == "" {
		return decimal.Zero, errEmptyNumber
	}
	return decimal.NewFromString(s)
}

func trimCurrencyCode(s string) string {
	if len(s) > 3 && isAlpha(s[:3]) {
		s = strings.TrimSpace(s[3:])
	}
	if len(s) > 3 && isAlpha(s[len(s)-3:]) {
		s = strings.TrimSpace(s[:len(s)-3])
	}
	return s
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ParseDate accepts the date layouts users commonly type
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// NormalizeCurrency validates an ISO 4217 code and returns it upper-cased
func NormalizeCurrency(s string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", err
	}
	return unit.String(), nil
}

// FormatAmount renders d with two decimals and thousands separators
func FormatAmount(d decimal.Decimal) string {
	return FormatDecimal(d, 2)
}

// FormatDecimal renders d with the given precision and thousands separators
func FormatDecimal(d decimal.Decimal, precision int32) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	intPart, fracPart, _ := strings.Cut(d.StringFixed(precision), ".")
	out := groupThousands(intPart)
	if fracPart != "" {
		out += "." + fracPart
	}
	return sign + out
}

func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// MaskAmountInput reformats partially typed money input: non-digits are
// dropped, only the first decimal point is kept, the fraction is cut to two
// digits and the integer part is grouped. A trailing point is preserved so
// the user can keep typing.
func MaskAmountInput(s string) string {
	var intDigits, fracDigits strings.Builder
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if seenPoint {
				if fracDigits.Len() < 2 {
					fracDigits.WriteRune(r)
				}
			} else {
				intDigits.WriteRune(r)
			}
		case r == '.' && !seenPoint:
			seenPoint = true
		}
	}
	intPart := strings.TrimLeft(intDigits.String(), "0")
	if intPart == "" && (intDigits.Len() > 0 || seenPoint) {
		intPart = "0"
	}
	out := groupThousands(intPart)
	if seenPoint {
		out += "." + fracDigits.String()
	}
	return out
}

// MaskDateInput formats up to eight typed digits as MM/DD/YYYY
func MaskDateInput(s string) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' && len(digits) < 8 {
			digits = append(digits, r)
		}
	}
	var b strings.Builder
	for i, r := range digits {
		if i == 2 || i == 4 {
			b.WriteByte('/')
		}
		b.WriteRune(r)
	}
	return b.String()
}
