package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

var (
	nonDigitPattern   = regexp.MustCompile(`\D`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || strings.HasSuffix(email, ".") {
		return false
	}
	return validate.Var(email, "email") == nil
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}

// NormalizeTaxID strips formatting from a CNPJ/CPF. Returns "" unless the
// result has exactly 14 (CNPJ) or 11 (CPF) digits.
func NormalizeTaxID(raw string) string {
	digits := DigitsOnly(raw)
	if len(digits) == 14 || len(digits) == 11 {
		return digits
	}
	return ""
}

func FormatTaxID(taxID string) string {
	if len(taxID) == 14 {
		return fmt.Sprintf("%s.%s.%s/%s-%s", taxID[:2], taxID[2:5], taxID[5:8], taxID[8:12], taxID[12:])
	}
	if len(taxID) == 11 {
		return fmt.Sprintf("%s.%s.%s-%s", taxID[:3], taxID[3:6], taxID[6:9], taxID[9:])
	}
	return taxID
}

func NormalizePayerName(s string) string {
	return strings.ToUpper(strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " ")))
}

// NameSimilarity is a normalized edit-distance ratio over the normalized
// names: symmetric, 1.0 for identical strings, 0.0 for disjoint ones.
func NameSimilarity(a, b string) float64 {
	na := NormalizePayerName(a)
	nb := NormalizePayerName(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	return 1.0 - float64(dist)/float64(longest)
}

// AmountToCents parses a monetary value into integer cents. Accepts plain
// decimals ("1234.56"), Brazilian formatting ("1.234,56", "R$ 606,08") and
// bare integers.
func AmountToCents(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return DecimalToCents(d), true
}

func DecimalToCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CentsToBRL renders cents as "1.234,56".
func CentsToBRL(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	out := fmt.Sprintf("%s,%02d", sb.String(), frac)
	if negative {
		return "-" + out
	}
	return out
}

// NormalizeDueDate converts the date formats seen on slips into ISO
// YYYY-MM-DD, the format NFe installments carry. Supported inputs:
// "DD/MM/YYYY", "DD-MM-YYYY", "DD/MM/YY", "YYYY-MM-DD" and bare "DD-MM"
// (year inferred: current year if the month has not passed, next year
// otherwise). Returns "" when the input is not a recognizable date.
func NormalizeDueDate(raw string) string {
	return normalizeDueDateAt(raw, time.Now())
}

var (
	dayFirstPattern = regexp.MustCompile(`^(\d{2})[/-](\d{2})[/-](\d{2,4})$`)
	isoPattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayMonthPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
)

func normalizeDueDateAt(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if isoPattern.MatchString(s) {
		return s
	}
	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		day, month, year := m[1], m[2], m[3]
		if len(year) == 2 {
			// Two-digit years up to 50 are 20xx, the rest 19xx.
			if year <= "50" {
				year = "20" + year
			} else {
				year = "19" + year
			}
		}
		return fmt.Sprintf("%s-%s-%s", year, month, day)
	}
	if m := dayMonthPattern.FindStringSubmatch(s); m != nil {
		day, month := m[1], m[2]
		year := now.Year()
		if month < fmt.Sprintf("%02d", int(now.Month())) {
			year++
		}
		return fmt.Sprintf("%04d-%s-%s", year, month, day)
	}
	return ""
}
