// Package payment holds card-number utilities. Raw card numbers only ever
// exist in memory during validation; everything persisted goes through
// MaskCardNumber first.
package payment

import (
	"strings"

	"github.com/tiendahub/orders-backend/internal/domain"
)

const (
	minCardDigits = 8
	maxCardDigits = 19
)

func digitsOnly(cardNumber string) string {
	var b strings.Builder
	for _, r := range cardNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskCardNumber keeps the first and last four digits and replaces the middle
// with 'X' characters, e.g. 4111111111111111 -> 4111XXXXXXXX1111. Inputs with
// fewer than 8 or more than 19 digits fail with ErrInvalidCardNumber.
func MaskCardNumber(cardNumber string) (string, error) {
	clean := digitsOnly(cardNumber)
	if len(clean) < minCardDigits || len(clean) > maxCardDigits {
		return "", domain.ErrInvalidCardNumber
	}

	first := clean[:4]
	last := clean[len(clean)-4:]
	return first + strings.Repeat("X", len(clean)-8) + last, nil
}

// DetectCardType classifies a card by its leading digits.
func DetectCardType(cardNumber string) string {
	clean := digitsOnly(cardNumber)
	switch {
	case strings.HasPrefix(clean, "4"):
		return "VISA"
	case strings.HasPrefix(clean, "5"), strings.HasPrefix(clean, "2"):
		return "MASTERCARD"
	case strings.HasPrefix(clean, "34"), strings.HasPrefix(clean, "37"):
		return "AMEX"
	case strings.HasPrefix(clean, "3"):
		return "DINERS"
	case strings.HasPrefix(clean, "6"):
		return "DISCOVER"
	}
	return "UNKNOWN"
}

// ValidCardNumber runs the Luhn checksum over a 13-19 digit card number.
func ValidCardNumber(cardNumber string) bool {
	clean := digitsOnly(cardNumber)
	if len(clean) < 13 || len(clean) > maxCardDigits {
		return false
	}

	sum := 0
	double := false
	for i := len(clean) - 1; i >= 0; i-- {
		digit := int(clean[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}

// FormatCardNumber groups the digits in blocks of four for display.
func FormatCardNumber(cardNumber string) string {
	clean := digitsOnly(cardNumber)
	var groups []string
	for len(clean) > 4 {
		groups = append(groups, clean[:4])
		clean = clean[4:]
	}
	if clean != "" {
		groups = append(groups, clean)
	}
	return strings.Join(groups, " ")
}
