package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendahub/orders-backend/internal/domain"
)

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"16 digit visa", "4111111111111111", "4111XXXXXXXX1111"},
		{"with spaces", "5555 5555 5555 4444", "5555XXXXXXXX4444"},
		{"15 digit amex", "378282246310005", "3782XXXXXXX0005"},
		{"minimum 8 digits", "12345678", "12345678"},
		{"9 digits", "123456789", "1234X6789"},
		{"19 digits", "1234567890123456789", "1234XXXXXXXXXXX6789"},
		{"with dashes", "4111-1111-1111-1111", "4111XXXXXXXX1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaskCardNumber(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskCardNumberRejectsOutOfBounds(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"7 digits", "1234567"},
		{"20 digits", "12345678901234567890"},
		{"no digits at all", "not-a-card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MaskCardNumber(tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidCardNumber)
		})
	}
}

func TestDetectCardType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"4111111111111111", "VISA"},
		{"5555555555554444", "MASTERCARD"},
		{"2221000000000009", "MASTERCARD"},
		{"378282246310005", "AMEX"},
		{"344000000000000", "AMEX"},
		{"36000000000000", "DINERS"},
		{"6011111111111117", "DISCOVER"},
		{"9999999999999999", "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectCardType(tt.input), "card %s", tt.input)
	}
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4111111111111111"))
	assert.True(t, ValidCardNumber("378282246310005"))
	assert.True(t, ValidCardNumber("6011111111111117"))

	assert.False(t, ValidCardNumber("4111111111111112"), "luhn failure")
	assert.False(t, ValidCardNumber("411111"), "too short")
}

func TestFormatCardNumber(t *testing.T) {
	assert.Equal(t, "4111 1111 1111 1111", FormatCardNumber("4111111111111111"))
	assert.Equal(t, "3782 8224 6310 005", FormatCardNumber("378282246310005"))
}
