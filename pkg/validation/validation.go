package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigitPattern = regexp.MustCompile(`[^0-9]`)
)

// ValidEmail reports whether the string looks like an email address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidPhone accepts Brazilian phone numbers: 10 or 11 digits including the
// area code, ignoring formatting characters.
func ValidPhone(phone string) bool {
	digits := nonDigitPattern.ReplaceAllString(phone, "")
	return len(digits) == 10 || len(digits) == 11
}

// ValidCPF verifies the two mod-11 check digits of a Brazilian CPF. Any
// formatting characters are stripped first. A CPF made of one repeated digit
// is invalid even though its checksum holds.
func ValidCPF(cpf string) bool {
	digits := nonDigitPattern.ReplaceAllString(cpf, "")
	if len(digits) != 11 {
		return false
	}
	if strings.Count(digits, string(digits[0])) == 11 {
		return false
	}

	return int(digits[9]-'0') == cpfCheckDigit(digits, 9) &&
		int(digits[10]-'0') == cpfCheckDigit(digits, 10)
}

// cpfCheckDigit computes the check digit over the first n digits with
// weights n+1 down to 2.
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// NormalizeCPF strips formatting so CPFs are stored digits-only.
func NormalizeCPF(cpf string) string {
	return nonDigitPattern.ReplaceAllString(cpf, "")
}

// NormalizePhone strips formatting so phones are stored digits-only.
func NormalizePhone(phone string) string {
	return nonDigitPattern.ReplaceAllString(phone, "")
}
