package utils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MaxFotoBytes is the hard ceiling for uploaded photo and signature files.
const MaxFotoBytes = 2 << 20 // 2 MiB

var nonDigits = regexp.MustCompile(`\D`)

// ValidateCPF runs the two-pass modulus-11 check-digit algorithm over a CPF.
// An empty CPF is valid (the field is optional); otherwise the string must
// reduce to exactly 11 digits, must not be a single repeated digit, and both
// check digits must match.
func ValidateCPF(cpf string) bool {
	if cpf == "" {
		return true
	}

	clean := nonDigits.ReplaceAllString(cpf, "")
	if len(clean) != 11 {
		return false
	}

	repeated := true
	for i := 1; i < 11; i++ {
		if clean[i] != clean[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	digit := func(i int) int { return int(clean[i] - '0') }

	// first check digit: weights 10..2 over digits 0..8
	sum := 0
	for i := 0; i < 9; i++ {
		sum += digit(i) * (10 - i)
	}
	rem := 11 - sum%11
	if rem >= 10 {
		rem = 0
	}
	if rem != digit(9) {
		return false
	}

	// second check digit: weights 11..2 over digits 0..9
	sum = 0
	for i := 0; i < 10; i++ {
		sum += digit(i) * (11 - i)
	}
	rem = 11 - sum%11
	if rem >= 10 {
		rem = 0
	}
	return rem == digit(10)
}

// FormatCPF renders a CPF as 000.000.000-00. Inputs that do not reduce to
// 11 digits are returned stripped but unpunctuated.
func FormatCPF(cpf string) string {
	if cpf == "" {
		return ""
	}
	clean := nonDigits.ReplaceAllString(cpf, "")
	if len(clean) != 11 {
		return clean
	}
	return fmt.Sprintf("%s.%s.%s-%s", clean[0:3], clean[3:6], clean[6:9], clean[9:11])
}

// FormatPhone renders a Brazilian phone number as (DD) NNNN-NNNN or
// (DD) NNNNN-NNNN. Anything that is not 10 or 11 digits comes back as given.
func FormatPhone(phone string) string {
	if phone == "" {
		return ""
	}
	clean := nonDigits.ReplaceAllString(phone, "")
	switch len(clean) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", clean[0:2], clean[2:6], clean[6:10])
	case 11:
		return fmt.Sprintf("(%s) %s-%s", clean[0:2], clean[2:7], clean[7:11])
	default:
		return phone
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the minimal shape of an e-mail address.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateImageFile checks an upload against the acceptance rules: MIME type
// must begin with "image/" and the payload must not exceed MaxFotoBytes.
// The returned error names the offending file.
func ValidateImageFile(filename, contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("arquivo %s não é uma imagem válida", filename)
	}
	if size > MaxFotoBytes {
		return fmt.Errorf("arquivo %s é muito grande (máximo 2MB)", filename)
	}
	return nil
}

// ValidateDate checks that a date is parseable and inside the optional
// [min, max] bounds.
func ValidateDate(date time.Time, min, max *time.Time) bool {
	if date.IsZero() {
		return false
	}
	if min != nil && date.Before(*min) {
		return false
	}
	if max != nil && date.After(*max) {
		return false
	}
	return true
}

// SanitizeText trims and collapses runs of whitespace.
func SanitizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
