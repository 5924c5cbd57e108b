package utils

import (
	"strings"
	"unicode"
)

// NormalizeTaxID strips punctuation from a CPF, keeping digits only
func NormalizeTaxID(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks the length and both check digits of a Brazilian CPF.
// Punctuation ("123.456.789-09") is accepted.
func ValidCPF(cpf string) bool {
	digits := NormalizeTaxID(cpf)
	if len(digits) != 11 {
		return false
	}

	allSame := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	checkDigit := func(n int) byte {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(digits[i]-'0') * (n + 1 - i)
		}
		rest := (sum * 10) % 11
		if rest == 10 {
			rest = 0
		}
		return byte(rest) + '0'
	}

	return checkDigit(9) == digits[9] && checkDigit(10) == digits[10]
}

// StrongPassword requires at least 8 characters with a letter and a digit
func StrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
