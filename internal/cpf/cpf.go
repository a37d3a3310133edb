// Package cpf holds helpers for the Brazilian individual taxpayer number and
// the validators used on CPF form fields.
package cpf

import (
	"regexp"
	"strings"
)

// pattern accepts a CPF either bare or with the usual punctuation.
var pattern = regexp.MustCompile(`^\d{3}\.?\d{3}\.?\d{3}-?\d{2}$`)

// Digits strips every non-digit from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Mask formats the digits of s as 000.000.000-00. Partial input is masked
// progressively and anything past the eleventh digit is dropped.
func Mask(s string) string {
	d := Digits(s)
	if len(d) > 11 {
		d = d[:11]
	}
	var b strings.Builder
	for i, r := range d {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LooksValid is the format pre-check run before any remote validation.
func LooksValid(s string) bool {
	return pattern.MatchString(strings.TrimSpace(s))
}
