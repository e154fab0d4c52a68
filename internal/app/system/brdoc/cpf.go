// internal/app/system/brdoc/cpf.go
package brdoc

// CPF (Cadastro de Pessoas Físicas) validation: length plus the two
// mod-11 check digits.

import (
	"errors"
	"strings"
)

// ErrCPFLength is returned when a CPF has fewer than 11 digits.
var ErrCPFLength = errors.New("cpf must have 11 digits")

// ErrCPFChecksum is returned when the check digits do not match.
var ErrCPFChecksum = errors.New("cpf check digits do not match")

func stripCPF(cpf string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(cpf)
}

// CheckCPFLength validates only the digit count, the gate applied on
// member creation (full checksum validation is advisory there; imported
// legacy records carry typos).
func CheckCPFLength(cpf string) error {
	if len(stripCPF(cpf)) < 11 {
		return ErrCPFLength
	}
	return nil
}

// ValidCPF reports whether cpf passes the official mod-11 checksum.
// The all-zeros document is rejected outright.
func ValidCPF(cpf string) bool {
	d := stripCPF(cpf)
	if len(d) != 11 || d == "00000000000" {
		return false
	}
	for _, r := range d {
		if r < '0' || r > '9' {
			return false
		}
	}

	check := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		rem := (sum * 10) % 11
		if rem == 10 {
			rem = 0
		}
		return rem
	}

	if check(9) != int(d[9]-'0') {
		return false
	}
	return check(10) == int(d[10]-'0')
}
