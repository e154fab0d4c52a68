// internal/app/system/format/format.go
package format

// Display normalization for member fields. All functions are pure and
// tolerate empty or malformed input by returning a best-effort value.

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Name lower-cases the whole name and re-capitalizes the first letter of
// each word: "MARIA  oliveira" -> "Maria  Oliveira". Empty input stays
// empty.
func Name(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// digits strips everything that is not 0-9.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CPF renders an 11-digit CPF as 000.000.000-00. Input may already carry
// punctuation. Anything without enough digits renders as far as it goes;
// empty input renders empty.
func CPF(cpf string) string {
	d := digits(cpf)
	if d == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range d {
		if i == 11 {
			break
		}
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

// Phone renders a BR phone with DDD as "(11) 98765-4321". Only 10 or 11
// digit numbers are considered valid; everything else renders empty.
func Phone(phone string) string {
	d := digits(phone)
	if len(d) != 10 && len(d) != 11 {
		return ""
	}
	return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:len(d)-4], d[len(d)-4:])
}

// InternationalPhone normalizes to the +55 E.164-ish form used when
// addressing WhatsApp: punctuation stripped, country code prepended when
// absent.
func InternationalPhone(phone string) string {
	if strings.Contains(phone, "+55") {
		return strings.NewReplacer(".", "", "-", "", "(", "", ")", "", " ", "").Replace(phone)
	}
	return "+55" + digits(phone)
}

// DateTimePtBR renders "15/11/2024 10:24:50".
func DateTimePtBR(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}
