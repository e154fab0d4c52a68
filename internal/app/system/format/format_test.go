package format

import (
	"testing"
	"time"
)

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"maria oliveira", "Maria Oliveira"},
		{"MARIA OLIVEIRA", "Maria Oliveira"},
		{"joão DA silva", "João Da Silva"},
		{"", ""},
		{"   ", "   "}, // whitespace-only passes through untouched
		{"ana", "Ana"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCPF(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"12345678900", "123.456.789-00"},
		{"123.456.789-00", "123.456.789-00"},
		{"123456789001234", "123.456.789-00"}, // extra digits dropped
		{"", ""},
		{"123", "123"},
		{"1234", "123.4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CPF(tt.input)
			if got != tt.want {
				t.Errorf("CPF(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"11987654321", "(11) 98765-4321"},
		{"1133334444", "(11) 3333-4444"},
		{"(11) 98765-4321", "(11) 98765-4321"},
		{"123", ""},
		{"", ""},
		{"+5511987654321", ""}, // 13 digits is not a local display number
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Phone(tt.input)
			if got != tt.want {
				t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInternationalPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(11) 98765-4321", "+5511987654321"},
		{"+55 (11) 98765-4321", "+5511987654321"},
		{"11987654321", "+5511987654321"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := InternationalPhone(tt.input)
			if got != tt.want {
				t.Errorf("InternationalPhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateTimePtBR(t *testing.T) {
	ts := time.Date(2024, 11, 15, 10, 24, 50, 0, time.UTC)
	if got := DateTimePtBR(ts); got != "15/11/2024 10:24:50" {
		t.Errorf("DateTimePtBR = %q", got)
	}
}
