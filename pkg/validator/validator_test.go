package validator

import (
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"test@example.com", true},
		{"ispettore.hse@example.co.uk", true},
		{"invalid-email", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
		{"user@example", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidateEmail(%q) = %v, expected %v", tt.email, isValid, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		expected bool
	}{
		{"password123", true},
		{"12345678", true},
		{"short", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidatePassword(%q) = %v, expected %v", tt.password, isValid, tt.expected)
		}
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		field    string
		value    string
		expected bool
	}{
		{"title", "Audit HSE", true},
		{"title", "", false},
		{"title", "   ", false},
	}

	for _, tt := range tests {
		err := ValidateRequired(tt.field, tt.value)
		isValid := err == nil

		if isValid != tt.expected {
			t.Errorf("ValidateRequired(%q, %q) = %v, expected %v", tt.field, tt.value, isValid, tt.expected)
		}
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("expires_at", "2026-12-31")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	want := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", parsed, want)
	}

	invalid := []string{"", "31/12/2026", "2026-13-01", "not-a-date"}
	for _, value := range invalid {
		if _, err := ParseDate("expires_at", value); err == nil {
			t.Errorf("ParseDate(%q) accepted an invalid date", value)
		}
	}
}

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		name      string
		weight    float64
		allowZero bool
		expected  bool
	}{
		{"positive area weight", 1.5, false, true},
		{"zero area weight", 0, false, false},
		{"negative area weight", -1, false, false},
		{"zero option weight", 0, true, true},
		{"negative option weight", -0.5, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeight("weight", tt.weight, tt.allowZero)
			isValid := err == nil

			if isValid != tt.expected {
				t.Errorf("ValidateWeight(%v, allowZero=%v) = %v, expected %v", tt.weight, tt.allowZero, isValid, tt.expected)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  test  ", "test"},
		{"test\x00string", "teststring"},
		{"normal", "normal"},
	}

	for _, tt := range tests {
		result := SanitizeString(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeString(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Test@Example.com", "test@example.com"},
		{"  USER@EXAMPLE.COM  ", "user@example.com"},
	}

	for _, tt := range tests {
		result := SanitizeEmail(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeEmail(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
