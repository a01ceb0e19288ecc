package handlers

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "user_name", "user-name", "User123", strings.Repeat("a", 50)}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"", "ab", strings.Repeat("a", 51), "user name", "user@name", "user.name"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@x.com", "first.last@example.co.uk", "user+tag@example.com"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", e, err)
		}
	}

	invalid := []string{"", "plain", "@example.com", "user@", "user@nodot", strings.Repeat("a", 250) + "@x.com"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", e)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	valid := []string{
		"Password1",
		"Passw0rd!",
		"lower1234!",
		"UPPER1234!",
		strings.Repeat("Aa1!", 18), // exactly the 72-byte hashing limit
	}
	for _, p := range valid {
		if err := ValidatePassword(p); err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{
		"",
		"short1A",
		"alllowercase",
		"password123",
		strings.Repeat("Aa1!", 18) + "a", // one past the hashing limit
		strings.Repeat("Aa1!", 40),
	}
	for _, p := range invalid {
		if err := ValidatePassword(p); err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", p)
		}
	}
}

func TestValidatePdfFilename(t *testing.T) {
	valid := []string{"report.pdf", "Annual Report 2025.PDF", "a.pdf"}
	for _, f := range valid {
		if err := ValidatePdfFilename(f); err != nil {
			t.Errorf("ValidatePdfFilename(%q) = %v, want nil", f, err)
		}
	}

	invalid := []string{
		"",
		"report.txt",
		"report",
		"../evil.pdf",
		`dir\evil.pdf`,
		"null\x00byte.pdf",
		strings.Repeat("a", 252) + ".pdf",
	}
	for _, f := range invalid {
		if err := ValidatePdfFilename(f); err == nil {
			t.Errorf("ValidatePdfFilename(%q) = nil, want error", f)
		}
	}
}
