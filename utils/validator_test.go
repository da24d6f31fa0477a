package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"author@example.org",
		"first.last+tag@sub.domain.co",
		"  padded@example.org  ",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"   ",
		"no-at-sign.example.org",
		"user@",
		"@example.org",
		"user@domain",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be invalid", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, _ := ValidatePassword("correct-horse"); !ok {
		t.Error("expected long password to pass")
	}
	if ok, reason := ValidatePassword("short"); ok || reason == "" {
		t.Error("expected short password to fail with a reason")
	}
	if ok, reason := ValidatePassword("        "); ok || reason == "" {
		t.Error("expected blank password to fail with a reason")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  title\x00 "); got != "title" {
		t.Errorf("unexpected sanitized value: %q", got)
	}
}
