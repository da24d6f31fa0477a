package utils

import (
	"strings"
	"testing"
)

func TestGenerateShortID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := GenerateShortID()
		if len(id) != 12 {
			t.Fatalf("expected 12 characters, got %d (%q)", len(id), id)
		}
		if strings.ContainsAny(id, "-") {
			t.Fatalf("id contains separator: %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestGenerateDOI(t *testing.T) {
	doi := GenerateDOI("abc123def456")
	if doi != "10.52810/scholar.abc123def456" {
		t.Errorf("unexpected DOI: %q", doi)
	}
}

func TestGeneratePaymentReference(t *testing.T) {
	ref := GeneratePaymentReference()
	if !strings.HasPrefix(ref, "PAY-") {
		t.Errorf("missing prefix: %q", ref)
	}
	if len(ref) != len("PAY-")+16 {
		t.Errorf("unexpected length: %q", ref)
	}
	if ref != strings.ToUpper(ref) {
		t.Errorf("reference should be upper case: %q", ref)
	}
}
