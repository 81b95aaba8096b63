package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferralCode(t *testing.T) {
	code, err := GenerateReferralCode()
	if err != nil {
		t.Fatalf("GenerateReferralCode() error = %v", err)
	}

	if !strings.HasPrefix(code, ReferralCodePrefix+"-") {
		t.Errorf("code %q missing %q prefix", code, ReferralCodePrefix+"-")
	}

	random := strings.TrimPrefix(code, ReferralCodePrefix+"-")
	if len(random) != 6 {
		t.Errorf("random part %q has length %d, want 6", random, len(random))
	}

	for _, r := range random {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Errorf("code %q contains non-alphanumeric character %q", code, r)
		}
	}
}

func TestGenerateReferralCodeVariance(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateReferralCode()
		if err != nil {
			t.Fatalf("GenerateReferralCode() error = %v", err)
		}
		seen[code] = true
	}
	// 32^6 possible codes; 100 draws colliding down to a handful would
	// mean the randomness is broken.
	if len(seen) < 95 {
		t.Errorf("got %d distinct codes out of 100 draws", len(seen))
	}
}
