package secure

import "testing"

func TestEqualMatchesAndMismatches(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"both empty", "", "", true},
		{"equal ascii", "admin-secret", "admin-secret", true},
		{"equal multibyte", "ぎょうざ", "ぎょうざ", true},
		{"mismatch first byte", "xdmin-secret", "admin-secret", false},
		{"mismatch last byte", "admin-secrex", "admin-secret", false},
		{"prefix of other", "admin", "admin-secret", false},
		{"one empty", "", "admin", false},
		{"case sensitive", "Admin", "admin", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// Every byte must be compared regardless of where the first mismatch sits.
func TestEqualComparisonCountIsPositionIndependent(t *testing.T) {
	const ref = "0123456789abcdef0123456789abcdef"

	baseline := 0
	if !equal([]byte(ref), []byte(ref), &baseline) {
		t.Fatal("expected equal operands to compare equal")
	}
	if baseline != len(ref) {
		t.Fatalf("expected %d comparisons for equal operands, got %d", len(ref), baseline)
	}

	for pos := 0; pos < len(ref); pos++ {
		mutated := []byte(ref)
		mutated[pos] ^= 0xff

		ops := 0
		if equal(mutated, []byte(ref), &ops) {
			t.Fatalf("operands differing at byte %d compared equal", pos)
		}
		if ops != baseline {
			t.Fatalf("mismatch at byte %d did %d comparisons, baseline is %d", pos, ops, baseline)
		}
	}
}

func TestEqualComparisonCountTracksLongerOperand(t *testing.T) {
	ops := 0
	equal([]byte("abc"), []byte("abcdefgh"), &ops)
	if ops != 8 {
		t.Fatalf("expected 8 comparisons for 3 vs 8 byte operands, got %d", ops)
	}

	ops = 0
	equal([]byte("abcdefgh"), []byte("abc"), &ops)
	if ops != 8 {
		t.Fatalf("expected 8 comparisons for 8 vs 3 byte operands, got %d", ops)
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	sid, err := NewSessionID()
	if err != nil {
		t.Fatalf("NewSessionID failed: %v", err)
	}

	encoded := sid.String()
	if len(encoded) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(encoded))
	}
	for _, r := range encoded {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			t.Fatalf("unexpected character %q in session id %s", r, encoded)
		}
	}

	parsed, err := ParseSessionID(encoded)
	if err != nil {
		t.Fatalf("ParseSessionID failed: %v", err)
	}
	if parsed != sid {
		t.Fatal("parsed session id does not match original")
	}
}

func TestParseSessionIDRejectsBadInput(t *testing.T) {
	if _, err := ParseSessionID("not-hex"); err == nil {
		t.Fatal("expected error for non-hex input")
	}
	if _, err := ParseSessionID("abcd"); err == nil {
		t.Fatal("expected error for short input")
	}
}
