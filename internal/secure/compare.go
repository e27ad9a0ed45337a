package secure

import "crypto/subtle"

// Equal reports whether a and b are equal without leaking, through timing,
// where or whether they differ. The number of byte comparisons depends only
// on the longer operand's length: out-of-range positions compare a zero
// byte, a length mismatch is folded in as a final bit, and the loop never
// short-circuits.
func Equal(a, b string) bool {
	var ops int
	return equal([]byte(a), []byte(b), &ops)
}

// equal is the counting core of Equal. ops is incremented once per byte
// comparison so tests can assert the work done is position-independent.
func equal(a, b []byte, ops *int) bool {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	lengthsEqual := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))

	result := 1
	for i := 0; i < maxLen; i++ {
		var ab, bb byte
		if i < len(a) {
			ab = a[i]
		}
		if i < len(b) {
			bb = b[i]
		}
		result &= subtle.ConstantTimeByteEq(ab, bb)
		*ops++
	}

	return lengthsEqual&result == 1
}
