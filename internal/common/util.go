package common

// WipeByteArray overwrites b with zeroes. Safe to call with nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
