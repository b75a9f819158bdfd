package buf

// Fit returns a fresh copy of b resized to exactly size bytes: shorter input
// is zero padded, longer input is truncated. A negative size yields nil.
func Fit(b []byte, size int) []byte {
	if size < 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

// Clone returns a copy of b, or nil when b is nil.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
