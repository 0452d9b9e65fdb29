package mcleece

// Secret wraps a byte slice holding key material so callers have one place
// to zeroize it. Go has no destructors, so every function that owns a
// Secret must defer Wipe() explicitly — this type exists to make that
// obligation visible at the call site instead of leaving raw []byte
// secrets to be copied and forgotten.
type Secret struct {
	b []byte
}

// NewSecret takes ownership of b. Callers must not retain other references
// to b after this call.
func NewSecret(b []byte) *Secret {
	return &Secret{b: b}
}

// Bytes returns the underlying buffer. The returned slice is invalidated
// by Wipe.
func (s *Secret) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Wipe overwrites the buffer with zeroes and releases it. Safe to call
// more than once and on a nil *Secret.
func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
	s.b = nil
}
