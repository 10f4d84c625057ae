package engine

// KeyState tracks container nesting for decoders whose token API reports
// member names and string values the same way (encoding/json, go-json).
// Both source drivers share it so they classify strings identically.
type KeyState struct {
	stack []keyFrame
}

type keyFrame struct {
	array        bool
	expectingKey bool
}

// Open records a container start.
func (s *KeyState) Open(array bool) {
	s.stack = append(s.stack, keyFrame{array: array, expectingKey: !array})
}

// Close records a container end; the closed container completes a value in
// its parent.
func (s *KeyState) Close() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// String classifies a decoded string: true means it is a member name.
func (s *KeyState) String() bool {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if !top.array && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	s.valueDone()
	return false
}

// Scalar records a non-string scalar value.
func (s *KeyState) Scalar() { s.valueDone() }

func (s *KeyState) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if !top.array {
			top.expectingKey = true
		}
	}
}
