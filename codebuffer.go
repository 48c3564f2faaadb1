package authflow

// CodeBuffer manages the segmented code input: an ordered sequence of
// single-digit slots with focus, backspace-chaining, and paste semantics.
// Malformed input is silently discarded — this is an interactive editing
// widget, not a validator. Joining the slots in order yields the candidate
// code currently being verified.
type CodeBuffer struct {
	slots []byte // 0 means empty, otherwise '0'..'9'
	focus int
}

// NewCodeBuffer creates an empty buffer with n slots, focused on slot 0.
// n values below 1 fall back to the default of 6.
func NewCodeBuffer(n int) *CodeBuffer {
	if n < 1 {
		n = 6
	}
	return &CodeBuffer{slots: make([]byte, n)}
}

// Len describes the len operation and its observable behavior.
func (b *CodeBuffer) Len() int {
	return len(b.slots)
}

// Focus returns the currently focused slot index.
func (b *CodeBuffer) Focus() int {
	return b.focus
}

func (b *CodeBuffer) clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(b.slots) {
		return len(b.slots) - 1
	}
	return i
}

// SetDigit writes the first digit character of raw into slot i and advances
// focus to the next slot. Input with no digit in its first character is
// ignored entirely.
func (b *CodeBuffer) SetDigit(i int, raw string) {
	i = b.clamp(i)
	d, ok := firstDigit(raw)
	if !ok {
		return
	}
	b.slots[i] = d
	if i < len(b.slots)-1 {
		b.focus = i + 1
	} else {
		b.focus = i
	}
}

// Backspace clears slot i when it holds a digit, keeping focus in place.
// When slot i is already empty it clears the previous slot and moves focus
// there — the chained delete-back behavior of segmented inputs.
func (b *CodeBuffer) Backspace(i int) {
	i = b.clamp(i)
	if b.slots[i] != 0 {
		b.slots[i] = 0
		b.focus = i
		return
	}
	if i > 0 {
		b.slots[i-1] = 0
		b.focus = i - 1
	}
}

// ArrowLeft moves focus one slot left without mutating content.
func (b *CodeBuffer) ArrowLeft(i int) {
	b.focus = b.clamp(i - 1)
}

// ArrowRight moves focus one slot right without mutating content.
func (b *CodeBuffer) ArrowRight(i int) {
	b.focus = b.clamp(i + 1)
}

// Paste extracts the digits of text and writes them into slots i, i+1, …
// until either the digits or the slots run out. Slots beyond the pasted
// length keep their previous content. Focus lands on min(i+pasted, last).
func (b *CodeBuffer) Paste(i int, text string) {
	i = b.clamp(i)
	digits := extractDigits(text)
	if len(digits) == 0 {
		return
	}
	n := 0
	for ; n < len(digits) && i+n < len(b.slots); n++ {
		b.slots[i+n] = digits[n]
	}
	b.focus = b.clamp(i + len(digits))
}

// Clear empties every slot and resets focus to slot 0.
func (b *CodeBuffer) Clear() {
	for i := range b.slots {
		b.slots[i] = 0
	}
	b.focus = 0
}

// Code returns the joined slot contents, skipping empty slots.
func (b *CodeBuffer) Code() string {
	out := make([]byte, 0, len(b.slots))
	for _, d := range b.slots {
		if d != 0 {
			out = append(out, d)
		}
	}
	return string(out)
}

// Complete reports whether every slot holds a digit.
func (b *CodeBuffer) Complete() bool {
	for _, d := range b.slots {
		if d == 0 {
			return false
		}
	}
	return true
}

func firstDigit(s string) (byte, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return s[i], true
		}
	}
	return 0, false
}

func extractDigits(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return out
}
