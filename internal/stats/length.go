package stats

import "unicode/utf8"

// LengthBounds tracks rolling min/max UTF-8 character length for string-
// typed columns (spec.md §4.5 "Length bounds").
type LengthBounds struct {
	min, max int
	seen     bool
}

// NewLengthBounds returns an empty tracker.
func NewLengthBounds() *LengthBounds {
	return &LengthBounds{}
}

// Update folds one string's rune length into the bounds.
func (l *LengthBounds) Update(s string) {
	n := utf8.RuneCountInString(s)
	if !l.seen {
		l.min, l.max = n, n
		l.seen = true
		return
	}
	if n < l.min {
		l.min = n
	}
	if n > l.max {
		l.max = n
	}
}

// Min returns the shortest observed length and whether any value was seen.
func (l *LengthBounds) Min() (int, bool) { return l.min, l.seen }

// Max returns the longest observed length and whether any value was seen.
func (l *LengthBounds) Max() (int, bool) { return l.max, l.seen }
