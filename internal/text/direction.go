package text

import (
	"golang.org/x/text/unicode/bidi"
)

// Direction represents text direction
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

// String returns the CSS name of the direction
func (d Direction) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}

// DetectDirection returns the direction of the first strong character in s.
// Text without strong characters is treated as left-to-right.
func DetectDirection(s string) Direction {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return LeftToRight
		case bidi.R, bidi.AL:
			return RightToLeft
		}
	}
	return LeftToRight
}

// IsRTL reports whether s starts with right-to-left text
func IsRTL(s string) bool {
	return DetectDirection(s) == RightToLeft
}
