// internal/input/input.go
//
// Guess input normalization and validation.
// Responsibilities:
//   - Fold full-width decimal digits (U+FF10..U+FF19) to their ASCII forms,
//     so IME users can type ４３２１ and have it accepted.
//   - Validate the canonical form: exactly 4 decimal digits, all distinct.
//
// Validation order is significant for error-message precision:
// length first, digit-ness second, uniqueness third.

package input

import "errors"

// GuessLength is the number of digits in a guess (and in the secret).
const GuessLength = 4

// Validation failures, checked in this order.
var (
	ErrWrongLength     = errors.New("guess must be exactly 4 digits")
	ErrNotDigits       = errors.New("guess must contain only digits")
	ErrDuplicateDigits = errors.New("guess digits must not repeat")
)

// Normalize maps full-width decimal digit code points to their half-width
// equivalents. All other characters pass through untouched. Idempotent.
func Normalize(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r >= '０' && r <= '９' {
			r = r - '０' + '0'
		}
		out = append(out, r)
	}
	return string(out)
}

// Validate checks the shape of a canonical (already normalized) guess.
// Returns nil when the guess is exactly GuessLength pairwise-distinct
// decimal digits.
func Validate(canonical string) error {
	runes := []rune(canonical)
	if len(runes) != GuessLength {
		return ErrWrongLength
	}
	for _, r := range runes {
		if r < '0' || r > '9' {
			return ErrNotDigits
		}
	}
	var seen [10]bool
	for _, r := range runes {
		d := int(r - '0')
		if seen[d] {
			return ErrDuplicateDigits
		}
		seen[d] = true
	}
	return nil
}
