// internal/session/annotate.go
//
// Retroactive per-digit annotation of a guess against the revealed answer,
// shown after a surrender. Two-pass consume algorithm:
//
// Pass 1:
//   - Mark digits equal at the same index as Exact and consume that
//     answer slot.
//
// Pass 2:
//   - For each still-unmarked guessed digit, find an unconsumed answer slot
//     with an equal digit (in index order) and mark Misplaced; otherwise
//     mark Absent.
//
// Each answer slot is consumed at most once, mirroring the exact/partial
// scoring semantics. Display only — the server remains authoritative.

package session

// Mark classifies one guessed digit relative to the true answer.
type Mark string

const (
	MarkExact     Mark = "exact"     // right digit, right position
	MarkMisplaced Mark = "misplaced" // digit is in the answer elsewhere
	MarkAbsent    Mark = "absent"    // digit is not in the answer
)

// AnnotateDigits classifies every digit of guess against answer.
func AnnotateDigits(guess, answer string) []Mark {
	g := []byte(guess)
	a := []byte(answer)
	marks := make([]Mark, len(g))
	used := make([]bool, len(a))

	for i := range g {
		if i < len(a) && g[i] == a[i] {
			marks[i] = MarkExact
			used[i] = true
		}
	}
	for i := range g {
		if marks[i] == MarkExact {
			continue
		}
		marks[i] = MarkAbsent
		for j := range a {
			if !used[j] && a[j] == g[i] {
				marks[i] = MarkMisplaced
				used[j] = true
				break
			}
		}
	}
	return marks
}
