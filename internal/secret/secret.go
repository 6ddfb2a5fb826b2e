// internal/secret/secret.go
//
// Server-side game state: secret generation and guess scoring.
// Responsibilities:
//   - Create games with a random 4-digit secret of pairwise-distinct digits.
//   - Score guesses with the A/B rule: A counts digits right in both value
//     and position, B counts digits present elsewhere, each secret digit
//     consumed at most once.
//   - Track guess history, first-guess time, and completion.
//
// The timer is anchored to the first guess, not game creation, so idle time
// on the start screen never counts against the player.

package secret

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Digits is the secret length.
const Digits = 4

// GuessEntry is one scored guess in a game's history.
type GuessEntry struct {
	Guess   string
	Exact   int
	Partial int
	At      time.Time
}

// Game is one server-side game. Mutated only under the live store's lock.
type Game struct {
	ID         string
	PlayerName string
	Answer     string
	History    []GuessEntry
	CreatedAt  time.Time
	FirstGuess time.Time // zero until the first guess arrives
	Finished   bool
	Won        bool
}

// New creates a game for playerName with a fresh secret.
func New(playerName string) *Game {
	return &Game{
		ID:         uuid.NewString(),
		PlayerName: playerName,
		Answer:     randomSecret(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Apply scores one guess, appends it to the history, and flips the game to
// won/finished when every digit is exact. The guess is assumed valid
// (length and digit checks happen at the HTTP boundary).
func (g *Game) Apply(guess string, now time.Time) (exact, partial int) {
	if g.FirstGuess.IsZero() {
		g.FirstGuess = now
	}
	exact, partial = Score(g.Answer, guess)
	g.History = append(g.History, GuessEntry{Guess: guess, Exact: exact, Partial: partial, At: now})
	if exact == Digits {
		g.Finished, g.Won = true, true
	}
	return exact, partial
}

// Duration is the play time from first guess to now, in seconds.
func (g *Game) Duration(now time.Time) float64 {
	if g.FirstGuess.IsZero() {
		return 0
	}
	return now.Sub(g.FirstGuess).Seconds()
}

// Score computes the A/B result of guess against answer using the two-pass
// consume rule: exact positions first, then remaining digits matched by
// value, each answer slot consumed once.
func Score(answer, guess string) (exact, partial int) {
	n := len(guess)
	used := make([]bool, len(answer))

	for i := 0; i < n && i < len(answer); i++ {
		if guess[i] == answer[i] {
			exact++
			used[i] = true
		}
	}
	for i := 0; i < n; i++ {
		if i < len(answer) && guess[i] == answer[i] {
			continue
		}
		for j := 0; j < len(answer); j++ {
			if !used[j] && answer[j] == guess[i] {
				partial++
				used[j] = true
				break
			}
		}
	}
	return exact, partial
}

// randomSecret draws Digits distinct decimal digits via a partial
// Fisher-Yates shuffle over 0..9 with crypto/rand.
func randomSecret() string {
	digits := []byte("0123456789")
	out := make([]byte, Digits)
	for i := 0; i < Digits; i++ {
		j, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits)-i)))
		k := i + int(j.Int64())
		digits[i], digits[k] = digits[k], digits[i]
		out[i] = digits[i]
	}
	return string(out)
}
