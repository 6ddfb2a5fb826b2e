// internal/session/session.go
//
// Game session state machine — the single writer for one game attempt.
// Responsibilities:
//   - Track identity, guess count, history, and completion state for the
//     active game, mutated only in response to user actions and backend
//     responses.
//   - Timer with pause/resume: elapsed = now - startedAt - accumulated
//     pause time while running; frozen at the instant status leaves Running.
//     The timer starts on the first accepted guess, never before.
//   - Discard responses that arrive for a superseded gameId (the stale
//     guard that substitutes for locks across the network suspension).
//
// States: NotStarted → Running ⇄ Paused → {Won | Surrendered}.
// Won and Surrendered are terminal sinks.

package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"guessnumber/internal/api"
	"guessnumber/internal/input"
)

// Status is the lifecycle state of a session. Exactly one holds at a time.
type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusRunning     Status = "running"
	StatusPaused      Status = "paused"
	StatusWon         Status = "won"
	StatusSurrendered Status = "surrendered"
)

// Terminal reports whether s admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusSurrendered
}

// Local rejections raised before any network call is made.
var (
	ErrNoGame     = errors.New("session: no active game")
	ErrPaused     = errors.New("session: game is paused")
	ErrFinished   = errors.New("session: game already finished")
	ErrNotStarted = errors.New("session: timer has not started")
	// ErrStale marks a response for a superseded game; callers must treat
	// it as a silent no-op, never as a user-visible failure.
	ErrStale = errors.New("session: stale response discarded")
)

// GuessRecord is one accepted guess. Marks stays nil until a surrender
// response supplies the answer for retroactive per-digit annotation.
type GuessRecord struct {
	Guess          string
	ExactMatches   int
	PartialMatches int
	ElapsedSeconds int
	Marks          []Mark
}

// Gateway is the slice of the backend the machine drives. Implemented by
// *api.Client; tests substitute a fake.
type Gateway interface {
	CreateGame(ctx context.Context, playerName string) (api.CreateGameResult, error)
	SubmitGuess(ctx context.Context, gameID, guess string) (api.GuessResult, error)
	Surrender(ctx context.Context, gameID string) (api.SurrenderResult, error)
}

// Snapshot is an immutable copy of the session handed to readers
// (presentation). History is deep-copied so renders never race a mutation.
type Snapshot struct {
	GameID     string
	PlayerName string
	Status     Status
	GuessCount int
	History    []GuessRecord
	Elapsed    time.Duration
	RankingID  string
	Answer     string // set only after surrender
}

// Machine owns one GameSession. All mutations funnel through its methods;
// the mutex covers the window between a network response arriving and the
// state being updated, plus concurrent Snapshot/Elapsed reads from the
// ticker goroutine.
type Machine struct {
	gw  Gateway
	now func() time.Time // injectable clock

	mu         sync.Mutex
	gameID     string
	playerName string
	guessCount int
	history    []GuessRecord
	status     Status
	startedAt  time.Time
	accumPause time.Duration
	pauseStart time.Time
	frozen     time.Duration // elapsed captured when leaving Running
	rankingID  string
	answer     string

	onChange func(Snapshot)
}

// New constructs a Machine in the NotStarted state.
func New(gw Gateway) *Machine {
	return &Machine{gw: gw, now: time.Now, status: StatusNotStarted}
}

// OnChange registers the single change listener (presentation re-render).
// Invoked after every committed transition, outside the machine's lock.
func (m *Machine) OnChange(fn func(Snapshot)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// StartNewGame discards any prior session and requests a fresh game
// identity. Always permitted, whatever the previous state. On failure the
// session is left without a gameId and is unusable until retried.
func (m *Machine) StartNewGame(ctx context.Context, playerName string) error {
	m.mu.Lock()
	m.resetLocked()
	m.playerName = playerName
	m.mu.Unlock()
	m.notify()

	res, err := m.gw.CreateGame(ctx, playerName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	// A concurrent StartNewGame may have raced this one; last writer wins,
	// matching the discard-and-replace lifecycle.
	m.resetLocked()
	m.playerName = playerName
	m.gameID = res.GameID
	m.mu.Unlock()
	m.notify()
	return nil
}

// SubmitGuess normalizes, validates, and submits one guess.
// Local rejections (paused, finished, no game, validation) never touch the
// network. On an accepted response the timer starts if this was the first
// guess, the record is appended with elapsed time measured at response
// arrival, and a winning response transitions to Won.
func (m *Machine) SubmitGuess(ctx context.Context, rawInput string) (api.GuessResult, error) {
	guess := input.Normalize(rawInput)

	m.mu.Lock()
	switch {
	case m.status.Terminal():
		m.mu.Unlock()
		return api.GuessResult{}, ErrFinished
	case m.status == StatusPaused:
		m.mu.Unlock()
		return api.GuessResult{}, ErrPaused
	case m.gameID == "":
		m.mu.Unlock()
		return api.GuessResult{}, ErrNoGame
	}
	if err := input.Validate(guess); err != nil {
		m.mu.Unlock()
		return api.GuessResult{}, err
	}
	reqGameID := m.gameID
	m.mu.Unlock()

	res, err := m.gw.SubmitGuess(ctx, reqGameID, guess)
	if err != nil {
		// Not counted, not appended: the user may retry the same guess.
		return api.GuessResult{}, err
	}

	m.mu.Lock()
	if m.gameID != reqGameID || m.status.Terminal() {
		m.mu.Unlock()
		return api.GuessResult{}, ErrStale
	}
	if m.startedAt.IsZero() {
		m.startedAt = m.now()
		m.status = StatusRunning
	}
	m.guessCount++
	m.history = append(m.history, GuessRecord{
		Guess:          guess,
		ExactMatches:   res.ExactMatches,
		PartialMatches: res.PartialMatches,
		ElapsedSeconds: int(m.elapsedLocked() / time.Second),
	})
	if res.GameCompleted || res.ExactMatches == input.GuessLength {
		m.frozen = m.elapsedLocked()
		m.status = StatusWon
		m.rankingID = res.RankingID
	}
	m.mu.Unlock()
	m.notify()
	return res, nil
}

// TogglePause flips Running ⇄ Paused. Rejected before the first accepted
// guess and after a terminal state; in both cases nothing changes.
func (m *Machine) TogglePause() error {
	m.mu.Lock()
	switch {
	case m.status.Terminal():
		m.mu.Unlock()
		return ErrFinished
	case m.startedAt.IsZero():
		m.mu.Unlock()
		return ErrNotStarted
	case m.status == StatusRunning:
		m.frozen = m.elapsedLocked()
		m.pauseStart = m.now()
		m.status = StatusPaused
	default: // StatusPaused
		m.accumPause += m.now().Sub(m.pauseStart)
		m.pauseStart = time.Time{}
		m.status = StatusRunning
	}
	m.mu.Unlock()
	m.notify()
	return nil
}

// Surrender ends the game and retroactively annotates every recorded guess
// against the authoritative answer. Requires an active, non-terminal game;
// the confirmation dialog is the caller's concern. Surrendered games are
// excluded from the ranking.
func (m *Machine) Surrender(ctx context.Context) (api.SurrenderResult, error) {
	m.mu.Lock()
	switch {
	case m.gameID == "":
		m.mu.Unlock()
		return api.SurrenderResult{}, ErrNoGame
	case m.status.Terminal():
		m.mu.Unlock()
		return api.SurrenderResult{}, ErrFinished
	}
	reqGameID := m.gameID
	m.mu.Unlock()

	res, err := m.gw.Surrender(ctx, reqGameID)
	if err != nil {
		return api.SurrenderResult{}, err
	}

	m.mu.Lock()
	if m.gameID != reqGameID || m.status.Terminal() {
		m.mu.Unlock()
		return api.SurrenderResult{}, ErrStale
	}
	m.frozen = m.elapsedLocked()
	m.status = StatusSurrendered
	m.answer = res.Answer
	for i := range m.history {
		m.history[i].Marks = AnnotateDigits(m.history[i].Guess, res.Answer)
	}
	// The server may report guesses the client never recorded (e.g. an
	// earlier tab); append them so the surrendered view is complete.
	for i := len(m.history); i < len(res.History); i++ {
		g := res.History[i].Guess
		m.history = append(m.history, GuessRecord{
			Guess: g,
			Marks: AnnotateDigits(g, res.Answer),
		})
	}
	m.mu.Unlock()
	m.notify()
	return res, nil
}

// Elapsed is a pure read of the play clock: frozen once paused or terminal,
// zero before the first accepted guess, live while running.
func (m *Machine) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsedLocked()
}

// Snapshot returns a deep copy of the current session for readers.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// ----------------------------- internals -----------------------------------

func (m *Machine) elapsedLocked() time.Duration {
	switch {
	case m.status.Terminal(), m.status == StatusPaused:
		return m.frozen
	case m.startedAt.IsZero():
		return 0
	default:
		return m.now().Sub(m.startedAt) - m.accumPause
	}
}

// resetLocked wipes every per-game field. There is no partial carry-over
// between sessions.
func (m *Machine) resetLocked() {
	m.gameID = ""
	m.playerName = ""
	m.guessCount = 0
	m.history = nil
	m.status = StatusNotStarted
	m.startedAt = time.Time{}
	m.accumPause = 0
	m.pauseStart = time.Time{}
	m.frozen = 0
	m.rankingID = ""
	m.answer = ""
}

func (m *Machine) snapshotLocked() Snapshot {
	hist := make([]GuessRecord, len(m.history))
	copy(hist, m.history)
	return Snapshot{
		GameID:     m.gameID,
		PlayerName: m.playerName,
		Status:     m.status,
		GuessCount: m.guessCount,
		History:    hist,
		Elapsed:    m.elapsedLocked(),
		RankingID:  m.rankingID,
		Answer:     m.answer,
	}
}

// notify invokes the change listener with a fresh snapshot, outside the lock.
func (m *Machine) notify() {
	m.mu.Lock()
	fn := m.onChange
	snap := m.snapshotLocked()
	m.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
