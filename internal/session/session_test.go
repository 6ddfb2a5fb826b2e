package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"guessnumber/internal/api"
	"guessnumber/internal/input"
)

// fakeClock advances only when told to, so elapsed-time assertions are exact.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeGateway scripts responses and counts calls.
type fakeGateway struct {
	createRes api.CreateGameResult
	createErr error
	guessRes  api.GuessResult
	guessErr  error
	surrRes   api.SurrenderResult
	surrErr   error

	guessCalls int

	// onGuess runs during the simulated network suspension, before the
	// response is delivered; used to race other events against a request.
	onGuess func()
}

func (f *fakeGateway) CreateGame(ctx context.Context, playerName string) (api.CreateGameResult, error) {
	return f.createRes, f.createErr
}

func (f *fakeGateway) SubmitGuess(ctx context.Context, gameID, guess string) (api.GuessResult, error) {
	f.guessCalls++
	if f.onGuess != nil {
		f.onGuess()
	}
	return f.guessRes, f.guessErr
}

func (f *fakeGateway) Surrender(ctx context.Context, gameID string) (api.SurrenderResult, error) {
	return f.surrRes, f.surrErr
}

func newTestMachine(gw *fakeGateway) (*Machine, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := New(gw)
	m.now = clk.Now
	return m, clk
}

func startedMachine(t *testing.T, gw *fakeGateway) (*Machine, *fakeClock) {
	t.Helper()
	gw.createRes = api.CreateGameResult{GameID: "g1"}
	m, clk := newTestMachine(gw)
	require.NoError(t, m.StartNewGame(context.Background(), "Alice"))
	return m, clk
}

func TestStartNewGameResetsSession(t *testing.T) {
	gw := &fakeGateway{
		createRes: api.CreateGameResult{GameID: "g1"},
		guessRes:  api.GuessResult{ExactMatches: 1, PartialMatches: 2, GuessCount: 1},
	}
	m, _ := newTestMachine(gw)
	require.NoError(t, m.StartNewGame(context.Background(), "Alice"))
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)

	gw.createRes = api.CreateGameResult{GameID: "g2"}
	require.NoError(t, m.StartNewGame(context.Background(), "Bob"))

	snap := m.Snapshot()
	require.Equal(t, "g2", snap.GameID)
	require.Equal(t, "Bob", snap.PlayerName)
	require.Equal(t, StatusNotStarted, snap.Status)
	require.Zero(t, snap.GuessCount)
	require.Empty(t, snap.History)
	require.Zero(t, snap.Elapsed)
}

func TestStartNewGameFailureLeavesNoGame(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("connection refused")}
	m, _ := newTestMachine(gw)
	require.Error(t, m.StartNewGame(context.Background(), "Alice"))

	_, err := m.SubmitGuess(context.Background(), "1234")
	require.ErrorIs(t, err, ErrNoGame)
	require.Zero(t, gw.guessCalls)
}

func TestSubmitGuessValidationIsLocal(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := startedMachine(t, gw)

	for _, tc := range []struct {
		in   string
		want error
	}{
		{"123", input.ErrWrongLength},
		{"12a4", input.ErrNotDigits},
		{"1123", input.ErrDuplicateDigits},
	} {
		_, err := m.SubmitGuess(context.Background(), tc.in)
		require.ErrorIs(t, err, tc.want, "input %q", tc.in)
	}
	require.Zero(t, gw.guessCalls, "validation failures must not reach the network")
}

func TestSubmitGuessNormalizesFullWidthInput(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 0, PartialMatches: 1}}
	m, _ := startedMachine(t, gw)

	_, err := m.SubmitGuess(context.Background(), "１２３４")
	require.NoError(t, err)
	require.Equal(t, "1234", m.Snapshot().History[0].Guess)
}

func TestFirstAcceptedGuessStartsTimer(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 1, PartialMatches: 2, GuessCount: 1}}
	m, clk := startedMachine(t, gw)

	require.Equal(t, StatusNotStarted, m.Snapshot().Status)
	require.Zero(t, m.Elapsed())

	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)

	snap := m.Snapshot()
	require.Equal(t, StatusRunning, snap.Status)
	require.Equal(t, 1, snap.GuessCount)
	require.Len(t, snap.History, 1)
	require.Equal(t, "1234", snap.History[0].Guess)
	require.Equal(t, 1, snap.History[0].ExactMatches)
	require.Equal(t, 2, snap.History[0].PartialMatches)

	clk.Advance(7 * time.Second)
	require.Equal(t, 7*time.Second, m.Elapsed())
}

func TestGuessFailureLeavesSessionUntouched(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 1}}
	m, _ := startedMachine(t, gw)
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)
	before := m.Snapshot()

	gw.guessErr = errors.New("timeout")
	_, err = m.SubmitGuess(context.Background(), "5678")
	require.Error(t, err)

	after := m.Snapshot()
	require.Equal(t, before.GuessCount, after.GuessCount)
	require.Equal(t, len(before.History), len(after.History))
	require.Equal(t, before.Status, after.Status)
}

func TestSubmitGuessWhilePausedNeverCallsNetwork(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 0}}
	m, _ := startedMachine(t, gw)
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)
	calls := gw.guessCalls

	require.NoError(t, m.TogglePause())
	_, err = m.SubmitGuess(context.Background(), "5678")
	require.ErrorIs(t, err, ErrPaused)
	require.Equal(t, calls, gw.guessCalls)
}

func TestPauseExcludesPausedTime(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 0}}
	m, clk := startedMachine(t, gw)
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)

	clk.Advance(5 * time.Second)
	before := m.Elapsed()
	require.Equal(t, 5*time.Second, before)

	require.NoError(t, m.TogglePause())
	clk.Advance(90 * time.Second) // wall time passes, play time must not
	require.Equal(t, before, m.Elapsed(), "elapsed frozen while paused")

	require.NoError(t, m.TogglePause())
	require.Equal(t, before, m.Elapsed(), "resume adds zero")

	clk.Advance(3 * time.Second)
	require.Equal(t, before+3*time.Second, m.Elapsed())
}

func TestTogglePausePreconditions(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := startedMachine(t, gw)
	// Timer has not started: no accepted guess yet.
	require.ErrorIs(t, m.TogglePause(), ErrNotStarted)

	gw.guessRes = api.GuessResult{ExactMatches: 4, GameCompleted: true}
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)
	require.ErrorIs(t, m.TogglePause(), ErrFinished)
}

func TestWinningGuess(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 1, PartialMatches: 2, GuessCount: 1}}
	m, clk := startedMachine(t, gw)
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)

	clk.Advance(10 * time.Second)
	gw.guessRes = api.GuessResult{ExactMatches: 4, GameCompleted: true, GuessCount: 2, RankingID: "r9"}
	_, err = m.SubmitGuess(context.Background(), "5678")
	require.NoError(t, err)

	snap := m.Snapshot()
	require.Equal(t, StatusWon, snap.Status)
	require.Equal(t, "r9", snap.RankingID)
	require.Equal(t, 2, snap.GuessCount)

	// Timer frozen at the win instant.
	clk.Advance(time.Minute)
	require.Equal(t, 10*time.Second, m.Elapsed())

	// Terminal: no further guesses.
	_, err = m.SubmitGuess(context.Background(), "0123")
	require.ErrorIs(t, err, ErrFinished)
}

func TestStaleGuessResponseDiscarded(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 4, GameCompleted: true, RankingID: "r1"}}
	m, _ := startedMachine(t, gw)

	// While the guess request is in flight, the player starts a new game,
	// superseding g1. The late response must not touch the new session.
	gw.onGuess = func() {
		gw.createRes = api.CreateGameResult{GameID: "g2"}
		require.NoError(t, m.StartNewGame(context.Background(), "Alice"))
	}
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.ErrorIs(t, err, ErrStale)

	snap := m.Snapshot()
	require.Equal(t, "g2", snap.GameID)
	require.Equal(t, StatusNotStarted, snap.Status)
	require.Zero(t, snap.GuessCount)
	require.Empty(t, snap.History)
	require.Empty(t, snap.RankingID)
}

func TestSurrenderAnnotatesHistory(t *testing.T) {
	gw := &fakeGateway{guessRes: api.GuessResult{ExactMatches: 1, PartialMatches: 1}}
	m, _ := startedMachine(t, gw)
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)

	gw.surrRes = api.SurrenderResult{
		Answer:  "1357",
		History: []api.SurrenderRecord{{Guess: "1234"}},
	}
	res, err := m.Surrender(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1357", res.Answer)

	snap := m.Snapshot()
	require.Equal(t, StatusSurrendered, snap.Status)
	require.Equal(t, "1357", snap.Answer)
	require.Equal(t,
		[]Mark{MarkExact, MarkAbsent, MarkMisplaced, MarkAbsent},
		snap.History[0].Marks)

	// Terminal sink: no resume, no guesses.
	require.ErrorIs(t, m.TogglePause(), ErrFinished)
	_, err = m.SubmitGuess(context.Background(), "5678")
	require.ErrorIs(t, err, ErrFinished)
}

func TestSurrenderAppendsServerOnlyHistory(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := startedMachine(t, gw)

	gw.surrRes = api.SurrenderResult{
		Answer:  "1357",
		History: []api.SurrenderRecord{{Guess: "7531"}},
	}
	_, err := m.Surrender(context.Background())
	require.NoError(t, err)

	snap := m.Snapshot()
	require.Len(t, snap.History, 1)
	require.Equal(t, "7531", snap.History[0].Guess)
	require.NotNil(t, snap.History[0].Marks)
}

func TestSurrenderPreconditions(t *testing.T) {
	gw := &fakeGateway{}
	m, _ := newTestMachine(gw)
	_, err := m.Surrender(context.Background())
	require.ErrorIs(t, err, ErrNoGame)
}

func TestOnChangeFiresPerTransition(t *testing.T) {
	gw := &fakeGateway{
		createRes: api.CreateGameResult{GameID: "g1"},
		guessRes:  api.GuessResult{ExactMatches: 0, PartialMatches: 2},
	}
	m, _ := newTestMachine(gw)

	var seen []Status
	m.OnChange(func(s Snapshot) { seen = append(seen, s.Status) })

	require.NoError(t, m.StartNewGame(context.Background(), "Alice"))
	_, err := m.SubmitGuess(context.Background(), "1234")
	require.NoError(t, err)
	require.NoError(t, m.TogglePause())

	require.NotEmpty(t, seen)
	require.Equal(t, StatusPaused, seen[len(seen)-1])
	require.Contains(t, seen, StatusRunning)
}
