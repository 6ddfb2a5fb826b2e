// internal/ui/app.go
//
// Terminal front end: the single event loop driving the session machine.
// Responsibilities:
//   - Read line-based commands from stdin, one handler per event, run to
//     completion before the next line is read.
//   - Re-render after every state machine transition (change listener).
//   - Run the elapsed-time ticker: active only while Running, cancelled on
//     pause/terminal/replacement, and keyed by gameId so a stale ticker
//     never touches a newer session's display.
//   - Map every failure to a localized, transient message; stale responses
//     are swallowed silently.
//
// Commands:
//   <4 digits>   submit a guess          p   pause/resume
//   s            surrender (confirmed)   h N hint for position N (1-4)
//   r            rankings                n   new game
//   lang CODE    switch language         sym X Y  set result symbols
//   theme NAME   switch color theme      q   quit

package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"guessnumber/internal/api"
	"guessnumber/internal/i18n"
	"guessnumber/internal/input"
	"guessnumber/internal/prefs"
	"guessnumber/internal/session"
)

const tickInterval = time.Second

// App wires the machine, gateway, preferences, and localization to a
// line-based terminal.
type App struct {
	machine *session.Machine
	client  *api.Client
	bundle  *i18n.Bundle
	store   *prefs.Store

	in  *bufio.Scanner
	out io.Writer

	mu         sync.Mutex
	tickCancel context.CancelFunc // stops the active ticker, if any
}

// lockedWriter serializes writes from the event loop and the ticker
// goroutine. Each fmt.Fprint* call lands as a single Write.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// New constructs the App and restores persisted preferences (language,
// symbols) before the first render. Output is serialized so the ticker
// goroutine and the event loop never interleave mid-write.
func New(machine *session.Machine, client *api.Client, bundle *i18n.Bundle, store *prefs.Store, in io.Reader, out io.Writer) *App {
	a := &App{
		machine: machine,
		client:  client,
		bundle:  bundle,
		store:   store,
		in:      bufio.NewScanner(in),
		out:     &lockedWriter{w: out},
	}
	bundle.SetLanguage(store.Get(prefs.KeyLanguage, i18n.DefaultLanguage))
	machine.OnChange(a.onSessionChange)
	return a
}

// t and tp are shorthand for localized lookups.
func (a *App) t(key string) string { return a.bundle.T(key, nil) }
func (a *App) tp(key string, params map[string]string) string {
	return a.bundle.T(key, params)
}

func (a *App) symbols() Symbols {
	return Symbols{
		Exact:     a.store.Get(prefs.KeySymbolExact, "A"),
		Misplaced: a.store.Get(prefs.KeySymbolMisplaced, "B"),
	}
}

// Run is the event loop. It blocks until stdin closes or the player quits.
func (a *App) Run(ctx context.Context) error {
	a.printWelcome(ctx)

	name := a.promptName()
	if name == "" {
		return nil
	}
	a.startGame(ctx, name)

	for a.in.Scan() {
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "q", "quit", "exit":
			a.stopTicker()
			return a.in.Err()
		case "p":
			a.handlePause()
		case "s":
			a.handleSurrender(ctx)
		case "r":
			a.handleRanking(ctx)
		case "h":
			a.handleHint(ctx, fields)
		case "n":
			name := a.promptName()
			if name != "" {
				a.startGame(ctx, name)
			}
		case "lang":
			a.handleLanguage(fields)
		case "sym":
			a.handleSymbols(fields)
		case "theme":
			a.handleTheme(fields)
		default:
			a.handleGuess(ctx, line)
		}
	}
	a.stopTicker()
	return a.in.Err()
}

// ------------------------------ handlers -----------------------------------

func (a *App) printWelcome(ctx context.Context) {
	fmt.Fprintln(a.out, a.t("startScreen.title"))
	fmt.Fprintln(a.out, a.t("startScreen.subtitle"))
	sym := a.symbols()
	fmt.Fprintln(a.out, a.t("rules.title"))
	for _, key := range []string{"rules.rule1", "rules.rule2", "rules.rule3", "rules.rule4", "rules.rule5"} {
		fmt.Fprintln(a.out, "  "+a.tp(key, map[string]string{
			"symbolA": sym.Exact, "symbolB": sym.Misplaced,
		}))
	}
	if v, err := a.client.Version(ctx); err == nil {
		fmt.Fprintf(a.out, "%s%s.%s\n", a.t("footer.version"), v.MainVersion, v.MinorVersion)
	}
}

func (a *App) promptName() string {
	for {
		fmt.Fprintf(a.out, "%s: ", a.t("startScreen.playerNamePrompt"))
		if !a.in.Scan() {
			return ""
		}
		name := strings.TrimSpace(a.in.Text())
		if name != "" {
			return name
		}
		fmt.Fprintln(a.out, a.t("messages.enterName"))
	}
}

func (a *App) startGame(ctx context.Context, name string) {
	if err := a.machine.StartNewGame(ctx, name); err != nil {
		a.showError(err, "messages.cannotStartNewGame")
		return
	}
	fmt.Fprintf(a.out, "%s: ", a.t("game.guessPrompt"))
}

func (a *App) handleGuess(ctx context.Context, line string) {
	res, err := a.machine.SubmitGuess(ctx, line)
	if err != nil {
		if errors.Is(err, session.ErrStale) {
			return // superseded game, nothing to show
		}
		a.showError(err, "messages.errorOccurred")
		return
	}
	sym := a.symbols()
	if res.GameCompleted {
		a.renderVictory(a.out, a.machine.Snapshot())
		a.handleRanking(ctx)
		fmt.Fprintln(a.out, a.t("victory.playAgain"))
		return
	}
	fmt.Fprintln(a.out, a.tp("messages.resultKeepGoing", map[string]string{
		"a": strconv.Itoa(res.ExactMatches), "symbolA": sym.Exact,
		"b": strconv.Itoa(res.PartialMatches), "symbolB": sym.Misplaced,
	}))
}

func (a *App) handlePause() {
	wasPaused := a.machine.Snapshot().Status == session.StatusPaused
	if err := a.machine.TogglePause(); err != nil {
		a.showError(err, "messages.errorOccurred")
		return
	}
	if wasPaused {
		fmt.Fprintln(a.out, a.t("messages.gameResumed"))
	} else {
		fmt.Fprintln(a.out, a.t("messages.gamePaused"))
	}
}

// handleSurrender asks for explicit confirmation before any request is sent.
func (a *App) handleSurrender(ctx context.Context) {
	fmt.Fprintln(a.out, a.t("messages.confirmSurrender"))
	if !a.in.Scan() {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(a.in.Text()))
	if answer != "y" && answer != "yes" {
		return
	}
	res, err := a.machine.Surrender(ctx)
	if err != nil {
		if errors.Is(err, session.ErrStale) {
			return
		}
		a.showError(err, "messages.surrenderFailed")
		return
	}
	fmt.Fprintln(a.out, a.tp("messages.surrenderAnswer", map[string]string{"answer": res.Answer}))
}

func (a *App) handleRanking(ctx context.Context) {
	rows, err := a.client.Ranking(ctx)
	if err != nil {
		a.showError(err, "messages.cannotGetRanking")
		return
	}
	a.renderRanking(a.out, rows, a.machine.Snapshot().RankingID)
}

func (a *App) handleHint(ctx context.Context, fields []string) {
	snap := a.machine.Snapshot()
	if snap.GameID == "" {
		fmt.Fprintln(a.out, a.t("messages.startNewGame"))
		return
	}
	pos := 1
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			pos = n
		}
	}
	if pos < 1 || pos > input.GuessLength {
		pos = 1
	}
	res, err := a.client.Hint(ctx, snap.GameID, pos-1)
	if err != nil {
		a.showError(err, "messages.cannotGetHint")
		return
	}
	fmt.Fprintln(a.out, a.tp("hint.positionLabel", map[string]string{
		"position": strconv.Itoa(res.Position + 1),
		"digit":    res.Digit,
	}))
}

func (a *App) handleLanguage(fields []string) {
	if len(fields) < 2 {
		return
	}
	if a.bundle.SetLanguage(fields[1]) {
		a.store.Set(prefs.KeyLanguage, fields[1])
		fmt.Fprintln(a.out, a.t("messages.settingsSaved"))
	}
}

// handleTheme switches the persisted color theme, or shows the active one
// when called without an argument.
func (a *App) handleTheme(fields []string) {
	if len(fields) < 2 {
		fmt.Fprintln(a.out, a.store.Get(prefs.KeyTheme, "original"))
		return
	}
	a.store.Set(prefs.KeyTheme, fields[1])
	fmt.Fprintln(a.out, a.t("messages.settingsSaved"))
}

func (a *App) handleSymbols(fields []string) {
	if len(fields) < 3 {
		return
	}
	a.store.Set(prefs.KeySymbolExact, fields[1])
	a.store.Set(prefs.KeySymbolMisplaced, fields[2])
	fmt.Fprintln(a.out, a.t("messages.settingsSaved"))
}

// showError translates a failure into a transient localized message.
// Validation and session preconditions have dedicated strings; deliberate
// server rejections are shown verbatim; anything else (transport) gets the
// generic retry message.
func (a *App) showError(err error, fallbackKey string) {
	switch {
	case errors.Is(err, input.ErrWrongLength):
		fmt.Fprintln(a.out, a.t("messages.enterFourDigits"))
	case errors.Is(err, input.ErrNotDigits):
		fmt.Fprintln(a.out, a.t("messages.digitsOnly"))
	case errors.Is(err, input.ErrDuplicateDigits):
		fmt.Fprintln(a.out, a.t("messages.noRepeat"))
	case errors.Is(err, session.ErrPaused):
		fmt.Fprintln(a.out, a.t("messages.gameIsPaused"))
	case errors.Is(err, session.ErrNoGame):
		fmt.Fprintln(a.out, a.t("messages.startNewGame"))
	case errors.Is(err, session.ErrNotStarted):
		fmt.Fprintln(a.out, a.t("messages.startGameFirst"))
	case errors.Is(err, session.ErrFinished):
		fmt.Fprintln(a.out, a.t("messages.gameEnded"))
	case api.IsRejection(err):
		fmt.Fprintln(a.out, err.Error())
	default:
		log.Debug().Err(err).Msg("transport failure")
		fmt.Fprintln(a.out, a.t(fallbackKey))
	}
}

// ------------------------------ ticker -------------------------------------

// onSessionChange re-renders and reconciles the ticker with the new state.
func (a *App) onSessionChange(snap session.Snapshot) {
	a.renderStatus(a.out, snap)
	a.renderHistory(a.out, snap, a.symbols())

	if snap.Status == session.StatusRunning {
		a.startTicker(snap.GameID)
	} else {
		a.stopTicker()
	}
}

// startTicker starts the repeating elapsed-time display for gameID,
// replacing any previous ticker. The goroutine re-checks the snapshot on
// every tick and exits as soon as the game it was started for is no longer
// the running one.
func (a *App) startTicker(gameID string) {
	a.mu.Lock()
	if a.tickCancel != nil {
		a.tickCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.tickCancel = cancel
	a.mu.Unlock()

	go func() {
		t := time.NewTicker(tickInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				snap := a.machine.Snapshot()
				if snap.GameID != gameID || snap.Status != session.StatusRunning {
					return // stale ticker, never touch a newer session
				}
				fmt.Fprintf(a.out, "\r%s%ds ", a.t("game.elapsedTime"), int(snap.Elapsed.Seconds()))
			}
		}
	}()
}

func (a *App) stopTicker() {
	a.mu.Lock()
	if a.tickCancel != nil {
		a.tickCancel()
		a.tickCancel = nil
	}
	a.mu.Unlock()
}
