// internal/ui/render.go
//
// Pure rendering: session snapshots, history, rankings, and localized
// messages written to an io.Writer. Nothing here originates state; every
// function takes what it prints as an argument.

package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"guessnumber/internal/api"
	"guessnumber/internal/session"
)

// Symbols is the player-chosen pair shown for exact/partial counts,
// e.g. "A"/"B" classic or "🎯"/"✔".
type Symbols struct {
	Exact     string
	Misplaced string
}

// renderStatus prints the one-line game header: player, guess count, clock.
func (a *App) renderStatus(w io.Writer, snap session.Snapshot) {
	elapsed := int(snap.Elapsed.Seconds())
	fmt.Fprintf(w, "%s%s  %s%d  %s%ds",
		a.t("game.player"), snap.PlayerName,
		a.t("game.guessCount"), snap.GuessCount,
		a.t("game.elapsedTime"), elapsed)
	switch snap.Status {
	case session.StatusPaused:
		fmt.Fprintf(w, "  [%s]", a.t("messages.gamePaused"))
	case session.StatusNotStarted:
		fmt.Fprintf(w, "  %s", a.t("messages.waitingForFirstGuess"))
	}
	fmt.Fprintln(w)
}

// renderHistory prints the guess table. After a surrender the per-digit
// marks are shown instead of the A/B counts.
func (a *App) renderHistory(w io.Writer, snap session.Snapshot, sym Symbols) {
	if len(snap.History) == 0 {
		return
	}
	fmt.Fprintf(w, "%-4s %-8s %-12s %s\n",
		"#", a.t("history.headerGuess"), a.t("history.headerResult"), a.t("history.headerTime"))
	for i, rec := range snap.History {
		result := a.formatResult(rec, sym)
		fmt.Fprintf(w, "%-4d %-8s %-12s %d\n", i+1, rec.Guess, result, rec.ElapsedSeconds)
	}
}

// formatResult renders one record: "2A1B" style while playing, the correct
// banner on a win, digit marks after surrender.
func (a *App) formatResult(rec session.GuessRecord, sym Symbols) string {
	if rec.Marks != nil {
		return formatMarks(rec.Marks, sym)
	}
	if rec.ExactMatches == 4 {
		return a.t("history.correct")
	}
	return fmt.Sprintf("%d%s%d%s", rec.ExactMatches, sym.Exact, rec.PartialMatches, sym.Misplaced)
}

// formatMarks shows the per-digit surrender annotation: the exact symbol,
// the misplaced symbol, or "-" for an absent digit.
func formatMarks(marks []session.Mark, sym Symbols) string {
	var b strings.Builder
	for _, m := range marks {
		switch m {
		case session.MarkExact:
			b.WriteString(sym.Exact)
		case session.MarkMisplaced:
			b.WriteString(sym.Misplaced)
		default:
			b.WriteString("-")
		}
	}
	return b.String()
}

// renderRanking prints the public leaderboard.
func (a *App) renderRanking(w io.Writer, rows []api.RankingRow, highlight string) {
	fmt.Fprintln(w, a.t("ranking.title"))
	fmt.Fprintf(w, "%-5s %-16s %-8s %s\n",
		a.t("ranking.headerRank"), a.t("ranking.headerName"),
		a.t("ranking.headerGuessCount"), a.t("ranking.headerDuration"))
	for i, row := range rows {
		marker := " "
		if highlight != "" && row.ID == highlight {
			marker = "*" // the row this session just earned
		}
		fmt.Fprintf(w, "%-5d %-16s %-8d %.1f %s\n",
			i+1, row.Name, row.GuessCount, row.DurationSeconds, marker)
	}
}

// renderVictory prints the win banner with interpolated stats.
func (a *App) renderVictory(w io.Writer, snap session.Snapshot) {
	fmt.Fprintln(w, a.t("victory.title"))
	fmt.Fprintln(w, a.tp("messages.congratulations", map[string]string{
		"playerName": snap.PlayerName,
		"guessCount": strconv.Itoa(snap.GuessCount),
		"duration":   strconv.Itoa(int(snap.Elapsed.Seconds())),
	}))
}
