// internal/api/types.go
//
// Wire types for the game backend contract.
// One struct per request/response payload; field names follow the JSON the
// backend emits. No behavior lives here.

package api

// CreateGameResult is returned by POST /game/new.
type CreateGameResult struct {
	GameID string `json:"gameId"`
}

// GuessResult is returned by POST /game/guess.
// ExactMatches==4 is equivalent to GameCompleted==true.
type GuessResult struct {
	ExactMatches    int    `json:"exactMatches"`
	PartialMatches  int    `json:"partialMatches"`
	GameCompleted   bool   `json:"gameCompleted"`
	GuessCount      int    `json:"guessCount"`
	DurationSeconds int    `json:"durationSeconds"`
	RankingID       string `json:"rankingId,omitempty"`
}

// SurrenderRecord is one historical guess echoed back on surrender.
type SurrenderRecord struct {
	Guess string `json:"guess"`
}

// SurrenderResult is returned by POST /game/surrender. The answer and
// history are authoritative; surrendered games never appear in the ranking.
type SurrenderResult struct {
	Answer  string            `json:"answer"`
	History []SurrenderRecord `json:"history"`
}

// HintResult is returned by GET /game/hint. Read-only, no state change.
type HintResult struct {
	Position int    `json:"position"`
	Digit    string `json:"digit"`
}

// RankingRow is one leaderboard entry from GET /ranking.
type RankingRow struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	GuessCount      int     `json:"guessCount"`
	DurationSeconds float64 `json:"durationSeconds"`
}

// VersionInfo is returned by GET /version. Display only.
type VersionInfo struct {
	MainVersion  string `json:"mainVersion"`
	MinorVersion string `json:"minorVersion"`
}

// AdminRankingRow is the admin view of a ranking row, including the raw
// start/end timestamps hidden from the public leaderboard.
type AdminRankingRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Duration   float64 `json:"duration"`
	GuessCount int     `json:"guessCount"`
}

// AdminRankingUpdate is the payload for PUT /admin/rankings/{id}.
type AdminRankingUpdate struct {
	Name       string  `json:"name"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Duration   float64 `json:"duration"`
	GuessCount int     `json:"guessCount"`
}
