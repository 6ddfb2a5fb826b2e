// internal/server/server.go
//
// HTTP wiring for the guess-number backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/version", "/ranking".
//   - Game endpoints: POST /game/new, /game/guess, /game/surrender,
//     GET /game/hint.
//   - Admin endpoints (bearer token): /admin/login, /admin/logout,
//     /admin/rankings CRUD.
//   - Live games live in memory; only won games are persisted to SQLite.
//
// Notes:
//   - A 401 from any /admin route tells the client to drop its credential.
//   - Guess validation at this boundary mirrors the client's rules, so a
//     raw curl cannot corrupt a game.

package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"guessnumber/internal/config"
	"guessnumber/internal/input"
	"guessnumber/internal/live"
	"guessnumber/internal/rank"
	"guessnumber/internal/secret"
)

// Backend version, reported by GET /version.
const (
	mainVersion  = "2"
	minorVersion = "1"
)

// Server bundles router, live game store, and the rankings repo.
type Server struct {
	r     *chi.Mux
	games live.Store
	ranks *rank.Repo
	cfg   config.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(games live.Store, ranks *rank.Repo, cfg config.Server) *Server {
	s := &Server{r: chi.NewRouter(), games: games, ranks: ranks, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"guessnumber","endpoints":["/health","/version","/ranking","POST /game/new","POST /game/guess"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"mainVersion":  mainVersion,
			"minorVersion": minorVersion,
		})
	})

	// Game endpoints
	s.r.Post("/game/new", s.handleNewGame)
	s.r.Post("/game/guess", s.handleGuess)
	s.r.Post("/game/surrender", s.handleSurrender)
	s.r.Get("/game/hint", s.handleHint)

	// Public leaderboard
	s.r.Get("/ranking", s.handleRanking)

	// Admin surface (bearer token)
	s.mountAdmin()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to allowing localhost dev pages.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	PlayerName string `json:"playerName"`
}
type newGameRes struct {
	GameID string `json:"gameId"`
}

// handleNewGame creates a fresh in-memory game with a new secret.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.PlayerName == "" {
		http.Error(w, `{"error":"player name required"}`, http.StatusBadRequest)
		return
	}
	if len(req.PlayerName) > 50 {
		http.Error(w, `{"error":"player name too long"}`, http.StatusBadRequest)
		return
	}

	g := secret.New(req.PlayerName)
	if err := s.games.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("gameId", g.ID).Str("player", req.PlayerName).Msg("new game")
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: g.ID})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	ExactMatches    int    `json:"exactMatches"`
	PartialMatches  int    `json:"partialMatches"`
	GameCompleted   bool   `json:"gameCompleted"`
	GuessCount      int    `json:"guessCount"`
	DurationSeconds int    `json:"durationSeconds"`
	RankingID       string `json:"rankingId,omitempty"`
}

// handleGuess scores one guess and, on a win, persists the ranking row.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	guess := input.Normalize(req.Guess)
	if err := input.Validate(guess); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	g, err := s.games.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"game not found"}`, http.StatusNotFound)
		return
	}
	if g.Finished {
		http.Error(w, `{"error":"game finished"}`, http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	exact, partial := g.Apply(guess, now)
	if err := s.games.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	res := guessRes{
		ExactMatches:    exact,
		PartialMatches:  partial,
		GameCompleted:   g.Won,
		GuessCount:      len(g.History),
		DurationSeconds: int(g.Duration(now)),
	}
	if g.Won {
		id, err := s.ranks.Insert(r.Context(), rank.Row{
			Name:       g.PlayerName,
			StartTime:  g.FirstGuess,
			EndTime:    now,
			Duration:   g.Duration(now),
			GuessCount: len(g.History),
		})
		if err != nil {
			// The player still won; losing the ranking row is not fatal.
			log.Warn().Err(err).Str("gameId", g.ID).Msg("insert ranking row")
		} else {
			res.RankingID = strconv.FormatInt(id, 10)
		}
		s.games.Delete(r.Context(), g.ID)
		log.Info().Str("gameId", g.ID).Int("guesses", len(g.History)).Msg("game won")
	}
	_ = json.NewEncoder(w).Encode(res)
}

type surrenderReq struct {
	GameID string `json:"gameId"`
}
type surrenderRes struct {
	Answer  string             `json:"answer"`
	History []surrenderHistory `json:"history"`
}
type surrenderHistory struct {
	Guess string `json:"guess"`
}

// handleSurrender reveals the answer and echoes the guess history.
// Surrendered games never reach the rankings table.
func (s *Server) handleSurrender(w http.ResponseWriter, r *http.Request) {
	var req surrenderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := s.games.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"game not found"}`, http.StatusNotFound)
		return
	}
	if g.Finished {
		http.Error(w, `{"error":"game finished"}`, http.StatusBadRequest)
		return
	}
	g.Finished = true
	_ = s.games.Save(r.Context(), g)

	out := surrenderRes{Answer: g.Answer, History: make([]surrenderHistory, 0, len(g.History))}
	for _, h := range g.History {
		out.History = append(out.History, surrenderHistory{Guess: h.Guess})
	}
	s.games.Delete(r.Context(), g.ID)
	log.Info().Str("gameId", g.ID).Msg("game surrendered")
	_ = json.NewEncoder(w).Encode(out)
}

// handleHint reveals the secret digit at ?position= (0-based). Read-only.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	pos, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil || pos < 0 || pos >= secret.Digits {
		http.Error(w, `{"error":"position must be 0-3"}`, http.StatusBadRequest)
		return
	}
	g, err := s.games.Get(r.Context(), gameID)
	if err != nil {
		http.Error(w, `{"error":"game not found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"position": pos,
		"digit":    string(g.Answer[pos]),
	})
}

// ------------------------------ RANKING ------------------------------------

// handleRanking serves the public top-10 leaderboard.
func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ranks.Top(r.Context(), 10)
	if err != nil {
		log.Error().Err(err).Msg("load ranking")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	type entry struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		GuessCount      int     `json:"guessCount"`
		DurationSeconds float64 `json:"durationSeconds"`
	}
	out := make([]entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entry{
			ID:              strconv.FormatInt(row.ID, 10),
			Name:            row.Name,
			GuessCount:      row.GuessCount,
			DurationSeconds: row.Duration,
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

// errIsNoRows translates repo misses for admin handlers.
func errIsNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }
