// internal/api/client.go
//
// HTTP client for the game backend.
// Responsibilities:
//   - One method per backend endpoint; (de)serialization and HTTP-status
//     interpretation only, no game logic, no retries, no caching.
//   - Distinguish the three caller-visible outcomes: typed payload on 2xx,
//     *RejectionError on a non-2xx with a machine-readable reason, and a
//     wrapped transport error when no response arrived at all.
//   - Admin operations carry a bearer session token; any 401 drops the
//     stored token and returns ErrUnauthorized so the caller can fall back
//     to a logged-out state.
//
// Every request runs under a bounded timeout (client-level); the caller's
// context can shorten it further.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single request when no tighter deadline is given.
const DefaultTimeout = 10 * time.Second

// ErrUnauthorized signals that the admin session credential was rejected.
// The client has already dropped the stored token when this is returned.
var ErrUnauthorized = errors.New("api: unauthorized")

// RejectionError is a non-2xx response the server sent deliberately.
// Reason is surfaced verbatim to the user (localized at display time).
type RejectionError struct {
	Status int
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("api: rejected (%d): %s", e.Status, e.Reason)
}

// IsRejection reports whether err is a deliberate server rejection,
// as opposed to a transport failure.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// Client talks to the backend. Safe for use from the UI goroutines; the
// only mutable state is the admin token, guarded by a mutex.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.Mutex
	token string // admin session token; empty when logged out
}

// New constructs a Client for the given base URL ("http://host:port").
// timeout <= 0 falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// ------------------------------ game ---------------------------------------

// CreateGame starts a fresh game server-side and returns its identity.
func (c *Client) CreateGame(ctx context.Context, playerName string) (CreateGameResult, error) {
	var out CreateGameResult
	err := c.do(ctx, http.MethodPost, "/game/new",
		map[string]string{"playerName": playerName}, &out, false)
	return out, err
}

// SubmitGuess scores one guess against the given game.
func (c *Client) SubmitGuess(ctx context.Context, gameID, guess string) (GuessResult, error) {
	var out GuessResult
	err := c.do(ctx, http.MethodPost, "/game/guess",
		map[string]string{"gameId": gameID, "guess": guess}, &out, false)
	return out, err
}

// Surrender ends the game and returns the authoritative answer and history.
func (c *Client) Surrender(ctx context.Context, gameID string) (SurrenderResult, error) {
	var out SurrenderResult
	err := c.do(ctx, http.MethodPost, "/game/surrender",
		map[string]string{"gameId": gameID}, &out, false)
	return out, err
}

// Hint reveals the secret digit at the given position (read-only).
func (c *Client) Hint(ctx context.Context, gameID string, position int) (HintResult, error) {
	var out HintResult
	path := "/game/hint?gameId=" + gameID + "&position=" + strconv.Itoa(position)
	err := c.do(ctx, http.MethodGet, path, nil, &out, false)
	return out, err
}

// Ranking fetches the public top-N leaderboard.
func (c *Client) Ranking(ctx context.Context) ([]RankingRow, error) {
	var out []RankingRow
	err := c.do(ctx, http.MethodGet, "/ranking", nil, &out, false)
	return out, err
}

// Version fetches the backend version for display.
func (c *Client) Version(ctx context.Context) (VersionInfo, error) {
	var out VersionInfo
	err := c.do(ctx, http.MethodGet, "/version", nil, &out, false)
	return out, err
}

// ------------------------------ admin --------------------------------------

// AdminLogin exchanges credentials for a session token. The token is kept
// on the client and attached to subsequent admin requests.
func (c *Client) AdminLogin(ctx context.Context, username, password string) error {
	var out struct {
		SessionToken string `json:"sessionToken"`
	}
	err := c.do(ctx, http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": password}, &out, false)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = out.SessionToken
	c.mu.Unlock()
	return nil
}

// AdminLogout invalidates the session server-side (best effort) and always
// drops the local token.
func (c *Client) AdminLogout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/admin/logout", nil, nil, true)
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
	if errors.Is(err, ErrUnauthorized) {
		return nil // already logged out server-side
	}
	return err
}

// LoggedIn reports whether an admin session token is held.
func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

// AdminRankings lists all ranking rows (admin view).
func (c *Client) AdminRankings(ctx context.Context) ([]AdminRankingRow, error) {
	var out []AdminRankingRow
	err := c.do(ctx, http.MethodGet, "/admin/rankings", nil, &out, true)
	return out, err
}

// AdminUpdateRanking overwrites one ranking row.
func (c *Client) AdminUpdateRanking(ctx context.Context, id string, upd AdminRankingUpdate) error {
	return c.do(ctx, http.MethodPut, "/admin/rankings/"+id, upd, nil, true)
}

// AdminDeleteRanking removes one ranking row.
func (c *Client) AdminDeleteRanking(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/rankings/"+id, nil, nil, true)
}

// ------------------------------ plumbing -----------------------------------

// do runs one request/response cycle.
// body (if non-nil) is JSON-encoded; out (if non-nil) decoded from a 2xx
// response. admin attaches the bearer token and enables 401 handling.
func (c *Client) do(ctx context.Context, method, path string, body, out any, admin bool) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		c.mu.Lock()
		tok := c.token
		c.mu.Unlock()
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer res.Body.Close()

	if admin && res.StatusCode == http.StatusUnauthorized {
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &RejectionError{Status: res.StatusCode, Reason: decodeReason(res.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response")
		}
	}
	return nil
}

// decodeReason pulls a machine-readable reason out of an error body.
// Understands {"error": "..."} and {"detail": "..."}; falls back to the
// raw body text.
func decodeReason(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "unknown error"
	}
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return string(raw)
}
