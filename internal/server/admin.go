// internal/server/admin.go
//
// Admin surface: login/logout plus CRUD over ranking rows.
// Sessions are HS256 JWTs handed out on login and presented as bearer
// tokens; every gated route answers 401 on a missing/invalid token, which
// the client interprets as "drop credentials, show the login screen".
//
// The admin account is a single username + bcrypt hash from the
// environment; no admin surface is mounted without the hash.

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"guessnumber/internal/rank"
)

const sessionTTL = 24 * time.Hour

// mountAdmin registers /admin routes.
func (s *Server) mountAdmin() {
	if s.cfg.AdminPassHash == "" {
		log.Warn().Msg("ADMIN_PASS_HASH unset, admin surface disabled")
		return
	}
	s.r.Post("/admin/login", s.handleAdminLogin)
	s.r.Post("/admin/logout", s.handleAdminLogout)
	s.r.Route("/admin/rankings", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/", s.handleAdminList)
		r.Put("/{id}", s.handleAdminUpdate)
		r.Delete("/{id}", s.handleAdminDelete)
	})
}

type adminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAdminLogin verifies credentials and issues a session token.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if req.Username != s.cfg.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPassHash), []byte(req.Password)) != nil {
		http.Error(w, `{"error":"invalid username or password"}`, http.StatusUnauthorized)
		return
	}
	exp := time.Now().Add(sessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": req.Username,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	tok, err := t.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Info().Str("user", req.Username).Msg("admin login")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "sessionToken": tok})
}

// handleAdminLogout exists so clients have an explicit logout hook; tokens
// are stateless, so there is nothing to revoke server-side.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// requireAdmin enforces a valid bearer session token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		if sub, _ := claims["sub"].(string); sub != s.cfg.AdminUser {
			http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// ------------------------------ CRUD ---------------------------------------

type adminRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Duration   float64 `json:"duration"`
	GuessCount int     `json:"guessCount"`
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.ranks.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("admin list rankings")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	out := make([]adminRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, adminRow{
			ID:         strconv.FormatInt(row.ID, 10),
			Name:       row.Name,
			StartTime:  row.StartTime.UTC().Format(time.RFC3339),
			EndTime:    row.EndTime.UTC().Format(time.RFC3339),
			Duration:   row.Duration,
			GuessCount: row.GuessCount,
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

type adminUpdateReq struct {
	Name       string  `json:"name"`
	StartTime  string  `json:"startTime"`
	EndTime    string  `json:"endTime"`
	Duration   float64 `json:"duration"`
	GuessCount int     `json:"guessCount"`
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"bad id"}`, http.StatusBadRequest)
		return
	}
	var req adminUpdateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	row, err := validateAdminUpdate(id, req)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.ranks.Update(r.Context(), row); err != nil {
		if errIsNoRows(err) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("admin update ranking")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"bad id"}`, http.StatusBadRequest)
		return
	}
	if err := s.ranks.Delete(r.Context(), id); err != nil {
		if errIsNoRows(err) {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("admin delete ranking")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// validateAdminUpdate enforces the same field bounds the admin UI applies.
func validateAdminUpdate(id int64, req adminUpdateReq) (rank.Row, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return rank.Row{}, errBadField("name must not be empty")
	}
	if len(name) > 50 {
		return rank.Row{}, errBadField("name must be at most 50 chars")
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return rank.Row{}, errBadField("startTime must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return rank.Row{}, errBadField("endTime must be RFC3339")
	}
	if !end.After(start) {
		return rank.Row{}, errBadField("endTime must be after startTime")
	}
	if req.Duration <= 0 || req.Duration > 86400 {
		return rank.Row{}, errBadField("duration must be in (0, 86400]")
	}
	if req.GuessCount <= 0 || req.GuessCount > 1000 {
		return rank.Row{}, errBadField("guessCount must be in (0, 1000]")
	}
	return rank.Row{
		ID:         id,
		Name:       name,
		StartTime:  start,
		EndTime:    end,
		Duration:   req.Duration,
		GuessCount: req.GuessCount,
	}, nil
}

type errBadField string

func (e errBadField) Error() string { return string(e) }
