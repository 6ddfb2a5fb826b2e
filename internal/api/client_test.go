package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitGuessDecodesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/game/guess", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "g1", body["gameId"])
		assert.Equal(t, "1234", body["guess"])
		_, _ = w.Write([]byte(`{"exactMatches":1,"partialMatches":2,"gameCompleted":false,"guessCount":1,"durationSeconds":3}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	res, err := c.SubmitGuess(context.Background(), "g1", "1234")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExactMatches)
	assert.Equal(t, 2, res.PartialMatches)
	assert.False(t, res.GameCompleted)
	assert.Equal(t, 3, res.DurationSeconds)
}

func TestRejectionCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"game finished"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.SubmitGuess(context.Background(), "g1", "1234")
	require.Error(t, err)
	require.True(t, IsRejection(err))

	var re *RejectionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "game finished", re.Reason)
}

func TestTransportFailureIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(srv.URL, 0)
	_, err := c.CreateGame(context.Background(), "Alice")
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}

func TestAdminLoginAttachesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/login":
			_, _ = w.Write([]byte(`{"success":true,"sessionToken":"tok123"}`))
		case "/admin/rankings":
			assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	require.NoError(t, c.AdminLogin(context.Background(), "admin", "pw"))
	require.True(t, c.LoggedIn())

	_, err := c.AdminRankings(context.Background())
	require.NoError(t, err)
}

func TestAdmin401DropsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/login" {
			_, _ = w.Write([]byte(`{"sessionToken":"expired"}`))
			return
		}
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	require.NoError(t, c.AdminLogin(context.Background(), "admin", "pw"))

	_, err := c.AdminRankings(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.LoggedIn(), "401 must drop the local credential")
}

func TestDecodeReasonFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := New(srv.URL, 0)
	_, err := c.Ranking(context.Background())
	var re *RejectionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "upstream down", re.Reason)
}
