package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkle"
)

// singleParkCatalog makes the target deterministic: with one park,
// every new game targets it.
func singleParkCatalog() parkle.Catalog {
	return parkle.Catalog{
		{
			Name:      "Yellowstone National Park",
			Code:      "yell",
			State:     "WY",
			ImageURL:  "https://www.nps.gov/common/uploads/yell.jpg",
			Latitude:  44.60,
			Longitude: -110.50,
		},
	}
}

func newTestServer(t *testing.T, catalog parkle.Catalog) *Server {
	t.Helper()
	return New(catalog, prometheus.NewRegistry(), Config{
		ShareBaseURL: "http://parkle.test",
		Rand:         rand.New(rand.NewSource(1)),
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createGame(t *testing.T, srv *Server) gameStateResponse {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/games", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var state gameStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.NotEmpty(t, state.ID)
	return state
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	w := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewGameHidesAnswer(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	state := createGame(t, srv)

	assert.Equal(t, "https://www.nps.gov/common/uploads/yell.jpg", state.ImageURL)
	assert.Equal(t, parkle.DefaultMaxGuesses, state.GuessesLeft)
	assert.False(t, state.Over)
	assert.Nil(t, state.Answer, "answer must be hidden while the round is live")
	assert.Empty(t, state.Guesses)
}

func TestGuessFlow(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	state := createGame(t, srv)

	// A guess that resolves to nothing is a 422, not a spent guess.
	w := doJSON(t, srv, http.MethodPost, "/games/"+state.ID+"/guesses", guessRequest{Guess: "national park"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/games/"+state.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mid gameStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mid))
	assert.Equal(t, parkle.DefaultMaxGuesses, mid.GuessesLeft)

	// The only park in the catalog is the target, so naming it wins.
	w = doJSON(t, srv, http.MethodPost, "/games/"+state.ID+"/guesses", guessRequest{Guess: "yellowstone"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp guessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.Correct)
	assert.True(t, resp.State.Over)
	assert.True(t, resp.State.Won)
	require.NotNil(t, resp.State.Answer)
	assert.Equal(t, "yell", resp.State.Answer.Code)
	assert.Equal(t, 1, resp.State.Stats.Score)

	// The round is over; further guesses conflict.
	w = doJSON(t, srv, http.MethodPost, "/games/"+state.ID+"/guesses", guessRequest{Guess: "yellowstone"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGuessBadBody(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	state := createGame(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/games/"+state.ID+"/guesses", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGiveUpRevealsAnswer(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	state := createGame(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/games/"+state.ID+"/giveup", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var after gameStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))
	assert.True(t, after.Over)
	assert.False(t, after.Won)
	require.NotNil(t, after.Answer)
	assert.Equal(t, "Yellowstone National Park", after.Answer.Name)
}

func TestGameNotFound(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/games/nope"},
		{http.MethodPost, "/games/nope/giveup"},
		{http.MethodGet, "/games/nope/share"},
	} {
		w := doJSON(t, srv, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
	}

	w := doJSON(t, srv, http.MethodPost, "/games/nope/guesses", guessRequest{Guess: "yellowstone"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareQRCode(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	state := createGame(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/games/"+state.ID+"/share", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestNearby(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())

	w := doJSON(t, srv, http.MethodGet, "/parks/nearby?lat=44.5&lng=-110.4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp nearbyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "yell", resp.Park.Code)
	assert.Greater(t, resp.Distance, 0.0)

	w = doJSON(t, srv, http.MethodGet, "/parks/nearby?lat=abc&lng=-110.4", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/parks/nearby", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing near the middle of the Atlantic.
	w = doJSON(t, srv, http.MethodGet, "/parks/nearby?lat=30&lng=-40", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())
	createGame(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "parkle_games_started_total 1")
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	assert.Equal(t, 0, store.Len())

	s := &Session{ID: "abc"}
	store.Put(s)
	assert.Equal(t, 1, store.Len())

	got, ok := store.Get("abc")
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	store.Delete("abc")
	assert.Equal(t, 0, store.Len())
}

func TestConcurrentSessions(t *testing.T) {
	srv := newTestServer(t, singleParkCatalog())

	a := createGame(t, srv)
	b := createGame(t, srv)
	require.NotEqual(t, a.ID, b.ID)

	// Finishing one round leaves the other untouched.
	w := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/games/%s/giveup", a.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/games/"+b.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bState gameStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bState))
	assert.False(t, bState.Over)
}
