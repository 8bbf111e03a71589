// Package server exposes the park guessing game over HTTP as a small
// JSON API. All session state lives in memory; the target park is never
// revealed in responses until the round is over.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	qrcode "github.com/skip2/go-qrcode"

	"parkle"
)

// Config holds server construction options.
type Config struct {
	// ShareBaseURL is the externally visible base URL used to build
	// share links, e.g. "https://parkle.example.com".
	ShareBaseURL string
	// Rand is the random source for picking targets. Defaults to a
	// time-seeded source when nil.
	Rand *rand.Rand
}

// Server routes game API requests to an in-memory session store backed
// by a park catalog.
type Server struct {
	catalog parkle.Catalog
	index   *parkle.ParkIndex
	store   *SessionStore
	metrics *Metrics
	rng     *rand.Rand
	share   string
	router  chi.Router
}

// New builds a Server over the given catalog. The prometheus registry
// receives the game metrics and backs the /metrics endpoint.
func New(catalog parkle.Catalog, reg *prometheus.Registry, cfg Config) *Server {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Server{
		catalog: catalog,
		index:   parkle.NewParkIndex(catalog),
		store:   NewSessionStore(),
		metrics: NewMetrics(reg),
		rng:     rng,
		share:   cfg.ShareBaseURL,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.handleNewGame)
		r.Get("/{id}", s.handleGameState)
		r.Post("/{id}/guesses", s.handleGuess)
		r.Post("/{id}/giveup", s.handleGiveUp)
		r.Get("/{id}/share", s.handleShare)
	})
	r.Get("/parks/nearby", s.handleNearby)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type gameStateResponse struct {
	ID          string               `json:"id"`
	ImageURL    string               `json:"image_url"`
	ImageAlt    string               `json:"image_alt,omitempty"`
	Guesses     []parkle.GuessResult `json:"guesses"`
	GuessesLeft int                  `json:"guesses_left"`
	Over        bool                 `json:"over"`
	Won         bool                 `json:"won"`
	Stats       parkle.Stats         `json:"stats"`
	// Answer is only populated once the round is over.
	Answer *parkle.Park `json:"answer,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	stats := &parkle.Stats{}
	game, err := parkle.NewGame(s.catalog, stats, s.rng)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, err)
		return
	}

	session := &Session{
		ID:        uuid.NewString(),
		Game:      game,
		Stats:     stats,
		CreatedAt: time.Now(),
	}
	s.store.Put(session)
	s.metrics.GamesStarted.Inc()

	respondJSON(w, http.StatusCreated, s.stateOf(session))
}

func (s *Server) handleGameState(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("game not found"))
		return
	}
	session.Lock()
	defer session.Unlock()
	respondJSON(w, http.StatusOK, s.stateOf(session))
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type guessResponse struct {
	Result parkle.GuessResult `json:"result"`
	State  gameStateResponse  `json:"state"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("game not found"))
		return
	}

	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Errorf("decoding guess: %w", err))
		return
	}

	session.Lock()
	defer session.Unlock()

	result, err := session.Game.Submit(req.Guess)
	switch {
	case errors.Is(err, parkle.ErrGameOver):
		respondError(w, http.StatusConflict, err)
		return
	case errors.Is(err, parkle.ErrNoMatch):
		s.metrics.Guesses.WithLabelValues("nomatch").Inc()
		respondError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	if result.Correct {
		s.metrics.Guesses.WithLabelValues("correct").Inc()
		s.metrics.GamesFinished.WithLabelValues("won").Inc()
	} else {
		s.metrics.Guesses.WithLabelValues("wrong").Inc()
		if session.Game.Over {
			s.metrics.GamesFinished.WithLabelValues("lost").Inc()
		}
	}

	respondJSON(w, http.StatusOK, guessResponse{
		Result: result,
		State:  s.stateOf(session),
	})
}

func (s *Server) handleGiveUp(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("game not found"))
		return
	}

	session.Lock()
	defer session.Unlock()

	if !session.Game.Over {
		session.Game.GiveUp()
		s.metrics.GamesFinished.WithLabelValues("gaveup").Inc()
	}
	respondJSON(w, http.StatusOK, s.stateOf(session))
}

// handleShare renders a QR code PNG pointing at the game's share URL so
// a round can be handed to another player.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.store.Get(id); !ok {
		respondError(w, http.StatusNotFound, errors.New("game not found"))
		return
	}

	shareURL := fmt.Sprintf("%s/games/%s", s.share, id)
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("encoding QR code: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("warning: writing QR response: %v", err)
	}
}

type nearbyResponse struct {
	Park      parkle.Park             `json:"park"`
	Distance  float64                 `json:"distance_miles"`
	Direction parkle.CompassDirection `json:"direction"`
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		respondError(w, http.StatusBadRequest, errors.New("lat and lng query parameters are required"))
		return
	}

	park, ok := s.index.Nearest(lat, lng)
	if !ok {
		respondError(w, http.StatusNotFound, errors.New("no park nearby"))
		return
	}

	from := parkle.Coordinate{Lat: lat, Lng: lng}
	respondJSON(w, http.StatusOK, nearbyResponse{
		Park:      park,
		Distance:  parkle.Distance(from, park.Coordinate()),
		Direction: parkle.Direction(from, park.Coordinate()),
	})
}

// stateOf builds the client-visible view of a session. The target park
// is withheld until the round ends. Callers must hold the session lock.
func (s *Server) stateOf(session *Session) gameStateResponse {
	g := session.Game
	resp := gameStateResponse{
		ID:          session.ID,
		ImageURL:    g.Target.ImageURL,
		ImageAlt:    g.Target.ImageAlt,
		Guesses:     g.Guesses,
		GuessesLeft: g.GuessesLeft(),
		Over:        g.Over,
		Won:         g.Won,
		Stats:       *session.Stats,
	}
	if g.Over {
		answer := g.Target
		resp.Answer = &answer
	}
	if resp.Guesses == nil {
		resp.Guesses = []parkle.GuessResult{}
	}
	return resp
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("warning: encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
