package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the game server.
type Metrics struct {
	GamesStarted  prometheus.Counter
	GamesFinished *prometheus.CounterVec
	Guesses       *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on the given registerer.
// Using an explicit registerer (rather than the default registry) keeps
// tests from colliding on duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "parkle_games_started_total",
			Help: "Total number of game rounds started.",
		}),
		GamesFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parkle_games_finished_total",
			Help: "Total number of game rounds finished, by outcome.",
		}, []string{"outcome"}), // won, lost, gaveup
		Guesses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parkle_guesses_total",
			Help: "Total number of guesses submitted, by result.",
		}, []string{"result"}), // correct, wrong, nomatch
	}
}
