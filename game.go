package parkle

import (
	"errors"
	"math/rand"
)

// DefaultMaxGuesses is the per-round guess budget.
const DefaultMaxGuesses = 6

var (
	// ErrNoMatch means the guess resolved to no park. It is a normal
	// "try again" outcome and does not consume a guess.
	ErrNoMatch = errors.New("no park matches guess")

	// ErrGameOver means the round has already ended.
	ErrGameOver = errors.New("game is over")

	// ErrEmptyCatalog means a game cannot be started without parks.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// GuessResult is the feedback for one resolved guess: which park the
// guess matched, how far it is from the target, and which way to go.
type GuessResult struct {
	Guess     string           `json:"guess"`
	Park      Park             `json:"park"`
	Distance  float64          `json:"distance_miles"`
	Direction CompassDirection `json:"direction"`
	Correct   bool             `json:"correct"`
}

// Stats tracks play results across rounds. It is owned by the caller
// and only updated when a round ends.
type Stats struct {
	Score      int `json:"score"`
	Streak     int `json:"streak"`
	TotalGames int `json:"total_games"`
}

// Game is one round: a hidden target park and the guesses made so far.
// Game holds all session state explicitly; the matcher and geodesy
// functions it calls are pure. Not safe for concurrent use — callers
// that share a Game across goroutines must synchronize.
type Game struct {
	Target     Park
	Guesses    []GuessResult
	MaxGuesses int
	Over       bool
	Won        bool

	catalog Catalog
	stats   *Stats
}

// NewGame starts a round with a random target from the catalog. The
// caller supplies the random source (fixed seeds give reproducible
// rounds in tests) and a Stats value to update when the round ends;
// stats may be nil.
func NewGame(catalog Catalog, stats *Stats, rng *rand.Rand) (*Game, error) {
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &Game{
		Target:     catalog[rng.Intn(len(catalog))],
		MaxGuesses: DefaultMaxGuesses,
		catalog:    catalog,
		stats:      stats,
	}, nil
}

// GuessesLeft returns how many guesses remain in the round.
func (g *Game) GuessesLeft() int {
	return g.MaxGuesses - len(g.Guesses)
}

// Submit resolves one guess and records the feedback. A guess that
// matches no park returns ErrNoMatch and costs nothing. A correct
// guess wins and ends the round; exhausting the budget loses it.
func (g *Game) Submit(text string) (GuessResult, error) {
	if g.Over {
		return GuessResult{}, ErrGameOver
	}

	matched, ok := Resolve(text, g.catalog)
	if !ok {
		return GuessResult{}, ErrNoMatch
	}

	result := GuessResult{
		Guess:     text,
		Park:      matched,
		Distance:  Distance(matched.Coordinate(), g.Target.Coordinate()),
		Direction: Direction(matched.Coordinate(), g.Target.Coordinate()),
		Correct:   matched.Name == g.Target.Name,
	}
	g.Guesses = append(g.Guesses, result)

	if result.Correct {
		g.Over = true
		g.Won = true
		if g.stats != nil {
			g.stats.Score++
			g.stats.Streak++
			g.stats.TotalGames++
		}
	} else if len(g.Guesses) >= g.MaxGuesses {
		g.Over = true
		if g.stats != nil {
			g.stats.Streak = 0
			g.stats.TotalGames++
		}
	}

	return result, nil
}

// GiveUp ends the round as a loss.
func (g *Game) GiveUp() {
	if g.Over {
		return
	}
	g.Over = true
	if g.stats != nil {
		g.stats.Streak = 0
		g.stats.TotalGames++
	}
}
