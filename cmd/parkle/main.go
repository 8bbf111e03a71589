// Command parkle plays the park guessing game in the terminal.
//
// A random park is chosen from the NPS catalog; you get six guesses,
// and after each one the game tells you which park you named, how far
// it is from the target, and which direction to look.
//
// Usage:
//
//	NPS_API_KEY=... go run ./cmd/parkle
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"parkle"
)

func main() {
	// .env is optional; real deployments set NPS_API_KEY directly.
	_ = godotenv.Load()

	cacheDir := flag.String("cache-dir", "./parkle-cache", "directory for the catalog cache")
	flag.Parse()

	apiKey := os.Getenv("NPS_API_KEY")
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}

	catalog, err := parkle.NewCatalog(
		parkle.WithAPIKey(apiKey),
		parkle.WithCacheDir(*cacheDir),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading park catalog: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	stats := &parkle.Stats{}
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Loaded %d parks. Guess the park! You have %d guesses per round.\n",
		len(catalog), parkle.DefaultMaxGuesses)
	fmt.Println("Commands: 'giveup' ends the round, 'quit' exits.")

	for {
		game, err := parkle.NewGame(catalog, stats, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("\nNew round. Image: %s\n", game.Target.ImageURL)
		if game.Target.ImageAlt != "" {
			fmt.Printf("Hint: %s\n", game.Target.ImageAlt)
		}

		if !playRound(game, scanner) {
			fmt.Printf("\nFinal stats: %d wins, %d games played.\n", stats.Score, stats.TotalGames)
			return
		}

		fmt.Printf("Score: %d  Streak: %d  Games: %d\n", stats.Score, stats.Streak, stats.TotalGames)
	}
}

// playRound runs one round; it returns false when the player quits.
func playRound(game *parkle.Game, scanner *bufio.Scanner) bool {
	for !game.Over {
		fmt.Printf("[%d guesses left] > ", game.GuessesLeft())
		if !scanner.Scan() {
			return false
		}
		text := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(text) {
		case "quit", "exit":
			return false
		case "giveup":
			game.GiveUp()
			continue
		case "":
			continue
		}

		result, err := game.Submit(text)
		if err != nil {
			fmt.Println("No park matches that guess. Try a different name.")
			continue
		}

		if result.Correct {
			fmt.Printf("Correct! It's %s.\n", game.Target.Name)
		} else {
			fmt.Printf("Not quite — that's %s: %.0f mi %s %s\n",
				result.Park.Name, result.Distance, result.Direction, result.Direction.Arrow())
		}
	}

	if !game.Won {
		fmt.Printf("Round over. The answer was %s, in %s.\n",
			game.Target.Name, parkle.StateName(game.Target.State))
	}
	return true
}
