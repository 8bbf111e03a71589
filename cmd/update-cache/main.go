// Command update-cache refreshes the local park catalog cache from the
// NPS API, ignoring any cached data.
//
// Usage:
//
//	NPS_API_KEY=... go run ./cmd/update-cache
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"parkle"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("NPS_API_KEY")
	if apiKey == "" {
		apiKey = "DEMO_KEY"
	}

	fmt.Println("Fetching park catalog from the NPS API...")

	if err := parkle.RegenerateCache(parkle.WithAPIKey(apiKey)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Catalog cache regenerated successfully.")
}
