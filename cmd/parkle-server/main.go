// Command parkle-server serves the park guessing game as a JSON API.
//
// Usage:
//
//	NPS_API_KEY=... go run ./cmd/parkle-server -addr :8080
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"parkle"
	"parkle/internal/server"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "listen address")
	cacheDir := flag.String("cache-dir", "./parkle-cache", "directory for the catalog cache")
	shareBase := flag.String("share-base-url", "http://localhost:8080", "base URL used in share links")
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
		log.Fatalf("loading park catalog: %v", err)
	}

	reg := prometheus.NewRegistry()
	srv := server.New(catalog, reg, server.Config{ShareBaseURL: *shareBase})

	log.Printf("parkle-server listening on %s (%d parks)", *addr, len(catalog))
	log.Fatal(http.ListenAndServe(*addr, srv))
}
