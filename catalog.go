package parkle

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TomiHiltunen/geohash-golang"
)

// Park is a single catalog record: a named, geolocated NPS unit with
// the presentation data the game needs. Parks are immutable value
// records; the matcher and geodesy code never mutate them.
type Park struct {
	Name        string  // Full display name, e.g. "Glacier National Park"
	Code        string  // NPS park code, e.g. "glac"
	Description string
	State       string  // Primary state code, e.g. "MT"
	ImageURL    string
	ImageAlt    string
	Latitude    float64 // Degrees, [-90, 90]
	Longitude   float64 // Degrees, [-180, 180]
}

// Coordinate returns the park's location.
func (p Park) Coordinate() Coordinate {
	return Coordinate{Lat: p.Latitude, Lng: p.Longitude}
}

// validate fails fast on pathological records rather than letting them
// produce undefined ranking or geometry behavior downstream.
func (p Park) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("park %q: empty name", p.Code)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("park %q: latitude %v out of range", p.Name, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("park %q: longitude %v out of range", p.Name, p.Longitude)
	}
	return nil
}

// Catalog is an ordered collection of parks, sorted by name.
type Catalog []Park

func (c Catalog) Len() int           { return len(c) }
func (c Catalog) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }
func (c Catalog) Less(i, j int) bool { return strings.ToLower(c[i].Name) < strings.ToLower(c[j].Name) }

// geohashDedupePrecision controls location dedup granularity. Precision
// 6 cells are roughly 1.2km x 0.6km, enough to collapse duplicate API
// records for the same unit without merging distinct nearby parks.
const geohashDedupePrecision = 6

// CatalogConfig contains configuration options for catalog loading.
type CatalogConfig struct {
	CacheDir string // Directory for the gob cache file (default: "./parkle-cache")
	APIKey   string // NPS API key (default: DEMO_KEY)
	BaseURL  string // NPS API base URL, overridable for tests
}

// Option is a functional option for configuring catalog loading.
type Option func(*CatalogConfig)

// WithCacheDir sets the directory for the catalog cache file.
func WithCacheDir(dir string) Option {
	return func(c *CatalogConfig) {
		c.CacheDir = dir
	}
}

// WithAPIKey sets the NPS API key used when fetching.
func WithAPIKey(key string) Option {
	return func(c *CatalogConfig) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the NPS API base URL.
func WithBaseURL(url string) Option {
	return func(c *CatalogConfig) {
		c.BaseURL = url
	}
}

func defaultCatalogConfig() *CatalogConfig {
	return &CatalogConfig{
		CacheDir: "./parkle-cache",
		APIKey:   "DEMO_KEY",
		BaseURL:  defaultBaseURL,
	}
}

const catalogCacheFile = "catalog.dmp"

// NewCatalog returns the park catalog, loading the local gob cache when
// present and falling back to a fresh fetch from the NPS API (which is
// then cached for next time).
//
// Example:
//
//	catalog, err := parkle.NewCatalog(parkle.WithAPIKey(os.Getenv("NPS_API_KEY")))
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewCatalog(opts ...Option) (Catalog, error) {
	cfg := defaultCatalogConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if c, err := loadCachedCatalog(cfg.CacheDir); err == nil && len(c) > 0 {
		return c, nil
	}

	c, err := fetchCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("fetching park catalog: %w", err)
	}
	if err := c.store(cfg.CacheDir); err != nil {
		log.Printf("warning: failed to store catalog cache: %v", err)
	}
	return c, nil
}

// RegenerateCache fetches a fresh catalog from the NPS API and
// overwrites the local cache, ignoring any cached data.
func RegenerateCache(opts ...Option) error {
	cfg := defaultCatalogConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c, err := fetchCatalog(cfg)
	if err != nil {
		return fmt.Errorf("fetching park catalog: %w", err)
	}
	if err := c.store(cfg.CacheDir); err != nil {
		return fmt.Errorf("storing catalog cache: %w", err)
	}
	return nil
}

// fetchCatalog pulls raw park records from the API, filters out records
// the game cannot use, dedups by location and sorts by name.
func fetchCatalog(cfg *CatalogConfig) (Catalog, error) {
	parks, err := fetchParks(cfg.BaseURL, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return buildCatalog(parks), nil
}

// buildCatalog filters, dedups and sorts raw park records. Records with
// missing names, images or out-of-range coordinates are dropped here so
// the matcher and geodesy core only ever see well-formed parks.
func buildCatalog(parks []Park) Catalog {
	locationSeen := make(map[string]bool)
	catalog := make(Catalog, 0, len(parks))
	for _, p := range parks {
		if err := p.validate(); err != nil {
			log.Printf("info: skipping park: %v", err)
			continue
		}
		if p.ImageURL == "" || p.State == "" {
			continue
		}
		// Two records hashing to the same geohash cell are the same
		// physical unit listed twice; keep the first.
		key := geohash.EncodeWithPrecision(p.Latitude, p.Longitude, geohashDedupePrecision)
		if locationSeen[key] {
			continue
		}
		locationSeen[key] = true
		catalog = append(catalog, p)
	}
	sort.Sort(catalog)
	return catalog
}

// store saves the catalog to the gob disk cache.
func (c Catalog) store(cacheDir string) error {
	// 0755/0644 rather than world-writable: in shared environments a
	// writable cache would let other users replace the catalog.
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	b := new(bytes.Buffer)
	if err := gob.NewEncoder(b).Encode(c); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := os.WriteFile(filepath.Join(cacheDir, catalogCacheFile), b.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing catalog cache: %w", err)
	}
	return nil
}

func loadCachedCatalog(cacheDir string) (Catalog, error) {
	fh, err := os.Open(filepath.Join(cacheDir, catalogCacheFile))
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var c Catalog
	if err := gob.NewDecoder(fh).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding catalog cache: %w", err)
	}
	return c, nil
}
