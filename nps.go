package parkle

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// defaultBaseURL is the public NPS API.
const defaultBaseURL = "https://developer.nps.gov/api/v1"

// fetchLimit asks for a large page so one request covers the full unit
// list (the NPS catalog is well under 500 units).
const fetchLimit = 500

// httpClient is a shared HTTP client with a reasonable timeout.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// NPS API wire types. Latitude and longitude arrive as strings.
type npsImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
	Caption string `json:"caption"`
}

type npsAddress struct {
	City      string `json:"city"`
	StateCode string `json:"stateCode"`
}

type npsPark struct {
	FullName    string       `json:"fullName"`
	ParkCode    string       `json:"parkCode"`
	Description string       `json:"description"`
	Latitude    string       `json:"latitude"`
	Longitude   string       `json:"longitude"`
	Images      []npsImage   `json:"images"`
	Addresses   []npsAddress `json:"addresses"`
}

type npsResponse struct {
	Data []npsPark `json:"data"`
}

// fetchParks requests the park list from the NPS API and converts it to
// Park records. Records with unparseable coordinates are skipped rather
// than stored at (0,0), which would silently place them at Null Island.
func fetchParks(baseURL, apiKey string) ([]Park, error) {
	u, err := url.Parse(baseURL + "/parks")
	if err != nil {
		return nil, fmt.Errorf("parsing NPS URL: %w", err)
	}
	q := u.Query()
	q.Set("fields", "images,addresses")
	q.Set("limit", strconv.Itoa(fetchLimit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building NPS request: %w", err)
	}
	req.Header.Set("X-Api-Key", apiKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP GET %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading NPS response: %w", err)
	}

	var payload npsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding NPS response: %w", err)
	}

	parks := make([]Park, 0, len(payload.Data))
	for _, raw := range payload.Data {
		if len(raw.Images) == 0 || len(raw.Addresses) == 0 {
			continue
		}

		lat, errLat := strconv.ParseFloat(raw.Latitude, 64)
		lng, errLng := strconv.ParseFloat(raw.Longitude, 64)
		if errLat != nil || errLng != nil {
			continue
		}

		parks = append(parks, Park{
			Name:        raw.FullName,
			Code:        raw.ParkCode,
			Description: raw.Description,
			State:       raw.Addresses[0].StateCode,
			ImageURL:    raw.Images[0].URL,
			ImageAlt:    raw.Images[0].AltText,
			Latitude:    lat,
			Longitude:   lng,
		})
	}
	return parks, nil
}
