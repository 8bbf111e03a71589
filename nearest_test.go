package parkle

import (
	"math"
	"testing"
)

func TestParkIndexNearest(t *testing.T) {
	ix := NewParkIndex(testCatalog())

	tests := []struct {
		name     string
		lat, lng float64
		wantCode string
	}{
		{"exactly at yellowstone", 44.60, -110.50, "yell"},
		{"jackson hole", 43.48, -110.76, "grte"},
		{"bar harbor", 44.3876, -68.2039, "acad"},
		{"moab", 38.57, -109.55, "arch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ix.Nearest(tt.lat, tt.lng)
			if !ok {
				t.Fatalf("Nearest(%v, %v) found nothing", tt.lat, tt.lng)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Nearest(%v, %v) = %q, want code %q", tt.lat, tt.lng, got.Name, tt.wantCode)
			}
		})
	}
}

func TestParkIndexNearestNoResult(t *testing.T) {
	ix := NewParkIndex(testCatalog())

	// Middle of the Atlantic: nothing anywhere near.
	if p, ok := ix.Nearest(30.0, -40.0); ok {
		t.Errorf("Nearest(atlantic) = %q, want no result", p.Name)
	}
}

func TestParkIndexNearestInvalidInput(t *testing.T) {
	ix := NewParkIndex(testCatalog())

	for _, c := range []Coordinate{
		{math.NaN(), -110},
		{44, math.NaN()},
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
	} {
		if _, ok := ix.Nearest(c.Lat, c.Lng); ok {
			t.Errorf("Nearest(%v, %v) returned a result for invalid input", c.Lat, c.Lng)
		}
	}
}

func TestParkIndexEmptyCatalog(t *testing.T) {
	ix := NewParkIndex(nil)
	if _, ok := ix.Nearest(44.60, -110.50); ok {
		t.Error("Nearest on empty index returned a result")
	}
}
