package parkle

import (
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// s2CellLevel determines the granularity of the S2 spatial index used
// to answer nearest-park queries. Level 8 cells are roughly 40km x 40km
// at the equator; parks are far sparser than cities, so a coarser level
// than a city geocoder would use keeps neighbor scans cheap without
// missing units.
const s2CellLevel = 8

// maxNearestDistance is ~300km in radians on the unit sphere. Nearest
// returns no result when the closest park is farther than this.
const maxNearestDistance = 0.047

// nearestCandidate pairs a park with its distance from the query point.
type nearestCandidate struct {
	park Park
	dist float64
}

// ParkIndex answers nearest-park queries over a fixed catalog using an
// S2 cell index. Safe for concurrent use after construction.
type ParkIndex struct {
	parks Catalog
	cells map[s2.CellID][]int
}

// NewParkIndex builds a spatial index over the given catalog. The
// catalog is retained by reference and must not be mutated afterward.
func NewParkIndex(catalog Catalog) *ParkIndex {
	ix := &ParkIndex{
		parks: catalog,
		cells: make(map[s2.CellID][]int),
	}
	for i, p := range catalog {
		ll := s2.LatLngFromDegrees(p.Latitude, p.Longitude)
		cell := s2.CellIDFromLatLng(ll).Parent(s2CellLevel)
		ix.cells[cell] = append(ix.cells[cell], i)
	}
	return ix
}

// cellAndNeighbors returns the given cell plus its edge and corner
// neighbors, nine cells in total.
func (ix *ParkIndex) cellAndNeighbors(cell s2.CellID) []s2.CellID {
	cells := make([]s2.CellID, 0, 9)
	cells = append(cells, cell)

	edgeNeighbors := cell.EdgeNeighbors()
	for i := 0; i < 4; i++ {
		cells = append(cells, edgeNeighbors[i])
	}

	seen := make(map[s2.CellID]bool)
	for _, c := range cells {
		seen[c] = true
	}
	for i := 0; i < 4; i++ {
		for _, corner := range edgeNeighbors[i].EdgeNeighbors() {
			if !seen[corner] {
				cells = append(cells, corner)
				seen[corner] = true
			}
		}
	}
	return cells
}

// Nearest returns the park closest to the given coordinates, or false
// when no park lies within the search radius. Ties on distance break by
// park name for full determinism.
func (ix *ParkIndex) Nearest(lat, lng float64) (Park, bool) {
	if math.IsNaN(lat) || math.IsNaN(lng) ||
		math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Park{}, false
	}

	queryLL := s2.LatLngFromDegrees(lat, lng)
	queryCell := s2.CellIDFromLatLng(queryLL).Parent(s2CellLevel)

	var candidates []nearestCandidate
	for _, cell := range ix.cellAndNeighbors(queryCell) {
		for _, idx := range ix.cells[cell] {
			p := ix.parks[idx]
			parkLL := s2.LatLngFromDegrees(p.Latitude, p.Longitude)
			dist := float64(queryLL.Distance(parkLL))
			candidates = append(candidates, nearestCandidate{park: p, dist: dist})
		}
	}

	if len(candidates) == 0 {
		return Park{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].park.Name < candidates[j].park.Name
	})

	best := candidates[0]
	if best.dist > maxNearestDistance {
		return Park{}, false
	}
	return best.park, true
}
