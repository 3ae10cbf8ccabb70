package geo

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"

	gocache "github.com/patrickmn/go-cache"

	"wardwatch/internal/models"
)

// Collection is a minimal GeoJSON FeatureCollection of ward boundaries.
type Collection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

type Properties struct {
	WardID     string `json:"ward_id"`
	Name       string `json:"name"`
	Population int    `json:"population,omitempty"`
}

type Geometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// Index provides lookups over the ward boundary set. Centroids are
// derived once from boundary geometry and cached; they never change for
// a ward_id within a session.
type Index struct {
	collection *Collection
	byID       map[string]*Feature
	centroids  *gocache.Cache
}

// NewIndex builds an index over the given collection.
func NewIndex(c *Collection) *Index {
	ix := &Index{
		collection: c,
		byID:       make(map[string]*Feature, len(c.Features)),
		centroids:  gocache.New(gocache.NoExpiration, 0),
	}
	for i := range c.Features {
		f := &c.Features[i]
		ix.byID[f.Properties.WardID] = f
	}
	return ix
}

// LoadIndex reads a ward boundary GeoJSON file. A missing file falls
// back to a generated placeholder set so development keeps working
// without the real boundary data.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Ward GeoJSON file not found at %s, using placeholder wards", path)
			return NewIndex(PlaceholderCollection()), nil
		}
		return nil, fmt.Errorf("failed to read ward file %s: %w", path, err)
	}

	var c Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse ward GeoJSON: %w", err)
	}
	log.Printf("Loaded %d ward boundaries", len(c.Features))
	return NewIndex(&c), nil
}

// PlaceholderCollection builds a deterministic 24-ward grid around the
// Mumbai city center for development and tests.
func PlaceholderCollection() *Collection {
	const (
		baseLat = 19.0760
		baseLng = 72.8777
		r       = 0.005
	)

	c := &Collection{Type: "FeatureCollection"}
	for i := 0; i < 24; i++ {
		lat := baseLat + float64(i/6-2)*0.02
		lng := baseLng + float64(i%6-3)*0.02
		polygon := [][2]float64{
			{lng - r, lat - r},
			{lng + r, lat - r},
			{lng + r, lat + r},
			{lng - r, lat + r},
			{lng - r, lat - r},
		}
		c.Features = append(c.Features, Feature{
			Type: "Feature",
			Properties: Properties{
				WardID: fmt.Sprintf("W%02d", i+1),
				Name:   fmt.Sprintf("Ward %d", i+1),
			},
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: [][][2]float64{polygon},
			},
		})
	}
	return c
}

// Collection returns the underlying feature collection.
func (ix *Index) Collection() *Collection {
	return ix.collection
}

// WardIDs lists the ward identifiers in feature order.
func (ix *Index) WardIDs() []string {
	ids := make([]string, 0, len(ix.collection.Features))
	for _, f := range ix.collection.Features {
		ids = append(ids, f.Properties.WardID)
	}
	return ids
}

// Contains reports whether the ward is in the boundary set.
func (ix *Index) Contains(wardID string) bool {
	_, ok := ix.byID[wardID]
	return ok
}

// WardName resolves a ward's display name.
func (ix *Index) WardName(wardID string) (string, bool) {
	f, ok := ix.byID[wardID]
	if !ok {
		return "", false
	}
	return f.Properties.Name, true
}

// Centroid returns the ward's boundary centroid, computing it on first
// use and caching it for the rest of the session.
func (ix *Index) Centroid(wardID string) (models.Coordinate, bool) {
	if cached, ok := ix.centroids.Get(wardID); ok {
		return cached.(models.Coordinate), true
	}

	f, ok := ix.byID[wardID]
	if !ok {
		return models.Coordinate{}, false
	}

	centroid, ok := polygonCentroid(f.Geometry)
	if !ok {
		return models.Coordinate{}, false
	}
	ix.centroids.Set(wardID, centroid, gocache.NoExpiration)
	return centroid, true
}

func polygonCentroid(g Geometry) (models.Coordinate, bool) {
	if len(g.Coordinates) == 0 || len(g.Coordinates[0]) == 0 {
		return models.Coordinate{}, false
	}

	var latSum, lngSum float64
	ring := g.Coordinates[0]
	for _, coord := range ring {
		lngSum += coord[0]
		latSum += coord[1]
	}
	n := float64(len(ring))
	return models.Coordinate{Latitude: latSum / n, Longitude: lngSum / n}, true
}

// NearestWard maps a coordinate to the closest ward centroid within
// maxKm, or reports no match.
func (ix *Index) NearestWard(lat, lng, maxKm float64) (models.SearchResult, bool) {
	minDistance := math.Inf(1)
	var nearest models.SearchResult
	found := false

	for _, f := range ix.collection.Features {
		centroid, ok := ix.Centroid(f.Properties.WardID)
		if !ok {
			continue
		}
		distance := Haversine(lat, lng, centroid.Latitude, centroid.Longitude)
		if distance < minDistance {
			minDistance = distance
			nearest = models.SearchResult{
				WardID:     f.Properties.WardID,
				Name:       f.Properties.Name,
				Latitude:   centroid.Latitude,
				Longitude:  centroid.Longitude,
				DistanceKm: math.Round(distance*100) / 100,
			}
			found = true
		}
	}

	if !found || minDistance > maxKm {
		return models.SearchResult{}, false
	}
	return nearest, true
}

// Haversine returns the great-circle distance between two coordinates
// in kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0 // km

	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
