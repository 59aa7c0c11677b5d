package analysis

import (
	"strings"

	"geoprospect/domain/dataset"
	"geoprospect/domain/geochem"
)

var (
	latitudeHeaders  = []string{"lat", "latitude", "lat_dd", "latitude_dd"}
	longitudeHeaders = []string{"lon", "long", "lng", "longitude", "long_dd", "longitude_dd"}
)

// CoordinateColumns finds latitude and longitude columns by header name
func CoordinateColumns(headers []string) (lat, lon string, ok bool) {
	for _, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		if lat == "" && contains(latitudeHeaders, name) {
			lat = h
		}
		if lon == "" && contains(longitudeHeaders, name) {
			lon = h
		}
	}
	return lat, lon, lat != "" && lon != ""
}

// Locate returns the coordinates of the given points' rows, skipping rows
// with missing or out-of-range coordinates
func Locate(table *dataset.Table, points []geochem.ProbabilityPoint) map[int]geochem.Coordinates {
	latCol, lonCol, ok := CoordinateColumns(table.Headers)
	if !ok {
		return nil
	}

	locations := make(map[int]geochem.Coordinates)
	for _, p := range points {
		if p.RowIndex < 0 || p.RowIndex >= len(table.Rows) {
			continue
		}
		row := table.Rows[p.RowIndex]
		lat, okLat := ParseNumber(row[latCol])
		lon, okLon := ParseNumber(row[lonCol])
		if !okLat || !okLon || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		locations[p.RowIndex] = geochem.Coordinates{Lat: lat, Lon: lon}
	}
	if len(locations) == 0 {
		return nil
	}
	return locations
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
