package submission

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64
	Lng float64
}

// ParseLocation parses "lat,lng", e.g. "-1.2921, 36.8219".
func ParseLocation(s string) (Location, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Location{}, fmt.Errorf("location %q is not a coordinate pair", s)
	}

	return NewLocation(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
}

// NewLocation parses separate latitude and longitude strings.
func NewLocation(lat, lng string) (Location, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Location{}, fmt.Errorf("latitude %q is not a number", lat)
	}

	lo, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Location{}, fmt.Errorf("longitude %q is not a number", lng)
	}

	if !finite(la) || la < -90 || la > 90 {
		return Location{}, fmt.Errorf("latitude %v out of range", la)
	}

	if !finite(lo) || lo < -180 || lo > 180 {
		return Location{}, fmt.Errorf("longitude %v out of range", lo)
	}

	return Location{Lat: la, Lng: lo}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (l Location) String() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lng, 'f', -1, 64)
}

// ParseCollectionDate parses a YYYY-MM-DD calendar date in UTC.
func ParseCollectionDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("collection date %q is not a valid YYYY-MM-DD date", s)
	}

	return t, nil
}
