package models

import (
	"time"

	"github.com/google/uuid"
)

// GoodAccuracyThresholdMeters is the horizontal accuracy bound below which a
// location point is considered usable.
const GoodAccuracyThresholdMeters = 100.0

// LocationPoint is a single recorded position. Points are append-only: they
// are created by the tracker on movement events and pruned by retention,
// never mutated.
type LocationPoint struct {
	ID                 uuid.UUID `json:"id"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Timestamp          time.Time `json:"timestamp"`
	HorizontalAccuracy float64   `json:"horizontalAccuracy"`
}

// NewLocationPoint creates a point stamped with a fresh id
func NewLocationPoint(lat, lon float64, ts time.Time, accuracy float64) LocationPoint {
	return LocationPoint{
		ID:                 uuid.New(),
		Latitude:           lat,
		Longitude:          lon,
		Timestamp:          ts,
		HorizontalAccuracy: accuracy,
	}
}

// HasGoodAccuracy reports whether the accuracy is non-negative and under the
// 100 meter threshold
func (p LocationPoint) HasGoodAccuracy() bool {
	return p.HorizontalAccuracy >= 0 && p.HorizontalAccuracy < GoodAccuracyThresholdMeters
}
