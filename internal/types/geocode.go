package types

import (
	"time"

	"github.com/google/uuid"
)

// Coordinate is a latitude/longitude pair in decimal degrees. Values are stored as the
// provider returned them, without range checks.
type Coordinate struct {
	Latitude  float64 `json:"latitude" example:"48.8566"`
	Longitude float64 `json:"longitude" example:"2.3522"`
}

// CacheRecord is one persisted city resolution.
type CacheRecord struct {
	ID         uuid.UUID  `json:"id"`
	Seq        int64      `json:"seq"`
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
	CreatedAt  time.Time  `json:"created_at"`
}
