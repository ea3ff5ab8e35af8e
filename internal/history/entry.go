package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/VolaTeQ/litchitool/internal/mission"
)

// Entry records one conversion or upload.
type Entry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Name      string    `json:"name"`
	Operation string    `json:"operation"`
	Waypoints int       `json:"waypoints"`
	POIs      int       `json:"pois"`
	StartLat  float64   `json:"start_lat"`
	StartLon  float64   `json:"start_lon"`
	Bytes     int       `json:"bytes"`
	ObjectID  string    `json:"object_id,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// NewEntry describes m as produced by operation from source.
func NewEntry(operation, source, name string, m *mission.Mission, size int) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Source:    source,
		Name:      name,
		Operation: operation,
		Bytes:     size,
		Timestamp: time.Now().UTC(),
	}
	if m != nil {
		e.Waypoints = m.NumWaypoints()
		e.POIs = m.NumPOIs()
		start := m.Start()
		e.StartLat, e.StartLon = start.Lat, start.Lon
	}
	return e
}
