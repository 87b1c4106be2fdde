package models

// GeoPoint is a GeoJSON point so that technician locations can carry a 2dsphere index.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether the point carries a usable coordinate pair.
func (g *GeoPoint) Valid() bool {
	return g != nil && len(g.Coordinates) >= 2 && !(g.Coordinates[0] == 0 && g.Coordinates[1] == 0)
}

func (g *GeoPoint) Lat() float64 {
	if g == nil || len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[1]
}

func (g *GeoPoint) Lng() float64 {
	if g == nil || len(g.Coordinates) < 2 {
		return 0
	}
	return g.Coordinates[0]
}

// ReminderPayload is the asynq payload of a booking reminder.
// Recipients are user ids; empty ones are skipped.
type ReminderPayload struct {
	BookingID        string `json:"bookingId"`
	ClientID         string `json:"clientId"`
	TechnicianUserID string `json:"technicianUserId"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	FireDate         string `json:"fireDate"` // RFC3339
}
