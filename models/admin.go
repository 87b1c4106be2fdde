package models

type LegalSection struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Audience string `json:"audience"` // "client", "technician" or "all"
	Version  string `json:"version"`
	Updated  string `json:"updated"` // YYYY-MM-DD
}

const AudienceAll = "all"

// PlatformOverview is the admin dashboard snapshot.
type PlatformOverview struct {
	Jobs                 map[JobStatus]int     `json:"jobs"`
	Bookings             map[BookingStatus]int `json:"bookings"`
	Users                map[Role]int          `json:"users"`
	Technicians          int                   `json:"technicians"`
	AvailableTechnicians int                   `json:"availableTechnicians"`
	CompletedRevenue     float64               `json:"completedRevenue"`
	Currency             string                `json:"currency"`
	JobsByService        map[string]int        `json:"jobsByService"`
}
