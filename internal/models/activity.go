package models

// Activity is one exercise record as returned by GET /athlete/activities.
// Only the fields used by the CSV export are decoded. Fields Strava may omit
// are pointers so that an absent value stays distinguishable from zero.
type Activity struct {
	Name               string   `json:"name"`
	Distance           *float64 `json:"distance"` // meters
	StartDate          *string  `json:"start_date"`
	TotalElevationGain *float64 `json:"total_elevation_gain"`
	MovingTime         *float64 `json:"moving_time"` // seconds
	HasHeartrate       bool     `json:"has_heartrate"`
	AverageHeartrate   *float64 `json:"average_heartrate,omitempty"`
	MaxHeartrate       *float64 `json:"max_heartrate,omitempty"`
}

// Float returns a pointer to v, for building activities in code.
func Float(v float64) *float64 { return &v }

// Text returns a pointer to s.
func Text(s string) *string { return &s }
