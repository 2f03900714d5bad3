package strava

import "errors"

var (
	// ErrTokenExchange is returned when an authorization code cannot be traded for an access token.
	ErrTokenExchange = errors.New("strava token exchange failed")

	// ErrActivitiesFetch is returned when an activity page cannot be retrieved or decoded.
	ErrActivitiesFetch = errors.New("strava activities fetch failed")
)
