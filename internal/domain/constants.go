package domain

// Table names watched by the realtime change feed.
const (
	TableUsers         = "users"
	TableUserLocations = "user_locations"
)
