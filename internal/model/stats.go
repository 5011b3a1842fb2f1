package model

// Stats holds the game counters shown on a profile
type Stats struct {
	Played   int
	Won      int
	Lost     int
	Drawn    int
	NotEnded int
}

// Profile aggregates everything shown on a user's profile page
type Profile struct {
	User    PublicUser
	Stats   Stats
	History []Match
}
