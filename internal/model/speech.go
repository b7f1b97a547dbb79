package model

import "time"

// Speech is one floor-time ledger entry. Length stays nil while the
// speaker holds the floor and is set exactly once on close; a closed
// entry is never reopened.
type Speech struct {
	ID          string    `json:"id" bson:"_id"`
	CommitteeID string    `json:"committeeId" bson:"committeeId"`
	CountryID   string    `json:"countryId" bson:"countryId"`
	DelegateID  *string   `json:"delegateId" bson:"delegateId"`
	Length      *int      `json:"length" bson:"length"`
	Rating      *int      `json:"rating" bson:"rating"`
	Comments    string    `json:"comments" bson:"comments"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	Country     *Country  `json:"country,omitempty" bson:"-"`
}

// Closed reports whether the entry has its terminal length
func (s *Speech) Closed() bool {
	return s.Length != nil
}

// SpeakingStats is cumulative floor time in seconds
type SpeakingStats struct {
	Country  int `json:"country"`
	Delegate int `json:"delegate"`
}
