package model

// Roll is a country's attendance state for the current session
type Roll string

const (
	RollPresent          Roll = "p"
	RollPresentAndVoting Roll = "pv"
	RollAbsent           Roll = "a"
)

// ValidRoll reports whether r is a known roll state
func ValidRoll(r Roll) bool {
	switch r {
	case RollPresent, RollPresentAndVoting, RollAbsent:
		return true
	}
	return false
}

// Country is a delegation seated in a committee
type Country struct {
	ID          string `json:"id" bson:"_id"`
	CommitteeID string `json:"committeeId" bson:"committeeId"`
	Name        string `json:"name" bson:"name"`
	ShortName   string `json:"shortName" bson:"shortName"`
	FlagURL     string `json:"flagUrl" bson:"flagUrl"`
	Roll        Roll   `json:"roll" bson:"roll"`
}

// CanSpeak reports whether the country is seated this session
func (c *Country) CanSpeak() bool {
	return c.Roll == RollPresent || c.Roll == RollPresentAndVoting
}
