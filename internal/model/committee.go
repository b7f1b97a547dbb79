package model

import "time"

// DebateMode is the committee's current procedural mode
type DebateMode string

const (
	ModeGsl    DebateMode = "gsl"
	ModeMod    DebateMode = "mod"
	ModeUnmod  DebateMode = "unmod"
	ModeSingle DebateMode = "single"
	ModeVoting DebateMode = "voting"
)

// ValidMode reports whether m is one of the five debate modes
func ValidMode(m DebateMode) bool {
	switch m {
	case ModeGsl, ModeMod, ModeUnmod, ModeSingle, ModeVoting:
		return true
	}
	return false
}

// Committee is the root aggregate: one deliberative body and its
// current debate mode. Exactly one mode-data record of the matching
// kind is live at a time (see repository.ModeDataRepo).
type Committee struct {
	ID          string     `json:"id" bson:"_id"`
	Name        string     `json:"name" bson:"name"`
	Agenda      string     `json:"agenda" bson:"agenda"`
	CurrentMode DebateMode `json:"currentMode" bson:"currentMode"`
	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
}
