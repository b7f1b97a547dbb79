package model

import (
	"fmt"
	"time"
)

// MotionType enumerates the eleven procedural motion variants
type MotionType string

const (
	MotionAppeal            MotionType = "appeal"
	MotionModerated         MotionType = "moderated"
	MotionUnmoderated       MotionType = "unmoderated"
	MotionTour              MotionType = "tour"
	MotionTimeAgainst       MotionType = "timeAgainst"
	MotionMoveVote          MotionType = "moveVote"
	MotionAdoptNoVote       MotionType = "adoptNoVote"
	MotionIntroduceDocument MotionType = "introduceDocument"
	MotionSuspendDebate     MotionType = "suspendDebate"
	MotionRecess            MotionType = "recess"
	MotionMinuteOfSilence   MotionType = "minuteOfSilence"
)

// Motion is a tagged-union procedural request queued for chair
// disposition. Only the fields relevant to Type are populated.
type Motion struct {
	ID          string     `json:"id" bson:"_id"`
	CommitteeID string     `json:"committeeId" bson:"committeeId"`
	CountryID   *string    `json:"countryId" bson:"countryId"`
	Type        MotionType `json:"type" bson:"type"`

	Note           string  `json:"note,omitempty" bson:"note,omitempty"`
	Topic          *string `json:"topic,omitempty" bson:"topic,omitempty"`
	Duration       int     `json:"duration,omitempty" bson:"duration,omitempty"`
	SpeechDuration int     `json:"speechDuration,omitempty" bson:"speechDuration,omitempty"`
	DocumentID     string  `json:"documentId,omitempty" bson:"documentId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Country   *Country  `json:"country,omitempty" bson:"-"`
}

// Validate checks the per-variant payload shape
func (m *Motion) Validate() error {
	switch m.Type {
	case MotionAppeal:
		if m.Note == "" {
			return fmt.Errorf("appeal requires a note")
		}
	case MotionModerated:
		if m.Topic == nil || *m.Topic == "" {
			return fmt.Errorf("moderated caucus requires a topic")
		}
		if m.Duration <= 0 || m.SpeechDuration <= 0 {
			return fmt.Errorf("moderated caucus requires positive durations")
		}
	case MotionUnmoderated:
		if m.Topic == nil || *m.Topic == "" {
			return fmt.Errorf("unmoderated caucus requires a topic")
		}
		if m.Duration <= 0 {
			return fmt.Errorf("unmoderated caucus requires a positive duration")
		}
	case MotionTour:
		if m.Topic == nil || *m.Topic == "" {
			return fmt.Errorf("tour requires a topic")
		}
		if m.SpeechDuration <= 0 {
			return fmt.Errorf("tour requires a positive speech duration")
		}
	case MotionIntroduceDocument:
		if m.DocumentID == "" {
			return fmt.Errorf("introduceDocument requires a document id")
		}
	case MotionTimeAgainst, MotionMoveVote, MotionAdoptNoVote,
		MotionSuspendDebate, MotionRecess, MotionMinuteOfSilence:
		// no payload
	default:
		return fmt.Errorf("unknown motion type %q", m.Type)
	}
	return nil
}
