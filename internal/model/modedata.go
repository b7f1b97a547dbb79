package model

import "time"

// Timer defaults applied when a mode-data record is first created
const (
	DefaultSpeechSeconds = 60
	DefaultCaucusSeconds = 600
	DefaultModTopic      = "Tópico não definido"
)

// ModeData is the tagged union of per-mode state. Exactly one variant
// pointer matching Mode is non-nil; the others are nil. One record per
// (committee, mode) pair exists in the store, and only the record
// matching Committee.CurrentMode is ever served to clients.
type ModeData struct {
	ID          string     `json:"id" bson:"_id"`
	CommitteeID string     `json:"committeeId" bson:"committeeId"`
	Mode        DebateMode `json:"mode" bson:"mode"`

	Gsl    *GslData           `json:"gsl,omitempty" bson:"gsl,omitempty"`
	Mod    *ModeratedData     `json:"mod,omitempty" bson:"mod,omitempty"`
	Unmod  *UnmoderatedData   `json:"unmod,omitempty" bson:"unmod,omitempty"`
	Single *SingleSpeakerData `json:"single,omitempty" bson:"single,omitempty"`
	Voting *VotingData        `json:"voting,omitempty" bson:"voting,omitempty"`
}

// GslData is general speakers' list state. The FIFO queue itself lives
// in the list_participants collection keyed by ModeData.ID.
type GslData struct {
	SpeechTotalTime  int        `json:"speechTotalTime" bson:"speechTotalTime"`
	SpeechLastValue  int        `json:"speechLastValue" bson:"speechLastValue"`
	SpeechPlayedAt   *time.Time `json:"speechPlayedAt" bson:"speechPlayedAt"`
	SpeakerID        *string    `json:"speakerId" bson:"speakerId"`
	SpeechID         *string    `json:"speechId" bson:"speechId"`
	AcceptingSignups bool       `json:"acceptingSignups" bson:"acceptingSignups"`
}

// ModeratedData is moderated-caucus state: a shared caucus timer plus a
// nested per-speech timer. Raised hands live in the raised_hands
// collection keyed by ModeData.ID.
type ModeratedData struct {
	TotalTime       int        `json:"totalTime" bson:"totalTime"`
	LastValue       int        `json:"lastValue" bson:"lastValue"`
	PlayedAt        *time.Time `json:"playedAt" bson:"playedAt"`
	SpeechTotalTime int        `json:"speechTotalTime" bson:"speechTotalTime"`
	SpeechLastValue int        `json:"speechLastValue" bson:"speechLastValue"`
	SpeechPlayedAt  *time.Time `json:"speechPlayedAt" bson:"speechPlayedAt"`
	SpeakerID       *string    `json:"speakerId" bson:"speakerId"`
	SpeechID        *string    `json:"speechId" bson:"speechId"`
	Topic           string     `json:"topic" bson:"topic"`
	AcceptingHands  bool       `json:"acceptingHands" bson:"acceptingHands"`
}

// UnmoderatedData is informal-caucus state: one shared timer, no speaker
type UnmoderatedData struct {
	TotalTime int        `json:"totalTime" bson:"totalTime"`
	LastValue int        `json:"lastValue" bson:"lastValue"`
	PlayedAt  *time.Time `json:"playedAt" bson:"playedAt"`
	Topic     string     `json:"topic" bson:"topic"`
}

// SingleSpeakerData is single-speaker state: one speech timer, no queue
type SingleSpeakerData struct {
	SpeechTotalTime int        `json:"speechTotalTime" bson:"speechTotalTime"`
	SpeechLastValue int        `json:"speechLastValue" bson:"speechLastValue"`
	SpeechPlayedAt  *time.Time `json:"speechPlayedAt" bson:"speechPlayedAt"`
	SpeakerID       *string    `json:"speakerId" bson:"speakerId"`
	SpeechID        *string    `json:"speechId" bson:"speechId"`
}

// BallotType distinguishes procedural from substantial ballots
type BallotType string

const (
	BallotProcedural  BallotType = "procedural"
	BallotSubstantial BallotType = "substantial"
)

// VotingData is ballot state. Votes live in the votes collection keyed
// by ModeData.ID. CurrentCountryIndex is the chair's walk-through
/// cursor, not a per-country ballot gate: it advances on every
// successful vote and wraps at the committee's country count.
type VotingData struct {
	Type                BallotType `json:"type" bson:"type"`
	Topic               string     `json:"topic" bson:"topic"`
	CurrentCountryIndex int        `json:"currentCountryIndex" bson:"currentCountryIndex"`
	OpenToDelegateVotes bool       `json:"openToDelegateVotes" bson:"openToDelegateVotes"`
}

// NewModeData builds a record with the type-specific defaults applied
// on first entry into a mode.
func NewModeData(id, committeeID string, mode DebateMode) *ModeData {
	md := &ModeData{ID: id, CommitteeID: committeeID, Mode: mode}
	switch mode {
	case ModeGsl:
		md.Gsl = &GslData{
			SpeechTotalTime: DefaultSpeechSeconds,
			SpeechLastValue: DefaultSpeechSeconds,
		}
	case ModeMod:
		md.Mod = &ModeratedData{
			TotalTime:       DefaultCaucusSeconds,
			LastValue:       DefaultCaucusSeconds,
			SpeechTotalTime: DefaultSpeechSeconds,
			SpeechLastValue: DefaultSpeechSeconds,
			Topic:           DefaultModTopic,
		}
	case ModeUnmod:
		md.Unmod = &UnmoderatedData{
			TotalTime: DefaultCaucusSeconds,
			LastValue: DefaultCaucusSeconds,
		}
	case ModeSingle:
		md.Single = &SingleSpeakerData{
			SpeechTotalTime: DefaultSpeechSeconds,
			SpeechLastValue: DefaultSpeechSeconds,
		}
	case ModeVoting:
		md.Voting = &VotingData{Type: BallotProcedural}
	}
	return md
}

// ListParticipant is one entry in the GSL FIFO queue. CreatedAt is the
// insertion instant and the only ordering key.
type ListParticipant struct {
	ID         string    `json:"id" bson:"_id"`
	ModeDataID string    `json:"modeDataId" bson:"modeDataId"`
	CountryID  string    `json:"countryId" bson:"countryId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	Country    *Country  `json:"country,omitempty" bson:"-"`
}

// RaisedHand is one entry in the moderated-caucus raised-hands set
type RaisedHand struct {
	ID         string   `json:"id" bson:"_id"`
	ModeDataID string   `json:"modeDataId" bson:"modeDataId"`
	CountryID  string   `json:"countryId" bson:"countryId"`
	Country    *Country `json:"country,omitempty" bson:"-"`
}

// VoteChoice is a country's ballot choice
type VoteChoice string

const (
	VoteFor     VoteChoice = "for"
	VoteAgainst VoteChoice = "against"
	VoteAbstain VoteChoice = "abstain"
)

// ValidVoteChoice reports whether v is a known choice
func ValidVoteChoice(v VoteChoice) bool {
	switch v {
	case VoteFor, VoteAgainst, VoteAbstain:
		return true
	}
	return false
}

// Vote is one country's ballot. At most one per (ballot, country);
// casting again overwrites the choice.
type Vote struct {
	ID         string     `json:"id" bson:"_id"`
	ModeDataID string     `json:"modeDataId" bson:"modeDataId"`
	CountryID  string     `json:"countryId" bson:"countryId"`
	Choice     VoteChoice `json:"vote" bson:"vote"`
	Country    *Country   `json:"country,omitempty" bson:"-"`
}
