package service

import (
	"context"
	"fmt"
	"time"

	"podium/internal/cache"
	"podium/internal/model"
	"podium/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxTimerSeconds = 86400

// DebateService is the debate-mode state machine and its per-mode
// command handlers. Every write resolves the caller's committee,
// asserts the committee is in the operation's mode, mutates the store
// and emits a partial (or, on mode switches, full) update. Concurrency
// control is the store's: unique indexes on the child collections, an
// atomic cursor increment for voting, last-write-wins for field edits.
type DebateService struct {
	committeeRepo repository.CommitteeRepo
	countryRepo   repository.CountryRepo
	modeRepo      repository.ModeDataRepo
	listRepo      repository.ListParticipantRepo
	handRepo      repository.RaisedHandRepo
	voteRepo      repository.VoteRepo
	committeeSvc  *CommitteeService
	speechSvc     *SpeechService
	snapshots     cache.SnapshotCache
	broadcaster   Broadcaster
	now           func() time.Time
}

// NewDebateService creates a new debate service
func NewDebateService(
	committeeRepo repository.CommitteeRepo,
	countryRepo repository.CountryRepo,
	modeRepo repository.ModeDataRepo,
	listRepo repository.ListParticipantRepo,
	handRepo repository.RaisedHandRepo,
	voteRepo repository.VoteRepo,
	committeeSvc *CommitteeService,
	speechSvc *SpeechService,
	snapshots cache.SnapshotCache,
) *DebateService {
	return &DebateService{
		committeeRepo: committeeRepo,
		countryRepo:   countryRepo,
		modeRepo:      modeRepo,
		listRepo:      listRepo,
		handRepo:      handRepo,
		voteRepo:      voteRepo,
		committeeSvc:  committeeSvc,
		speechSvc:     speechSvc,
		snapshots:     snapshots,
		now:           time.Now,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *DebateService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ChangeMode switches the committee to the target mode: create the
// target's mode-data record if missing (with defaults), persist the
// new mode, broadcast a full snapshot, then clean up the previous
// mode. The previous mode's open speech (mod/single) closes with its
// elapsed length and its record is deleted; gsl data is retained so a
// speakers' list survives excursions into other modes.
func (s *DebateService) ChangeMode(ctx context.Context, caller *model.Caller, target model.DebateMode) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}
	if !model.ValidMode(target) {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, target)
	}

	previous := committee.CurrentMode

	existing, err := s.modeRepo.GetByMode(ctx, committee.ID, target)
	if err != nil {
		return fmt.Errorf("failed to get mode data: %w", err)
	}
	if existing == nil {
		md := model.NewModeData(uuid.New().String(), committee.ID, target)
		if err := s.modeRepo.Create(ctx, md); err != nil {
			// A concurrent switch may have created it; the unique
			// index on (committeeId, mode) makes that benign.
			if !repository.IsDuplicateKey(err) {
				return fmt.Errorf("failed to create mode data: %w", err)
			}
		}
	}

	if err := s.committeeRepo.SetMode(ctx, committee.ID, target); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	committee.CurrentMode = target

	snapshot, err := s.committeeSvc.RebuildSnapshot(ctx, committee)
	if err != nil {
		return err
	}
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventFull,
		Data: snapshot,
	})

	if previous != target {
		if err := s.cleanupMode(ctx, committee.ID, previous); err != nil {
			return err
		}
	}
	return nil
}

func (s *DebateService) cleanupMode(ctx context.Context, committeeID string, mode model.DebateMode) error {
	md, err := s.modeRepo.GetByMode(ctx, committeeID, mode)
	if err != nil {
		return fmt.Errorf("failed to get mode data: %w", err)
	}
	if md == nil {
		return nil
	}

	switch mode {
	case model.ModeGsl:
		// Retained: the speakers' list may be resumed later.
		return nil
	case model.ModeMod:
		if md.Mod != nil && md.Mod.SpeechID != nil {
			s.closeSpeech(ctx, *md.Mod.SpeechID, md.Mod.SpeechTotalTime, md.Mod.SpeechLastValue, md.Mod.SpeechPlayedAt)
		}
		if err := s.handRepo.DeleteAll(ctx, md.ID); err != nil {
			return fmt.Errorf("failed to clear hands: %w", err)
		}
	case model.ModeSingle:
		if md.Single != nil && md.Single.SpeechID != nil {
			s.closeSpeech(ctx, *md.Single.SpeechID, md.Single.SpeechTotalTime, md.Single.SpeechLastValue, md.Single.SpeechPlayedAt)
		}
	case model.ModeVoting:
		if err := s.voteRepo.DeleteAll(ctx, md.ID); err != nil {
			return fmt.Errorf("failed to clear votes: %w", err)
		}
	case model.ModeUnmod:
	}
	return s.modeRepo.DeleteByMode(ctx, committeeID, mode)
}

// closeSpeech closes a ledger entry with elapsed = total − remaining.
// A racing second close is absorbed: the ledger guard makes it a no-op.
func (s *DebateService) closeSpeech(ctx context.Context, speechID string, totalTime, lastValue int, playedAt *time.Time) {
	length := totalTime - CurrentTimerValue(lastValue, playedAt, s.now())
	if err := s.speechSvc.Close(ctx, speechID, length); err != nil && err != ErrSpeechClosed {
		// The ledger entry is left open; the next close attempt will
		// settle it.
		return
	}
}

// requireMode fetches the committee and its live mode-data record,
// failing with ErrModeMismatch when the committee is in another mode
// (the stale-client signal: refetch a snapshot and retry from there).
func (s *DebateService) requireMode(ctx context.Context, caller *model.Caller, mode model.DebateMode) (*model.Committee, *model.ModeData, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, nil, err
	}
	if committee.CurrentMode != mode {
		return nil, nil, ErrModeMismatch
	}
	md, err := s.modeRepo.GetActive(ctx, committee)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get mode data: %w", err)
	}
	if md == nil {
		return nil, nil, ErrModeMismatch
	}
	return committee, md, nil
}

func (s *DebateService) memberCountry(ctx context.Context, committeeID, countryID string) (*model.Country, error) {
	country, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil || country.CommitteeID != committeeID {
		return nil, fmt.Errorf("%w: country %s", ErrNotFound, countryID)
	}
	return country, nil
}

// GslUpdate carries the optional fields of a GSL timer/settings edit
type GslUpdate struct {
	SpeechTotalTime  *int               `json:"speechTotalTime"`
	SpeechLastValue  *int               `json:"speechLastValue"`
	SpeechPlayedAt   model.OptionalTime `json:"speechPlayedAt"`
	AcceptingSignups *bool              `json:"acceptingSignups"`
}

// UpdateGslData applies a partial edit to the GSL record (chair only)
func (s *DebateService) UpdateGslData(ctx context.Context, caller *model.Caller, upd GslUpdate) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeGsl)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	fields := map[string]any{}
	if err := putSeconds(fields, "speechTotalTime", upd.SpeechTotalTime); err != nil {
		return err
	}
	if err := putSeconds(fields, "speechLastValue", upd.SpeechLastValue); err != nil {
		return err
	}
	if upd.SpeechPlayedAt.Set {
		fields["speechPlayedAt"] = upd.SpeechPlayedAt.Value
	}
	if upd.AcceptingSignups != nil {
		fields["acceptingSignups"] = *upd.AcceptingSignups
	}

	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeGsl, fields); err != nil {
		return fmt.Errorf("failed to update gsl data: %w", err)
	}
	s.emitPartial(ctx, committee.ID, fields)
	return nil
}

// ModUpdate carries the optional fields of a moderated-caucus edit
type ModUpdate struct {
	TotalTime       *int               `json:"totalTime"`
	LastValue       *int               `json:"lastValue"`
	PlayedAt        model.OptionalTime `json:"playedAt"`
	SpeechTotalTime *int               `json:"speechTotalTime"`
	SpeechLastValue *int               `json:"speechLastValue"`
	SpeechPlayedAt  model.OptionalTime `json:"speechPlayedAt"`
	AcceptingHands  *bool              `json:"acceptingHands"`
	Topic           *string            `json:"topic"`
}

// UpdateModData applies a partial edit to the moderated record (chair only)
func (s *DebateService) UpdateModData(ctx context.Context, caller *model.Caller, upd ModUpdate) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeMod)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	fields := map[string]any{}
	if err := putSeconds(fields, "totalTime", upd.TotalTime); err != nil {
		return err
	}
	if err := putSeconds(fields, "lastValue", upd.LastValue); err != nil {
		return err
	}
	if upd.PlayedAt.Set {
		fields["playedAt"] = upd.PlayedAt.Value
	}
	if err := putSeconds(fields, "speechTotalTime", upd.SpeechTotalTime); err != nil {
		return err
	}
	if err := putSeconds(fields, "speechLastValue", upd.SpeechLastValue); err != nil {
		return err
	}
	if upd.SpeechPlayedAt.Set {
		fields["speechPlayedAt"] = upd.SpeechPlayedAt.Value
	}
	if upd.AcceptingHands != nil {
		fields["acceptingHands"] = *upd.AcceptingHands
	}
	if upd.Topic != nil {
		fields["topic"] = *upd.Topic
	}

	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeMod, fields); err != nil {
		return fmt.Errorf("failed to update mod data: %w", err)
	}
	s.emitPartial(ctx, committee.ID, fields)
	return nil
}

// UnmodUpdate carries the optional fields of an unmoderated-caucus edit
type UnmodUpdate struct {
	TotalTime *int               `json:"totalTime"`
	LastValue *int               `json:"lastValue"`
	PlayedAt  model.OptionalTime `json:"playedAt"`
	Topic     *string            `json:"topic"`
}

// UpdateUnmodData applies a partial edit to the unmoderated record (chair only)
func (s *DebateService) UpdateUnmodData(ctx context.Context, caller *model.Caller, upd UnmodUpdate) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeUnmod)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	fields := map[string]any{}
	if err := putSeconds(fields, "totalTime", upd.TotalTime); err != nil {
		return err
	}
	if err := putSeconds(fields, "lastValue", upd.LastValue); err != nil {
		return err
	}
	if upd.PlayedAt.Set {
		fields["playedAt"] = upd.PlayedAt.Value
	}
	if upd.Topic != nil {
		fields["topic"] = *upd.Topic
	}

	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeUnmod, fields); err != nil {
		return fmt.Errorf("failed to update unmod data: %w", err)
	}
	s.emitPartial(ctx, committee.ID, fields)
	return nil
}

// SingleUpdate carries the optional fields of a single-speaker edit
type SingleUpdate struct {
	SpeechTotalTime *int               `json:"speechTotalTime"`
	SpeechLastValue *int               `json:"speechLastValue"`
	SpeechPlayedAt  model.OptionalTime `json:"speechPlayedAt"`
}

// UpdateSingleSpeakerData applies a partial edit to the single-speaker
// record (chair only)
func (s *DebateService) UpdateSingleSpeakerData(ctx context.Context, caller *model.Caller, upd SingleUpdate) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeSingle)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	fields := map[string]any{}
	if err := putSeconds(fields, "speechTotalTime", upd.SpeechTotalTime); err != nil {
		return err
	}
	if err := putSeconds(fields, "speechLastValue", upd.SpeechLastValue); err != nil {
		return err
	}
	if upd.SpeechPlayedAt.Set {
		fields["speechPlayedAt"] = upd.SpeechPlayedAt.Value
	}

	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeSingle, fields); err != nil {
		return fmt.Errorf("failed to update single speaker data: %w", err)
	}
	s.emitPartial(ctx, committee.ID, fields)
	return nil
}

// VotingUpdate carries the optional fields of a ballot edit
type VotingUpdate struct {
	Type                *model.BallotType `json:"type"`
	Topic               *string           `json:"topic"`
	CurrentCountryIndex *int              `json:"currentCountryIndex"`
	OpenToDelegateVotes *bool             `json:"openToDelegateVotes"`
}

// UpdateVotingData applies a partial edit to the ballot (chair only)
func (s *DebateService) UpdateVotingData(ctx context.Context, caller *model.Caller, upd VotingUpdate) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeVoting)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	fields := map[string]any{}
	if upd.Type != nil {
		if *upd.Type != model.BallotProcedural && *upd.Type != model.BallotSubstantial {
			return fmt.Errorf("%w: unknown ballot type %q", ErrValidation, *upd.Type)
		}
		fields["type"] = *upd.Type
	}
	if upd.Topic != nil {
		fields["topic"] = *upd.Topic
	}
	if upd.CurrentCountryIndex != nil {
		if *upd.CurrentCountryIndex < 0 {
			return fmt.Errorf("%w: negative country index", ErrValidation)
		}
		fields["currentCountryIndex"] = *upd.CurrentCountryIndex
	}
	if upd.OpenToDelegateVotes != nil {
		fields["openToDelegateVotes"] = *upd.OpenToDelegateVotes
	}

	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeVoting, fields); err != nil {
		return fmt.Errorf("failed to update voting data: %w", err)
	}
	s.emitPartial(ctx, committee.ID, fields)
	return nil
}

// AddListParticipant appends a country to the speakers' queue. The
// chair may add anyone; a delegate may sign up their own country while
// signups are open and the country is not already queued or speaking.
// A duplicate add is rejected by the queue's unique index.
func (s *DebateService) AddListParticipant(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeGsl)
	if err != nil {
		return err
	}
	if _, err := s.memberCountry(ctx, committee.ID, countryID); err != nil {
		return err
	}

	if !caller.IsChair() {
		if !caller.Owns(countryID) {
			return ErrForbidden
		}
		if md.Gsl == nil || !md.Gsl.AcceptingSignups {
			return ErrForbidden
		}
		if md.Gsl.SpeakerID != nil && *md.Gsl.SpeakerID == countryID {
			return ErrForbidden
		}
	}

	participant := &model.ListParticipant{
		ID:         uuid.New().String(),
		ModeDataID: md.ID,
		CountryID:  countryID,
		CreatedAt:  s.now(),
	}
	if err := s.listRepo.Add(ctx, participant); err != nil {
		if repository.IsDuplicateKey(err) {
			return fmt.Errorf("%w: country already queued", ErrPrecondition)
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}

	return s.emitQueue(ctx, committee.ID, md.ID)
}

// RemoveListParticipant takes a country out of the queue (chair, or
// the country's own delegate)
func (s *DebateService) RemoveListParticipant(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeGsl)
	if err != nil {
		return err
	}
	if !caller.IsChair() && !caller.Owns(countryID) {
		return ErrForbidden
	}

	if err := s.listRepo.RemoveByCountry(ctx, md.ID, countryID); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return s.emitQueue(ctx, committee.ID, md.ID)
}

// NextSpeaker pops the queue head (chair only). The open speech, if
// any, closes with its elapsed length. With an empty queue the floor
// is cleared and the speech timer reset; otherwise the head takes the
// floor with a fresh timer and a new open ledger entry.
func (s *DebateService) NextSpeaker(ctx context.Context, caller *model.Caller) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeGsl)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}
	if md.Gsl == nil {
		return ErrModeMismatch
	}

	queue, err := s.listRepo.List(ctx, md.ID)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	if md.Gsl.SpeechID != nil {
		s.closeSpeech(ctx, *md.Gsl.SpeechID, md.Gsl.SpeechTotalTime, md.Gsl.SpeechLastValue, md.Gsl.SpeechPlayedAt)
	}

	if len(queue) == 0 {
		fields := map[string]any{
			"speakerId":       nil,
			"speechId":        nil,
			"speechLastValue": md.Gsl.SpeechTotalTime,
			"speechPlayedAt":  nil,
		}
		if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeGsl, fields); err != nil {
			return fmt.Errorf("failed to update gsl data: %w", err)
		}
		_ = s.snapshots.Invalidate(ctx, committee.ID)
		s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
			Type: model.EventPartial,
			Data: model.Partial{
				"currentSpeaker":  nil,
				"speechLastValue": md.Gsl.SpeechTotalTime,
				"speechPlayedAt":  nil,
			},
		})
		return nil
	}

	head, rest := queue[0], queue[1:]
	// The delete is the race arbiter: if a concurrent NextSpeaker
	// already consumed the head, this one fails instead of double
	// promoting.
	if err := s.listRepo.Remove(ctx, head.ID); err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: queue head already taken", ErrPrecondition)
		}
		return fmt.Errorf("failed to pop queue: %w", err)
	}

	speech, err := s.speechSvc.Open(ctx, committee.ID, head.CountryID)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"speakerId":       head.CountryID,
		"speechId":        speech.ID,
		"speechLastValue": md.Gsl.SpeechTotalTime,
		"speechPlayedAt":  nil,
	}
	if err := s.modeRepo.UpdateVariant(ctx, md.ID, model.ModeGsl, fields); err != nil {
		return fmt.Errorf("failed to update gsl data: %w", err)
	}

	speaker, err := s.countryRepo.GetByID(ctx, head.CountryID)
	if err != nil {
		return fmt.Errorf("failed to get country: %w", err)
	}
	rest, err = hydrateParticipants(ctx, s.countryRepo, rest)
	if err != nil {
		return err
	}

	_ = s.snapshots.Invalidate(ctx, committee.ID)
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{
			"listParticipants": rest,
			"currentSpeaker":   speaker,
			"speechLastValue":  md.Gsl.SpeechTotalTime,
			"speechPlayedAt":   nil,
		},
	})
	return nil
}

// YieldTime hands the floor to a country outside the queue order,
// keeping the running speech timer. Allowed for the chair and for the
// delegate currently holding the floor.
func (s *DebateService) YieldTime(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if committee.CurrentMode != model.ModeGsl && committee.CurrentMode != model.ModeMod {
		return ErrModeMismatch
	}
	md, err := s.modeRepo.GetActive(ctx, committee)
	if err != nil {
		return fmt.Errorf("failed to get mode data: %w", err)
	}
	if md == nil {
		return ErrModeMismatch
	}
	if _, err := s.memberCountry(ctx, committee.ID, countryID); err != nil {
		return err
	}

	var speakerID, speechID *string
	var totalTime, lastValue int
	var playedAt *time.Time
	switch committee.CurrentMode {
	case model.ModeGsl:
		if md.Gsl == nil {
			return ErrModeMismatch
		}
		speakerID, speechID = md.Gsl.SpeakerID, md.Gsl.SpeechID
		totalTime, lastValue, playedAt = md.Gsl.SpeechTotalTime, md.Gsl.SpeechLastValue, md.Gsl.SpeechPlayedAt
	case model.ModeMod:
		if md.Mod == nil {
			return ErrModeMismatch
		}
		speakerID, speechID = md.Mod.SpeakerID, md.Mod.SpeechID
		totalTime, lastValue, playedAt = md.Mod.SpeechTotalTime, md.Mod.SpeechLastValue, md.Mod.SpeechPlayedAt
	}

	if !caller.IsChair() {
		if speakerID == nil || !caller.Owns(*speakerID) {
			return ErrForbidden
		}
	}

	if speechID != nil {
		s.closeSpeech(ctx, *speechID, totalTime, lastValue, playedAt)
	}
	speech, err := s.speechSvc.Open(ctx, committee.ID, countryID)
	if err != nil {
		return err
	}

	fields := map[string]any{"speakerId": countryID, "speechId": speech.ID}
	if err := s.modeRepo.UpdateVariant(ctx, md.ID, committee.CurrentMode, fields); err != nil {
		return fmt.Errorf("failed to update mode data: %w", err)
	}

	speaker, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return fmt.Errorf("failed to get country: %w", err)
	}
	_ = s.snapshots.Invalidate(ctx, committee.ID)
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{"currentSpeaker": speaker},
	})
	return nil
}

// RaiseHand adds a country to the raised-hands set. The chair may
// raise any hand; a delegate only their own, and only while the chair
// is accepting hands. Raising an already-raised hand is a no-op.
func (s *DebateService) RaiseHand(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeMod)
	if err != nil {
		return err
	}
	if _, err := s.memberCountry(ctx, committee.ID, countryID); err != nil {
		return err
	}
	if !caller.IsChair() {
		if !caller.Owns(countryID) {
			return ErrForbidden
		}
		if md.Mod == nil || !md.Mod.AcceptingHands {
			return ErrForbidden
		}
	}

	hand := &model.RaisedHand{
		ID:         uuid.New().String(),
		ModeDataID: md.ID,
		CountryID:  countryID,
	}
	if err := s.handRepo.Add(ctx, hand); err != nil && !repository.IsDuplicateKey(err) {
		return fmt.Errorf("failed to raise hand: %w", err)
	}
	return s.emitHands(ctx, committee.ID, md.ID)
}

// LowerHand removes a country from the raised-hands set; lowering an
// unraised hand is a no-op.
func (s *DebateService) LowerHand(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeMod)
	if err != nil {
		return err
	}
	if !caller.IsChair() && !caller.Owns(countryID) {
		return ErrForbidden
	}

	if err := s.handRepo.RemoveByCountry(ctx, md.ID, countryID); err != nil {
		return fmt.Errorf("failed to lower hand: %w", err)
	}
	return s.emitHands(ctx, committee.ID, md.ID)
}

// SetSpeaker gives the floor to a country in moderated or
// single-speaker mode (chair only). The open speech closes with its
// elapsed length and a new ledger entry opens. In single-speaker mode
// the speech timer resets to its total; in moderated mode it pauses at
// its last recorded value. Raised hands are untouched: lowering takes
// an explicit LowerHand.
func (s *DebateService) SetSpeaker(ctx context.Context, caller *model.Caller, countryID string) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}
	if committee.CurrentMode != model.ModeMod && committee.CurrentMode != model.ModeSingle {
		return ErrModeMismatch
	}
	md, err := s.modeRepo.GetActive(ctx, committee)
	if err != nil {
		return fmt.Errorf("failed to get mode data: %w", err)
	}
	if md == nil {
		return ErrModeMismatch
	}
	if _, err := s.memberCountry(ctx, committee.ID, countryID); err != nil {
		return err
	}

	var newLastValue int
	switch committee.CurrentMode {
	case model.ModeMod:
		if md.Mod == nil {
			return ErrModeMismatch
		}
		if md.Mod.SpeechID != nil {
			s.closeSpeech(ctx, *md.Mod.SpeechID, md.Mod.SpeechTotalTime, md.Mod.SpeechLastValue, md.Mod.SpeechPlayedAt)
		}
		newLastValue = md.Mod.SpeechLastValue
	case model.ModeSingle:
		if md.Single == nil {
			return ErrModeMismatch
		}
		if md.Single.SpeechID != nil {
			s.closeSpeech(ctx, *md.Single.SpeechID, md.Single.SpeechTotalTime, md.Single.SpeechLastValue, md.Single.SpeechPlayedAt)
		}
		newLastValue = md.Single.SpeechTotalTime
	}

	speech, err := s.speechSvc.Open(ctx, committee.ID, countryID)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"speakerId":       countryID,
		"speechId":        speech.ID,
		"speechLastValue": newLastValue,
		"speechPlayedAt":  nil,
	}
	if err := s.modeRepo.UpdateVariant(ctx, md.ID, committee.CurrentMode, fields); err != nil {
		return fmt.Errorf("failed to update mode data: %w", err)
	}

	speaker, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return fmt.Errorf("failed to get country: %w", err)
	}
	_ = s.snapshots.Invalidate(ctx, committee.ID)
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{
			"currentSpeaker":  speaker,
			"speechLastValue": newLastValue,
			"speechPlayedAt":  nil,
		},
	})
	return nil
}

// Vote records a country's ballot. The chair may cast for any country;
// a delegate only for their own, and only while the ballot is open to
// delegate votes. A repeat vote overwrites the previous choice (last
// write wins). The cursor advances by one on every successful vote,
// whichever country voted, wrapping at the committee's country count.
func (s *DebateService) Vote(ctx context.Context, caller *model.Caller, countryID string, choice model.VoteChoice) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeVoting)
	if err != nil {
		return err
	}
	if !model.ValidVoteChoice(choice) {
		return fmt.Errorf("%w: unknown vote %q", ErrValidation, choice)
	}
	country, err := s.memberCountry(ctx, committee.ID, countryID)
	if err != nil {
		return err
	}
	if !country.CanSpeak() {
		return fmt.Errorf("%w: country is absent", ErrForbidden)
	}
	if !caller.IsChair() {
		if !caller.Owns(countryID) {
			return ErrForbidden
		}
		if md.Voting == nil || !md.Voting.OpenToDelegateVotes {
			return ErrForbidden
		}
	}

	vote := &model.Vote{
		ID:         uuid.New().String(),
		ModeDataID: md.ID,
		CountryID:  countryID,
		Choice:     choice,
	}
	if err := s.voteRepo.Upsert(ctx, vote); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}

	countryCount, err := s.countryRepo.CountByCommittee(ctx, committee.ID)
	if err != nil {
		return fmt.Errorf("failed to count countries: %w", err)
	}
	index, err := s.modeRepo.AdvanceVotingIndex(ctx, md.ID, countryCount)
	if err != nil {
		return fmt.Errorf("failed to advance voting index: %w", err)
	}

	votes, err := s.voteRepo.List(ctx, md.ID)
	if err != nil {
		return fmt.Errorf("failed to list votes: %w", err)
	}
	votes, err = hydrateVotes(ctx, s.countryRepo, votes)
	if err != nil {
		return err
	}

	_ = s.snapshots.Invalidate(ctx, committee.ID)
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{
			"currentCountryIndex": index,
			"votes":               votes,
		},
	})
	return nil
}

// ClearVotes wipes the ballot's vote set (chair only). The cursor is
// left where it was.
func (s *DebateService) ClearVotes(ctx context.Context, caller *model.Caller) error {
	committee, md, err := s.requireMode(ctx, caller, model.ModeVoting)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	if err := s.voteRepo.DeleteAll(ctx, md.ID); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	_ = s.snapshots.Invalidate(ctx, committee.ID)
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{"votes": []model.Vote{}},
	})
	return nil
}

func (s *DebateService) emitQueue(ctx context.Context, committeeID, modeDataID string) error {
	queue, err := s.listRepo.List(ctx, modeDataID)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	queue, err = hydrateParticipants(ctx, s.countryRepo, queue)
	if err != nil {
		return err
	}
	_ = s.snapshots.Invalidate(ctx, committeeID)
	s.broadcaster.Broadcast(committeeID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{"listParticipants": queue},
	})
	return nil
}

func (s *DebateService) emitHands(ctx context.Context, committeeID, modeDataID string) error {
	hands, err := s.handRepo.List(ctx, modeDataID)
	if err != nil {
		return fmt.Errorf("failed to list hands: %w", err)
	}
	hands, err = hydrateHands(ctx, s.countryRepo, hands)
	if err != nil {
		return err
	}
	_ = s.snapshots.Invalidate(ctx, committeeID)
	s.broadcaster.Broadcast(committeeID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial{"raisedHands": hands},
	})
	return nil
}

func (s *DebateService) emitPartial(ctx context.Context, committeeID string, fields map[string]any) {
	_ = s.snapshots.Invalidate(ctx, committeeID)
	s.broadcaster.Broadcast(committeeID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: model.Partial(fields),
	})
}

func putSeconds(fields map[string]any, key string, value *int) error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > maxTimerSeconds {
		return fmt.Errorf("%w: %s out of range", ErrValidation, key)
	}
	fields[key] = *value
	return nil
}
