package service

import (
	"context"
	"fmt"

	"podium/internal/cache"
	"podium/internal/model"
	"podium/internal/repository"
)

// CommitteeService owns the committee root aggregate: the full
// projection served to (re)connecting subscribers, the roster and its
// roll states, and the name/agenda fields.
type CommitteeService struct {
	committeeRepo repository.CommitteeRepo
	countryRepo   repository.CountryRepo
	modeRepo      repository.ModeDataRepo
	listRepo      repository.ListParticipantRepo
	handRepo      repository.RaisedHandRepo
	voteRepo      repository.VoteRepo
	snapshots     cache.SnapshotCache
	broadcaster   Broadcaster
}

// NewCommitteeService creates a new committee service
func NewCommitteeService(
	committeeRepo repository.CommitteeRepo,
	countryRepo repository.CountryRepo,
	modeRepo repository.ModeDataRepo,
	listRepo repository.ListParticipantRepo,
	handRepo repository.RaisedHandRepo,
	voteRepo repository.VoteRepo,
	snapshots cache.SnapshotCache,
) *CommitteeService {
	return &CommitteeService{
		committeeRepo: committeeRepo,
		countryRepo:   countryRepo,
		modeRepo:      modeRepo,
		listRepo:      listRepo,
		handRepo:      handRepo,
		voteRepo:      voteRepo,
		snapshots:     snapshots,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *CommitteeService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Resolve maps a caller to their committee or fails with ErrNotInCommittee
func (s *CommitteeService) Resolve(ctx context.Context, caller *model.Caller) (*model.Committee, error) {
	if caller == nil || caller.CommitteeID == "" {
		return nil, ErrNotInCommittee
	}
	committee, err := s.committeeRepo.GetByID(ctx, caller.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get committee: %w", err)
	}
	if committee == nil {
		return nil, ErrNotInCommittee
	}
	return committee, nil
}

// Snapshot builds the full committee projection: the base fields plus
// the flattened fields of the single live mode-data record. Clients
// replace their whole local view with it.
func (s *CommitteeService) Snapshot(ctx context.Context, caller *model.Caller) (model.Partial, error) {
	committee, err := s.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	if cached, err := s.snapshots.Get(ctx, committee.ID); err == nil && cached != nil {
		return cached, nil
	}

	snapshot, err := s.buildSnapshot(ctx, committee)
	if err != nil {
		return nil, err
	}
	// Best effort: a cold cache only costs the next reader a rebuild.
	_ = s.snapshots.Set(ctx, committee.ID, snapshot)
	return snapshot, nil
}

// RebuildSnapshot recomputes the projection bypassing the cache; the
// mode switch broadcast uses it so subscribers never see a stale mode.
func (s *CommitteeService) RebuildSnapshot(ctx context.Context, committee *model.Committee) (model.Partial, error) {
	_ = s.snapshots.Invalidate(ctx, committee.ID)
	snapshot, err := s.buildSnapshot(ctx, committee)
	if err != nil {
		return nil, err
	}
	_ = s.snapshots.Set(ctx, committee.ID, snapshot)
	return snapshot, nil
}

func (s *CommitteeService) buildSnapshot(ctx context.Context, committee *model.Committee) (model.Partial, error) {
	countries, err := s.countryRepo.ListByCommittee(ctx, committee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}

	md, err := s.modeRepo.GetActive(ctx, committee)
	if err != nil {
		return nil, fmt.Errorf("failed to get mode data: %w", err)
	}
	if md == nil {
		return nil, ErrModeMismatch
	}

	snapshot := model.Partial{
		"name":        committee.Name,
		"agenda":      committee.Agenda,
		"countries":   countries,
		"currentMode": committee.CurrentMode,
	}

	switch committee.CurrentMode {
	case model.ModeGsl:
		if md.Gsl == nil {
			return nil, ErrModeMismatch
		}
		speaker, err := speakerOrNil(ctx, s.countryRepo, md.Gsl.SpeakerID)
		if err != nil {
			return nil, err
		}
		participants, err := s.listRepo.List(ctx, md.ID)
		if err != nil {
			return nil, err
		}
		participants, err = hydrateParticipants(ctx, s.countryRepo, participants)
		if err != nil {
			return nil, err
		}
		snapshot["speechTotalTime"] = md.Gsl.SpeechTotalTime
		snapshot["speechLastValue"] = md.Gsl.SpeechLastValue
		snapshot["speechPlayedAt"] = md.Gsl.SpeechPlayedAt
		snapshot["currentSpeaker"] = speaker
		snapshot["acceptingSignups"] = md.Gsl.AcceptingSignups
		snapshot["listParticipants"] = participants
	case model.ModeMod:
		if md.Mod == nil {
			return nil, ErrModeMismatch
		}
		speaker, err := speakerOrNil(ctx, s.countryRepo, md.Mod.SpeakerID)
		if err != nil {
			return nil, err
		}
		hands, err := s.handRepo.List(ctx, md.ID)
		if err != nil {
			return nil, err
		}
		hands, err = hydrateHands(ctx, s.countryRepo, hands)
		if err != nil {
			return nil, err
		}
		snapshot["totalTime"] = md.Mod.TotalTime
		snapshot["lastValue"] = md.Mod.LastValue
		snapshot["playedAt"] = md.Mod.PlayedAt
		snapshot["speechTotalTime"] = md.Mod.SpeechTotalTime
		snapshot["speechLastValue"] = md.Mod.SpeechLastValue
		snapshot["speechPlayedAt"] = md.Mod.SpeechPlayedAt
		snapshot["currentSpeaker"] = speaker
		snapshot["acceptingHands"] = md.Mod.AcceptingHands
		snapshot["raisedHands"] = hands
		snapshot["topic"] = md.Mod.Topic
	case model.ModeUnmod:
		if md.Unmod == nil {
			return nil, ErrModeMismatch
		}
		snapshot["totalTime"] = md.Unmod.TotalTime
		snapshot["lastValue"] = md.Unmod.LastValue
		snapshot["playedAt"] = md.Unmod.PlayedAt
		snapshot["topic"] = md.Unmod.Topic
	case model.ModeSingle:
		if md.Single == nil {
			return nil, ErrModeMismatch
		}
		speaker, err := speakerOrNil(ctx, s.countryRepo, md.Single.SpeakerID)
		if err != nil {
			return nil, err
		}
		snapshot["speechTotalTime"] = md.Single.SpeechTotalTime
		snapshot["speechLastValue"] = md.Single.SpeechLastValue
		snapshot["speechPlayedAt"] = md.Single.SpeechPlayedAt
		snapshot["currentSpeaker"] = speaker
	case model.ModeVoting:
		if md.Voting == nil {
			return nil, ErrModeMismatch
		}
		votes, err := s.voteRepo.List(ctx, md.ID)
		if err != nil {
			return nil, err
		}
		votes, err = hydrateVotes(ctx, s.countryRepo, votes)
		if err != nil {
			return nil, err
		}
		snapshot["type"] = md.Voting.Type
		snapshot["topic"] = md.Voting.Topic
		snapshot["currentCountryIndex"] = md.Voting.CurrentCountryIndex
		snapshot["openToDelegateVotes"] = md.Voting.OpenToDelegateVotes
		snapshot["votes"] = votes
	default:
		return nil, ErrModeMismatch
	}

	return snapshot, nil
}

// UpdateInfo edits the committee name and/or agenda (chair only)
func (s *CommitteeService) UpdateInfo(ctx context.Context, caller *model.Caller, name, agenda *string) error {
	committee, err := s.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}
	if name != nil && *name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	if err := s.committeeRepo.UpdateInfo(ctx, committee.ID, name, agenda); err != nil {
		return fmt.Errorf("failed to update committee: %w", err)
	}
	_ = s.snapshots.Invalidate(ctx, committee.ID)

	partial := model.Partial{}
	if name != nil {
		partial["name"] = *name
	}
	if agenda != nil {
		partial["agenda"] = *agenda
	}
	s.broadcaster.Broadcast(committee.ID, model.ChannelCommittee, model.UpdateEvent{
		Type: model.EventPartial,
		Data: partial,
	})
	return nil
}

// ListCountries returns the committee roster ordered by short name
func (s *CommitteeService) ListCountries(ctx context.Context, caller *model.Caller) ([]model.Country, error) {
	committee, err := s.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.countryRepo.ListByCommittee(ctx, committee.ID)
}

// OwnCountry returns the delegate caller's country
func (s *CommitteeService) OwnCountry(ctx context.Context, caller *model.Caller) (*model.Country, error) {
	if _, err := s.Resolve(ctx, caller); err != nil {
		return nil, err
	}
	if caller.Role != model.RoleDelegate {
		return nil, ErrForbidden
	}
	country, err := s.countryRepo.GetByID(ctx, caller.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil {
		return nil, ErrNotInCommittee
	}
	return country, nil
}

// UpdateRoll sets a country's attendance state. The chair may set any
// country; a delegate only their own (self roll call).
func (s *CommitteeService) UpdateRoll(ctx context.Context, caller *model.Caller, countryID string, roll model.Roll) error {
	committee, err := s.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !model.ValidRoll(roll) {
		return fmt.Errorf("%w: unknown roll state %q", ErrValidation, roll)
	}
	if !caller.IsChair() && !caller.Owns(countryID) {
		return ErrForbidden
	}

	existing, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return fmt.Errorf("failed to get country: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("%w: country %s", ErrNotFound, countryID)
	}
	if existing.CommitteeID != committee.ID {
		return ErrForbidden
	}

	country, err := s.countryRepo.SetRoll(ctx, countryID, roll)
	if err != nil {
		return fmt.Errorf("failed to set roll: %w", err)
	}
	if country == nil {
		return fmt.Errorf("%w: country %s", ErrNotFound, countryID)
	}
	_ = s.snapshots.Invalidate(ctx, committee.ID)

	s.broadcaster.Broadcast(committee.ID, model.ChannelCountries, model.UpdateEvent{
		Type: model.EventUpdate,
		Data: country,
	})
	return nil
}
