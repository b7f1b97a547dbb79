package service

import (
	"context"
	"fmt"
	"time"

	"podium/internal/cache"
	"podium/internal/model"
	"podium/internal/repository"

	"github.com/google/uuid"
)

// SpeechService is the floor-time ledger. Entries outlive mode
// switches: the ledger records who held the floor for how long across
// the whole life of a committee.
type SpeechService struct {
	speechRepo  repository.SpeechRepo
	countryRepo repository.CountryRepo
	stats       cache.StatsCache
	broadcaster Broadcaster
}

// NewSpeechService creates a new speech service
func NewSpeechService(
	speechRepo repository.SpeechRepo,
	countryRepo repository.CountryRepo,
	stats cache.StatsCache,
) *SpeechService {
	return &SpeechService{
		speechRepo:  speechRepo,
		countryRepo: countryRepo,
		stats:       stats,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *SpeechService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Open creates an open ledger entry (length nil) for a country taking
// the floor and returns it.
func (s *SpeechService) Open(ctx context.Context, committeeID, countryID string) (*model.Speech, error) {
	speech := &model.Speech{
		ID:          uuid.New().String(),
		CommitteeID: committeeID,
		CountryID:   countryID,
		CreatedAt:   time.Now(),
	}
	if err := s.speechRepo.Create(ctx, speech); err != nil {
		return nil, fmt.Errorf("failed to create speech: %w", err)
	}

	country, err := s.countryRepo.GetByID(ctx, countryID)
	if err == nil {
		speech.Country = country
	}
	s.broadcaster.Broadcast(committeeID, model.ChannelSpeeches, model.UpdateEvent{
		Type: model.EventNew,
		Data: speech,
	})
	return speech, nil
}

// Close sets the entry's terminal length exactly once. A second close
// fails with ErrSpeechClosed; negative lengths are clamped to zero.
func (s *SpeechService) Close(ctx context.Context, speechID string, length int) error {
	if length < 0 {
		length = 0
	}
	if err := s.speechRepo.Close(ctx, speechID, length); err != nil {
		if err == repository.ErrAlreadyClosed {
			return ErrSpeechClosed
		}
		return fmt.Errorf("failed to close speech: %w", err)
	}

	speech, err := s.speechRepo.GetByID(ctx, speechID)
	if err != nil || speech == nil {
		return nil
	}
	_ = s.stats.AddSpeakingTime(ctx, speech.CommitteeID, speech.CountryID, length)

	country, err := s.countryRepo.GetByID(ctx, speech.CountryID)
	if err == nil {
		speech.Country = country
	}
	s.broadcaster.Broadcast(speech.CommitteeID, model.ChannelSpeeches, model.UpdateEvent{
		Type: model.EventUpdate,
		Data: speech,
	})
	return nil
}

// Rate attaches a chair rating and/or comments to an entry, open or
// closed, and may attribute it to a delegate.
func (s *SpeechService) Rate(ctx context.Context, caller *model.Caller, speechID string, rating *int, comments, delegateID *string) error {
	if !caller.IsChair() {
		return ErrForbidden
	}
	if rating != nil && (*rating < 0 || *rating > 10) {
		return fmt.Errorf("%w: rating must be between 0 and 10", ErrValidation)
	}

	speech, err := s.speechRepo.GetByID(ctx, speechID)
	if err != nil {
		return fmt.Errorf("failed to get speech: %w", err)
	}
	if speech == nil {
		return fmt.Errorf("%w: speech %s", ErrNotFound, speechID)
	}
	if speech.CommitteeID != caller.CommitteeID {
		return ErrForbidden
	}

	updated, err := s.speechRepo.Rate(ctx, speechID, rating, comments)
	if err != nil {
		return fmt.Errorf("failed to rate speech: %w", err)
	}
	if delegateID != nil {
		updated, err = s.speechRepo.Attribute(ctx, speechID, *delegateID)
		if err != nil {
			return fmt.Errorf("failed to attribute speech: %w", err)
		}
	}

	country, err := s.countryRepo.GetByID(ctx, updated.CountryID)
	if err == nil {
		updated.Country = country
	}
	s.broadcaster.Broadcast(updated.CommitteeID, model.ChannelSpeeches, model.UpdateEvent{
		Type: model.EventUpdate,
		Data: updated,
	})
	return nil
}

// List returns the caller's committee ledger, newest first
func (s *SpeechService) List(ctx context.Context, caller *model.Caller) ([]model.Speech, error) {
	if caller.CommitteeID == "" {
		return nil, ErrNotInCommittee
	}
	speeches, err := s.speechRepo.List(ctx, caller.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list speeches: %w", err)
	}
	for i := range speeches {
		country, err := s.countryRepo.GetByID(ctx, speeches[i].CountryID)
		if err != nil {
			return nil, err
		}
		speeches[i].Country = country
	}
	if speeches == nil {
		speeches = []model.Speech{}
	}
	return speeches, nil
}

// Clear wipes the committee's ledger and speaking-time tally (chair only)
func (s *SpeechService) Clear(ctx context.Context, caller *model.Caller) error {
	if caller.CommitteeID == "" {
		return ErrNotInCommittee
	}
	if !caller.IsChair() {
		return ErrForbidden
	}
	if err := s.speechRepo.DeleteAll(ctx, caller.CommitteeID); err != nil {
		return fmt.Errorf("failed to clear speeches: %w", err)
	}
	_ = s.stats.Reset(ctx, caller.CommitteeID)

	s.broadcaster.Broadcast(caller.CommitteeID, model.ChannelSpeeches, model.UpdateEvent{
		Type: model.EventFull,
		Data: []model.Speech{},
	})
	return nil
}

// Stats returns cumulative speaking seconds for the caller's country
// and for the caller personally (where speeches were attributed).
func (s *SpeechService) Stats(ctx context.Context, caller *model.Caller) (*model.SpeakingStats, error) {
	if caller.Role != model.RoleDelegate {
		return nil, ErrForbidden
	}
	sums, err := s.speechRepo.SumByCountry(ctx, caller.CountryID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum speeches: %w", err)
	}
	stats := &model.SpeakingStats{}
	for _, sum := range sums {
		stats.Country += sum.Total
		if sum.DelegateID != nil && *sum.DelegateID == caller.DelegateID {
			stats.Delegate = sum.Total
		}
	}
	return stats, nil
}

// TableRow is one country's ledger roll-up for the chair's table
type TableRow struct {
	Country       model.Country `json:"country"`
	Speeches      int           `json:"speeches"`
	TotalSeconds  int           `json:"totalSeconds"`
	AverageRating *float64      `json:"averageRating"`
}

// Table returns a per-country roll-up of the ledger: speech count,
// total closed speaking seconds, average rating where rated. Chair
// only. Countries without speeches still get a row.
func (s *SpeechService) Table(ctx context.Context, caller *model.Caller) ([]TableRow, error) {
	if caller.CommitteeID == "" {
		return nil, ErrNotInCommittee
	}
	if !caller.IsChair() {
		return nil, ErrForbidden
	}

	countries, err := s.countryRepo.ListByCommittee(ctx, caller.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	speeches, err := s.speechRepo.List(ctx, caller.CommitteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list speeches: %w", err)
	}

	rows := make([]TableRow, len(countries))
	index := make(map[string]*TableRow, len(countries))
	for i, country := range countries {
		rows[i] = TableRow{Country: country}
		index[country.ID] = &rows[i]
	}
	ratings := make(map[string][2]int) // countryID -> {sum, count}
	for _, speech := range speeches {
		row, ok := index[speech.CountryID]
		if !ok {
			continue
		}
		row.Speeches++
		if speech.Length != nil {
			row.TotalSeconds += *speech.Length
		}
		if speech.Rating != nil {
			r := ratings[speech.CountryID]
			ratings[speech.CountryID] = [2]int{r[0] + *speech.Rating, r[1] + 1}
		}
	}
	for countryID, r := range ratings {
		avg := float64(r[0]) / float64(r[1])
		index[countryID].AverageRating = &avg
	}
	return rows, nil
}

// TopSpeakers returns the committee's ranked speaking-time tally
func (s *SpeechService) TopSpeakers(ctx context.Context, caller *model.Caller, limit int) ([]cache.SpeakerEntry, error) {
	if caller.CommitteeID == "" {
		return nil, ErrNotInCommittee
	}
	if limit <= 0 {
		limit = 10
	}
	return s.stats.GetTopSpeakers(ctx, caller.CommitteeID, limit)
}
