package service

import (
	"context"
	"fmt"
	"time"

	"podium/internal/model"
	"podium/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// MotionService manages the committee's motion queue. Motions are
// advisory: accepting or rejecting one only removes it from the queue,
// the chair drives any resulting mode change explicitly.
type MotionService struct {
	motionRepo   repository.MotionRepo
	documentRepo repository.DocumentRepo
	countryRepo  repository.CountryRepo
	committeeSvc *CommitteeService
	broadcaster  Broadcaster
}

// NewMotionService creates a new motion service
func NewMotionService(motionRepo repository.MotionRepo, documentRepo repository.DocumentRepo, countryRepo repository.CountryRepo, committeeSvc *CommitteeService) *MotionService {
	return &MotionService{
		motionRepo:   motionRepo,
		documentRepo: documentRepo,
		countryRepo:  countryRepo,
		committeeSvc: committeeSvc,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *MotionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// MotionInput is a motion proposal; only the fields relevant to Type
// are read.
type MotionInput struct {
	Type           model.MotionType `json:"type"`
	CountryID      *string          `json:"countryId"`
	Note           string           `json:"note"`
	Topic          *string          `json:"topic"`
	Duration       int              `json:"duration"`
	SpeechDuration int              `json:"speechDuration"`
	DocumentID     string           `json:"documentId"`
}

// Propose queues a motion. A delegate proposes on behalf of their own
// country; the chair may record a motion for any country or with no
// proposer at all.
func (s *MotionService) Propose(ctx context.Context, caller *model.Caller, in MotionInput) (*model.Motion, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	countryID := in.CountryID
	if !caller.IsChair() {
		if caller.CountryID == "" {
			return nil, ErrForbidden
		}
		countryID = &caller.CountryID
	}
	if countryID != nil {
		country, err := s.countryRepo.GetByID(ctx, *countryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
		if country == nil || country.CommitteeID != committee.ID {
			return nil, fmt.Errorf("%w: country %s", ErrNotFound, *countryID)
		}
	}

	motion := &model.Motion{
		ID:             uuid.New().String(),
		CommitteeID:    committee.ID,
		CountryID:      countryID,
		Type:           in.Type,
		Note:           in.Note,
		Topic:          in.Topic,
		Duration:       in.Duration,
		SpeechDuration: in.SpeechDuration,
		DocumentID:     in.DocumentID,
		CreatedAt:      time.Now(),
	}
	if err := motion.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if motion.Type == model.MotionIntroduceDocument {
		doc, err := s.documentRepo.GetByID(ctx, motion.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
		if doc == nil || doc.CommitteeID != committee.ID {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, motion.DocumentID)
		}
	}

	if err := s.motionRepo.Create(ctx, motion); err != nil {
		return nil, fmt.Errorf("failed to create motion: %w", err)
	}

	if countryID != nil {
		motion.Country, err = s.countryRepo.GetByID(ctx, *countryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
	}
	s.broadcaster.Broadcast(committee.ID, model.ChannelMotions, model.UpdateEvent{
		Type: model.EventNew,
		Data: motion,
	})
	return motion, nil
}

// List returns the committee's pending motions, oldest first
func (s *MotionService) List(ctx context.Context, caller *model.Caller) ([]model.Motion, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	motions, err := s.motionRepo.List(ctx, committee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list motions: %w", err)
	}
	for i := range motions {
		if motions[i].CountryID == nil {
			continue
		}
		country, err := s.countryRepo.GetByID(ctx, *motions[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
		motions[i].Country = country
	}
	if motions == nil {
		motions = []model.Motion{}
	}
	return motions, nil
}

// Accept removes a decided motion from the queue (chair only)
func (s *MotionService) Accept(ctx context.Context, caller *model.Caller, motionID string) error {
	return s.dispose(ctx, caller, motionID)
}

// Reject removes a declined motion from the queue (chair only)
func (s *MotionService) Reject(ctx context.Context, caller *model.Caller, motionID string) error {
	return s.dispose(ctx, caller, motionID)
}

func (s *MotionService) dispose(ctx context.Context, caller *model.Caller, motionID string) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	committeeID, err := s.motionRepo.Delete(ctx, motionID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: motion %s", ErrNotFound, motionID)
		}
		return fmt.Errorf("failed to delete motion: %w", err)
	}
	if committeeID != committee.ID {
		return fmt.Errorf("%w: motion %s", ErrNotFound, motionID)
	}

	s.broadcaster.Broadcast(committee.ID, model.ChannelMotions, model.UpdateEvent{
		Type: model.EventDelete,
		Data: model.Partial{"id": motionID},
	})
	return nil
}
