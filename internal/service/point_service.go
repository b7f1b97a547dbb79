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

// PointService manages parliamentary points. Points carry no reply
// payload: resolution is deletion.
type PointService struct {
	pointRepo    repository.PointRepo
	countryRepo  repository.CountryRepo
	committeeSvc *CommitteeService
	broadcaster  Broadcaster
}

// NewPointService creates a new point service
func NewPointService(pointRepo repository.PointRepo, countryRepo repository.CountryRepo, committeeSvc *CommitteeService) *PointService {
	return &PointService{
		pointRepo:    pointRepo,
		countryRepo:  countryRepo,
		committeeSvc: committeeSvc,
	}
}

// SetBroadcaster sets the broadcaster for live updates
func (s *PointService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Raise opens a point for the caller's country (the chair may open one
// for any country). A country holds at most one open point per type;
// a second is rejected.
func (s *PointService) Raise(ctx context.Context, caller *model.Caller, countryID string, pointType model.PointType) (*model.Point, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !caller.IsChair() && !caller.Owns(countryID) {
		return nil, ErrForbidden
	}
	if !model.ValidPointType(pointType) {
		return nil, fmt.Errorf("%w: unknown point type %q", ErrValidation, pointType)
	}

	country, err := s.countryRepo.GetByID(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get country: %w", err)
	}
	if country == nil || country.CommitteeID != committee.ID {
		return nil, fmt.Errorf("%w: country %s", ErrNotFound, countryID)
	}

	open, err := s.pointRepo.Exists(ctx, committee.ID, countryID, pointType)
	if err != nil {
		return nil, fmt.Errorf("failed to check open points: %w", err)
	}
	if open {
		return nil, fmt.Errorf("%w: point already open", ErrPrecondition)
	}

	point := &model.Point{
		ID:          uuid.New().String(),
		CommitteeID: committee.ID,
		CountryID:   countryID,
		Type:        pointType,
		CreatedAt:   time.Now(),
	}
	if err := s.pointRepo.Create(ctx, point); err != nil {
		return nil, fmt.Errorf("failed to create point: %w", err)
	}

	point.Country = country
	s.broadcaster.Broadcast(committee.ID, model.ChannelPoints, model.UpdateEvent{
		Type: model.EventNew,
		Data: point,
	})
	return point, nil
}

// List returns the committee's open points, oldest first
func (s *PointService) List(ctx context.Context, caller *model.Caller) ([]model.Point, error) {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	points, err := s.pointRepo.List(ctx, committee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list points: %w", err)
	}
	for i := range points {
		points[i].Country, err = s.countryRepo.GetByID(ctx, points[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
	}
	if points == nil {
		points = []model.Point{}
	}
	return points, nil
}

// Resolve closes a point by deleting it (chair only)
func (s *PointService) Resolve(ctx context.Context, caller *model.Caller, pointID string) error {
	committee, err := s.committeeSvc.Resolve(ctx, caller)
	if err != nil {
		return err
	}
	if !caller.IsChair() {
		return ErrForbidden
	}

	committeeID, err := s.pointRepo.Delete(ctx, pointID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: point %s", ErrNotFound, pointID)
		}
		return fmt.Errorf("failed to delete point: %w", err)
	}
	if committeeID != committee.ID {
		return fmt.Errorf("%w: point %s", ErrNotFound, pointID)
	}

	s.broadcaster.Broadcast(committee.ID, model.ChannelPoints, model.UpdateEvent{
		Type: model.EventDelete,
		Data: model.Partial{"id": pointID},
	})
	return nil
}
