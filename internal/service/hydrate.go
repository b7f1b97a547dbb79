package service

import (
	"context"
	"fmt"

	"podium/internal/model"
	"podium/internal/repository"
)

// Collection payloads always carry the country inline so subscribers
// can render them without a second query.

func hydrateParticipants(ctx context.Context, countries repository.CountryRepo, participants []model.ListParticipant) ([]model.ListParticipant, error) {
	for i := range participants {
		country, err := countries.GetByID(ctx, participants[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
		participants[i].Country = country
	}
	if participants == nil {
		participants = []model.ListParticipant{}
	}
	return participants, nil
}

func hydrateHands(ctx context.Context, countries repository.CountryRepo, hands []model.RaisedHand) ([]model.RaisedHand, error) {
	for i := range hands {
		country, err := countries.GetByID(ctx, hands[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
		hands[i].Country = country
	}
	if hands == nil {
		hands = []model.RaisedHand{}
	}
	return hands, nil
}

func hydrateVotes(ctx context.Context, countries repository.CountryRepo, votes []model.Vote) ([]model.Vote, error) {
	for i := range votes {
		country, err := countries.GetByID(ctx, votes[i].CountryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get country: %w", err)
		}
		votes[i].Country = country
	}
	if votes == nil {
		votes = []model.Vote{}
	}
	return votes, nil
}

func speakerOrNil(ctx context.Context, countries repository.CountryRepo, speakerID *string) (*model.Country, error) {
	if speakerID == nil {
		return nil, nil
	}
	return countries.GetByID(ctx, *speakerID)
}
