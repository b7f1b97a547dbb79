package repository

import (
	"context"
	"fmt"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ModeDataRepo is the single accessor over the tagged-union mode data.
// All reads of "the committee's live mode state" go through GetActive,
// which pairs the committee's currentMode with the record of that kind;
// records of other kinds are invisible to readers even when they
// transiently coexist during a mode switch.
type ModeDataRepo interface {
	Create(ctx context.Context, md *model.ModeData) error
	GetActive(ctx context.Context, committee *model.Committee) (*model.ModeData, error)
	GetByMode(ctx context.Context, committeeID string, mode model.DebateMode) (*model.ModeData, error)
	// UpdateVariant applies a $set of variant-local field names (e.g.
	// "speechLastValue") to the record's active variant.
	UpdateVariant(ctx context.Context, id string, mode model.DebateMode, fields map[string]any) error
	// AdvanceVotingIndex atomically increments the voting cursor,
	// wrapping at modulo, and returns the new value.
	AdvanceVotingIndex(ctx context.Context, id string, modulo int) (int, error)
	DeleteByMode(ctx context.Context, committeeID string, mode model.DebateMode) error
}

type modeDataRepo struct {
	collection *mongo.Collection
}

func NewModeDataRepo(db *mongo.Database) ModeDataRepo {
	return &modeDataRepo{collection: db.Collection(colModeData)}
}

func (r *modeDataRepo) Create(ctx context.Context, md *model.ModeData) error {
	_, err := r.collection.InsertOne(ctx, md)
	return err
}

func (r *modeDataRepo) GetActive(ctx context.Context, committee *model.Committee) (*model.ModeData, error) {
	return r.GetByMode(ctx, committee.ID, committee.CurrentMode)
}

func (r *modeDataRepo) GetByMode(ctx context.Context, committeeID string, mode model.DebateMode) (*model.ModeData, error) {
	var md model.ModeData
	err := r.collection.FindOne(ctx, bson.M{"committeeId": committeeID, "mode": mode}).Decode(&md)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &md, nil
}

func (r *modeDataRepo) UpdateVariant(ctx context.Context, id string, mode model.DebateMode, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[string(mode)+"."+k] = v
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "mode": mode}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mode data %s not found for mode %s", id, mode)
	}
	return nil
}

func (r *modeDataRepo) AdvanceVotingIndex(ctx context.Context, id string, modulo int) (int, error) {
	if modulo < 1 {
		modulo = 1
	}
	// Pipeline update keeps increment-and-wrap atomic under concurrent votes.
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"voting.currentCountryIndex": bson.M{
				"$mod": bson.A{
					bson.M{"$add": bson.A{"$voting.currentCountryIndex", 1}},
					modulo,
				},
			},
		}}},
	}
	var md model.ModeData
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "mode": model.ModeVoting},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&md)
	if err != nil {
		return 0, err
	}
	if md.Voting == nil {
		return 0, fmt.Errorf("mode data %s has no voting variant", id)
	}
	return md.Voting.CurrentCountryIndex, nil
}

func (r *modeDataRepo) DeleteByMode(ctx context.Context, committeeID string, mode model.DebateMode) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"committeeId": committeeID, "mode": mode})
	return err
}
