package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RaisedHandRepo is the moderated-caucus raised-hands set, keyed by
// country via the unique index on (modeDataId, countryId).
type RaisedHandRepo interface {
	Add(ctx context.Context, hand *model.RaisedHand) error
	List(ctx context.Context, modeDataID string) ([]model.RaisedHand, error)
	// RemoveByCountry is idempotent: removing an unraised hand is a no-op.
	RemoveByCountry(ctx context.Context, modeDataID, countryID string) error
	DeleteAll(ctx context.Context, modeDataID string) error
}

type raisedHandRepo struct {
	collection *mongo.Collection
}

func NewRaisedHandRepo(db *mongo.Database) RaisedHandRepo {
	return &raisedHandRepo{collection: db.Collection(colRaisedHands)}
}

func (r *raisedHandRepo) Add(ctx context.Context, hand *model.RaisedHand) error {
	_, err := r.collection.InsertOne(ctx, hand)
	return err
}

func (r *raisedHandRepo) List(ctx context.Context, modeDataID string) ([]model.RaisedHand, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"modeDataId": modeDataID})
	if err != nil {
		return nil, err
	}
	var hands []model.RaisedHand
	if err := cursor.All(ctx, &hands); err != nil {
		return nil, err
	}
	return hands, nil
}

func (r *raisedHandRepo) RemoveByCountry(ctx context.Context, modeDataID, countryID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"modeDataId": modeDataID, "countryId": countryID})
	return err
}

func (r *raisedHandRepo) DeleteAll(ctx context.Context, modeDataID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"modeDataId": modeDataID})
	return err
}
