package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MotionRepo interface {
	Create(ctx context.Context, motion *model.Motion) error
	List(ctx context.Context, committeeID string) ([]model.Motion, error)
	// Delete removes a motion and returns its committee id, or
	// mongo.ErrNoDocuments when it was already gone.
	Delete(ctx context.Context, id string) (string, error)
}

type motionRepo struct {
	collection *mongo.Collection
}

func NewMotionRepo(db *mongo.Database) MotionRepo {
	return &motionRepo{collection: db.Collection(colMotions)}
}

func (r *motionRepo) Create(ctx context.Context, motion *model.Motion) error {
	_, err := r.collection.InsertOne(ctx, motion)
	return err
}

func (r *motionRepo) List(ctx context.Context, committeeID string) ([]model.Motion, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"committeeId": committeeID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	var motions []model.Motion
	if err := cursor.All(ctx, &motions); err != nil {
		return nil, err
	}
	return motions, nil
}

func (r *motionRepo) Delete(ctx context.Context, id string) (string, error) {
	var motion model.Motion
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&motion)
	if err != nil {
		return "", err
	}
	return motion.CommitteeID, nil
}
