package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PointRepo interface {
	Create(ctx context.Context, point *model.Point) error
	List(ctx context.Context, committeeID string) ([]model.Point, error)
	// Exists reports whether the country already has an open point of
	// the given type.
	Exists(ctx context.Context, committeeID, countryID string, pointType model.PointType) (bool, error)
	Delete(ctx context.Context, id string) (string, error)
}

type pointRepo struct {
	collection *mongo.Collection
}

func NewPointRepo(db *mongo.Database) PointRepo {
	return &pointRepo{collection: db.Collection(colPoints)}
}

func (r *pointRepo) Create(ctx context.Context, point *model.Point) error {
	_, err := r.collection.InsertOne(ctx, point)
	return err
}

func (r *pointRepo) List(ctx context.Context, committeeID string) ([]model.Point, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"committeeId": committeeID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
	if err != nil {
		return nil, err
	}
	var points []model.Point
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (r *pointRepo) Exists(ctx context.Context, committeeID, countryID string, pointType model.PointType) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"committeeId": committeeID,
		"countryId":   countryID,
		"type":        pointType,
	})
	return n > 0, err
}

func (r *pointRepo) Delete(ctx context.Context, id string) (string, error) {
	var point model.Point
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&point)
	if err != nil {
		return "", err
	}
	return point.CommitteeID, nil
}
