package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CountryRepo interface {
	Create(ctx context.Context, country *model.Country) error
	GetByID(ctx context.Context, id string) (*model.Country, error)
	// ListByCommittee returns the roster ordered by short name
	ListByCommittee(ctx context.Context, committeeID string) ([]model.Country, error)
	CountByCommittee(ctx context.Context, committeeID string) (int, error)
	SetRoll(ctx context.Context, id string, roll model.Roll) (*model.Country, error)
}

type countryRepo struct {
	collection *mongo.Collection
}

func NewCountryRepo(db *mongo.Database) CountryRepo {
	return &countryRepo{collection: db.Collection(colCountries)}
}

func (r *countryRepo) Create(ctx context.Context, country *model.Country) error {
	_, err := r.collection.InsertOne(ctx, country)
	return err
}

func (r *countryRepo) GetByID(ctx context.Context, id string) (*model.Country, error) {
	var country model.Country
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&country)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

func (r *countryRepo) ListByCommittee(ctx context.Context, committeeID string) ([]model.Country, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"committeeId": committeeID},
		options.Find().SetSort(bson.D{{Key: "shortName", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var countries []model.Country
	if err := cursor.All(ctx, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *countryRepo) CountByCommittee(ctx context.Context, committeeID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"committeeId": committeeID})
	return int(n), err
}

func (r *countryRepo) SetRoll(ctx context.Context, id string, roll model.Roll) (*model.Country, error) {
	var country model.Country
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"roll": roll}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&country)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}
