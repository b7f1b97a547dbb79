package repository

import (
	"context"
	"errors"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyClosed is returned by Close when the entry has a length set
var ErrAlreadyClosed = errors.New("speech already closed")

// DelegateSum is a per-delegate cumulative speech length in seconds
type DelegateSum struct {
	DelegateID *string `bson:"_id"`
	Total      int     `bson:"total"`
}

type SpeechRepo interface {
	Create(ctx context.Context, speech *model.Speech) error
	GetByID(ctx context.Context, id string) (*model.Speech, error)
	// List returns the committee's ledger, newest first
	List(ctx context.Context, committeeID string) ([]model.Speech, error)
	// Close sets the terminal length exactly once; a second close fails
	// with ErrAlreadyClosed.
	Close(ctx context.Context, id string, length int) error
	Rate(ctx context.Context, id string, rating *int, comments *string) (*model.Speech, error)
	// Attribute records which delegate actually gave the speech
	Attribute(ctx context.Context, id string, delegateID string) (*model.Speech, error)
	DeleteAll(ctx context.Context, committeeID string) error
	// SumByCountry groups the country's closed speeches by delegate
	SumByCountry(ctx context.Context, countryID string) ([]DelegateSum, error)
}

type speechRepo struct {
	collection *mongo.Collection
}

func NewSpeechRepo(db *mongo.Database) SpeechRepo {
	return &speechRepo{collection: db.Collection(colSpeeches)}
}

func (r *speechRepo) Create(ctx context.Context, speech *model.Speech) error {
	_, err := r.collection.InsertOne(ctx, speech)
	return err
}

func (r *speechRepo) GetByID(ctx context.Context, id string) (*model.Speech, error) {
	var speech model.Speech
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&speech)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &speech, nil
}

func (r *speechRepo) List(ctx context.Context, committeeID string) ([]model.Speech, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"committeeId": committeeID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var speeches []model.Speech
	if err := cursor.All(ctx, &speeches); err != nil {
		return nil, err
	}
	return speeches, nil
}

func (r *speechRepo) Close(ctx context.Context, id string, length int) error {
	// The length==nil filter is the open/closed guard: a racing second
	// close matches nothing.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "length": nil},
		bson.M{"$set": bson.M{"length": length}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAlreadyClosed
	}
	return nil
}

func (r *speechRepo) Rate(ctx context.Context, id string, rating *int, comments *string) (*model.Speech, error) {
	set := bson.M{}
	if rating != nil {
		set["rating"] = *rating
	}
	if comments != nil {
		set["comments"] = *comments
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	var speech model.Speech
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&speech)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &speech, nil
}

func (r *speechRepo) Attribute(ctx context.Context, id string, delegateID string) (*model.Speech, error) {
	var speech model.Speech
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"delegateId": delegateID}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&speech)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &speech, nil
}

func (r *speechRepo) DeleteAll(ctx context.Context, committeeID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"committeeId": committeeID})
	return err
}

func (r *speechRepo) SumByCountry(ctx context.Context, countryID string) ([]DelegateSum, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"countryId": countryID, "length": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$delegateId",
			"total": bson.M{"$sum": "$length"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	var sums []DelegateSum
	if err := cursor.All(ctx, &sums); err != nil {
		return nil, err
	}
	return sums, nil
}
