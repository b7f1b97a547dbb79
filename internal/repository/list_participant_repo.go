package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListParticipantRepo is the GSL FIFO queue. Ordering is insertion
// order (createdAt ascending) and nothing else; the unique index on
// (modeDataId, countryId) rejects duplicate signups.
type ListParticipantRepo interface {
	Add(ctx context.Context, p *model.ListParticipant) error
	List(ctx context.Context, modeDataID string) ([]model.ListParticipant, error)
	Remove(ctx context.Context, id string) error
	RemoveByCountry(ctx context.Context, modeDataID, countryID string) error
	Contains(ctx context.Context, modeDataID, countryID string) (bool, error)
}

type listParticipantRepo struct {
	collection *mongo.Collection
}

func NewListParticipantRepo(db *mongo.Database) ListParticipantRepo {
	return &listParticipantRepo{collection: db.Collection(colListParticipants)}
}

func (r *listParticipantRepo) Add(ctx context.Context, p *model.ListParticipant) error {
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *listParticipantRepo) List(ctx context.Context, modeDataID string) ([]model.ListParticipant, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"modeDataId": modeDataID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var participants []model.ListParticipant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *listParticipantRepo) Remove(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *listParticipantRepo) RemoveByCountry(ctx context.Context, modeDataID, countryID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"modeDataId": modeDataID, "countryId": countryID})
	return err
}

func (r *listParticipantRepo) Contains(ctx context.Context, modeDataID, countryID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"modeDataId": modeDataID, "countryId": countryID})
	return n > 0, err
}
