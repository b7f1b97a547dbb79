package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VoteRepo holds one ballot record per (modeDataId, countryId). Upsert
// gives re-votes last-write-wins semantics.
type VoteRepo interface {
	Upsert(ctx context.Context, vote *model.Vote) error
	Get(ctx context.Context, modeDataID, countryID string) (*model.Vote, error)
	List(ctx context.Context, modeDataID string) ([]model.Vote, error)
	DeleteAll(ctx context.Context, modeDataID string) error
}

type voteRepo struct {
	collection *mongo.Collection
}

func NewVoteRepo(db *mongo.Database) VoteRepo {
	return &voteRepo{collection: db.Collection(colVotes)}
}

func (r *voteRepo) Upsert(ctx context.Context, vote *model.Vote) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"modeDataId": vote.ModeDataID, "countryId": vote.CountryID},
		bson.M{
			"$set":         bson.M{"vote": vote.Choice},
			"$setOnInsert": bson.M{"_id": vote.ID},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *voteRepo) Get(ctx context.Context, modeDataID, countryID string) (*model.Vote, error) {
	var vote model.Vote
	err := r.collection.FindOne(ctx, bson.M{"modeDataId": modeDataID, "countryId": countryID}).Decode(&vote)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepo) List(ctx context.Context, modeDataID string) ([]model.Vote, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"modeDataId": modeDataID})
	if err != nil {
		return nil, err
	}
	var votes []model.Vote
	if err := cursor.All(ctx, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepo) DeleteAll(ctx context.Context, modeDataID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"modeDataId": modeDataID})
	return err
}
