package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type CommitteeRepo interface {
	Create(ctx context.Context, committee *model.Committee) error
	GetByID(ctx context.Context, id string) (*model.Committee, error)
	SetMode(ctx context.Context, id string, mode model.DebateMode) error
	UpdateInfo(ctx context.Context, id string, name, agenda *string) error
	Delete(ctx context.Context, id string) error
}

type committeeRepo struct {
	collection *mongo.Collection
}

func NewCommitteeRepo(db *mongo.Database) CommitteeRepo {
	return &committeeRepo{collection: db.Collection(colCommittees)}
}

func (r *committeeRepo) Create(ctx context.Context, committee *model.Committee) error {
	_, err := r.collection.InsertOne(ctx, committee)
	return err
}

func (r *committeeRepo) GetByID(ctx context.Context, id string) (*model.Committee, error) {
	var committee model.Committee
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&committee)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &committee, nil
}

func (r *committeeRepo) SetMode(ctx context.Context, id string, mode model.DebateMode) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"currentMode": mode}},
	)
	return err
}

func (r *committeeRepo) UpdateInfo(ctx context.Context, id string, name, agenda *string) error {
	set := bson.M{}
	if name != nil {
		set["name"] = *name
	}
	if agenda != nil {
		set["agenda"] = *agenda
	}
	if len(set) == 0 {
		return nil
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *committeeRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
