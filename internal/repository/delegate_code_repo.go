package repository

import (
	"context"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type DelegateCodeRepo interface {
	Create(ctx context.Context, code *model.DelegateCode) error
	// Redeem deletes the code and returns it, or mongo.ErrNoDocuments
	// when it does not exist (or was already redeemed).
	Redeem(ctx context.Context, code string) (*model.DelegateCode, error)
}

type delegateCodeRepo struct {
	collection *mongo.Collection
}

func NewDelegateCodeRepo(db *mongo.Database) DelegateCodeRepo {
	return &delegateCodeRepo{collection: db.Collection(colDelegateCodes)}
}

func (r *delegateCodeRepo) Create(ctx context.Context, code *model.DelegateCode) error {
	_, err := r.collection.InsertOne(ctx, code)
	return err
}

func (r *delegateCodeRepo) Redeem(ctx context.Context, code string) (*model.DelegateCode, error) {
	// Delete-and-return keeps redemption one-shot under concurrent use.
	var dc model.DelegateCode
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": code}).Decode(&dc)
	if err != nil {
		return nil, err
	}
	return &dc, nil
}
