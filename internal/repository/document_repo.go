package repository

import (
	"context"
	"time"

	"podium/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentUpdate carries the optional fields of a document edit
type DocumentUpdate struct {
	Type     *model.DocumentType
	State    *model.DocumentState
	Title    *string
	URL      *string
	Comments *string
}

type DocumentRepo interface {
	Create(ctx context.Context, doc *model.Document) error
	GetByID(ctx context.Context, id string) (*model.Document, error)
	// List returns the committee's documents, least recently updated first
	List(ctx context.Context, committeeID string) ([]model.Document, error)
	Update(ctx context.Context, id string, upd DocumentUpdate) (*model.Document, error)
	Delete(ctx context.Context, id string) (string, error)
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(db *mongo.Database) DocumentRepo {
	return &documentRepo{collection: db.Collection(colDocuments)}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.Document) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) List(ctx context.Context, committeeID string) ([]model.Document, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"committeeId": committeeID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []model.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) Update(ctx context.Context, id string, upd DocumentUpdate) (*model.Document, error) {
	set := bson.M{"updatedAt": time.Now()}
	if upd.Type != nil {
		set["type"] = *upd.Type
	}
	if upd.State != nil {
		set["state"] = *upd.State
	}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.URL != nil {
		set["url"] = *upd.URL
	}
	if upd.Comments != nil {
		set["comments"] = *upd.Comments
	}
	var doc model.Document
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) (string, error) {
	var doc model.Document
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return "", err
	}
	return doc.CommitteeID, nil
}
