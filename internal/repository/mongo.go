package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	colCommittees       = "committees"
	colCountries        = "countries"
	colModeData         = "mode_data"
	colListParticipants = "list_participants"
	colRaisedHands      = "raised_hands"
	colVotes            = "votes"
	colSpeeches         = "speeches"
	colMotions          = "motions"
	colDocuments        = "documents"
	colPoints           = "points"
	colDelegateCodes    = "delegate_codes"
)

// EnsureIndexes creates the unique indexes the write paths rely on for
// mutual exclusion: duplicate queue entries, duplicate raised hands and
// duplicate ballots are rejected by the store, not by application locks.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		colModeData: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "mode", Value: 1}}, Options: unique},
		},
		colListParticipants: {
			{Keys: bson.D{{Key: "modeDataId", Value: 1}, {Key: "countryId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "modeDataId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		colRaisedHands: {
			{Keys: bson.D{{Key: "modeDataId", Value: 1}, {Key: "countryId", Value: 1}}, Options: unique},
		},
		colVotes: {
			{Keys: bson.D{{Key: "modeDataId", Value: 1}, {Key: "countryId", Value: 1}}, Options: unique},
		},
		colCountries: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "shortName", Value: 1}}, Options: unique},
		},
		colSpeeches: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colMotions: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}}},
		},
		colDocuments: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}, {Key: "updatedAt", Value: 1}}},
		},
		colPoints: {
			{Keys: bson.D{{Key: "committeeId", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// IsDuplicateKey reports whether err is a unique-index violation
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
