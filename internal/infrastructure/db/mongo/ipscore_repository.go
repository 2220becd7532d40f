package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ksalp/portal/internal/core/domain"
)

type IPScoreRepository struct {
	coll *mongo.Collection
}

func NewIPScoreRepository(db *mongo.Database) *IPScoreRepository {
	return &IPScoreRepository{coll: db.Collection(collectionIPs)}
}

type mongoIPScore struct {
	IP    string `bson:"_id"`
	Score int    `bson:"score"`
	Notes string `bson:"notes"`
}

// GetOrCreate upserts with $setOnInsert so an existing score is never reset.
func (r *IPScoreRepository) GetOrCreate(ctx context.Context, ip string, initial int) (*domain.IPScore, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$setOnInsert": bson.M{"score": initial, "notes": domain.DefaultIPNotes}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoIPScore
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": ip}, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent first-sight upsert; the winner's document exists now.
		err = r.coll.FindOne(ctx, bson.M{"_id": ip}).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("get ip score: %w", err)
	}
	return &domain.IPScore{IP: doc.IP, Score: doc.Score, Notes: doc.Notes}, nil
}

func (r *IPScoreRepository) UpdateScore(ctx context.Context, ip string, score int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": ip}, bson.M{"$set": bson.M{"score": score}}); err != nil {
		return fmt.Errorf("update ip score: %w", err)
	}
	return nil
}
