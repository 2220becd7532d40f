package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// IDRegistry keys used_ids by the identifier, so a duplicate insert is the
// collision signal.
type IDRegistry struct {
	coll *mongo.Collection
}

func NewIDRegistry(db *mongo.Database) *IDRegistry {
	return &IDRegistry{coll: db.Collection(collectionUsedIDs)}
}

type usedID struct {
	ID       string    `bson:"_id"`
	IssuedAt time.Time `bson:"issued_at"`
}

func (r *IDRegistry) Reserve(ctx context.Context, id string, issuedAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, usedID{ID: id, IssuedAt: issuedAt}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("reserve id: %w", err)
	}
	return true, nil
}
