package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ksalp/portal/internal/core/domain"
)

type MailCheckRepository struct {
	coll *mongo.Collection
}

func NewMailCheckRepository(db *mongo.Database) *MailCheckRepository {
	return &MailCheckRepository{coll: db.Collection(collectionMailCheck)}
}

type mongoMailCheck struct {
	ID         string                `bson:"_id"`
	Code       string                `bson:"code"`
	Account    domain.PendingAccount `bson:"account"`
	ValidUntil time.Time             `bson:"valid"`
	ConsumedAt *time.Time            `bson:"consumed_at"`
}

func (r *MailCheckRepository) Insert(ctx context.Context, check *domain.MailCheck) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoMailCheck{
		ID:         check.ID,
		Code:       check.Code,
		Account:    check.Account,
		ValidUntil: check.ValidUntil,
		ConsumedAt: check.ConsumedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert mail check: %w", err)
	}
	return nil
}

func (r *MailCheckRepository) FindByCode(ctx context.Context, code string) (*domain.MailCheck, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoMailCheck
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find mail check: %w", err)
	}

	check := &domain.MailCheck{
		ID:         doc.ID,
		Code:       doc.Code,
		Account:    doc.Account,
		ValidUntil: doc.ValidUntil.UTC(),
	}
	if doc.ConsumedAt != nil {
		at := doc.ConsumedAt.UTC()
		check.ConsumedAt = &at
	}
	return check, nil
}

// Consume relies on single-document atomicity: only one concurrent update
// can match the unconsumed filter.
func (r *MailCheckRepository) Consume(ctx context.Context, code string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"code":        code,
		"consumed_at": nil,
		"valid":       bson.M{"$gt": at},
	}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"consumed_at": at}})
	if err != nil {
		return false, fmt.Errorf("consume mail check: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MailCheckRepository) Release(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": bson.M{"consumed_at": nil}}); err != nil {
		return fmt.Errorf("release mail check: %w", err)
	}
	return nil
}

func (r *MailCheckRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete mail check: %w", err)
	}
	return nil
}
