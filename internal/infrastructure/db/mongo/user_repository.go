package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ksalp/portal/internal/core/domain"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Email       string    `bson:"mail"`
	Salt        []byte    `bson:"salt"`
	Hash        []byte    `bson:"hash"`
	Newsletter  bool      `bson:"newsletter"`
	CreatedAt   time.Time `bson:"created"`
	Theme       string    `bson:"theme"`
	IFrame      bool      `bson:"iframe"`
	Payment     time.Time `bson:"payment"`
	PaymentLite time.Time `bson:"payment_lite"`
	Banned      []string  `bson:"banned"`
	Search      string    `bson:"search"`
	Classes     []string  `bson:"classes"`
	Grade       string    `bson:"grade"`
	Favorites   []string  `bson:"favorites"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Salt:        u.Salt,
		Hash:        u.Hash,
		Newsletter:  u.Newsletter,
		CreatedAt:   u.CreatedAt,
		Theme:       u.Theme,
		IFrame:      u.IFrame,
		Payment:     u.Payment,
		PaymentLite: u.PaymentLite,
		Banned:      nonNil(u.Banned),
		Search:      u.Search,
		Classes:     nonNil(u.Classes),
		Grade:       u.Grade,
		Favorites:   nonNil(u.Favorites),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:          mu.ID,
		Name:        mu.Name,
		Email:       mu.Email,
		Salt:        mu.Salt,
		Hash:        mu.Hash,
		Newsletter:  mu.Newsletter,
		CreatedAt:   mu.CreatedAt.UTC(),
		Theme:       mu.Theme,
		IFrame:      mu.IFrame,
		Payment:     mu.Payment.UTC(),
		PaymentLite: mu.PaymentLite.UTC(),
		Banned:      nonNil(mu.Banned),
		Search:      mu.Search,
		Classes:     nonNil(mu.Classes),
		Grade:       mu.Grade,
		Favorites:   nonNil(mu.Favorites),
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"mail": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toMongoUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, toMongoUser(user), options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
