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

type LoginRepository struct {
	coll *mongo.Collection
}

func NewLoginRepository(db *mongo.Database) *LoginRepository {
	return &LoginRepository{coll: db.Collection(collectionLogins)}
}

type mongoLogin struct {
	Token      string    `bson:"_id"`
	AccountID  string    `bson:"account"`
	ValidUntil time.Time `bson:"valid"`
	Browser    string    `bson:"browser"`
}

func (r *LoginRepository) FindByToken(ctx context.Context, token string) (*domain.Login, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ml mongoLogin
	if err := r.coll.FindOne(ctx, bson.M{"_id": token}).Decode(&ml); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLoginNotFound
		}
		return nil, fmt.Errorf("find login: %w", err)
	}
	return &domain.Login{
		Token:       ml.Token,
		AccountID:   ml.AccountID,
		ValidUntil:  ml.ValidUntil.UTC(),
		Fingerprint: ml.Browser,
	}, nil
}

func (r *LoginRepository) Save(ctx context.Context, login *domain.Login) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLogin{
		Token:      login.Token,
		AccountID:  login.AccountID,
		ValidUntil: login.ValidUntil,
		Browser:    login.Fingerprint,
	}
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": login.Token}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save login: %w", err)
	}
	return nil
}
