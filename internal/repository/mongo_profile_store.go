package repository

import (
	"context"
	"errors"
	"fmt"

	"GigCredit/internal/domain/models"
	domrepo "GigCredit/internal/domain/repository"
	pkgmongo "GigCredit/pkg/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profilesCollection = "credit_profiles"

// MongoProfileStore keeps one document per user in credit_profiles.
type MongoProfileStore struct {
	client *pkgmongo.Client
	coll   *mongo.Collection
}

var _ domrepo.ProfileStore = (*MongoProfileStore)(nil)

func NewMongoProfileStore(client *pkgmongo.Client) *MongoProfileStore {
	return &MongoProfileStore{client: client, coll: client.Collection(profilesCollection)}
}

// EnsureIndexes creates the unique userId index.
func (s *MongoProfileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user"),
	})
	if err != nil {
		return fmt.Errorf("ensure %s indexes: %w", profilesCollection, err)
	}
	return nil
}

// Upsert replaces the user's profile, last write wins.
func (s *MongoProfileStore) Upsert(ctx context.Context, p *models.CreditProfile) error {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	_, err := s.coll.ReplaceOne(ctx, bson.M{"userId": p.UserID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *MongoProfileStore) Get(ctx context.Context, userID string) (*models.CreditProfile, error) {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	var p models.CreditProfile
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	return &p, nil
}
