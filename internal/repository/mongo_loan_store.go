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

const loansCollection = "loans"

// MongoLoanStore keeps one document per loan with offers and repayments
// embedded. Updates are conditional on {_id, version}.
type MongoLoanStore struct {
	client *pkgmongo.Client
	coll   *mongo.Collection
}

var _ domrepo.LoanStore = (*MongoLoanStore)(nil)

func NewMongoLoanStore(client *pkgmongo.Client) *MongoLoanStore {
	return &MongoLoanStore{client: client, coll: client.Collection(loansCollection)}
}

// EnsureIndexes creates the lookup indexes used by the list queries.
func (s *MongoLoanStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "borrowerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "lenderId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure %s indexes: %w", loansCollection, err)
	}
	return nil
}

func (s *MongoLoanStore) Create(ctx context.Context, l *models.Loan) error {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	if _, err := s.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("create loan %s: %w", l.ID, err)
	}
	return nil
}

func (s *MongoLoanStore) Get(ctx context.Context, id string) (*models.Loan, error) {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	var l models.Loan
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domrepo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get loan %s: %w", id, err)
	}
	return &l, nil
}

// Update replaces the document only while its version is still expectedVersion.
func (s *MongoLoanStore) Update(ctx context.Context, l *models.Loan, expectedVersion int64) error {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	l.Version = expectedVersion + 1
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID, "version": expectedVersion}, l)
	if err != nil {
		l.Version = expectedVersion
		return fmt.Errorf("update loan %s: %w", l.ID, err)
	}
	if res.MatchedCount == 0 {
		l.Version = expectedVersion
		n, err := s.coll.CountDocuments(ctx, bson.M{"_id": l.ID})
		if err != nil {
			return fmt.Errorf("update loan %s: %w", l.ID, err)
		}
		if n == 0 {
			return domrepo.ErrNotFound
		}
		return domrepo.ErrVersionConflict
	}
	return nil
}

func (s *MongoLoanStore) ListByBorrower(ctx context.Context, borrowerID string) ([]*models.Loan, error) {
	return s.find(ctx, bson.M{"borrowerId": borrowerID})
}

func (s *MongoLoanStore) ListForLender(ctx context.Context, lenderID string) ([]*models.Loan, error) {
	return s.find(ctx, bson.M{"$or": bson.A{
		bson.M{"status": models.LoanPending},
		bson.M{"lenderId": lenderID},
	}})
}

func (s *MongoLoanStore) find(ctx context.Context, filter bson.M) ([]*models.Loan, error) {
	ctx, cancel := s.client.QueryContext(ctx)
	defer cancel()

	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Loan
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}
	return out, nil
}
