package mongodb

import (
	"context"
	"time"

	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure EntryTransactionRepository implements the interface
var _ repositories.EntryTransactionRepository = (*EntryTransactionRepository)(nil)

// EntryTransactionRepository handles MongoDB operations for EntryTransaction
type EntryTransactionRepository struct {
	collection *mongo.Collection
}

// NewEntryTransactionRepository creates a new EntryTransactionRepository
func NewEntryTransactionRepository(db *mongo.Database) *EntryTransactionRepository {
	return &EntryTransactionRepository{
		collection: db.Collection("entry_transactions"),
	}
}

// Create inserts a new ledger audit record
func (r *EntryTransactionRepository) Create(ctx context.Context, tx *models.EntryTransaction) error {
	tx.ID = primitive.NewObjectID()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, tx)
	return err
}

// FindByUserID finds a page of a user's ledger records, newest first
func (r *EntryTransactionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var transactions []*models.EntryTransaction
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*models.EntryTransaction{}
	}
	return transactions, nil
}
