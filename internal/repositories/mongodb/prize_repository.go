package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure PrizeRepository implements the interface
var _ repositories.PrizeRepository = (*PrizeRepository)(nil)

// PrizeRepository handles MongoDB operations for Prize
type PrizeRepository struct {
	collection *mongo.Collection
}

// NewPrizeRepository creates a new PrizeRepository
func NewPrizeRepository(db *mongo.Database) *PrizeRepository {
	return &PrizeRepository{
		collection: db.Collection("prizes"),
	}
}

// Create inserts a new prize
func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	prize.ID = primitive.NewObjectID()
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, prize)
	return err
}

// FindByID finds a prize by ID
func (r *PrizeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	var prize models.Prize
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&prize)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrPrizeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prize, nil
}

func (r *PrizeRepository) find(ctx context.Context, filter bson.M) ([]*models.Prize, error) {
	var prizes []*models.Prize
	opts := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &prizes); err != nil {
		return nil, err
	}
	if prizes == nil {
		prizes = []*models.Prize{}
	}
	return prizes, nil
}

// FindAll retrieves all prizes
func (r *PrizeRepository) FindAll(ctx context.Context) ([]*models.Prize, error) {
	return r.find(ctx, bson.M{})
}

// FindByStatus retrieves prizes in any of the given statuses
func (r *PrizeRepository) FindByStatus(ctx context.Context, statuses []models.PrizeStatus) ([]*models.Prize, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

// FindEndedUndrawn returns prizes whose end date has passed, that have no
// winners and are not terminal. These are the scheduler's draw candidates.
func (r *PrizeRepository) FindEndedUndrawn(ctx context.Context, now time.Time) ([]*models.Prize, error) {
	filter := bson.M{
		"endDate":   bson.M{"$lte": now},
		"winners.0": bson.M{"$exists": false},
		"status": bson.M{"$nin": []models.PrizeStatus{
			models.PrizeStatusDrawn, models.PrizeStatusCancelled, models.PrizeStatusDrawing,
		}},
	}
	return r.find(ctx, filter)
}

// FindNonTerminal returns every prize whose status can still change
func (r *PrizeRepository) FindNonTerminal(ctx context.Context) ([]*models.Prize, error) {
	filter := bson.M{"status": bson.M{"$nin": []models.PrizeStatus{
		models.PrizeStatusDrawn, models.PrizeStatusCancelled, models.PrizeStatusDrawing,
	}}}
	return r.find(ctx, filter)
}

// Update replaces an existing prize document. Reserved for admin edits;
// participant and winner mutations go through the atomic methods below.
func (r *PrizeRepository) Update(ctx context.Context, prize *models.Prize) error {
	prize.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": prize.ID}, bson.M{"$set": prize})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrPrizeNotFound
	}
	return nil
}

// Delete removes a prize by ID
func (r *PrizeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrPrizeNotFound
	}
	return nil
}

// CommitEntries adds n entries for a user on an active prize. Two conditional
// updates cover the existing-row and first-entry cases; both enforce the
// per-user cap and the active status inside the update filter, so concurrent
// commits cannot race past the cap. maxPerUser <= 0 means no cap.
func (r *PrizeRepository) CommitEntries(ctx context.Context, prizeID, userID primitive.ObjectID, username string, n, maxPerUser int64) error {
	if n <= 0 {
		return errors.New("entries to commit must be positive")
	}
	now := time.Now()

	// Existing participant row: bump it if the cap allows
	rowMatch := bson.M{"userId": userID}
	if maxPerUser > 0 {
		rowMatch["entries"] = bson.M{"$lte": maxPerUser - n}
	}
	filter := bson.M{
		"_id":          prizeID,
		"status":       models.PrizeStatusActive,
		"participants": bson.M{"$elemMatch": rowMatch},
	}
	update := bson.M{
		"$inc": bson.M{"participants.$.entries": n, "totalEntries": n},
		"$set": bson.M{"updatedAt": now},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// First entry for this user: push a new row unless n alone exceeds the cap
	if maxPerUser <= 0 || n <= maxPerUser {
		filter = bson.M{
			"_id":                 prizeID,
			"status":              models.PrizeStatusActive,
			"participants.userId": bson.M{"$ne": userID},
		}
		update = bson.M{
			"$push": bson.M{"participants": models.Participant{UserID: userID, Username: username, Entries: n}},
			"$inc":  bson.M{"totalEntries": n},
			"$set":  bson.M{"updatedAt": now},
		}
		result, err = r.collection.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount > 0 {
			return nil
		}
	}

	// Neither matched: work out why for a precise error
	prize, err := r.FindByID(ctx, prizeID)
	if err != nil {
		return err
	}
	if prize.Status != models.PrizeStatusActive {
		return apperrors.ErrPrizeNotActive
	}
	return apperrors.ErrMaxEntriesExceeded
}

// ClaimForDraw conditionally moves a prize into the transient drawing status.
// The winners-empty predicate doubles as the idempotency guard: a second
// claim, or a claim on a drawn prize, fails with ErrAlreadyDrawn.
func (r *PrizeRepository) ClaimForDraw(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error) {
	filter := bson.M{
		"_id":       prizeID,
		"winners.0": bson.M{"$exists": false},
		"status": bson.M{"$nin": []models.PrizeStatus{
			models.PrizeStatusDrawn, models.PrizeStatusCancelled, models.PrizeStatusDrawing,
		}},
	}
	update := bson.M{"$set": bson.M{"status": models.PrizeStatusDrawing, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var prize models.Prize
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&prize)
	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": prizeID})
		if countErr != nil {
			return nil, countErr
		}
		if count == 0 {
			return nil, apperrors.ErrPrizeNotFound
		}
		return nil, apperrors.ErrAlreadyDrawn
	}
	if err != nil {
		return nil, err
	}
	return &prize, nil
}

// SetWinners writes the winner list and finalises the prize as drawn
func (r *PrizeRepository) SetWinners(ctx context.Context, prizeID primitive.ObjectID, winners []models.PrizeWinner) error {
	update := bson.M{"$set": bson.M{
		"winners":   winners,
		"status":    models.PrizeStatusDrawn,
		"updatedAt": time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": prizeID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrPrizeNotFound
	}
	return nil
}

// SetStatus transitions status from one value to another; the from guard
// keeps concurrent recomputations from clobbering a terminal state.
func (r *PrizeRepository) SetStatus(ctx context.Context, prizeID primitive.ObjectID, from, to models.PrizeStatus) error {
	filter := bson.M{"_id": prizeID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// MarkWinnerNotified flags one winner row as notified
func (r *PrizeRepository) MarkWinnerNotified(ctx context.Context, prizeID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": prizeID, "winners.userId": userID}
	update := bson.M{"$set": bson.M{"winners.$.notified": true, "updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}
