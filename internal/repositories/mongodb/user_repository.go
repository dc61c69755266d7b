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

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrDuplicateUser
	}
	return err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByUsername finds a user by username
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindByReferralCode finds a user by their referral code
func (r *UserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"referralCode": code})
}

// FindAll retrieves all users (consider pagination for production)
func (r *UserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Count returns the number of registered users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CreditEntries atomically increments availableEntries (and, for lifetime
// credits, totalEntries plus the earned stat) for a user.
func (r *UserRepository) CreditEntries(ctx context.Context, id primitive.ObjectID, amount int64, lifetime bool) error {
	if amount <= 0 {
		return errors.New("credit amount must be positive")
	}
	inc := bson.M{"availableEntries": amount}
	if lifetime {
		inc["totalEntries"] = amount
		inc["stats.totalEntriesEarned"] = amount
	}
	update := bson.M{"$inc": inc, "$set": bson.M{"updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DebitEntries decrements availableEntries with a conditional predicate so
// the balance can never go negative, even under concurrent debits.
func (r *UserRepository) DebitEntries(ctx context.Context, id primitive.ObjectID, amount int64) error {
	if amount <= 0 {
		return errors.New("debit amount must be positive")
	}
	filter := bson.M{"_id": id, "availableEntries": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"availableEntries": -amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish a missing user from an insufficient balance
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrInsufficientBalance
	}
	return nil
}

// CreditCash atomically increments the cash balance
func (r *UserRepository) CreditCash(ctx context.Context, id primitive.ObjectID, amount float64) error {
	if amount <= 0 {
		return errors.New("cash amount must be positive")
	}
	update := bson.M{
		"$inc": bson.M{"cashBalance": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// AppendPrizeEntry appends one commitment log row
func (r *UserRepository) AppendPrizeEntry(ctx context.Context, id primitive.ObjectID, entry models.PrizeEntry) error {
	update := bson.M{"$push": bson.M{"prizeEntries": entry}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// AppendWin appends one win log row
func (r *UserRepository) AppendWin(ctx context.Context, id primitive.ObjectID, win models.Win) error {
	update := bson.M{"$push": bson.M{"wins": win}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// IncrementStat atomically increments a single stat counter
func (r *UserRepository) IncrementStat(ctx context.Context, id primitive.ObjectID, stat models.StatKey, by int64) error {
	update := bson.M{"$inc": bson.M{"stats." + string(stat): by}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// AddExperience increments experience and refreshes the cached level from the
// post-increment total. Returns the updated user.
func (r *UserRepository) AddExperience(ctx context.Context, id primitive.ObjectID, xp int64) (*models.User, error) {
	update := bson.M{"$inc": bson.M{"experience": xp}}
	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	level := models.LevelForExperience(user.Experience)
	if level != user.Level {
		_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"level": level}})
		if err != nil {
			return nil, err
		}
		user.Level = level
	}
	return &user, nil
}

// AddAchievement adds an achievement id to the set; the unlock is idempotent
func (r *UserRepository) AddAchievement(ctx context.Context, id primitive.ObjectID, achievementID string) (bool, error) {
	update := bson.M{"$addToSet": bson.M{"achievements": achievementID}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return false, err
	}
	if result.MatchedCount == 0 {
		return false, apperrors.ErrUserNotFound
	}
	return result.ModifiedCount > 0, nil
}

// SetStreak replaces the streak sub-document
func (r *UserRepository) SetStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error {
	update := bson.M{"$set": bson.M{"streak": streak, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ClaimDailyBonus stamps lastDailyBonus once per calendar day. The filter
// admits only documents whose last claim predates the start of now's day, so
// two racing claims cannot both match.
func (r *UserRepository) ClaimDailyBonus(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"lastDailyBonus": bson.M{"$exists": false}},
			bson.M{"lastDailyBonus": bson.M{"$lt": startOfDay}},
		},
	}
	update := bson.M{"$set": bson.M{"lastDailyBonus": now, "updatedAt": now}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrDailyLimitReached
	}
	return nil
}

// SetReferredBy records the referrer once; reports false if already set
func (r *UserRepository) SetReferredBy(ctx context.Context, id primitive.ObjectID, referrer primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "referredBy": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"referredBy": referrer, "updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ApplyWheelSpin applies a spin reward and refreshes lastWheelSpin in one
// conditional update keyed on the pre-spin timestamp. A racing second spin
// sees a changed lastWheelSpin and fails with ErrCooldownActive.
func (r *UserRepository) ApplyWheelSpin(ctx context.Context, id primitive.ObjectID, prevSpin, now time.Time, reward repositories.WheelReward) error {
	filter := bson.M{"_id": id}
	if prevSpin.IsZero() {
		filter["$or"] = bson.A{
			bson.M{"lastWheelSpin": bson.M{"$exists": false}},
			bson.M{"lastWheelSpin": time.Time{}},
		}
	} else {
		filter["lastWheelSpin"] = prevSpin
	}

	inc := bson.M{"stats.wheelSpins": int64(1), "experience": reward.Experience}
	if reward.Entries > 0 {
		inc["availableEntries"] = reward.Entries
		inc["totalEntries"] = reward.Entries
		inc["stats.totalEntriesEarned"] = reward.Entries
	}
	if reward.Cash > 0 {
		inc["cashBalance"] = reward.Cash
		inc["stats.totalCashWon"] = reward.Cash
		inc["stats.instantWins"] = int64(1)
	}
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"lastWheelSpin": now, "updatedAt": now},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrUserNotFound
		}
		return apperrors.ErrCooldownActive
	}
	return nil
}
