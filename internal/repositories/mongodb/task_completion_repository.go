package mongodb

import (
	"context"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.TaskCompletionRepository = (*TaskCompletionRepository)(nil)

// TaskCompletionRepository handles MongoDB operations for TaskCompletion.
// A partial unique index on (userId, taskId) over repeatable:false rows backs
// the non-repeatable rule while letting repeatable tasks accumulate rows.
type TaskCompletionRepository struct {
	collection *mongo.Collection
}

// NewTaskCompletionRepository creates a new TaskCompletionRepository
func NewTaskCompletionRepository(db *mongo.Database) *TaskCompletionRepository {
	return &TaskCompletionRepository{
		collection: db.Collection("task_completions"),
	}
}

// Create inserts a completion record
func (r *TaskCompletionRepository) Create(ctx context.Context, completion *models.TaskCompletion) error {
	completion.ID = primitive.NewObjectID()
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, completion)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.ErrAlreadyCompleted
	}
	return err
}

// HasCompleted reports whether the user has ever completed the task
func (r *TaskCompletionRepository) HasCompleted(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"userId": userID, "taskId": taskID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByTypeSince counts a user's completions of one task type since a time.
// Backs per-day cooldown rules such as the daily ad-watch cap.
func (r *TaskCompletionRepository) CountByTypeSince(ctx context.Context, userID primitive.ObjectID, taskType models.TaskType, since time.Time) (int64, error) {
	filter := bson.M{
		"userId":      userID,
		"taskType":    taskType,
		"completedAt": bson.M{"$gte": since},
	}
	return r.collection.CountDocuments(ctx, filter)
}
