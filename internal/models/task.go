package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskType selects the verification method for a task
type TaskType string

const (
	TaskTypeAdWatch  TaskType = "ad_watch"
	TaskTypeSurvey   TaskType = "survey"
	TaskTypeVisitURL TaskType = "visit_url"
	TaskTypeSocial   TaskType = "social"
)

// Task is an admin-defined earning opportunity
type Task struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Type         TaskType           `bson:"type" json:"type"`
	Reward       int64              `bson:"reward" json:"reward"` // entries credited on completion
	Repeatable   bool               `bson:"repeatable" json:"repeatable"`
	Active       bool               `bson:"active" json:"active"`
	Verification Verification       `bson:"verification" json:"verification"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Verification is a tagged union keyed by Type: only the fields relevant to
// the task's verification method are populated.
type Verification struct {
	Type TaskType `bson:"type" json:"type"`

	// ad_watch
	AdNetwork    string `bson:"adNetwork,omitempty" json:"adNetwork,omitempty"`
	MinWatchSecs int    `bson:"minWatchSecs,omitempty" json:"minWatchSecs,omitempty"`

	// survey
	SurveyProvider string `bson:"surveyProvider,omitempty" json:"surveyProvider,omitempty"`
	CompletionCode string `bson:"completionCode,omitempty" json:"completionCode,omitempty"`

	// visit_url
	TargetURL   string `bson:"targetUrl,omitempty" json:"targetUrl,omitempty"`
	MinStaySecs int    `bson:"minStaySecs,omitempty" json:"minStaySecs,omitempty"`

	// social
	Platform string `bson:"platform,omitempty" json:"platform,omitempty"`
	Handle   string `bson:"handle,omitempty" json:"handle,omitempty"`
}

// TaskCompletion records that a user completed a task. Rows for
// non-repeatable tasks carry Repeatable false and are unique per
// (userId, taskId); repeatable tasks accumulate one row per completion.
type TaskCompletion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	TaskID      primitive.ObjectID `bson:"taskId" json:"taskId"`
	TaskType    TaskType           `bson:"taskType" json:"taskType"`
	Repeatable  bool               `bson:"repeatable" json:"repeatable"`
	Reward      int64              `bson:"reward" json:"reward"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}
