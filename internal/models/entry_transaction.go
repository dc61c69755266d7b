package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies a ledger mutation
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
	TransactionRefund TransactionType = "refund" // returns spent entries, never counts as earned
)

// EntrySource attributes a credit to the event that produced it
type EntrySource string

const (
	SourceWelcome     EntrySource = "welcome"
	SourceTask        EntrySource = "task"
	SourceAd          EntrySource = "ad"
	SourceSurvey      EntrySource = "survey"
	SourceReferral    EntrySource = "referral"
	SourceDailyBonus  EntrySource = "daily_bonus"
	SourceWheel       EntrySource = "wheel"
	SourceAchievement EntrySource = "achievement"
	SourcePurchase    EntrySource = "purchase"
	SourceAdminGrant  EntrySource = "admin_grant"
	SourcePrizeEntry  EntrySource = "prize_entry"
	SourcePrizeRefund EntrySource = "prize_refund"
)

// EntryTransaction records a single entries-ledger mutation for audit
type EntryTransaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      TransactionType    `bson:"type" json:"type"`
	Amount    int64              `bson:"amount" json:"amount"`
	Source    EntrySource        `bson:"source" json:"source"`
	Reference string             `bson:"reference,omitempty" json:"reference,omitempty"` // task id, prize id, achievement id...
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
