package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a participant in the platform
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email            string             `bson:"email" json:"email"`
	Username         string             `bson:"username" json:"username"`
	PasswordHash     string             `bson:"passwordHash" json:"-"`
	TotalEntries     int64              `bson:"totalEntries" json:"totalEntries"`
	AvailableEntries int64              `bson:"availableEntries" json:"availableEntries"`
	CashBalance      float64            `bson:"cashBalance" json:"cashBalance"`
	PrizeEntries     []PrizeEntry       `bson:"prizeEntries,omitempty" json:"prizeEntries,omitempty"`
	Wins             []Win              `bson:"wins,omitempty" json:"wins,omitempty"`
	Stats            UserStats          `bson:"stats" json:"stats"`
	Streak           Streak             `bson:"streak" json:"streak"`
	Level            int                `bson:"level" json:"level"`
	Experience       int64              `bson:"experience" json:"experience"`
	Achievements     []string           `bson:"achievements,omitempty" json:"achievements,omitempty"`
	LastWheelSpin    time.Time          `bson:"lastWheelSpin,omitempty" json:"lastWheelSpin,omitempty"`
	LastDailyBonus   time.Time          `bson:"lastDailyBonus,omitempty" json:"lastDailyBonus,omitempty"`
	ReferralCode     string             `bson:"referralCode" json:"referralCode"`
	ReferredBy       primitive.ObjectID `bson:"referredBy,omitempty" json:"referredBy,omitempty"`
	IsAdmin          bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PrizeEntry is one append-only log row per entry commitment. A user entering
// the same prize several times produces several rows.
type PrizeEntry struct {
	PrizeID     primitive.ObjectID `bson:"prizeId" json:"prizeId"`
	EntriesUsed int64              `bson:"entriesUsed" json:"entriesUsed"`
	EnteredAt   time.Time          `bson:"enteredAt" json:"enteredAt"`
}

// Win is one append-only log row per prize won
type Win struct {
	PrizeID primitive.ObjectID `bson:"prizeId" json:"prizeId"`
	WonAt   time.Time          `bson:"wonAt" json:"wonAt"`
	Claimed bool               `bson:"claimed" json:"claimed"`
}

// UserStats holds the counters that feed achievements
type UserStats struct {
	AdsWatched         int64   `bson:"adsWatched" json:"adsWatched"`
	SurveysCompleted   int64   `bson:"surveysCompleted" json:"surveysCompleted"`
	TasksCompleted     int64   `bson:"tasksCompleted" json:"tasksCompleted"`
	ReferralsMade      int64   `bson:"referralsMade" json:"referralsMade"`
	PrizesWon          int64   `bson:"prizesWon" json:"prizesWon"`
	TotalEntriesEarned int64   `bson:"totalEntriesEarned" json:"totalEntriesEarned"`
	WheelSpins         int64   `bson:"wheelSpins" json:"wheelSpins"`
	InstantWins        int64   `bson:"instantWins" json:"instantWins"`
	TotalCashWon       float64 `bson:"totalCashWon" json:"totalCashWon"`
}

// Streak tracks consecutive-day logins
type Streak struct {
	Current       int       `bson:"current" json:"current"`
	Longest       int       `bson:"longest" json:"longest"`
	LastLoginDate time.Time `bson:"lastLoginDate,omitempty" json:"lastLoginDate,omitempty"`
}

// LevelForExperience computes the level implied by an experience total.
// Level 1 starts at 0 XP; each further level requires quadratically more.
func LevelForExperience(experience int64) int {
	if experience < 0 {
		experience = 0
	}
	return int(math.Sqrt(float64(experience)/100)) + 1
}
