package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrizeStatus represents the lifecycle status of a prize
type PrizeStatus string

const (
	PrizeStatusUpcoming  PrizeStatus = "upcoming"
	PrizeStatusActive    PrizeStatus = "active"
	PrizeStatusEnded     PrizeStatus = "ended"
	PrizeStatusDrawing   PrizeStatus = "drawing" // transient, set while the draw engine holds the prize
	PrizeStatusDrawn     PrizeStatus = "drawn"
	PrizeStatusCancelled PrizeStatus = "cancelled"
)

// PrizeType categorises what a winner receives
type PrizeType string

const (
	PrizeTypeCash     PrizeType = "cash"
	PrizeTypeGiftcard PrizeType = "giftcard"
	PrizeTypePhysical PrizeType = "physical"
)

// Prize is a single draw unit that users commit entries to
type Prize struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Value             float64            `bson:"value" json:"value"`
	Currency          string             `bson:"currency" json:"currency"`
	Type              PrizeType          `bson:"type" json:"type"`
	EntryCost         int64              `bson:"entryCost" json:"entryCost"`
	MaxEntriesPerUser int64              `bson:"maxEntriesPerUser" json:"maxEntriesPerUser"`
	MinimumEntries    int64              `bson:"minimumEntries" json:"minimumEntries"`
	TotalWinners      int                `bson:"totalWinners" json:"totalWinners"`
	StartDate         time.Time          `bson:"startDate" json:"startDate"`
	EndDate           time.Time          `bson:"endDate" json:"endDate"`
	DrawDay           string             `bson:"drawDay,omitempty" json:"drawDay,omitempty"` // weekday name, empty means any day
	DrawTime          string             `bson:"drawTime,omitempty" json:"drawTime,omitempty"`
	Status            PrizeStatus        `bson:"status" json:"status"`
	Participants      []Participant      `bson:"participants,omitempty" json:"participants,omitempty"`
	TotalEntries      int64              `bson:"totalEntries" json:"totalEntries"`
	Winners           []PrizeWinner      `bson:"winners,omitempty" json:"winners,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Participant holds the cumulative entries one user committed to one prize.
// Unlike User.PrizeEntries this is not a log; Entries is incremented in place.
type Participant struct {
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Username string             `bson:"username" json:"username"`
	Entries  int64              `bson:"entries" json:"entries"`
}

// PrizeWinner records one selected winner for a prize
type PrizeWinner struct {
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Username string             `bson:"username" json:"username"`
	DrawnAt  time.Time          `bson:"drawnAt" json:"drawnAt"`
	Notified bool               `bson:"notified" json:"notified"`
}

// Terminal reports whether the status can never change again
func (s PrizeStatus) Terminal() bool {
	return s == PrizeStatusDrawn || s == PrizeStatusCancelled
}

// ComputeStatus derives the non-terminal lifecycle status from the prize dates.
// It is pure: terminal statuses (and an in-flight draw) are left untouched.
func (p *Prize) ComputeStatus(now time.Time) PrizeStatus {
	if p.Status.Terminal() || p.Status == PrizeStatusDrawing {
		return p.Status
	}
	switch {
	case now.Before(p.StartDate):
		return PrizeStatusUpcoming
	case now.Before(p.EndDate):
		return PrizeStatusActive
	default:
		return PrizeStatusEnded
	}
}

// EntriesFor returns the cumulative entries a user has committed to this prize
func (p *Prize) EntriesFor(userID primitive.ObjectID) int64 {
	for i := range p.Participants {
		if p.Participants[i].UserID == userID {
			return p.Participants[i].Entries
		}
	}
	return 0
}
