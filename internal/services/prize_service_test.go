package services

import (
	"context"
	"testing"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type prizeFixture struct {
	svc       *PrizeServiceImpl
	userRepo  *memUserRepo
	prizeRepo *memPrizeRepo
	txRepo    *memTxRepo
}

func newPrizeFixture() *prizeFixture {
	userRepo := newMemUserRepo()
	prizeRepo := newMemPrizeRepo()
	txRepo := newMemTxRepo()
	ledger := NewLedgerService(userRepo, txRepo)
	return &prizeFixture{
		svc:       NewPrizeService(prizeRepo, userRepo, ledger),
		userRepo:  userRepo,
		prizeRepo: prizeRepo,
		txRepo:    txRepo,
	}
}

func activePrize(maxPerUser int64) *models.Prize {
	return &models.Prize{
		Title:             "Active Prize",
		Status:            models.PrizeStatusActive,
		StartDate:         time.Now().Add(-time.Hour),
		EndDate:           time.Now().Add(24 * time.Hour),
		MaxEntriesPerUser: maxPerUser,
		TotalWinners:      1,
	}
}

func (f *prizeFixture) addUser(username string, available int64) primitive.ObjectID {
	return f.userRepo.add(&models.User{
		Username:         username,
		Email:            username + "@example.com",
		AvailableEntries: available,
		TotalEntries:     available,
	})
}

func TestEnterPrizeCommitsAndDebits(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("alice", 100)
	prizeID := f.prizeRepo.add(activePrize(50))

	err := f.svc.EnterPrize(ctx, userID, prizeID, 30)
	require.NoError(t, err)

	user := f.userRepo.get(userID)
	assert.Equal(t, int64(70), user.AvailableEntries)
	assert.Equal(t, int64(100), user.TotalEntries, "committing entries must not change lifetime earnings")
	require.Len(t, user.PrizeEntries, 1)
	assert.Equal(t, int64(30), user.PrizeEntries[0].EntriesUsed)

	prize := f.prizeRepo.get(prizeID)
	assert.Equal(t, int64(30), prize.TotalEntries)
	require.Len(t, prize.Participants, 1)
	assert.Equal(t, int64(30), prize.Participants[0].Entries)
	assert.Equal(t, "alice", prize.Participants[0].Username)

	txs := f.txRepo.byUser(userID)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionDebit, txs[0].Type)
	assert.Equal(t, models.SourcePrizeEntry, txs[0].Source)
}

func TestEnterPrizeAccumulates(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("bob", 100)
	prizeID := f.prizeRepo.add(activePrize(50))

	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 20))
	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 25))

	prize := f.prizeRepo.get(prizeID)
	require.Len(t, prize.Participants, 1, "repeat entries reuse the participant row")
	assert.Equal(t, int64(45), prize.Participants[0].Entries)
	assert.Equal(t, int64(45), prize.TotalEntries)
	assert.Equal(t, int64(55), f.userRepo.get(userID).AvailableEntries)
}

func TestEnterPrizeInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("carol", 10)
	prizeID := f.prizeRepo.add(activePrize(100))

	err := f.svc.EnterPrize(ctx, userID, prizeID, 25)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	assert.Equal(t, int64(10), f.userRepo.get(userID).AvailableEntries)
	assert.Empty(t, f.prizeRepo.get(prizeID).Participants)
	assert.Empty(t, f.txRepo.byUser(userID), "a failed debit must leave no audit row")
}

func TestEnterPrizeMaxEntriesExceeded(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("dave", 200)
	prizeID := f.prizeRepo.add(activePrize(50))

	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 40))

	err := f.svc.EnterPrize(ctx, userID, prizeID, 20)
	assert.ErrorIs(t, err, apperrors.ErrMaxEntriesExceeded)

	// The rejected attempt must not move any balance
	assert.Equal(t, int64(160), f.userRepo.get(userID).AvailableEntries)
	assert.Equal(t, int64(40), f.prizeRepo.get(prizeID).TotalEntries)
}

func TestEnterPrizeNotActive(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("erin", 100)

	upcoming := activePrize(50)
	upcoming.Status = models.PrizeStatusUpcoming
	upcoming.StartDate = time.Now().Add(time.Hour)
	upcomingID := f.prizeRepo.add(upcoming)

	err := f.svc.EnterPrize(ctx, userID, upcomingID, 10)
	assert.ErrorIs(t, err, apperrors.ErrPrizeNotActive)

	ended := activePrize(50)
	ended.EndDate = time.Now().Add(-time.Minute)
	endedID := f.prizeRepo.add(ended)

	err = f.svc.EnterPrize(ctx, userID, endedID, 10)
	assert.ErrorIs(t, err, apperrors.ErrPrizeNotActive)
	assert.Equal(t, int64(100), f.userRepo.get(userID).AvailableEntries)
}

func TestEnterPrizeTotalMatchesParticipants(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	prizeID := f.prizeRepo.add(activePrize(100))

	amounts := []int64{5, 12, 40, 3}
	for i, n := range amounts {
		userID := f.addUser("user"+string(rune('a'+i)), 100)
		require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, n))
	}

	prize := f.prizeRepo.get(prizeID)
	var sum int64
	for _, p := range prize.Participants {
		sum += p.Entries
	}
	assert.Equal(t, sum, prize.TotalEntries)
}

func TestCancelPrizeRefundsParticipants(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	prizeID := f.prizeRepo.add(activePrize(100))

	alice := f.addUser("alice", 100)
	bob := f.addUser("bob", 100)
	require.NoError(t, f.svc.EnterPrize(ctx, alice, prizeID, 30))
	require.NoError(t, f.svc.EnterPrize(ctx, bob, prizeID, 45))

	cancelled, err := f.svc.CancelPrize(ctx, prizeID)
	require.NoError(t, err)
	assert.Equal(t, models.PrizeStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PrizeStatusCancelled, f.prizeRepo.get(prizeID).Status)

	// Balances restored in full
	assert.Equal(t, int64(100), f.userRepo.get(alice).AvailableEntries)
	assert.Equal(t, int64(100), f.userRepo.get(bob).AvailableEntries)
	// Refunds never count as lifetime earnings
	assert.Equal(t, int64(100), f.userRepo.get(alice).TotalEntries)
	assert.Equal(t, int64(0), f.userRepo.get(alice).Stats.TotalEntriesEarned)

	txs := f.txRepo.byUser(alice)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TransactionRefund, txs[0].Type)
	assert.Equal(t, models.SourcePrizeRefund, txs[0].Source)
}

func TestCancelPrizeRejectsDrawnPrize(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()

	prize := activePrize(100)
	prize.Status = models.PrizeStatusDrawn
	prize.Winners = []models.PrizeWinner{{UserID: primitive.NewObjectID()}}
	prizeID := f.prizeRepo.add(prize)

	_, err := f.svc.CancelPrize(ctx, prizeID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyDrawn)
	assert.Equal(t, models.PrizeStatusDrawn, f.prizeRepo.get(prizeID).Status)
}

func TestCreatePrizeNormalises(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()

	prize := &models.Prize{
		Title:     "New Prize",
		StartDate: time.Now().Add(-time.Hour),
		EndDate:   time.Now().Add(time.Hour),
		// Pre-set state a client must not control
		TotalEntries: 999,
		Participants: []models.Participant{{UserID: primitive.NewObjectID(), Entries: 999}},
		Winners:      []models.PrizeWinner{{UserID: primitive.NewObjectID()}},
	}
	require.NoError(t, f.svc.CreatePrize(ctx, prize))

	assert.Equal(t, 1, prize.TotalWinners)
	assert.Equal(t, models.PrizeStatusActive, prize.Status)
	assert.Zero(t, prize.TotalEntries)
	assert.Empty(t, prize.Participants)
	assert.Empty(t, prize.Winners)
}

func TestCreatePrizeRejectsInvertedDates(t *testing.T) {
	f := newPrizeFixture()
	prize := &models.Prize{
		Title:     "Backwards",
		StartDate: time.Now().Add(time.Hour),
		EndDate:   time.Now(),
	}
	assert.ErrorIs(t, f.svc.CreatePrize(context.Background(), prize), apperrors.ErrInvalidDates)
}

func TestEnterPrizeUncappedWhenNoLimit(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("grace", 500)
	prize := activePrize(0)
	prize.MinimumEntries = 10
	prizeID := f.prizeRepo.add(prize)

	// No per-user cap: commitments well past MinimumEntries are accepted
	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 200))
	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 250))

	assert.Equal(t, int64(450), f.prizeRepo.get(prizeID).TotalEntries)
	assert.Equal(t, int64(50), f.userRepo.get(userID).AvailableEntries)
}

func TestUpdatePrizePreservesEntryState(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	userID := f.addUser("frank", 100)
	prizeID := f.prizeRepo.add(activePrize(50))
	require.NoError(t, f.svc.EnterPrize(ctx, userID, prizeID, 10))

	edit := activePrize(50)
	edit.ID = prizeID
	edit.Title = "Renamed"
	edit.TotalEntries = 0
	require.NoError(t, f.svc.UpdatePrize(ctx, edit))

	stored := f.prizeRepo.get(prizeID)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, int64(10), stored.TotalEntries, "admin edits must not reset entry state")
	assert.Len(t, stored.Participants, 1)
}

func TestRecomputeStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newPrizeFixture()
	now := time.Now()

	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		initial  models.PrizeStatus
		expected models.PrizeStatus
	}{
		{"before start", now.Add(time.Hour), now.Add(2 * time.Hour), models.PrizeStatusUpcoming, models.PrizeStatusUpcoming},
		{"window open", now.Add(-time.Hour), now.Add(time.Hour), models.PrizeStatusUpcoming, models.PrizeStatusActive},
		{"window closed", now.Add(-2 * time.Hour), now.Add(-time.Hour), models.PrizeStatusActive, models.PrizeStatusEnded},
		{"terminal drawn", now.Add(-2 * time.Hour), now.Add(-time.Hour), models.PrizeStatusDrawn, models.PrizeStatusDrawn},
		{"terminal cancelled", now.Add(-2 * time.Hour), now.Add(-time.Hour), models.PrizeStatusCancelled, models.PrizeStatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prize := &models.Prize{Status: tc.initial, StartDate: tc.start, EndDate: tc.end}
			f.prizeRepo.add(prize)
			got := f.svc.RecomputeStatus(ctx, prize, now)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.expected, f.prizeRepo.get(prize.ID).Status)
		})
	}
}
