package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ryobiguy/prize-platform/internal/apperrors"
	"github.com/ryobiguy/prize-platform/internal/models"
	"github.com/ryobiguy/prize-platform/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirroring the conditional-update semantics of the
// MongoDB implementations, so service tests exercise the same guarantees.

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *memUserRepo) add(user *models.User) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = user
	return user.ID
}

func (r *memUserRepo) get(id primitive.ObjectID) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.PrizeEntries = append([]models.PrizeEntry(nil), u.PrizeEntries...)
	c.Wins = append([]models.Win(nil), u.Wins...)
	c.Achievements = append([]string(nil), u.Achievements...)
	return &c
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return apperrors.ErrDuplicateUser
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) findBy(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.Username == username })
}

func (r *memUserRepo) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	return r.findBy(func(u *models.User) bool { return u.ReferralCode == code })
}

func (r *memUserRepo) FindAll(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memUserRepo) CreditEntries(ctx context.Context, id primitive.ObjectID, amount int64, lifetime bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.AvailableEntries += amount
	if lifetime {
		u.TotalEntries += amount
		u.Stats.TotalEntriesEarned += amount
	}
	return nil
}

func (r *memUserRepo) DebitEntries(ctx context.Context, id primitive.ObjectID, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if u.AvailableEntries < amount {
		return apperrors.ErrInsufficientBalance
	}
	u.AvailableEntries -= amount
	return nil
}

func (r *memUserRepo) CreditCash(ctx context.Context, id primitive.ObjectID, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.CashBalance += amount
	return nil
}

func (r *memUserRepo) AppendPrizeEntry(ctx context.Context, id primitive.ObjectID, entry models.PrizeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PrizeEntries = append(u.PrizeEntries, entry)
	return nil
}

func (r *memUserRepo) AppendWin(ctx context.Context, id primitive.ObjectID, win models.Win) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Wins = append(u.Wins, win)
	return nil
}

func (r *memUserRepo) IncrementStat(ctx context.Context, id primitive.ObjectID, stat models.StatKey, by int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	switch stat {
	case models.StatAdsWatched:
		u.Stats.AdsWatched += by
	case models.StatSurveysCompleted:
		u.Stats.SurveysCompleted += by
	case models.StatTasksCompleted:
		u.Stats.TasksCompleted += by
	case models.StatReferralsMade:
		u.Stats.ReferralsMade += by
	case models.StatPrizesWon:
		u.Stats.PrizesWon += by
	case models.StatTotalEntriesEarned:
		u.Stats.TotalEntriesEarned += by
	case models.StatWheelSpins:
		u.Stats.WheelSpins += by
	case models.StatInstantWins:
		u.Stats.InstantWins += by
	}
	return nil
}

func (r *memUserRepo) AddExperience(ctx context.Context, id primitive.ObjectID, xp int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.Experience += xp
	u.Level = models.LevelForExperience(u.Experience)
	return copyUser(u), nil
}

func (r *memUserRepo) AddAchievement(ctx context.Context, id primitive.ObjectID, achievementID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, apperrors.ErrUserNotFound
	}
	for _, a := range u.Achievements {
		if a == achievementID {
			return false, nil
		}
	}
	u.Achievements = append(u.Achievements, achievementID)
	return true, nil
}

func (r *memUserRepo) SetStreak(ctx context.Context, id primitive.ObjectID, streak models.Streak) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Streak = streak
	return nil
}

func (r *memUserRepo) SetReferredBy(ctx context.Context, id primitive.ObjectID, referrer primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return false, apperrors.ErrUserNotFound
	}
	if !u.ReferredBy.IsZero() {
		return false, nil
	}
	u.ReferredBy = referrer
	return true, nil
}

func (r *memUserRepo) ClaimDailyBonus(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if !u.LastDailyBonus.IsZero() && sameDay(u.LastDailyBonus, now) {
		return apperrors.ErrDailyLimitReached
	}
	u.LastDailyBonus = now
	return nil
}

func (r *memUserRepo) ApplyWheelSpin(ctx context.Context, id primitive.ObjectID, prevSpin, now time.Time, reward repositories.WheelReward) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if !u.LastWheelSpin.Equal(prevSpin) {
		return apperrors.ErrCooldownActive
	}
	u.Stats.WheelSpins++
	u.Experience += reward.Experience
	if reward.Entries > 0 {
		u.AvailableEntries += reward.Entries
		u.TotalEntries += reward.Entries
		u.Stats.TotalEntriesEarned += reward.Entries
	}
	if reward.Cash > 0 {
		u.CashBalance += reward.Cash
		u.Stats.TotalCashWon += reward.Cash
		u.Stats.InstantWins++
	}
	u.LastWheelSpin = now
	return nil
}

type memPrizeRepo struct {
	mu     sync.Mutex
	prizes map[primitive.ObjectID]*models.Prize
}

func newMemPrizeRepo() *memPrizeRepo {
	return &memPrizeRepo{prizes: make(map[primitive.ObjectID]*models.Prize)}
}

func (r *memPrizeRepo) add(prize *models.Prize) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prize.ID.IsZero() {
		prize.ID = primitive.NewObjectID()
	}
	r.prizes[prize.ID] = prize
	return prize.ID
}

func (r *memPrizeRepo) get(id primitive.ObjectID) *models.Prize {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prizes[id]
}

func copyPrize(p *models.Prize) *models.Prize {
	c := *p
	c.Participants = append([]models.Participant(nil), p.Participants...)
	c.Winners = append([]models.PrizeWinner(nil), p.Winners...)
	return &c
}

func (r *memPrizeRepo) Create(ctx context.Context, prize *models.Prize) error {
	prize.ID = primitive.NewObjectID()
	prize.CreatedAt = time.Now()
	prize.UpdatedAt = time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prizes[prize.ID] = copyPrize(prize)
	return nil
}

func (r *memPrizeRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prize, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[id]
	if !ok {
		return nil, apperrors.ErrPrizeNotFound
	}
	return copyPrize(p), nil
}

func (r *memPrizeRepo) findWhere(match func(*models.Prize) bool) []*models.Prize {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Prize
	for _, p := range r.prizes {
		if match(p) {
			out = append(out, copyPrize(p))
		}
	}
	return out
}

func (r *memPrizeRepo) FindAll(ctx context.Context) ([]*models.Prize, error) {
	return r.findWhere(func(*models.Prize) bool { return true }), nil
}

func (r *memPrizeRepo) FindByStatus(ctx context.Context, statuses []models.PrizeStatus) ([]*models.Prize, error) {
	return r.findWhere(func(p *models.Prize) bool {
		for _, s := range statuses {
			if p.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *memPrizeRepo) FindEndedUndrawn(ctx context.Context, now time.Time) ([]*models.Prize, error) {
	return r.findWhere(func(p *models.Prize) bool {
		return !p.EndDate.After(now) && len(p.Winners) == 0 &&
			!p.Status.Terminal() && p.Status != models.PrizeStatusDrawing
	}), nil
}

func (r *memPrizeRepo) FindNonTerminal(ctx context.Context) ([]*models.Prize, error) {
	return r.findWhere(func(p *models.Prize) bool {
		return !p.Status.Terminal() && p.Status != models.PrizeStatusDrawing
	}), nil
}

func (r *memPrizeRepo) Update(ctx context.Context, prize *models.Prize) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prizes[prize.ID]; !ok {
		return apperrors.ErrPrizeNotFound
	}
	r.prizes[prize.ID] = copyPrize(prize)
	return nil
}

func (r *memPrizeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prizes[id]; !ok {
		return apperrors.ErrPrizeNotFound
	}
	delete(r.prizes, id)
	return nil
}

func (r *memPrizeRepo) CommitEntries(ctx context.Context, prizeID, userID primitive.ObjectID, username string, n, maxPerUser int64) error {
	if n <= 0 {
		return errors.New("entries to commit must be positive")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[prizeID]
	if !ok {
		return apperrors.ErrPrizeNotFound
	}
	if p.Status != models.PrizeStatusActive {
		return apperrors.ErrPrizeNotActive
	}
	for i := range p.Participants {
		if p.Participants[i].UserID == userID {
			if maxPerUser > 0 && p.Participants[i].Entries+n > maxPerUser {
				return apperrors.ErrMaxEntriesExceeded
			}
			p.Participants[i].Entries += n
			p.TotalEntries += n
			return nil
		}
	}
	if maxPerUser > 0 && n > maxPerUser {
		return apperrors.ErrMaxEntriesExceeded
	}
	p.Participants = append(p.Participants, models.Participant{UserID: userID, Username: username, Entries: n})
	p.TotalEntries += n
	return nil
}

func (r *memPrizeRepo) ClaimForDraw(ctx context.Context, prizeID primitive.ObjectID) (*models.Prize, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[prizeID]
	if !ok {
		return nil, apperrors.ErrPrizeNotFound
	}
	if len(p.Winners) > 0 || p.Status.Terminal() || p.Status == models.PrizeStatusDrawing {
		return nil, apperrors.ErrAlreadyDrawn
	}
	p.Status = models.PrizeStatusDrawing
	return copyPrize(p), nil
}

func (r *memPrizeRepo) SetWinners(ctx context.Context, prizeID primitive.ObjectID, winners []models.PrizeWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[prizeID]
	if !ok {
		return apperrors.ErrPrizeNotFound
	}
	p.Winners = append([]models.PrizeWinner(nil), winners...)
	p.Status = models.PrizeStatusDrawn
	return nil
}

func (r *memPrizeRepo) SetStatus(ctx context.Context, prizeID primitive.ObjectID, from, to models.PrizeStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[prizeID]
	if !ok {
		return apperrors.ErrPrizeNotFound
	}
	if p.Status == from {
		p.Status = to
	}
	return nil
}

func (r *memPrizeRepo) MarkWinnerNotified(ctx context.Context, prizeID, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prizes[prizeID]
	if !ok {
		return apperrors.ErrPrizeNotFound
	}
	for i := range p.Winners {
		if p.Winners[i].UserID == userID {
			p.Winners[i].Notified = true
		}
	}
	return nil
}

type memTxRepo struct {
	mu  sync.Mutex
	txs []*models.EntryTransaction
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{}
}

func (r *memTxRepo) Create(ctx context.Context, tx *models.EntryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	c := *tx
	r.txs = append(r.txs, &c)
	return nil
}

func (r *memTxRepo) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.EntryTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.EntryTransaction
	for i := len(r.txs) - 1; i >= 0; i-- {
		if r.txs[i].UserID == userID {
			c := *r.txs[i]
			all = append(all, &c)
		}
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(all) {
		return []*models.EntryTransaction{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// byUser returns every transaction for one user, newest first
func (r *memTxRepo) byUser(userID primitive.ObjectID) []*models.EntryTransaction {
	out, _ := r.FindByUserID(context.Background(), userID, 1, len(r.txs)+1)
	return out
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]*models.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	c := *task
	r.tasks[task.ID] = &c
	return nil
}

func (r *memTaskRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.ErrTaskNotFound
	}
	c := *t
	return &c, nil
}

func (r *memTaskRepo) FindActive(ctx context.Context) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Task
	for _, t := range r.tasks {
		if t.Active {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return apperrors.ErrTaskNotFound
	}
	c := *task
	r.tasks[task.ID] = &c
	return nil
}

type memCompletionRepo struct {
	mu          sync.Mutex
	completions []*models.TaskCompletion
}

func newMemCompletionRepo() *memCompletionRepo {
	return &memCompletionRepo{}
}

// Create mirrors the partial unique index on (userId, taskId) that covers
// only non-repeatable completion rows.
func (r *memCompletionRepo) Create(ctx context.Context, completion *models.TaskCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !completion.Repeatable {
		for _, c := range r.completions {
			if !c.Repeatable && c.UserID == completion.UserID && c.TaskID == completion.TaskID {
				return apperrors.ErrAlreadyCompleted
			}
		}
	}
	completion.ID = primitive.NewObjectID()
	c := *completion
	r.completions = append(r.completions, &c)
	return nil
}

func (r *memCompletionRepo) HasCompleted(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.completions {
		if c.UserID == userID && c.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCompletionRepo) CountByTypeSince(ctx context.Context, userID primitive.ObjectID, taskType models.TaskType, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.completions {
		if c.UserID == userID && c.TaskType == taskType && !c.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// stubNotifier records notifications; Fail makes every delivery error
type stubNotifier struct {
	mu       sync.Mutex
	notified []primitive.ObjectID
	fail     bool
}

func (n *stubNotifier) NotifyWinner(ctx context.Context, userID primitive.ObjectID, prize *models.Prize) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("delivery failed")
	}
	n.notified = append(n.notified, userID)
	return nil
}

// Compile-time checks that the fakes satisfy the repository interfaces
var (
	_ repositories.UserRepository             = (*memUserRepo)(nil)
	_ repositories.PrizeRepository            = (*memPrizeRepo)(nil)
	_ repositories.EntryTransactionRepository = (*memTxRepo)(nil)
	_ repositories.TaskRepository             = (*memTaskRepo)(nil)
	_ repositories.TaskCompletionRepository   = (*memCompletionRepo)(nil)
	_ NotificationService                     = (*stubNotifier)(nil)
)
