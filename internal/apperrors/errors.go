package apperrors

import "errors"

// Sentinel errors for expected, recoverable failures. Handlers map these to
// HTTP statuses with errors.Is; services wrap them with context via fmt.Errorf.
var (
	ErrInsufficientBalance = errors.New("insufficient available entries")
	ErrAlreadyDrawn        = errors.New("prize has already been drawn")
	ErrMinimumNotMet       = errors.New("prize has not met its minimum entries")
	ErrNoEntries           = errors.New("prize has no participants")
	ErrMaxEntriesExceeded  = errors.New("entry would exceed the per-user maximum for this prize")
	ErrPrizeNotActive      = errors.New("prize is not active")
	ErrCooldownActive      = errors.New("wheel spin cooldown has not elapsed")
	ErrPrizeNotFound       = errors.New("prize not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyCompleted    = errors.New("task already completed")
	ErrDailyLimitReached   = errors.New("daily limit reached")
	ErrDuplicateUser       = errors.New("email or username already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrReferralNotFound    = errors.New("referral code not found")
	ErrAlreadyReferred     = errors.New("user has already redeemed a referral code")
	ErrOwnReferralCode     = errors.New("cannot redeem your own referral code")
	ErrInvalidProof        = errors.New("completion proof rejected")
	ErrInvalidDates        = errors.New("prize end date must be after start date")
)
