package models

// StatKey names a UserStats counter an achievement thresholds on
type StatKey string

const (
	StatAdsWatched         StatKey = "adsWatched"
	StatSurveysCompleted   StatKey = "surveysCompleted"
	StatTasksCompleted     StatKey = "tasksCompleted"
	StatReferralsMade      StatKey = "referralsMade"
	StatPrizesWon          StatKey = "prizesWon"
	StatTotalEntriesEarned StatKey = "totalEntriesEarned"
	StatWheelSpins         StatKey = "wheelSpins"
	StatInstantWins        StatKey = "instantWins"
	StatLongestStreak      StatKey = "longestStreak"
)

// Achievement is one unlockable milestone: when the keyed stat reaches
// Threshold the achievement unlocks once and grants BonusEntries.
type Achievement struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Stat         StatKey `json:"stat"`
	Threshold    int64   `json:"threshold"`
	BonusEntries int64   `json:"bonusEntries"`
	Experience   int64   `json:"experience"`
}

// AchievementCatalogue is the fixed set of unlockable achievements.
var AchievementCatalogue = []Achievement{
	{ID: "first_spin", Name: "First Spin", Description: "Spin the wheel for the first time", Stat: StatWheelSpins, Threshold: 1, BonusEntries: 5, Experience: 20},
	{ID: "spin_addict", Name: "Spin Addict", Description: "Spin the wheel 50 times", Stat: StatWheelSpins, Threshold: 50, BonusEntries: 50, Experience: 100},
	{ID: "ad_watcher", Name: "Ad Watcher", Description: "Watch 10 ads", Stat: StatAdsWatched, Threshold: 10, BonusEntries: 10, Experience: 30},
	{ID: "ad_marathon", Name: "Ad Marathon", Description: "Watch 100 ads", Stat: StatAdsWatched, Threshold: 100, BonusEntries: 100, Experience: 150},
	{ID: "survey_starter", Name: "Survey Starter", Description: "Complete 5 surveys", Stat: StatSurveysCompleted, Threshold: 5, BonusEntries: 25, Experience: 50},
	{ID: "task_master", Name: "Task Master", Description: "Complete 25 tasks", Stat: StatTasksCompleted, Threshold: 25, BonusEntries: 50, Experience: 100},
	{ID: "recruiter", Name: "Recruiter", Description: "Refer a friend", Stat: StatReferralsMade, Threshold: 1, BonusEntries: 20, Experience: 40},
	{ID: "network_builder", Name: "Network Builder", Description: "Refer 10 friends", Stat: StatReferralsMade, Threshold: 10, BonusEntries: 150, Experience: 200},
	{ID: "first_win", Name: "Winner", Description: "Win your first prize draw", Stat: StatPrizesWon, Threshold: 1, BonusEntries: 25, Experience: 100},
	{ID: "lucky_streak", Name: "Lucky Streak", Description: "Win 5 prize draws", Stat: StatPrizesWon, Threshold: 5, BonusEntries: 100, Experience: 250},
	{ID: "collector", Name: "Collector", Description: "Earn 100 lifetime entries", Stat: StatTotalEntriesEarned, Threshold: 100, BonusEntries: 10, Experience: 30},
	{ID: "hoarder", Name: "Hoarder", Description: "Earn 1000 lifetime entries", Stat: StatTotalEntriesEarned, Threshold: 1000, BonusEntries: 100, Experience: 150},
	{ID: "instant_winner", Name: "Instant Winner", Description: "Hit an instant cash win", Stat: StatInstantWins, Threshold: 1, BonusEntries: 10, Experience: 40},
	{ID: "week_streak", Name: "Dedicated", Description: "Log in 7 days in a row", Stat: StatLongestStreak, Threshold: 7, BonusEntries: 30, Experience: 70},
	{ID: "month_streak", Name: "Devoted", Description: "Log in 30 days in a row", Stat: StatLongestStreak, Threshold: 30, BonusEntries: 150, Experience: 300},
}
