package progress

import (
	"time"

	"github.com/finquest/finquest/core/progression"
)

// Progress tracks a user's state for a single lesson. One row per
// (user, lesson) pair; repositories must upsert on that key and never
// duplicate it.
type Progress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	Score       *int       `json:"score"`
	XPEarned    int        `json:"xp_earned"`
	CompletedAt *time.Time `json:"completed_at"` // UTC
}

// Profile is a user's gamification state. Level is always derived from XP
// (progression.LevelForXP) when written; it is stored only as a cache.
type Profile struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Language   string     `json:"language,omitempty"`
	XP         int        `json:"xp"`
	Level      int        `json:"level"`
	Streak     int        `json:"streak"`
	LastActive *time.Time `json:"last_active"` // calendar date, UTC midnight
	CreatedAt  time.Time  `json:"created_at"`  // UTC
	UpdatedAt  time.Time  `json:"updated_at"`  // UTC
}

// Overview is a profile joined with its derived level figures, as shown on
// the dashboard.
type Overview struct {
	Profile
	XPWithinLevel  int     `json:"xp_within_level"`
	XPForNextLevel int     `json:"xp_for_next_level"`
	LevelProgress  float64 `json:"level_progress"`
}

func NewOverview(profile Profile) Overview {
	return Overview{
		Profile:        profile,
		XPWithinLevel:  progression.XPWithinLevel(profile.XP),
		XPForNextLevel: progression.XPForNextLevel(progression.LevelForXP(profile.XP)),
		LevelProgress:  progression.LevelProgressPercent(profile.XP),
	}
}

// VideoResult is the outcome of a video-completion request.
type VideoResult struct {
	AlreadyCredited bool    `json:"already_credited"`
	XPAwarded       int     `json:"xp_awarded"`
	StreakBroken    bool    `json:"streak_broken"`
	Profile         Profile `json:"profile"`
}

// QuizResult is the outcome of a quiz submission.
type QuizResult struct {
	Score        int     `json:"score"`
	Passed       bool    `json:"passed"`
	XPAwarded    int     `json:"xp_awarded"`
	StreakBroken bool    `json:"streak_broken"`
	Profile      Profile `json:"profile"`
}
