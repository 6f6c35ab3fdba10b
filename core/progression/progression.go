// Package progression holds the pure rules that drive the learning loop:
// XP/level math, lesson locking, daily streaks and quiz scoring. Every
// function here is stateless and side-effect free; orchestration and
// persistence live in core/progress.
package progression

import (
	"errors"
	"math"
	"time"
)

// XP amounts and the quiz pass mark. A lesson pays out in two stages:
// watching the video credits VideoXP once, and a quiz score of at least
// PassingScore marks the lesson completed and credits the lesson's quiz
// XP once. Failed attempts record a score, award nothing and may be
// retried without limit.
const (
	VideoXP      = 10
	QuizXP       = 15
	PassingScore = 70

	levelStep = 100
)

var (
	ErrNoQuestions      = errors.New("quiz has no questions")
	ErrAnswerOutOfRange = errors.New("answer index out of range")
)

// LevelForXP derives the level for a cumulative XP total: floor(xp/100) + 1.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/levelStep + 1
}

// XPForNextLevel returns the cumulative XP total at which the next level begins.
func XPForNextLevel(level int) int {
	return level * levelStep
}

// XPWithinLevel returns the "XP in current level" value shown next to the
// level progress bar. The modulus is the *current level's* next-level
// threshold, not a flat 100, so the displayed value does not reset to zero
// on level-up (e.g. 100 XP at level 2 shows as 100, not 0). Long-standing
// product behavior; keep in sync with the frontend before changing.
func XPWithinLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPForNextLevel(LevelForXP(xp))
}

// LevelProgressPercent returns progress toward the next level as 0-100.
func LevelProgressPercent(xp int) float64 {
	return float64(XPWithinLevel(xp)) / float64(XPForNextLevel(LevelForXP(xp))) * 100
}

// IsLocked reports whether the lesson at position in an ordered unit is
// locked. lessonIDs is the unit's lessons in display order and
// completedByLesson marks the lessons the user has completed (a missing
// entry counts as not completed). Only the immediately preceding lesson is
// consulted: the first lesson is always open, and a position without a
// predecessor in the slice fails open.
func IsLocked(position int, completedByLesson map[string]bool, lessonIDs []string) bool {
	if position <= 0 {
		return false
	}
	if position >= len(lessonIDs) {
		return false
	}
	return !completedByLesson[lessonIDs[position-1]]
}

// StreakResult is the outcome of a streak evaluation.
type StreakResult struct {
	Streak int
	Broken bool
}

// UpdateStreak evaluates the consecutive-day streak for a qualifying
// activity happening on today. A nil lastActive means first-ever activity.
// Same-day repeats never inflate the streak; a gap of two or more days
// resets it to 1. Callers must persist today as the new last-active date
// whatever the outcome.
func UpdateStreak(lastActive *time.Time, current int, today time.Time) StreakResult {
	if lastActive != nil {
		last := DateOf(*lastActive)
		today = DateOf(today)
		switch {
		case last.Equal(today):
			return StreakResult{Streak: current, Broken: false}
		case last.Equal(today.AddDate(0, 0, -1)):
			return StreakResult{Streak: current + 1, Broken: false}
		}
	}
	return StreakResult{Streak: 1, Broken: true}
}

// DateOf truncates t to its calendar date in UTC. Streaks compare calendar
// days, never instants.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Question is the scorable shape of a quiz question.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// ScoreQuiz grades chosen answers (question index -> option index) against
// the ordered questions and returns the rounded percentage of correct
// answers. A missing answer never matches. An empty question list or a
// chosen option outside the question's option range is a caller contract
// violation and fails fast.
func ScoreQuiz(questions []Question, answers map[int]int) (int, error) {
	if len(questions) == 0 {
		return 0, ErrNoQuestions
	}

	var correct int
	for i, q := range questions {
		chosen, ok := answers[i]
		if !ok {
			continue
		}
		if chosen < 0 || chosen >= len(q.Options) {
			return 0, ErrAnswerOutOfRange
		}
		if chosen == q.Correct {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(questions)) * 100)), nil
}
