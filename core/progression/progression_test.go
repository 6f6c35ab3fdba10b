package progression

import (
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{1, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{200, 3},
		{250, 3},
		{999, 10},
		{-5, 1},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d; want %d", tt.xp, got, tt.want)
		}
	}

	// non-decreasing in xp
	prev := LevelForXP(0)
	for xp := 1; xp <= 2000; xp++ {
		lvl := LevelForXP(xp)
		if lvl < prev {
			t.Fatalf("LevelForXP decreased at xp=%d: %d -> %d", xp, prev, lvl)
		}
		if lvl < 1 {
			t.Fatalf("LevelForXP(%d) = %d; must be >= 1", xp, lvl)
		}
		prev = lvl
	}
}

func TestXPWithinLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 0},
		{50, 50},
		{99, 99},
		// the modulus is the current level's threshold, not a flat 100:
		// at 100 XP the user is level 2 and 100 % 200 == 100.
		{100, 100},
		{150, 150},
		{250, 250}, // level 3, 250 % 300
		{650, 650 % 700},
	}
	for _, tt := range tests {
		if got := XPWithinLevel(tt.xp); got != tt.want {
			t.Errorf("XPWithinLevel(%d) = %d; want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPForNextLevel(t *testing.T) {
	if got := XPForNextLevel(1); got != 100 {
		t.Errorf("XPForNextLevel(1) = %d; want 100", got)
	}
	if got := XPForNextLevel(5); got != 500 {
		t.Errorf("XPForNextLevel(5) = %d; want 500", got)
	}
}

func TestLevelProgressPercent(t *testing.T) {
	if got := LevelProgressPercent(50); got != 50 {
		t.Errorf("LevelProgressPercent(50) = %v; want 50", got)
	}
	if got := LevelProgressPercent(100); got != 50 { // 100 / 200
		t.Errorf("LevelProgressPercent(100) = %v; want 50", got)
	}
}

func TestIsLocked(t *testing.T) {
	lessons := []string{"l1", "l2", "l3"}

	tests := []struct {
		name      string
		position  int
		completed map[string]bool
		want      bool
	}{
		{name: "first lesson never locked", position: 0, completed: map[string]bool{}, want: false},
		{name: "first lesson, nil progress", position: 0, completed: nil, want: false},
		{name: "predecessor completed", position: 1, completed: map[string]bool{"l1": true}, want: false},
		{name: "predecessor not completed", position: 2, completed: map[string]bool{"l1": true}, want: true},
		{name: "no progress at all", position: 1, completed: map[string]bool{}, want: true},
		{name: "only direct predecessor matters", position: 2, completed: map[string]bool{"l2": true}, want: false},
		{name: "position past the unit fails open", position: 5, completed: map[string]bool{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.position, tt.completed, lessons); got != tt.want {
				t.Errorf("IsLocked(%d) = %v; want %v", tt.position, got, tt.want)
			}
		})
	}
}

func TestUpdateStreak(t *testing.T) {
	today := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	threeDaysAgo := today.AddDate(0, 0, -3)

	tPtr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name       string
		lastActive *time.Time
		current    int
		want       StreakResult
	}{
		{name: "first-ever activity", lastActive: nil, current: 0, want: StreakResult{Streak: 1, Broken: true}},
		{name: "same day is idempotent", lastActive: tPtr(today), current: 5, want: StreakResult{Streak: 5, Broken: false}},
		{name: "same day, later hour", lastActive: tPtr(today.Add(-8 * time.Hour)), current: 5, want: StreakResult{Streak: 5, Broken: false}},
		{name: "consecutive day", lastActive: tPtr(yesterday), current: 5, want: StreakResult{Streak: 6, Broken: false}},
		{name: "gap breaks streak", lastActive: tPtr(threeDaysAgo), current: 5, want: StreakResult{Streak: 1, Broken: true}},
		{name: "future last-active resets", lastActive: tPtr(today.AddDate(0, 0, 2)), current: 5, want: StreakResult{Streak: 1, Broken: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpdateStreak(tt.lastActive, tt.current, today); got != tt.want {
				t.Errorf("UpdateStreak() = %+v; want %+v", got, tt.want)
			}
		})
	}
}

func TestUpdateStreak_dayBoundary(t *testing.T) {
	// 23:59 yesterday vs 00:01 today is still a consecutive day
	lastActive := time.Date(2024, time.March, 14, 23, 59, 0, 0, time.UTC)
	today := time.Date(2024, time.March, 15, 0, 1, 0, 0, time.UTC)

	got := UpdateStreak(&lastActive, 3, today)
	want := StreakResult{Streak: 4, Broken: false}
	if got != want {
		t.Errorf("UpdateStreak() = %+v; want %+v", got, want)
	}
}

func TestScoreQuiz(t *testing.T) {
	questions := []Question{
		{Prompt: "q1", Options: []string{"a", "b"}, Correct: 1},
		{Prompt: "q2", Options: []string{"a", "b"}, Correct: 0},
	}

	tests := []struct {
		name    string
		answers map[int]int
		want    int
	}{
		{name: "all correct", answers: map[int]int{0: 1, 1: 0}, want: 100},
		{name: "half correct", answers: map[int]int{0: 0, 1: 0}, want: 50},
		{name: "missing answers count as wrong", answers: map[int]int{0: 1}, want: 50},
		{name: "no answers", answers: map[int]int{}, want: 0},
		{name: "nil answers", answers: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreQuiz(questions, tt.answers)
			if err != nil {
				t.Fatalf("ScoreQuiz() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ScoreQuiz() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestScoreQuiz_rounding(t *testing.T) {
	questions := []Question{
		{Options: []string{"a", "b"}, Correct: 0},
		{Options: []string{"a", "b"}, Correct: 0},
		{Options: []string{"a", "b"}, Correct: 0},
	}
	got, err := ScoreQuiz(questions, map[int]int{0: 0})
	if err != nil {
		t.Fatalf("ScoreQuiz() failed: %v", err)
	}
	if got != 33 { // 33.33.. rounds down
		t.Errorf("ScoreQuiz() = %d; want 33", got)
	}
	got, err = ScoreQuiz(questions, map[int]int{0: 0, 1: 0})
	if err != nil {
		t.Fatalf("ScoreQuiz() failed: %v", err)
	}
	if got != 67 { // 66.66.. rounds up
		t.Errorf("ScoreQuiz() = %d; want 67", got)
	}
}

func TestScoreQuiz_invalidInput(t *testing.T) {
	if _, err := ScoreQuiz(nil, map[int]int{}); err != ErrNoQuestions {
		t.Errorf("ScoreQuiz(no questions) err = %v; want ErrNoQuestions", err)
	}

	questions := []Question{{Options: []string{"a", "b"}, Correct: 0}}
	if _, err := ScoreQuiz(questions, map[int]int{0: 2}); err != ErrAnswerOutOfRange {
		t.Errorf("ScoreQuiz(answer out of range) err = %v; want ErrAnswerOutOfRange", err)
	}
	if _, err := ScoreQuiz(questions, map[int]int{0: -1}); err != ErrAnswerOutOfRange {
		t.Errorf("ScoreQuiz(negative answer) err = %v; want ErrAnswerOutOfRange", err)
	}
}
