package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/core/progression"
	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo catalog.Repository, title string, published bool, sortOrder int) catalog.Course {
	t.Helper()

	course, err := repo.CreateCourse(context.Background(), catalog.Course{
		Title:       title,
		Category:    "basics",
		SortOrder:   sortOrder,
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return course
}

func CreateUnit(t *testing.T, repo catalog.Repository, courseID, title string, sortOrder int) catalog.Unit {
	t.Helper()

	unit, err := repo.CreateUnit(context.Background(), catalog.Unit{
		CourseID:  courseID,
		Title:     title,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUnit() failed: %v", err)
	}
	return unit
}

func CreateLesson(t *testing.T, repo catalog.Repository, unitID, title, typ string, sortOrder, xpReward int) catalog.Lesson {
	t.Helper()

	lesson, err := repo.CreateLesson(context.Background(), catalog.Lesson{
		UnitID:    unitID,
		Title:     title,
		Type:      typ,
		SortOrder: sortOrder,
		XPReward:  xpReward,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return lesson
}

func SetQuiz(t *testing.T, repo catalog.Repository, lessonID string, questions []progression.Question) catalog.Quiz {
	t.Helper()

	quiz, err := repo.UpsertQuiz(context.Background(), catalog.Quiz{
		LessonID:  lessonID,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SetQuiz() failed: %v", err)
	}
	return quiz
}

func CreateProfile(t *testing.T, repo progress.ProfileRepository, userID, name string, xp, streak int, lastActive *time.Time) progress.Profile {
	t.Helper()

	tstamp := time.Now().UTC()
	profile, err := repo.CreateProfile(context.Background(), progress.Profile{
		UserID:     userID,
		Name:       name,
		XP:         xp,
		Level:      progression.LevelForXP(xp),
		Streak:     streak,
		LastActive: lastActive,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return profile
}

func CreateReward(t *testing.T, repo reward.Repository, title string, xpCost int, active bool, codes ...string) reward.Reward {
	t.Helper()

	rwd, err := repo.CreateReward(context.Background(), reward.Reward{
		Title:        title,
		XPCost:       xpCost,
		IsActive:     active,
		VoucherCodes: codes,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateReward() failed: %v", err)
	}
	return rwd
}
