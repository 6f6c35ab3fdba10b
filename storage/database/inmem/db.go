package inmemdb

import (
	"sync"

	"github.com/finquest/finquest/core/article"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/notification"
	"github.com/finquest/finquest/core/progress"
	"github.com/finquest/finquest/core/reward"
	"github.com/finquest/finquest/core/user"
)

type (
	DB struct {
		user         *userTable
		catalog      *catalogTable
		progress     *progressTable
		profile      *profileTable
		reward       *rewardTable
		article      *articleTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	catalogTable struct {
		sync.RWMutex
		courses map[string]*catalog.Course
		units   map[string]*catalog.Unit
		lessons map[string]*catalog.Lesson
		quizzes map[string]*catalog.Quiz // keyed by lesson ID
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Progress // keyed by user ID + lesson ID
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*progress.Profile // keyed by user ID
	}

	rewardTable struct {
		sync.RWMutex
		rewards     map[string]*reward.Reward
		redemptions map[string]*reward.Redemption
	}

	articleTable struct {
		sync.RWMutex
		table map[string]*article.Article
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		catalog: &catalogTable{
			courses: make(map[string]*catalog.Course),
			units:   make(map[string]*catalog.Unit),
			lessons: make(map[string]*catalog.Lesson),
			quizzes: make(map[string]*catalog.Quiz),
		},
		progress: &progressTable{table: make(map[string]*progress.Progress)},
		profile:  &profileTable{table: make(map[string]*progress.Profile)},
		reward: &rewardTable{
			rewards:     make(map[string]*reward.Reward),
			redemptions: make(map[string]*reward.Redemption),
		},
		article:      &articleTable{table: make(map[string]*article.Article)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}

func progressKey(userID, lessonID string) string {
	return userID + ":" + lessonID
}
