package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.ProgressRepository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetProgress(ctx context.Context, userID, lessonID string) (progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prog, ok := repo.db.table[progressKey(userID, lessonID)]; ok {
		return *prog, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *progressRepository) QueryUserProgress(ctx context.Context, userID string) ([]progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var progs []progress.Progress
	for _, prog := range repo.db.table {
		if prog.UserID == userID {
			progs = append(progs, *prog)
		}
	}
	return progs, nil
}

func (repo *progressRepository) UpsertProgress(ctx context.Context, prog progress.Progress, _ ...core.DBExecutor) (progress.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := progressKey(prog.UserID, prog.LessonID)
	if orig, ok := repo.db.table[key]; ok {
		prog.ID = orig.ID
	} else {
		prog.ID = uuid.NewString()
	}
	repo.db.table[key] = &prog
	return prog, nil
}

type profileRepository struct {
	db *profileTable
}

var _ progress.ProfileRepository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) progress.ProfileRepository {
	return &profileRepository{db: db.profile}
}

func (repo *profileRepository) GetProfileByUserID(ctx context.Context, userID string) (progress.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prof, ok := repo.db.table[userID]; ok {
		return *prof, nil
	}
	return progress.Profile{}, progress.ErrProfileNotFound
}

func (repo *profileRepository) CreateProfile(ctx context.Context, profile progress.Profile) (progress.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	profile.ID = uuid.NewString()
	repo.db.table[profile.UserID] = &profile
	return profile, nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, profile progress.Profile, _ ...core.DBExecutor) (progress.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[profile.UserID]
	if !ok {
		return progress.Profile{}, progress.ErrProfileNotFound
	}
	profile.ID = orig.ID
	profile.CreatedAt = orig.CreatedAt
	repo.db.table[profile.UserID] = &profile
	return profile, nil
}

func (repo *profileRepository) QueryTopProfiles(ctx context.Context, limit int) ([]progress.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	profiles := make([]progress.Profile, 0, len(repo.db.table))
	for _, prof := range repo.db.table {
		profiles = append(profiles, *prof)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].XP != profiles[j].XP {
			return profiles[i].XP > profiles[j].XP
		}
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}
