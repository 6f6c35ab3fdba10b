package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progression"
)

var (
	// errors
	ErrNotFound        = errors.New("progress not found")
	ErrProfileNotFound = errors.New("profile not found")

	nowFunc = time.Now // mockable
)

// PartialWriteError signals that the progress row was written but the
// follow-up profile update failed. The recorded progress is queryable, and
// re-invoking the operation is safe: credited stages are no-ops.
type PartialWriteError struct {
	Err error
}

func (e *PartialWriteError) Error() string {
	return "progress recorded but profile update failed: " + e.Err.Error()
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

func IsPartialWrite(err error) bool {
	var pw *PartialWriteError
	return errors.As(pkgerrors.Cause(err), &pw)
}

type (
	ProgressRepository interface {
		// GetProgress returns ErrNotFound when the user has no record for the lesson.
		GetProgress(ctx context.Context, userID, lessonID string) (Progress, error)
		QueryUserProgress(ctx context.Context, userID string) ([]Progress, error)
		// UpsertProgress inserts or updates the row keyed by (UserID, LessonID).
		UpsertProgress(ctx context.Context, prog Progress, exec ...core.DBExecutor) (Progress, error)
	}

	ProfileRepository interface {
		// GetProfileByUserID returns ErrProfileNotFound when absent.
		GetProfileByUserID(ctx context.Context, userID string) (Profile, error)
		CreateProfile(ctx context.Context, profile Profile) (Profile, error)
		UpdateProfile(ctx context.Context, profile Profile, exec ...core.DBExecutor) (Profile, error)
		// QueryTopProfiles returns at most limit profiles, highest XP first.
		QueryTopProfiles(ctx context.Context, limit int) ([]Profile, error)
	}

	Service struct {
		db           core.DB // nil when the store has no transactions
		progressRepo ProgressRepository
		profileRepo  ProfileRepository
		catalogSvc   *catalog.Service

		// serializes the progress-upsert + profile read-modify-write pair
		// per user, so concurrent completions cannot lose XP updates
		mu    sync.Mutex
		locks map[string]*sync.Mutex
	}
)

func NewService(db core.DB, progressRepo ProgressRepository, profileRepo ProfileRepository, catalogSvc *catalog.Service) *Service {
	return &Service{
		db:           db,
		progressRepo: progressRepo,
		profileRepo:  profileRepo,
		catalogSvc:   catalogSvc,
		locks:        make(map[string]*sync.Mutex),
	}
}

// begin opens a transaction for the progress-upsert + profile-write pair
// when the store supports one. With a nil db the pair runs as loose writes
// under the per-user lock and a profile failure surfaces as PartialWriteError.
func (svc *Service) begin(ctx context.Context) (core.DBTransactor, []core.DBExecutor, error) {
	if svc.db == nil {
		return nil, nil, nil
	}
	tx, err := svc.db.Transactor(ctx)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(err, "beginning transaction")
	}
	return tx, []core.DBExecutor{tx}, nil
}

func rollback(tx core.DBTransactor) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

func commit(tx core.DBTransactor) error {
	if tx == nil {
		return nil
	}
	return pkgerrors.Wrap(tx.Commit(), "committing transaction")
}

func (svc *Service) userLock(userID string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	lock, ok := svc.locks[userID]
	if !ok {
		lock = new(sync.Mutex)
		svc.locks[userID] = lock
	}
	return lock
}

func (svc *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	return svc.profileRepo.GetProfileByUserID(ctx, userID)
}

// EnsureProfile creates the user's starting profile if they have none yet.
// New profiles start at 0 XP, level 1, no streak.
func (svc *Service) EnsureProfile(ctx context.Context, userID, name string) (Profile, error) {
	profile, err := svc.profileRepo.GetProfileByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if err != ErrProfileNotFound {
		return Profile{}, pkgerrors.Wrap(err, "getting profile")
	}

	now := nowFunc().UTC()
	profile = Profile{
		UserID:    userID,
		Name:      name,
		Language:  "en",
		XP:        0,
		Level:     progression.LevelForXP(0),
		Streak:    0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.profileRepo.CreateProfile(ctx, profile)
}

// GetOverview returns the user's profile with its derived level figures.
func (svc *Service) GetOverview(ctx context.Context, userID string) (Overview, error) {
	profile, err := svc.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	return NewOverview(profile), nil
}

func (svc *Service) QueryUserProgress(ctx context.Context, userID string) ([]Progress, error) {
	return svc.progressRepo.QueryUserProgress(ctx, userID)
}

// DefaultLeaderboardSize caps the leaderboard the way the app screen shows it.
const DefaultLeaderboardSize = 50

// Leaderboard returns the top profiles ordered by XP descending.
// A non-positive limit falls back to DefaultLeaderboardSize.
func (svc *Service) Leaderboard(ctx context.Context, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	return svc.profileRepo.QueryTopProfiles(ctx, limit)
}

// videoXP returns the XP paid out for watching a lesson's video.
func videoXP(lesson catalog.Lesson) int {
	if lesson.XPReward > 0 {
		return lesson.XPReward
	}
	return progression.VideoXP
}

// CompleteVideo credits the video stage of a lesson. The credit fires once:
// an existing record with earned XP or completion makes it a no-op, so
// re-invocation (two tabs, a retry after a partial write) never double-awards.
func (svc *Service) CompleteVideo(ctx context.Context, userID, lessonID string) (VideoResult, error) {
	lesson, err := svc.catalogSvc.GetLesson(ctx, lessonID)
	if err != nil {
		return VideoResult{}, pkgerrors.Wrap(err, "getting lesson")
	}

	lock := svc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	prog, err := svc.progressRepo.GetProgress(ctx, userID, lessonID)
	if err != nil && err != ErrNotFound {
		return VideoResult{}, pkgerrors.Wrap(err, "getting progress")
	}
	if prog.XPEarned > 0 || prog.Completed {
		profile, err := svc.profileRepo.GetProfileByUserID(ctx, userID)
		if err != nil {
			return VideoResult{}, pkgerrors.Wrap(err, "getting profile")
		}
		return VideoResult{AlreadyCredited: true, Profile: profile}, nil
	}

	xp := videoXP(lesson)
	prog.UserID = userID
	prog.LessonID = lessonID
	prog.XPEarned = xp

	tx, exec, err := svc.begin(ctx)
	if err != nil {
		return VideoResult{}, err
	}
	if _, err = svc.progressRepo.UpsertProgress(ctx, prog, exec...); err != nil {
		rollback(tx)
		return VideoResult{}, pkgerrors.Wrap(err, "upserting progress")
	}

	profile, streak, err := svc.applyProfileDelta(ctx, userID, xp, exec...)
	if err != nil {
		if tx != nil {
			rollback(tx)
			return VideoResult{}, err
		}
		return VideoResult{}, &PartialWriteError{Err: err}
	}
	if err = commit(tx); err != nil {
		return VideoResult{}, err
	}
	return VideoResult{XPAwarded: xp, StreakBroken: streak.Broken, Profile: profile}, nil
}

// SubmitQuiz scores a quiz attempt. The score is recorded on every attempt;
// a score of at least progression.PassingScore marks the lesson completed
// and credits the quiz XP exactly once. Failed attempts may be retried
// without limit and never change an earlier completion.
func (svc *Service) SubmitQuiz(ctx context.Context, userID, lessonID string, answers map[int]int) (QuizResult, error) {
	quiz, err := svc.catalogSvc.GetQuiz(ctx, lessonID)
	if err != nil {
		return QuizResult{}, pkgerrors.Wrap(err, "getting quiz")
	}

	score, err := progression.ScoreQuiz(quiz.Questions, answers)
	if err != nil {
		return QuizResult{}, err
	}
	passed := score >= progression.PassingScore

	lock := svc.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	prog, err := svc.progressRepo.GetProgress(ctx, userID, lessonID)
	if err != nil && err != ErrNotFound {
		return QuizResult{}, pkgerrors.Wrap(err, "getting progress")
	}
	prog.UserID = userID
	prog.LessonID = lessonID
	prog.Score = &score

	// quiz XP fires only on the not-completed -> completed transition
	var award int
	if passed && !prog.Completed {
		award = progression.QuizXP
		prog.XPEarned += award
	}
	if passed && prog.CompletedAt == nil {
		now := nowFunc().UTC()
		prog.CompletedAt = &now
	}
	prog.Completed = prog.Completed || passed

	tx, exec, err := svc.begin(ctx)
	if err != nil {
		return QuizResult{}, err
	}
	if _, err = svc.progressRepo.UpsertProgress(ctx, prog, exec...); err != nil {
		rollback(tx)
		return QuizResult{}, pkgerrors.Wrap(err, "upserting progress")
	}

	result := QuizResult{Score: score, Passed: passed}
	if award == 0 {
		if err = commit(tx); err != nil {
			return QuizResult{}, err
		}
		profile, err := svc.profileRepo.GetProfileByUserID(ctx, userID)
		if err != nil {
			return QuizResult{}, pkgerrors.Wrap(err, "getting profile")
		}
		result.Profile = profile
		return result, nil
	}

	profile, streak, err := svc.applyProfileDelta(ctx, userID, award, exec...)
	if err != nil {
		if tx != nil {
			rollback(tx)
			return QuizResult{}, err
		}
		return QuizResult{}, &PartialWriteError{Err: err}
	}
	if err = commit(tx); err != nil {
		return QuizResult{}, err
	}
	result.XPAwarded = award
	result.StreakBroken = streak.Broken
	result.Profile = profile
	return result, nil
}

// applyProfileDelta reads the profile and writes xp, level, streak and
// last-active as one unit. Callers must hold the user's lock.
func (svc *Service) applyProfileDelta(ctx context.Context, userID string, delta int, exec ...core.DBExecutor) (Profile, progression.StreakResult, error) {
	profile, err := svc.profileRepo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return Profile{}, progression.StreakResult{}, pkgerrors.Wrap(err, "getting profile")
	}

	today := progression.DateOf(nowFunc())
	streak := progression.UpdateStreak(profile.LastActive, profile.Streak, today)

	profile.XP += delta
	profile.Level = progression.LevelForXP(profile.XP)
	profile.Streak = streak.Streak
	profile.LastActive = &today
	profile.UpdatedAt = nowFunc().UTC()

	profile, err = svc.profileRepo.UpdateProfile(ctx, profile, exec...)
	if err != nil {
		return Profile{}, progression.StreakResult{}, pkgerrors.Wrap(err, "updating profile")
	}
	return profile, streak, nil
}

// LessonState is a lesson joined with the caller's lock state and progress.
type LessonState struct {
	catalog.Lesson
	Locked   bool      `json:"locked"`
	Progress *Progress `json:"progress,omitempty"`
}

// UnitState returns the unit's ordered lessons with per-lesson lock state
// and the user's progress, ready for the lesson path screen.
func (svc *Service) UnitState(ctx context.Context, userID, unitID string) ([]LessonState, error) {
	lessons, err := svc.catalogSvc.ListLessons(ctx, unitID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing lessons")
	}

	records, err := svc.progressRepo.QueryUserProgress(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying progress")
	}
	byLesson := make(map[string]Progress, len(records))
	completed := make(map[string]bool, len(records))
	for _, rec := range records {
		byLesson[rec.LessonID] = rec
		completed[rec.LessonID] = rec.Completed
	}

	ids := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}

	states := make([]LessonState, 0, len(lessons))
	for i, lesson := range lessons {
		state := LessonState{
			Lesson: lesson,
			Locked: progression.IsLocked(i, completed, ids),
		}
		if rec, ok := byLesson[lesson.ID]; ok {
			rec := rec
			state.Progress = &rec
		}
		states = append(states, state)
	}
	return states, nil
}
