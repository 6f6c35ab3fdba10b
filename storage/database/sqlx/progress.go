package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/progress"
)

// getExec favors a service-provided executor (an open transaction) over
// the repository's pool.
func getExec(dflt core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return dflt
}

type progressRow struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	LessonID    string     `db:"lesson_id"`
	Completed   bool       `db:"completed"`
	Score       *int       `db:"score"`
	XPEarned    int        `db:"xp_earned"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (r progressRow) model() progress.Progress {
	return progress.Progress(r)
}

type progressRepository struct {
	db core.DBExecutor
}

var _ progress.ProgressRepository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.ProgressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) GetProgress(ctx context.Context, userID, lessonID string) (progress.Progress, error) {
	var row progressRow
	query := `SELECT * FROM user_progress WHERE user_id = $1 AND lesson_id = $2`
	if err := repo.db.GetContext(ctx, &row, query, userID, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return progress.Progress{}, progress.ErrNotFound
		}
		return progress.Progress{}, errors.Wrap(err, "getting progress")
	}
	return row.model(), nil
}

func (repo *progressRepository) QueryUserProgress(ctx context.Context, userID string) ([]progress.Progress, error) {
	var rows []progressRow
	query := `SELECT * FROM user_progress WHERE user_id = $1`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	progs := make([]progress.Progress, 0, len(rows))
	for _, row := range rows {
		progs = append(progs, row.model())
	}
	return progs, nil
}

func (repo *progressRepository) UpsertProgress(ctx context.Context, prog progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	var row progressRow
	query := `
INSERT INTO user_progress (user_id, lesson_id, completed, score, xp_earned, completed_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, lesson_id) DO UPDATE
SET completed = EXCLUDED.completed, score = EXCLUDED.score, xp_earned = EXCLUDED.xp_earned, completed_at = EXCLUDED.completed_at
RETURNING *`
	err := getExec(repo.db, exec).GetContext(ctx, &row, query,
		prog.UserID, prog.LessonID, prog.Completed, prog.Score, prog.XPEarned, prog.CompletedAt,
	)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return row.model(), nil
}

type profileRow struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	Name       string     `db:"name"`
	AvatarURL  string     `db:"avatar_url"`
	Language   string     `db:"language"`
	XP         int        `db:"xp"`
	Level      int        `db:"level"`
	Streak     int        `db:"streak"`
	LastActive *time.Time `db:"last_active"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

func (r profileRow) model() progress.Profile {
	return progress.Profile(r)
}

type profileRepository struct {
	db core.DBExecutor
}

var _ progress.ProfileRepository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) progress.ProfileRepository {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfileByUserID(ctx context.Context, userID string) (progress.Profile, error) {
	var row profileRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM profile WHERE user_id = $1`, userID); err != nil {
		if err == sql.ErrNoRows {
			return progress.Profile{}, progress.ErrProfileNotFound
		}
		return progress.Profile{}, errors.Wrap(err, "getting profile")
	}
	return row.model(), nil
}

func (repo *profileRepository) CreateProfile(ctx context.Context, profile progress.Profile) (progress.Profile, error) {
	var row profileRow
	query := `
INSERT INTO profile (user_id, name, avatar_url, language, xp, level, streak, last_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		profile.UserID, profile.Name, profile.AvatarURL, profile.Language, profile.XP,
		profile.Level, profile.Streak, profile.LastActive, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return progress.Profile{}, errors.Wrap(err, "creating profile")
	}
	return row.model(), nil
}

func (repo *profileRepository) UpdateProfile(ctx context.Context, profile progress.Profile, exec ...core.DBExecutor) (progress.Profile, error) {
	var row profileRow
	query := `
UPDATE profile
SET name = $2, avatar_url = $3, language = $4, xp = $5, level = $6, streak = $7, last_active = $8, updated_at = $9
WHERE user_id = $1
RETURNING *`
	err := getExec(repo.db, exec).GetContext(ctx, &row, query,
		profile.UserID, profile.Name, profile.AvatarURL, profile.Language, profile.XP,
		profile.Level, profile.Streak, profile.LastActive, profile.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return progress.Profile{}, progress.ErrProfileNotFound
		}
		return progress.Profile{}, errors.Wrap(err, "updating profile")
	}
	return row.model(), nil
}

func (repo *profileRepository) QueryTopProfiles(ctx context.Context, limit int) ([]progress.Profile, error) {
	var rows []profileRow
	query := `SELECT * FROM profile ORDER BY xp DESC, created_at ASC LIMIT $1`
	if err := repo.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "querying top profiles")
	}
	profiles := make([]progress.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, row.model())
	}
	return profiles, nil
}
