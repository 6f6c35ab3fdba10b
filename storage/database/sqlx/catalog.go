package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progression"
)

type courseRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Icon        string    `db:"icon"`
	Color       string    `db:"color"`
	SortOrder   int       `db:"sort_order"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r courseRow) model() catalog.Course {
	return catalog.Course(r)
}

type unitRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Title     string    `db:"title"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
}

func (r unitRow) model() catalog.Unit {
	return catalog.Unit(r)
}

type lessonRow struct {
	ID           string    `db:"id"`
	UnitID       string    `db:"unit_id"`
	Title        string    `db:"title"`
	Type         string    `db:"type"`
	VideoURL     string    `db:"video_url"`
	TranscriptEN string    `db:"transcript_en"`
	TranscriptHI string    `db:"transcript_hi"`
	SortOrder    int       `db:"sort_order"`
	XPReward     int       `db:"xp_reward"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r lessonRow) model() catalog.Lesson {
	return catalog.Lesson(r)
}

type quizRow struct {
	ID        string    `db:"id"`
	LessonID  string    `db:"lesson_id"`
	Questions []byte    `db:"questions"`
	CreatedAt time.Time `db:"created_at"`
}

func (r quizRow) model() (catalog.Quiz, error) {
	var questions []progression.Question
	if err := json.Unmarshal(r.Questions, &questions); err != nil {
		return catalog.Quiz{}, errors.Wrap(err, "decoding quiz questions")
	}
	return catalog.Quiz{
		ID:        r.ID,
		LessonID:  r.LessonID,
		Questions: questions,
		CreatedAt: r.CreatedAt,
	}, nil
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) QueryCourses(ctx context.Context, publishedOnly bool) ([]catalog.Course, error) {
	query := `SELECT * FROM course`
	if publishedOnly {
		query += ` WHERE is_published`
	}
	query += ` ORDER BY sort_order, created_at`

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]catalog.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.model())
	}
	return courses, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id string) (catalog.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "getting course")
	}
	return row.model(), nil
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	var row courseRow
	query := `
INSERT INTO course (title, category, description, icon, color, sort_order, is_published, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		course.Title, course.Category, course.Description, course.Icon, course.Color,
		course.SortOrder, course.IsPublished, course.CreatedAt,
	)
	if err != nil {
		return catalog.Course{}, errors.Wrap(err, "creating course")
	}
	return row.model(), nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	var row courseRow
	query := `
UPDATE course
SET title = $2, category = $3, description = $4, icon = $5, color = $6, sort_order = $7, is_published = $8
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		course.ID, course.Title, course.Category, course.Description, course.Icon, course.Color,
		course.SortOrder, course.IsPublished,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Course{}, catalog.ErrNotFound
		}
		return catalog.Course{}, errors.Wrap(err, "updating course")
	}
	return row.model(), nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}

func (repo *catalogRepository) QueryUnitsByCourse(ctx context.Context, courseID string) ([]catalog.Unit, error) {
	var rows []unitRow
	query := `SELECT * FROM unit WHERE course_id = $1 ORDER BY sort_order, created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, errors.Wrap(err, "querying units")
	}
	units := make([]catalog.Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.model())
	}
	return units, nil
}

func (repo *catalogRepository) GetUnitByID(ctx context.Context, id string) (catalog.Unit, error) {
	var row unitRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM unit WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Unit{}, catalog.ErrNotFound
		}
		return catalog.Unit{}, errors.Wrap(err, "getting unit")
	}
	return row.model(), nil
}

func (repo *catalogRepository) CreateUnit(ctx context.Context, unit catalog.Unit) (catalog.Unit, error) {
	var row unitRow
	query := `
INSERT INTO unit (course_id, title, sort_order, created_at)
VALUES ($1, $2, $3, $4)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query, unit.CourseID, unit.Title, unit.SortOrder, unit.CreatedAt)
	if err != nil {
		return catalog.Unit{}, errors.Wrap(err, "creating unit")
	}
	return row.model(), nil
}

func (repo *catalogRepository) DeleteUnit(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM unit WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting unit")
	}
	return nil
}

func (repo *catalogRepository) QueryLessonsByUnit(ctx context.Context, unitID string) ([]catalog.Lesson, error) {
	var rows []lessonRow
	query := `SELECT * FROM lesson WHERE unit_id = $1 ORDER BY sort_order, created_at`
	if err := repo.db.SelectContext(ctx, &rows, query, unitID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.model())
	}
	return lessons, nil
}

func (repo *catalogRepository) GetLessonByID(ctx context.Context, id string) (catalog.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM lesson WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "getting lesson")
	}
	return row.model(), nil
}

func (repo *catalogRepository) CreateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	var row lessonRow
	query := `
INSERT INTO lesson (unit_id, title, type, video_url, transcript_en, transcript_hi, sort_order, xp_reward, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		lesson.UnitID, lesson.Title, lesson.Type, lesson.VideoURL, lesson.TranscriptEN,
		lesson.TranscriptHI, lesson.SortOrder, lesson.XPReward, lesson.CreatedAt,
	)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return row.model(), nil
}

func (repo *catalogRepository) UpdateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	var row lessonRow
	query := `
UPDATE lesson
SET title = $2, type = $3, video_url = $4, transcript_en = $5, transcript_hi = $6, sort_order = $7, xp_reward = $8
WHERE id = $1
RETURNING *`
	err := repo.db.GetContext(ctx, &row, query,
		lesson.ID, lesson.Title, lesson.Type, lesson.VideoURL, lesson.TranscriptEN,
		lesson.TranscriptHI, lesson.SortOrder, lesson.XPReward,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Lesson{}, catalog.ErrNotFound
		}
		return catalog.Lesson{}, errors.Wrap(err, "updating lesson")
	}
	return row.model(), nil
}

func (repo *catalogRepository) DeleteLesson(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM lesson WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return nil
}

func (repo *catalogRepository) GetQuizByLessonID(ctx context.Context, lessonID string) (catalog.Quiz, error) {
	var row quizRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM quiz WHERE lesson_id = $1`, lessonID); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Quiz{}, catalog.ErrNotFound
		}
		return catalog.Quiz{}, errors.Wrap(err, "getting quiz")
	}
	return row.model()
}

func (repo *catalogRepository) UpsertQuiz(ctx context.Context, quiz catalog.Quiz) (catalog.Quiz, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return catalog.Quiz{}, errors.Wrap(err, "encoding quiz questions")
	}

	var row quizRow
	query := `
INSERT INTO quiz (lesson_id, questions, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (lesson_id) DO UPDATE SET questions = EXCLUDED.questions
RETURNING *`
	if err = repo.db.GetContext(ctx, &row, query, quiz.LessonID, questions, quiz.CreatedAt); err != nil {
		return catalog.Quiz{}, errors.Wrap(err, "upserting quiz")
	}
	return row.model()
}

func (repo *catalogRepository) DeleteQuiz(ctx context.Context, lessonID string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM quiz WHERE lesson_id = $1`, lessonID); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return nil
}
