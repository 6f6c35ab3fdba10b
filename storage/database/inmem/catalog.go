package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/finquest/finquest/core/catalog"
)

type catalogRepository struct {
	db *catalogTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog}
}

func (repo *catalogRepository) QueryCourses(ctx context.Context, publishedOnly bool) ([]catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]catalog.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		if publishedOnly && !c.IsPublished {
			continue
		}
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].SortOrder < courses[j].SortOrder })
	return courses, nil
}

func (repo *catalogRepository) GetCourseByID(ctx context.Context, id string) (catalog.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return catalog.Course{}, catalog.ErrNotFound
}

func (repo *catalogRepository) CreateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	course.ID = uuid.NewString()
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) UpdateCourse(ctx context.Context, course catalog.Course) (catalog.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.courses[course.ID]
	if !ok {
		return catalog.Course{}, catalog.ErrNotFound
	}
	course.CreatedAt = orig.CreatedAt
	repo.db.courses[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.courses, id)
	for uid, u := range repo.db.units {
		if u.CourseID == id {
			repo.deleteUnitLocked(uid)
		}
	}
	return nil
}

func (repo *catalogRepository) QueryUnitsByCourse(ctx context.Context, courseID string) ([]catalog.Unit, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var units []catalog.Unit
	for _, u := range repo.db.units {
		if u.CourseID == courseID {
			units = append(units, *u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].SortOrder < units[j].SortOrder })
	return units, nil
}

func (repo *catalogRepository) GetUnitByID(ctx context.Context, id string) (catalog.Unit, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if u, ok := repo.db.units[id]; ok {
		return *u, nil
	}
	return catalog.Unit{}, catalog.ErrNotFound
}

func (repo *catalogRepository) CreateUnit(ctx context.Context, unit catalog.Unit) (catalog.Unit, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	unit.ID = uuid.NewString()
	repo.db.units[unit.ID] = &unit
	return unit, nil
}

func (repo *catalogRepository) DeleteUnit(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.deleteUnitLocked(id)
	return nil
}

func (repo *catalogRepository) deleteUnitLocked(id string) {
	delete(repo.db.units, id)
	for lid, l := range repo.db.lessons {
		if l.UnitID == id {
			delete(repo.db.lessons, lid)
			delete(repo.db.quizzes, lid)
		}
	}
}

func (repo *catalogRepository) QueryLessonsByUnit(ctx context.Context, unitID string) ([]catalog.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var lessons []catalog.Lesson
	for _, l := range repo.db.lessons {
		if l.UnitID == unitID {
			lessons = append(lessons, *l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].SortOrder < lessons[j].SortOrder })
	return lessons, nil
}

func (repo *catalogRepository) GetLessonByID(ctx context.Context, id string) (catalog.Lesson, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return *l, nil
	}
	return catalog.Lesson{}, catalog.ErrNotFound
}

func (repo *catalogRepository) CreateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	lesson.ID = uuid.NewString()
	repo.db.lessons[lesson.ID] = &lesson
	return lesson, nil
}

func (repo *catalogRepository) UpdateLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.lessons[lesson.ID]
	if !ok {
		return catalog.Lesson{}, catalog.ErrNotFound
	}
	lesson.CreatedAt = orig.CreatedAt
	repo.db.lessons[lesson.ID] = &lesson
	return lesson, nil
}

func (repo *catalogRepository) DeleteLesson(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.lessons, id)
	delete(repo.db.quizzes, id)
	return nil
}

func (repo *catalogRepository) GetQuizByLessonID(ctx context.Context, lessonID string) (catalog.Quiz, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if q, ok := repo.db.quizzes[lessonID]; ok {
		return *q, nil
	}
	return catalog.Quiz{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpsertQuiz(ctx context.Context, quiz catalog.Quiz) (catalog.Quiz, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.quizzes[quiz.LessonID]; ok {
		quiz.ID = orig.ID
		quiz.CreatedAt = orig.CreatedAt
	} else {
		quiz.ID = uuid.NewString()
	}
	repo.db.quizzes[quiz.LessonID] = &quiz
	return quiz, nil
}

func (repo *catalogRepository) DeleteQuiz(ctx context.Context, lessonID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.quizzes, lessonID)
	return nil
}
