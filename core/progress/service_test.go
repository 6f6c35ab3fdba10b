package progress

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/finquest/finquest/core"
	"github.com/finquest/finquest/core/catalog"
	"github.com/finquest/finquest/core/progression"
)

type fakeProgressRepo struct {
	rows      map[string]Progress // key: userID+"|"+lessonID
	upserts   int
	upsertErr error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[string]Progress)}
}

func (r *fakeProgressRepo) GetProgress(_ context.Context, userID, lessonID string) (Progress, error) {
	if prog, ok := r.rows[userID+"|"+lessonID]; ok {
		return prog, nil
	}
	return Progress{}, ErrNotFound
}

func (r *fakeProgressRepo) QueryUserProgress(_ context.Context, userID string) ([]Progress, error) {
	var out []Progress
	for _, prog := range r.rows {
		if prog.UserID == userID {
			out = append(out, prog)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) UpsertProgress(_ context.Context, prog Progress, _ ...core.DBExecutor) (Progress, error) {
	if r.upsertErr != nil {
		return Progress{}, r.upsertErr
	}
	r.upserts++
	if prog.ID == "" {
		prog.ID = prog.UserID + "|" + prog.LessonID
	}
	r.rows[prog.UserID+"|"+prog.LessonID] = prog
	return prog, nil
}

type fakeProfileRepo struct {
	profiles  map[string]Profile
	updates   int
	updateErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]Profile)}
}

func (r *fakeProfileRepo) GetProfileByUserID(_ context.Context, userID string) (Profile, error) {
	if profile, ok := r.profiles[userID]; ok {
		return profile, nil
	}
	return Profile{}, ErrProfileNotFound
}

func (r *fakeProfileRepo) CreateProfile(_ context.Context, profile Profile) (Profile, error) {
	r.profiles[profile.UserID] = profile
	return profile, nil
}

func (r *fakeProfileRepo) UpdateProfile(_ context.Context, profile Profile, _ ...core.DBExecutor) (Profile, error) {
	if r.updateErr != nil {
		return Profile{}, r.updateErr
	}
	r.updates++
	r.profiles[profile.UserID] = profile
	return profile, nil
}

func (r *fakeProfileRepo) QueryTopProfiles(_ context.Context, limit int) ([]Profile, error) {
	profiles := make([]Profile, 0, len(r.profiles))
	for _, prof := range r.profiles {
		profiles = append(profiles, prof)
	}
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			if profiles[j].XP > profiles[i].XP {
				profiles[i], profiles[j] = profiles[j], profiles[i]
			}
		}
	}
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

type fakeCatalogRepo struct {
	lessons map[string]catalog.Lesson
	quizzes map[string]catalog.Quiz // by lesson ID
}

func (r *fakeCatalogRepo) QueryCourses(context.Context, bool) ([]catalog.Course, error) {
	return nil, nil
}
func (r *fakeCatalogRepo) GetCourseByID(context.Context, string) (catalog.Course, error) {
	return catalog.Course{}, catalog.ErrNotFound
}
func (r *fakeCatalogRepo) CreateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	return c, nil
}
func (r *fakeCatalogRepo) UpdateCourse(_ context.Context, c catalog.Course) (catalog.Course, error) {
	return c, nil
}
func (r *fakeCatalogRepo) DeleteCourse(context.Context, string) error { return nil }
func (r *fakeCatalogRepo) QueryUnitsByCourse(context.Context, string) ([]catalog.Unit, error) {
	return nil, nil
}
func (r *fakeCatalogRepo) GetUnitByID(context.Context, string) (catalog.Unit, error) {
	return catalog.Unit{}, catalog.ErrNotFound
}
func (r *fakeCatalogRepo) CreateUnit(_ context.Context, u catalog.Unit) (catalog.Unit, error) {
	return u, nil
}
func (r *fakeCatalogRepo) DeleteUnit(context.Context, string) error { return nil }

func (r *fakeCatalogRepo) QueryLessonsByUnit(_ context.Context, unitID string) ([]catalog.Lesson, error) {
	var out []catalog.Lesson
	for _, lsn := range r.lessons {
		if lsn.UnitID == unitID {
			out = append(out, lsn)
		}
	}
	// fake keeps at most a handful; order by SortOrder
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SortOrder < out[i].SortOrder {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) GetLessonByID(_ context.Context, id string) (catalog.Lesson, error) {
	if lsn, ok := r.lessons[id]; ok {
		return lsn, nil
	}
	return catalog.Lesson{}, catalog.ErrNotFound
}
func (r *fakeCatalogRepo) CreateLesson(_ context.Context, l catalog.Lesson) (catalog.Lesson, error) {
	return l, nil
}
func (r *fakeCatalogRepo) UpdateLesson(_ context.Context, l catalog.Lesson) (catalog.Lesson, error) {
	return l, nil
}
func (r *fakeCatalogRepo) DeleteLesson(context.Context, string) error { return nil }

func (r *fakeCatalogRepo) GetQuizByLessonID(_ context.Context, lessonID string) (catalog.Quiz, error) {
	if quiz, ok := r.quizzes[lessonID]; ok {
		return quiz, nil
	}
	return catalog.Quiz{}, catalog.ErrNotFound
}
func (r *fakeCatalogRepo) UpsertQuiz(_ context.Context, q catalog.Quiz) (catalog.Quiz, error) {
	return q, nil
}
func (r *fakeCatalogRepo) DeleteQuiz(context.Context, string) error { return nil }

func setup(t *testing.T) (*Service, *fakeProgressRepo, *fakeProfileRepo, *fakeCatalogRepo) {
	t.Helper()

	catRepo := &fakeCatalogRepo{
		lessons: map[string]catalog.Lesson{
			"l1": {ID: "l1", UnitID: "u1", Title: "Budgeting 101", SortOrder: 0, XPReward: 10},
			"l2": {ID: "l2", UnitID: "u1", Title: "Saving Smart", SortOrder: 1, XPReward: 10},
			"l3": {ID: "l3", UnitID: "u1", Title: "Debt Traps", SortOrder: 2, XPReward: 10},
		},
		quizzes: map[string]catalog.Quiz{
			"l1": {ID: "q1", LessonID: "l1", Questions: []progression.Question{
				{Prompt: "q1", Options: []string{"a", "b"}, Correct: 1},
				{Prompt: "q2", Options: []string{"a", "b"}, Correct: 0},
			}},
		},
	}
	progRepo := newFakeProgressRepo()
	profRepo := newFakeProfileRepo()
	_, _ = profRepo.CreateProfile(context.Background(), Profile{ID: "p1", UserID: "user1", Name: "Asha", Level: 1})

	svc := NewService(nil, progRepo, profRepo, catalog.NewService(catRepo))
	return svc, progRepo, profRepo, catRepo
}

func TestService_CompleteVideo(t *testing.T) {
	svc, progRepo, profRepo, _ := setup(t)
	ctx := context.Background()

	res, err := svc.CompleteVideo(ctx, "user1", "l1")
	if err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if res.AlreadyCredited {
		t.Error("first completion reported AlreadyCredited")
	}
	if res.XPAwarded != 10 {
		t.Errorf("XPAwarded = %d; want 10", res.XPAwarded)
	}
	if res.Profile.XP != 10 || res.Profile.Level != 1 {
		t.Errorf("profile = xp %d level %d; want xp 10 level 1", res.Profile.XP, res.Profile.Level)
	}
	if res.Profile.Streak != 1 || !res.StreakBroken {
		t.Errorf("streak = %d broken %v; want 1 true (first-ever activity)", res.Profile.Streak, res.StreakBroken)
	}

	// re-invoking must not double-award
	res, err = svc.CompleteVideo(ctx, "user1", "l1")
	if err != nil {
		t.Fatalf("CompleteVideo() retry failed: %v", err)
	}
	if !res.AlreadyCredited || res.XPAwarded != 0 {
		t.Errorf("retry: AlreadyCredited = %v, XPAwarded = %d; want true, 0", res.AlreadyCredited, res.XPAwarded)
	}
	if got := profRepo.profiles["user1"].XP; got != 10 {
		t.Errorf("profile XP after retry = %d; want 10", got)
	}
	if progRepo.upserts != 1 {
		t.Errorf("progress upserts = %d; want 1", progRepo.upserts)
	}
	if profRepo.updates != 1 {
		t.Errorf("profile updates = %d; want 1", profRepo.updates)
	}
}

func TestService_CompleteVideo_levelUp(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	ctx := context.Background()

	profile := profRepo.profiles["user1"]
	profile.XP = 90
	profile.Level = 1
	profRepo.profiles["user1"] = profile

	res, err := svc.CompleteVideo(ctx, "user1", "l1")
	if err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if res.Profile.XP != 100 || res.Profile.Level != 2 {
		t.Errorf("profile = xp %d level %d; want xp 100 level 2", res.Profile.XP, res.Profile.Level)
	}
	// the displayed "xp in level" keeps the historical modulus: 100 % 200 == 100
	if got := progression.XPWithinLevel(res.Profile.XP); got != 100 {
		t.Errorf("XPWithinLevel(100) = %d; want 100", got)
	}
}

func TestService_CompleteVideo_partialWrite(t *testing.T) {
	svc, progRepo, profRepo, _ := setup(t)
	ctx := context.Background()

	profRepo.updateErr = errors.New("boom")

	_, err := svc.CompleteVideo(ctx, "user1", "l1")
	if !IsPartialWrite(err) {
		t.Fatalf("err = %v; want PartialWriteError", err)
	}
	// the progress row was committed and remains queryable
	prog, getErr := progRepo.GetProgress(ctx, "user1", "l1")
	if getErr != nil {
		t.Fatalf("GetProgress() after partial write failed: %v", getErr)
	}
	if prog.XPEarned != 10 {
		t.Errorf("recorded XPEarned = %d; want 10", prog.XPEarned)
	}

	// recovery: once the profile store is healthy, re-invocation is a safe no-op
	// for the progress row and does not double-award
	profRepo.updateErr = nil
	res, err := svc.CompleteVideo(ctx, "user1", "l1")
	if err != nil {
		t.Fatalf("CompleteVideo() after recovery failed: %v", err)
	}
	if !res.AlreadyCredited {
		t.Error("recovery invocation should report AlreadyCredited")
	}
}

func TestService_SubmitQuiz(t *testing.T) {
	svc, progRepo, profRepo, _ := setup(t)
	ctx := context.Background()

	// failing attempt: score recorded, nothing awarded, retry allowed
	res, err := svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 0, 1: 1})
	if err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if res.Score != 0 || res.Passed || res.XPAwarded != 0 {
		t.Errorf("fail attempt = %+v; want score 0, not passed, no XP", res)
	}
	prog, _ := progRepo.GetProgress(ctx, "user1", "l1")
	if prog.Score == nil || *prog.Score != 0 || prog.Completed {
		t.Errorf("progress after fail = %+v; want recorded score 0, not completed", prog)
	}

	// passing retry: completed, quiz XP credited once
	res, err = svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 1, 1: 0})
	if err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if res.Score != 100 || !res.Passed || res.XPAwarded != progression.QuizXP {
		t.Errorf("pass attempt = %+v; want score 100, passed, %d XP", res, progression.QuizXP)
	}
	prog, _ = progRepo.GetProgress(ctx, "user1", "l1")
	if !prog.Completed || prog.CompletedAt == nil || prog.XPEarned != progression.QuizXP {
		t.Errorf("progress after pass = %+v", prog)
	}
	if got := profRepo.profiles["user1"].XP; got != progression.QuizXP {
		t.Errorf("profile XP = %d; want %d", got, progression.QuizXP)
	}

	// resubmitting a pass never re-awards
	res, err = svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 1, 1: 0})
	if err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if res.XPAwarded != 0 {
		t.Errorf("re-pass XPAwarded = %d; want 0", res.XPAwarded)
	}
	if got := profRepo.profiles["user1"].XP; got != progression.QuizXP {
		t.Errorf("profile XP after re-pass = %d; want %d", got, progression.QuizXP)
	}
}

func TestService_SubmitQuiz_passThreshold(t *testing.T) {
	svc, _, _, catRepo := setup(t)
	ctx := context.Background()

	// 10 questions, 7 correct = exactly the pass mark
	questions := make([]progression.Question, 10)
	answers := make(map[int]int, 10)
	for i := range questions {
		questions[i] = progression.Question{Prompt: "q", Options: []string{"a", "b"}, Correct: 0}
		if i < 7 {
			answers[i] = 0
		} else {
			answers[i] = 1
		}
	}
	catRepo.quizzes["l2"] = catalog.Quiz{ID: "q2", LessonID: "l2", Questions: questions}

	res, err := svc.SubmitQuiz(ctx, "user1", "l2", answers)
	if err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if res.Score != progression.PassingScore || !res.Passed {
		t.Errorf("score = %d passed = %v; want %d true", res.Score, res.Passed, progression.PassingScore)
	}
}

func TestService_SubmitQuiz_videoXPSurvivesRetries(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.CompleteVideo(ctx, "user1", "l1"); err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if _, err := svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 0, 1: 1}); err != nil { // fail
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].XP; got != 10 {
		t.Errorf("profile XP after failed quiz = %d; want 10 (video XP untouched)", got)
	}

	if _, err := svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 1, 1: 0}); err != nil { // pass
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].XP; got != 10+progression.QuizXP {
		t.Errorf("profile XP after pass = %d; want %d", got, 10+progression.QuizXP)
	}
}

func TestService_SubmitQuiz_noQuiz(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.SubmitQuiz(context.Background(), "user1", "l2", map[int]int{})
	if errors.Cause(err) != catalog.ErrNotFound {
		t.Errorf("err = %v; want catalog.ErrNotFound", err)
	}
}

func TestService_streakAcrossDays(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	defer func() { nowFunc = time.Now }()

	nowFunc = func() time.Time { return base }
	if _, err := svc.CompleteVideo(ctx, "user1", "l1"); err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].Streak; got != 1 {
		t.Errorf("streak day 1 = %d; want 1", got)
	}

	// next day: streak continues
	nowFunc = func() time.Time { return base.AddDate(0, 0, 1) }
	if _, err := svc.CompleteVideo(ctx, "user1", "l2"); err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].Streak; got != 2 {
		t.Errorf("streak day 2 = %d; want 2", got)
	}

	// same day again: no inflation
	nowFunc = func() time.Time { return base.AddDate(0, 0, 1).Add(5 * time.Hour) }
	if _, err := svc.CompleteVideo(ctx, "user1", "l3"); err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].Streak; got != 2 {
		t.Errorf("streak same day = %d; want 2", got)
	}

	// three days later: reset
	nowFunc = func() time.Time { return base.AddDate(0, 0, 4) }
	res, err := svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 1, 1: 0})
	if err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	if got := profRepo.profiles["user1"].Streak; got != 1 || !res.StreakBroken {
		t.Errorf("streak after gap = %d broken %v; want 1 true", got, res.StreakBroken)
	}
}

func TestService_UnitState(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	states, err := svc.UnitState(ctx, "user1", "u1")
	if err != nil {
		t.Fatalf("UnitState() failed: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("len(states) = %d; want 3", len(states))
	}
	if states[0].Locked {
		t.Error("first lesson must never be locked")
	}
	if !states[1].Locked || !states[2].Locked {
		t.Error("later lessons must be locked before any completion")
	}

	// complete lesson 1 via a passing quiz; lesson 2 unlocks, lesson 3 stays locked
	if _, err = svc.SubmitQuiz(ctx, "user1", "l1", map[int]int{0: 1, 1: 0}); err != nil {
		t.Fatalf("SubmitQuiz() failed: %v", err)
	}
	states, err = svc.UnitState(ctx, "user1", "u1")
	if err != nil {
		t.Fatalf("UnitState() failed: %v", err)
	}
	if states[1].Locked {
		t.Error("lesson 2 should unlock after lesson 1 completion")
	}
	if !states[2].Locked {
		t.Error("lesson 3 should stay locked")
	}
	if states[0].Progress == nil || !states[0].Progress.Completed {
		t.Error("lesson 1 progress should be attached and completed")
	}
}

func TestService_GetOverview(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	ctx := context.Background()

	profile := profRepo.profiles["user1"]
	profile.XP = 250
	profile.Level = 3
	profRepo.profiles["user1"] = profile

	view, err := svc.GetOverview(ctx, "user1")
	if err != nil {
		t.Fatalf("GetOverview() failed: %v", err)
	}
	if view.XPWithinLevel != 250 || view.XPForNextLevel != 300 {
		t.Errorf("overview = within %d next %d; want 250, 300", view.XPWithinLevel, view.XPForNextLevel)
	}

	_, err = svc.GetOverview(ctx, "nobody")
	if errors.Cause(err) != ErrProfileNotFound {
		t.Errorf("err = %v; want ErrProfileNotFound", err)
	}
}

// fake transactional store; the embedded interfaces satisfy the query
// methods, which these tests never reach.
type fakeTx struct {
	core.DBExecutor
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit() error   { tx.committed = true; return nil }
func (tx *fakeTx) Rollback() error { tx.rolledBack = true; return nil }

type fakeDB struct {
	core.DBExecutor
	tx *fakeTx
}

func (db *fakeDB) Transactor(context.Context) (core.DBTransactor, error) { return db.tx, nil }

func TestService_CompleteVideo_transactional(t *testing.T) {
	svc, _, _, _ := setup(t)
	db := &fakeDB{tx: &fakeTx{}}
	svc.db = db
	ctx := context.Background()

	if _, err := svc.CompleteVideo(ctx, "user1", "l1"); err != nil {
		t.Fatalf("CompleteVideo() failed: %v", err)
	}
	if !db.tx.committed || db.tx.rolledBack {
		t.Errorf("tx committed %v rolledBack %v; want committed only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestService_CompleteVideo_rollbackOnProfileFailure(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	db := &fakeDB{tx: &fakeTx{}}
	svc.db = db
	ctx := context.Background()

	profRepo.updateErr = errors.New("boom")

	_, err := svc.CompleteVideo(ctx, "user1", "l2")
	if err == nil {
		t.Fatal("CompleteVideo() should fail when the profile write fails")
	}
	// with a transaction the pair is atomic: no partial write to report
	if IsPartialWrite(err) {
		t.Errorf("err = %v; rolled-back write must not surface as partial", err)
	}
	if !db.tx.rolledBack || db.tx.committed {
		t.Errorf("tx committed %v rolledBack %v; want rollback only", db.tx.committed, db.tx.rolledBack)
	}
}

func TestService_Leaderboard(t *testing.T) {
	svc, _, profRepo, _ := setup(t)
	ctx := context.Background()

	_, _ = profRepo.CreateProfile(ctx, Profile{ID: "p2", UserID: "user2", Name: "Bina", XP: 300, Level: 4})
	_, _ = profRepo.CreateProfile(ctx, Profile{ID: "p3", UserID: "user3", Name: "Chen", XP: 120, Level: 2})

	leaders, err := svc.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(leaders) != 3 {
		t.Fatalf("len(leaders) = %d; want 3", len(leaders))
	}
	for i, want := range []string{"user2", "user3", "user1"} {
		if leaders[i].UserID != want {
			t.Errorf("leaders[%d] = %s; want %s (XP descending)", i, leaders[i].UserID, want)
		}
	}

	leaders, err = svc.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(leaders) != 2 || leaders[0].UserID != "user2" {
		t.Errorf("limited leaders = %d rows, first %s; want 2 rows led by user2", len(leaders), leaders[0].UserID)
	}
}
