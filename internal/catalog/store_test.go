package catalog_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/lms/internal/catalog"
	"github.com/s/lms/internal/identity"
	"github.com/s/lms/internal/models"
)

var (
	now   = time.Date(2025, 1, 20, 9, 30, 0, 0, time.UTC)
	today = time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	ident   *identity.Store
	catalog *catalog.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clk := testclock.NewClock(now)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ident, err := identity.NewStore(identity.Config{Clock: clk, Logger: logger}, []models.User{
		{ID: "1", Name: "John Student", Email: "student@test.com", Role: models.RoleStudent},
		{ID: "2", Name: "Sarah Johnson", Email: "teacher@test.com", Role: models.RoleTeacher},
		{ID: "3", Name: "Admin User", Email: "admin@test.com", Role: models.RoleAdmin},
		{ID: "4", Name: "Emma Wilson", Email: "emma@test.com", Role: models.RoleStudent},
	})
	require.NoError(t, err)

	cat, err := catalog.NewStore(catalog.Config{Clock: clk, Logger: logger}, ident, catalog.Seed{
		Courses: []models.Course{
			{ID: 1, Title: "Web Development Bootcamp", InstructorID: "2", Lessons: 10, Students: 15420, Status: models.CoursePublished},
			{ID: 2, Title: "Data Science", InstructorID: "2", Lessons: 8, Status: models.CoursePublished},
			{ID: 3, Title: "UI Design", InstructorID: "2", Lessons: 5, Status: models.CourseUnderReview},
		},
		Enrollments: []models.Enrollment{
			{ID: "e1", StudentID: "1", CourseID: 1, Progress: 40, CompletedLessons: 4, TimeSpent: "12 hours"},
			{ID: "e2", StudentID: "4", CourseID: 1, Progress: 10, CompletedLessons: 1, TimeSpent: "2 hours"},
			{ID: "e3", StudentID: "4", CourseID: 2},
		},
	})
	require.NoError(t, err)
	return fixture{ident: ident, catalog: cat}
}

func (f fixture) login(t *testing.T, email string) {
	t.Helper()
	_, err := f.ident.Login(email, "password")
	require.NoError(t, err)
}

// assertCountsConsistent checks that every course counter equals the number
// of enrollments pointing at it.
func assertCountsConsistent(t *testing.T, s *catalog.Store) {
	t.Helper()
	snap := s.Snapshot()
	counts := map[int64]int{}
	for _, e := range snap.Enrollments {
		counts[e.CourseID]++
	}
	for _, c := range snap.Courses {
		assert.Equal(t, counts[c.ID], c.Students, "course %d", c.ID)
	}
}

func TestSeedCountsAreRecomputed(t *testing.T) {
	f := newFixture(t)
	c, ok := f.catalog.Course(1)
	require.True(t, ok)
	assert.Equal(t, 2, c.Students)
	assertCountsConsistent(t, f.catalog)
}

func TestEnrollInCourse(t *testing.T) {
	f := newFixture(t)
	f.login(t, "student@test.com")

	e, err := f.catalog.EnrollInCourse(2)
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "1", e.StudentID)
	assert.Equal(t, int64(2), e.CourseID)
	assert.Equal(t, 0, e.Progress)
	assert.Equal(t, 0, e.CompletedLessons)
	assert.Equal(t, "0 hours", e.TimeSpent)
	assert.Equal(t, today, e.EnrolledDate)
	assert.Equal(t, today, e.LastAccessed)

	c, _ := f.catalog.Course(2)
	assert.Equal(t, 2, c.Students)
	assertCountsConsistent(t, f.catalog)
}

func TestEnrollTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	f.login(t, "student@test.com")

	_, err := f.catalog.EnrollInCourse(1)
	assert.True(t, errors.Is(err, catalog.ErrAlreadyEnrolled))

	c, _ := f.catalog.Course(1)
	assert.Equal(t, 2, c.Students)
	assert.Len(t, f.catalog.Enrollments(), 3)
}

func TestEnrollRequiresStudentSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.EnrollInCourse(2)
	assert.True(t, errors.Is(err, catalog.ErrNotSignedIn))

	f.login(t, "teacher@test.com")
	_, err = f.catalog.EnrollInCourse(2)
	assert.True(t, errors.Is(err, catalog.ErrStudentsOnly))

	f.login(t, "admin@test.com")
	_, err = f.catalog.EnrollInCourse(2)
	assert.True(t, errors.Is(err, catalog.ErrStudentsOnly))

	assert.Len(t, f.catalog.Enrollments(), 3)
	c, _ := f.catalog.Course(2)
	assert.Equal(t, 1, c.Students)
}

func TestEnrollUnknownCourse(t *testing.T) {
	f := newFixture(t)
	f.login(t, "student@test.com")
	_, err := f.catalog.EnrollInCourse(99)
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Len(t, f.catalog.Enrollments(), 3)
}

func TestConcurrentEnrollmentCreatesOneRecord(t *testing.T) {
	f := newFixture(t)
	f.login(t, "student@test.com")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.catalog.EnrollInCourse(3); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	c, _ := f.catalog.Course(3)
	assert.Equal(t, 1, c.Students)
}

// vanishingIdentity deletes the signed-in user right after handing out the
// session, so the catalog sees a user that no longer exists.
type vanishingIdentity struct {
	*identity.Store
}

func (v vanishingIdentity) CurrentUser() (models.User, bool) {
	u, ok := v.Store.CurrentUser()
	if ok {
		if err := v.Store.DeleteUser(u.ID); err != nil {
			panic(err)
		}
	}
	return u, ok
}

func TestEnrollAfterUserDeletedLeavesNoEnrollment(t *testing.T) {
	ident, err := identity.NewStore(identity.Config{}, []models.User{
		{ID: "1", Name: "John Student", Email: "student@test.com", Role: models.RoleStudent},
	})
	require.NoError(t, err)
	cat, err := catalog.NewStore(catalog.Config{}, vanishingIdentity{ident}, catalog.Seed{
		Courses: []models.Course{{ID: 1, Title: "Web Development Bootcamp", InstructorID: "2", Lessons: 10}},
	})
	require.NoError(t, err)
	_, err = ident.Login("student@test.com", "password")
	require.NoError(t, err)

	_, err = cat.EnrollInCourse(1)
	assert.True(t, errors.Is(err, catalog.ErrNotSignedIn))
	assert.Empty(t, cat.Enrollments())
	c, _ := cat.Course(1)
	assert.Equal(t, 0, c.Students)
}

func TestEnrolledCourses(t *testing.T) {
	f := newFixture(t)
	courses := f.catalog.EnrolledCourses("4")
	require.Len(t, courses, 2)
	assert.Equal(t, int64(1), courses[0].ID)
	assert.Equal(t, int64(2), courses[1].ID)

	assert.Empty(t, f.catalog.EnrolledCourses("nobody"))
}

func TestDeleteCourseCascades(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.catalog.DeleteCourse(1))

	_, ok := f.catalog.Course(1)
	assert.False(t, ok)
	for _, e := range f.catalog.Enrollments() {
		assert.NotEqual(t, int64(1), e.CourseID)
	}
	assert.Empty(t, f.catalog.EnrolledCourses("1"))
	courses := f.catalog.EnrolledCourses("4")
	require.Len(t, courses, 1)
	assert.Equal(t, int64(2), courses[0].ID)

	err := f.catalog.DeleteCourse(1)
	assert.True(t, errors.Is(err, errors.NotFound))
	assertCountsConsistent(t, f.catalog)
}

func TestStudentsInCourse(t *testing.T) {
	f := newFixture(t)
	got := f.catalog.StudentsInCourse(1)
	require.Len(t, got, 2)
	assert.Equal(t, "John Student", got[0].Student.Name)
	assert.Equal(t, "e1", got[0].Enrollment.ID)
	assert.Equal(t, "Emma Wilson", got[1].Student.Name)
}

func TestDeletingUserCascadesEnrollments(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ident.DeleteUser("4"))

	got := f.catalog.StudentsInCourse(1)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Student.ID)
	assert.Len(t, f.catalog.Enrollments(), 1)

	c, _ := f.catalog.Course(2)
	assert.Equal(t, 0, c.Students)
	assertCountsConsistent(t, f.catalog)
}

func TestCreateCourseForcesDefaults(t *testing.T) {
	f := newFixture(t)
	c, err := f.catalog.CreateCourse(models.NewCourse{
		Title:        "X",
		Instructor:   "Sarah Johnson",
		InstructorID: "2",
		Category:     "Programming",
		Level:        models.LevelBeginner,
		Price:        49.99,
		Lessons:      12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, models.CourseUnderReview, c.Status)
	assert.Equal(t, 0, c.Students)
	assert.Equal(t, 0, c.Reviews)
	assert.Zero(t, c.Rating)
	assert.Equal(t, today, c.Updated)
	assert.Len(t, f.catalog.Courses(), 4)
}

func TestCreateCourseRequiresTeacher(t *testing.T) {
	f := newFixture(t)
	in := models.NewCourse{Title: "X", Instructor: "John Student", InstructorID: "1", Category: "Design", Level: models.LevelAdvanced}
	_, err := f.catalog.CreateCourse(in)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.ErrorContains(t, err, "John Student is not a teacher")

	in.InstructorID = "99"
	_, err = f.catalog.CreateCourse(in)
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Len(t, f.catalog.Courses(), 3)
}

func TestCreateCourseValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.CreateCourse(models.NewCourse{Title: "X"})
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Len(t, f.catalog.Courses(), 3)
}

func TestCreateCourseIDsAreUniqueUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	in := models.NewCourse{Title: "X", Instructor: "S", InstructorID: "2", Category: "Design", Level: models.LevelAdvanced}

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.catalog.CreateCourse(in)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, c := range f.catalog.Courses() {
		assert.False(t, seen[c.ID], "duplicate id %d", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, 53)
}

func TestUpdateCourse(t *testing.T) {
	f := newFixture(t)
	title := "Web Development Bootcamp 2025"
	status := models.CoursePublished
	c, err := f.catalog.UpdateCourse(3, models.CourseUpdate{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, title, c.Title)
	assert.Equal(t, models.CoursePublished, c.Status)
	assert.Equal(t, today, c.Updated)
	assert.Equal(t, 0, c.Students)

	_, err = f.catalog.UpdateCourse(42, models.CourseUpdate{Title: &title})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestUpdateCourseInstructorMustBeTeacher(t *testing.T) {
	f := newFixture(t)
	admin := "3"
	_, err := f.catalog.UpdateCourse(1, models.CourseUpdate{InstructorID: &admin})
	assert.True(t, errors.Is(err, errors.NotValid))
	c, _ := f.catalog.Course(1)
	assert.Equal(t, "2", c.InstructorID)

	teacher := "2"
	_, err = f.catalog.UpdateCourse(1, models.CourseUpdate{InstructorID: &teacher})
	assert.NoError(t, err)
}

func TestUpdateUserRoleKeepsRelationships(t *testing.T) {
	f := newFixture(t)
	teacher, student := models.RoleTeacher, models.RoleStudent

	_, err := f.catalog.UpdateUser("1", models.UserUpdate{Role: &teacher})
	assert.ErrorContains(t, err, "John Student is still enrolled in courses")
	_, err = f.catalog.UpdateUser("2", models.UserUpdate{Role: &student})
	assert.ErrorContains(t, err, "Sarah Johnson still teaches courses")

	u, _ := f.ident.User("1")
	assert.Equal(t, models.RoleStudent, u.Role)
	u, _ = f.ident.User("2")
	assert.Equal(t, models.RoleTeacher, u.Role)

	// Once the enrollments are gone the promotion goes through.
	require.NoError(t, f.catalog.DeleteCourse(1))
	u, err = f.catalog.UpdateUser("1", models.UserUpdate{Role: &teacher})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, u.Role)

	name := "Sarah J."
	u, err = f.catalog.UpdateUser("2", models.UserUpdate{Name: &name, Role: &teacher})
	require.NoError(t, err)
	assert.Equal(t, "Sarah J.", u.Name)

	_, err = f.catalog.UpdateUser("missing", models.UserUpdate{Role: &teacher})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestUpdateCourseRejectsLessonsBelowProgress(t *testing.T) {
	f := newFixture(t)
	lessons := 3
	_, err := f.catalog.UpdateCourse(1, models.CourseUpdate{Lessons: &lessons})
	assert.True(t, errors.Is(err, errors.NotValid))
	c, _ := f.catalog.Course(1)
	assert.Equal(t, 10, c.Lessons)
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	progress, done, spent := 100, 10, "20 hours"
	e, err := f.catalog.UpdateProgress("e1", models.ProgressUpdate{Progress: &progress, CompletedLessons: &done, TimeSpent: &spent})
	require.NoError(t, err)
	assert.True(t, e.Completed())
	assert.Equal(t, 20, e.HoursSpent())
	assert.Equal(t, today, e.LastAccessed)

	tooMany := 11
	_, err = f.catalog.UpdateProgress("e1", models.ProgressUpdate{CompletedLessons: &tooMany})
	assert.True(t, errors.Is(err, errors.NotValid))

	over := 120
	_, err = f.catalog.UpdateProgress("e1", models.ProgressUpdate{Progress: &over})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = f.catalog.UpdateProgress("missing", models.ProgressUpdate{Progress: &progress})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestEnrollDeleteSequenceKeepsCounters(t *testing.T) {
	f := newFixture(t)
	f.login(t, "emma@test.com")
	_, err := f.catalog.EnrollInCourse(3)
	require.NoError(t, err)
	f.login(t, "student@test.com")
	_, err = f.catalog.EnrollInCourse(3)
	require.NoError(t, err)
	_, err = f.catalog.EnrollInCourse(2)
	require.NoError(t, err)
	assertCountsConsistent(t, f.catalog)

	require.NoError(t, f.catalog.DeleteCourse(2))
	assertCountsConsistent(t, f.catalog)
	require.NoError(t, f.ident.DeleteUser("4"))
	assertCountsConsistent(t, f.catalog)

	c, _ := f.catalog.Course(3)
	assert.Equal(t, 1, c.Students)
}

func TestNewStoreRejectsBadSeed(t *testing.T) {
	ident, err := identity.NewStore(identity.Config{}, nil)
	require.NoError(t, err)

	_, err = catalog.NewStore(catalog.Config{}, ident, catalog.Seed{
		Courses:     []models.Course{{ID: 1}},
		Enrollments: []models.Enrollment{{ID: "e1", StudentID: "1", CourseID: 2}},
	})
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = catalog.NewStore(catalog.Config{}, ident, catalog.Seed{
		Courses: []models.Course{{ID: 1}},
		Enrollments: []models.Enrollment{
			{ID: "e1", StudentID: "1", CourseID: 1},
			{ID: "e2", StudentID: "1", CourseID: 1},
		},
	})
	assert.True(t, errors.Is(err, errors.AlreadyExists))
}
