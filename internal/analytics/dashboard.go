package analytics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/s/lms/internal/catalog"
	"github.com/s/lms/internal/models"
)

const (
	activeWindow      = 7 * 24 * time.Hour
	topCoursesLimit   = 5
	recentLimit       = 10
	studentRecent     = 5
	continueLearning  = 3
	collectorCourses  = 3
	dedicatedHours    = 20
	overachieverCount = 5
)

// UserLookup resolves a user id, e.g. identity.Store.User.
type UserLookup func(id string) (models.User, bool)

type CategoryShare struct {
	Category string
	Courses  int
	Percent  float64
}

type CourseEnrollment struct {
	Course      models.Course
	Enrollments int
}

// Activity is one enrollment with its resolved student and course. Student
// is the zero User when the account no longer exists.
type Activity struct {
	Student    models.User
	Course     models.Course
	Enrollment models.Enrollment
}

// PlatformStats backs the admin dashboard.
type PlatformStats struct {
	Students        int
	Teachers        int
	Courses         int
	Enrollments     int
	Revenue         float64
	AverageProgress int
	ActiveThisWeek  int
	Categories      []CategoryShare
	TopCourses      []CourseEnrollment
	RecentActivity  []Activity
}

// Platform computes platform-wide totals as of now.
func Platform(users []models.User, snap catalog.Snapshot, now time.Time) PlatformStats {
	st := PlatformStats{
		Courses:     len(snap.Courses),
		Enrollments: len(snap.Enrollments),
	}
	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
		switch u.Role {
		case models.RoleStudent:
			st.Students++
		case models.RoleTeacher:
			st.Teachers++
		}
	}

	for _, c := range snap.Courses {
		st.Revenue += c.Price * float64(c.Students)
	}

	weekAgo := now.Add(-activeWindow)
	counts := make(map[int64]int)
	progress := make([]int, 0, len(snap.Enrollments))
	for _, e := range snap.Enrollments {
		counts[e.CourseID]++
		progress = append(progress, e.Progress)
		if e.LastAccessed.After(weekAgo) {
			st.ActiveThisWeek++
		}
	}
	st.AverageProgress = roundedMean(progress)

	for _, cat := range Categories(snap.Courses) {
		share := CategoryShare{Category: cat}
		for _, c := range snap.Courses {
			if c.Category == cat {
				share.Courses++
			}
		}
		share.Percent = float64(share.Courses) / float64(len(snap.Courses)) * 100
		st.Categories = append(st.Categories, share)
	}

	for _, c := range snap.Courses {
		if n := counts[c.ID]; n > 0 {
			st.TopCourses = append(st.TopCourses, CourseEnrollment{Course: c, Enrollments: n})
		}
	}
	slices.SortStableFunc(st.TopCourses, func(a, b CourseEnrollment) int {
		return cmp.Compare(b.Enrollments, a.Enrollments)
	})
	st.TopCourses = limit(st.TopCourses, topCoursesLimit)

	courses := coursesByID(snap.Courses)
	for _, e := range byLastAccessed(snap.Enrollments) {
		st.RecentActivity = append(st.RecentActivity, Activity{
			Student:    byID[e.StudentID],
			Course:     courses[e.CourseID],
			Enrollment: e,
		})
	}
	st.RecentActivity = limit(st.RecentActivity, recentLimit)
	return st
}

type CourseStats struct {
	Course          models.Course
	Enrolled        int
	AverageProgress int
	Revenue         float64
}

// TeacherStats backs the teacher dashboard.
type TeacherStats struct {
	Courses        []CourseStats
	TotalStudents  int
	Revenue        float64
	AverageRating  float64
	Published      int
	RecentStudents []Activity
}

// Teacher computes the dashboard of the courses whose InstructorID is
// teacherID. Enrollments of students lookup cannot resolve are skipped.
func Teacher(teacherID string, snap catalog.Snapshot, lookup UserLookup) TeacherStats {
	var st TeacherStats
	var ratings float64
	for _, c := range snap.Courses {
		if c.InstructorID != teacherID {
			continue
		}
		st.TotalStudents += c.Students
		st.Revenue += c.Price * float64(c.Students)
		ratings += c.Rating
		if c.Status == models.CoursePublished {
			st.Published++
		}

		cs := CourseStats{Course: c}
		var progress []int
		for _, e := range snap.Enrollments {
			if e.CourseID != c.ID {
				continue
			}
			student, ok := lookup(e.StudentID)
			if !ok {
				continue
			}
			progress = append(progress, e.Progress)
			st.RecentStudents = append(st.RecentStudents, Activity{Student: student, Course: c, Enrollment: e})
		}
		cs.Enrolled = len(progress)
		cs.AverageProgress = roundedMean(progress)
		cs.Revenue = c.Price * float64(cs.Enrolled)
		st.Courses = append(st.Courses, cs)
	}
	if n := len(st.Courses); n > 0 {
		st.AverageRating = math.Round(ratings/float64(n)*10) / 10
	}

	slices.SortStableFunc(st.RecentStudents, func(a, b Activity) int {
		return b.Enrollment.LastAccessed.Compare(a.Enrollment.LastAccessed)
	})
	st.RecentStudents = limit(st.RecentStudents, recentLimit)
	return st
}

type Achievement struct {
	Title       string
	Description string
	Unlocked    bool
}

// StudentStats backs the student dashboard.
type StudentStats struct {
	Enrolled         int
	AverageProgress  int
	Completed        int
	CompletedLessons int
	HoursSpent       int
	Achievements     []Achievement
	Recent           []models.Enrollment
	InProgress       []models.Enrollment
}

// Student computes the dashboard of one student. Enrollments pointing at
// deleted courses are ignored.
func Student(studentID string, snap catalog.Snapshot) StudentStats {
	courses := coursesByID(snap.Courses)

	var mine []models.Enrollment
	for _, e := range snap.Enrollments {
		if e.StudentID != studentID {
			continue
		}
		if _, ok := courses[e.CourseID]; !ok {
			continue
		}
		mine = append(mine, e)
	}

	st := StudentStats{Enrolled: len(mine)}
	progress := make([]int, 0, len(mine))
	for _, e := range mine {
		progress = append(progress, e.Progress)
		if e.Completed() {
			st.Completed++
		}
		st.CompletedLessons += e.CompletedLessons
		st.HoursSpent += e.HoursSpent()
	}
	st.AverageProgress = roundedMean(progress)

	st.Achievements = []Achievement{
		{Title: "First Course Completed", Description: "Complete your first course", Unlocked: st.Completed >= 1},
		{Title: "Dedicated Learner", Description: "Spend 20+ hours learning", Unlocked: st.HoursSpent >= dedicatedHours},
		{Title: "Course Collector", Description: "Enroll in 3+ courses", Unlocked: st.Enrolled >= collectorCourses},
		{Title: "Overachiever", Description: "Complete 5+ courses", Unlocked: st.Completed >= overachieverCount},
	}

	recent := byLastAccessed(mine)
	st.Recent = limit(slices.Clone(recent), studentRecent)
	for _, e := range recent {
		if !e.Completed() {
			st.InProgress = append(st.InProgress, e)
		}
	}
	st.InProgress = limit(st.InProgress, continueLearning)
	return st
}

// byLastAccessed returns a copy of es, most recently accessed first.
func byLastAccessed(es []models.Enrollment) []models.Enrollment {
	out := slices.Clone(es)
	slices.SortStableFunc(out, func(a, b models.Enrollment) int {
		return b.LastAccessed.Compare(a.LastAccessed)
	})
	return out
}

func coursesByID(courses []models.Course) map[int64]models.Course {
	m := make(map[int64]models.Course, len(courses))
	for _, c := range courses {
		m[c.ID] = c
	}
	return m
}

func roundedMean(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	var sum int
	for _, x := range xs {
		sum += x
	}
	return int(math.Round(float64(sum) / float64(len(xs))))
}

func limit[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
