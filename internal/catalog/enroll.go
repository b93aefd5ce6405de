package catalog

import (
	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/s/lms/internal/models"
)

// EnrollInCourse enrolls the signed-in student. The duplicate check, the
// insert and the student counter increment happen under one lock.
func (s *Store) EnrollInCourse(courseID int64) (models.Enrollment, error) {
	user, ok := s.identity.CurrentUser()
	if !ok {
		return models.Enrollment{}, ErrNotSignedIn
	}
	if user.Role != models.RoleStudent {
		return models.Enrollment{}, ErrStudentsOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The user may have been deleted or changed role since the session was
	// read. A deletion that lands after this point waits for s.mu and
	// cascades the new enrollment.
	user, ok = s.identity.User(user.ID)
	if !ok {
		return models.Enrollment{}, ErrNotSignedIn
	}
	if user.Role != models.RoleStudent {
		return models.Enrollment{}, ErrStudentsOnly
	}

	i := s.courseIndex(courseID)
	if i < 0 {
		return models.Enrollment{}, errors.NotFoundf("course %d", courseID)
	}
	for _, e := range s.enrollments {
		if e.StudentID == user.ID && e.CourseID == courseID {
			return models.Enrollment{}, ErrAlreadyEnrolled
		}
	}

	now := s.today()
	e := models.Enrollment{
		ID:           uuid.NewString(),
		StudentID:    user.ID,
		CourseID:     courseID,
		EnrolledDate: now,
		TimeSpent:    "0 hours",
		LastAccessed: now,
	}
	s.enrollments = append(s.enrollments, e)
	s.courses[i].Students++
	s.logger.Info("enrolled", "user_id", user.ID, "course_id", courseID)
	return e, nil
}

// EnrolledCourses lists the courses of a student in enrollment order.
// Enrollments whose course is gone are skipped.
func (s *Store) EnrolledCourses(studentID string) []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Course
	for _, e := range s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if i := s.courseIndex(e.CourseID); i >= 0 {
			out = append(out, s.courses[i])
		}
	}
	return out
}

// StudentsInCourse pairs each enrollment of the course with its student.
// Students that no longer exist are skipped.
func (s *Store) StudentsInCourse(courseID int64) []StudentEnrollment {
	s.mu.RLock()
	var enrollments []models.Enrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			enrollments = append(enrollments, e)
		}
	}
	s.mu.RUnlock()

	out := make([]StudentEnrollment, 0, len(enrollments))
	for _, e := range enrollments {
		student, ok := s.identity.User(e.StudentID)
		if !ok {
			continue
		}
		out = append(out, StudentEnrollment{Student: student, Enrollment: e})
	}
	return out
}

// UpdateProgress records learning progress on an enrollment and marks it as
// accessed today.
func (s *Store) UpdateProgress(enrollmentID string, upd models.ProgressUpdate) (models.Enrollment, error) {
	if err := models.Validate(upd); err != nil {
		return models.Enrollment{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.enrollments {
		if s.enrollments[i].ID == enrollmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Enrollment{}, errors.NotFoundf("enrollment %q", enrollmentID)
	}
	e := &s.enrollments[idx]
	if upd.CompletedLessons != nil {
		if ci := s.courseIndex(e.CourseID); ci >= 0 && *upd.CompletedLessons > s.courses[ci].Lessons {
			return models.Enrollment{}, errors.WithType(errors.Errorf("%d completed lessons exceed the %d in the course", *upd.CompletedLessons, s.courses[ci].Lessons), errors.NotValid)
		}
	}
	upd.Apply(e)
	e.LastAccessed = s.today()
	s.logger.Info("progress updated", "enrollment_id", enrollmentID, "progress", e.Progress)
	return *e, nil
}

// dropStudent removes the enrollments of a deleted user and decrements the
// affected course counters.
func (s *Store) dropStudent(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.enrollments[:0:0]
	for _, e := range s.enrollments {
		if e.StudentID != u.ID {
			kept = append(kept, e)
			continue
		}
		if i := s.courseIndex(e.CourseID); i >= 0 {
			s.courses[i].Students--
		}
	}
	if dropped := len(s.enrollments) - len(kept); dropped > 0 {
		s.logger.Info("enrollments removed with user", "user_id", u.ID, "count", dropped)
	}
	s.enrollments = kept
}
