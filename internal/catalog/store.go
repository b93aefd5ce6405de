// Package catalog owns courses and enrollments and keeps the per-course
// student counter in step with the enrollment set.
package catalog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/s/lms/internal/models"
)

// Identity is the part of the identity store the catalog uses.
type Identity interface {
	CurrentUser() (models.User, bool)
	User(id string) (models.User, bool)
	UpdateUser(id string, upd models.UserUpdate) (models.User, error)
}

// deletionNotifier is implemented by identity stores that can report user
// deletions so the catalog can cascade them.
type deletionNotifier interface {
	OnUserDeleted(func(models.User))
}

type Config struct {
	Clock  clock.Clock
	Logger *slog.Logger
}

// Seed is the initial catalog content.
type Seed struct {
	Courses     []models.Course
	Enrollments []models.Enrollment
}

// StudentEnrollment pairs a student with their enrollment in one course.
type StudentEnrollment struct {
	Student    models.User
	Enrollment models.Enrollment
}

// Snapshot is a point-in-time copy of the catalog for read-side computations.
type Snapshot struct {
	Courses     []models.Course
	Enrollments []models.Enrollment
}

// Store is the catalog store.
type Store struct {
	clock    clock.Clock
	logger   *slog.Logger
	identity Identity

	mu          sync.RWMutex
	courses     []models.Course
	enrollments []models.Enrollment
	nextID      int64
}

// NewStore builds a catalog on top of ident. Seed student counters are
// recomputed from the seed enrollments.
func NewStore(cfg Config, ident Identity, seed Seed) (*Store, error) {
	if ident == nil {
		return nil, errors.NotValidf("nil identity")
	}
	s := &Store{
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		identity: ident,
		nextID:   1,
	}
	if s.clock == nil {
		s.clock = clock.WallClock
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if err := s.load(seed); err != nil {
		return nil, errors.Annotate(err, "loading catalog seed")
	}
	if n, ok := ident.(deletionNotifier); ok {
		n.OnUserDeleted(s.dropStudent)
	}
	return s, nil
}

func (s *Store) load(seed Seed) error {
	counts := make(map[int64]int, len(seed.Courses))
	for _, c := range seed.Courses {
		if _, dup := counts[c.ID]; dup {
			return errors.AlreadyExistsf("course id %d", c.ID)
		}
		if c.ID <= 0 {
			return errors.NotValidf("course id %d", c.ID)
		}
		counts[c.ID] = 0
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
	}

	ids := make(map[string]bool, len(seed.Enrollments))
	pairs := make(map[pairKey]bool, len(seed.Enrollments))
	for _, e := range seed.Enrollments {
		if ids[e.ID] {
			return errors.AlreadyExistsf("enrollment id %q", e.ID)
		}
		if _, ok := counts[e.CourseID]; !ok {
			return errors.NotFoundf("course %d of enrollment %q", e.CourseID, e.ID)
		}
		key := pairKey{e.StudentID, e.CourseID}
		if pairs[key] {
			return errors.AlreadyExistsf("enrollment of %q in course %d", e.StudentID, e.CourseID)
		}
		ids[e.ID] = true
		pairs[key] = true
		counts[e.CourseID]++
	}

	s.courses = append([]models.Course(nil), seed.Courses...)
	for i := range s.courses {
		c := &s.courses[i]
		if c.Students != counts[c.ID] {
			s.logger.Debug("recomputed seed student count",
				"course_id", c.ID, "seed", c.Students, "enrollments", counts[c.ID])
		}
		c.Students = counts[c.ID]
	}
	s.enrollments = append([]models.Enrollment(nil), seed.Enrollments...)
	return nil
}

type pairKey struct {
	studentID string
	courseID  int64
}

// Courses returns a copy of the course set in insertion order.
func (s *Store) Courses() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Course(nil), s.courses...)
}

// Course looks a course up by id.
func (s *Store) Course(id int64) (models.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.courseIndex(id)
	if i < 0 {
		return models.Course{}, false
	}
	return s.courses[i], true
}

// Enrollments returns a copy of the enrollment set in insertion order.
func (s *Store) Enrollments() []models.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Enrollment(nil), s.enrollments...)
}

// Snapshot copies courses and enrollments under one read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Courses:     append([]models.Course(nil), s.courses...),
		Enrollments: append([]models.Enrollment(nil), s.enrollments...),
	}
}

// CreateCourse adds a course under review. Counters, rating and status are
// never taken from the caller.
func (s *Store) CreateCourse(in models.NewCourse) (models.Course, error) {
	if err := models.Validate(in); err != nil {
		return models.Course{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkInstructor(in.InstructorID); err != nil {
		return models.Course{}, errors.Trace(err)
	}
	c := models.Course{
		ID:            s.nextID,
		Title:         in.Title,
		Instructor:    in.Instructor,
		InstructorID:  in.InstructorID,
		Category:      in.Category,
		Level:         in.Level,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Duration:      in.Duration,
		Lessons:       in.Lessons,
		Description:   in.Description,
		Image:         in.Image,
		Bestseller:    in.Bestseller,
		Status:        models.CourseUnderReview,
		Updated:       s.today(),
	}
	s.nextID++
	s.courses = append(s.courses, c)
	s.logger.Info("course created", "course_id", c.ID, "instructor_id", c.InstructorID)
	return c, nil
}

// UpdateCourse merges the allowlisted fields of upd into the course.
func (s *Store) UpdateCourse(id int64, upd models.CourseUpdate) (models.Course, error) {
	if err := models.Validate(upd); err != nil {
		return models.Course{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.courseIndex(id)
	if i < 0 {
		return models.Course{}, errors.NotFoundf("course %d", id)
	}
	if upd.InstructorID != nil {
		if err := s.checkInstructor(*upd.InstructorID); err != nil {
			return models.Course{}, errors.Trace(err)
		}
	}
	if upd.Lessons != nil {
		for _, e := range s.enrollments {
			if e.CourseID == id && e.CompletedLessons > *upd.Lessons {
				return models.Course{}, errors.WithType(errors.Errorf("cannot reduce lessons to %d, a student has completed %d", *upd.Lessons, e.CompletedLessons), errors.NotValid)
			}
		}
	}
	upd.Apply(&s.courses[i])
	s.courses[i].Updated = s.today()
	s.logger.Info("course updated", "course_id", id)
	return s.courses[i], nil
}

// DeleteCourse removes the course together with every enrollment in it.
func (s *Store) DeleteCourse(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.courseIndex(id)
	if i < 0 {
		return errors.NotFoundf("course %d", id)
	}
	s.courses = append(s.courses[:i:i], s.courses[i+1:]...)

	kept := s.enrollments[:0:0]
	for _, e := range s.enrollments {
		if e.CourseID != id {
			kept = append(kept, e)
		}
	}
	dropped := len(s.enrollments) - len(kept)
	s.enrollments = kept
	s.logger.Info("course deleted", "course_id", id, "enrollments_removed", dropped)
	return nil
}

// UpdateUser applies upd through the identity store. A role change is refused
// while it would strand the user's enrollments or the courses they teach.
func (s *Store) UpdateUser(id string, upd models.UserUpdate) (models.User, error) {
	if err := models.Validate(upd); err != nil {
		return models.User{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if upd.Role != nil {
		user, ok := s.identity.User(id)
		if !ok {
			return models.User{}, errors.NotFoundf("user %q", id)
		}
		if err := s.checkRoleChange(user, *upd.Role); err != nil {
			return models.User{}, errors.Trace(err)
		}
	}
	user, err := s.identity.UpdateUser(id, upd)
	return user, errors.Trace(err)
}

func (s *Store) checkRoleChange(user models.User, to models.Role) error {
	if user.Role == to {
		return nil
	}
	switch user.Role {
	case models.RoleStudent:
		for _, e := range s.enrollments {
			if e.StudentID == user.ID {
				return errors.WithType(errors.Errorf("%s is still enrolled in courses", user.Name), errors.NotValid)
			}
		}
	case models.RoleTeacher:
		for _, c := range s.courses {
			if c.InstructorID == user.ID {
				return errors.WithType(errors.Errorf("%s still teaches courses", user.Name), errors.NotValid)
			}
		}
	}
	return nil
}

// checkInstructor requires id to name an existing teacher. Callers hold s.mu.
func (s *Store) checkInstructor(id string) error {
	user, ok := s.identity.User(id)
	if !ok {
		return errors.NotFoundf("instructor %q", id)
	}
	if user.Role != models.RoleTeacher {
		return errors.WithType(errors.Errorf("%s is not a teacher", user.Name), errors.NotValid)
	}
	return nil
}

func (s *Store) courseIndex(id int64) int {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) today() time.Time {
	y, m, d := s.clock.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
