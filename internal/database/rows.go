package database

import (
	"time"

	"gorm.io/datatypes"

	"github.com/s/lms/internal/models"
)

// UserRow is the fixture table for users. Position keeps the seed order.
type UserRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Position  int    `gorm:"index"`
	Name      string
	Email     string `gorm:"uniqueIndex;size:255"`
	Role      string `gorm:"size:20"`
	Status    string `gorm:"size:20"`
	JoinDate  datatypes.Date
	LastLogin datatypes.Date
}

func (UserRow) TableName() string { return "fixture_users" }

// CourseRow is the fixture table for courses. The student counter is not
// stored; the catalog derives it from enrollments.
type CourseRow struct {
	ID            int64 `gorm:"primaryKey;autoIncrement:false"`
	Position      int   `gorm:"index"`
	Title         string
	Instructor    string
	InstructorID  string `gorm:"size:64;index"`
	Category      string `gorm:"size:100"`
	Level         string `gorm:"size:20"`
	Price         float64
	OriginalPrice float64
	Duration      string
	Lessons       int
	Description   string
	Image         string
	Rating        float64
	Reviews       int
	Bestseller    bool
	Status        string `gorm:"size:20"`
	Updated       datatypes.Date
}

func (CourseRow) TableName() string { return "fixture_courses" }

type EnrollmentRow struct {
	ID               string `gorm:"primaryKey;size:64"`
	Position         int    `gorm:"index"`
	StudentID        string `gorm:"size:64;uniqueIndex:idx_fixture_enrollment_pair"`
	CourseID         int64  `gorm:"uniqueIndex:idx_fixture_enrollment_pair"`
	EnrolledDate     datatypes.Date
	Progress         int
	CompletedLessons int
	TimeSpent        string
	LastAccessed     datatypes.Date
	Grade            string
}

func (EnrollmentRow) TableName() string { return "fixture_enrollments" }

func userRow(pos int, u models.User) UserRow {
	return UserRow{
		ID:        u.ID,
		Position:  pos,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Status:    string(u.Status),
		JoinDate:  datatypes.Date(u.JoinDate),
		LastLogin: datatypes.Date(u.LastLogin),
	}
}

func (r UserRow) model() models.User {
	return models.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Role:      models.Role(r.Role),
		Status:    models.UserStatus(r.Status),
		JoinDate:  day(r.JoinDate),
		LastLogin: day(r.LastLogin),
	}
}

func courseRow(pos int, c models.Course) CourseRow {
	return CourseRow{
		ID:            c.ID,
		Position:      pos,
		Title:         c.Title,
		Instructor:    c.Instructor,
		InstructorID:  c.InstructorID,
		Category:      c.Category,
		Level:         string(c.Level),
		Price:         c.Price,
		OriginalPrice: c.OriginalPrice,
		Duration:      c.Duration,
		Lessons:       c.Lessons,
		Description:   c.Description,
		Image:         c.Image,
		Rating:        c.Rating,
		Reviews:       c.Reviews,
		Bestseller:    c.Bestseller,
		Status:        string(c.Status),
		Updated:       datatypes.Date(c.Updated),
	}
}

func (r CourseRow) model() models.Course {
	return models.Course{
		ID:            r.ID,
		Title:         r.Title,
		Instructor:    r.Instructor,
		InstructorID:  r.InstructorID,
		Category:      r.Category,
		Level:         models.Level(r.Level),
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Duration:      r.Duration,
		Lessons:       r.Lessons,
		Description:   r.Description,
		Image:         r.Image,
		Rating:        r.Rating,
		Reviews:       r.Reviews,
		Bestseller:    r.Bestseller,
		Status:        models.CourseStatus(r.Status),
		Updated:       day(r.Updated),
	}
}

func enrollmentRow(pos int, e models.Enrollment) EnrollmentRow {
	return EnrollmentRow{
		ID:               e.ID,
		Position:         pos,
		StudentID:        e.StudentID,
		CourseID:         e.CourseID,
		EnrolledDate:     datatypes.Date(e.EnrolledDate),
		Progress:         e.Progress,
		CompletedLessons: e.CompletedLessons,
		TimeSpent:        e.TimeSpent,
		LastAccessed:     datatypes.Date(e.LastAccessed),
		Grade:            e.Grade,
	}
}

func (r EnrollmentRow) model() models.Enrollment {
	return models.Enrollment{
		ID:               r.ID,
		StudentID:        r.StudentID,
		CourseID:         r.CourseID,
		EnrolledDate:     day(r.EnrolledDate),
		Progress:         r.Progress,
		CompletedLessons: r.CompletedLessons,
		TimeSpent:        r.TimeSpent,
		LastAccessed:     day(r.LastAccessed),
		Grade:            r.Grade,
	}
}

// day drops the driver's time zone and clock so dates compare equal to the
// ones decoded from YAML.
func day(d datatypes.Date) time.Time {
	t := time.Time(d)
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
