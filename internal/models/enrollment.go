package models

import (
	"strconv"
	"strings"
	"time"
)

// Enrollment binds one student to one course. At most one enrollment exists
// per (StudentID, CourseID) pair.
type Enrollment struct {
	ID               string    `json:"id" yaml:"id"`
	StudentID        string    `json:"studentId" yaml:"studentId"`
	CourseID         int64     `json:"courseId" yaml:"courseId"`
	EnrolledDate     time.Time `json:"enrolledDate" yaml:"enrolledDate"`
	Progress         int       `json:"progress" yaml:"progress"`
	CompletedLessons int       `json:"completedLessons" yaml:"completedLessons"`
	TimeSpent        string    `json:"timeSpent" yaml:"timeSpent"`
	LastAccessed     time.Time `json:"lastAccessed" yaml:"lastAccessed"`
	Grade            string    `json:"grade,omitempty" yaml:"grade,omitempty"`
}

func (e Enrollment) Completed() bool {
	return e.Progress == 100
}

// HoursSpent reads the leading whole number of TimeSpent ("12 hours" -> 12).
func (e Enrollment) HoursSpent() int {
	fields := strings.Fields(e.TimeSpent)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}

// ProgressUpdate is written by whatever tracks lesson progress.
type ProgressUpdate struct {
	Progress         *int    `validate:"omitempty,gte=0,lte=100"`
	CompletedLessons *int    `validate:"omitempty,gte=0"`
	TimeSpent        *string `validate:"omitempty,min=1"`
	Grade            *string
}

// Apply merges the non-nil fields of upd into e.
func (upd ProgressUpdate) Apply(e *Enrollment) {
	if upd.Progress != nil {
		e.Progress = *upd.Progress
	}
	if upd.CompletedLessons != nil {
		e.CompletedLessons = *upd.CompletedLessons
	}
	if upd.TimeSpent != nil {
		e.TimeSpent = *upd.TimeSpent
	}
	if upd.Grade != nil {
		e.Grade = *upd.Grade
	}
}
