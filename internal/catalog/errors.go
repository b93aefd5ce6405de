package catalog

import "github.com/juju/errors"

const (
	ErrNotSignedIn     = errors.ConstError("sign in to enroll in courses")
	ErrStudentsOnly    = errors.ConstError("only students can enroll in courses")
	ErrAlreadyEnrolled = errors.ConstError("already enrolled in this course")
)
