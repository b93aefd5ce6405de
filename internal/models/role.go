package models

// Role is the platform role of a user. It decides which store operations the
// user may drive: only students enroll, teachers and admins manage courses.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserStatus is the account state managed by administrators.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}
