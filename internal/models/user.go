package models

import "time"

// User is an identity record owned by the identity store.
type User struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Email     string     `json:"email" yaml:"email"`
	Role      Role       `json:"role" yaml:"role"`
	Status    UserStatus `json:"status" yaml:"status"`
	JoinDate  time.Time  `json:"joinDate" yaml:"joinDate"`
	LastLogin time.Time  `json:"lastLogin" yaml:"lastLogin"`
}

// NewUser holds the fields an administrator supplies when creating an account.
// Identifier, status and dates are assigned by the store.
type NewUser struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
	Role  Role   `validate:"required,oneof=student teacher admin"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name   *string     `validate:"omitempty,min=1"`
	Email  *string     `validate:"omitempty,email"`
	Role   *Role       `validate:"omitempty,oneof=student teacher admin"`
	Status *UserStatus `validate:"omitempty,oneof=active suspended"`
}

// Apply merges the non-nil fields of upd into u.
func (upd UserUpdate) Apply(u *User) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
}
