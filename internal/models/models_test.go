package models

import (
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNewCourse(t *testing.T) {
	err := Validate(NewCourse{Title: "Go", Level: "Expert"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Contains(t, err.Error(), "instructor is required")
	assert.Contains(t, err.Error(), "level must be one of")

	ok := NewCourse{
		Title:        "Go",
		Instructor:   "Sarah Johnson",
		InstructorID: "2",
		Category:     "Programming",
		Level:        LevelBeginner,
		Price:        10,
	}
	assert.NoError(t, Validate(ok))
}

func TestValidateUserUpdateRejectsEmptyName(t *testing.T) {
	empty := ""
	err := Validate(UserUpdate{Name: &empty})
	assert.True(t, errors.Is(err, errors.NotValid))

	assert.NoError(t, Validate(UserUpdate{}))
}

func TestProgressUpdateBounds(t *testing.T) {
	over := 101
	assert.Error(t, Validate(ProgressUpdate{Progress: &over}))
	half := 50
	assert.NoError(t, Validate(ProgressUpdate{Progress: &half}))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 75, Course{Price: 49.99, OriginalPrice: 199.99}.DiscountPercent())
	assert.Equal(t, 0, Course{Price: 10}.DiscountPercent())
}

func TestHoursSpent(t *testing.T) {
	assert.Equal(t, 12, Enrollment{TimeSpent: "12 hours"}.HoursSpent())
	assert.Equal(t, 0, Enrollment{TimeSpent: "a while"}.HoursSpent())
	assert.Equal(t, 0, Enrollment{}.HoursSpent())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleTeacher.Valid())
	assert.False(t, Role("guest").Valid())
	assert.True(t, CourseUnderReview.Valid())
	assert.False(t, Level("Expert").Valid())
}
