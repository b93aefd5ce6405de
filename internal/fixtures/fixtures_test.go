package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s/lms/internal/models"
)

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)
	assert.Len(t, set.Users, 6)
	assert.Len(t, set.Courses, 5)
	assert.Len(t, set.Enrollments, 5)

	emails := map[string]models.Role{}
	for _, u := range set.Users {
		emails[u.Email] = u.Role
	}
	assert.Equal(t, models.RoleStudent, emails["student@test.com"])
	assert.Equal(t, models.RoleTeacher, emails["teacher@test.com"])
	assert.Equal(t, models.RoleAdmin, emails["admin@test.com"])

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), set.Users[0].JoinDate)
	assert.Equal(t, models.CoursePublished, set.Courses[0].Status)
	assert.Equal(t, "A", set.Enrollments[1].Grade)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("users:\n  - id: \"1\"\n    nickname: x\n"))
	assert.Error(t, err)
}

func TestDecodeRejectsBrokenReferences(t *testing.T) {
	doc := `
users:
  - id: "1"
    email: a@x.com
    role: student
courses:
  - id: 1
    title: X
    instructorId: "1"
`
	_, err := Decode(strings.NewReader(doc))
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestDecodeEmpty(t *testing.T) {
	set, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, set.Users)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Courses, 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
