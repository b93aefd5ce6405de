// Package fixtures supplies the initial users, courses and enrollments.
package fixtures

import (
	"bytes"
	_ "embed"
	"io"
	"os"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/s/lms/internal/models"
)

//go:embed default.yaml
var defaultYAML []byte

// Set is one complete seed for both stores.
type Set struct {
	Users       []models.User       `yaml:"users"`
	Courses     []models.Course     `yaml:"courses"`
	Enrollments []models.Enrollment `yaml:"enrollments"`
}

// Default returns the embedded demo set.
func Default() (Set, error) {
	set, err := Decode(bytes.NewReader(defaultYAML))
	return set, errors.Annotate(err, "embedded fixtures")
}

// Load reads a set from a YAML file.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return Set{}, errors.Annotatef(err, "opening fixtures %s", path)
	}
	defer f.Close()

	set, err := Decode(f)
	return set, errors.Annotatef(err, "fixtures %s", path)
}

// Decode parses and validates a YAML set.
func Decode(r io.Reader) (Set, error) {
	var set Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil && err != io.EOF {
		return Set{}, errors.Trace(err)
	}
	if err := set.Validate(); err != nil {
		return Set{}, errors.Trace(err)
	}
	return set, nil
}

// Validate checks the references between records: instructors are teachers
// and enrolled users are students. Uniqueness is left to the stores.
func (s Set) Validate() error {
	roles := make(map[string]models.Role, len(s.Users))
	for _, u := range s.Users {
		roles[u.ID] = u.Role
	}
	for _, c := range s.Courses {
		if role, ok := roles[c.InstructorID]; !ok || role != models.RoleTeacher {
			return errors.NotValidf("instructor %q of course %d", c.InstructorID, c.ID)
		}
	}
	for _, e := range s.Enrollments {
		if role, ok := roles[e.StudentID]; !ok || role != models.RoleStudent {
			return errors.NotValidf("student %q of enrollment %q", e.StudentID, e.ID)
		}
	}
	return nil
}
