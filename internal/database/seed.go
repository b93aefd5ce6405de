package database

import (
	"errors"

	jujuerrors "github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/s/lms/internal/fixtures"
)

// Seed writes a fixture set into the database, replacing rows with the same
// keys. It prepares a fixture database; the stores never write back.
func Seed(db *gorm.DB, set fixtures.Set) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		for i, u := range set.Users {
			if err := saveUser(tx, userRow(i, u)); err != nil {
				return err
			}
		}
		for i, c := range set.Courses {
			row := courseRow(i, c)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return jujuerrors.Annotatef(err, "course %d", c.ID)
			}
		}
		for i, e := range set.Enrollments {
			row := enrollmentRow(i, e)
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return jujuerrors.Annotatef(err, "enrollment %q", e.ID)
			}
		}
		return nil
	})
	return jujuerrors.Annotate(err, "seeding fixtures")
}

// saveUser updates the row with the same id or creates it.
func saveUser(tx *gorm.DB, row UserRow) error {
	var existing UserRow
	result := tx.Where("id = ?", row.ID).First(&existing)

	switch {
	case result.Error == nil:
		return jujuerrors.Annotatef(tx.Model(&existing).Select("*").Updates(row).Error, "user %q", row.ID)
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		return jujuerrors.Annotatef(tx.Create(&row).Error, "user %q", row.ID)
	default:
		return jujuerrors.Annotatef(result.Error, "user %q", row.ID)
	}
}

// LoadFixtures reads a fixture set back in seed order and validates it.
func LoadFixtures(db *gorm.DB) (fixtures.Set, error) {
	var (
		users       []UserRow
		courses     []CourseRow
		enrollments []EnrollmentRow
	)
	if err := db.Order("position").Find(&users).Error; err != nil {
		return fixtures.Set{}, jujuerrors.Annotate(err, "loading users")
	}
	if err := db.Order("position").Find(&courses).Error; err != nil {
		return fixtures.Set{}, jujuerrors.Annotate(err, "loading courses")
	}
	if err := db.Order("position").Find(&enrollments).Error; err != nil {
		return fixtures.Set{}, jujuerrors.Annotate(err, "loading enrollments")
	}

	var set fixtures.Set
	for _, r := range users {
		set.Users = append(set.Users, r.model())
	}
	for _, r := range courses {
		set.Courses = append(set.Courses, r.model())
	}
	for _, r := range enrollments {
		set.Enrollments = append(set.Enrollments, r.model())
	}
	if err := set.Validate(); err != nil {
		return fixtures.Set{}, jujuerrors.Trace(err)
	}
	return set, nil
}
