// Package analytics derives read-only views (catalog browsing, admin
// filters and dashboards) from store snapshots. Nothing here mutates state.
package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/juju/collections/set"

	"github.com/s/lms/internal/models"
)

// SortKey orders the public catalog.
type SortKey string

const (
	SortPopular SortKey = "popular"
	SortRating  SortKey = "rating"
	SortPrice   SortKey = "price"
	SortNewest  SortKey = "newest"
)

// Any matches every category, level or admin filter value.
const Any = "all"

// Query is a catalog search. Empty fields match everything.
type Query struct {
	Search   string
	Category string
	Level    string
	Sort     SortKey
}

// Browse returns the published courses matching q in q.Sort order.
// Ties keep catalog order.
func Browse(courses []models.Course, q Query) []models.Course {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if c.Status != models.CoursePublished {
			continue
		}
		if !matchesAny(q.Category, c.Category) || !matchesAny(q.Level, string(c.Level)) {
			continue
		}
		if !contains(search, c.Title, c.Instructor, c.Description) {
			continue
		}
		out = append(out, c)
	}

	slices.SortStableFunc(out, courseOrder(q.Sort))
	return out
}

func courseOrder(key SortKey) func(a, b models.Course) int {
	switch key {
	case SortRating:
		return func(a, b models.Course) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortPrice:
		return func(a, b models.Course) int { return cmp.Compare(a.Price, b.Price) }
	case SortNewest:
		return func(a, b models.Course) int { return b.Updated.Compare(a.Updated) }
	default:
		return func(a, b models.Course) int { return cmp.Compare(b.Students, a.Students) }
	}
}

// Categories lists the distinct course categories, sorted.
func Categories(courses []models.Course) []string {
	cats := set.NewStrings()
	for _, c := range courses {
		cats.Add(c.Category)
	}
	return cats.SortedValues()
}

// FilterUsers matches search against name and email; filter is a role,
// a status or Any.
func FilterUsers(users []models.User, search, filter string) []models.User {
	search = strings.ToLower(strings.TrimSpace(search))

	var out []models.User
	for _, u := range users {
		if !contains(search, u.Name, u.Email) {
			continue
		}
		if !matchesAny(filter, string(u.Role)) && !matchesAny(filter, string(u.Status)) {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterCourses matches search against title and instructor; filter is a
// category, a course status or Any. Unpublished courses are included.
func FilterCourses(courses []models.Course, search, filter string) []models.Course {
	search = strings.ToLower(strings.TrimSpace(search))

	var out []models.Course
	for _, c := range courses {
		if !contains(search, c.Title, c.Instructor) {
			continue
		}
		if !matchesAny(filter, c.Category) && !matchesAny(filter, string(c.Status)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesAny(want, got string) bool {
	return want == "" || want == Any || want == got
}

// contains reports whether lowered search occurs in any of fields.
func contains(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
