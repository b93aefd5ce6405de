package models

import (
	"math"
	"time"
)

// Level is the difficulty of a course.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// CourseStatus is the review state of a course. Only published courses are
// shown in the public catalog.
type CourseStatus string

const (
	CoursePublished   CourseStatus = "published"
	CourseUnderReview CourseStatus = "under_review"
	CourseRejected    CourseStatus = "rejected"
)

func (s CourseStatus) Valid() bool {
	switch s {
	case CoursePublished, CourseUnderReview, CourseRejected:
		return true
	}
	return false
}

// Course (catalog record)
//
// Students is denormalized: it always equals the number of enrollments that
// reference the course and is maintained by the catalog store only.
type Course struct {
	ID            int64        `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	Instructor    string       `json:"instructor" yaml:"instructor"`
	InstructorID  string       `json:"instructorId" yaml:"instructorId"`
	Category      string       `json:"category" yaml:"category"`
	Level         Level        `json:"level" yaml:"level"`
	Price         float64      `json:"price" yaml:"price"`
	OriginalPrice float64      `json:"originalPrice" yaml:"originalPrice"`
	Duration      string       `json:"duration" yaml:"duration"`
	Lessons       int          `json:"lessons" yaml:"lessons"`
	Description   string       `json:"description" yaml:"description"`
	Image         string       `json:"image" yaml:"image"`
	Rating        float64      `json:"rating" yaml:"rating"`
	Reviews       int          `json:"reviews" yaml:"reviews"`
	Students      int          `json:"students" yaml:"students"`
	Bestseller    bool         `json:"bestseller" yaml:"bestseller"`
	Status        CourseStatus `json:"status" yaml:"status"`
	Updated       time.Time    `json:"updated" yaml:"updated"`
}

// DiscountPercent is the rounded saving of Price against OriginalPrice.
func (c Course) DiscountPercent() int {
	if c.OriginalPrice <= 0 {
		return 0
	}
	return int(math.Round((c.OriginalPrice - c.Price) / c.OriginalPrice * 100))
}

// NewCourse holds the caller-supplied fields of a course. Counters, rating,
// status and the update date are always assigned by the store.
type NewCourse struct {
	Title         string  `validate:"required"`
	Instructor    string  `validate:"required"`
	InstructorID  string  `validate:"required"`
	Category      string  `validate:"required"`
	Level         Level   `validate:"required,oneof=Beginner Intermediate Advanced"`
	Price         float64 `validate:"gte=0"`
	OriginalPrice float64 `validate:"gte=0"`
	Duration      string
	Lessons       int `validate:"gte=0"`
	Description   string
	Image         string `validate:"omitempty,url"`
	Bestseller    bool
}

// CourseUpdate is the allowlist of course fields callers may change.
// Students, Rating and Reviews are not updatable.
type CourseUpdate struct {
	Title         *string  `validate:"omitempty,min=1"`
	Instructor    *string  `validate:"omitempty,min=1"`
	InstructorID  *string  `validate:"omitempty,min=1"`
	Category      *string  `validate:"omitempty,min=1"`
	Level         *Level   `validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price         *float64 `validate:"omitempty,gte=0"`
	OriginalPrice *float64 `validate:"omitempty,gte=0"`
	Duration      *string
	Lessons       *int `validate:"omitempty,gte=0"`
	Description   *string
	Image         *string `validate:"omitempty,url"`
	Bestseller    *bool
	Status        *CourseStatus `validate:"omitempty,oneof=published under_review rejected"`
}

// Apply merges the non-nil fields of upd into c.
func (upd CourseUpdate) Apply(c *Course) {
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.Instructor != nil {
		c.Instructor = *upd.Instructor
	}
	if upd.InstructorID != nil {
		c.InstructorID = *upd.InstructorID
	}
	if upd.Category != nil {
		c.Category = *upd.Category
	}
	if upd.Level != nil {
		c.Level = *upd.Level
	}
	if upd.Price != nil {
		c.Price = *upd.Price
	}
	if upd.OriginalPrice != nil {
		c.OriginalPrice = *upd.OriginalPrice
	}
	if upd.Duration != nil {
		c.Duration = *upd.Duration
	}
	if upd.Lessons != nil {
		c.Lessons = *upd.Lessons
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.Image != nil {
		c.Image = *upd.Image
	}
	if upd.Bestseller != nil {
		c.Bestseller = *upd.Bestseller
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
}
