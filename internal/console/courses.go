package console

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/s/lms/internal/analytics"
	"github.com/s/lms/internal/middleware"
	"github.com/s/lms/internal/models"
)

func (c *Console) browse(args []string) error {
	var q analytics.Query
	var sortKey string
	_, _, err := parseFlags("courses", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&q.Search, "search", "", "match title, instructor or description")
		f.StringVar(&q.Category, "category", analytics.Any, "category")
		f.StringVar(&q.Level, "level", analytics.Any, "Beginner, Intermediate or Advanced")
		f.StringVar(&sortKey, "sort", string(analytics.SortPopular), "popular, rating, price or newest")
	})
	if err != nil {
		return errors.Trace(err)
	}
	q.Sort = analytics.SortKey(sortKey)

	courses := analytics.Browse(c.catalog.Courses(), q)
	if len(courses) == 0 {
		fmt.Fprintln(c.out, "No courses found.")
		return nil
	}
	c.printCourses(courses)
	return nil
}

func (c *Console) printCourses(courses []models.Course) {
	table := uitable.New()
	table.MaxColWidth = 40
	table.RightAlign(4)
	table.RightAlign(5)
	table.AddRow("ID", "TITLE", "INSTRUCTOR", "LEVEL", "PRICE", "STUDENTS", "RATING", "STATUS")
	for _, course := range courses {
		title := course.Title
		if course.Bestseller {
			title += " *"
		}
		table.AddRow(course.ID, title, course.Instructor, course.Level, money(course.Price),
			humanize.Comma(int64(course.Students)), fmt.Sprintf("%.1f", course.Rating), course.Status)
	}
	fmt.Fprintln(c.out, table)
}

func (c *Console) categories([]string) error {
	for _, cat := range analytics.Categories(c.catalog.Courses()) {
		fmt.Fprintln(c.out, cat)
	}
	return nil
}

// visible reports whether the current session may see course. Unpublished
// courses are only shown to their instructor and admins.
func (c *Console) visible(course models.Course) bool {
	if course.Status == models.CoursePublished {
		return true
	}
	user, ok := c.ident.CurrentUser()
	if !ok {
		return false
	}
	return user.Role == models.RoleAdmin || user.ID == course.InstructorID
}

func (c *Console) showCourse(args []string) error {
	id, err := courseID(args)
	if err != nil {
		return errors.Trace(err)
	}
	course, ok := c.catalog.Course(id)
	if !ok || !c.visible(course) {
		return errors.NotFoundf("course %d", id)
	}

	table := uitable.New()
	table.MaxColWidth = 70
	table.Wrap = true
	table.AddRow("Title:", course.Title)
	table.AddRow("Instructor:", course.Instructor)
	table.AddRow("Category:", course.Category)
	table.AddRow("Level:", course.Level)
	table.AddRow("Price:", price(course.Price, course.OriginalPrice, course.DiscountPercent()))
	table.AddRow("Duration:", fmt.Sprintf("%s, %d lessons", course.Duration, course.Lessons))
	table.AddRow("Rating:", fmt.Sprintf("%.1f (%s reviews)", course.Rating, humanize.Comma(int64(course.Reviews))))
	table.AddRow("Students:", humanize.Comma(int64(course.Students)))
	table.AddRow("Status:", course.Status)
	table.AddRow("Updated:", date(course.Updated))
	table.AddRow("", course.Description)
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) enroll(args []string) error {
	id, err := courseID(args)
	if err != nil {
		return errors.Trace(err)
	}
	e, err := c.catalog.EnrollInCourse(id)
	if err != nil {
		return errors.Trace(err)
	}
	course, _ := c.catalog.Course(id)
	fmt.Fprintf(c.out, "Enrolled in %q (enrollment %s).\n", course.Title, e.ID)
	return nil
}

func (c *Console) myCourses([]string) error {
	user, _ := c.ident.CurrentUser()
	courses := c.catalog.EnrolledCourses(user.ID)
	if len(courses) == 0 {
		fmt.Fprintln(c.out, "You are not enrolled in any courses yet.")
		return nil
	}

	byCourse := make(map[int64]models.Enrollment)
	for _, e := range c.catalog.Enrollments() {
		if e.StudentID == user.ID {
			byCourse[e.CourseID] = e
		}
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ENROLLMENT", "COURSE", "PROGRESS", "LESSONS", "TIME", "GRADE", "LAST ACCESSED")
	for _, course := range courses {
		e := byCourse[course.ID]
		table.AddRow(e.ID, course.Title, fmt.Sprintf("%d%%", e.Progress),
			fmt.Sprintf("%d/%d", e.CompletedLessons, course.Lessons), e.TimeSpent, e.Grade, c.ago(e.LastAccessed))
	}
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) progress(args []string) error {
	var (
		upd       models.ProgressUpdate
		pct, done int
		spent     string
		grade     string
	)
	set, rest, err := parseFlags("progress", args, func(f *gnuflag.FlagSet) {
		f.IntVar(&pct, "progress", 0, "percent complete")
		f.IntVar(&done, "lessons", 0, "completed lessons")
		f.StringVar(&spent, "time", "", `time spent, e.g. "12 hours"`)
		f.StringVar(&grade, "grade", "", "grade")
	})
	if err != nil {
		return errors.Trace(err)
	}
	id, err := oneArg("enrollment id", rest)
	if err != nil {
		return errors.Trace(err)
	}
	if set["progress"] {
		upd.Progress = &pct
	}
	if set["lessons"] {
		upd.CompletedLessons = &done
	}
	if set["time"] {
		upd.TimeSpent = &spent
	}
	if set["grade"] {
		upd.Grade = &grade
	}

	// Students may only touch their own enrollments; anything else is
	// reported as missing.
	user, _ := c.ident.CurrentUser()
	owned := false
	for _, e := range c.catalog.Enrollments() {
		if e.ID == id && e.StudentID == user.ID {
			owned = true
			break
		}
	}
	if !owned {
		return errors.NotFoundf("enrollment %q", id)
	}

	e, err := c.catalog.UpdateProgress(id, upd)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Progress saved: %d%%, %d lessons, %s.\n", e.Progress, e.CompletedLessons, e.TimeSpent)
	return nil
}

// manageable returns the course if the session user may administer it:
// admins manage every course, teachers only their own.
func (c *Console) manageable(id int64) (models.Course, error) {
	course, ok := c.catalog.Course(id)
	if !ok {
		return models.Course{}, errors.NotFoundf("course %d", id)
	}
	user, _ := c.ident.CurrentUser()
	if user.Role != models.RoleAdmin && course.InstructorID != user.ID {
		return models.Course{}, middleware.ErrForbidden
	}
	return course, nil
}

func (c *Console) students(args []string) error {
	id, err := courseID(args)
	if err != nil {
		return errors.Trace(err)
	}
	course, err := c.manageable(id)
	if err != nil {
		return errors.Trace(err)
	}

	enrolled := c.catalog.StudentsInCourse(id)
	if len(enrolled) == 0 {
		fmt.Fprintf(c.out, "No students enrolled in %q.\n", course.Title)
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("STUDENT", "EMAIL", "PROGRESS", "ENROLLED", "LAST ACCESSED")
	for _, se := range enrolled {
		table.AddRow(se.Student.Name, se.Student.Email, fmt.Sprintf("%d%%", se.Enrollment.Progress),
			date(se.Enrollment.EnrolledDate), c.ago(se.Enrollment.LastAccessed))
	}
	fmt.Fprintln(c.out, table)
	return nil
}

// courseFlags binds the editable course fields.
type courseFlags struct {
	title, category, level, duration string
	description, image, status       string
	instructorID                     string
	price, originalPrice             float64
	lessons                          int
	bestseller                       bool
}

func (cf *courseFlags) define(f *gnuflag.FlagSet) {
	f.StringVar(&cf.title, "title", "", "course title")
	f.StringVar(&cf.category, "category", "", "category")
	f.StringVar(&cf.level, "level", "", "Beginner, Intermediate or Advanced")
	f.Float64Var(&cf.price, "price", 0, "price")
	f.Float64Var(&cf.originalPrice, "original-price", 0, "price before discount")
	f.StringVar(&cf.duration, "duration", "", `total duration, e.g. "12 hours"`)
	f.IntVar(&cf.lessons, "lessons", 0, "number of lessons")
	f.StringVar(&cf.description, "description", "", "description")
	f.StringVar(&cf.image, "image", "", "image URL")
	f.BoolVar(&cf.bestseller, "bestseller", false, "bestseller badge")
	f.StringVar(&cf.instructorID, "instructor-id", "", "instructor user id (admin only)")
	f.StringVar(&cf.status, "status", "", "published, under_review or rejected (admin only)")
}

// instructor resolves who a new or reassigned course belongs to. Teachers
// always teach their own courses.
func (c *Console) instructor(requested string) (models.User, error) {
	user, _ := c.ident.CurrentUser()
	if user.Role != models.RoleAdmin {
		if requested != "" && requested != user.ID {
			return models.User{}, middleware.ErrForbidden
		}
		return user, nil
	}
	if requested == "" {
		return models.User{}, invalidf("--instructor-id is required")
	}
	teacher, ok := c.ident.User(requested)
	if !ok {
		return models.User{}, errors.NotFoundf("user %q", requested)
	}
	if teacher.Role != models.RoleTeacher {
		return models.User{}, invalidf("%s is not a teacher", teacher.Name)
	}
	return teacher, nil
}

func (c *Console) createCourse(args []string) error {
	var cf courseFlags
	set, rest, err := parseFlags("course create", args, cf.define)
	if err != nil {
		return errors.Trace(err)
	}
	if len(rest) > 0 {
		return invalidf("unexpected arguments %q", rest)
	}
	if set["status"] {
		return invalidf("new courses always start under review")
	}
	teacher, err := c.instructor(cf.instructorID)
	if err != nil {
		return errors.Trace(err)
	}
	if !set["original-price"] {
		cf.originalPrice = cf.price
	}

	course, err := c.catalog.CreateCourse(models.NewCourse{
		Title:         cf.title,
		Instructor:    teacher.Name,
		InstructorID:  teacher.ID,
		Category:      cf.category,
		Level:         models.Level(cf.level),
		Price:         cf.price,
		OriginalPrice: cf.originalPrice,
		Duration:      cf.duration,
		Lessons:       cf.lessons,
		Description:   cf.description,
		Image:         cf.image,
		Bestseller:    cf.bestseller,
	})
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Created course %d %q, awaiting review.\n", course.ID, course.Title)
	return nil
}

func (c *Console) updateCourse(args []string) error {
	var cf courseFlags
	set, rest, err := parseFlags("course update", args, cf.define)
	if err != nil {
		return errors.Trace(err)
	}
	id, err := courseID(rest)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := c.manageable(id); err != nil {
		return errors.Trace(err)
	}
	if len(set) == 0 {
		return invalidf("nothing to update")
	}

	var upd models.CourseUpdate
	if set["title"] {
		upd.Title = &cf.title
	}
	if set["category"] {
		upd.Category = &cf.category
	}
	if set["level"] {
		level := models.Level(cf.level)
		upd.Level = &level
	}
	if set["price"] {
		upd.Price = &cf.price
	}
	if set["original-price"] {
		upd.OriginalPrice = &cf.originalPrice
	}
	if set["duration"] {
		upd.Duration = &cf.duration
	}
	if set["lessons"] {
		upd.Lessons = &cf.lessons
	}
	if set["description"] {
		upd.Description = &cf.description
	}
	if set["image"] {
		upd.Image = &cf.image
	}
	if set["bestseller"] {
		upd.Bestseller = &cf.bestseller
	}
	if set["instructor-id"] {
		teacher, err := c.instructor(cf.instructorID)
		if err != nil {
			return errors.Trace(err)
		}
		upd.Instructor = &teacher.Name
		upd.InstructorID = &teacher.ID
	}
	if set["status"] {
		if user, _ := c.ident.CurrentUser(); user.Role != models.RoleAdmin {
			return middleware.ErrForbidden
		}
		status := models.CourseStatus(cf.status)
		upd.Status = &status
	}

	course, err := c.catalog.UpdateCourse(id, upd)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Updated course %d %q.\n", course.ID, course.Title)
	return nil
}

func (c *Console) deleteCourse(args []string) error {
	id, err := courseID(args)
	if err != nil {
		return errors.Trace(err)
	}
	course, err := c.manageable(id)
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.catalog.DeleteCourse(id); err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Deleted course %d %q.\n", id, course.Title)
	return nil
}

func (c *Console) listCourses(args []string) error {
	var search, filter string
	_, _, err := parseFlags("course list", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&search, "search", "", "match title or instructor")
		f.StringVar(&filter, "filter", analytics.Any, "category or status")
	})
	if err != nil {
		return errors.Trace(err)
	}
	courses := analytics.FilterCourses(c.catalog.Courses(), search, strings.TrimSpace(filter))
	if len(courses) == 0 {
		fmt.Fprintln(c.out, "No courses found.")
		return nil
	}
	c.printCourses(courses)
	return nil
}
