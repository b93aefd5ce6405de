package console

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"

	"github.com/s/lms/internal/analytics"
	"github.com/s/lms/internal/models"
)

func (c *Console) dashboard([]string) error {
	user, _ := c.ident.CurrentUser()
	switch user.Role {
	case models.RoleStudent:
		c.studentDashboard(user)
	case models.RoleTeacher:
		c.teacherDashboard(user)
	case models.RoleAdmin:
		c.adminDashboard()
	}
	return nil
}

func (c *Console) studentDashboard(user models.User) {
	st := analytics.Student(user.ID, c.catalog.Snapshot())

	fmt.Fprintf(c.out, "Welcome back, %s!\n\n", user.Name)
	summary := uitable.New()
	summary.AddRow("Enrolled courses:", st.Enrolled)
	summary.AddRow("Average progress:", fmt.Sprintf("%d%%", st.AverageProgress))
	summary.AddRow("Completed courses:", st.Completed)
	summary.AddRow("Lessons completed:", st.CompletedLessons)
	summary.AddRow("Hours learned:", st.HoursSpent)
	fmt.Fprintln(c.out, summary)

	fmt.Fprintln(c.out, "\nAchievements:")
	for _, a := range st.Achievements {
		mark := " "
		if a.Unlocked {
			mark = "x"
		}
		fmt.Fprintf(c.out, "  [%s] %s: %s\n", mark, a.Title, a.Description)
	}

	if len(st.InProgress) > 0 {
		fmt.Fprintln(c.out, "\nContinue learning:")
		for _, e := range st.InProgress {
			course, _ := c.catalog.Course(e.CourseID)
			fmt.Fprintf(c.out, "  %s  %d%%  (%s)\n", course.Title, e.Progress, c.ago(e.LastAccessed))
		}
	}
}

func (c *Console) teacherDashboard(user models.User) {
	st := analytics.Teacher(user.ID, c.catalog.Snapshot(), c.ident.User)

	fmt.Fprintf(c.out, "Welcome back, %s!\n\n", user.Name)
	summary := uitable.New()
	summary.AddRow("Courses:", fmt.Sprintf("%d (%d published)", len(st.Courses), st.Published))
	summary.AddRow("Students:", humanize.Comma(int64(st.TotalStudents)))
	summary.AddRow("Revenue:", money(st.Revenue))
	summary.AddRow("Average rating:", fmt.Sprintf("%.1f", st.AverageRating))
	fmt.Fprintln(c.out, summary)

	if len(st.Courses) > 0 {
		table := uitable.New()
		table.MaxColWidth = 40
		table.AddRow("ID", "COURSE", "STATUS", "ENROLLED", "AVG PROGRESS", "REVENUE")
		for _, cs := range st.Courses {
			table.AddRow(cs.Course.ID, cs.Course.Title, cs.Course.Status, cs.Enrolled,
				fmt.Sprintf("%d%%", cs.AverageProgress), money(cs.Revenue))
		}
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, table)
	}

	if len(st.RecentStudents) > 0 {
		fmt.Fprintln(c.out, "\nRecent students:")
		for _, a := range st.RecentStudents {
			fmt.Fprintf(c.out, "  %s in %s  %d%%  (%s)\n", a.Student.Name, a.Course.Title, a.Enrollment.Progress, c.ago(a.Enrollment.LastAccessed))
		}
	}
}

func (c *Console) adminDashboard() {
	st := analytics.Platform(c.ident.Users(), c.catalog.Snapshot(), c.clock.Now())

	summary := uitable.New()
	summary.AddRow("Students:", st.Students)
	summary.AddRow("Teachers:", st.Teachers)
	summary.AddRow("Courses:", st.Courses)
	summary.AddRow("Enrollments:", st.Enrollments)
	summary.AddRow("Revenue:", money(st.Revenue))
	summary.AddRow("Average progress:", fmt.Sprintf("%d%%", st.AverageProgress))
	summary.AddRow("Active this week:", st.ActiveThisWeek)
	fmt.Fprintln(c.out, summary)

	if len(st.Categories) > 0 {
		fmt.Fprintln(c.out, "\nCategories:")
		for _, cat := range st.Categories {
			fmt.Fprintf(c.out, "  %s: %d (%.0f%%)\n", cat.Category, cat.Courses, cat.Percent)
		}
	}
	if len(st.TopCourses) > 0 {
		fmt.Fprintln(c.out, "\nTop courses:")
		for _, tc := range st.TopCourses {
			fmt.Fprintf(c.out, "  %s: %d enrollments\n", tc.Course.Title, tc.Enrollments)
		}
	}
	if len(st.RecentActivity) > 0 {
		fmt.Fprintln(c.out, "\nRecent activity:")
		for _, a := range st.RecentActivity {
			name := a.Student.Name
			if name == "" {
				name = "(deleted user)"
			}
			fmt.Fprintf(c.out, "  %s in %s  %d%%  (%s)\n", name, a.Course.Title, a.Enrollment.Progress, c.ago(a.Enrollment.LastAccessed))
		}
	}
}
