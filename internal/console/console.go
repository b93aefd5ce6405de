// Package console is a line-oriented shell over the identity and catalog
// stores. Every command goes through the store operations; the console holds
// no state of its own beyond the command table.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"

	"github.com/s/lms/internal/catalog"
	"github.com/s/lms/internal/identity"
	"github.com/s/lms/internal/middleware"
	"github.com/s/lms/internal/models"
)

// Identity is the identity store surface the console drives.
type Identity interface {
	Login(email, password string) (models.User, error)
	Logout()
	Signup(in identity.SignupInput) (models.User, error)
	CreateUser(in models.NewUser) (models.User, error)
	DeleteUser(id string) error
	CurrentUser() (models.User, bool)
	User(id string) (models.User, bool)
	Users() []models.User
}

// Catalog is the catalog store surface the console drives.
type Catalog interface {
	Courses() []models.Course
	Course(id int64) (models.Course, bool)
	Enrollments() []models.Enrollment
	Snapshot() catalog.Snapshot
	CreateCourse(in models.NewCourse) (models.Course, error)
	UpdateCourse(id int64, upd models.CourseUpdate) (models.Course, error)
	DeleteCourse(id int64) error
	UpdateUser(id string, upd models.UserUpdate) (models.User, error)
	EnrollInCourse(courseID int64) (models.Enrollment, error)
	EnrolledCourses(studentID string) []models.Course
	StudentsInCourse(courseID int64) []catalog.StudentEnrollment
	UpdateProgress(enrollmentID string, upd models.ProgressUpdate) (models.Enrollment, error)
}

type Config struct {
	Clock  clock.Clock
	Logger *slog.Logger
	Out    io.Writer
	// Prompt is written before each line is read. Empty disables it.
	Prompt string
}

type command struct {
	name  string
	usage string
	help  string
	run   middleware.Action
}

// Console dispatches command lines to store operations.
type Console struct {
	ident   Identity
	catalog Catalog
	clock   clock.Clock
	logger  *slog.Logger
	out     io.Writer
	prompt  string

	commands map[string]command
}

func New(cfg Config, ident Identity, cat Catalog) *Console {
	c := &Console{
		ident:    ident,
		catalog:  cat,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		out:      cfg.Out,
		prompt:   cfg.Prompt,
		commands: make(map[string]command),
	}
	if c.clock == nil {
		c.clock = clock.WallClock
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.out == nil {
		c.out = io.Discard
	}
	c.registerCommands()
	return c
}

func (c *Console) registerCommands() {
	signedIn := middleware.RequiredRole(c.ident)
	student := middleware.RequiredRole(c.ident, models.RoleStudent)
	staff := middleware.RequiredRole(c.ident, models.RoleTeacher, models.RoleAdmin)
	admin := middleware.RequiredRole(c.ident, models.RoleAdmin)

	c.register("help", "help", "list commands", c.help)
	c.register("login", "login <email> <password>", "sign in", c.login)
	c.register("logout", "logout", "sign out", c.logout)
	c.register("signup", "signup --name N --email E --password P [--role student|teacher|admin]", "create an account and sign in", c.signup)
	c.register("whoami", "whoami", "show the signed-in user", c.whoami)

	c.register("courses", "courses [--search S] [--category C] [--level L] [--sort popular|rating|price|newest]", "browse published courses", c.browse)
	c.register("categories", "categories", "list course categories", c.categories)
	c.register("course show", "course show <id>", "show course details", c.showCourse)
	c.register("enroll", "enroll <course-id>", "enroll in a course", c.enroll)
	c.register("my-courses", "my-courses", "list your enrollments", student(c.myCourses))
	c.register("progress", "progress <enrollment-id> [--progress N] [--lessons N] [--time T] [--grade G]", "record learning progress", student(c.progress))

	c.register("students", "students <course-id>", "list students in a course", staff(c.students))
	c.register("course create", "course create --title T --category C --level L --price P [flags]", "create a course for review", staff(c.createCourse))
	c.register("course update", "course update <id> [flags]", "change course fields", staff(c.updateCourse))
	c.register("course delete", "course delete <id>", "delete a course and its enrollments", staff(c.deleteCourse))
	c.register("course list", "course list [--search S] [--filter category|status]", "list every course", admin(c.listCourses))

	c.register("users", "users [--search S] [--filter role|status]", "list users", admin(c.listUsers))
	c.register("user create", "user create --name N --email E [--role R]", "create a user", admin(c.createUser))
	c.register("user update", "user update <id> [--name N] [--email E] [--role R] [--status S]", "change user fields", admin(c.updateUser))
	c.register("user delete", "user delete <id>", "delete a user and their enrollments", admin(c.deleteUser))

	c.register("dashboard", "dashboard", "show your dashboard", signedIn(c.dashboard))
}

func (c *Console) register(name, usage, help string, run middleware.Action) {
	c.commands[name] = command{name: name, usage: usage, help: help, run: run}
}

// Run reads commands from in until EOF, "quit" or "exit", or until ctx is
// done. Command failures are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.writePrompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "quit", "exit":
			return nil
		case "":
		default:
			if err := c.Exec(line); err != nil {
				fmt.Fprintf(c.out, "error: %s\n", describe(err))
			}
		}
		c.writePrompt()
	}
	return errors.Trace(scanner.Err())
}

// Exec runs a single command line.
func (c *Console) Exec(line string) error {
	args, err := shellquote.Split(line)
	if err != nil {
		return errors.NewNotValid(err, "cannot parse command line")
	}
	if len(args) == 0 {
		return nil
	}
	cmd, rest, ok := c.lookup(args)
	if !ok {
		return errors.NotFoundf("command %q (try help)", args[0])
	}
	c.logger.Debug("running command", "command", cmd.name)
	if err := cmd.run(rest); err != nil {
		c.logger.Debug("command failed", "command", cmd.name, "error", err)
		return err
	}
	return nil
}

func (c *Console) lookup(args []string) (command, []string, bool) {
	if len(args) > 1 {
		if cmd, ok := c.commands[args[0]+" "+args[1]]; ok {
			return cmd, args[2:], true
		}
	}
	cmd, ok := c.commands[args[0]]
	return cmd, args[1:], ok
}

func (c *Console) writePrompt() {
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
}

func (c *Console) help([]string) error {
	table := uitable.New()
	table.MaxColWidth = 110
	for _, name := range slices.Sorted(maps.Keys(c.commands)) {
		cmd := c.commands[name]
		table.AddRow(cmd.usage, cmd.help)
	}
	fmt.Fprintln(c.out, table)
	return nil
}

// describe turns an operation error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, identity.ErrAuthenticationFailed):
		return "invalid email or password"
	case errors.Is(err, middleware.ErrSignInRequired):
		return "please log in first"
	case errors.Is(err, middleware.ErrForbidden):
		return "you do not have permission to do that"
	}
	return err.Error()
}
