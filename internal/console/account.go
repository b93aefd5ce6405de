package console

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/s/lms/internal/identity"
	"github.com/s/lms/internal/models"
)

func (c *Console) login(args []string) error {
	if len(args) != 2 {
		return invalidf("usage: login <email> <password>")
	}
	user, err := c.ident.Login(args[0], args[1])
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Welcome back, %s (%s).\n", user.Name, user.Role)
	return nil
}

func (c *Console) logout([]string) error {
	if _, ok := c.ident.CurrentUser(); !ok {
		fmt.Fprintln(c.out, "Not signed in.")
		return nil
	}
	c.ident.Logout()
	fmt.Fprintln(c.out, "Signed out.")
	return nil
}

func (c *Console) signup(args []string) error {
	var in identity.SignupInput
	role := string(models.RoleStudent)
	_, rest, err := parseFlags("signup", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&in.Name, "name", "", "full name")
		f.StringVar(&in.Email, "email", "", "email address")
		f.StringVar(&in.Password, "password", "", "password")
		f.StringVar(&role, "role", role, "student, teacher or admin")
	})
	if err != nil {
		return errors.Trace(err)
	}
	if len(rest) > 0 {
		return invalidf("unexpected arguments %q", rest)
	}
	in.Role = models.Role(role)

	user, err := c.ident.Signup(in)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Account created. Signed in as %s (%s).\n", user.Name, user.Role)
	return nil
}

func (c *Console) whoami([]string) error {
	user, ok := c.ident.CurrentUser()
	if !ok {
		fmt.Fprintln(c.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s> %s, last login %s\n", user.Name, user.Email, user.Role, date(user.LastLogin))
	return nil
}
