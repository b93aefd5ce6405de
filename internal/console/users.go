package console

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/s/lms/internal/analytics"
	"github.com/s/lms/internal/models"
)

func (c *Console) listUsers(args []string) error {
	var search, filter string
	_, _, err := parseFlags("users", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&search, "search", "", "match name or email")
		f.StringVar(&filter, "filter", analytics.Any, "role or status")
	})
	if err != nil {
		return errors.Trace(err)
	}

	users := analytics.FilterUsers(c.ident.Users(), search, filter)
	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users found.")
		return nil
	}
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ID", "NAME", "EMAIL", "ROLE", "STATUS", "JOINED", "LAST LOGIN")
	for _, u := range users {
		table.AddRow(u.ID, u.Name, u.Email, u.Role, u.Status, date(u.JoinDate), c.ago(u.LastLogin))
	}
	fmt.Fprintln(c.out, table)
	return nil
}

func (c *Console) createUser(args []string) error {
	var in models.NewUser
	role := string(models.RoleStudent)
	_, rest, err := parseFlags("user create", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&in.Name, "name", "", "full name")
		f.StringVar(&in.Email, "email", "", "email address")
		f.StringVar(&role, "role", role, "student, teacher or admin")
	})
	if err != nil {
		return errors.Trace(err)
	}
	if len(rest) > 0 {
		return invalidf("unexpected arguments %q", rest)
	}
	in.Role = models.Role(role)

	user, err := c.ident.CreateUser(in)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Created %s %s <%s> with id %s.\n", user.Role, user.Name, user.Email, user.ID)
	return nil
}

func (c *Console) updateUser(args []string) error {
	var name, email, role, status string
	set, rest, err := parseFlags("user update", args, func(f *gnuflag.FlagSet) {
		f.StringVar(&name, "name", "", "full name")
		f.StringVar(&email, "email", "", "email address")
		f.StringVar(&role, "role", "", "student, teacher or admin")
		f.StringVar(&status, "status", "", "active or suspended")
	})
	if err != nil {
		return errors.Trace(err)
	}
	id, err := oneArg("user id", rest)
	if err != nil {
		return errors.Trace(err)
	}
	if len(set) == 0 {
		return invalidf("nothing to update")
	}

	var upd models.UserUpdate
	if set["name"] {
		upd.Name = &name
	}
	if set["email"] {
		upd.Email = &email
	}
	if set["role"] {
		r := models.Role(role)
		upd.Role = &r
	}
	if set["status"] {
		s := models.UserStatus(status)
		upd.Status = &s
	}

	user, err := c.catalog.UpdateUser(id, upd)
	if err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Updated %s <%s>: %s, %s.\n", user.Name, user.Email, user.Role, user.Status)
	return nil
}

func (c *Console) deleteUser(args []string) error {
	id, err := oneArg("user id", args)
	if err != nil {
		return errors.Trace(err)
	}
	user, ok := c.ident.User(id)
	if !ok {
		return errors.NotFoundf("user %q", id)
	}
	if err := c.ident.DeleteUser(id); err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(c.out, "Deleted %s <%s>.\n", user.Name, user.Email)
	return nil
}
