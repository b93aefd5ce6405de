package console

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
)

const dateLayout = "2006-01-02"

// parseFlags parses args against the flags define registers and returns the
// set of flag names given explicitly plus the positional arguments.
func parseFlags(name string, args []string, define func(f *gnuflag.FlagSet)) (map[string]bool, []string, error) {
	f := gnuflag.NewFlagSet(name, gnuflag.ContinueOnError)
	f.SetOutput(io.Discard)
	define(f)
	if err := f.Parse(true, args); err != nil {
		return nil, nil, errors.NewNotValid(err, name)
	}
	set := make(map[string]bool)
	f.Visit(func(fl *gnuflag.Flag) { set[fl.Name] = true })
	return set, f.Args(), nil
}

// invalidf builds a NotValid error carrying just the formatted message.
func invalidf(format string, args ...any) error {
	return errors.WithType(errors.Errorf(format, args...), errors.NotValid)
}

func courseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, invalidf("expected one course id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errors.NotValidf("course id %q", args[0])
	}
	return id, nil
}

func oneArg(what string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", invalidf("expected one %s", what)
	}
	return args[0], nil
}

func money(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func price(v, original float64, discount int) string {
	if discount <= 0 {
		return money(v)
	}
	return fmt.Sprintf("%s (was %s, -%d%%)", money(v), money(original), discount)
}

func date(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(dateLayout)
}

func (c *Console) ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, c.clock.Now(), "ago", "from now")
}
