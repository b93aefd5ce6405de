package middleware

import (
	"slices"

	"github.com/juju/errors"

	"github.com/s/lms/internal/models"
)

const (
	ErrSignInRequired = errors.ConstError("sign in required")
	ErrForbidden      = errors.ConstError("access denied: insufficient permissions")
)

// Session reports the signed-in user.
type Session interface {
	CurrentUser() (models.User, bool)
}

// Action is a console command body.
type Action func(args []string) error

// RequiredRole wraps an action so it only runs for a signed-in user holding
// one of roles. With no roles any signed-in user passes.
func RequiredRole(s Session, roles ...models.Role) func(next Action) Action {
	return func(next Action) Action {
		return func(args []string) error {
			user, ok := s.CurrentUser()
			if !ok {
				return ErrSignInRequired
			}
			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				return ErrForbidden
			}
			return next(args)
		}
	}
}
