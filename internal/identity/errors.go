package identity

import "github.com/juju/errors"

const (
	// ErrAuthenticationFailed covers both an unknown email and a wrong
	// password so callers cannot tell which one it was.
	ErrAuthenticationFailed = errors.ConstError("invalid email or password")
	ErrAccountSuspended     = errors.ConstError("account is suspended")
	ErrDuplicateAccount     = errors.ConstError("email already registered")
	// ErrSelfDeletionForbidden is returned when the signed-in admin tries to
	// delete their own account.
	ErrSelfDeletionForbidden = errors.ConstError("cannot delete your own account")
	// ErrSelfDemotionForbidden is returned when the signed-in user tries to
	// change their own role.
	ErrSelfDemotionForbidden = errors.ConstError("cannot change your own role")
)
