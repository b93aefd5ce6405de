// Package identity owns the registered users and the current session.
package identity

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/s/lms/internal/models"
)

// Config carries the collaborators of a Store.
type Config struct {
	Clock  clock.Clock
	Logger *slog.Logger

	// DemoPassword is the one password every account accepts. It is a demo
	// gate, not a credential check.
	DemoPassword      string
	MinPasswordLength int
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DemoPassword == "" {
		c.DemoPassword = "password"
	}
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = 6
	}
	return c
}

// SignupInput is what a visitor submits on the signup form.
type SignupInput struct {
	Name     string      `validate:"required"`
	Email    string      `validate:"required,email"`
	Password string      `validate:"required"`
	Role     models.Role `validate:"required,oneof=student teacher admin"`
}

// Store is the identity store. The session is either anonymous (no current
// user) or authenticated as exactly one member of the user set.
type Store struct {
	cfg Config

	mu        sync.RWMutex
	users     []models.User
	currentID string

	hooksMu   sync.Mutex
	onDeleted []func(models.User)
}

// NewStore builds a store seeded with users. Seed users must have unique ids
// and unique emails (case-insensitive).
func NewStore(cfg Config, seed []models.User) (*Store, error) {
	s := &Store{cfg: cfg.withDefaults()}
	ids := make(map[string]bool, len(seed))
	emails := make(map[string]bool, len(seed))
	for _, u := range seed {
		if u.ID == "" {
			return nil, errors.NotValidf("seed user %q without id", u.Email)
		}
		if ids[u.ID] {
			return nil, errors.AlreadyExistsf("seed user id %q", u.ID)
		}
		key := normalizeEmail(u.Email)
		if emails[key] {
			return nil, errors.AlreadyExistsf("seed user email %q", u.Email)
		}
		if !u.Role.Valid() {
			return nil, errors.NotValidf("role %q of seed user %q", u.Role, u.ID)
		}
		if u.Status == "" {
			u.Status = models.StatusActive
		}
		ids[u.ID] = true
		emails[key] = true
		s.users = append(s.users, u)
	}
	return s, nil
}

// Login signs in the user with the given email. Only an exact email match is
// accepted.
func (s *Store) Login(email, password string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByEmail(email, false)
	if i < 0 || password != s.cfg.DemoPassword {
		s.cfg.Logger.Info("login failed", "email", email)
		return models.User{}, ErrAuthenticationFailed
	}
	if s.users[i].Status == models.StatusSuspended {
		s.cfg.Logger.Info("login refused for suspended account", "user_id", s.users[i].ID)
		return models.User{}, ErrAccountSuspended
	}
	s.users[i].LastLogin = s.today()
	s.currentID = s.users[i].ID
	s.cfg.Logger.Info("login", "user_id", s.currentID, "role", s.users[i].Role)
	return s.users[i], nil
}

// Logout clears the session. It is a no-op when nobody is signed in.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentID != "" {
		s.cfg.Logger.Info("logout", "user_id", s.currentID)
	}
	s.currentID = ""
}

// Signup registers a new account and signs it in. The password is checked
// for length only and never stored.
func (s *Store) Signup(in SignupInput) (models.User, error) {
	if err := models.Validate(in); err != nil {
		return models.User{}, errors.Trace(err)
	}
	if len(in.Password) < s.cfg.MinPasswordLength {
		return models.User{}, errors.WithType(errors.Errorf("password must be at least %d characters", s.cfg.MinPasswordLength), errors.NotValid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.insertLocked(in.Name, in.Email, in.Role)
	if err != nil {
		return models.User{}, errors.Trace(err)
	}
	s.currentID = u.ID
	s.cfg.Logger.Info("signup", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// CreateUser adds an account on behalf of an administrator. The session is
// not affected.
func (s *Store) CreateUser(in models.NewUser) (models.User, error) {
	if err := models.Validate(in); err != nil {
		return models.User{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.insertLocked(in.Name, in.Email, in.Role)
	if err != nil {
		return models.User{}, errors.Trace(err)
	}
	s.cfg.Logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Store) insertLocked(name, email string, role models.Role) (models.User, error) {
	if s.indexByEmail(email, true) >= 0 {
		return models.User{}, ErrDuplicateAccount
	}
	now := s.today()
	u := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		Status:    models.StatusActive,
		JoinDate:  now,
		LastLogin: now,
	}
	s.users = append(s.users, u)
	return u, nil
}

// UpdateUser merges upd into the user with the given id. The session sees
// the change immediately because it references the stored record. The
// signed-in user cannot change their own role.
func (s *Store) UpdateUser(id string, upd models.UserUpdate) (models.User, error) {
	if err := models.Validate(upd); err != nil {
		return models.User{}, errors.Trace(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return models.User{}, errors.NotFoundf("user %q", id)
	}
	if id == s.currentID && upd.Role != nil && *upd.Role != s.users[i].Role {
		return models.User{}, ErrSelfDemotionForbidden
	}
	if upd.Email != nil {
		if j := s.indexByEmail(*upd.Email, true); j >= 0 && j != i {
			return models.User{}, ErrDuplicateAccount
		}
	}
	upd.Apply(&s.users[i])
	s.cfg.Logger.Info("user updated", "user_id", id)
	return s.users[i], nil
}

// DeleteUser removes a user. The signed-in admin cannot delete their own
// account; any other self-deletion ends the session. Deletion hooks run after
// the store lock is released.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	i := s.indexByID(id)
	if i < 0 {
		s.mu.Unlock()
		return errors.NotFoundf("user %q", id)
	}
	removed := s.users[i]
	if id == s.currentID && removed.Role == models.RoleAdmin {
		s.mu.Unlock()
		return ErrSelfDeletionForbidden
	}
	s.users = append(s.users[:i:i], s.users[i+1:]...)
	if id == s.currentID {
		s.currentID = ""
	}
	s.mu.Unlock()

	s.cfg.Logger.Info("user deleted", "user_id", id, "role", removed.Role)

	s.hooksMu.Lock()
	hooks := append([]func(models.User){}, s.onDeleted...)
	s.hooksMu.Unlock()
	for _, fn := range hooks {
		fn(removed)
	}
	return nil
}

// OnUserDeleted registers fn to run after every successful DeleteUser.
func (s *Store) OnUserDeleted(fn func(models.User)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.onDeleted = append(s.onDeleted, fn)
}

// CurrentUser returns the signed-in user, if any.
func (s *Store) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentID == "" {
		return models.User{}, false
	}
	i := s.indexByID(s.currentID)
	if i < 0 {
		return models.User{}, false
	}
	return s.users[i], true
}

// User looks a user up by id.
func (s *Store) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexByID(id)
	if i < 0 {
		return models.User{}, false
	}
	return s.users[i], true
}

// Users returns a copy of the user set in insertion order.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

func (s *Store) indexByID(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexByEmail(email string, foldCase bool) int {
	for i := range s.users {
		if foldCase && normalizeEmail(s.users[i].Email) == normalizeEmail(email) {
			return i
		}
		if !foldCase && s.users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *Store) today() time.Time {
	y, m, d := s.cfg.Clock.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
