// Package session tracks who is signed in to the portal and keeps the
// profile loader in step with every session change.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"healgenie-portal/internal/portal/backend"
	"healgenie-portal/internal/portal/eventloop"
	"healgenie-portal/internal/portal/notify"
	"healgenie-portal/internal/portal/profile"
	"healgenie-portal/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ValidationError reports rejected input before anything is sent.
type ValidationError struct {
	Fields  map[string]string
	Summary string
}

func (e *ValidationError) Error() string {
	return e.Summary
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	FirstName       string   `json:"first_name" validate:"required"`
	LastName        string   `json:"last_name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,max=20"`
	Password        string   `json:"password" validate:"required,min=6"`
	ConfirmPassword string   `json:"confirm_password" validate:"required,eqfield=Password"`
	UserType        string   `json:"user_type" validate:"required,oneof=doctor patient"`
	Designation     string   `json:"designation" validate:"required_if=UserType doctor"`
	Specialty       string   `json:"specialty" validate:"required_if=UserType doctor"`
	Experience      *int     `json:"experience" validate:"omitempty,gte=0"`
	DateOfBirth     string   `json:"date_of_birth" validate:"required_if=UserType patient,omitempty,datetime=2006-01-02"`
	Age             *int     `json:"age" validate:"omitempty,gte=0"`
	Allergies       []string `json:"allergies"`
	ProfileSymbolID *int     `json:"profile_symbol_id" validate:"omitempty,gt=0"`
}

// Store holds the current Identity. Identity changes only in response to
// auth events from the backend client, applied on the event loop.
type Store struct {
	client   backend.Client
	loop     *eventloop.Loop
	profiles *profile.Loader
	notifier notify.Notifier
	validate *validator.CustomValidator
	log      *logrus.Logger

	initOnce    sync.Once
	initErr     error
	unsubscribe func()

	mu       sync.RWMutex
	identity *backend.Session
	loading  bool
}

func NewStore(client backend.Client, loop *eventloop.Loop, profiles *profile.Loader, notifier notify.Notifier, validate *validator.CustomValidator, log *logrus.Logger) *Store {
	return &Store{
		client:   client,
		loop:     loop,
		profiles: profiles,
		notifier: notifier,
		validate: validate,
		log:      log,
		loading:  true,
	}
}

// Initialize restores a persisted session and starts following auth events.
// Only the first call has any effect.
func (s *Store) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.initialize(ctx)
	})
	return s.initErr
}

func (s *Store) initialize(ctx context.Context) error {
	restored, err := s.client.GetSession(ctx)
	if err != nil {
		s.log.Warnf("Failed to restore session: %+v", err)
		if errors.Is(err, backend.ErrUnauthorized) {
			notify.Warning(s.notifier, "Session expired", "Please sign in again")
		} else {
			notify.Error(s.notifier, "Failed to restore session", err)
		}
		restored = nil
	}

	// Queued ahead of any event the subscription below can deliver.
	if err := s.loop.Post(func() {
		s.apply(backend.EventInitialSession, restored)
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}); err != nil {
		return err
	}

	s.unsubscribe = s.client.OnAuthStateChange(s.onSessionChange)
	return nil
}

// onSessionChange runs on whatever goroutine the client emits from and
// must not call back into the client.
func (s *Store) onSessionChange(event backend.AuthEvent, session *backend.Session) {
	if err := s.loop.Post(func() { s.apply(event, session) }); err != nil {
		s.log.Debugf("Dropping %s event: %v", event, err)
	}
}

func (s *Store) apply(event backend.AuthEvent, session *backend.Session) {
	s.log.Debugf("Auth event %s", event)

	s.mu.Lock()
	s.identity = session
	s.mu.Unlock()

	if session == nil {
		s.profiles.Clear()
		return
	}

	userID := session.User.ID
	userType := session.UserType()
	if err := s.loop.Post(func() {
		// A later event may have replaced this session before this turn.
		if current := s.Identity(); current == nil || current.User.ID != userID {
			return
		}
		s.profiles.FetchProfileData(userID, userType)
	}); err != nil {
		s.log.Debugf("Dropping profile load for %s: %v", userID, err)
	}
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := s.check(creds); err != nil {
		notify.Error(s.notifier, "Login failed", err)
		return err
	}

	if _, err := s.client.SignInWithPassword(ctx, creds.Email, creds.Password); err != nil {
		s.log.Warnf("Failed to sign in %s: %+v", creds.Email, err)
		notify.Error(s.notifier, "Login failed", err)
		return err
	}

	notify.Success(s.notifier, "Success!", "You've been logged in successfully")
	return nil
}

func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := s.check(in); err != nil {
		notify.Error(s.notifier, "Registration failed", err)
		return err
	}

	req := &backend.SignUpRequest{
		Email:    in.Email,
		Password: in.Password,
		Data: backend.SignUpMetadata{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			UserType:  in.UserType,
		},
	}
	switch in.UserType {
	case "doctor":
		req.Data.Designation = in.Designation
		req.Data.Specialty = in.Specialty
		req.Data.Experience = in.Experience
	case "patient":
		req.Data.DateOfBirth = in.DateOfBirth
		req.Data.Age = in.Age
		req.Data.Allergies = in.Allergies
	}

	session, err := s.client.SignUp(ctx, req)
	if err != nil {
		s.log.Warnf("Failed to sign up %s: %+v", in.Email, err)
		notify.Error(s.notifier, "Registration failed", err)
		return err
	}

	if in.ProfileSymbolID != nil && session != nil && session.User.ID != uuid.Nil {
		s.attachSymbol(ctx, session.User.ID, *in.ProfileSymbolID)
	}

	notify.Success(s.notifier, "Account created!", "Your account has been created successfully")
	return nil
}

// attachSymbol is best effort; the account exists whether or not it works.
func (s *Store) attachSymbol(ctx context.Context, userID uuid.UUID, symbolID int) {
	update := &backend.ProfileUpdate{ProfileSymbolID: &symbolID}
	if _, err := s.client.UpdateProfile(ctx, userID, update); err != nil {
		s.log.Warnf("Failed to attach profile symbol %d to %s: %+v", symbolID, userID, err)
		notify.Warning(s.notifier, "Profile symbol not saved", err.Error())
		return
	}
	if err := s.profiles.Refresh(); err != nil {
		s.log.Debugf("Skipping profile refresh: %v", err)
	}
}

func (s *Store) Logout(ctx context.Context) error {
	if err := s.client.SignOut(ctx); err != nil {
		s.log.Warnf("Failed to sign out: %+v", err)
		notify.Error(s.notifier, "Logout failed", err)
		return err
	}
	notify.Success(s.notifier, "Signed out", "")
	return nil
}

// Identity returns a copy of the current session, or nil when signed out.
func (s *Store) Identity() *backend.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

// Loading is true until Initialize has applied the restored session.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Profile() profile.Snapshot {
	return s.profiles.Snapshot()
}

func (s *Store) RefreshProfile() error {
	return s.profiles.Refresh()
}

// Settle blocks until every auth event delivered so far has been applied and
// the profile load it started has finished. Not for use on the loop.
func (s *Store) Settle(ctx context.Context) error {
	// apply defers the load by one turn, so two flushes reach it.
	for i := 0; i < 2; i++ {
		if err := s.loop.Flush(ctx); err != nil {
			return err
		}
	}
	return s.profiles.Idle(ctx)
}

func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Store) check(v interface{}) error {
	if err := s.validate.Validate(v); err != nil {
		return &ValidationError{
			Fields:  s.validate.FormatValidationErrors(err),
			Summary: s.validate.Summary(err),
		}
	}
	return nil
}
