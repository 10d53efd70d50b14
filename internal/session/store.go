// Package session holds the authenticated user and the session token lifecycle.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

const storeName = "session"

// LoginPath is where callers are sent when a session is required.
const LoginPath = "/login"

// Operation keys.
var (
	KeyLoginWithEmail  = lifecycle.Key{Store: storeName, Operation: "loginWithEmail"}
	KeyLoginWithGoogle = lifecycle.Key{Store: storeName, Operation: "loginWithGoogle"}
	KeyRegisterUser    = lifecycle.Key{Store: storeName, Operation: "registerUser"}
	KeyResumeSession   = lifecycle.Key{Store: storeName, Operation: "resumeSession"}
	KeyLogout          = lifecycle.Key{Store: storeName, Operation: "logout"}
	KeyClearErrors     = lifecycle.Key{Store: storeName, Operation: "clearErrors"}
)

// TokenStore persists the session token.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// State is a snapshot of the session store.
type State struct {
	User              *User
	Loading           bool
	LoginError        string
	RegistrationError string
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Store is the session store.
type Store struct {
	exec   *lifecycle.Executor
	api    remote.Requester
	tokens TokenStore
	logger *slog.Logger
	now    func() time.Time

	state State
	// epoch changes whenever the persisted token does (login, logout).
	epoch uint64
	// authInFlight counts unsettled login, register and resume calls.
	authInFlight int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a session store with no user.
func New(exec *lifecycle.Executor, api remote.Requester, tokens TokenStore, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		exec:   exec,
		api:    api,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	var st State
	s.exec.View(func() {
		st = s.state
		if s.state.User != nil {
			u := *s.state.User
			st.User = &u
		}
	})
	return st
}

// LoginWithEmail signs in with a password and persists the returned token.
func (s *Store) LoginWithEmail(ctx context.Context, in LoginInput) (User, error) {
	if err := validator.Validate(in); err != nil {
		return User{}, err
	}
	return s.login(ctx, KeyLoginWithEmail, "/auth/login", in)
}

// LoginWithGoogle exchanges a federated credential for a session.
func (s *Store) LoginWithGoogle(ctx context.Context, credential string) (User, error) {
	if credential == "" {
		return User{}, apperrors.Validation("google credential is required",
			map[string]string{"token": "is required"})
	}
	return s.login(ctx, KeyLoginWithGoogle, "/auth/google", googleRequest{Token: credential})
}

func (s *Store) login(ctx context.Context, key lifecycle.Key, path string, body any) (User, error) {
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[User]{
		Key:     key,
		Pending: s.begin,
		Call: func(ctx context.Context) (User, error) {
			resp, err := s.api.Request(ctx, http.MethodPost, path, body, nil)
			if err != nil {
				return User{}, err
			}
			p, err := remote.Decode[authPayload](resp)
			if err != nil {
				return User{}, err
			}
			if p.Token == "" {
				return User{}, apperrors.Transport(resp.Status, "login response carried no token")
			}
			if err := s.tokens.Save(ctx, p.Token); err != nil {
				return User{}, apperrors.Wrap(err, "persist session token")
			}
			return p.User, nil
		},
		Fulfilled: func(u User) {
			s.settle()
			s.state.User = &u
			s.state.LoginError = ""
			s.epoch++
		},
		Rejected: func(msg string) {
			s.settle()
			s.state.LoginError = msg
		},
		Discarded: s.settle,
	})
}

// RegisterUser creates an account. Navigating to the login view is left to the caller.
func (s *Store) RegisterUser(ctx context.Context, in RegisterInput) (User, error) {
	if err := validator.Validate(in); err != nil {
		return User{}, err
	}
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[User]{
		Key:     KeyRegisterUser,
		Pending: s.begin,
		Call: func(ctx context.Context) (User, error) {
			resp, err := s.api.Request(ctx, http.MethodPost, "/user", in, nil)
			if err != nil {
				return User{}, err
			}
			p, err := remote.Decode[registerPayload](resp)
			return p.Data, err
		},
		Fulfilled: func(User) {
			s.settle()
			s.state.RegistrationError = ""
		},
		Rejected: func(msg string) {
			s.settle()
			s.state.RegistrationError = msg
		},
		Discarded: s.settle,
	})
}

// ResumeSession restores the user from the persisted token. Without a token it
// returns SessionRequired and leaves the store untouched. A resolution that
// arrives after the token changed (logout, another login, or a write to the
// token store from elsewhere) is discarded.
func (s *Store) ResumeSession(ctx context.Context) (User, error) {
	var epoch uint64
	s.exec.View(func() { epoch = s.epoch })

	token, err := s.tokens.Load(ctx)
	if err != nil {
		return User{}, apperrors.Wrap(err, "load session token")
	}
	if token == "" {
		return User{}, apperrors.SessionRequired(LoginPath)
	}

	var replaced bool
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[User]{
		Key:     KeyResumeSession,
		Pending: s.begin,
		Call: func(ctx context.Context) (User, error) {
			if expired(token, s.now()) {
				expiredErr := apperrors.SessionRequired(LoginPath)
				expiredErr.Message = "session expired"
				return User{}, expiredErr
			}
			resp, err := s.api.Request(ctx, http.MethodGet, "/user/me", nil, nil)
			if err != nil {
				return User{}, err
			}
			p, err := remote.Decode[mePayload](resp)
			if err != nil {
				return User{}, err
			}
			persisted, err := s.tokens.Load(ctx)
			replaced = err != nil || persisted != token
			return p.User, nil
		},
		Fulfilled: func(u User) {
			s.settle()
			s.state.User = &u
		},
		Rejected: func(msg string) {
			s.settle()
			s.state.LoginError = msg
		},
		Current: func() bool {
			return s.epoch == epoch && !replaced
		},
		Discarded: s.settle,
	})
}

// Logout clears the persisted token and the session. Resets declared for
// session/logout run inside the same transition. It cannot fail. Loading stays
// set while an auth call is still in flight.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to clear session token", slog.String("error", err.Error()))
	}
	s.exec.Apply(ctx, KeyLogout, func() {
		s.state = State{Loading: s.authInFlight > 0}
		s.epoch++
	})
}

// ClearErrors clears both login and registration errors.
func (s *Store) ClearErrors(ctx context.Context) {
	s.exec.Apply(ctx, KeyClearErrors, func() {
		s.state.LoginError = ""
		s.state.RegistrationError = ""
	})
}

func (s *Store) begin() {
	s.authInFlight++
	s.state.Loading = true
}

func (s *Store) settle() {
	s.authInFlight--
	s.state.Loading = s.authInFlight > 0
}
