package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/api"
	"github.com/dmitrijs2005/campusshop/internal/client/credentials"
	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/dmitrijs2005/campusshop/internal/common"
	"github.com/dmitrijs2005/campusshop/internal/logging"
)

const (
	msgLoginFailed         = "Login failed. Please check your credentials."
	msgRegistrationFailed  = "Registration failed"
	msgProfileUpdateFailed = "Failed to update profile"

	// MsgRegisteredPleaseLogin is reported when the account was created but
	// the automatic login did not succeed.
	MsgRegisteredPleaseLogin = "Registration successful. Please login."
)

// API is the part of the transport the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	SetCredentials(ctx context.Context, access, refresh string) error
	Register(ctx context.Context, reg models.Registration) (*models.User, error)
	Blacklist(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	CurrentUserWith(ctx context.Context, access string) (*models.User, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (json.RawMessage, error)
	AccessToken(ctx context.Context) string
	ClearCredentials(ctx context.Context) error
	OnUnauthorized(fn func(context.Context)) (unsubscribe func())
}

// Listener observes every transition.
type Listener func(ctx context.Context, prev, next State)

// Store holds the session state and performs authentication operations.
type Store struct {
	api API
	log logging.Logger

	mu        sync.Mutex
	state     State
	loginSeq  uint64
	nextSub   int
	listeners map[int]Listener

	unsubscribe func()
}

func NewStore(a API, log logging.Logger) *Store {
	s := &Store{
		api:       a,
		log:       log,
		listeners: make(map[int]Listener),
	}
	s.unsubscribe = a.OnUnauthorized(s.expire)
	return s
}

// Close detaches the store from the transport.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) dispatch(ctx context.Context, e Event) State {
	s.mu.Lock()
	prev, next := s.apply(e)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, prev, next)
	}
	return next
}

// apply must be called with mu held.
func (s *Store) apply(e Event) (prev, next State) {
	prev = s.state
	s.state = Reduce(prev, e)
	return prev, s.state
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

// Initialize decides the startup state. Without a stored access credential
// the session becomes unauthenticated without touching the network.
func (s *Store) Initialize(ctx context.Context) State {
	access := s.api.AccessToken(ctx)
	if access == "" {
		return s.dispatch(ctx, LoggedOut{})
	}

	if claims, err := credentials.Inspect(access); err == nil {
		s.log.Debug(ctx, "stored credential", "user_id", claims.UserID, "expired", claims.Expired(time.Now()))
	}

	s.dispatch(ctx, InitStarted{})
	u, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.log.Info(ctx, "stored session rejected", "error", err)
		if cerr := s.api.ClearCredentials(ctx); cerr != nil {
			s.log.Error(ctx, "clear credentials", "error", cerr)
		}
		return s.dispatch(ctx, LoggedOut{})
	}
	return s.dispatch(ctx, LoggedIn{User: u})
}

// Login authenticates with email and password. When several logins overlap
// only the one issued last is applied; earlier ones return their own result
// but leave the session and the stored credentials alone.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.mu.Lock()
	s.loginSeq++
	seq := s.loginSeq
	s.mu.Unlock()

	s.dispatch(ctx, AttemptStarted{})

	u, err := s.login(ctx, email, password, seq)
	if err != nil {
		msg := api.MessageOf(err, msgLoginFailed)
		s.dispatchIfLatest(ctx, seq, AttemptFailed{Message: msg}, nil)
		return nil, &common.OpError{Op: "login", Msg: msg, Err: err}
	}
	return u, nil
}

func (s *Store) login(ctx context.Context, email, password string, seq uint64) (*models.User, error) {
	pair, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	u := pair.User
	if u == nil {
		u, err = s.api.CurrentUserWith(ctx, pair.Access)
		if err != nil {
			return nil, err
		}
	}

	applied := s.dispatchIfLatest(ctx, seq, LoggedIn{User: u}, func() error {
		return s.api.SetCredentials(ctx, pair.Access, pair.Refresh)
	})
	if !applied {
		s.log.Debug(ctx, "superseded login discarded", "email", email)
	}
	return u, nil
}

// dispatchIfLatest applies e only if seq is still the newest login. persist
// runs first under the same lock so credentials and state never disagree.
func (s *Store) dispatchIfLatest(ctx context.Context, seq uint64, e Event, persist func() error) bool {
	s.mu.Lock()
	if seq != s.loginSeq {
		s.mu.Unlock()
		return false
	}
	if persist != nil {
		if err := persist(); err != nil {
			s.mu.Unlock()
			s.log.Error(ctx, "persist credentials", "error", err)
			s.dispatch(ctx, AttemptFailed{Message: msgLoginFailed})
			return false
		}
	}
	prev, next := s.apply(e)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, prev, next)
	}
	return true
}

// Register creates the account and then logs in with the same credentials.
// loggedIn is false when the account exists but the automatic login failed;
// the caller should then show MsgRegisteredPleaseLogin.
func (s *Store) Register(ctx context.Context, reg models.Registration) (loggedIn bool, err error) {
	s.dispatch(ctx, AttemptStarted{})

	if _, err := s.api.Register(ctx, reg); err != nil {
		msg := api.MessageOf(err, msgRegistrationFailed)
		s.dispatch(ctx, AttemptFailed{Message: msg})
		return false, &common.OpError{Op: "register", Msg: msg, Err: err}
	}

	if _, err := s.Login(ctx, reg.Email, reg.Password); err != nil {
		s.log.Info(ctx, "auto-login after registration failed", "error", err)
		s.dispatch(ctx, ErrorCleared{})
		return false, nil
	}
	return true, nil
}

// Logout revokes the refresh credential on a best-effort basis and always
// ends the local session.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Blacklist(ctx); err != nil {
		s.log.Warn(ctx, "logout: revoke refresh credential", "error", err)
	}
	s.end(ctx)
}

func (s *Store) end(ctx context.Context) {
	if err := s.api.ClearCredentials(ctx); err != nil {
		s.log.Error(ctx, "clear credentials", "error", err)
	}

	s.mu.Lock()
	// Any login still in flight must not resurrect the session.
	s.loginSeq++
	s.mu.Unlock()

	s.dispatch(ctx, LoggedOut{})
}

// expire handles the transport's unrecoverable-401 signal. Credentials are
// already gone.
func (s *Store) expire(ctx context.Context) {
	if s.State().Status == StatusUnauthenticated {
		return
	}
	s.log.Info(ctx, "session expired")
	s.mu.Lock()
	s.loginSeq++
	s.mu.Unlock()
	s.dispatch(ctx, LoggedOut{})
}

// UpdateProfile PATCHes the profile and merges the fields the server
// returns into the current user. On failure the state is not touched.
func (s *Store) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	cur := s.State()
	if !cur.Authenticated() {
		return nil, &common.OpError{Op: "update profile", Msg: "Please log in first", Err: common.ErrNotAuthenticated}
	}

	raw, err := s.api.UpdateProfile(ctx, upd)
	if err != nil {
		return nil, &common.OpError{Op: "update profile", Msg: api.MessageOf(err, msgProfileUpdateFailed), Err: err}
	}

	merged := *cur.User
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &merged); err != nil {
			return nil, &common.OpError{
				Op:  "update profile",
				Msg: msgProfileUpdateFailed,
				Err: fmt.Errorf("decode profile: %w", err),
			}
		}
	}

	next := s.dispatch(ctx, UserUpdated{User: &merged})
	return next.User, nil
}

func (s *Store) ClearError(ctx context.Context) {
	s.dispatch(ctx, ErrorCleared{})
}
