// Package session owns the authentication state of the client.
//
// State transitions are expressed as a closed set of Event values applied
// by the pure function Reduce; Store performs the network calls and
// dispatches events. Other components observe the session through
// Store.Subscribe instead of reading shared globals.
package session

import "github.com/dmitrijs2005/campusshop/internal/client/models"

// Status is the session lifecycle position.
type Status int

const (
	StatusUninitialized Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// State is a snapshot of the session. User is non-nil iff Status is
// StatusAuthenticated; the pointed-to value is never mutated in place.
type State struct {
	Status  Status
	User    *models.User
	Loading bool
	Err     string
}

func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// Event is a session transition. The set is closed.
type Event interface {
	sessionEvent()
}

type (
	// InitStarted marks the startup credential check.
	InitStarted struct{}
	// AttemptStarted marks a login or registration in flight.
	AttemptStarted struct{}
	// LoggedIn carries the user record of a successful login.
	LoggedIn struct{ User *models.User }
	// AttemptFailed carries the message of a failed login or registration.
	AttemptFailed struct{ Message string }
	// LoggedOut resets the session, whether on request or because the
	// credential could not be refreshed.
	LoggedOut struct{}
	// UserUpdated replaces the user record after a profile change.
	UserUpdated struct{ User *models.User }
	ErrorCleared struct{}
)

func (InitStarted) sessionEvent()    {}
func (AttemptStarted) sessionEvent() {}
func (LoggedIn) sessionEvent()       {}
func (AttemptFailed) sessionEvent()  {}
func (LoggedOut) sessionEvent()      {}
func (UserUpdated) sessionEvent()    {}
func (ErrorCleared) sessionEvent()   {}

// Reduce returns the state that follows s after e.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case InitStarted:
		return State{Status: StatusLoading, Loading: true}

	case AttemptStarted:
		s.Loading = true
		s.Err = ""
		return s

	case LoggedIn:
		if ev.User == nil {
			return s
		}
		return State{Status: StatusAuthenticated, User: ev.User}

	case AttemptFailed:
		s.Loading = false
		s.Err = ev.Message
		// An existing session survives a failed attempt.
		if s.Status != StatusAuthenticated {
			s.Status = StatusUnauthenticated
			s.User = nil
		}
		return s

	case LoggedOut:
		return State{Status: StatusUnauthenticated}

	case UserUpdated:
		if s.Status != StatusAuthenticated || ev.User == nil {
			return s
		}
		s.User = ev.User
		return s

	case ErrorCleared:
		s.Err = ""
		return s
	}
	return s
}
