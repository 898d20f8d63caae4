package session

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
	"github.com/stretchr/testify/assert"
)

const (
	testTimeout = time.Second
	testTick    = time.Millisecond
)

func TestReduce(t *testing.T) {
	user := &models.User{ID: 1, Email: "ama@campus.edu"}
	authed := State{Status: StatusAuthenticated, User: user}

	tests := []struct {
		name string
		in   State
		ev   Event
		want State
	}{
		{"init", State{}, InitStarted{}, State{Status: StatusLoading, Loading: true}},
		{"attempt clears error", State{Status: StatusUnauthenticated, Err: "old"}, AttemptStarted{}, State{Status: StatusUnauthenticated, Loading: true}},
		{"login", State{Status: StatusUnauthenticated, Loading: true, Err: "x"}, LoggedIn{User: user}, authed},
		{"login without user ignored", State{Status: StatusUnauthenticated}, LoggedIn{}, State{Status: StatusUnauthenticated}},
		{"failure from loading", State{Status: StatusLoading, Loading: true}, AttemptFailed{Message: "bad"}, State{Status: StatusUnauthenticated, Err: "bad"}},
		{"failure keeps session", State{Status: StatusAuthenticated, User: user, Loading: true}, AttemptFailed{Message: "bad"}, State{Status: StatusAuthenticated, User: user, Err: "bad"}},
		{"logout", authed, LoggedOut{}, State{Status: StatusUnauthenticated}},
		{"update while logged out ignored", State{Status: StatusUnauthenticated}, UserUpdated{User: user}, State{Status: StatusUnauthenticated}},
		{"clear error", State{Status: StatusUnauthenticated, Err: "x"}, ErrorCleared{}, State{Status: StatusUnauthenticated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.in, tt.ev))
		})
	}
}

func TestReduce_AuthenticatedImpliesUser(t *testing.T) {
	events := []Event{InitStarted{}, AttemptStarted{}, LoggedIn{}, AttemptFailed{}, LoggedOut{}, UserUpdated{}, ErrorCleared{}}
	for _, start := range []State{{}, {Status: StatusAuthenticated, User: &models.User{ID: 1}}} {
		for _, e := range events {
			got := Reduce(start, e)
			if got.Status == StatusAuthenticated {
				assert.NotNil(t, got.User, "%T", e)
			}
		}
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "authenticated", StatusAuthenticated.String())
	assert.Equal(t, "unknown", Status(42).String())
}
