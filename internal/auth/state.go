package auth

import (
	"context"

	"github.com/AnshRaj112/salvioris-journal/internal/models"
)

// State is the authentication state of one request. The zero value is
// anonymous.
type State struct {
	User  *models.User
	token string
}

// Anonymous returns the state of a request with no valid session.
func Anonymous() State {
	return State{}
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

type stateKey struct{}

// WithState stores s in ctx.
func WithState(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// FromContext returns the state computed by Gate.Middleware, or Anonymous.
func FromContext(ctx context.Context) State {
	s, _ := ctx.Value(stateKey{}).(State)
	return s
}

// CurrentUser is shorthand for FromContext(ctx).User.
func CurrentUser(ctx context.Context) *models.User {
	return FromContext(ctx).User
}
