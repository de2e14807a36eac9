package identity

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when a credential cannot be resolved to an actor.
var ErrUnauthorized = errors.New("unauthorized")

// Role determines which transitions a caller may invoke.
type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleVerifier  Role = "verifier"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSubmitter, RoleVerifier, RoleAdmin:
		return true
	}

	return false
}

// ParseRole accepts the canonical role names plus the "ngo" alias used by
// the submitter-facing portal.
func ParseRole(s string) (Role, error) {
	switch s {
	case "ngo", "NGO":
		return RoleSubmitter, nil
	}

	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrUnauthorized, s)
	}

	return r, nil
}

// Actor is the resolved caller of a mutating operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) String() string {
	return fmt.Sprintf("%s(%s)", a.ID, a.Role)
}

// Provider resolves an opaque caller credential to an actor.
type Provider interface {
	Resolve(ctx context.Context, credential string) (Actor, error)
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor stored by WithActor, if any.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
