package identity

import (
	"context"
	"fmt"
	"strings"
)

// Directory is a fixed set of known accounts keyed by email. It stands in for
// a real credential system in demos and the operator console.
type Directory struct {
	accounts map[string]Actor
}

func NewDirectory(accounts map[string]Actor) *Directory {
	d := &Directory{accounts: make(map[string]Actor, len(accounts))}
	for email, a := range accounts {
		d.accounts[strings.ToLower(strings.TrimSpace(email))] = a
	}

	return d
}

// DemoDirectory returns the three portal accounts.
func DemoDirectory() *Directory {
	return NewDirectory(map[string]Actor{
		"ngo@example.com":      {ID: "Ocean Conservation NGO", Role: RoleSubmitter},
		"verifier@example.com": {ID: "verifier@example.com", Role: RoleVerifier},
		"admin@example.com":    {ID: "admin@example.com", Role: RoleAdmin},
	})
}

// Resolve treats the credential as an account email.
func (d *Directory) Resolve(_ context.Context, credential string) (Actor, error) {
	a, ok := d.accounts[strings.ToLower(strings.TrimSpace(credential))]
	if !ok {
		return Actor{}, fmt.Errorf("%w: unknown account", ErrUnauthorized)
	}

	return a, nil
}
