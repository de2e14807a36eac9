// Package demo loads the sample projects shown on the portal dashboards.
// Records are driven through the real service so every invariant holds.
package demo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

var (
	verifier = identity.Actor{ID: "verifier@example.com", Role: identity.RoleVerifier}
	admin    = identity.Actor{ID: "admin@example.com", Role: identity.RoleAdmin}
)

type project struct {
	name, location, date, org string
	carbon                    int64
	target                    submission.State
}

var projects = []project{
	{"Mangrove Restoration Project", "-1.2921,36.8219", "2024-01-15", "Ocean Conservation NGO", 150, submission.StatePending},
	{"Seagrass Restoration Initiative", "2.0469,45.3182", "2024-01-08", "Blue Ocean Trust", 200, submission.StateIssued},
	{"Coastal Wetland Protection", "-4.0435,39.6682", "2024-01-10", "Marine Life Foundation", 180, submission.StateVerified},
}

// Seed creates the sample submissions and advances each to its target state.
func Seed(ctx context.Context, svc *submission.Service) ([]*submission.Submission, error) {
	out := make([]*submission.Submission, 0, len(projects))

	for _, p := range projects {
		sub, err := seedOne(ctx, svc, p)
		if err != nil {
			return nil, fmt.Errorf("seeding %q: %w", p.name, err)
		}

		out = append(out, sub)
	}

	return out, nil
}

func seedOne(ctx context.Context, svc *submission.Service, p project) (*submission.Submission, error) {
	owner := identity.Actor{ID: p.org, Role: identity.RoleSubmitter}
	value := decimal.NewFromInt(p.carbon)

	sub, err := svc.Create(ctx, owner, submission.CreateParams{
		ProjectName:    p.name,
		Location:       p.location,
		CollectionDate: p.date,
		SubmittedBy:    p.org,
		CarbonValue:    &value,
	})
	if err != nil {
		return nil, err
	}

	if p.target == submission.StatePending {
		return sub, nil
	}

	sub, err = svc.ApplyTransition(ctx, verifier, sub.ID, submission.Transition{
		Event:     submission.EventVerifyConfirm,
		Rationale: "sample record",
	})
	if err != nil {
		return nil, err
	}

	if p.target == submission.StateVerified {
		return sub, nil
	}

	return svc.ApplyTransition(ctx, admin, sub.ID, submission.Transition{Event: submission.EventIssueCredits})
}
