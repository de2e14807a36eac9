package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateParams is the candidate field set produced by an intake surface.
type CreateParams struct {
	ProjectName    string
	Location       string
	CollectionDate string
	SubmittedBy    string
	CarbonValue    *decimal.Decimal
}

// build validates the params and returns a new pending submission.
func (p CreateParams) build(id uuid.UUID, now time.Time) (*Submission, error) {
	var problems []string

	name := strings.TrimSpace(p.ProjectName)
	if name == "" {
		problems = append(problems, "project name is required")
	}

	submittedBy := strings.TrimSpace(p.SubmittedBy)
	if submittedBy == "" {
		problems = append(problems, "submitted by is required")
	}

	var loc Location

	if strings.TrimSpace(p.Location) == "" {
		problems = append(problems, "location is required")
	} else if l, err := ParseLocation(p.Location); err != nil {
		problems = append(problems, err.Error())
	} else {
		loc = l
	}

	var date time.Time

	if strings.TrimSpace(p.CollectionDate) == "" {
		problems = append(problems, "collection date is required")
	} else if d, err := ParseCollectionDate(p.CollectionDate); err != nil {
		problems = append(problems, err.Error())
	} else {
		date = d
	}

	var value decimal.Decimal

	if p.CarbonValue != nil {
		if !p.CarbonValue.IsPositive() {
			problems = append(problems, "carbon value must be positive")
		}

		value = *p.CarbonValue
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}

	return &Submission{
		ID:             id,
		ProjectName:    name,
		Location:       loc,
		CollectionDate: date,
		SubmittedBy:    submittedBy,
		State:          StatePending,
		CarbonValue:    value,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
