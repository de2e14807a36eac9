package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

type Creator interface {
	Create(ctx context.Context, actor identity.Actor, params submission.CreateParams) (*submission.Submission, error)
}

// RowError is a rejected row. Other rows of the same sheet are unaffected.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

type Result struct {
	Charset string
	Profile string
	Created []*submission.Submission
	Failed  []RowError
}

type Service struct {
	parser  *Parser
	creator Creator
}

func NewService(creator Creator) *Service {
	return &Service{parser: NewParser(), creator: creator}
}

// Import parses a sheet and creates one submission per row. Rows that fail
// to parse or validate, or that name another organisation as submitter, are
// reported in Result.Failed; any other error stops the import and leaves
// already created rows in place.
func (s *Service) Import(ctx context.Context, actor identity.Actor, r io.Reader) (*Result, error) {
	if actor.Role != identity.RoleSubmitter {
		return nil, fmt.Errorf("%w: %s may not import submissions", submission.ErrUnauthorized, actor.Role)
	}

	sheet, err := s.parser.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{Charset: sheet.Charset, Profile: sheet.Profile}

	for _, row := range sheet.Rows {
		if row.Err != nil {
			res.Failed = append(res.Failed, RowError{Line: row.Line, Err: row.Err})
			continue
		}

		params := row.Params
		if params.SubmittedBy == "" {
			params.SubmittedBy = actor.ID
		}

		sub, err := s.creator.Create(ctx, actor, params)
		if err != nil {
			if errors.Is(err, submission.ErrValidation) || errors.Is(err, submission.ErrUnauthorized) {
				res.Failed = append(res.Failed, RowError{Line: row.Line, Err: err})
				continue
			}

			return nil, fmt.Errorf("creating submission from line %d: %w", row.Line, err)
		}

		res.Created = append(res.Created, sub)
	}

	slog.Info("intake sheet imported",
		"actor", actor.ID,
		"charset", res.Charset,
		"profile", res.Profile,
		"created", len(res.Created),
		"failed", len(res.Failed),
	)

	return res, nil
}
