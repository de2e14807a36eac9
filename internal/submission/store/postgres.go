package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/bluecarbon/internal/ledger"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

const uniqueViolation = "23505"

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSubmission reads a submission row in selectSubmissionColumns order.
func scanSubmission(s scanner) (*submission.Submission, error) {
	var sub submission.Submission

	var (
		state                         string
		outcome, decidedBy, rationale sql.NullString
		reason, issuanceRef, issuedBy sql.NullString
		decidedAt, issuedAt           sql.NullTime
		decisionValue                 decimal.NullDecimal
	)

	if err := s.Scan(
		&sub.ID, &sub.ProjectName, &sub.Location.Lat, &sub.Location.Lng, &sub.CollectionDate,
		&sub.SubmittedBy, &state, &sub.CarbonValue,
		&outcome, &decidedBy, &decidedAt, &rationale, &reason, &decisionValue,
		&issuanceRef, &issuedBy, &issuedAt,
		&sub.CreatedAt, &sub.UpdatedAt,
	); err != nil {
		return nil, err
	}

	sub.State = submission.State(state)
	sub.CollectionDate = sub.CollectionDate.UTC()

	if outcome.Valid {
		sub.Decision = &submission.Decision{
			Outcome:     submission.Outcome(outcome.String),
			DecidedBy:   decidedBy.String,
			DecidedAt:   decidedAt.Time,
			Rationale:   rationale.String,
			Reason:      submission.RejectReason(reason.String),
			CarbonValue: decisionValue.Decimal,
		}
	}

	if issuanceRef.Valid {
		sub.Issuance = &submission.Issuance{
			IssuanceRef: issuanceRef.String,
			IssuedBy:    issuedBy.String,
			IssuedAt:    issuedAt.Time,
		}
	}

	return &sub, nil
}

const selectSubmissionColumns = `
	id, project_name, latitude, longitude, collection_date, submitted_by, state, carbon_value,
	decision_outcome, decided_by, decided_at, rationale, reject_reason, decision_carbon_value,
	issuance_ref, issued_by, issued_at, created_at, updated_at
`

// decisionArgs flattens the optional decision and issuance into nullable columns.
func decisionArgs(s *submission.Submission) []any {
	var (
		outcome, decidedBy, rationale, reason sql.NullString
		decidedAt, issuedAt                   sql.NullTime
		decisionValue                         decimal.NullDecimal
		issuanceRef, issuedBy                 sql.NullString
	)

	if d := s.Decision; d != nil {
		outcome = sql.NullString{String: string(d.Outcome), Valid: true}
		decidedBy = sql.NullString{String: d.DecidedBy, Valid: true}
		decidedAt = sql.NullTime{Time: d.DecidedAt, Valid: true}
		rationale = sql.NullString{String: d.Rationale, Valid: true}
		reason = sql.NullString{String: string(d.Reason), Valid: true}
		decisionValue = decimal.NullDecimal{Decimal: d.CarbonValue, Valid: true}
	}

	if i := s.Issuance; i != nil {
		issuanceRef = sql.NullString{String: i.IssuanceRef, Valid: true}
		issuedBy = sql.NullString{String: i.IssuedBy, Valid: true}
		issuedAt = sql.NullTime{Time: i.IssuedAt, Valid: true}
	}

	return []any{
		outcome, decidedBy, decidedAt, rationale, reason, decisionValue,
		issuanceRef, issuedBy, issuedAt,
	}
}

func (p *Postgres) CreateSubmission(ctx context.Context, s *submission.Submission) error {
	query := `
		INSERT INTO submissions (
			id, project_name, latitude, longitude, collection_date, submitted_by, state, carbon_value,
			decision_outcome, decided_by, decided_at, rationale, reject_reason, decision_carbon_value,
			issuance_ref, issued_by, issued_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	args := []any{
		s.ID, s.ProjectName, s.Location.Lat, s.Location.Lng, s.CollectionDate,
		s.SubmittedBy, string(s.State), s.CarbonValue,
	}
	args = append(args, decisionArgs(s)...)
	args = append(args, s.CreatedAt, s.UpdatedAt)

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("creating submission: %w", err)
	}

	return nil
}

func (p *Postgres) GetSubmission(ctx context.Context, id uuid.UUID) (*submission.Submission, error) {
	query := `SELECT ` + selectSubmissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: submission %s", submission.ErrNotFound, id)
		}

		return nil, fmt.Errorf("getting submission: %w", err)
	}

	return sub, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (p *Postgres) ListSubmissions(ctx context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	return listSubmissions(ctx, p.db, filter)
}

func (p *Postgres) ListEntries(ctx context.Context) ([]*ledger.Entry, error) {
	return listEntries(ctx, p.db)
}

// Snapshot reads both tables inside one read-only REPEATABLE READ
// transaction, so both queries see the same committed state.
func (p *Postgres) Snapshot(ctx context.Context) (*submission.Snapshot, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning snapshot tx: %w", err)
	}
	defer tx.Rollback()

	subs, err := listSubmissions(ctx, tx, submission.ListFilter{})
	if err != nil {
		return nil, err
	}

	entries, err := listEntries(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing snapshot tx: %w", err)
	}

	return &submission.Snapshot{Submissions: subs, Entries: entries}, nil
}

func listSubmissions(ctx context.Context, q querier, filter submission.ListFilter) ([]*submission.Submission, error) {
	query := `SELECT ` + selectSubmissionColumns + ` FROM submissions WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argIdx)

		args = append(args, string(*filter.State))
		argIdx++
	}

	if filter.SubmittedBy != "" {
		query += fmt.Sprintf(" AND submitted_by = $%d", argIdx)

		args = append(args, filter.SubmittedBy)
	}

	query += " ORDER BY seq ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	var subs []*submission.Submission

	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}

		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating submission rows: %w", err)
	}

	return subs, nil
}

func listEntries(ctx context.Context, q querier) ([]*ledger.Entry, error) {
	query := `
		SELECT issuance_ref, submission_id, carbon_value, issued_by, issued_at
		FROM ledger_entries
		ORDER BY seq ASC
	`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.IssuanceRef, &e.SubmissionID, &e.CarbonValue, &e.IssuedBy, &e.IssuedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	return entries, nil
}

type pgTx struct {
	tx      *sql.Tx
	current *submission.Submission
}

// BeginTransition opens a database transaction holding the submission's row
// lock until Commit or Rollback.
func (p *Postgres) BeginTransition(ctx context.Context, id uuid.UUID) (submission.TransitionTx, error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transition tx: %w", err)
	}

	query := `SELECT ` + selectSubmissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`

	current, err := scanSubmission(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		dbTx.Rollback()

		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: submission %s", submission.ErrNotFound, id)
		}

		return nil, fmt.Errorf("locking submission: %w", err)
	}

	return &pgTx{tx: dbTx, current: current}, nil
}

func (t *pgTx) Submission() *submission.Submission { return t.current.Clone() }
func (t *pgTx) Commit() error                      { return t.tx.Commit() }

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (t *pgTx) SaveSubmission(ctx context.Context, s *submission.Submission) error {
	if s.ID != t.current.ID {
		return fmt.Errorf("saving submission: unit of work holds %s, got %s", t.current.ID, s.ID)
	}

	query := `
		UPDATE submissions
		SET state = $1, carbon_value = $2,
			decision_outcome = $3, decided_by = $4, decided_at = $5, rationale = $6,
			reject_reason = $7, decision_carbon_value = $8,
			issuance_ref = $9, issued_by = $10, issued_at = $11,
			updated_at = $12
		WHERE id = $13
	`

	args := []any{string(s.State), s.CarbonValue}
	args = append(args, decisionArgs(s)...)
	args = append(args, s.UpdatedAt, s.ID)

	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating submission: %w", err)
	}

	return nil
}

func (t *pgTx) RefExists(ctx context.Context, ref string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE issuance_ref = $1)`
	if err := t.tx.QueryRowContext(ctx, query, ref).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking issuance reference: %w", err)
	}

	return exists, nil
}

func (t *pgTx) AppendEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (issuance_ref, submission_id, carbon_value, issued_by, issued_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := t.tx.ExecContext(ctx, query, e.IssuanceRef, e.SubmissionID, e.CarbonValue, e.IssuedBy, e.IssuedAt)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "ledger_entries_submission_id_key" {
		return fmt.Errorf("%w: submission %s", submission.ErrAlreadyIssued, e.SubmissionID)
	}

	return fmt.Errorf("inserting ledger entry: %w", err)
}
