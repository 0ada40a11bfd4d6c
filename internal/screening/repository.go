package screening

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"child-health-tracker/internal/platform/database"
)

type Repository interface {
	Get(ctx context.Context, profileID uuid.UUID, stageID string) (*Result, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]Result, error)
	Save(ctx context.Context, r *Result) error
}

type sqlRepo struct {
	db *database.DB
}

func NewRepository(db *database.DB) Repository {
	return &sqlRepo{db: db}
}

const resultColumns = `profile_id, stage_id, taken_at, child_age_months, answers, revision`

func (r *sqlRepo) Get(ctx context.Context, profileID uuid.UUID, stageID string) (*Result, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM assessment_results WHERE profile_id = ? AND stage_id = ?`,
		profileID, stageID)
	res, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *sqlRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]Result, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+resultColumns+` FROM assessment_results WHERE profile_id = ? ORDER BY stage_id`,
		profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func (r *sqlRepo) Save(ctx context.Context, res *Result) error {
	answersJSON, err := json.Marshal(res.Answers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assessment_results (profile_id, stage_id, taken_at, child_age_months, answers, revision)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, stage_id) DO UPDATE SET
			taken_at = excluded.taken_at,
			child_age_months = excluded.child_age_months,
			answers = excluded.answers,
			revision = excluded.revision
	`
	_, err = r.db.ExecContext(ctx, query,
		res.ProfileID, res.StageID, res.TakenAt, res.ChildAgeMonths, string(answersJSON), res.Revision)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanResult reads unreadable answers as an empty answer set.
func scanResult(row rowScanner) (*Result, error) {
	var res Result
	var answersJSON []byte

	if err := row.Scan(
		&res.ProfileID,
		&res.StageID,
		&res.TakenAt,
		&res.ChildAgeMonths,
		&answersJSON,
		&res.Revision,
	); err != nil {
		return nil, err
	}

	res.Answers = []Answer{}
	if len(answersJSON) > 0 {
		var answers []Answer
		if err := json.Unmarshal(answersJSON, &answers); err == nil && answers != nil {
			res.Answers = answers
		}
	}
	return &res, nil
}
