package growth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"child-health-tracker/internal/platform/database"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ChildProfile, error)
	List(ctx context.Context) ([]ChildProfile, error)
	Save(ctx context.Context, p *ChildProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sqlRepo struct {
	db *database.DB
}

func NewRepository(db *database.DB) Repository {
	return &sqlRepo{db: db}
}

const profileColumns = `id, name, birth_date, gender, growth_history, revision, created_at, updated_at`

func (r *sqlRepo) GetByID(ctx context.Context, id uuid.UUID) (*ChildProfile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM child_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *sqlRepo) List(ctx context.Context) ([]ChildProfile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM child_profiles ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChildProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *sqlRepo) Save(ctx context.Context, p *ChildProfile) error {
	historyJSON, err := json.Marshal(p.GrowthHistory)
	if err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO child_profiles (id, name, birth_date, gender, growth_history, revision, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			birth_date = excluded.birth_date,
			gender = excluded.gender,
			growth_history = excluded.growth_history,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.BirthDate, string(p.Gender), string(historyJSON), p.Revision, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *sqlRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM child_profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile tolerates an unreadable history column: it surfaces as an empty
// history instead of failing the whole profile.
func scanProfile(row rowScanner) (*ChildProfile, error) {
	var p ChildProfile
	var gender string
	var historyJSON []byte

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.BirthDate,
		&gender,
		&historyJSON,
		&p.Revision,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Gender = Gender(gender)

	p.GrowthHistory = []GrowthRecord{}
	if len(historyJSON) > 0 {
		var history []GrowthRecord
		if err := json.Unmarshal(historyJSON, &history); err == nil && history != nil {
			p.GrowthHistory = history
		}
	}
	return &p, nil
}
