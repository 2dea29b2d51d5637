package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"netqoe/internal/core/domain"
	"netqoe/internal/core/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scenarios (
	id              TEXT    PRIMARY KEY,
	owner_id        TEXT    NOT NULL,
	name            TEXT    NOT NULL,
	description     TEXT    NOT NULL DEFAULT '',
	is_baseline     INTEGER NOT NULL DEFAULT 0,
	parameters      TEXT    NOT NULL,
	result          TEXT    NOT NULL,
	implementations TEXT    NOT NULL DEFAULT '[]',
	created_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scenarios_owner_created ON scenarios (owner_id, created_at DESC);
`

const selectColumns = `id, owner_id, name, description, is_baseline, parameters, result, implementations, created_at`

type SQLiteScenarioRepository struct {
	db *sql.DB
}

// Open creates or opens the scenario database at path, creating the parent
// directory and schema as needed.
func Open(ctx context.Context, path string) (*SQLiteScenarioRepository, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create schema: %w", err)
	}

	return &SQLiteScenarioRepository{db: db}, nil
}

var _ ports.ScenarioRepository = (*SQLiteScenarioRepository)(nil)

func (r *SQLiteScenarioRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteScenarioRepository) Create(ctx context.Context, scenario *domain.Scenario) error {
	row, err := encodeRow(scenario)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scenarios (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		row.id, row.owner, row.name, row.description, row.baseline,
		row.parameters, row.result, row.implementations, row.createdAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert scenario: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: insert scenario: %w", err)
	}
	if n == 0 {
		return domain.ErrScenarioExists
	}
	return nil
}

func (r *SQLiteScenarioRepository) GetByID(ctx context.Context, id domain.ScenarioID) (*domain.Scenario, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM scenarios WHERE id = ?`, string(id))

	scenario, err := scanScenario(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrScenarioNotFound
	}
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

func (r *SQLiteScenarioRepository) Update(ctx context.Context, scenario *domain.Scenario) error {
	row, err := encodeRow(scenario)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE scenarios
		SET owner_id = ?, name = ?, description = ?, is_baseline = ?,
		    parameters = ?, result = ?, implementations = ?, created_at = ?
		WHERE id = ?`,
		row.owner, row.name, row.description, row.baseline,
		row.parameters, row.result, row.implementations, row.createdAt, row.id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update scenario: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteScenarioRepository) Delete(ctx context.Context, id domain.ScenarioID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("sqlite: delete scenario: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteScenarioRepository) ListByOwner(ctx context.Context, owner domain.UserID) ([]*domain.Scenario, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM scenarios
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC`, string(owner))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]*domain.Scenario, 0)
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list scenarios: %w", err)
	}
	return scenarios, nil
}

func (r *SQLiteScenarioRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scenarioRow struct {
	id, owner, name, description        string
	baseline                            int
	parameters, result, implementations string
	createdAt                           int64
}

func encodeRow(s *domain.Scenario) (scenarioRow, error) {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return scenarioRow{}, fmt.Errorf("sqlite: encode parameters: %w", err)
	}
	result, err := json.Marshal(s.Result)
	if err != nil {
		return scenarioRow{}, fmt.Errorf("sqlite: encode result: %w", err)
	}
	impls := s.Implementations
	if impls == nil {
		impls = []domain.Implementation{}
	}
	implsJSON, err := json.Marshal(impls)
	if err != nil {
		return scenarioRow{}, fmt.Errorf("sqlite: encode implementations: %w", err)
	}

	baseline := 0
	if s.IsBaseline {
		baseline = 1
	}

	return scenarioRow{
		id:              string(s.ID),
		owner:           string(s.OwnerID),
		name:            s.Name,
		description:     s.Description,
		baseline:        baseline,
		parameters:      string(params),
		result:          string(result),
		implementations: string(implsJSON),
		createdAt:       s.CreatedAt.UnixNano(),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScenario(sc rowScanner) (*domain.Scenario, error) {
	var row scenarioRow
	err := sc.Scan(&row.id, &row.owner, &row.name, &row.description, &row.baseline,
		&row.parameters, &row.result, &row.implementations, &row.createdAt)
	if err != nil {
		return nil, err
	}

	s := &domain.Scenario{
		ID:          domain.ScenarioID(row.id),
		OwnerID:     domain.UserID(row.owner),
		Name:        row.name,
		Description: row.description,
		IsBaseline:  row.baseline != 0,
		CreatedAt:   time.Unix(0, row.createdAt).UTC(),
	}
	if err := json.Unmarshal([]byte(row.parameters), &s.Parameters); err != nil {
		return nil, fmt.Errorf("sqlite: decode parameters of %s: %w", row.id, err)
	}
	if err := json.Unmarshal([]byte(row.result), &s.Result); err != nil {
		return nil, fmt.Errorf("sqlite: decode result of %s: %w", row.id, err)
	}
	if err := json.Unmarshal([]byte(row.implementations), &s.Implementations); err != nil {
		return nil, fmt.Errorf("sqlite: decode implementations of %s: %w", row.id, err)
	}
	return s, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrScenarioNotFound
	}
	return nil
}
