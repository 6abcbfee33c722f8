package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/spigell/mockwise/internal/model"
)

const timeLayout = time.RFC3339Nano

// SQLite is a single-file Store for local use.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, now: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_answers (
  id TEXT PRIMARY KEY,
  mock_id_ref TEXT NOT NULL,
  question TEXT NOT NULL,
  correct_ans TEXT NOT NULL,
  user_ans TEXT NOT NULL,
  feedback TEXT NOT NULL,
  rating REAL NOT NULL,
  user_id TEXT NOT NULL,
  created_at TEXT NOT NULL,
  UNIQUE(user_id, question)
)`,
	`CREATE INDEX IF NOT EXISTS user_answers_mock ON user_answers (user_id, mock_id_ref)`,
	`CREATE TABLE IF NOT EXISTS interviews (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  position TEXT NOT NULL,
  description TEXT NOT NULL,
  experience INTEGER NOT NULL,
  tech_stack TEXT NOT NULL,
  questions TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT
)`,
	`CREATE INDEX IF NOT EXISTS interviews_user ON interviews (user_id)`,
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) FindAnswers(ctx context.Context, filter AnswerFilter) ([]model.AnswerRecord, error) {
	query := `SELECT id, mock_id_ref, question, correct_ans, user_ans, feedback, rating, user_id, created_at FROM user_answers`

	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Question != "" {
		conds = append(conds, "question = ?")
		args = append(args, filter.Question)
	}
	if filter.MockIDRef != "" {
		conds = append(conds, "mock_id_ref = ?")
		args = append(args, filter.MockIDRef)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []model.AnswerRecord
	for rows.Next() {
		var (
			rec     model.AnswerRecord
			created string
		)
		if err := rows.Scan(&rec.ID, &rec.MockIDRef, &rec.Question, &rec.CorrectAns, &rec.UserAns,
			&rec.Feedback, &rec.Rating, &rec.UserID, &created); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse answer created_at: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return out, nil
}

func (s *SQLite) InsertAnswer(ctx context.Context, rec model.AnswerRecord) (model.AnswerRecord, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now().UTC()

	const stmt = `
INSERT INTO user_answers (id, mock_id_ref, question, correct_ans, user_ans, feedback, rating, user_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		rec.ID, rec.MockIDRef, rec.Question, rec.CorrectAns, rec.UserAns,
		rec.Feedback, rec.Rating, rec.UserID, rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.AnswerRecord{}, fmt.Errorf("insert answer: %w", ErrDuplicate)
		}
		return model.AnswerRecord{}, fmt.Errorf("insert answer: %w", err)
	}
	return rec, nil
}

func (s *SQLite) CreateInterview(ctx context.Context, in model.Interview) (model.Interview, error) {
	in.ID = uuid.NewString()
	in.CreatedAt = s.now().UTC()
	in.UpdatedAt = time.Time{}

	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return model.Interview{}, fmt.Errorf("marshal questions: %w", err)
	}

	const stmt = `
INSERT INTO interviews (id, user_id, position, description, experience, tech_stack, questions, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, stmt,
		in.ID, in.UserID, in.Position, in.Description, in.Experience, in.TechStack,
		string(questions), in.CreatedAt.Format(timeLayout),
	); err != nil {
		return model.Interview{}, fmt.Errorf("insert interview: %w", err)
	}
	return in, nil
}

const interviewColumns = `id, user_id, position, description, experience, tech_stack, questions, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (model.Interview, error) {
	var (
		in        model.Interview
		questions string
		created   string
		updated   sql.NullString
	)
	if err := row.Scan(&in.ID, &in.UserID, &in.Position, &in.Description, &in.Experience,
		&in.TechStack, &questions, &created, &updated); err != nil {
		return model.Interview{}, err
	}

	if err := json.Unmarshal([]byte(questions), &in.Questions); err != nil {
		return model.Interview{}, fmt.Errorf("unmarshal questions: %w", err)
	}

	var err error
	if in.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return model.Interview{}, fmt.Errorf("parse created_at: %w", err)
	}
	if updated.Valid && updated.String != "" {
		if in.UpdatedAt, err = time.Parse(timeLayout, updated.String); err != nil {
			return model.Interview{}, fmt.Errorf("parse updated_at: %w", err)
		}
	}
	return in, nil
}

func (s *SQLite) GetInterview(ctx context.Context, id string) (model.Interview, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = ?`, id)
	in, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interview{}, fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("get interview: %w", err)
	}
	return in, nil
}

func (s *SQLite) UpdateInterview(ctx context.Context, in model.Interview) (model.Interview, error) {
	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return model.Interview{}, fmt.Errorf("marshal questions: %w", err)
	}

	updated := s.now().UTC()
	const stmt = `
UPDATE interviews SET position = ?, description = ?, experience = ?, tech_stack = ?, questions = ?, updated_at = ?
WHERE id = ?`
	res, err := s.db.ExecContext(ctx, stmt,
		in.Position, in.Description, in.Experience, in.TechStack, string(questions),
		updated.Format(timeLayout), in.ID,
	)
	if err != nil {
		return model.Interview{}, fmt.Errorf("update interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Interview{}, fmt.Errorf("interview %q: %w", in.ID, ErrNotFound)
	}

	return s.GetInterview(ctx, in.ID)
}

func (s *SQLite) DeleteInterview(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM interviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("interview %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLite) ListInterviews(ctx context.Context, userID string) ([]model.Interview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	var out []model.Interview
	for rows.Next() {
		in, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interviews: %w", err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
