// Package sqlitesource stores exercise definitions and answer logs in an
// SQLite file with the same two tables as the CSV exports.
package sqlitesource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/awmpietro/golang-exercise-scoring/internal/exercise"
	"github.com/awmpietro/golang-exercise-scoring/internal/source"
)

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exercise_steps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise_type_id TEXT NOT NULL,
			step_id TEXT NOT NULL,
			is_first_step INTEGER NOT NULL DEFAULT 0,
			format TEXT NOT NULL DEFAULT '',
			score REAL,
			possible_answer_id TEXT NOT NULL DEFAULT '',
			possible_answer_next_step_id TEXT NOT NULL DEFAULT '',
			step_next_step_id TEXT NOT NULL DEFAULT '',
			answer_text TEXT NOT NULL DEFAULT '',
			answer_interpretation TEXT NOT NULL DEFAULT '',
			weight REAL
		);`,
		`CREATE TABLE IF NOT EXISTS exercise_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise_type_id TEXT NOT NULL,
			student_id TEXT NOT NULL DEFAULT '',
			attempt_id TEXT NOT NULL DEFAULT '',
			possible_answer_id TEXT NOT NULL,
			ans_inserted_at TEXT NOT NULL DEFAULT '',
			is_exercise_finished INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_steps_type ON exercise_steps(exercise_type_id);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_type_student ON exercise_answers(exercise_type_id, student_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSteps appends definition rows in one transaction. Row order is kept,
// so the first-row-wins rule for duplicate triggers survives a round trip.
func (s *Store) InsertSteps(ctx context.Context, steps []exercise.Step) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO exercise_steps (
			exercise_type_id, step_id, is_first_step, format, score,
			possible_answer_id, possible_answer_next_step_id, step_next_step_id,
			answer_text, answer_interpretation, weight
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, st := range steps {
			if _, err := stmt.ExecContext(ctx,
				st.ExerciseTypeID, st.StepID, st.IsFirstStep, st.Format, nullFloat(st.Score),
				st.PossibleAnswerID, st.PossibleAnswerNextStepID, st.StepNextStepID,
				st.AnswerText, string(st.AnswerInterpretation), nullFloat(st.Weight),
			); err != nil {
				return fmt.Errorf("insert step %s/%s: %w", st.ExerciseTypeID, st.StepID, err)
			}
		}
		return nil
	})
}

func (s *Store) InsertAnswers(ctx context.Context, answers []exercise.Answer) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO exercise_answers (
			exercise_type_id, student_id, attempt_id, possible_answer_id,
			ans_inserted_at, is_exercise_finished
		) VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range answers {
			submitted := ""
			if !a.SubmittedAt.IsZero() {
				submitted = a.SubmittedAt.UTC().Format(time.RFC3339Nano)
			}
			if _, err := stmt.ExecContext(ctx,
				a.ExerciseTypeID, a.StudentID, a.AttemptID, a.PossibleAnswerID,
				submitted, a.ExerciseFinished,
			); err != nil {
				return fmt.Errorf("insert answer %s: %w", a.PossibleAnswerID, err)
			}
		}
		return nil
	})
}

func (s *Store) Steps(ctx context.Context) ([]exercise.Step, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		exercise_type_id, step_id, is_first_step, format, score,
		possible_answer_id, possible_answer_next_step_id, step_next_step_id,
		answer_text, answer_interpretation, weight
		FROM exercise_steps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var out []exercise.Step
	for rows.Next() {
		var (
			st            exercise.Step
			score, weight sql.NullFloat64
			interp        string
		)
		if err := rows.Scan(
			&st.ExerciseTypeID, &st.StepID, &st.IsFirstStep, &st.Format, &score,
			&st.PossibleAnswerID, &st.PossibleAnswerNextStepID, &st.StepNextStepID,
			&st.AnswerText, &interp, &weight,
		); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if st.AnswerInterpretation, err = source.ParseInterpretation(interp); err != nil {
			return nil, fmt.Errorf("step %s/%s: %w", st.ExerciseTypeID, st.StepID, err)
		}
		st.Score = floatPtr(score)
		st.Weight = floatPtr(weight)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) Answers(ctx context.Context) ([]exercise.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		exercise_type_id, student_id, attempt_id, possible_answer_id,
		ans_inserted_at, is_exercise_finished
		FROM exercise_answers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []exercise.Answer
	for rows.Next() {
		var (
			a         exercise.Answer
			submitted string
		)
		if err := rows.Scan(
			&a.ExerciseTypeID, &a.StudentID, &a.AttemptID, &a.PossibleAnswerID,
			&submitted, &a.ExerciseFinished,
		); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if a.SubmittedAt, err = source.ParseTime(submitted); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
