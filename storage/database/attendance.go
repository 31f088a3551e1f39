package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core/attendance"
)

// Store persists attendance Tables in Postgres: one attendance_sheet per class+subject and one
// attendance_row per student, marks kept as a boolean array aligned with the sheet's dates.
type Store struct {
	db *sqlx.DB
}

var _ attendance.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

type sheetRecord struct {
	ID    int            `db:"id"`
	Dates pq.StringArray `db:"dates"`
}

type rowRecord struct {
	Name      string       `db:"name"`
	StudentID string       `db:"student_id"`
	Marks     pq.BoolArray `db:"marks"`
}

func (s *Store) Read(ctx context.Context, key attendance.Key) (*attendance.Table, bool, error) {
	var sheet sheetRecord
	err := s.db.GetContext(ctx, &sheet,
		`SELECT id, dates FROM attendance_sheet WHERE class_name = $1 AND subject = $2`,
		key.Class, key.Subject,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "selecting attendance sheet")
	}

	var rows []rowRecord
	err = s.db.SelectContext(ctx, &rows,
		`SELECT name, student_id, marks FROM attendance_row WHERE sheet_id = $1 ORDER BY position`,
		sheet.ID,
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "selecting attendance rows")
	}

	students := make([]attendance.Student, len(rows))
	for i, r := range rows {
		students[i] = attendance.Student{Name: r.Name, ID: r.StudentID}
	}
	t := attendance.NewTable(students, sheet.Dates...)
	for i, r := range rows {
		for j := range t.Dates {
			t.Marks[i][j] = j < len(r.Marks) && r.Marks[j]
		}
	}
	return t, true, nil
}

// Write replaces the Table of `key` within a single transaction.
func (s *Store) Write(ctx context.Context, key attendance.Key, t *attendance.Table) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var sheetID int
	err = tx.GetContext(ctx, &sheetID,
		`INSERT INTO attendance_sheet (class_name, subject, dates, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (class_name, subject) DO UPDATE SET dates = EXCLUDED.dates, updated_at = now()
		RETURNING id`,
		key.Class, key.Subject, pq.StringArray(t.Dates),
	)
	if err != nil {
		return errors.Wrap(err, "upserting attendance sheet")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_row WHERE sheet_id = $1`, sheetID); err != nil {
		return errors.Wrap(err, "deleting attendance rows")
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO attendance_row (sheet_id, position, name, student_id, marks) VALUES ($1, $2, $3, $4, $5)`,
	)
	if err != nil {
		return errors.Wrap(err, "preparing attendance row insert")
	}
	defer func() { _ = stmt.Close() }()

	for i, st := range t.Students {
		if _, err = stmt.ExecContext(ctx, sheetID, i, st.Name, st.ID, pq.BoolArray(t.Marks[i])); err != nil {
			return errors.Wrapf(err, "inserting attendance row %d", i)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing attendance")
	}
	return nil
}
