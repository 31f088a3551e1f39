// Package xlsxstore persists attendance Tables as local .xlsx files: `<dir>/<class>/<Subject_name>.xlsx`.
package xlsxstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rollcall/core/attendance"
)

type Store struct {
	dir string
}

var _ attendance.Store = (*Store)(nil)

func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file holding the Table of `key`.
func (s *Store) Path(key attendance.Key) string {
	return filepath.Join(s.dir, key.Class, key.SafeSubject()+".xlsx")
}

func (s *Store) Read(ctx context.Context, key attendance.Key) (*attendance.Table, bool, error) {
	path := s.Path(key)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "checking attendance file")
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, false, errors.Wrapf(err, "opening %s", path)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}
	var raw attendance.RawTable
	if len(rows) > 0 {
		raw = attendance.RawTable{Header: rows[0], Rows: rows[1:]}
	}

	t, err := attendance.Decode(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decoding %s", path)
	}
	return t, true, nil
}

// Write replaces the file of `key`. The workbook is written to a temporary file of the same directory
// and renamed over the previous one, so a failed write leaves the previous file as it was.
func (s *Store) Write(ctx context.Context, key attendance.Key, t *attendance.Table) (err error) {
	path := s.Path(key)
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating class directory")
	}

	f, err := encode(t)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err = ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+key.SafeSubject()+"-*.xlsx")
	if err != nil {
		return errors.Wrap(err, "creating temporary file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = f.WriteTo(tmp); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing workbook")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing workbook")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replacing attendance file")
	}
	return nil
}

func encode(t *attendance.Table) (*excelize.File, error) {
	raw := attendance.Encode(t)
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	rows := append([][]string{raw.Header}, raw.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "writing row %d", i+1)
		}
	}
	return f, nil
}
