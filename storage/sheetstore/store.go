// Package sheetstore persists attendance Tables in a Google Sheets spreadsheet, one tab per class and subject.
package sheetstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/rollcall/core/attendance"
)

type Store struct {
	svc           *sheets.Service
	spreadsheetID string
}

var _ attendance.Store = (*Store)(nil)

// New connects to the Sheets API. Use option.WithCredentialsFile (service account) in production.
func New(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Store, error) {
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets service")
	}
	return &Store{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Title returns the tab title of `key`.
func Title(key attendance.Key) string {
	return key.Class + "_" + key.SafeSubject()
}

// quote makes `title` usable as an A1 range.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func (s *Store) sheet(ctx context.Context, title string) (props *sheets.SheetProperties, maxID int64, err error) {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, 0, errors.Wrap(err, "getting spreadsheet")
	}
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		if sh.Properties.SheetId > maxID {
			maxID = sh.Properties.SheetId
		}
		if sh.Properties.Title == title {
			props = sh.Properties
		}
	}
	return props, maxID, nil
}

// Read returns the Table of `key`. A missing or empty tab means nothing was recorded yet.
func (s *Store) Read(ctx context.Context, key attendance.Key) (*attendance.Table, bool, error) {
	title := Title(key)
	props, _, err := s.sheet(ctx, title)
	if err != nil {
		return nil, false, err
	}
	if props == nil {
		return nil, false, nil
	}

	vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, quote(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, false, errors.Wrapf(err, "getting values of %q", title)
	}
	if len(vr.Values) == 0 {
		return nil, false, nil
	}

	raw := attendance.RawTable{Header: toStrings(vr.Values[0])}
	for _, row := range vr.Values[1:] {
		raw.Rows = append(raw.Rows, toStrings(row))
	}
	t, err := attendance.Decode(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "decoding %q", title)
	}
	return t, true, nil
}

// Write replaces the content of the tab of `key` (creating it if needed) in a single batch update,
// which the API applies atomically.
func (s *Store) Write(ctx context.Context, key attendance.Key, t *attendance.Table) error {
	title := Title(key)
	props, maxID, err := s.sheet(ctx, title)
	if err != nil {
		return err
	}

	raw := attendance.Encode(t)
	grid := &sheets.GridProperties{
		RowCount:    int64(len(raw.Rows) + 1),
		ColumnCount: int64(len(raw.Header)),
	}

	var reqs []*sheets.Request
	var sheetID int64
	if props == nil {
		sheetID = maxID + 1
		reqs = append(reqs, &sheets.Request{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{SheetId: sheetID, Title: title, GridProperties: grid},
			},
		})
	} else {
		sheetID = props.SheetId
		reqs = append(reqs, &sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{SheetId: sheetID, GridProperties: grid},
				Fields:     "gridProperties.rowCount,gridProperties.columnCount",
			},
		})
	}
	reqs = append(reqs, &sheets.Request{
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  &sheets.GridRange{SheetId: sheetID, ForceSendFields: []string{"SheetId"}},
			Rows:   rowData(raw),
			Fields: "userEnteredValue",
		},
	})

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).
		Do()
	return errors.Wrapf(err, "updating %q", title)
}

func rowData(raw attendance.RawTable) []*sheets.RowData {
	rows := make([]*sheets.RowData, 0, len(raw.Rows)+1)
	for _, r := range append([][]string{raw.Header}, raw.Rows...) {
		cells := make([]*sheets.CellData, len(r))
		for j, v := range r {
			cells[j] = &sheets.CellData{}
			if v != "" {
				v := v
				cells[j].UserEnteredValue = &sheets.ExtendedValue{StringValue: &v}
			}
		}
		rows = append(rows, &sheets.RowData{Values: cells})
	}
	return rows
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
