package sheetstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/trezcool/rollcall/core/attendance"
)

const spreadsheetID = "sheet-123"

type fakeTab struct {
	id     int64
	values [][]string
}

// fakeSheets serves the few Sheets API calls made by the Store.
type fakeSheets struct {
	mu      sync.Mutex
	tabs    map[string]*fakeTab
	batches int
	fail    bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := "/v4/spreadsheets/" + spreadsheetID
	switch {
	case f.fail:
		http.Error(w, `{"error": {"code": 503, "message": "backend unavailable"}}`, http.StatusServiceUnavailable)
	case r.Method == http.MethodGet && r.URL.Path == base:
		ss := sheets.Spreadsheet{SpreadsheetId: spreadsheetID}
		for title, tab := range f.tabs {
			ss.Sheets = append(ss.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: tab.id, Title: title}})
		}
		_ = json.NewEncoder(w).Encode(ss)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, base+"/values/"):
		title := strings.Trim(strings.TrimPrefix(r.URL.Path, base+"/values/"), "'")
		vr := sheets.ValueRange{Range: title, MajorDimension: "ROWS"}
		if tab, ok := f.tabs[title]; ok {
			for _, row := range tab.values {
				cells := make([]interface{}, len(row))
				for i, c := range row {
					cells[i] = c
				}
				vr.Values = append(vr.Values, cells)
			}
		}
		_ = json.NewEncoder(w).Encode(vr)
	case r.Method == http.MethodPost && r.URL.Path == base+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.batches++
		for _, rq := range req.Requests {
			switch {
			case rq.AddSheet != nil:
				f.tabs[rq.AddSheet.Properties.Title] = &fakeTab{id: rq.AddSheet.Properties.SheetId}
			case rq.UpdateCells != nil:
				tab := f.byID(rq.UpdateCells.Range.SheetId)
				if tab == nil {
					http.Error(w, "no such sheet", http.StatusBadRequest)
					return
				}
				tab.values = nil
				for _, rd := range rq.UpdateCells.Rows {
					row := make([]string, len(rd.Values))
					for i, c := range rd.Values {
						if c.UserEnteredValue != nil && c.UserEnteredValue.StringValue != nil {
							row[i] = *c.UserEnteredValue.StringValue
						}
					}
					// the API trims trailing empty cells
					for len(row) > 0 && row[len(row)-1] == "" {
						row = row[:len(row)-1]
					}
					tab.values = append(tab.values, row)
				}
			}
		}
		_ = json.NewEncoder(w).Encode(sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: spreadsheetID})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSheets) tab(title string) *fakeTab {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[title]
}

func (f *fakeSheets) setTab(title string, tab *fakeTab) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tabs[title] = tab
}

func (f *fakeSheets) counts() (tabs, batches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tabs), f.batches
}

func (f *fakeSheets) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeSheets) byID(id int64) *fakeTab {
	for _, tab := range f.tabs {
		if tab.id == id {
			return tab
		}
	}
	return nil
}

func setup(t *testing.T) (*Store, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{tabs: map[string]*fakeTab{"Sheet1": {id: 0}}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := New(context.Background(), spreadsheetID,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return s, fake
}

var key = attendance.Key{Class: "K65-CNTT", Subject: attendance.SubjectAppliedIT}

func table() *attendance.Table {
	return &attendance.Table{
		Students: []attendance.Student{{Name: "Nguyễn Văn A", ID: "SV001"}, {Name: "Trần Thị B", ID: "SV002"}},
		Dates:    []string{"12/10", "19/10"},
		Marks:    [][]bool{{true, false}, {false, true}},
	}
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), "", option.WithoutAuthentication())
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "K65-CNTT_Tin_học_ứng_dụng", Title(key))
	assert.Equal(t, "'O''Brien'", quote("O'Brien"))
}

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s, fake := setup(t)

	_, ok, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, key, table()))
	_, batches := fake.counts()
	assert.Equal(t, 1, batches)
	tab := fake.tab(Title(key))
	require.NotNil(t, tab)
	assert.Equal(t, int64(1), tab.id)
	assert.Equal(t, [][]string{
		{attendance.NameLabel, attendance.IDLabel, "12/10", "19/10"},
		{"Nguyễn Văn A", "SV001", "X"},
		{"Trần Thị B", "SV002", "", "X"},
	}, tab.values)

	got, ok, err := s.Read(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, table(), got)

	// overwrite the existing tab
	next := attendance.Reconcile(table(), "26/10")
	require.NoError(t, s.Write(ctx, key, next))
	tabs, _ := fake.counts()
	assert.Equal(t, 2, tabs)
	got, _, err = s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestStore_EmptyTab(t *testing.T) {
	s, fake := setup(t)
	fake.setTab(Title(key), &fakeTab{id: 7})

	_, ok, err := s.Read(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_Failures(t *testing.T) {
	ctx := context.Background()
	s, fake := setup(t)
	require.NoError(t, s.Write(ctx, key, table()))

	fake.setFail(true)
	_, _, err := s.Read(ctx, key)
	assert.Error(t, err)
	assert.Error(t, s.Write(ctx, key, attendance.Reconcile(table(), "26/10")))

	fake.setFail(false)
	got, _, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, table(), got)
}
