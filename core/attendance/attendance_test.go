package attendance

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rollcall/core"
)

var (
	studentA = Student{Name: "Nguyễn Văn A", ID: "SV001"}
	studentB = Student{Name: "Trần Thị B", ID: "SV002"}
	studentC = Student{Name: "Lê Văn C", ID: "SV003"}
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Python", want: SubjectPython},
		{in: "  python ", want: SubjectPython},
		{in: "c++", want: SubjectCpp},
		{in: "TOÁN CAO CẤP", want: SubjectMath},
		{in: "Cooking", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSubject(tt.in)
			if tt.wantErr {
				assert.Equal(t, errUnknownSubject, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassFromFilename(t *testing.T) {
	tests := map[string]string{
		"K65-CNTT.xlsx":             "K65-CNTT",
		"/tmp/uploads/K65-CNTT.xls": "K65-CNTT",
		`C:\Users\gv\K65 CNTT.csv`:  "K65 CNTT",
		"K65.v2.xlsx":               "K65.v2",
		"K65":                       "K65",
	}
	for in, want := range tests {
		assert.Equal(t, want, ClassFromFilename(in), in)
	}
}

func TestTodayLabel(t *testing.T) {
	assert.Equal(t, "05/03", TodayLabel(time.Date(2026, time.March, 5, 23, 59, 0, 0, time.UTC)))
}

func TestKey(t *testing.T) {
	key := Key{Class: "K65-CNTT", Subject: SubjectEnglish}
	assert.Equal(t, "K65-CNTT/Tiếng Anh chuyên ngành", key.String())
	assert.Equal(t, "Tiếng_Anh_chuyên_ngành", key.SafeSubject())
}

func TestKeyValidation(t *testing.T) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		key     Key
		wantErr map[string]string
	}{
		{name: "valid", key: Key{Class: "K65-CNTT", Subject: "python"}},
		{name: "empty", key: Key{}, wantErr: map[string]string{"class": "this field is required", "subject": "this field is required"}},
		{name: "path class", key: Key{Class: "../K65", Subject: SubjectPython}, wantErr: map[string]string{"class": "class must be a plain file name (no path separators)"}},
		{name: "dot class", key: Key{Class: "..", Subject: SubjectPython}, wantErr: map[string]string{"class": "class must be a plain file name (no path separators)"}},
		{name: "unknown subject", key: Key{Class: "K65", Subject: "Cooking"}, wantErr: map[string]string{"subject": "unknown subject"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
			got := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				got[vErr.Field()] = vErr.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable([]Student{studentA, studentB}, "12/10", "19/10", "12/10")
	assert.Equal(t, []string{"12/10", "19/10"}, tbl.Dates)
	assert.Equal(t, [][]bool{{false, false}, {false, false}}, tbl.Marks)

	tbl.Marks[1][1] = true
	assert.True(t, tbl.Present(1, "19/10"))
	assert.False(t, tbl.Present(0, "19/10"))
	assert.False(t, tbl.Present(1, "26/10"))
	assert.False(t, tbl.Present(2, "19/10"))

	c := tbl.Clone()
	c.Marks[1][1] = false
	c.Students[0].Name = "X"
	assert.True(t, tbl.Present(1, "19/10"))
	assert.Equal(t, studentA, tbl.Students[0])
}

func TestReconcile(t *testing.T) {
	persisted := &Table{
		Students: []Student{studentA, studentB},
		Dates:    []string{"05/10", "12/10"},
		Marks:    [][]bool{{true, false}, {true, true}},
	}

	t.Run("today appended", func(t *testing.T) {
		got := Reconcile(persisted, "19/10")
		assert.Equal(t, []string{"05/10", "12/10", "19/10"}, got.Dates)
		assert.Equal(t, [][]bool{{true, false, false}, {true, true, false}}, got.Marks)
		assert.Equal(t, persisted.Students, got.Students)
		// persisted is not modified
		assert.Equal(t, []string{"05/10", "12/10"}, persisted.Dates)
	})

	t.Run("today already recorded", func(t *testing.T) {
		got := Reconcile(persisted, "12/10")
		assert.Equal(t, persisted, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Reconcile(persisted, "19/10")
		assert.Equal(t, once, Reconcile(once, "19/10"))
	})

	t.Run("ragged marks", func(t *testing.T) {
		ragged := &Table{
			Students: []Student{studentA, studentB, studentC},
			Dates:    []string{"12/10"},
			Marks:    [][]bool{{true, true, true}, {}},
		}
		got := Reconcile(ragged, "19/10")
		assert.Equal(t, [][]bool{{true, false}, {false, false}, {false, false}}, got.Marks)
	})

	t.Run("empty roster", func(t *testing.T) {
		got := Reconcile(&Table{}, "19/10")
		assert.Equal(t, []string{"19/10"}, got.Dates)
		assert.Empty(t, got.Students)
	})
}

func TestEncodeDecode(t *testing.T) {
	tbl := &Table{
		Students: []Student{studentA, studentB},
		Dates:    []string{"12/10", "19/10"},
		Marks:    [][]bool{{true, false}, {false, true}},
	}
	raw := Encode(tbl)
	assert.Equal(t, []string{NameLabel, IDLabel, "12/10", "19/10"}, raw.Header)
	assert.Equal(t, [][]string{
		{"Nguyễn Văn A", "SV001", "X", ""},
		{"Trần Thị B", "SV002", "", "X"},
	}, raw.Rows)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, tbl, got)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawTable
		want    *Table
		wantErr bool
	}{
		{name: "too few columns", raw: RawTable{Header: []string{"HỌ TÊN"}}, wantErr: true},
		{
			name: "header only",
			raw:  RawTable{Header: []string{"HỌ TÊN", "MÃ SV", "12/10"}},
			want: &Table{Dates: []string{"12/10"}},
		},
		{
			name: "native booleans, short rows & blank rows",
			raw: RawTable{
				Header: []string{"Name", "Id", "12/10", "19/10"},
				Rows: [][]string{
					{"Nguyễn Văn A", "SV001", "TRUE", "FALSE"},
					{},
					{"Trần Thị B", "SV002", "x"},
				},
			},
			want: &Table{
				Students: []Student{studentA, studentB},
				Dates:    []string{"12/10", "19/10"},
				Marks:    [][]bool{{true, false}, {true, false}},
			},
		},
		{
			name: "duplicate & empty date labels",
			raw: RawTable{
				Header: []string{"HỌ TÊN", "MÃ SV", "12/10", "", "12/10", "19/10"},
				Rows:   [][]string{{"Nguyễn Văn A", "SV001", "", "X", "X", "X"}},
			},
			want: &Table{
				Students: []Student{studentA},
				Dates:    []string{"12/10", "19/10"},
				Marks:    [][]bool{{false, true}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if tt.wantErr {
				assert.Equal(t, errMalformedTable, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateReport(t *testing.T) {
	t.Run("three students", func(t *testing.T) {
		tbl := &Table{
			Students: []Student{studentA, studentB, studentC},
			Dates:    []string{"05/10", "12/10", "19/10"},
			Marks:    [][]bool{{true, true, true}, {true, false, false}, {false, false, false}},
		}
		assert.Equal(t, []ReportRow{
			{Name: "Nguyễn Văn A", StudentID: "SV001", Attended: 3, Absent: 0, Percentage: 100},
			{Name: "Trần Thị B", StudentID: "SV002", Attended: 1, Absent: 2, Percentage: 33.3},
			{Name: "Lê Văn C", StudentID: "SV003", Attended: 0, Absent: 3, Percentage: 0},
		}, GenerateReport(tbl))
	})

	t.Run("two thirds rounds up", func(t *testing.T) {
		tbl := NewTable([]Student{studentA}, "05/10", "12/10", "19/10")
		tbl.Marks[0][0], tbl.Marks[0][1] = true, true
		assert.Equal(t, 66.7, GenerateReport(tbl)[0].Percentage)
	})

	t.Run("no sessions", func(t *testing.T) {
		tbl := NewTable([]Student{studentA})
		assert.Equal(t, []ReportRow{{Name: "Nguyễn Văn A", StudentID: "SV001"}}, GenerateReport(tbl))
	})

	t.Run("no students", func(t *testing.T) {
		assert.Empty(t, GenerateReport(NewTable(nil, "19/10")))
	})
}

func TestRosterDrift(t *testing.T) {
	assert.Empty(t, RosterDrift([]Student{studentA, studentB}, []Student{studentA, studentB}))
	assert.Empty(t, RosterDrift(nil, nil))

	drift := RosterDrift([]Student{studentA, studentB}, []Student{studentA, studentC})
	assert.Contains(t, drift, "--- persisted")
	assert.Contains(t, drift, "+++ uploaded")
	assert.Contains(t, drift, "-SV002\tTrần Thị B")
	assert.Contains(t, drift, "+SV003\tLê Văn C")

	// same lines in another order drift too
	assert.NotEmpty(t, RosterDrift([]Student{studentA, studentB}, []Student{studentB, studentA}))
}

func TestWriteReport(t *testing.T) {
	key := Key{Class: "K65-CNTT", Subject: SubjectDataScience}
	rows := []ReportRow{{Name: "Nguyễn Văn A", StudentID: "SV001", Attended: 2, Absent: 1, Percentage: 66.7}}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, key, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Khoa_học_dữ_liệu"}, f.GetSheetList())
	got, err := f.GetRows("Khoa_học_dữ_liệu")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Họ tên", "Mã SV", "Số buổi học", "Số buổi vắng", "Điểm (%)"},
		{"Nguyễn Văn A", "SV001", "2", "1", "66.7"},
	}, got)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", sheetName(""))
	assert.Len(t, []rune(sheetName("Tiếng_Anh_chuyên_ngành_và_kỹ_năng_mềm")), 31)
}

func TestErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	key := Key{Class: "K65", Subject: SubjectPython}

	var err error = &ReadError{Key: key, Err: cause}
	assert.Equal(t, "reading attendance of K65/Python: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, cause))

	err = &WriteError{Key: key, Err: cause}
	assert.Equal(t, "writing attendance of K65/Python: quota exceeded", err.Error())
	assert.True(t, errors.Is(err, cause))
	// errors.Cause stops at the storage error
	assert.Equal(t, err, errors.Cause(errors.Wrap(err, "saving")))
}
