package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/tracker"
	"github.com/trezcool/rollcall/services/email"
	"github.com/trezcool/rollcall/storage/inmem"
	"github.com/trezcool/rollcall/tests"
)

var pythonKey = attendance.Key{Class: "K65-CNTT", Subject: attendance.SubjectPython}

func setup(t *testing.T) (*commandLine, *inmemdb.Store, *bytes.Buffer) {
	t.Helper()

	conf := testutil.NewConfig()
	store := inmemdb.New()
	out := new(bytes.Buffer)

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)

	isTerminalFunc = func(int) bool { return false }

	return &commandLine{
		conf:       conf,
		svc:        tracker.NewServiceMock(conf, store, emailsvc.NewConsoleServiceMock(conf), new(testutil.Logger), testutil.Today),
		validate:   validate,
		translator: translator,
		out:        out,
	}, store, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				require.NoError(t, err)
				if tt.wantOut != "" {
					assert.Equal(t, tt.wantOut, out.String())
				}
			}
		})
	}
}

func writeRoster(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	content := testutil.XLSX(t, [][]string{
		{"STT", "Họ và tên", "Mã SV", "Ngày tháng"},
		{"1", "Nguyễn Văn A", "SV001", "01/09"},
		{"2", "Trần Thị B", "SV002", "01/09"},
	})
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func Test_commandLine_run(t *testing.T) {
	cli, _, out := setup(t)
	runCLITests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "import: no args", args: []string{"import"}, wantErr: errHelp},
		{name: "import: no subject", args: []string{"import", "-file", "roster.xlsx"}, wantErr: errHelp},
		{name: "import: unknown flag", args: []string{"import", "-lol"}, wantErr: errHelp},
		{name: "mark: no args", args: []string{"mark"}, wantErr: errHelp},
		{name: "report: no class", args: []string{"report", "-subject", "Python"}, wantErr: errHelp},
		{name: "migrate: no command", args: []string{"migrate"}, wantErr: errHelp},
	})
}

func Test_commandLine_importRoster(t *testing.T) {
	cli, store, out := setup(t)
	path := writeRoster(t, "K65-CNTT.xlsx")

	runCLITests(t, cli, out, []cliTest{
		{
			name: "file not found", args: []string{"import", "-file", "roster.pdf", "-subject", "Python"},
			wantErrStr: "opening roster: open roster.pdf: no such file or directory",
		},
		{
			name: "imported", args: []string{"import", "-file", path, "-subject", "python"},
			wantOut: "K65-CNTT/Python: 2 students imported\n",
		},
		{
			name: "already recorded", args: []string{"import", "-file", path, "-subject", "Python"},
			wantOut: "K65-CNTT/Python: attendance already recorded for 2 students, roster kept\n",
		},
	})

	tbl, ok, err := store.Read(context.Background(), pythonKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testutil.Students("Nguyễn Văn A", "SV001", "Trần Thị B", "SV002"), tbl.Students)
	assert.Equal(t, []string{"19/10"}, tbl.Dates)
	assert.Equal(t, [][]bool{{false}, {false}}, tbl.Marks)
}

func Test_commandLine_mark(t *testing.T) {
	cli, store, out := setup(t)
	require.NoError(t, store.Write(context.Background(), pythonKey, attendance.NewTable(
		testutil.Students("Nguyễn Văn A", "SV001", "Trần Thị B", "SV002"), "12/10",
	)))

	runCLITests(t, cli, out, []cliTest{
		{
			name: "nothing recorded", args: []string{"mark", "-class", "K65-TOAN", "-subject", "Python"},
			wantErrStr: tracker.Describe(attendance.ErrNoRoster),
		},
		{
			name: "unknown ID", args: []string{"mark", "-class", "K65-CNTT", "-subject", "Python", "-present", "SV001,SV404"},
			wantErrStr: `unknown student ID "SV404"`,
		},
		{
			name: "marked", args: []string{"mark", "-class", "K65-CNTT", "-subject", "Python", "-present", " SV002 ,"},
			wantOut: "K65-CNTT/Python: 1/2 present on 19/10\n",
		},
	})

	tbl, _, err := store.Read(context.Background(), pythonKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"12/10", "19/10"}, tbl.Dates)
	assert.Equal(t, [][]bool{{false, false}, {false, true}}, tbl.Marks)
}

func Test_commandLine_report(t *testing.T) {
	cli, store, out := setup(t)
	tbl := attendance.NewTable(testutil.Students("Nguyễn Văn A", "SV001", "Trần Thị B", "SV002"), "12/10", "19/10")
	tbl.Marks = [][]bool{{true, true}, {true, false}}
	require.NoError(t, store.Write(context.Background(), pythonKey, tbl))
	xlsxPath := filepath.Join(t.TempDir(), "report.xlsx")

	runCLITests(t, cli, out, []cliTest{
		{
			name: "csv", args: []string{"report", "-class", "K65-CNTT", "-subject", "Python"},
			wantOut: "Họ tên,Mã SV,Số buổi học,Số buổi vắng,Điểm (%)\n" +
				"Nguyễn Văn A,SV001,2,0,100.0\n" +
				"Trần Thị B,SV002,1,1,50.0\n",
		},
		{
			name: "unknown subject", args: []string{"report", "-class", "K65-CNTT", "-subject", "Cooking"},
			wantErrStr: "subject: unknown subject",
		},
		{name: "xlsx", args: []string{"report", "-class", "K65-CNTT", "-subject", "Python", "-xlsx", xlsxPath}},
	})

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(attendance.SubjectPython)
	require.NoError(t, err)
	assert.Equal(t, []string{"Trần Thị B", "SV002", "1", "1", "50"}, rows[2])

	t.Run("terminal", func(t *testing.T) {
		isTerminalFunc = func(int) bool { return true }
		defer func() { isTerminalFunc = func(int) bool { return false } }()

		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "report", "-class", "K65-CNTT", "-subject", "Python"}))
		assert.Contains(t, out.String(), "Nguyễn Văn A  SV001")
		assert.NotContains(t, out.String(), ",")
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{
			name: "wrong backend", args: []string{"migrate", "up"},
			wantErrStr: `migrations only apply to the "postgres" storage backend (got "memory")`,
		},
	})

	cli.conf.Storage.Backend = core.BackendPostgres
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, out, []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
}
