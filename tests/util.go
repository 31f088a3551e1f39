// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/storage/database"
)

// Today is the frozen day of the tests: "19/10".
var Today = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

func NewConfig() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		AppName:          "Rollcall",
		Timezone:         "UTC",
		DefaultFromEmail: "noreply@rollcall.test",
	}
	conf.Storage.Backend = core.BackendMemory
	return conf
}

// Students builds a roster from (name, id) pairs.
func Students(nameIDs ...string) []attendance.Student {
	students := make([]attendance.Student, 0, len(nameIDs)/2)
	for i := 0; i+1 < len(nameIDs); i += 2 {
		students = append(students, attendance.Student{Name: nameIDs[i], ID: nameIDs[i+1]})
	}
	return students
}

// XLSX renders `rows` as the first sheet of a workbook.
func XLSX(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("XLSX() failed: %v", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err = f.SetSheetRow(sheet, cellName, &values); err != nil {
			t.Fatalf("XLSX() failed: %v", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("XLSX() failed: %v", err)
	}
	return buf.Bytes()
}

// OpenDB connects to the test database described by the TEST_DATABASE_* env vars and migrates it.
// The test is skipped when TEST_DATABASE_HOST is unset or the database cannot be reached.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()

	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST is not set")
	}
	conf := NewConfig()
	conf.Database.Engine = "postgres"
	conf.Database.Host = host
	conf.Database.Port = envOr("TEST_DATABASE_PORT", "5432")
	conf.Database.Name = envOr("TEST_DATABASE_NAME", "rollcall_test")
	conf.Database.User = envOr("TEST_DATABASE_USER", "postgres")
	conf.Database.Password = os.Getenv("TEST_DATABASE_PASSWORD")
	conf.Database.DisableTLS = true

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.Open(ctx, conf)
	if err != nil {
		t.Skipf("database unavailable: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE attendance_sheet CASCADE"); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Logger records the messages it is given.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s", level, msg))
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

// Count returns the number of messages logged at `level`.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	prefix := level + ": "
	for _, m := range l.Messages {
		if len(m) >= len(prefix) && m[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
