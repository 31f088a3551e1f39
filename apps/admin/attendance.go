package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/roster"
	"github.com/trezcool/rollcall/core/tracker"
)

func (cli *commandLine) key(class, subject string) (attendance.Key, error) {
	key := attendance.Key{Class: core.CleanString(class), Subject: core.CleanString(subject)}
	if err := cli.validate.Struct(key); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			msgs := make([]string, 0, len(vErrs))
			for _, vErr := range vErrs {
				msgs = append(msgs, vErr.Field()+": "+vErr.Translate(cli.translator))
			}
			return attendance.Key{}, errors.New(strings.Join(msgs, "; "))
		}
		return attendance.Key{}, err
	}
	key.Subject, _ = attendance.ParseSubject(key.Subject)
	return key, nil
}

// importRoster records the roster found in `path`, with an all-absent column for today.
// Nothing changes when attendance is already recorded for the class.
func (cli *commandLine) importRoster(ctx context.Context, path, class, subject string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening roster")
	}
	defer func() { _ = f.Close() }()

	rows, err := roster.ReadRows(f, path)
	if err != nil {
		return errors.New(tracker.Describe(err))
	}
	up := &tracker.Upload{Filename: filepath.Base(path), Rows: rows}
	if class == "" {
		class = up.Key(subject).Class
	}
	key, err := cli.key(class, subject)
	if err != nil {
		return err
	}

	sess, err := cli.svc.Open(ctx, key, up)
	if err != nil {
		return errors.New(tracker.Describe(err))
	}
	if sess.Persisted {
		_, _ = fmt.Fprintf(cli.out, "%s: attendance already recorded for %d students, roster kept\n", key, len(sess.Table.Students))
		return nil
	}
	if err = cli.svc.Save(ctx, sess); err != nil {
		return errors.New(tracker.Describe(err))
	}
	_, _ = fmt.Fprintf(cli.out, "%s: %d students imported\n", key, len(sess.Table.Students))
	return nil
}

// mark records today's attendance: the students whose ID is in `present` attended, the others did not.
func (cli *commandLine) mark(ctx context.Context, class, subject string, present []string) error {
	key, err := cli.key(class, subject)
	if err != nil {
		return err
	}
	sess, err := cli.svc.Resume(ctx, key)
	if err != nil {
		return errors.New(tracker.Describe(err))
	}

	ids := make(map[string]bool, len(present))
	for _, id := range present {
		ids[id] = false
	}
	marks := make([]bool, len(sess.Table.Students))
	var count int
	for i, st := range sess.Table.Students {
		if _, ok := ids[st.ID]; ok {
			marks[i] = true
			ids[st.ID] = true
			count++
		}
	}
	for _, id := range present {
		if !ids[id] {
			return errors.Errorf("unknown student ID %q", id)
		}
	}

	if sess, err = cli.svc.SaveToday(ctx, key, nil, marks); err != nil {
		return errors.New(tracker.Describe(err))
	}
	_, _ = fmt.Fprintf(cli.out, "%s: %d/%d present on %s\n", key, count, len(marks), sess.Today)
	return nil
}

// report prints the attendance report as a table on a terminal and as CSV otherwise,
// or exports it to `xlsxPath`.
func (cli *commandLine) report(ctx context.Context, class, subject, xlsxPath string) error {
	key, err := cli.key(class, subject)
	if err != nil {
		return err
	}
	rows, err := cli.svc.Report(ctx, key)
	if err != nil {
		return errors.New(tracker.Describe(err))
	}

	if xlsxPath != "" {
		return exportReport(xlsxPath, key, rows)
	}

	header := make([]string, len(attendance.ReportHeader))
	for i, h := range attendance.ReportHeader {
		header[i] = fmt.Sprint(h)
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Name, r.StudentID, strconv.Itoa(r.Attended), strconv.Itoa(r.Absent), strconv.FormatFloat(r.Percentage, 'f', 1, 64),
		})
	}

	if isTerminalFunc(cli.outFd) {
		tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		for _, rec := range append([][]string{header}, records...) {
			for i, c := range rec {
				if i > 0 {
					_, _ = fmt.Fprint(tw, "\t")
				}
				_, _ = fmt.Fprint(tw, c)
			}
			_, _ = fmt.Fprintln(tw)
		}
		return tw.Flush()
	}

	w := csv.NewWriter(cli.out)
	if err = w.Write(header); err != nil {
		return err
	}
	if err = w.WriteAll(records); err != nil {
		return errors.Wrap(err, "writing report")
	}
	return nil
}

func exportReport(path string, key attendance.Key, rows []attendance.ReportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating report file")
	}
	if err = attendance.WriteReport(f, key, rows); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing report file")
}
