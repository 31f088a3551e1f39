package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/roster"
)

// Upload is a roster spreadsheet sent by the operator.
type Upload struct {
	Filename string
	Rows     [][]string
}

// Key returns the attendance Key of the upload's class for `subject`.
func (up Upload) Key(subject string) attendance.Key {
	return attendance.Key{Class: attendance.ClassFromFilename(up.Filename), Subject: subject}
}

type Service struct {
	store   attendance.Store
	mailSvc core.EmailService
	logger  core.Logger
	loc     *time.Location
	nowFunc func() time.Time // mockable
}

func NewService(conf *core.Config, store attendance.Store, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		store:   store,
		mailSvc: mailSvc,
		logger:  logger,
		loc:     conf.Location(),
		nowFunc: time.Now,
	}
}

// NewServiceMock returns a Service whose clock is stopped at `now`.
func NewServiceMock(conf *core.Config, store attendance.Store, mailSvc core.EmailService, logger core.Logger, now time.Time) *Service {
	svc := NewService(conf, store, mailSvc, logger)
	svc.nowFunc = func() time.Time { return now }
	return svc
}

// Today returns the date-label of the current day in the configured timezone.
func (svc *Service) Today() string {
	return attendance.TodayLabel(svc.nowFunc().In(svc.loc))
}

func (svc *Service) read(ctx context.Context, key attendance.Key) (*attendance.Table, bool, error) {
	t, ok, err := svc.store.Read(ctx, key)
	if err != nil {
		return nil, false, &attendance.ReadError{Key: key, Err: err}
	}
	return t, ok, nil
}

// Open starts a Session on `key`.
// A persisted Table always wins and is reconciled with today; `up` is only used when nothing was
// recorded yet (the roster becomes the Table). Without persisted Table nor upload, ErrNoRoster is returned.
func (svc *Service) Open(ctx context.Context, key attendance.Key, up *Upload) (*Session, error) {
	today := svc.Today()

	persisted, ok, err := svc.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		if up != nil {
			svc.warnDrift(key, persisted, up.Rows, today)
		}
		return &Session{
			Key:       key,
			Today:     today,
			Persisted: true,
			Table:     attendance.Reconcile(persisted, today),
		}, nil
	}

	if up == nil {
		return nil, errors.WithStack(attendance.ErrNoRoster)
	}
	res, err := roster.Parse(up.Rows, today)
	if err != nil {
		return nil, err
	}
	svc.logger.Info(
		fmt.Sprintf(
			"roster loaded: header at row %d, name column %q (%s), student ID column %q (%s), %d students",
			res.HeaderRow+1,
			res.Labels[res.Columns.Name], res.Columns.NameRule,
			res.Labels[res.Columns.ID], res.Columns.IDRule,
			len(res.Table.Students),
		),
		key,
	)
	return &Session{Key: key, Today: today, Table: res.Table}, nil
}

// Resume opens a Session on an already persisted Table.
func (svc *Service) Resume(ctx context.Context, key attendance.Key) (*Session, error) {
	return svc.Open(ctx, key, nil)
}

func (svc *Service) warnDrift(key attendance.Key, persisted *attendance.Table, rows [][]string, today string) {
	uploaded, err := roster.Load(rows, today)
	if err != nil {
		svc.logger.Warn("ignoring unreadable roster upload: attendance already recorded", key, err)
		return
	}
	if drift := attendance.RosterDrift(persisted.Students, uploaded.Students); drift != "" {
		svc.logger.Warn("uploaded roster differs from the recorded one, keeping the recorded roster:\n"+drift, key)
	}
}

// Save writes the Session's Table, replacing the persisted one.
func (svc *Service) Save(ctx context.Context, s *Session) error {
	if err := svc.store.Write(ctx, s.Key, s.Table); err != nil {
		return &attendance.WriteError{Key: s.Key, Err: err}
	}
	s.Persisted = true
	svc.logger.Info(fmt.Sprintf("attendance saved: %d students, %d dates", len(s.Table.Students), len(s.Table.Dates)), s.Key)
	return nil
}

// SaveToday records today's attendance of `key` and writes it.
// `students` is the roster the operator worked on; it must match the persisted roster when there is one
// (identity columns are read-only), otherwise it becomes the roster of the new Table.
func (svc *Service) SaveToday(ctx context.Context, key attendance.Key, students []attendance.Student, present []bool) (*Session, error) {
	s, err := svc.Resume(ctx, key)
	switch {
	case errors.Cause(err) == attendance.ErrNoRoster:
		if len(students) == 0 {
			return nil, err
		}
		today := svc.Today()
		s = &Session{Key: key, Today: today, Table: attendance.NewTable(students, today)}
	case err != nil:
		return nil, err
	case students != nil && !sameStudents(s.Table.Students, students):
		return nil, errors.WithStack(attendance.ErrRosterChanged)
	}

	if err := s.ApplyToday(present); err != nil {
		return nil, err
	}
	if err := svc.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Report returns the attendance statistics of a persisted Table.
func (svc *Service) Report(ctx context.Context, key attendance.Key) ([]attendance.ReportRow, error) {
	s, err := svc.Resume(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.Report(), nil
}

func sameStudents(a, b []attendance.Student) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
