package tracker

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MailReport sends the attendance report of `key` to `to`, as a plain text table with an .xlsx attachment.
func (svc *Service) MailReport(ctx context.Context, key attendance.Key, to []mail.Address) error {
	rows, err := svc.Report(ctx, key)
	if err != nil {
		return err
	}

	msg, err := reportMessage(key, rows, to)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func reportMessage(key attendance.Key, rows []attendance.ReportRow, to []mail.Address) (*core.EmailMessage, error) {
	var body bytes.Buffer
	tw := tabwriter.NewWriter(&body, 0, 4, 2, ' ', 0)
	for i, h := range attendance.ReportHeader {
		if i > 0 {
			_, _ = fmt.Fprint(tw, "\t")
		}
		_, _ = fmt.Fprint(tw, h)
	}
	_, _ = fmt.Fprintln(tw)
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\n", r.Name, r.StudentID, r.Attended, r.Absent, r.Percentage)
	}
	if err := tw.Flush(); err != nil {
		return nil, errors.Wrap(err, "rendering report")
	}

	msg := &core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("Attendance report: %s - %s", key.Class, key.Subject),
		BodyStr: body.String(),
	}

	var xlsx bytes.Buffer
	if err := attendance.WriteReport(&xlsx, key, rows); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s_%s.xlsx", key.Class, key.SafeSubject())
	if err := msg.Attach(&xlsx, filename, xlsxContentType); err != nil {
		return nil, errors.Wrap(err, "attaching report")
	}
	return msg, nil
}
