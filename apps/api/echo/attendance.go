package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/roster"
	"github.com/trezcool/rollcall/core/tracker"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type attendanceApi struct {
	svc        *tracker.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAttendanceAPI(
	g *echo.Group,
	svc *tracker.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := attendanceApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	g.GET("/subjects", api.querySubjects)
	g.POST("/rosters", api.upload)

	ag := g.Group("/attendance")
	ag.GET("", api.retrieve)
	ag.PUT("", api.saveToday)
	ag.GET("/report", api.report)
	ag.POST("/report/email", api.mailReport)
}

// Handlers

func (api *attendanceApi) querySubjects(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, attendance.Subjects)
}

func (api *attendanceApi) upload(ctx echo.Context) error {
	var data UploadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UploadRequest")
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("missing roster file"), core.FieldError{Field: "file", Error: "this field is required"})
	}
	data.Filename = fh.Filename

	key, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = f.Close() }()

	rows, err := roster.ReadRows(f, fh.Filename)
	if err != nil {
		return err
	}

	sess, err := api.svc.Open(ctx.Request().Context(), key, &tracker.Upload{Filename: fh.Filename, Rows: rows})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	key, err := bindKey(ctx, api.validate)
	if err != nil {
		return err
	}
	sess, err := api.svc.Resume(ctx.Request().Context(), key)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) saveToday(ctx echo.Context) error {
	var data SaveTodayRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveTodayRequest")
	}
	key, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	sess, err := api.svc.SaveToday(ctx.Request().Context(), key, data.Students, data.Present)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *attendanceApi) report(ctx echo.Context) error {
	var data ReportQuery
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportQuery")
	}
	key, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	rows, err := api.svc.Report(ctx.Request().Context(), key)
	if err != nil {
		return err
	}
	if data.Format != formatXLSX {
		return ctx.JSON(http.StatusOK, rows)
	}

	var buf bytes.Buffer
	if err := attendance.WriteReport(&buf, key, rows); err != nil {
		return err
	}
	filename := fmt.Sprintf("%s_%s_report.xlsx", key.Class, key.SafeSubject())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}

func (api *attendanceApi) mailReport(ctx echo.Context) error {
	var data MailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailReportRequest")
	}
	key, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	to := make([]mail.Address, 0, len(data.To))
	for _, addr := range data.To {
		to = append(to, mail.Address{Address: addr})
	}
	if err := api.svc.MailReport(ctx.Request().Context(), key, to); err != nil {
		return err
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "the report is being sent"})
}

func bindKey(ctx echo.Context, validate *validator.Validate) (attendance.Key, error) {
	var data KeyQuery
	if err := ctx.Bind(&data); err != nil {
		return attendance.Key{}, errors.Wrap(err, "binding to KeyQuery")
	}
	return data.Validate(validate)
}
