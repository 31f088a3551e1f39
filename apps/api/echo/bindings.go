package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
)

type (
	// KeyQuery selects a class+subject through query params.
	KeyQuery struct {
		Class   string `query:"class" validate:"required,classname"`
		Subject string `query:"subject" validate:"required,subject"`
	}

	// UploadRequest is the multipart form of a roster upload.
	// Class defaults to the uploaded file name without its extension.
	UploadRequest struct {
		Class    string `form:"class" json:"class" validate:"required,classname"`
		Subject  string `form:"subject" json:"subject" validate:"required,subject"`
		Filename string `form:"-" json:"-"`
	}

	SaveTodayRequest struct {
		Class    string               `json:"class" validate:"required,classname"`
		Subject  string               `json:"subject" validate:"required,subject"`
		Students []attendance.Student `json:"students"`
		Present  []bool               `json:"present" validate:"required"`
	}

	ReportQuery struct {
		Class   string `query:"class" validate:"required,classname"`
		Subject string `query:"subject" validate:"required,subject"`
		Format  string `query:"format" validate:"omitempty,oneof=json xlsx"`
	}

	MailReportRequest struct {
		Class   string   `json:"class" validate:"required,classname"`
		Subject string   `json:"subject" validate:"required,subject"`
		To      []string `json:"to" validate:"required,min=1,dive,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

// key cleans `class` and canonicalizes `subject`; callers validate first.
func key(class, subject string) attendance.Key {
	k := attendance.Key{Class: core.CleanString(class), Subject: core.CleanString(subject)}
	if subj, err := attendance.ParseSubject(k.Subject); err == nil {
		k.Subject = subj
	}
	return k
}

func (q *KeyQuery) Validate(validate *validator.Validate) (attendance.Key, error) {
	q.Class = core.CleanString(q.Class)
	if err := validate.Struct(q); err != nil {
		return attendance.Key{}, err
	}
	return key(q.Class, q.Subject), nil
}

func (ur *UploadRequest) Validate(validate *validator.Validate) (attendance.Key, error) {
	ur.Class = core.CleanString(ur.Class)
	if ur.Class == "" {
		ur.Class = attendance.ClassFromFilename(ur.Filename)
	}
	if err := validate.Struct(ur); err != nil {
		return attendance.Key{}, err
	}
	return key(ur.Class, ur.Subject), nil
}

func (sr *SaveTodayRequest) Validate(validate *validator.Validate) (attendance.Key, error) {
	sr.Class = core.CleanString(sr.Class)
	if err := validate.Struct(sr); err != nil {
		return attendance.Key{}, err
	}
	return key(sr.Class, sr.Subject), nil
}

func (rq *ReportQuery) Validate(validate *validator.Validate) (attendance.Key, error) {
	rq.Class = core.CleanString(rq.Class)
	rq.Format = core.CleanString(rq.Format, true /* lower */)
	if rq.Format == "" {
		rq.Format = formatJSON
	}
	if err := validate.Struct(rq); err != nil {
		return attendance.Key{}, err
	}
	return key(rq.Class, rq.Subject), nil
}

func (mr *MailReportRequest) Validate(validate *validator.Validate) (attendance.Key, error) {
	mr.Class = core.CleanString(mr.Class)
	for i, addr := range mr.To {
		mr.To[i] = core.CleanString(addr, true /* lower */)
	}
	if err := validate.Struct(mr); err != nil {
		return attendance.Key{}, err
	}
	return key(mr.Class, mr.Subject), nil
}
