package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/rollcall/core"
)

var (
	subjectTag  = "subject"
	subjectText = "unknown subject"
)

// InitValidators registers the attendance validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subjectTag, subjectValidation)
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)
}

func subjectValidation(fl validator.FieldLevel) bool {
	_, err := ParseSubject(fl.Field().String())
	return err == nil
}
