package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/roster"
	"github.com/trezcool/rollcall/core/tracker"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *roster.ParseError:
			code = http.StatusUnprocessableEntity
			message = tracker.Describe(origErr)
			if !errors.Is(origErr, roster.ErrHeaderNotFound) {
				logger.Error("roster columns could not be resolved", origErr)
			}
		case *attendance.ReadError, *attendance.WriteError:
			code = http.StatusBadGateway
			message = tracker.Describe(origErr)
			logger.Error(origErr.Error(), errors.Wrap(err, "storage failure"), keyOf(origErr))
		default:
			switch origErr {
			case roster.ErrUnreadableFile, roster.ErrUnsupportedFormat:
				code = http.StatusBadRequest
				message = tracker.Describe(origErr)
			case attendance.ErrNoRoster:
				code = http.StatusNotFound
				message = tracker.Describe(origErr)
			case attendance.ErrRosterChanged:
				code = http.StatusConflict
				message = tracker.Describe(origErr)
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func keyOf(err error) attendance.Key {
	switch e := err.(type) {
	case *attendance.ReadError:
		return e.Key
	case *attendance.WriteError:
		return e.Key
	}
	return attendance.Key{}
}
