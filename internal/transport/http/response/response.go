package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"sweet-shop/internal/domain"
)

// Resp is the body of every error reply. Successful replies are the bare
// resource.
type Resp struct {
	Message string `json:"message"`
}

// Error builds an error body; an empty msg uses the status default.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Message: msg}
}

// Message is the shape of informational replies such as delete.
func Message(msg string) Resp { return Resp{Message: msg} }

// FromError maps a service or binding error to a status and body. The bool
// reports whether the error was unexpected and should be logged.
func FromError(err error) (int, Resp, bool) {
	var (
		verrs  validator.ValidationErrors
		synErr *json.SyntaxError
		typErr *json.UnmarshalTypeError
		mbErr  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrDuplicateEmail):
		return CodeBadRequest, Error(CodeBadRequest, domain.Message(err)), false
	case errors.Is(err, domain.ErrInvalidCredentials):
		return CodeUnauthorized, Error(CodeUnauthorized, domain.Message(err)), false
	case errors.Is(err, domain.ErrNotFound):
		return CodeNotFound, Error(CodeNotFound, domain.Message(err)), false
	case errors.As(err, &verrs):
		return CodeBadRequest, Error(CodeBadRequest, validationMessage(verrs)), false
	case errors.As(err, &typErr):
		return CodeBadRequest, Error(CodeBadRequest, fmt.Sprintf("%s: must be a %s", typErr.Field, typErr.Type)), false
	case errors.As(err, &mbErr):
		return CodeBadRequest, Error(CodeBadRequest, "Request body too large"), false
	case errors.As(err, &synErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return CodeBadRequest, Error(CodeBadRequest, "Malformed JSON body"), false
	}
	return CodeServerError, Error(CodeServerError, ""), true
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+": "+fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return "is invalid"
	}
}
