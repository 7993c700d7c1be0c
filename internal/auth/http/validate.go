package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 64 << 10

var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return loginPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

var errorMessages = map[string]string{
	"required": "%s should not be empty",
	"email":    "%s must be an email",
	"min":      "%s must be longer than or equal to %s characters",
	"max":      "%s must be shorter than or equal to %s characters",
	"login":    "%s may contain only letters, digits, '_' and '-'",
}

func parseMessage(e validator.FieldError) string {
	msg, ok := errorMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", e.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// validateStruct returns one message per failing field, in declaration order.
func validateStruct(s any) []httpx.FieldMessage {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []httpx.FieldMessage{{Message: err.Error()}}
	}

	out := make([]httpx.FieldMessage, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, e := range verrs {
		if seen[e.Field()] {
			continue
		}
		seen[e.Field()] = true
		out = append(out, httpx.FieldMessage{Field: e.Field(), Message: parseMessage(e)})
	}
	return out
}

// trimmer is implemented by request bodies whose text fields are trimmed
// before validation.
type trimmer interface {
	trim()
}

// decodeBody reads a JSON body into dst and validates it. On failure it has
// already answered 400 and returns false.
func decodeBody[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		httpx.WriteErrors(w, http.StatusBadRequest, httpx.FieldMessage{Message: "request body must be a JSON object"})
		return false
	}

	if t, ok := any(dst).(trimmer); ok {
		t.trim()
	}

	if errs := validateStruct(dst); len(errs) > 0 {
		httpx.WriteErrors(w, http.StatusBadRequest, errs...)
		return false
	}
	return true
}

// Local copies of the wire types so trimming stays a transport concern.

type loginBody authsdk.LoginRequest

func (b *loginBody) trim() { b.LoginOrEmail = strings.TrimSpace(b.LoginOrEmail) }

type registrationBody authsdk.RegistrationRequest

func (b *registrationBody) trim() {
	b.Login = strings.TrimSpace(b.Login)
	b.Email = strings.TrimSpace(b.Email)
}

type confirmationBody authsdk.ConfirmationRequest

func (b *confirmationBody) trim() { b.Code = strings.TrimSpace(b.Code) }

type emailBody authsdk.EmailRequest

func (b *emailBody) trim() { b.Email = strings.TrimSpace(b.Email) }

type newPasswordBody authsdk.NewPasswordRequest

func (b *newPasswordBody) trim() { b.RecoveryCode = strings.TrimSpace(b.RecoveryCode) }
