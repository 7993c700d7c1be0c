package http

import (
	"net/http"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
)

var statusCodes = map[domain.Status]int{
	domain.StatusSuccess:      http.StatusOK,
	domain.StatusCreated:      http.StatusCreated,
	domain.StatusNoContent:    http.StatusNoContent,
	domain.StatusBadRequest:   http.StatusBadRequest,
	domain.StatusUnauthorized: http.StatusUnauthorized,
	domain.StatusForbidden:    http.StatusForbidden,
	domain.StatusNotFound:     http.StatusNotFound,
	domain.StatusServerError:  http.StatusInternalServerError,
}

// httpStatus maps a result status onto its HTTP code.
func httpStatus(s domain.Status) int {
	if code, ok := statusCodes[s]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func fieldMessages(errs []domain.FieldError) []httpx.FieldMessage {
	out := make([]httpx.FieldMessage, 0, len(errs))
	for _, e := range errs {
		out = append(out, httpx.FieldMessage{Field: e.Field, Message: e.Message})
	}
	return out
}

// writeFailure answers a result that did not succeed. Field errors travel in
// an errorsMessages body; statuses without detail are bodiless.
func writeFailure[T any](w http.ResponseWriter, res domain.Result[T]) {
	code := httpStatus(res.Status)
	if len(res.Errors) > 0 {
		httpx.WriteErrors(w, code, fieldMessages(res.Errors)...)
		return
	}
	httpx.WriteStatus(w, code)
}

// writeResult answers with data on success. render turns the payload into
// its wire form and may be nil for bodiless results.
func writeResult[T any](w http.ResponseWriter, res domain.Result[T], render func(T) any) {
	if !res.Succeeded() {
		writeFailure(w, res)
		return
	}
	code := httpStatus(res.Status)
	if render == nil || code == http.StatusNoContent {
		httpx.WriteStatus(w, code)
		return
	}
	httpx.WriteJSON(w, code, render(res.Data))
}
