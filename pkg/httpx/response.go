package httpx

import (
	"encoding/json"
	"net/http"
)

// FieldMessage is one entry of an error body.
type FieldMessage struct {
	Message string `json:"message"`
	Field   string `json:"field"`
}

// ErrorsMessages is the body of every 4xx response that carries detail:
//
//	{"errorsMessages":[{"message":"...","field":"..."}]}
type ErrorsMessages struct {
	ErrorsMessages []FieldMessage `json:"errorsMessages"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrors writes an errorsMessages body. A nil slice is written as [].
func WriteErrors(w http.ResponseWriter, code int, errs ...FieldMessage) {
	if errs == nil {
		errs = []FieldMessage{}
	}
	WriteJSON(w, code, ErrorsMessages{ErrorsMessages: errs})
}

// WriteStatus writes a bodiless response.
func WriteStatus(w http.ResponseWriter, code int) {
	NoCache(w)
	w.WriteHeader(code)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Token responses must never be cached.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
