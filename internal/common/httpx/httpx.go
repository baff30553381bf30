package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope the admin console and the ordering
// page both read the "message" field from.
type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, ErrorResponse{Message: msg})
}

// Decode reads a JSON request body into dst, rejecting unknown garbage
// with a plain error the handler can turn into a 400.
func Decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
