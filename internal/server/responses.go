package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/simonvc/libromayor/internal/fiscal"
	"github.com/simonvc/libromayor/internal/ledger"
)

type errorResponse struct {
	Error  string         `json:"error"`
	Fields []fieldMessage `json:"fields,omitempty"`
}

type fieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func fieldMessages(err error) []fieldMessage {
	fields := ledger.Fields(err)
	if len(fields) == 0 {
		return nil
	}
	out := make([]fieldMessage, len(fields))
	for i, fe := range fields {
		msg := fe.Err.Error()
		if fe.Detail != "" {
			msg += ": " + fe.Detail
		}
		out[i] = fieldMessage{Field: fe.Field, Message: msg}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail writes err with the status of its kind. Service errors are logged
// with the request id; the message is passed through as-is.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Fields: fieldMessages(err)})
}

func mapError(err error) int {
	switch ledger.ErrorKind(err) {
	case ledger.KindValidation:
		return http.StatusUnprocessableEntity
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindConflict:
		return http.StatusConflict
	}
	if errors.Is(err, fiscal.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeJSON reads the request body into v. Malformed JSON is a 400; a
// well-formed value the domain rejects, such as a sub-centavo amount,
// is a 422.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	if ledger.ErrorKind(err) == ledger.KindValidation {
		s.fail(w, r, err)
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
	return false
}

func pathID(r *http.Request, name string) string {
	id, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return chi.URLParam(r, name)
	}
	return id
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (ledger.Date, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return ledger.Date{}, nil
	}
	d, err := ledger.ParseDate(v)
	if err != nil {
		return ledger.Date{}, ledger.FieldError{Field: key, Err: ledger.ErrInvalidDate, Detail: v}
	}
	return d, nil
}

// queryDateRange parses the from and to parameters.
func queryDateRange(r *http.Request) (from, to ledger.Date, err error) {
	if from, err = queryDate(r, "from"); err != nil {
		return
	}
	to, err = queryDate(r, "to")
	return
}

// queryInt parses an optional non-negative integer parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, ledger.FieldError{Field: key, Err: ledger.ErrInvalidField, Detail: fmt.Sprintf("%q is not a non-negative integer", v)}
	}
	return n, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
