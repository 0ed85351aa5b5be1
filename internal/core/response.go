package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"envmonitor/internal/types"
)

// APIErrorResponse is the error envelope written by every envmonitor
// endpoint. Error is a summary safe to show to users; Details narrows it.
type APIErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

const unexpectedErrorMessage = "an unexpected error occurred"

// JSON writes data as a JSON response with the given status code. If
// marshalling fails it falls back to a 500 error body.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(APIErrorResponse{
			Error:     "failed to marshal response",
			Code:      string(types.ErrCodeInternalUnexpected),
			RequestID: types.GetRequestID(r.Context()),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes err as an error response. An *types.AppError contributes its
// code, status and message; any other error becomes a 500 without leaking
// its text.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIErrorResponse{
			Error:     appErr.Message,
			Code:      string(appErr.Code),
			RequestID: types.GetRequestID(r.Context()),
		})
		return
	}

	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error:     unexpectedErrorMessage,
		Code:      string(types.ErrCodeInternalUnexpected),
		RequestID: types.GetRequestID(r.Context()),
	})
}

// ErrorWithSummary writes a response whose "error" field is the fixed
// summary and whose "details" carries the AppError message. The status is
// always status, regardless of the error code.
func ErrorWithSummary(w http.ResponseWriter, r *http.Request, status int, summary string, err error) {
	resp := APIErrorResponse{
		Error:     summary,
		Code:      string(types.ErrCodeInternalUnexpected),
		Details:   unexpectedErrorMessage,
		RequestID: types.GetRequestID(r.Context()),
	}

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		resp.Code = string(appErr.Code)
		resp.Details = appErr.Message
	}

	JSON(w, r, status, resp)
}
