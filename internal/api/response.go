package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"trailcast/internal/types"
)

// APIResponse is the envelope for successful responses.
type APIResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries list sizes and run provenance alongside the data.
type Meta struct {
	Count         *int   `json:"count,omitempty"`
	DefaultRegion string `json:"default_region,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
}

// APIErrorResponse is the envelope for error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned to clients.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON writes data with the given status. If marshalling fails a 500 error
// envelope is written instead.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(types.ErrCodeInternalUnexpected),
				Message:   "failed to marshal response",
				RequestID: types.GetRequestID(r.Context()),
			},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Data writes a 200 envelope around data.
func Data(w http.ResponseWriter, r *http.Request, data any, meta *Meta) {
	JSON(w, r, http.StatusOK, APIResponse{Data: data, Meta: meta})
}

// Error writes an error envelope. AppErrors keep their code, message and
// details; anything else becomes a 500 without leaking the cause.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	requestID := types.GetRequestID(r.Context())

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			types.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "request failed",
				"code", appErr.Code, "error", err)
		}
		JSON(w, r, status, APIErrorResponse{
			Error: ErrorDetail{
				Code:      string(appErr.Code),
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: requestID,
			},
		})
		return
	}

	types.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
	JSON(w, r, http.StatusInternalServerError, APIErrorResponse{
		Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "an unexpected error occurred",
			RequestID: requestID,
		},
	})
}

func countOf(n int) *int { return &n }
