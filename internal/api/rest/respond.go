package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/procurex/procurement-backend/internal/domain/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps application errors onto HTTP responses. AppError carries
// its own status code; anything else is a 500 with the detail kept out of
// the body.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		writeJSON(w, appErr.StatusCode, errorResponse{Error: errorBody{
			Type:    string(appErr.Type),
			Code:    appErr.Code,
			Message: appErr.Message,
		}})
		return
	}

	logger.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Type:    string(errors.ErrorTypeInternal),
		Message: "internal server error",
	}})
}

func writeValidationError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
		Type:    string(errors.ErrorTypeValidation),
		Code:    "INVALID_REQUEST",
		Message: message,
	}})
}
