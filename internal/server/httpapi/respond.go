package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsmirnovs/clipvault/internal/common"
)

// envelope is the uniform response shape: exactly one of Data or Error is
// set.
type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (s *Server) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		s.logger.Error(context.Background(), "response encoding failed", "error", err.Error())
	}
}

// writeError maps a typed error to a status code. Unknown errors are
// reported as a bare 500 so internals never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := common.ErrorInternal.Error()

	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorPasswordUnchanged),
		errors.Is(err, common.ErrorWeakPassword):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrorConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrorUploadFailed):
		status, msg = http.StatusInternalServerError, common.ErrorUploadFailed.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: msg})
}
