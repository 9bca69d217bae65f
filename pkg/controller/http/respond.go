package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/petroops-lab/derrick/pkg/domain/model"
	"github.com/petroops-lab/derrick/pkg/usecase"
	"github.com/petroops-lab/derrick/pkg/utils/errutil"
)

// writeJSON serializes the payload with the given status code
func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w,
			goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// writeError maps domain errors to HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrActionNotFound),
		errors.Is(err, usecase.ErrTaskNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}
