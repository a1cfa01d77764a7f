package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := http.StatusInternalServerError
	message := err.Error()
	var fields map[string]string
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		status = serviceErrorStatus(svcErr.Kind)
		if svcErr.Message != "" {
			message = svcErr.Message
		}
		fields = svcErr.Fields
	}
	payload := map[string]any{"error": message}
	if len(fields) > 0 {
		payload["fields"] = fields
	}
	writeJSON(w, status, payload)
}

func serviceErrorStatus(kind ServiceErrorKind) int {
	switch kind {
	case ServiceErrorInvalid:
		return http.StatusBadRequest
	case ServiceErrorNotFound:
		return http.StatusNotFound
	case ServiceErrorUnauthorized:
		return http.StatusUnauthorized
	case ServiceErrorConflict:
		return http.StatusConflict
	case ServiceErrorRateLimited:
		return http.StatusTooManyRequests
	case ServiceErrorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, out any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(out); err != nil {
		return invalidError("invalid json body", err)
	}
	return nil
}

const maxRequestBytes = 1 << 20
