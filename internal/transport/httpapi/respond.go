package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	svcErr "github.com/oggyb/vibeu-engine/internal/errors"
	"github.com/oggyb/vibeu-engine/internal/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

// APIError is the JSON error body.
type APIError struct {
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	Remaining *int       `json:"remaining,omitempty"`
	ResetAt   *time.Time `json:"reset_at,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps a service error onto a status code and error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := svcErr.Normalize(err)
	status := svcErr.HTTPStatus(e)

	body := APIError{Code: string(e.Kind), Message: e.Message, Remaining: e.Remaining, ResetAt: e.ResetAt}
	if e.ResetAt != nil && status == http.StatusTooManyRequests {
		secs := int(time.Until(*e.ResetAt).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", fmt.Sprint(secs))
	}

	log := logger.FromContext(r.Context(), nil)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "kind", e.Kind, "err", e)
	} else {
		log.Debug("request rejected", "kind", e.Kind, "msg", e.Message)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return svcErr.InvalidArgument("request body is required")
		}
		return svcErr.InvalidArgument("malformed JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		return svcErr.InvalidArgument(describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
