package apiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/EscalationLeague/internal/api/authz"
	"github.com/codr1/EscalationLeague/internal/membership"
)

const internalErrorMessage = "Internal Server Error"

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	if err := WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

// WriteFailure writes an error envelope with a caller-safe message.
func WriteFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := WriteJSON(w, status, Envelope{Success: false, Message: message}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write error response")
	}
}

// WriteError maps classified errors to their status and message. Anything
// unclassified, or classified as internal, is logged and answered with a
// generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	}
	WriteFailure(w, r, status, message)
}

// StatusFor returns the HTTP status and public message for err. A
// HandlerError is the outermost classification and wins over any error it
// wraps.
func StatusFor(err error) (int, string) {
	var herr HandlerError
	if errors.As(err, &herr) {
		if herr.Status <= 0 || herr.Status >= http.StatusInternalServerError {
			return http.StatusInternalServerError, internalErrorMessage
		}
		return herr.Status, herr.Message
	}

	var merr *membership.Error
	if errors.As(err, &merr) {
		status := merr.Kind.HTTPStatus()
		if status >= http.StatusInternalServerError {
			return http.StatusInternalServerError, internalErrorMessage
		}
		return status, merr.Message
	}

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	}
	return http.StatusInternalServerError, internalErrorMessage
}

func RenderHTMLComponent(ctx context.Context, w http.ResponseWriter, component templ.Component, headers map[string]string, logMessage, errorMessage string) bool {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg(logMessage)
		http.Error(w, errorMessage, http.StatusInternalServerError)
		return false
	}

	for key, value := range headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to write HTML response")
		return false
	}
	return true
}
