package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/pkg/i18n"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger     *slog.Logger
	Translator *i18n.Translator
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, translator *i18n.Translator) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	if translator == nil {
		translator = i18n.New("EN")
	}
	return &BaseHandler{Logger: lg, Translator: translator}
}

// SuccessResponse is the envelope for every non-error body.
type SuccessResponse struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	h.WriteJSON(w, status, SuccessResponse{Code: status, Data: data})
}

// WriteAppError classifies err and writes it with a message translated for the caller's
// Accept-Language. Causes are logged, never sent.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := internal.Classify(err)
	lg := logger.FromOr(r.Context(), h.Logger)

	switch {
	case appErr.StatusCode >= http.StatusInternalServerError:
		lg.Error("request failed", "code", appErr.Code, "status", appErr.StatusCode, "error", appErr.Cause)
	default:
		lg.Debug("request rejected", "code", appErr.Code, "status", appErr.StatusCode)
	}

	status, body := h.localize(r, appErr).ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

func (h *BaseHandler) localize(r *http.Request, appErr *internal.AppError) *internal.AppError {
	lang := h.Translator.Match(r.Header.Get("Accept-Language"))

	out := *appErr
	if out.MessageKey != "" {
		out.Message = h.Translator.Translate(lang, out.MessageKey, out.Params...)
	}

	if details, ok := out.Details.(internal.ValidationErrors); ok {
		translated := make([]internal.ValidationError, len(details.Errors))
		for i, ve := range details.Errors {
			if ve.MessageKey != "" {
				ve.Message = h.Translator.Translate(lang, ve.MessageKey, ve.Params...)
			}
			translated[i] = ve
		}
		out.Details = internal.ValidationErrors{Errors: translated}
	}
	return &out
}

// DecodeJSON reads a JSON body into dst, rejecting unknown trailing data.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.ErrInvalidBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidBody
		}
		return internal.ErrInvalidBody.WithCause(err)
	}
	return rejectTrailing(dec)
}

// DecodeOptionalJSON is DecodeJSON for endpoints where an empty body is allowed.
func DecodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return internal.ErrInvalidBody.WithCause(err)
	}
	return rejectTrailing(dec)
}

func rejectTrailing(dec *json.Decoder) error {
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return internal.ErrInvalidBody.WithCause(errors.New("unexpected data after the JSON value"))
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}
