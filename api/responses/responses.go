// Package responses renders the JSON envelopes every endpoint answers with.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const requestIDHeader = "X-Request-Id"

// fallbackBody is sent when an envelope itself fails to encode.
var fallbackBody = []byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"internal server error","retryable":true}}` + "\n")

// callerFacing lists codes whose message is written for the client. Other
// codes answer with the code's generic public message.
var callerFacing = map[pkgerrors.Code]bool{
	pkgerrors.CodeValidation:    true,
	pkgerrors.CodeForbidden:     true,
	pkgerrors.CodeUnauthorized:  true,
	pkgerrors.CodeNotFound:      true,
	pkgerrors.CodeDuplicate:     true,
	pkgerrors.CodeConflict:      true,
	pkgerrors.CodeStateConflict: true,
	pkgerrors.CodeIdempotency:   true,
	pkgerrors.CodeRateLimit:     true,
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

// WriteSuccessStatus answers with the status text as the message.
func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	WriteSuccessMessage(w, status, "", data)
}

// WriteSuccessMessage adds a human readable message next to the payload. A
// blank message falls back to the status text.
func WriteSuccessMessage(w http.ResponseWriter, status int, message string, data any) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, types.SuccessEnvelope{Success: true, Message: message, Data: data})
}

// WriteError renders err as the public error envelope. Untyped errors become
// CodeInternal. Server-side failures are logged at error level with the full
// chain; client mistakes are logged at warn.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	apiErr := types.APIError{
		Code:      string(typed.Code()),
		Message:   meta.PublicMessage,
		Retryable: meta.Retryable,
		RequestID: w.Header().Get(requestIDHeader),
	}
	if m := typed.Message(); m != "" && callerFacing[typed.Code()] {
		apiErr.Message = m
	}
	if meta.DetailsAllowed {
		apiErr.Details = typed.Details()
	}

	if logg != nil {
		fields := pkgerrors.Dump(err).Fields()
		fields["status"] = meta.HTTPStatus
		ctx = logg.WithFields(ctx, fields)
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.ErrorEnvelope{Success: false, Error: apiErr})
}

// writeJSON encodes before writing headers so an encoding failure can still
// turn into a clean 500.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	body := fallbackBody
	if err := json.NewEncoder(&buf).Encode(payload); err == nil {
		body = buf.Bytes()
	} else {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
