package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"strings"

	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type Envelope map[string]any

const maxJSONBodySize = 1 << 20 // 1MB

// ReadJSON decodes a single JSON object into v. Decoding failures come back as a
// malformed JSON I18nError carrying the decoder error as cause.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errorx.NewMalformedJSON().WithCause(describeDecodeError(err))
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errorx.NewMalformedJSON().WithCause(errors.New("body must only contain a single JSON value"))
	}

	return nil
}

func describeDecodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxError):
		return fmt.Errorf("badly-formed JSON at character %d: %w", syntaxError.Offset, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("body contains badly-formed JSON: %w", err)
	case errors.As(err, &unmarshalTypeError):
		return fmt.Errorf("invalid type for field %q at character %d: %w", unmarshalTypeError.Field, unmarshalTypeError.Offset, err)
	case errors.Is(err, io.EOF):
		return fmt.Errorf("body must not be empty: %w", err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return fmt.Errorf("body contains unknown field %s: %w", strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	case errors.As(err, &maxBytesError):
		return fmt.Errorf("body must not be larger than %d KB: %w", maxBytesError.Limit/1024, err)
	default:
		return fmt.Errorf("body contains invalid JSON: %w", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, data Envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	maps.Copy(w.Header(), headers)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// Success writes data with "success": true.
func Success(w http.ResponseWriter, r *http.Request, status int, data Envelope) {
	if data == nil {
		data = make(Envelope, 1)
	}
	data["success"] = true

	if err := WriteJSON(w, status, data, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write success response", "status", status, "error", err)
	}
}
