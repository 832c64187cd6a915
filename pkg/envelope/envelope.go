// Package envelope renders the uniform JSON wrapper returned by every
// catalog endpoint.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// ContentType is the media type of every rendered envelope.
const ContentType = "application/json"

// indent is the per-level indentation used for pretty output.
const indent = "    "

// Status reports whether the request succeeded.
type Status string

const (
	// StatusSuccess marks a successful response.
	StatusSuccess Status = "success"

	// StatusError marks a soft failure. The HTTP status stays 200.
	StatusError Status = "error"
)

// Envelope wraps a response payload.
//
// Pretty is a formatting directive for Render and is never serialized.
type Envelope struct {
	Data   any    `json:"data"`
	Status Status `json:"status"`
	Pretty bool   `json:"-"`
}

// Success builds a success envelope around data.
func Success(data any, pretty bool) Envelope {
	return Envelope{Data: data, Status: StatusSuccess, Pretty: pretty}
}

// Error builds an error envelope around data.
func Error(data any, pretty bool) Envelope {
	return Envelope{Data: data, Status: StatusError, Pretty: pretty}
}

// Render serializes the envelope with sorted keys, indented by four spaces
// when Pretty is set and compact otherwise.
func Render(env Envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if env.Pretty {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(env); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	// Encode always terminates the document with a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write renders env and writes it with the given HTTP status code.
// A payload that cannot be serialized results in a 500 response.
func Write(w http.ResponseWriter, code int, env Envelope) error {
	body, err := Render(env)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
