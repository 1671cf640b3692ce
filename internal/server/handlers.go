package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"

	"github.com/brandtint/brandtint/internal/image"
	"github.com/brandtint/brandtint/internal/pipeline"
)

// extractRequest is the JSON body for URL-based extraction.
type extractRequest struct {
	URL string `json:"url"`
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

// handleExtractTheme accepts either a JSON body with a URL or a multipart
// image upload and responds with the extracted palette and theme.
func (app *Application) handleExtractTheme(w http.ResponseWriter, r *http.Request) {
	userKey := r.Header.Get("X-User-Key")
	if userKey == "" {
		userKey = "anonymous"
	}
	ipKey := clientIP(r)

	var (
		result *pipeline.Result
		err    error
	)

	// Content-Type may carry parameters (charset, boundary); branch on the
	// media type alone.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json":
		var req extractRequest
		if decodeErr := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); decodeErr != nil {
			app.writeJSONError(w, http.StatusBadRequest, "invalid_input", "request body is not valid JSON")
			return
		}
		result, err = app.Pipeline.FromURL(r.Context(), req.URL, userKey, ipKey)

	default:
		if parseErr := r.ParseMultipartForm(image.MaxImageBytes); parseErr != nil {
			app.writeJSONError(w, http.StatusBadRequest, "invalid_input", "expected JSON body or multipart image upload")
			return
		}
		file, _, formErr := r.FormFile("image")
		if formErr != nil {
			app.writeJSONError(w, http.StatusBadRequest, "invalid_input", "missing image form field")
			return
		}
		defer file.Close()

		data, readErr := io.ReadAll(io.LimitReader(file, image.MaxImageBytes+1))
		if readErr != nil {
			app.writeJSONError(w, http.StatusBadRequest, "invalid_input", "could not read image upload")
			return
		}
		result, err = app.Pipeline.FromImage(r.Context(), data, userKey, ipKey)
	}

	if err != nil {
		app.writePipelineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if encodeErr := json.NewEncoder(w).Encode(result); encodeErr != nil {
		app.Logger.Error("failed to encode response", "error", encodeErr)
	}
}

// handleHealth reports liveness.
func (app *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// writePipelineError maps a pipeline failure to an HTTP status and error
// envelope. Rate-limited responses carry a Retry-After header.
func (app *Application) writePipelineError(w http.ResponseWriter, err error) {
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		app.Logger.Error("extraction failed", "error", err)
		app.writeJSONError(w, http.StatusInternalServerError, "internal", "extraction failed")
		return
	}

	status := http.StatusInternalServerError
	retryAfter := 0
	switch pe.Kind {
	case pipeline.KindInvalidInput:
		status = http.StatusBadRequest
	case pipeline.KindSecurityBlocked:
		status = http.StatusForbidden
	case pipeline.KindTimeout:
		status = http.StatusGatewayTimeout
	case pipeline.KindExtractionFailed:
		status = http.StatusUnprocessableEntity
	case pipeline.KindRateLimited:
		status = http.StatusTooManyRequests
		retryAfter = int(pe.RetryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	app.Logger.Info("extraction rejected", "kind", pe.Kind, "reason", pe.Reason)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:             string(pe.Kind),
		Message:           pe.Reason,
		RetryAfterSeconds: retryAfter,
	})
}

// writeJSONError writes a simple error envelope.
func (app *Application) writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: kind, Message: message})
}

// clientIP extracts the client address for rate-limit keying.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
