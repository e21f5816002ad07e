package hcl

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

const (
	// ContentTypeHCL is the custom MIME type for HCL job definitions
	ContentTypeHCL = "application/vnd.hcl"

	// ContentTypeJSON is the standard MIME type for JSON
	ContentTypeJSON = "application/json"
)

// DetectContentType decides whether the request body is a JSON
// ExtractionRequest or an HCL job file. A recognized Content-Type header
// wins; otherwise the body is sniffed and stays readable afterwards.
func DetectContentType(r *http.Request) (string, error) {
	if ct := headerContentType(r); ct != "" {
		return ct, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	return sniffBody(body), nil
}

func headerContentType(r *http.Request) string {
	header := r.Header.Get("Content-Type")
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	switch mediaType {
	case ContentTypeHCL, ContentTypeJSON:
		return mediaType
	}
	return ""
}

// sniffBody classifies raw bytes. JSON payloads open with { or [ while
// an HCL job file opens with a block identifier; anything undecidable
// falls back to JSON so the decoder produces the error message.
func sniffBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ContentTypeJSON
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return ContentTypeJSON
	}
	if IsHCL(trimmed) {
		return ContentTypeHCL
	}
	return ContentTypeJSON
}

// IsHCLBasedOnExtension checks if the filename has an HCL extension
func IsHCLBasedOnExtension(filename string) bool {
	switch filepath.Ext(filename) {
	case ".hcl", ".tf", ".tfvars":
		return true
	}
	return false
}
