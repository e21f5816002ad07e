package hcl

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentTypeFromHeader(t *testing.T) {
	req := httptest.NewRequest("POST", "/extractions", strings.NewReader("anything"))
	req.Header.Set("Content-Type", ContentTypeHCL)

	ct, err := DetectContentType(req)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHCL, ct)

	req = httptest.NewRequest("POST", "/extractions", strings.NewReader("anything"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	ct, err = DetectContentType(req)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, ct)
}

func TestDetectContentTypeFromBody(t *testing.T) {
	jsonBody := `{"log_dir": "/data/logs"}`
	req := httptest.NewRequest("POST", "/extractions", strings.NewReader(jsonBody))

	ct, err := DetectContentType(req)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, ct)

	// body must still be readable after sniffing
	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, jsonBody, string(body))

	req = httptest.NewRequest("POST", "/extractions", strings.NewReader(sampleJobs))
	ct, err = DetectContentType(req)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHCL, ct)
}

func TestIsHCLBasedOnExtension(t *testing.T) {
	assert.True(t, IsHCLBasedOnExtension("jobs.hcl"))
	assert.True(t, IsHCLBasedOnExtension("jobs.tf"))
	assert.False(t, IsHCLBasedOnExtension("jobs.json"))
}
