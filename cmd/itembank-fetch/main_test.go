package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sternrassler/itembank-client/internal/testutil"
	"github.com/Sternrassler/itembank-client/pkg/client"
	"github.com/Sternrassler/itembank-client/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "74c5fd430cf1242a527f6223aebd42d30464be22"

// setupCLI points the CLI at a mock item bank and isolates it from the
// caller's environment.
func setupCLI(t *testing.T) (*testutil.MockItemBank, string) {
	t.Helper()

	for _, key := range []string{config.EnvCredentials, config.EnvLogLevel, config.EnvLogPretty, config.EnvMetricsFile, config.EnvUserAgent} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	mock := testutil.NewMockItemBank()
	mock.Secret = testSecret
	t.Cleanup(mock.Close)
	t.Setenv(config.EnvBaseURL, mock.BaseURL())

	creds := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{
  "consumerKey": "yis0TYCu7U9V4o7M",
  "consumerSecret": "`+testSecret+`",
  "domain": "localhost"
}`), 0o600))

	return mock, creds
}

func runCLI(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--env-file="}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitError
}

func TestRun_ItemsWithLimit(t *testing.T) {
	mock, creds := setupCLI(t)
	mock.SetResponse("items", testutil.NewRecordsResponse(`[{"reference":"item-1"}]`))

	stdout, _, err := runCLI("--endpoint", "items", "--credentials", creds, "--limit", "5")
	require.NoError(t, err)

	assert.Equal(t, `{
  "meta": {
    "status": true,
    "timestamp": 1700000000,
    "records": 0
  },
  "data": [
    {
      "reference": "item-1"
    }
  ]
}
`, stdout)

	require.Equal(t, 1, mock.RequestCount())
	req, _ := mock.LastRequest()
	assert.Equal(t, "/items", req.Path)
	assert.Equal(t, "get", req.Action)
	assert.JSONEq(t, `{"limit":5}`, string(req.Request))
	assert.Equal(t, config.DefaultUserAgent, req.Header.Get("User-Agent"))
}

func TestRun_DefaultLimit(t *testing.T) {
	mock, creds := setupCLI(t)

	_, _, err := runCLI("--endpoint", "activities", "--credentials", creds)
	require.NoError(t, err)

	req, _ := mock.LastRequest()
	assert.Equal(t, "/activities", req.Path)
	assert.JSONEq(t, `{"limit":10}`, string(req.Request))
}

func TestRun_ReferenceIgnoresLimit(t *testing.T) {
	mock, creds := setupCLI(t)

	_, _, err := runCLI("--endpoint", "questions", "--credentials", creds, "--reference", "xyz", "--limit", "3")
	require.NoError(t, err)

	req, _ := mock.LastRequest()
	assert.Equal(t, "/questions", req.Path)
	assert.JSONEq(t, `{"references":["xyz"]}`, string(req.Request))
}

func TestRun_EmptyReferenceIsStillAReference(t *testing.T) {
	mock, creds := setupCLI(t)

	_, _, err := runCLI("--endpoint", "items", "--credentials", creds, "--reference=")
	require.NoError(t, err)

	req, _ := mock.LastRequest()
	assert.JSONEq(t, `{"references":[""]}`, string(req.Request))
}

func TestRun_CredentialsFromEnvironment(t *testing.T) {
	mock, creds := setupCLI(t)
	t.Setenv(config.EnvCredentials, creds)

	_, _, err := runCLI("--endpoint", "items")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.RequestCount())
}

func TestRun_InvalidInputs(t *testing.T) {
	mock, creds := setupCLI(t)
	dir := t.TempDir()

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"consumerKey":"k","domain":"d"}`), 0o600))
	malformed := filepath.Join(dir, "malformed.json")
	require.NoError(t, os.WriteFile(malformed, []byte(`{"consumerKey":`), 0o600))

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{
			name:     "unknown endpoint",
			args:     []string{"--endpoint", "features", "--credentials", creds},
			contains: "Invalid value for '--endpoint'",
		},
		{
			name:     "missing endpoint",
			args:     []string{"--credentials", creds},
			contains: "Invalid value for '--endpoint'",
		},
		{
			name:     "nonexistent credentials",
			args:     []string{"--endpoint", "items", "--credentials", filepath.Join(dir, "nope.json")},
			contains: "Invalid value for '--credentials'",
		},
		{
			name:     "missing credentials",
			args:     []string{"--endpoint", "items"},
			contains: "Invalid value for '--credentials'",
		},
		{
			name:     "credentials missing a key",
			args:     []string{"--endpoint", "items", "--credentials", partial},
			contains: "missing keys: consumerSecret",
		},
		{
			name:     "malformed credentials",
			args:     []string{"--endpoint", "items", "--credentials", malformed},
			contains: "Invalid value for '--credentials'",
		},
		{
			name:     "non-integer limit",
			args:     []string{"--endpoint", "items", "--credentials", creds, "--limit", "ten"},
			contains: "invalid value",
		},
		{
			name:     "unknown flag",
			args:     []string{"--endpoint", "items", "--credentials", creds, "--page", "2"},
			contains: "flag provided but not defined",
		},
		{
			name:     "bad log level",
			args:     []string{"--endpoint", "items", "--credentials", creds, "--log-level", "loud"},
			contains: "Invalid value for '--log-level'",
		},
		{
			name:     "extra argument",
			args:     []string{"--endpoint", "items", "--credentials", creds, "surplus"},
			contains: "unexpected extra argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := runCLI(tt.args...)
			require.Error(t, err)
			assert.Equal(t, exitUsage, exitCode(t, err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.Empty(t, stdout)
		})
	}

	assert.Equal(t, 0, mock.RequestCount(), "no request may be sent for invalid input")
}

func TestRun_TransportErrorPropagates(t *testing.T) {
	mock, creds := setupCLI(t)
	mock.SetResponse("items", testutil.NewErrorResponse(http.StatusInternalServerError, "down"))

	stdout, _, err := runCLI("--endpoint", "items", "--credentials", creds)
	require.Error(t, err)
	assert.Equal(t, exitError, exitCode(t, err))
	assert.Empty(t, stdout)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, 1, mock.RequestCount())
}

func TestRun_Help(t *testing.T) {
	stdout, stderr, err := runCLI("-h")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage: itembank-fetch")
	assert.Contains(t, stderr, "-endpoint")
}

func TestRun_LogsStayOffStdout(t *testing.T) {
	_, creds := setupCLI(t)

	stdout, stderr, err := runCLI("--endpoint", "items", "--credentials", creds, "--log-level", "debug")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"run_id"`)
	assert.Contains(t, stderr, "Inputs validated")
	assert.NotContains(t, stderr, testSecret)
	assert.False(t, strings.Contains(stdout, "run_id"))
}

func TestRun_WritesMetricsFile(t *testing.T) {
	_, creds := setupCLI(t)
	metricsFile := filepath.Join(t.TempDir(), "itembank.prom")

	_, _, err := runCLI("--endpoint", "items", "--credentials", creds, "--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "itembank_requests_total")
	assert.Contains(t, string(data), "itembank_request_duration_seconds")
}
