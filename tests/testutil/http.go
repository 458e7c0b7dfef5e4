package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the storefront JSON response with data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// Request describes one call against a test engine.
type Request struct {
	Method  string
	Path    string
	Body    any
	RawBody []byte
	Headers map[string]string
}

// Do serves req through engine and returns the recorded response.
func Do(t *testing.T, engine http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch {
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		require.NoError(t, err, "Failed to marshal request body")
		body = bytes.NewReader(data)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.Path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)
	return w
}

// DecodeEnvelope parses the response envelope.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse response: %s", w.Body.String())
	return env
}

// DecodeData parses the envelope's data into T, requiring a success response.
func DecodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	env := DecodeEnvelope(t, w)
	require.True(t, env.Success, "Expected success response, got: %s", w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

// AssertError asserts the status and error code of a failed response.
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, "Unexpected status: %s", w.Body.String())
	env := DecodeEnvelope(t, w)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
}
