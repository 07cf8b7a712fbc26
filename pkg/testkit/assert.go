package testkit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response shape for assertions.
type Envelope struct {
	Result int             `json:"result"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Errors map[string]string `json:"errors"`
	Token  string          `json:"token"`
}

// DecodeEnvelope parses a recorded response body and checks the result
// field mirrors the transport status.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env),
		"response is not valid JSON\nbody: %s", rec.Body.String())
	assert.Equal(t, rec.Code, env.Result, "result field must mirror the HTTP status")
	return env
}

// DecodeData unmarshals an envelope's data field into dest.
func DecodeData(t *testing.T, env Envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest), "data: %s", string(env.Data))
}

// AssertMocksAllCalled fails the test if any registered stub was never hit.
func AssertMocksAllCalled(t *testing.T, mt *MockTransport) {
	t.Helper()
	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err)
	}
}
