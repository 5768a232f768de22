package assist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_ForwardsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"rainfall":120,"temperature":31,"humidity":80}`, string(body))
		_ = json.NewEncoder(w).Encode(map[string]any{"prediction": true})
	}))
	defer srv.Close()

	out, err := NewPredictor(srv.URL).Predict(context.Background(),
		json.RawMessage(`{"rainfall":120,"temperature":31,"humidity":80}`))
	require.NoError(t, err)
	assert.Equal(t, true, out["prediction"])
}

func TestPredict_BackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewPredictor(srv.URL).Predict(context.Background(), json.RawMessage(`{}`))
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusServiceUnavailable, be.StatusCode)
}

func TestNewGenAIResponder_RequiresKey(t *testing.T) {
	_, err := NewGenAIResponder(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrChatUnavailable)
}
