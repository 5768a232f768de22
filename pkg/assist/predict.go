package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Predictor forwards flood/drought prediction requests to the model backend
type Predictor struct {
	BaseURL string
	Client  *http.Client
}

// NewPredictor creates a predictor calling baseURL + "/predict"
func NewPredictor(baseURL string) *Predictor {
	return &Predictor{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// BackendError reports a non-2xx answer from the prediction backend
type BackendError struct {
	StatusCode int
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status: %d", e.StatusCode)
}

// Predict posts payload to the backend and returns its decoded JSON reply
func (p *Predictor) Predict(ctx context.Context, payload json.RawMessage) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &BackendError{StatusCode: resp.StatusCode}
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	return out, nil
}
